package qa

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"studyrag/internal/domain"
	"studyrag/internal/logger"
	"studyrag/internal/vectorstore"
)

// DefaultTopK is how many chunks are retrieved as context when none is configured.
const DefaultTopK = 4

const promptTemplate = `Text: %s
Question: %s
Answer the question based on the text provided. If the text doesn't contain the answer, reply that the answer is not available.`

// Options tunes retrieval and generation for answering.
type Options struct {
	TopK      int
	MaxTokens int
}

// AnswerResult is the outcome of answering one question about one document.
type AnswerResult struct {
	Question string
	Answer   string
	Context  []string
}

// Answerer answers questions strictly from a supplied document.
// Every call builds its own context index and drops it before returning.
type Answerer struct {
	chunker  domain.Chunker
	embedder domain.Embedder
	indexes  vectorstore.ContextIndexFactory
	gen      domain.Generator
	opts     Options
	logger   *slog.Logger
}

func NewAnswerer(chunker domain.Chunker, embedder domain.Embedder, indexes vectorstore.ContextIndexFactory, gen domain.Generator, opts Options, lg *slog.Logger) *Answerer {
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if lg == nil {
		lg = logger.Discard()
	}
	return &Answerer{chunker: chunker, embedder: embedder, indexes: indexes, gen: gen, opts: opts, logger: lg}
}

// Answer retrieves the chunks of document most similar to question and asks the
// generator to answer from them alone.
func (a *Answerer) Answer(ctx context.Context, document, question string) (AnswerResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return AnswerResult{}, fmt.Errorf("empty question: %w", domain.ErrInvalidState)
	}
	start := time.Now()

	chunks, err := a.chunker.Chunk(domain.Document{ID: "doc", Content: document})
	if err != nil {
		return AnswerResult{}, fmt.Errorf("chunk document: %w", err)
	}
	if len(chunks) == 0 {
		return AnswerResult{}, fmt.Errorf("document has no text: %w", domain.ErrInvalidState)
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	vectors, err := a.embedder.Embed(ctx, texts)
	if err != nil {
		return AnswerResult{}, fmt.Errorf("embed chunks: %w", err)
	}

	index, err := a.indexes.NewContextIndex(ctx, len(vectors[0]))
	if err != nil {
		return AnswerResult{}, fmt.Errorf("create context index: %w", err)
	}
	defer func() {
		// a cancelled ctx must not leak a hosted scratch collection
		dropCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := index.Drop(dropCtx); err != nil {
			a.logger.Warn("context_index_drop_failed", slog.String("error", err.Error()))
		}
	}()

	points := make([]domain.Point, len(chunks))
	for i, ch := range chunks {
		points[i] = domain.Point{ID: ch.ChunkID, Vector: vectors[i], Payload: domain.Payload{Text: ch.Text}}
	}
	if err := index.Upsert(ctx, points); err != nil {
		return AnswerResult{}, fmt.Errorf("index chunks: %w", err)
	}

	qvec, err := a.embedder.Embed(ctx, []string{question})
	if err != nil {
		return AnswerResult{}, fmt.Errorf("embed question: %w", err)
	}
	hits, err := index.Search(ctx, qvec[0], a.opts.TopK, domain.Filter{})
	if err != nil {
		return AnswerResult{}, fmt.Errorf("search context: %w", err)
	}
	contextTexts := make([]string, len(hits))
	for i, h := range hits {
		contextTexts[i] = h.Payload.Text
	}

	raw, err := a.gen.Generate(ctx, domain.GenerateRequest{
		Prompt:      BuildPrompt(contextTexts, question),
		Temperature: 0,
		MaxTokens:   a.opts.MaxTokens,
	})
	if err != nil {
		return AnswerResult{}, fmt.Errorf("generate answer: %w", err)
	}
	answer := NormalizeAnswer(raw)

	a.logger.Info("question_answered",
		slog.Int("chunks", len(chunks)),
		slog.Int("context_chunks", len(hits)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return AnswerResult{Question: question, Answer: answer, Context: contextTexts}, nil
}

// AnswerHistory answers the pending question in the last turn of h and records the answer there.
// Callers must not invoke it concurrently on the same history.
func (a *Answerer) AnswerHistory(ctx context.Context, document string, h *History) (string, error) {
	question, err := h.Last()
	if err != nil {
		return "", err
	}
	res, err := a.Answer(ctx, document, question)
	if err != nil {
		return "", err
	}
	if err := h.Fill(res.Answer); err != nil {
		return "", err
	}
	return res.Answer, nil
}

// BuildPrompt stuffs the context passages and the question into the fixed answering template.
func BuildPrompt(contextTexts []string, question string) string {
	return fmt.Sprintf(promptTemplate, strings.Join(contextTexts, "\n\n"), question)
}

var answerPrefixes = []string{"Answer:", "The answer is "}

// NormalizeAnswer removes line breaks and leading answer boilerplate.
// Applying it twice gives the same result as applying it once.
func NormalizeAnswer(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	for {
		stripped := false
		for _, p := range answerPrefixes {
			if strings.HasPrefix(s, p) {
				s = strings.TrimSpace(strings.TrimPrefix(s, p))
				stripped = true
			}
		}
		if !stripped {
			return s
		}
	}
}
