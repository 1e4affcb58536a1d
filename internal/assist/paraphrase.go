package assist

import (
	"context"
	"fmt"
	"strings"

	"studyrag/internal/domain"
	"studyrag/internal/textdiff"
)

const paraphrasePrompt = `Rephrase the following text so that it keeps the same meaning but uses different wording.
Reply with the rephrased text only.

Text:
%s

Rephrased text:`

// Marker decorates a span of rephrased text that differs from the original.
type Marker func(span string) string

// DefaultMarker wraps changed spans in double asterisks.
func DefaultMarker(span string) string {
	return "**" + span + "**"
}

type Paraphrase struct {
	Original  string
	Rephrased string
	Marked    string
}

// DefaultMaxParaphraseWords bounds the text sent for rephrasing and diffed
// afterwards.
const DefaultMaxParaphraseWords = 1000

type Paraphraser struct {
	gen         domain.Generator
	mark        Marker
	temperature float64
	maxWords    int
	maxTokens   int
}

// NewParaphraser returns a Paraphraser; a nil mark selects DefaultMarker and a
// non-positive maxWords selects DefaultMaxParaphraseWords.
func NewParaphraser(gen domain.Generator, mark Marker, maxWords, maxTokens int) *Paraphraser {
	if mark == nil {
		mark = DefaultMarker
	}
	if maxWords <= 0 {
		maxWords = DefaultMaxParaphraseWords
	}
	return &Paraphraser{gen: gen, mark: mark, temperature: defaultTemperature, maxWords: maxWords, maxTokens: maxTokens}
}

// Paraphrase generates a rephrasing of text and marks what changed. Text past
// the word limit is cut off before generation and the cut text is reported
// as Original.
func (p *Paraphraser) Paraphrase(ctx context.Context, text string) (Paraphrase, error) {
	if strings.TrimSpace(text) == "" {
		return Paraphrase{}, fmt.Errorf("empty text: %w", domain.ErrInvalidState)
	}
	if tokens := textdiff.Tokenize(text); textdiff.WordCount(tokens) > p.maxWords {
		text = strings.Join(textdiff.TruncateTokens(tokens, p.maxWords), "")
	}
	out, err := p.gen.Generate(ctx, domain.GenerateRequest{
		Prompt:      fmt.Sprintf(paraphrasePrompt, text),
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
	})
	if err != nil {
		return Paraphrase{}, fmt.Errorf("generate paraphrase: %w", err)
	}
	rephrased := strings.TrimSpace(out)
	marked, err := Render(text, rephrased, p.mark)
	if err != nil {
		return Paraphrase{}, err
	}
	return Paraphrase{Original: text, Rephrased: rephrased, Marked: marked}, nil
}

// Render diffs original against rephrased on word and whitespace tokens.
// Equal spans are kept, inserted and replacing spans are marked and deleted
// spans are dropped.
func Render(original, rephrased string, mark Marker) (string, error) {
	if mark == nil {
		mark = DefaultMarker
	}
	a, b := textdiff.Tokenize(original), textdiff.Tokenize(rephrased)
	return renderOpcodes(b, textdiff.Opcodes(a, b), mark)
}

func renderOpcodes(b []string, ops []textdiff.Opcode, mark Marker) (string, error) {
	var out strings.Builder
	for _, op := range ops {
		if op.J1 < 0 || op.J2 > len(b) || op.J1 > op.J2 {
			return "", fmt.Errorf("diff span %d:%d of %d tokens: %w", op.J1, op.J2, len(b), domain.ErrContentMismatch)
		}
		span := strings.Join(b[op.J1:op.J2], "")
		switch op.Tag {
		case textdiff.Equal:
			out.WriteString(span)
		case textdiff.Insert, textdiff.Replace:
			out.WriteString(markSpan(span, mark))
		case textdiff.Delete:
			// removed wording is not shown
		default:
			return "", fmt.Errorf("diff opcode %q: %w", op.Tag, domain.ErrContentMismatch)
		}
	}
	return out.String(), nil
}

// markSpan keeps surrounding whitespace outside the marker.
func markSpan(span string, mark Marker) string {
	core := strings.TrimSpace(span)
	if core == "" {
		return span
	}
	start := strings.Index(span, core)
	return span[:start] + mark(core) + span[start+len(core):]
}
