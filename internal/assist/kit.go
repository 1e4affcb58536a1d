package assist

import (
	"context"
	"strings"

	"studyrag/internal/domain"
)

// KitOptions configures the helpers bundled in a Kit.
type KitOptions struct {
	MaxTokens          int
	MaxTranslateWords  int
	MaxParaphraseWords int
	Target             domain.Language
	Marker             Marker
}

// Kit bundles the study helpers over one generator and one summarizer.
type Kit struct {
	gen         domain.Generator
	summarizer  domain.Summarizer
	paraphraser *Paraphraser
	translator  *Translator
	target      domain.Language
	maxTokens   int
}

func NewKit(gen domain.Generator, summarizer domain.Summarizer, opts KitOptions) *Kit {
	if opts.Target == "" {
		opts.Target = domain.English
	}
	return &Kit{
		gen:         gen,
		summarizer:  summarizer,
		paraphraser: NewParaphraser(gen, opts.Marker, opts.MaxParaphraseWords, opts.MaxTokens),
		translator:  NewTranslator(gen, opts.MaxTranslateWords, opts.MaxTokens),
		target:      opts.Target,
		maxTokens:   opts.MaxTokens,
	}
}

func (k *Kit) Summarize(ctx context.Context, document string, opts SummaryOptions) (string, error) {
	return Summarize(ctx, k.summarizer, document, opts)
}

// PracticeQuestions generates and parses a set of practice question/answer pairs.
func (k *Kit) PracticeQuestions(ctx context.Context, document string) (QuestionSet, error) {
	raw, err := PracticeQuestions(ctx, k.gen, document, k.maxTokens)
	if err != nil {
		return QuestionSet{}, err
	}
	return ParsePracticeQuestions(raw), nil
}

func (k *Kit) Paraphrase(ctx context.Context, text string) (Paraphrase, error) {
	return k.paraphraser.Paraphrase(ctx, text)
}

// Translate renders text in the configured target language.
func (k *Kit) Translate(ctx context.Context, text string) (string, error) {
	return k.translator.Translate(ctx, strings.TrimSpace(text), k.target)
}

// Target is the language translations are rendered in.
func (k *Kit) Target() domain.Language { return k.target }
