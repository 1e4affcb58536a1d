package assist

import (
	"context"
	"fmt"
	"strings"

	"studyrag/internal/domain"
)

// DefaultMaxTranslateWords bounds the text sent for translation.
const DefaultMaxTranslateWords = 4800

const translatePrompt = `Translate the following text into %s.
Reply with the translation only.

Text:
%s

Translation:`

type Translator struct {
	gen       domain.Generator
	maxWords  int
	maxTokens int
}

func NewTranslator(gen domain.Generator, maxWords, maxTokens int) *Translator {
	if maxWords <= 0 {
		maxWords = DefaultMaxTranslateWords
	}
	return &Translator{gen: gen, maxWords: maxWords, maxTokens: maxTokens}
}

// Translate renders text in target, English when target is empty. Only the
// first maxWords words are sent.
func (t *Translator) Translate(ctx context.Context, text string, target domain.Language) (string, error) {
	if target == "" {
		target = domain.English
	}
	if !target.Valid() {
		return "", fmt.Errorf("unsupported language %q: %w", target, domain.ErrInvalidState)
	}
	text = TruncateWords(text, t.maxWords)
	if text == "" {
		return "", fmt.Errorf("empty text: %w", domain.ErrInvalidState)
	}
	out, err := t.gen.Generate(ctx, domain.GenerateRequest{
		Prompt:      fmt.Sprintf(translatePrompt, target, text),
		Temperature: 0,
		MaxTokens:   t.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// TruncateWords keeps the first n whitespace-separated words of text joined by single spaces.
func TruncateWords(text string, n int) string {
	words := strings.Fields(text)
	if n > 0 && len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
