// Package assist holds the study helpers built on top of a text generator:
// summaries, practice questions, paraphrases and translations.
package assist

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"studyrag/internal/domain"
)

var (
	summaryLengths        = []string{"short", "medium", "long"}
	summaryFormats        = []string{"paragraph", "bullets"}
	summaryExtractiveness = []string{"low", "medium", "high"}
	defaultExtractiveness = "high"
	defaultTemperature    = 0.6
	maxSummaryTemperature = 5.0
)

// SummaryOptions are forwarded verbatim to the summarizer once validated.
// A nil Temperature selects the default.
type SummaryOptions struct {
	Length         string
	Format         string
	Extractiveness string
	Temperature    *float64
}

// Validate checks enum membership and the temperature range and returns the
// request that will be sent.
func (o SummaryOptions) Validate(text string) (domain.SummaryRequest, error) {
	req := domain.SummaryRequest{
		Text:           text,
		Length:         strings.ToLower(strings.TrimSpace(o.Length)),
		Format:         strings.ToLower(strings.TrimSpace(o.Format)),
		Extractiveness: strings.ToLower(strings.TrimSpace(o.Extractiveness)),
		Temperature:    defaultTemperature,
	}
	if req.Extractiveness == "" {
		req.Extractiveness = defaultExtractiveness
	}
	if o.Temperature != nil {
		req.Temperature = *o.Temperature
	}

	if !slices.Contains(summaryLengths, req.Length) {
		return req, fmt.Errorf("summary length %q: %w", o.Length, domain.ErrInvalidState)
	}
	if !slices.Contains(summaryFormats, req.Format) {
		return req, fmt.Errorf("summary format %q: %w", o.Format, domain.ErrInvalidState)
	}
	if !slices.Contains(summaryExtractiveness, req.Extractiveness) {
		return req, fmt.Errorf("summary extractiveness %q: %w", o.Extractiveness, domain.ErrInvalidState)
	}
	if req.Temperature < 0 || req.Temperature > maxSummaryTemperature {
		return req, fmt.Errorf("summary temperature %v outside [0, 5]: %w", req.Temperature, domain.ErrInvalidState)
	}
	return req, nil
}

// Summarize validates opts and asks s to summarize document.
func Summarize(ctx context.Context, s domain.Summarizer, document string, opts SummaryOptions) (string, error) {
	if strings.TrimSpace(document) == "" {
		return "", fmt.Errorf("empty document: %w", domain.ErrInvalidState)
	}
	req, err := opts.Validate(document)
	if err != nil {
		return "", err
	}
	out, err := s.Summarize(ctx, req)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return out, nil
}

const summaryPrompt = `Summarize the following text.
Length: %s (%s).
Format: %s.
%s

Text:
%s

Summary:`

var lengthHints = map[string]string{
	"short":  "one to two sentences",
	"medium": "three to five sentences",
	"long":   "six or more sentences",
}

var extractivenessHints = map[string]string{
	"low":    "Use your own words.",
	"medium": "Mix your own words with phrases from the text.",
	"high":   "Reuse sentences from the text wherever possible.",
}

// PromptSummarizer summarizes through a plain text generator for providers
// without a dedicated summarization endpoint.
type PromptSummarizer struct {
	gen       domain.Generator
	maxTokens int
}

func NewPromptSummarizer(gen domain.Generator, maxTokens int) *PromptSummarizer {
	return &PromptSummarizer{gen: gen, maxTokens: maxTokens}
}

func (p *PromptSummarizer) Summarize(ctx context.Context, req domain.SummaryRequest) (string, error) {
	format := "a single paragraph"
	if req.Format == "bullets" {
		format = "a bulleted list, one point per line starting with \"- \""
	}
	prompt := fmt.Sprintf(summaryPrompt,
		req.Length, lengthHints[req.Length],
		format,
		extractivenessHints[req.Extractiveness],
		req.Text,
	)
	out, err := p.gen.Generate(ctx, domain.GenerateRequest{
		Prompt:      prompt,
		Temperature: req.Temperature,
		MaxTokens:   p.maxTokens,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

var _ domain.Summarizer = (*PromptSummarizer)(nil)
