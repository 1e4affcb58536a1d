// Package summarizer provides an offline extractive summarizer used when no
// hosted summarization service is configured.
package summarizer

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"

	"studyrag/internal/domain"
)

var sentenceCounts = map[string]int{
	"short":  3,
	"medium": 5,
	"long":   8,
}

var (
	sentencePattern = regexp.MustCompile(`[^.!?]+(?:[.!?]+|$)`)
	tokenPattern    = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
)

// Frequency ranks sentences by the normalized frequency of their content words
// and keeps the best ones in document order. Extractiveness and temperature
// are ignored since the output is always verbatim sentences.
type Frequency struct {
	stopwords map[string]struct{}
}

func NewFrequency() *Frequency {
	return &Frequency{stopwords: defaultStopwords()}
}

func (f *Frequency) Summarize(ctx context.Context, req domain.SummaryRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	n, ok := sentenceCounts[req.Length]
	if !ok {
		n = sentenceCounts["medium"]
	}
	picked := f.Rank(req.Text, n)
	if req.Format == "bullets" {
		for i, s := range picked {
			picked[i] = "- " + s
		}
		return strings.Join(picked, "\n"), nil
	}
	return strings.Join(picked, " "), nil
}

// Rank returns at most n sentences of text in their original order.
func (f *Frequency) Rank(text string, n int) []string {
	var sentences []string
	for _, s := range sentencePattern.FindAllString(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	if len(sentences) <= n {
		return sentences
	}

	tokens := make([][]string, len(sentences))
	freq := map[string]float64{}
	top := 0.0
	for i, s := range sentences {
		tokens[i] = tokenPattern.FindAllString(strings.ToLower(s), -1)
		for _, tok := range tokens[i] {
			if _, stop := f.stopwords[tok]; stop {
				continue
			}
			freq[tok]++
			top = math.Max(top, freq[tok])
		}
	}

	order := make([]int, len(sentences))
	scores := make([]float64, len(sentences))
	for i, toks := range tokens {
		order[i] = i
		for _, tok := range toks {
			scores[i] += freq[tok] / top
		}
		// long sentences would otherwise always win
		if len(toks) > 0 {
			scores[i] /= math.Sqrt(float64(len(toks)))
		}
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	keep := order[:n]
	sort.Ints(keep)
	out := make([]string, n)
	for i, idx := range keep {
		out[i] = sentences[idx]
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "its", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

var _ domain.Summarizer = (*Frequency)(nil)
