package service

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

// Display selects how a hit is rendered as a result string.
type Display string

const (
	// DisplayText shows the passage body only.
	DisplayText Display = "text"
	// DisplayTitleText shows the title above the body.
	DisplayTitleText Display = "title_text"
)

// ParseDisplay maps a config value to a Display, defaulting to DisplayText.
func ParseDisplay(s string) (Display, error) {
	switch Display(strings.ToLower(strings.TrimSpace(s))) {
	case "", DisplayText:
		return DisplayText, nil
	case DisplayTitleText:
		return DisplayTitleText, nil
	}
	return "", fmt.Errorf("unknown display %q", s)
}

// SearchOptions configures result projection and filter composition.
type SearchOptions struct {
	Display    Display
	FilterMode domain.FilterMode
}

// Results holds the display texts and source URLs of one search, both padded.
type Results struct {
	Texts   []string
	Sources []string
}

// SearchService runs cross-lingual document search over the shared index.
type SearchService struct {
	embedder domain.Embedder
	index    vectorstore.Searcher
	opts     SearchOptions
	logger   *slog.Logger
}

func NewSearchService(embedder domain.Embedder, index vectorstore.Searcher, opts SearchOptions, lg *slog.Logger) *SearchService {
	if opts.Display == "" {
		opts.Display = DisplayText
	}
	if opts.FilterMode == "" {
		opts.FilterMode = domain.FilterAny
	}
	if lg == nil {
		lg = logger.Discard()
	}
	return &SearchService{embedder: embedder, index: index, opts: opts, logger: lg}
}

// SearchDocuments returns exactly numResults display strings for query.
// Missing hits are padded with empty strings after the real ones.
func (s *SearchService) SearchDocuments(ctx context.Context, query string, numResults int, languages []domain.Language, exactText bool) ([]string, error) {
	hits, err := s.Hits(ctx, query, numResults, languages, exactText)
	if err != nil {
		return nil, err
	}
	return pad(project(hits, s.displayText), numResults), nil
}

// DocumentSources is SearchDocuments projecting the source URL of each hit.
func (s *SearchService) DocumentSources(ctx context.Context, query string, numResults int, languages []domain.Language, exactText bool) ([]string, error) {
	hits, err := s.Hits(ctx, query, numResults, languages, exactText)
	if err != nil {
		return nil, err
	}
	return pad(project(hits, sourceURL), numResults), nil
}

// Search returns both projections from a single round-trip.
func (s *SearchService) Search(ctx context.Context, query string, numResults int, languages []domain.Language, exactText bool) (Results, error) {
	hits, err := s.Hits(ctx, query, numResults, languages, exactText)
	if err != nil {
		return Results{}, err
	}
	return Results{
		Texts:   pad(project(hits, s.displayText), numResults),
		Sources: pad(project(hits, sourceURL), numResults),
	}, nil
}

// Hits embeds the query and runs the filtered search, returning hits in index order.
func (s *SearchService) Hits(ctx context.Context, query string, numResults int, languages []domain.Language, exactText bool) ([]domain.SearchHit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty query: %w", domain.ErrInvalidState)
	}
	if numResults < 1 {
		return nil, fmt.Errorf("num_results must be positive, got %d: %w", numResults, domain.ErrInvalidState)
	}
	for _, l := range languages {
		if !l.Valid() {
			return nil, fmt.Errorf("unsupported language %q: %w", l, domain.ErrInvalidState)
		}
	}
	start := time.Now()

	vecs, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	filter := domain.NewFilter(query, languages, exactText, s.opts.FilterMode)
	hits, err := s.index.Search(ctx, vecs[0], numResults, filter)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	if len(hits) > numResults {
		hits = hits[:numResults]
	}

	s.logger.Info("search_documents",
		slog.Int("num_results", numResults),
		slog.Int("hits", len(hits)),
		slog.Any("languages", filter.Codes()),
		slog.Bool("exact_text", exactText),
		slog.String("filter_mode", string(filter.Mode)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return hits, nil
}

func (s *SearchService) displayText(h domain.SearchHit) string {
	if s.opts.Display == DisplayTitleText && h.Payload.Title != "" {
		return h.Payload.Title + "\n\n" + h.Payload.Text
	}
	return h.Payload.Text
}

func sourceURL(h domain.SearchHit) string { return h.Payload.URL }

func project(hits []domain.SearchHit, fn func(domain.SearchHit) string) []string {
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, fn(h))
	}
	return out
}

// pad appends empty strings until values has exactly n entries.
func pad(values []string, n int) []string {
	for len(values) < n {
		values = append(values, "")
	}
	return values
}
