package qdrant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"studyrag/internal/domain"
	"studyrag/internal/logger"
	"studyrag/internal/remote"
	"studyrag/internal/vectorstore"
)

const serviceName = "qdrant"

// Fields names the payload keys of the indexed passages.
type Fields struct {
	Title string
	Text  string
	URL   string
	Lang  string
}

// DefaultFields matches the payload layout of the wiki collection.
func DefaultFields() Fields {
	return Fields{Title: "title", Text: "text", URL: "url", Lang: "lang"}
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
	HNSWEF     int
	Exact      bool
	MaxRetries int
	Fields     Fields
	Logger     *slog.Logger
}

// Gateway is a minimal REST client for filtered similarity search against one Qdrant collection.
type Gateway struct {
	http       *remote.Client
	collection string
	hnswEF     int
	exact      bool
	fields     Fields
	logger     *slog.Logger
}

func NewGateway(cfg Config) *Gateway {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	if cfg.HNSWEF <= 0 {
		cfg.HNSWEF = 128
	}
	if cfg.Fields == (Fields{}) {
		cfg.Fields = DefaultFields()
	}
	lg := cfg.Logger
	if lg == nil {
		lg = logger.Discard()
	}
	headers := map[string]string{}
	if cfg.APIKey != "" {
		headers["api-key"] = cfg.APIKey
	}
	return &Gateway{
		http: remote.New(remote.Config{
			Service:    serviceName,
			BaseURL:    cfg.URL,
			Headers:    headers,
			Timeout:    timeout,
			MaxRetries: cfg.MaxRetries,
			Logger:     lg,
		}),
		collection: cfg.Collection,
		hnswEF:     cfg.HNSWEF,
		exact:      cfg.Exact,
		fields:     cfg.Fields,
		logger:     lg,
	}
}

type searchResponse struct {
	Result []struct {
		Score   float64        `json:"score"`
		Payload map[string]any `json:"payload"`
	} `json:"result"`
}

// Search returns up to topK hits in the order Qdrant ranked them.
func (g *Gateway) Search(ctx context.Context, vector []float32, topK int, filter domain.Filter) ([]domain.SearchHit, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("search limit %d: %w", topK, domain.ErrInvalidState)
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
		"params": map[string]any{
			"hnsw_ef": g.hnswEF,
			"exact":   g.exact,
		},
	}
	if f := buildFilter(filter, g.fields); f != nil {
		req["filter"] = f
	}

	start := time.Now()
	var resp searchResponse
	if err := g.http.Do(ctx, http.MethodPost, g.collectionPath("/points/search"), req, &resp); err != nil {
		return nil, err
	}
	hits := make([]domain.SearchHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hits = append(hits, domain.SearchHit{Payload: g.decodePayload(r.Payload), Score: r.Score})
	}
	g.logger.Debug("search_completed",
		slog.String("collection", g.collection),
		slog.Int("limit", topK),
		slog.Int("hits", len(hits)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return hits, nil
}

// buildFilter renders a domain.Filter as a Qdrant filter object.
// FilterAny lists every condition under "should"; FilterAll requires one of the
// languages ("match any") and the text match under "must".
func buildFilter(f domain.Filter, fields Fields) map[string]any {
	if f.Empty() {
		return nil
	}
	var textCond map[string]any
	if f.Text != "" {
		textCond = map[string]any{"key": fields.Text, "match": map[string]any{"text": f.Text}}
	}
	codes := f.Codes()

	if f.Mode == domain.FilterAll {
		var must []map[string]any
		if len(codes) > 0 {
			must = append(must, map[string]any{"key": fields.Lang, "match": map[string]any{"any": codes}})
		}
		if textCond != nil {
			must = append(must, textCond)
		}
		return map[string]any{"must": must}
	}

	var should []map[string]any
	if textCond != nil {
		should = append(should, textCond)
	}
	for _, c := range codes {
		should = append(should, map[string]any{"key": fields.Lang, "match": map[string]any{"value": c}})
	}
	return map[string]any{"should": should}
}

func (g *Gateway) decodePayload(p map[string]any) domain.Payload {
	str := func(key string) string {
		if v, ok := p[key].(string); ok {
			return v
		}
		return ""
	}
	return domain.Payload{
		Title: str(g.fields.Title),
		Text:  str(g.fields.Text),
		URL:   str(g.fields.URL),
		Lang:  str(g.fields.Lang),
	}
}

func (g *Gateway) encodePayload(p domain.Payload) map[string]any {
	out := map[string]any{g.fields.Text: p.Text}
	if p.Title != "" {
		out[g.fields.Title] = p.Title
	}
	if p.URL != "" {
		out[g.fields.URL] = p.URL
	}
	if p.Lang != "" {
		out[g.fields.Lang] = p.Lang
	}
	return out
}

func (g *Gateway) collectionPath(suffix string) string {
	return "/collections/" + url.PathEscape(g.collection) + suffix
}

func (g *Gateway) create(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid dimension %d: %w", dimension, domain.ErrInvalidState)
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	return g.http.Do(ctx, http.MethodPut, g.collectionPath(""), body, nil)
}

func (g *Gateway) upsert(ctx context.Context, points []domain.Point) error {
	if len(points) == 0 {
		return nil
	}
	out := make([]map[string]any, len(points))
	for i, p := range points {
		out[i] = map[string]any{
			"id":      pointID(p.ID),
			"vector":  p.Vector,
			"payload": g.encodePayload(p.Payload),
		}
	}
	return g.http.Do(ctx, http.MethodPut, g.collectionPath("/points?wait=true"), map[string]any{"points": out}, nil)
}

func (g *Gateway) drop(ctx context.Context) error {
	return g.http.Do(ctx, http.MethodDelete, g.collectionPath(""), nil, nil)
}

// pointID maps arbitrary ids onto the UUIDs Qdrant accepts.
func pointID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	if u, err := uuid.Parse(id); err == nil {
		return u.String()
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(id)).String()
}

// ScratchFactory creates throwaway collections holding one document's chunks.
type ScratchFactory struct {
	cfg Config
}

func NewScratchFactory(cfg Config) *ScratchFactory {
	return &ScratchFactory{cfg: cfg}
}

// NewContextIndex creates a uniquely named collection with the given vector size.
func (f *ScratchFactory) NewContextIndex(ctx context.Context, dimension int) (vectorstore.ContextIndex, error) {
	cfg := f.cfg
	cfg.Collection = "scratch-" + uuid.NewString()
	g := NewGateway(cfg)
	if err := g.create(ctx, dimension); err != nil {
		return nil, err
	}
	g.logger.Debug("scratch_collection_created", slog.String("collection", g.collection), slog.Int("dimension", dimension))
	return &scratchIndex{g: g}, nil
}

type scratchIndex struct {
	g       *Gateway
	dropped bool
}

func (s *scratchIndex) Search(ctx context.Context, vector []float32, topK int, filter domain.Filter) ([]domain.SearchHit, error) {
	if s.dropped {
		return nil, errors.New("scratch collection already dropped")
	}
	return s.g.Search(ctx, vector, topK, filter)
}

func (s *scratchIndex) Upsert(ctx context.Context, points []domain.Point) error {
	if s.dropped {
		return errors.New("scratch collection already dropped")
	}
	return s.g.upsert(ctx, points)
}

func (s *scratchIndex) Drop(ctx context.Context) error {
	if s.dropped {
		return nil
	}
	s.dropped = true
	return s.g.drop(ctx)
}

var (
	_ vectorstore.Searcher            = (*Gateway)(nil)
	_ vectorstore.ContextIndexFactory = (*ScratchFactory)(nil)
)
