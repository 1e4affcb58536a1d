package openai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"studyrag/internal/domain"
	"studyrag/internal/embedding"
	"studyrag/internal/logger"
	"studyrag/internal/remote"
)

const (
	serviceName    = "openai-embed"
	defaultBaseURL = "https://api.openai.com/v1"
)

// Client is an OpenAI-compatible embeddings client implementing domain.Embedder.
type Client struct {
	client    *openai.Client
	model     string
	batchSize int
	logger    *slog.Logger
}

// Config configures the OpenAI-compatible embeddings client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
	BatchSize int
	Logger    *slog.Logger
}

// NewClient creates a new embeddings client using the provided configuration.
// A key is only mandatory against the hosted OpenAI endpoint; compatible local servers may run without one.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" && cfg.BaseURL == defaultBaseURL {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.Model == "" {
		cfg.Model = string(openai.SmallEmbedding3)
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 32
	}
	lg := cfg.Logger
	if lg == nil {
		lg = logger.Discard()
	}

	oc := openai.DefaultConfig(key)
	oc.BaseURL = cfg.BaseURL
	oc.HTTPClient = &http.Client{Timeout: t}
	return &Client{
		client:    openai.NewClientWithConfig(oc),
		model:     cfg.Model,
		batchSize: cfg.BatchSize,
		logger:    lg,
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return "openai:" + c.model }

// Embed returns one vector per text in input order.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := embedding.CheckInput(texts); err != nil {
		return nil, err
	}
	start := time.Now()
	out := make([][]float32, 0, len(texts))
	for _, batch := range embedding.Batches(texts, c.batchSize) {
		resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: batch,
			Model: openai.EmbeddingModel(c.model),
		})
		if err != nil {
			c.logger.Error("embed_failed", slog.String("provider", "openai"), slog.String("error", err.Error()))
			return nil, remote.FromOpenAI(serviceName, err)
		}
		data := resp.Data
		sort.SliceStable(data, func(i, j int) bool { return data[i].Index < data[j].Index })
		vecs := make([][]float32, len(data))
		for i := range data {
			vecs[i] = data[i].Embedding
		}
		if err := embedding.CheckCount(serviceName, len(batch), vecs); err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	c.logger.Debug("embed_completed",
		slog.String("provider", "openai"),
		slog.Int("embedding_count", len(out)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}

var _ domain.Embedder = (*Client)(nil)
