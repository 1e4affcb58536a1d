package cohere

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"studyrag/internal/domain"
	"studyrag/internal/embedding"
	"studyrag/internal/logger"
	"studyrag/internal/remote"
)

const serviceName = "cohere-embed"

// Client is a Cohere embed API client implementing domain.Embedder.
type Client struct {
	http      *remote.Client
	model     string
	batchSize int
	logger    *slog.Logger
}

// Config configures the Cohere embeddings client.
type Config struct {
	BaseURL           string
	APIKeyEnv         string
	Model             string
	Timeout           time.Duration
	BatchSize         int
	MaxRetries        int
	RequestsPerSecond float64
	Logger            *slog.Logger
}

// NewClient creates a new embeddings client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "COHERE_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.cohere.ai"
	}
	if cfg.Model == "" {
		cfg.Model = "multilingual-22-12"
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 96
	}
	lg := cfg.Logger
	if lg == nil {
		lg = logger.Discard()
	}
	return &Client{
		http: remote.New(remote.Config{
			Service:           serviceName,
			BaseURL:           cfg.BaseURL,
			Headers:           map[string]string{"Authorization": "Bearer " + key},
			Timeout:           cfg.Timeout,
			MaxRetries:        cfg.MaxRetries,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Logger:            lg,
		}),
		model:     cfg.Model,
		batchSize: cfg.BatchSize,
		logger:    lg,
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return "cohere:" + c.model }

type embedRequest struct {
	Texts    []string `json:"texts"`
	Model    string   `json:"model"`
	Truncate string   `json:"truncate"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed returns one vector per text in input order.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := embedding.CheckInput(texts); err != nil {
		return nil, err
	}
	start := time.Now()
	c.logger.Debug("embed_started",
		slog.String("provider", "cohere"),
		slog.String("model", c.model),
		slog.Int("text_count", len(texts)),
	)

	out := make([][]float32, 0, len(texts))
	for _, batch := range embedding.Batches(texts, c.batchSize) {
		var resp embedResponse
		req := embedRequest{Texts: batch, Model: c.model, Truncate: "END"}
		if err := c.http.Do(ctx, http.MethodPost, "/v1/embed", req, &resp); err != nil {
			c.logger.Error("embed_failed", slog.String("error", err.Error()), slog.Duration("elapsed", time.Since(start)))
			return nil, err
		}
		if err := embedding.CheckCount(serviceName, len(batch), resp.Embeddings); err != nil {
			return nil, err
		}
		out = append(out, resp.Embeddings...)
	}

	c.logger.Debug("embed_completed",
		slog.Int("embedding_count", len(out)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}

var _ domain.Embedder = (*Client)(nil)
