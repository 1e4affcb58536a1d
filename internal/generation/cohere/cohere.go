package cohere

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"studyrag/internal/domain"
	"studyrag/internal/logger"
	"studyrag/internal/remote"
)

const serviceName = "cohere-generate"

// Config configures the Cohere generation and summarization client.
type Config struct {
	BaseURL            string
	APIKeyEnv          string
	Model              string
	SummarizationModel string
	MaxTokens          int
	Timeout            time.Duration
	MaxRetries         int
	RequestsPerSecond  float64
	Logger             *slog.Logger
}

// Client calls Cohere's generate and summarize endpoints.
type Client struct {
	http           *remote.Client
	model          string
	summarizeModel string
	maxTokens      int
	logger         *slog.Logger
}

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
		cfg.Model = "command-xlarge-nightly"
	}
	if cfg.SummarizationModel == "" {
		cfg.SummarizationModel = "summarize-xlarge"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 256
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
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
		model:          cfg.Model,
		summarizeModel: cfg.SummarizationModel,
		maxTokens:      cfg.MaxTokens,
		logger:         lg,
	}, nil
}

type generateRequest struct {
	Model          string   `json:"model"`
	Prompt         string   `json:"prompt"`
	Temperature    float64  `json:"temperature"`
	MaxTokens      int      `json:"max_tokens"`
	StopSequences  []string `json:"stop_sequences,omitempty"`
	NumGenerations int      `json:"num_generations"`
}

type generateResponse struct {
	Generations []struct {
		Text string `json:"text"`
	} `json:"generations"`
}

// Generate returns the text of the first generation.
func (c *Client) Generate(ctx context.Context, req domain.GenerateRequest) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}
	start := time.Now()
	var resp generateResponse
	body := generateRequest{
		Model:          c.model,
		Prompt:         req.Prompt,
		Temperature:    req.Temperature,
		MaxTokens:      maxTokens,
		StopSequences:  req.StopSequences,
		NumGenerations: 1,
	}
	if err := c.http.Do(ctx, http.MethodPost, "/v1/generate", body, &resp); err != nil {
		c.logger.Error("generate_failed", slog.String("error", err.Error()))
		return "", err
	}
	if len(resp.Generations) == 0 {
		return "", domain.NewServiceError(serviceName, domain.KindBadResponse, errors.New("no generations returned"))
	}
	c.logger.Debug("generate_completed",
		slog.String("model", c.model),
		slog.Float64("temperature", req.Temperature),
		slog.Duration("elapsed", time.Since(start)),
	)
	return strings.TrimSpace(resp.Generations[0].Text), nil
}

type summarizeRequest struct {
	Text           string  `json:"text"`
	Length         string  `json:"length"`
	Format         string  `json:"format"`
	Model          string  `json:"model"`
	Extractiveness string  `json:"extractiveness"`
	Temperature    float64 `json:"temperature"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
}

// Summarize forwards the request knobs verbatim to the summarize endpoint.
func (c *Client) Summarize(ctx context.Context, req domain.SummaryRequest) (string, error) {
	var resp summarizeResponse
	body := summarizeRequest{
		Text:           req.Text,
		Length:         req.Length,
		Format:         req.Format,
		Model:          c.summarizeModel,
		Extractiveness: req.Extractiveness,
		Temperature:    req.Temperature,
	}
	if err := c.http.Do(ctx, http.MethodPost, "/v1/summarize", body, &resp); err != nil {
		c.logger.Error("summarize_failed", slog.String("error", err.Error()))
		return "", err
	}
	return resp.Summary, nil
}

var (
	_ domain.Generator  = (*Client)(nil)
	_ domain.Summarizer = (*Client)(nil)
)
