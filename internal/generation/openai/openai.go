package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"studyrag/internal/domain"
	"studyrag/internal/logger"
	"studyrag/internal/remote"
)

const (
	serviceName    = "openai-generate"
	defaultBaseURL = "https://api.openai.com/v1"
)

type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	MaxTokens int
	Timeout   time.Duration
	Logger    *slog.Logger
}

// Generator sends prompts as single-message chat completions.
type Generator struct {
	client    *openai.Client
	model     string
	maxTokens int
	logger    *slog.Logger
}

func NewGenerator(cfg Config) (*Generator, error) {
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
		cfg.Model = openai.GPT4oMini
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
	oc := openai.DefaultConfig(key)
	oc.BaseURL = cfg.BaseURL
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return &Generator{
		client:    openai.NewClientWithConfig(oc),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    lg,
	}, nil
}

// Generate returns the first choice's message content.
func (g *Generator) Generate(ctx context.Context, req domain.GenerateRequest) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = g.maxTokens
	}
	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: temperature(req.Temperature),
		MaxTokens:   maxTokens,
		Stop:        req.StopSequences,
	})
	if err != nil {
		g.logger.Error("generate_failed", slog.String("provider", "openai"), slog.String("error", err.Error()))
		return "", remote.FromOpenAI(serviceName, err)
	}
	if len(resp.Choices) == 0 {
		return "", domain.NewServiceError(serviceName, domain.KindBadResponse, errors.New("no choices returned"))
	}
	g.logger.Debug("generate_completed",
		slog.String("provider", "openai"),
		slog.String("model", g.model),
		slog.Duration("elapsed", time.Since(start)),
	)
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// temperature keeps an explicit zero on the wire; go-openai drops 0 via omitempty.
func temperature(t float64) float32 {
	if t <= 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}

var _ domain.Generator = (*Generator)(nil)
