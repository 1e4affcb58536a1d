package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"studyrag/internal/assist"
	"studyrag/internal/chunker"
	"studyrag/internal/config"
	"studyrag/internal/domain"
	cohereembed "studyrag/internal/embedding/cohere"
	openaiembed "studyrag/internal/embedding/openai"
	coheregen "studyrag/internal/generation/cohere"
	openaigen "studyrag/internal/generation/openai"
	"studyrag/internal/qa"
	"studyrag/internal/service"
	"studyrag/internal/summarizer"
	"studyrag/internal/vectorstore"
	"studyrag/internal/vectorstore/memory"
	"studyrag/internal/vectorstore/qdrant"
)

type app struct {
	search   *service.SearchService
	answerer *qa.Answerer
	assist   *assist.Kit
}

// build assembles every component named by cfg.
func build(cfg *config.AppConfig, lg *slog.Logger, mark assist.Marker) (*app, error) {
	emb, err := buildEmbedder(cfg.Embedder, lg)
	if err != nil {
		return nil, err
	}

	qcfg := qdrantConfig(cfg.VectorStore.Qdrant, lg)
	display, err := service.ParseDisplay(cfg.Search.Display)
	if err != nil {
		return nil, err
	}
	mode, err := domain.ParseFilterMode(cfg.Search.FilterMode)
	if err != nil {
		return nil, err
	}
	search := service.NewSearchService(emb, qdrant.NewGateway(qcfg), service.SearchOptions{
		Display:    display,
		FilterMode: mode,
	}, lg.With("component", "search"))

	var indexes vectorstore.ContextIndexFactory
	switch cfg.ContextStore.Type {
	case "memory", "":
		indexes = memory.Factory{}
	case "qdrant":
		indexes = qdrant.NewScratchFactory(qcfg)
	default:
		return nil, fmt.Errorf("unknown context store: %s", cfg.ContextStore.Type)
	}

	gen, native, err := buildGenerator(cfg.Generator, lg)
	if err != nil {
		return nil, err
	}
	answerer := qa.NewAnswerer(chunker.NewWordChunker(cfg.Chunker.WindowWords), emb, indexes, gen, qa.Options{
		TopK:      cfg.Answer.TopK,
		MaxTokens: cfg.Answer.MaxTokens,
	}, lg.With("component", "qa"))

	var sum domain.Summarizer
	switch cfg.Summarizer.Type {
	case "cohere":
		if native == nil {
			return nil, fmt.Errorf("summarizer cohere needs the cohere generator")
		}
		sum = native
	case "prompt":
		sum = assist.NewPromptSummarizer(gen, cfg.Generator.MaxTokens)
	case "frequency", "":
		sum = summarizer.NewFrequency()
	default:
		return nil, fmt.Errorf("unknown summarizer: %s", cfg.Summarizer.Type)
	}

	target, err := domain.ParseLanguage(cfg.Translate.Target)
	if err != nil {
		return nil, err
	}
	kit := assist.NewKit(gen, sum, assist.KitOptions{
		MaxTokens:         cfg.Generator.MaxTokens,
		MaxTranslateWords: cfg.Translate.MaxWords,
		Target:            target,
		Marker:            mark,
	})

	lg.Info("components_ready",
		slog.String("embedder", emb.Name()),
		slog.String("context_store", cfg.ContextStore.Type),
		slog.String("generator", cfg.Generator.Type),
		slog.String("summarizer", cfg.Summarizer.Type),
	)
	return &app{search: search, answerer: answerer, assist: kit}, nil
}

func buildEmbedder(cfg config.EmbedderConfig, lg *slog.Logger) (domain.Embedder, error) {
	switch cfg.Type {
	case "cohere", "":
		if cfg.Cohere == nil {
			return nil, fmt.Errorf("cohere embedder config missing")
		}
		c, err := cohereembed.NewClient(cohereembed.Config{
			BaseURL:           cfg.Cohere.BaseURL,
			APIKeyEnv:         cfg.Cohere.APIKeyEnv,
			Model:             cfg.Cohere.Model,
			Timeout:           seconds(cfg.Cohere.TimeoutSecs),
			BatchSize:         cfg.Cohere.BatchSize,
			MaxRetries:        cfg.Cohere.MaxRetries,
			RequestsPerSecond: cfg.Cohere.RequestsPerSecond,
			Logger:            lg.With("component", "embedder"),
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	case "openai":
		if cfg.OpenAI == nil {
			return nil, fmt.Errorf("openai embedder config missing")
		}
		c, err := openaiembed.NewClient(openaiembed.Config{
			BaseURL:   cfg.OpenAI.BaseURL,
			APIKeyEnv: cfg.OpenAI.APIKeyEnv,
			Model:     cfg.OpenAI.Model,
			Timeout:   seconds(cfg.OpenAI.TimeoutSecs),
			BatchSize: cfg.OpenAI.BatchSize,
			Logger:    lg.With("component", "embedder"),
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Type)
	}
}

// buildGenerator also returns the Cohere client when selected, since it
// doubles as the native summarizer.
func buildGenerator(cfg config.GeneratorConfig, lg *slog.Logger) (domain.Generator, domain.Summarizer, error) {
	switch cfg.Type {
	case "cohere", "":
		if cfg.Cohere == nil {
			return nil, nil, fmt.Errorf("cohere generator config missing")
		}
		c, err := coheregen.NewClient(coheregen.Config{
			BaseURL:            cfg.Cohere.BaseURL,
			APIKeyEnv:          cfg.Cohere.APIKeyEnv,
			Model:              cfg.Cohere.Model,
			SummarizationModel: cfg.Cohere.SummarizationModel,
			MaxTokens:          cfg.MaxTokens,
			Timeout:            seconds(cfg.Cohere.TimeoutSecs),
			MaxRetries:         cfg.Cohere.MaxRetries,
			RequestsPerSecond:  cfg.Cohere.RequestsPerSecond,
			Logger:             lg.With("component", "generator"),
		})
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil
	case "openai":
		if cfg.OpenAI == nil {
			return nil, nil, fmt.Errorf("openai generator config missing")
		}
		g, err := openaigen.NewGenerator(openaigen.Config{
			BaseURL:   cfg.OpenAI.BaseURL,
			APIKeyEnv: cfg.OpenAI.APIKeyEnv,
			Model:     cfg.OpenAI.Model,
			MaxTokens: cfg.MaxTokens,
			Timeout:   seconds(cfg.OpenAI.TimeoutSecs),
			Logger:    lg.With("component", "generator"),
		})
		if err != nil {
			return nil, nil, err
		}
		return g, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown generator: %s", cfg.Type)
	}
}

func qdrantConfig(q *config.QdrantConfig, lg *slog.Logger) qdrant.Config {
	if q == nil {
		q = &config.QdrantConfig{}
	}
	return qdrant.Config{
		URL:        q.URL,
		APIKey:     os.Getenv(q.APIKeyEnv),
		Collection: q.Collection,
		Timeout:    seconds(q.TimeoutSecs),
		HNSWEF:     q.HNSWEF,
		Exact:      q.Exact,
		MaxRetries: q.MaxRetries,
		Fields: qdrant.Fields{
			Title: q.Fields.Title,
			Text:  q.Fields.Text,
			URL:   q.Fields.URL,
			Lang:  q.Fields.Lang,
		},
		Logger: lg.With("component", "qdrant"),
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
