package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// CohereEmbedderConfig holds configuration for Cohere's embed endpoint.
type CohereEmbedderConfig struct {
	BaseURL           string  `yaml:"base_url"`
	APIKeyEnv         string  `yaml:"api_key_env"`
	Model             string  `yaml:"model"`
	TimeoutSecs       int     `yaml:"timeout_secs"`
	BatchSize         int     `yaml:"batch_size"`
	MaxRetries        int     `yaml:"max_retries"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	BatchSize   int    `yaml:"batch_size"`
}

// EmbedderConfig selects and configures the text embedder implementation.
// The same embedder serves the shared index and per-document answering.
type EmbedderConfig struct {
	Type   string                `yaml:"type"`
	Cohere *CohereEmbedderConfig `yaml:"cohere,omitempty"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	WindowWords int `yaml:"window_words"`
}

// QdrantFields names the payload keys of the indexed passages.
type QdrantFields struct {
	Title string `yaml:"title"`
	Text  string `yaml:"text"`
	URL   string `yaml:"url"`
	Lang  string `yaml:"lang"`
}

// QdrantConfig contains connection details for a Qdrant instance.
type QdrantConfig struct {
	URL         string       `yaml:"url"`
	APIKeyEnv   string       `yaml:"api_key_env"`
	Collection  string       `yaml:"collection"`
	HNSWEF      int          `yaml:"hnsw_ef"`
	Exact       bool         `yaml:"exact"`
	TimeoutSecs int          `yaml:"timeout_secs"`
	MaxRetries  int          `yaml:"max_retries"`
	Fields      QdrantFields `yaml:"fields"`
}

// VectorStoreConfig configures the shared, pre-populated passage index.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// ContextStoreConfig selects where per-document chunks are indexed while answering.
// "qdrant" reuses the vector_store.qdrant connection with throwaway collections.
type ContextStoreConfig struct {
	Type string `yaml:"type"`
}

type CohereGeneratorConfig struct {
	BaseURL            string  `yaml:"base_url"`
	APIKeyEnv          string  `yaml:"api_key_env"`
	Model              string  `yaml:"model"`
	SummarizationModel string  `yaml:"summarization_model"`
	TimeoutSecs        int     `yaml:"timeout_secs"`
	MaxRetries         int     `yaml:"max_retries"`
	RequestsPerSecond  float64 `yaml:"requests_per_second"`
}

type OpenAIGeneratorConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// GeneratorConfig selects the text generation provider.
type GeneratorConfig struct {
	Type      string                 `yaml:"type"`
	MaxTokens int                    `yaml:"max_tokens"`
	Cohere    *CohereGeneratorConfig `yaml:"cohere,omitempty"`
	OpenAI    *OpenAIGeneratorConfig `yaml:"openai,omitempty"`
}

// SummarizerConfig selects the summarizer: the generator's native endpoint
// ("cohere"), a prompt through the generator ("prompt") or offline ranking ("frequency").
type SummarizerConfig struct {
	Type string `yaml:"type"`
}

type SearchConfig struct {
	NumResults int    `yaml:"num_results"`
	Display    string `yaml:"display"`
	FilterMode string `yaml:"filter_mode"`
}

type AnswerConfig struct {
	TopK      int `yaml:"top_k"`
	MaxTokens int `yaml:"max_tokens"`
}

type TranslateConfig struct {
	MaxWords int    `yaml:"max_words"`
	Target   string `yaml:"target"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder     EmbedderConfig     `yaml:"embedder"`
	Chunker      ChunkerConfig      `yaml:"chunker"`
	VectorStore  VectorStoreConfig  `yaml:"vector_store"`
	ContextStore ContextStoreConfig `yaml:"context_store"`
	Generator    GeneratorConfig    `yaml:"generator"`
	Summarizer   SummarizerConfig   `yaml:"summarizer"`
	Search       SearchConfig       `yaml:"search"`
	Answer       AnswerConfig       `yaml:"answer"`
	Translate    TranslateConfig    `yaml:"translate"`
	Log          LogConfig          `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
// Environment overrides are applied in both cases.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/studyrag/config.yaml.
// If neither exists, it writes defaults to ~/.config/studyrag/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	applyEnvOverrides(cfg)
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects unknown provider types.
func (c *AppConfig) Validate() error {
	checks := []struct {
		field string
		value string
		allow []string
	}{
		{"embedder.type", c.Embedder.Type, []string{"cohere", "openai"}},
		{"vector_store.type", c.VectorStore.Type, []string{"qdrant"}},
		{"context_store.type", c.ContextStore.Type, []string{"memory", "qdrant"}},
		{"generator.type", c.Generator.Type, []string{"cohere", "openai"}},
		{"summarizer.type", c.Summarizer.Type, []string{"cohere", "prompt", "frequency"}},
	}
	for _, ch := range checks {
		if !contains(ch.allow, ch.value) {
			return fmt.Errorf("%s: unknown value %q (want one of %v)", ch.field, ch.value, ch.allow)
		}
	}
	if c.Summarizer.Type == "cohere" && c.Generator.Type != "cohere" {
		return errors.New("summarizer.type cohere requires generator.type cohere")
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "studyrag", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Embedder:     EmbedderConfig{Type: "cohere"},
		VectorStore:  VectorStoreConfig{Type: "qdrant"},
		ContextStore: ContextStoreConfig{Type: "memory"},
		Generator:    GeneratorConfig{Type: "cohere"},
		Summarizer:   SummarizerConfig{Type: "cohere"},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "cohere"
	}
	switch cfg.Embedder.Type {
	case "cohere":
		if cfg.Embedder.Cohere == nil {
			cfg.Embedder.Cohere = &CohereEmbedderConfig{}
		}
		e := cfg.Embedder.Cohere
		if e.BaseURL == "" {
			e.BaseURL = "https://api.cohere.ai"
		}
		if e.APIKeyEnv == "" {
			e.APIKeyEnv = "COHERE_API_KEY"
		}
		if e.Model == "" {
			e.Model = "multilingual-22-12"
		}
		if e.TimeoutSecs == 0 {
			e.TimeoutSecs = 30
		}
		if e.BatchSize == 0 {
			e.BatchSize = 96
		}
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		e := cfg.Embedder.OpenAI
		if e.BaseURL == "" {
			e.BaseURL = "https://api.openai.com/v1"
		}
		if e.APIKeyEnv == "" {
			e.APIKeyEnv = "OPENAI_API_KEY"
		}
		if e.Model == "" {
			e.Model = "text-embedding-3-small"
		}
		if e.TimeoutSecs == 0 {
			e.TimeoutSecs = 30
		}
		if e.BatchSize == 0 {
			e.BatchSize = 32
		}
	}

	if cfg.Chunker.WindowWords <= 0 {
		cfg.Chunker.WindowWords = 256
	}

	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "qdrant"
	}
	if cfg.VectorStore.Qdrant == nil {
		cfg.VectorStore.Qdrant = &QdrantConfig{}
	}
	q := cfg.VectorStore.Qdrant
	if q.URL == "" {
		q.URL = "http://localhost:6333"
	}
	if q.APIKeyEnv == "" {
		q.APIKeyEnv = "QDRANT_API_KEY"
	}
	if q.Collection == "" {
		q.Collection = "wiki-embed"
	}
	if q.HNSWEF == 0 {
		q.HNSWEF = 128
	}
	if q.TimeoutSecs == 0 {
		q.TimeoutSecs = 15
	}
	if q.Fields == (QdrantFields{}) {
		q.Fields = QdrantFields{Title: "title", Text: "text", URL: "url", Lang: "lang"}
	}

	if cfg.ContextStore.Type == "" {
		cfg.ContextStore.Type = "memory"
	}

	if cfg.Generator.Type == "" {
		cfg.Generator.Type = "cohere"
	}
	if cfg.Generator.MaxTokens == 0 {
		cfg.Generator.MaxTokens = 512
	}
	switch cfg.Generator.Type {
	case "cohere":
		if cfg.Generator.Cohere == nil {
			cfg.Generator.Cohere = &CohereGeneratorConfig{}
		}
		g := cfg.Generator.Cohere
		if g.BaseURL == "" {
			g.BaseURL = "https://api.cohere.ai"
		}
		if g.APIKeyEnv == "" {
			g.APIKeyEnv = "COHERE_API_KEY"
		}
		if g.Model == "" {
			g.Model = "command-xlarge-nightly"
		}
		if g.SummarizationModel == "" {
			g.SummarizationModel = "summarize-xlarge"
		}
		if g.TimeoutSecs == 0 {
			g.TimeoutSecs = 120
		}
	case "openai":
		if cfg.Generator.OpenAI == nil {
			cfg.Generator.OpenAI = &OpenAIGeneratorConfig{}
		}
		g := cfg.Generator.OpenAI
		if g.BaseURL == "" {
			g.BaseURL = "https://api.openai.com/v1"
		}
		if g.APIKeyEnv == "" {
			g.APIKeyEnv = "OPENAI_API_KEY"
		}
		if g.Model == "" {
			g.Model = "gpt-4o-mini"
		}
		if g.TimeoutSecs == 0 {
			g.TimeoutSecs = 120
		}
	}

	if cfg.Summarizer.Type == "" {
		if cfg.Generator.Type == "cohere" {
			cfg.Summarizer.Type = "cohere"
		} else {
			cfg.Summarizer.Type = "prompt"
		}
	}

	if cfg.Search.NumResults <= 0 {
		cfg.Search.NumResults = 3
	}
	if cfg.Search.Display == "" {
		cfg.Search.Display = "text"
	}
	if cfg.Search.FilterMode == "" {
		cfg.Search.FilterMode = "any"
	}

	if cfg.Answer.TopK <= 0 {
		cfg.Answer.TopK = 4
	}
	if cfg.Answer.MaxTokens == 0 {
		cfg.Answer.MaxTokens = 256
	}

	if cfg.Translate.MaxWords <= 0 {
		cfg.Translate.MaxWords = 4800
	}
	if cfg.Translate.Target == "" {
		cfg.Translate.Target = "English"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.File == "" {
		cfg.Log.File = "studyrag.log"
	}
}

// applyEnvOverrides honours the variables the hosted deployment is configured with.
func applyEnvOverrides(cfg *AppConfig) {
	if v := os.Getenv("QDRANT_HOST"); v != "" && cfg.VectorStore.Qdrant != nil {
		cfg.VectorStore.Qdrant.URL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}
