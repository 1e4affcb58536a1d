package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("QDRANT_HOST", "")
	t.Setenv("LOG_LEVEL", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "cohere", cfg.Embedder.Type)
	require.NotNil(t, cfg.Embedder.Cohere)
	assert.Equal(t, "multilingual-22-12", cfg.Embedder.Cohere.Model)
	assert.Equal(t, 96, cfg.Embedder.Cohere.BatchSize)
	assert.Equal(t, 256, cfg.Chunker.WindowWords)
	assert.Equal(t, "wiki-embed", cfg.VectorStore.Qdrant.Collection)
	assert.Equal(t, 128, cfg.VectorStore.Qdrant.HNSWEF)
	assert.False(t, cfg.VectorStore.Qdrant.Exact)
	assert.Equal(t, "memory", cfg.ContextStore.Type)
	assert.Equal(t, "command-xlarge-nightly", cfg.Generator.Cohere.Model)
	assert.Equal(t, "summarize-xlarge", cfg.Generator.Cohere.SummarizationModel)
	assert.Equal(t, 3, cfg.Search.NumResults)
	assert.Equal(t, "any", cfg.Search.FilterMode)
	assert.Equal(t, 4, cfg.Answer.TopK)
	assert.Equal(t, 4800, cfg.Translate.MaxWords)
	assert.Equal(t, "studyrag.log", cfg.Log.File)
	assert.NoError(t, cfg.Validate())
}

func TestLoadAppliesDefaultsToPartialFile(t *testing.T) {
	t.Setenv("QDRANT_HOST", "")
	t.Setenv("LOG_LEVEL", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
embedder:
  type: openai
  openai:
    base_url: http://localhost:11434/v1
generator:
  type: openai
search:
  num_results: 5
  filter_mode: all
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434/v1", cfg.Embedder.OpenAI.BaseURL)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedder.OpenAI.Model)
	assert.Nil(t, cfg.Embedder.Cohere)
	assert.Equal(t, "gpt-4o-mini", cfg.Generator.OpenAI.Model)
	assert.Equal(t, "prompt", cfg.Summarizer.Type)
	assert.Equal(t, 5, cfg.Search.NumResults)
	assert.Equal(t, "all", cfg.Search.FilterMode)
	assert.NoError(t, cfg.Validate())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("QDRANT_HOST", "https://qdrant.example:6333")
	t.Setenv("LOG_LEVEL", "debug")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "https://qdrant.example:6333", cfg.VectorStore.Qdrant.URL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("QDRANT_HOST", "")
	t.Setenv("LOG_LEVEL", "")
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Search.Display = "title_text"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadDefaultWritesUserConfig(t *testing.T) {
	t.Setenv("QDRANT_HOST", "")
	t.Setenv("LOG_LEVEL", "")
	home := t.TempDir()
	t.Setenv("HOME", home)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, path, err := LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "studyrag", "config.yaml"), path)
	assert.FileExists(t, path)
	assert.Equal(t, "cohere", cfg.Generator.Type)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := defaultConfig()
	cfg.ContextStore.Type = "redis"
	assert.ErrorContains(t, cfg.Validate(), "context_store.type")

	cfg = defaultConfig()
	cfg.Generator.Type = "openai"
	cfg.Summarizer.Type = "cohere"
	assert.ErrorContains(t, cfg.Validate(), "requires generator.type cohere")
}
