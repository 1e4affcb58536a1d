package domain

import "context"

// Document represents a single text supplied by the user.
type Document struct {
	ID      string
	Content string
}

// Chunk is a contiguous window of a document's words used for embedding and prompting.
type Chunk struct {
	DocumentID string
	ChunkID    string
	Text       string
	Index      int
}

// Payload is the stored metadata of one indexed passage.
type Payload struct {
	Title string
	Text  string
	URL   string
	Lang  string
}

// SearchHit represents a matching passage with a relevance score.
type SearchHit struct {
	Payload Payload
	Score   float64
}

// Point is a vector plus payload written into an index.
type Point struct {
	ID      string
	Vector  []float32
	Payload Payload
}

// Embedder converts texts into numeric vectors, one per input in the same order.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Chunker splits documents into chunks suitable for embedding.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// GenerateRequest is a single prompt completion call.
type GenerateRequest struct {
	Prompt        string
	Temperature   float64
	MaxTokens     int
	StopSequences []string
}

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// SummaryRequest carries the summarization knobs forwarded to the provider.
type SummaryRequest struct {
	Text           string
	Length         string
	Format         string
	Extractiveness string
	Temperature    float64
}

// Summarizer produces a summary of the provided text.
type Summarizer interface {
	Summarize(ctx context.Context, req SummaryRequest) (string, error)
}
