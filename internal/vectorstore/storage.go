package vectorstore

import (
	"context"

	"studyrag/internal/domain"
)

// Searcher runs a filtered similarity search and returns at most topK hits,
// ordered by descending score as produced by the backing index.
type Searcher interface {
	Search(ctx context.Context, vector []float32, topK int, filter domain.Filter) ([]domain.SearchHit, error)
}

// ContextIndex is a short-lived index holding the chunks of a single document.
type ContextIndex interface {
	Searcher
	Upsert(ctx context.Context, points []domain.Point) error
	Drop(ctx context.Context) error
}

// ContextIndexFactory creates a fresh ContextIndex per call.
type ContextIndexFactory interface {
	NewContextIndex(ctx context.Context, dimension int) (ContextIndex, error)
}
