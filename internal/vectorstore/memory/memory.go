package memory

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"studyrag/internal/domain"
	"studyrag/internal/vectorstore"
)

// Store is a simple in-memory vector store using brute-force cosine similarity.
type Store struct {
	mu        sync.RWMutex
	dimension int
	points    []domain.Point
}

func NewStore(dimension int) *Store { return &Store{dimension: dimension} }

func (s *Store) Upsert(_ context.Context, points []domain.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range points {
		if s.dimension > 0 && len(p.Vector) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	for _, p := range points {
		if i := s.indexOf(p.ID); i >= 0 {
			s.points[i] = p
			continue
		}
		s.points = append(s.points, p)
	}
	return nil
}

func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.points {
		if s.points[i].ID == id {
			return i
		}
	}
	return -1
}

// Search scores every point passing the filter and returns the best topK.
// Equal scores keep insertion order.
func (s *Store) Search(_ context.Context, vector []float32, topK int, filter domain.Filter) ([]domain.SearchHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 4
	}
	hits := make([]domain.SearchHit, 0, len(s.points))
	for _, p := range s.points {
		if !filter.Matches(p.Payload) {
			continue
		}
		hits = append(hits, domain.SearchHit{Payload: p.Payload, Score: cosine(p.Vector, vector)})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if topK < len(hits) {
		hits = hits[:topK]
	}
	return hits, nil
}

func (s *Store) Drop(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = nil
	return nil
}

// Len returns the number of stored points.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points)
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Factory hands out a fresh Store per context index request.
type Factory struct{}

func (Factory) NewContextIndex(_ context.Context, dimension int) (vectorstore.ContextIndex, error) {
	if dimension <= 0 {
		return nil, errors.New("invalid dimension")
	}
	return NewStore(dimension), nil
}

var (
	_ vectorstore.ContextIndex        = (*Store)(nil)
	_ vectorstore.ContextIndexFactory = Factory{}
)
