package embedding

import (
	"fmt"

	"studyrag/internal/domain"
)

// CheckInput rejects an empty text list before any remote call is made.
func CheckInput(texts []string) error {
	if len(texts) == 0 {
		return fmt.Errorf("embed called with no texts: %w", domain.ErrInvalidState)
	}
	return nil
}

// Batches splits texts into consecutive groups of at most size, preserving order.
func Batches(texts []string, size int) [][]string {
	if size <= 0 || size >= len(texts) {
		return [][]string{texts}
	}
	out := make([][]string, 0, (len(texts)+size-1)/size)
	for i := 0; i < len(texts); i += size {
		end := i + size
		if end > len(texts) {
			end = len(texts)
		}
		out = append(out, texts[i:end])
	}
	return out
}

// CheckCount verifies one vector came back per input text.
func CheckCount(service string, want int, got [][]float32) error {
	if len(got) != want {
		return domain.NewServiceError(service, domain.KindBadResponse,
			fmt.Errorf("expected %d embeddings, got %d", want, len(got)))
	}
	for i, v := range got {
		if len(v) == 0 {
			return domain.NewServiceError(service, domain.KindBadResponse, fmt.Errorf("empty embedding at %d", i))
		}
	}
	return nil
}
