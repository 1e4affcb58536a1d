package qa

import (
	"fmt"

	"studyrag/internal/domain"
)

// Turn is one question and, once generated, its answer.
type Turn struct {
	Question string
	Answer   string
	Pending  bool
}

// History is a caller-owned conversation about one document.
type History []Turn

// Ask appends a pending turn for question.
func (h *History) Ask(question string) {
	*h = append(*h, Turn{Question: question, Pending: true})
}

// Last returns the question of the most recent turn.
func (h *History) Last() (string, error) {
	if h == nil || len(*h) == 0 {
		return "", fmt.Errorf("no question to answer: %w", domain.ErrInvalidState)
	}
	return (*h)[len(*h)-1].Question, nil
}

// Fill records answer on the most recent turn.
func (h *History) Fill(answer string) error {
	if h == nil || len(*h) == 0 {
		return fmt.Errorf("no turn to fill: %w", domain.ErrInvalidState)
	}
	last := &(*h)[len(*h)-1]
	last.Answer = answer
	last.Pending = false
	return nil
}
