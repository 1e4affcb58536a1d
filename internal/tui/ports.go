package tui

import (
	"context"

	"studyrag/internal/assist"
	"studyrag/internal/domain"
	"studyrag/internal/qa"
	"studyrag/internal/service"
)

// SearchPort is the TUI-facing subset of the retrieval pipeline.
type SearchPort interface {
	Search(ctx context.Context, query string, numResults int, languages []domain.Language, exactText bool) (service.Results, error)
}

// AnswerPort answers the pending question of a history about a document.
type AnswerPort interface {
	AnswerHistory(ctx context.Context, document string, h *qa.History) (string, error)
}

// AssistPort exposes the generator-backed study helpers.
type AssistPort interface {
	Summarize(ctx context.Context, document string, opts assist.SummaryOptions) (string, error)
	PracticeQuestions(ctx context.Context, document string) (assist.QuestionSet, error)
	Paraphrase(ctx context.Context, text string) (assist.Paraphrase, error)
	Translate(ctx context.Context, text string) (string, error)
}

var (
	_ SearchPort = (*service.SearchService)(nil)
	_ AnswerPort = (*qa.Answerer)(nil)
	_ AssistPort = (*assist.Kit)(nil)
)
