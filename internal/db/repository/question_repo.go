package repository

import (
	"context"

	"github.com/gokatarajesh/patente-quiz/internal/db/queries"
)

type questionStore interface {
	ListCategories(ctx context.Context) ([]queries.Category, error)
	ListQuestionsByCategory(ctx context.Context, categoryID string) ([]queries.Question, error)
	ListQuestionsByIDs(ctx context.Context, ids []string) ([]queries.Question, error)
	GetQuestion(ctx context.Context, id string) (queries.Question, error)
	UpdateQuestionExplanation(ctx context.Context, arg queries.UpdateQuestionExplanationParams) error
}

// QuestionRepository wraps queries for curated question access.
type QuestionRepository struct {
	store questionStore
}

func NewQuestionRepository(store questionStore) *QuestionRepository {
	return &QuestionRepository{store: store}
}

func (r *QuestionRepository) Categories(ctx context.Context) ([]queries.Category, error) {
	return r.store.ListCategories(ctx)
}

func (r *QuestionRepository) ByCategory(ctx context.Context, categoryID string) ([]queries.Question, error) {
	return r.store.ListQuestionsByCategory(ctx, categoryID)
}

// ByIDs returns the matching questions; unknown ids are skipped.
func (r *QuestionRepository) ByIDs(ctx context.Context, ids []string) ([]queries.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.store.ListQuestionsByIDs(ctx, ids)
}

func (r *QuestionRepository) Get(ctx context.Context, id string) (queries.Question, error) {
	return r.store.GetQuestion(ctx, id)
}

// SetExplanation backfills the source-language explanation.
func (r *QuestionRepository) SetExplanation(ctx context.Context, id, text string) error {
	return r.store.UpdateQuestionExplanation(ctx, queries.UpdateQuestionExplanationParams{ID: id, ExplanationIt: text})
}
