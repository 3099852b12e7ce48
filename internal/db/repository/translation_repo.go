package repository

import (
	"context"

	"github.com/gokatarajesh/patente-quiz/internal/db/queries"
)

type translationStore interface {
	GetTranslation(ctx context.Context, arg queries.GetTranslationParams) (queries.Translation, error)
	UpsertTranslation(ctx context.Context, arg queries.UpsertTranslationParams) error
	UpsertTranslationExplanation(ctx context.Context, arg queries.UpsertTranslationExplanationParams) error
}

// TranslationRepository is the persisted translation cache.
type TranslationRepository struct {
	store translationStore
}

func NewTranslationRepository(store translationStore) *TranslationRepository {
	return &TranslationRepository{store: store}
}

// Get returns pgx.ErrNoRows when no entry exists.
func (r *TranslationRepository) Get(ctx context.Context, questionID, lang string) (queries.Translation, error) {
	return r.store.GetTranslation(ctx, queries.GetTranslationParams{QuestionID: questionID, LanguageCode: lang})
}

func (r *TranslationRepository) Upsert(ctx context.Context, t queries.Translation) error {
	return r.store.UpsertTranslation(ctx, queries.UpsertTranslationParams{
		QuestionID:   t.QuestionID,
		LanguageCode: t.LanguageCode,
		QuestionText: t.QuestionText,
		Options:      t.Options,
		Explanation:  t.Explanation,
	})
}

func (r *TranslationRepository) UpsertExplanation(ctx context.Context, questionID, lang, text string) error {
	return r.store.UpsertTranslationExplanation(ctx, queries.UpsertTranslationExplanationParams{
		QuestionID:   questionID,
		LanguageCode: lang,
		Explanation:  text,
	})
}
