package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/gokatarajesh/patente-quiz/internal/db/queries"
)

type progressStore interface {
	ListUserProgress(ctx context.Context, userID pgtype.UUID) ([]queries.UserProgress, error)
	UpsertUserProgress(ctx context.Context, arg queries.UpsertUserProgressParams) error
	DeleteUserProgress(ctx context.Context, arg queries.DeleteUserProgressParams) error
}

// ProgressRepository stores mistake review counters (user_progress).
type ProgressRepository struct {
	store progressStore
}

func NewProgressRepository(store progressStore) *ProgressRepository {
	return &ProgressRepository{store: store}
}

// List returns review counts keyed by question id.
func (r *ProgressRepository) List(ctx context.Context, userID uuid.UUID) (map[string]int, error) {
	rows, err := r.store.ListUserProgress(ctx, PgUUID(userID))
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.QuestionID] = int(row.ReviewCount)
	}
	return out, nil
}

func (r *ProgressRepository) Save(ctx context.Context, userID uuid.UUID, questionID string, reviewCount int) error {
	return r.store.UpsertUserProgress(ctx, queries.UpsertUserProgressParams{
		UserID:      PgUUID(userID),
		QuestionID:  questionID,
		ReviewCount: int32(reviewCount),
	})
}

func (r *ProgressRepository) Delete(ctx context.Context, userID uuid.UUID, questionID string) error {
	return r.store.DeleteUserProgress(ctx, queries.DeleteUserProgressParams{
		UserID:     PgUUID(userID),
		QuestionID: questionID,
	})
}
