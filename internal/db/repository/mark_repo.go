package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/gokatarajesh/patente-quiz/internal/db/queries"
)

// Mark table names accepted by MarkRepository.
const (
	MarkBookmarks = "bookmarks"
	MarkFlags     = "flags"
)

type markStore interface {
	ListBookmarks(ctx context.Context, userID pgtype.UUID) ([]string, error)
	InsertBookmark(ctx context.Context, arg queries.MarkParams) error
	DeleteBookmark(ctx context.Context, arg queries.MarkParams) error
	ListFlags(ctx context.Context, userID pgtype.UUID) ([]string, error)
	InsertFlag(ctx context.Context, arg queries.MarkParams) error
	DeleteFlag(ctx context.Context, arg queries.MarkParams) error
}

// MarkRepository persists bookmark and flag sets.
type MarkRepository struct {
	store markStore
}

func NewMarkRepository(store markStore) *MarkRepository {
	return &MarkRepository{store: store}
}

func (r *MarkRepository) List(ctx context.Context, kind string, userID uuid.UUID) ([]string, error) {
	switch kind {
	case MarkBookmarks:
		return r.store.ListBookmarks(ctx, PgUUID(userID))
	case MarkFlags:
		return r.store.ListFlags(ctx, PgUUID(userID))
	}
	return nil, fmt.Errorf("unknown mark kind %q", kind)
}

// Add is idempotent; duplicates are ignored by the table's primary key.
func (r *MarkRepository) Add(ctx context.Context, kind string, userID uuid.UUID, questionID string) error {
	arg := queries.MarkParams{UserID: PgUUID(userID), QuestionID: questionID}
	switch kind {
	case MarkBookmarks:
		return r.store.InsertBookmark(ctx, arg)
	case MarkFlags:
		return r.store.InsertFlag(ctx, arg)
	}
	return fmt.Errorf("unknown mark kind %q", kind)
}

func (r *MarkRepository) Remove(ctx context.Context, kind string, userID uuid.UUID, questionID string) error {
	arg := queries.MarkParams{UserID: PgUUID(userID), QuestionID: questionID}
	switch kind {
	case MarkBookmarks:
		return r.store.DeleteBookmark(ctx, arg)
	case MarkFlags:
		return r.store.DeleteFlag(ctx, arg)
	}
	return fmt.Errorf("unknown mark kind %q", kind)
}
