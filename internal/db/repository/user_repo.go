package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/gokatarajesh/patente-quiz/internal/db/queries"
)

type userStore interface {
	CreateUser(ctx context.Context, arg queries.CreateUserParams) (queries.User, error)
	GetUserByEmail(ctx context.Context, email string) (queries.User, error)
	GetUserByID(ctx context.Context, userID pgtype.UUID) (queries.User, error)
	UpdateUserLogin(ctx context.Context, userID pgtype.UUID) error
}

// UserRepository exposes typed DB operations required by auth flows.
type UserRepository struct {
	store userStore
}

// NewUserRepository wraps Queries for user-specific operations.
func NewUserRepository(store userStore) *UserRepository {
	return &UserRepository{store: store}
}

// Create inserts an email/password account.
func (r *UserRepository) Create(ctx context.Context, email, passwordHash string) (queries.User, error) {
	return r.store.CreateUser(ctx, queries.CreateUserParams{Email: email, PasswordHash: passwordHash})
}

// GetByEmail fetches a user by email if present.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (queries.User, error) {
	return r.store.GetUserByEmail(ctx, email)
}

// GetByID fetches a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, userID uuid.UUID) (queries.User, error) {
	return r.store.GetUserByID(ctx, PgUUID(userID))
}

// UpdateLogin records the last login timestamp.
func (r *UserRepository) UpdateLogin(ctx context.Context, userID uuid.UUID) error {
	return r.store.UpdateUserLogin(ctx, PgUUID(userID))
}
