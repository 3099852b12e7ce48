package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/gokatarajesh/patente-quiz/internal/db/queries"
)

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) CreateUser(ctx context.Context, arg queries.CreateUserParams) (queries.User, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(queries.User), args.Error(1)
}

func (m *mockUserStore) GetUserByEmail(ctx context.Context, email string) (queries.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(queries.User), args.Error(1)
}

func (m *mockUserStore) GetUserByID(ctx context.Context, userID pgtype.UUID) (queries.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(queries.User), args.Error(1)
}

func (m *mockUserStore) UpdateUserLogin(ctx context.Context, userID pgtype.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func TestUserRepository_Create(t *testing.T) {
	store := new(mockUserStore)
	repo := NewUserRepository(store)

	params := queries.CreateUserParams{Email: "user@example.com", PasswordHash: "hashed"}
	expect := queries.User{UserID: pgUUIDFromByte(1), Email: "user@example.com"}

	store.On("CreateUser", mock.Anything, params).Return(expect, nil)

	got, err := repo.Create(context.Background(), "user@example.com", "hashed")

	assert.NoError(t, err)
	assert.Equal(t, expect, got)
	store.AssertExpectations(t)
}

func TestUserRepository_GetByID(t *testing.T) {
	store := new(mockUserStore)
	repo := NewUserRepository(store)

	expect := queries.User{UserID: pgUUIDFromByte(2), Email: "ace@example.com"}
	store.On("GetUserByID", mock.Anything, pgUUIDFromByte(2)).Return(expect, nil)

	got, err := repo.GetByID(context.Background(), uuidFromByte(2))

	assert.NoError(t, err)
	assert.Equal(t, expect, got)
	store.AssertExpectations(t)
}

func TestPgUUIDRoundTrip(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, id, UUIDFrom(PgUUID(id)))
	assert.False(t, PgUUID(uuid.Nil).Valid)
	assert.Equal(t, uuid.Nil, UUIDFrom(pgtype.UUID{}))
}
