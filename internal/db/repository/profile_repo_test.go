package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/gokatarajesh/patente-quiz/internal/db/queries"
)

type mockProfileStore struct {
	mock.Mock
}

func (m *mockProfileStore) CreateProfile(ctx context.Context, arg queries.CreateProfileParams) error {
	return m.Called(ctx, arg).Error(0)
}

func (m *mockProfileStore) GetProfile(ctx context.Context, userID pgtype.UUID) (queries.Profile, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(queries.Profile), args.Error(1)
}

func (m *mockProfileStore) UpdateProfileHearts(ctx context.Context, arg queries.UpdateProfileHeartsParams) error {
	return m.Called(ctx, arg).Error(0)
}

func (m *mockProfileStore) UpdateProfileXP(ctx context.Context, arg queries.UpdateProfileXPParams) error {
	return m.Called(ctx, arg).Error(0)
}

func (m *mockProfileStore) UpdateProfileStreak(ctx context.Context, arg queries.UpdateProfileStreakParams) error {
	return m.Called(ctx, arg).Error(0)
}

func (m *mockProfileStore) AddCompletedCategory(ctx context.Context, arg queries.AddCompletedCategoryParams) error {
	return m.Called(ctx, arg).Error(0)
}

func (m *mockProfileStore) UpdateProfileDetails(ctx context.Context, arg queries.UpdateProfileDetailsParams) (queries.Profile, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(queries.Profile), args.Error(1)
}

func TestProfileRepository_SetStreak(t *testing.T) {
	store := new(mockProfileStore)
	repo := NewProfileRepository(store)

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	store.On("UpdateProfileStreak", mock.Anything, queries.UpdateProfileStreakParams{
		UserID:        pgUUIDFromByte(4),
		Streak:        7,
		LastStudyDate: pgtype.Date{Time: day, Valid: true},
	}).Return(nil)

	err := repo.SetStreak(context.Background(), uuidFromByte(4), 7, day)

	assert.NoError(t, err)
	store.AssertExpectations(t)
}

func TestProfileRepository_SetStreakZeroDateIsNull(t *testing.T) {
	store := new(mockProfileStore)
	repo := NewProfileRepository(store)

	store.On("UpdateProfileStreak", mock.Anything, queries.UpdateProfileStreakParams{
		UserID: pgUUIDFromByte(5),
		Streak: 0,
	}).Return(nil)

	assert.NoError(t, repo.SetStreak(context.Background(), uuidFromByte(5), 0, time.Time{}))
	store.AssertExpectations(t)
}

func TestProfileRepository_PropagatesErrors(t *testing.T) {
	store := new(mockProfileStore)
	repo := NewProfileRepository(store)

	boom := errors.New("db down")
	store.On("UpdateProfileHearts", mock.Anything, queries.UpdateProfileHeartsParams{
		UserID: pgUUIDFromByte(6),
		Hearts: 3,
	}).Return(boom)

	err := repo.SetHearts(context.Background(), uuidFromByte(6), 3)
	assert.ErrorIs(t, err, boom)
}
