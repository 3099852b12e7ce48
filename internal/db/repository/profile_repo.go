package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/gokatarajesh/patente-quiz/internal/db/queries"
)

type profileStore interface {
	CreateProfile(ctx context.Context, arg queries.CreateProfileParams) error
	GetProfile(ctx context.Context, userID pgtype.UUID) (queries.Profile, error)
	UpdateProfileHearts(ctx context.Context, arg queries.UpdateProfileHeartsParams) error
	UpdateProfileXP(ctx context.Context, arg queries.UpdateProfileXPParams) error
	UpdateProfileStreak(ctx context.Context, arg queries.UpdateProfileStreakParams) error
	AddCompletedCategory(ctx context.Context, arg queries.AddCompletedCategoryParams) error
	UpdateProfileDetails(ctx context.Context, arg queries.UpdateProfileDetailsParams) (queries.Profile, error)
}

// ProfileRepository persists the per-user rewards profile.
type ProfileRepository struct {
	store profileStore
}

func NewProfileRepository(store profileStore) *ProfileRepository {
	return &ProfileRepository{store: store}
}

// Create inserts the default profile row for a fresh account.
func (r *ProfileRepository) Create(ctx context.Context, userID uuid.UUID, username string) error {
	return r.store.CreateProfile(ctx, queries.CreateProfileParams{UserID: PgUUID(userID), Username: username})
}

func (r *ProfileRepository) Get(ctx context.Context, userID uuid.UUID) (queries.Profile, error) {
	return r.store.GetProfile(ctx, PgUUID(userID))
}

func (r *ProfileRepository) SetHearts(ctx context.Context, userID uuid.UUID, hearts int) error {
	return r.store.UpdateProfileHearts(ctx, queries.UpdateProfileHeartsParams{
		UserID: PgUUID(userID),
		Hearts: int32(hearts),
	})
}

func (r *ProfileRepository) SetXP(ctx context.Context, userID uuid.UUID, xp int) error {
	return r.store.UpdateProfileXP(ctx, queries.UpdateProfileXPParams{
		UserID: PgUUID(userID),
		Xp:     int32(xp),
	})
}

// SetStreak writes streak and last study date together; a zero time stores NULL.
func (r *ProfileRepository) SetStreak(ctx context.Context, userID uuid.UUID, streak int, lastStudy time.Time) error {
	date := pgtype.Date{}
	if !lastStudy.IsZero() {
		date = pgtype.Date{Time: lastStudy, Valid: true}
	}
	return r.store.UpdateProfileStreak(ctx, queries.UpdateProfileStreakParams{
		UserID:        PgUUID(userID),
		Streak:        int32(streak),
		LastStudyDate: date,
	})
}

func (r *ProfileRepository) AddCompletedCategory(ctx context.Context, userID uuid.UUID, categoryID string) error {
	return r.store.AddCompletedCategory(ctx, queries.AddCompletedCategoryParams{
		UserID:     PgUUID(userID),
		CategoryID: categoryID,
	})
}

func (r *ProfileRepository) UpdateDetails(ctx context.Context, userID uuid.UUID, username, avatarURL, nativeLanguage string) (queries.Profile, error) {
	return r.store.UpdateProfileDetails(ctx, queries.UpdateProfileDetailsParams{
		UserID:         PgUUID(userID),
		Username:       username,
		AvatarUrl:      avatarURL,
		NativeLanguage: nativeLanguage,
	})
}
