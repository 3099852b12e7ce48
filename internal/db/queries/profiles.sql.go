package queries

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const profileColumns = `user_id, username, avatar_url, native_language, hearts, xp, streak, last_study_date, completed_categories`

func scanProfile(row interface{ Scan(...any) error }) (Profile, error) {
	var i Profile
	err := row.Scan(
		&i.UserID,
		&i.Username,
		&i.AvatarUrl,
		&i.NativeLanguage,
		&i.Hearts,
		&i.Xp,
		&i.Streak,
		&i.LastStudyDate,
		&i.CompletedCategories,
	)
	return i, err
}

const createProfile = `
INSERT INTO profiles (user_id, username)
VALUES ($1, $2)
ON CONFLICT (user_id) DO NOTHING
`

type CreateProfileParams struct {
	UserID   pgtype.UUID `json:"user_id"`
	Username string      `json:"username"`
}

func (q *Queries) CreateProfile(ctx context.Context, arg CreateProfileParams) error {
	_, err := q.db.Exec(ctx, createProfile, arg.UserID, arg.Username)
	return err
}

const getProfile = `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`

func (q *Queries) GetProfile(ctx context.Context, userID pgtype.UUID) (Profile, error) {
	return scanProfile(q.db.QueryRow(ctx, getProfile, userID))
}

const updateProfileHearts = `
UPDATE profiles SET hearts = $2, updated_at = now() WHERE user_id = $1
`

type UpdateProfileHeartsParams struct {
	UserID pgtype.UUID `json:"user_id"`
	Hearts int32       `json:"hearts"`
}

func (q *Queries) UpdateProfileHearts(ctx context.Context, arg UpdateProfileHeartsParams) error {
	_, err := q.db.Exec(ctx, updateProfileHearts, arg.UserID, arg.Hearts)
	return err
}

const updateProfileXP = `
UPDATE profiles SET xp = $2, updated_at = now() WHERE user_id = $1
`

type UpdateProfileXPParams struct {
	UserID pgtype.UUID `json:"user_id"`
	Xp     int32       `json:"xp"`
}

func (q *Queries) UpdateProfileXP(ctx context.Context, arg UpdateProfileXPParams) error {
	_, err := q.db.Exec(ctx, updateProfileXP, arg.UserID, arg.Xp)
	return err
}

const updateProfileStreak = `
UPDATE profiles SET streak = $2, last_study_date = $3, updated_at = now() WHERE user_id = $1
`

type UpdateProfileStreakParams struct {
	UserID        pgtype.UUID `json:"user_id"`
	Streak        int32       `json:"streak"`
	LastStudyDate pgtype.Date `json:"last_study_date"`
}

func (q *Queries) UpdateProfileStreak(ctx context.Context, arg UpdateProfileStreakParams) error {
	_, err := q.db.Exec(ctx, updateProfileStreak, arg.UserID, arg.Streak, arg.LastStudyDate)
	return err
}

const addCompletedCategory = `
UPDATE profiles
SET completed_categories = array_append(completed_categories, $2::text), updated_at = now()
WHERE user_id = $1 AND NOT ($2::text = ANY(completed_categories))
`

type AddCompletedCategoryParams struct {
	UserID     pgtype.UUID `json:"user_id"`
	CategoryID string      `json:"category_id"`
}

func (q *Queries) AddCompletedCategory(ctx context.Context, arg AddCompletedCategoryParams) error {
	_, err := q.db.Exec(ctx, addCompletedCategory, arg.UserID, arg.CategoryID)
	return err
}

const updateProfileDetails = `
UPDATE profiles
SET username = $2, avatar_url = $3, native_language = $4, updated_at = now()
WHERE user_id = $1
RETURNING ` + profileColumns

type UpdateProfileDetailsParams struct {
	UserID         pgtype.UUID `json:"user_id"`
	Username       string      `json:"username"`
	AvatarUrl      string      `json:"avatar_url"`
	NativeLanguage string      `json:"native_language"`
}

func (q *Queries) UpdateProfileDetails(ctx context.Context, arg UpdateProfileDetailsParams) (Profile, error) {
	return scanProfile(q.db.QueryRow(ctx, updateProfileDetails, arg.UserID, arg.Username, arg.AvatarUrl, arg.NativeLanguage))
}
