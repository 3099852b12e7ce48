package queries

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	UserID       pgtype.UUID        `json:"user_id"`
	Email        string             `json:"email"`
	PasswordHash string             `json:"password_hash"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
	LastLoginAt  pgtype.Timestamptz `json:"last_login_at"`
}

type Profile struct {
	UserID              pgtype.UUID `json:"user_id"`
	Username            string      `json:"username"`
	AvatarUrl           string      `json:"avatar_url"`
	NativeLanguage      string      `json:"native_language"`
	Hearts              int32       `json:"hearts"`
	Xp                  int32       `json:"xp"`
	Streak              int32       `json:"streak"`
	LastStudyDate       pgtype.Date `json:"last_study_date"`
	CompletedCategories []string    `json:"completed_categories"`
}

type Category struct {
	ID         string `json:"id"`
	Slug       string `json:"slug"`
	TitleIt    string `json:"title_it"`
	TitleEn    string `json:"title_en"`
	IconName   string `json:"icon_name"`
	OrderIndex int32  `json:"order_index"`
}

type Question struct {
	ID                 string   `json:"id"`
	CategoryID         string   `json:"category_id"`
	QuestionText       string   `json:"question_text"`
	ImageUrl           string   `json:"image_url"`
	Options            []string `json:"options"`
	CorrectOptionIndex int32    `json:"correct_option_index"`
	ExplanationIt      string   `json:"explanation_it"`
	Difficulty         int32    `json:"difficulty"`
}

type Translation struct {
	QuestionID   string   `json:"question_id"`
	LanguageCode string   `json:"language_code"`
	QuestionText string   `json:"question_text"`
	Options      []string `json:"options"`
	Explanation  string   `json:"explanation"`
}

type UserProgress struct {
	UserID      pgtype.UUID `json:"user_id"`
	QuestionID  string      `json:"question_id"`
	ReviewCount int32       `json:"review_count"`
}
