package rewards

import (
	"github.com/google/uuid"

	"github.com/gokatarajesh/patente-quiz/internal/db/queries"
	"github.com/gokatarajesh/patente-quiz/internal/db/repository"
)

const (
	MaxHearts           = 5
	CategoryBonusHearts = 2
	// MasteryThreshold is the number of correct re-answers that clears a mistake.
	MasteryThreshold      = 3
	DefaultNativeLanguage = "en"
)

// Profile is the per-user rewards state, fully defaulted at load.
type Profile struct {
	UserID              uuid.UUID `json:"user_id"`
	Username            string    `json:"username"`
	AvatarURL           string    `json:"avatar_url"`
	NativeLanguage      string    `json:"native_language"`
	Hearts              int       `json:"hearts"`
	XP                  int       `json:"xp"`
	Streak              int       `json:"streak"`
	LastStudyDate       Date      `json:"last_study_date"`
	CompletedCategories []string  `json:"completed_categories"`
}

// DefaultProfile is what a brand new (or anonymous) user starts with.
func DefaultProfile(userID uuid.UUID) Profile {
	return Profile{
		UserID:              userID,
		NativeLanguage:      DefaultNativeLanguage,
		Hearts:              MaxHearts,
		CompletedCategories: []string{},
	}
}

func (p Profile) clone() Profile {
	p.CompletedCategories = append([]string(nil), p.CompletedCategories...)
	if p.CompletedCategories == nil {
		p.CompletedCategories = []string{}
	}
	return p
}

func (p Profile) hasCompleted(categoryID string) bool {
	for _, id := range p.CompletedCategories {
		if id == categoryID {
			return true
		}
	}
	return false
}

func profileFromRow(row queries.Profile) Profile {
	p := DefaultProfile(repository.UUIDFrom(row.UserID))
	p.Username = row.Username
	p.AvatarURL = row.AvatarUrl
	if row.NativeLanguage != "" {
		p.NativeLanguage = row.NativeLanguage
	}
	p.Hearts = clampHearts(int(row.Hearts))
	p.XP = max(int(row.Xp), 0)
	p.Streak = max(int(row.Streak), 0)
	if row.LastStudyDate.Valid {
		p.LastStudyDate = DateOf(row.LastStudyDate.Time)
	}
	if row.CompletedCategories != nil {
		p.CompletedCategories = append([]string(nil), row.CompletedCategories...)
	}
	return p
}

func clampHearts(h int) int {
	return min(max(h, 0), MaxHearts)
}
