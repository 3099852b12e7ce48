package question

import (
	"errors"
	"fmt"
)

// SourceLanguage is the language questions are authored in.
const SourceLanguage = "it"

// ErrNotFound is returned when a question or category does not exist.
var ErrNotFound = errors.New("question not found")

// Question is one true/false (or multi-option) flashcard.
type Question struct {
	ID           string   `json:"id"`
	CategoryID   string   `json:"category_id"`
	Prompt       string   `json:"question_text"`
	ImageURL     string   `json:"image_url,omitempty"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_option_index"`
	Explanation  string   `json:"explanation_it,omitempty"`
	Difficulty   int      `json:"difficulty"`
}

// Validate checks the option rules imported data must satisfy.
func (q Question) Validate() error {
	if len(q.Options) < 2 {
		return fmt.Errorf("question %s: need at least 2 options, got %d", q.ID, len(q.Options))
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return fmt.Errorf("question %s: correct index %d out of range", q.ID, q.CorrectIndex)
	}
	return nil
}

// CorrectAnswer returns the label of the correct option.
func (q Question) CorrectAnswer() string {
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return ""
	}
	return q.Options[q.CorrectIndex]
}

// Patch carries the fields that may change on a question mid-session.
// Nil fields are left untouched.
type Patch struct {
	Prompt      *string `json:"question_text,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	Explanation *string `json:"explanation_it,omitempty"`
}

// Apply returns q with the patch applied.
func (p Patch) Apply(q Question) Question {
	if p.Prompt != nil {
		q.Prompt = *p.Prompt
	}
	if p.ImageURL != nil {
		q.ImageURL = *p.ImageURL
	}
	if p.Explanation != nil {
		q.Explanation = *p.Explanation
	}
	return q
}

// Category groups questions by topic.
type Category struct {
	ID         string `json:"id"`
	Slug       string `json:"slug"`
	TitleIT    string `json:"title_it"`
	TitleEN    string `json:"title_en,omitempty"`
	IconName   string `json:"icon_name"`
	OrderIndex int    `json:"order_index"`
}
