package queries

import (
	"context"
)

const getTranslation = `
SELECT question_id, language_code, question_text, options, explanation
FROM translations
WHERE question_id = $1 AND language_code = $2
`

type GetTranslationParams struct {
	QuestionID   string `json:"question_id"`
	LanguageCode string `json:"language_code"`
}

func (q *Queries) GetTranslation(ctx context.Context, arg GetTranslationParams) (Translation, error) {
	row := q.db.QueryRow(ctx, getTranslation, arg.QuestionID, arg.LanguageCode)
	var i Translation
	err := row.Scan(&i.QuestionID, &i.LanguageCode, &i.QuestionText, &i.Options, &i.Explanation)
	return i, err
}

const upsertTranslation = `
INSERT INTO translations (question_id, language_code, question_text, options, explanation)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (question_id, language_code) DO UPDATE
SET question_text = EXCLUDED.question_text,
    options = EXCLUDED.options,
    explanation = EXCLUDED.explanation
`

type UpsertTranslationParams struct {
	QuestionID   string   `json:"question_id"`
	LanguageCode string   `json:"language_code"`
	QuestionText string   `json:"question_text"`
	Options      []string `json:"options"`
	Explanation  string   `json:"explanation"`
}

func (q *Queries) UpsertTranslation(ctx context.Context, arg UpsertTranslationParams) error {
	_, err := q.db.Exec(ctx, upsertTranslation,
		arg.QuestionID, arg.LanguageCode, arg.QuestionText, arg.Options, arg.Explanation)
	return err
}

const upsertTranslationExplanation = `
INSERT INTO translations (question_id, language_code, explanation)
VALUES ($1, $2, $3)
ON CONFLICT (question_id, language_code) DO UPDATE
SET explanation = EXCLUDED.explanation
`

type UpsertTranslationExplanationParams struct {
	QuestionID   string `json:"question_id"`
	LanguageCode string `json:"language_code"`
	Explanation  string `json:"explanation"`
}

func (q *Queries) UpsertTranslationExplanation(ctx context.Context, arg UpsertTranslationExplanationParams) error {
	_, err := q.db.Exec(ctx, upsertTranslationExplanation, arg.QuestionID, arg.LanguageCode, arg.Explanation)
	return err
}
