package queries

import (
	"context"
)

const questionColumns = `id, category_id, question_text, image_url, options, correct_option_index, explanation_it, difficulty`

func collectQuestions(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
	Close()
}) ([]Question, error) {
	defer rows.Close()
	var items []Question
	for rows.Next() {
		var i Question
		if err := rows.Scan(
			&i.ID,
			&i.CategoryID,
			&i.QuestionText,
			&i.ImageUrl,
			&i.Options,
			&i.CorrectOptionIndex,
			&i.ExplanationIt,
			&i.Difficulty,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listCategories = `
SELECT id, slug, title_it, title_en, icon_name, order_index
FROM categories
ORDER BY order_index, id
`

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.Query(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		var i Category
		if err := rows.Scan(&i.ID, &i.Slug, &i.TitleIt, &i.TitleEn, &i.IconName, &i.OrderIndex); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listQuestionsByCategory = `SELECT ` + questionColumns + ` FROM questions WHERE category_id = $1 ORDER BY id`

func (q *Queries) ListQuestionsByCategory(ctx context.Context, categoryID string) ([]Question, error) {
	rows, err := q.db.Query(ctx, listQuestionsByCategory, categoryID)
	if err != nil {
		return nil, err
	}
	return collectQuestions(rows)
}

const listQuestionsByIDs = `SELECT ` + questionColumns + ` FROM questions WHERE id = ANY($1::text[]) ORDER BY id`

func (q *Queries) ListQuestionsByIDs(ctx context.Context, ids []string) ([]Question, error) {
	rows, err := q.db.Query(ctx, listQuestionsByIDs, ids)
	if err != nil {
		return nil, err
	}
	return collectQuestions(rows)
}

const getQuestion = `SELECT ` + questionColumns + ` FROM questions WHERE id = $1`

func (q *Queries) GetQuestion(ctx context.Context, id string) (Question, error) {
	row := q.db.QueryRow(ctx, getQuestion, id)
	var i Question
	err := row.Scan(
		&i.ID,
		&i.CategoryID,
		&i.QuestionText,
		&i.ImageUrl,
		&i.Options,
		&i.CorrectOptionIndex,
		&i.ExplanationIt,
		&i.Difficulty,
	)
	return i, err
}

const updateQuestionExplanation = `
UPDATE questions SET explanation_it = $2 WHERE id = $1
`

type UpdateQuestionExplanationParams struct {
	ID            string `json:"id"`
	ExplanationIt string `json:"explanation_it"`
}

func (q *Queries) UpdateQuestionExplanation(ctx context.Context, arg UpdateQuestionExplanationParams) error {
	_, err := q.db.Exec(ctx, updateQuestionExplanation, arg.ID, arg.ExplanationIt)
	return err
}
