package queries

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const listUserProgress = `
SELECT user_id, question_id, review_count
FROM user_progress
WHERE user_id = $1
ORDER BY question_id
`

func (q *Queries) ListUserProgress(ctx context.Context, userID pgtype.UUID) ([]UserProgress, error) {
	rows, err := q.db.Query(ctx, listUserProgress, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[UserProgress])
}

const upsertUserProgress = `
INSERT INTO user_progress (user_id, question_id, review_count)
VALUES ($1, $2, $3)
ON CONFLICT (user_id, question_id) DO UPDATE
SET review_count = EXCLUDED.review_count, updated_at = now()
`

type UpsertUserProgressParams struct {
	UserID      pgtype.UUID `json:"user_id"`
	QuestionID  string      `json:"question_id"`
	ReviewCount int32       `json:"review_count"`
}

func (q *Queries) UpsertUserProgress(ctx context.Context, arg UpsertUserProgressParams) error {
	_, err := q.db.Exec(ctx, upsertUserProgress, arg.UserID, arg.QuestionID, arg.ReviewCount)
	return err
}

const deleteUserProgress = `DELETE FROM user_progress WHERE user_id = $1 AND question_id = $2`

type DeleteUserProgressParams struct {
	UserID     pgtype.UUID `json:"user_id"`
	QuestionID string      `json:"question_id"`
}

func (q *Queries) DeleteUserProgress(ctx context.Context, arg DeleteUserProgressParams) error {
	_, err := q.db.Exec(ctx, deleteUserProgress, arg.UserID, arg.QuestionID)
	return err
}
