package queries

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type MarkParams struct {
	UserID     pgtype.UUID `json:"user_id"`
	QuestionID string      `json:"question_id"`
}

func (q *Queries) listMarks(ctx context.Context, query string, userID pgtype.UUID) ([]string, error) {
	rows, err := q.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

const listBookmarks = `SELECT question_id FROM bookmarks WHERE user_id = $1 ORDER BY question_id`

func (q *Queries) ListBookmarks(ctx context.Context, userID pgtype.UUID) ([]string, error) {
	return q.listMarks(ctx, listBookmarks, userID)
}

const insertBookmark = `
INSERT INTO bookmarks (user_id, question_id) VALUES ($1, $2)
ON CONFLICT (user_id, question_id) DO NOTHING
`

func (q *Queries) InsertBookmark(ctx context.Context, arg MarkParams) error {
	_, err := q.db.Exec(ctx, insertBookmark, arg.UserID, arg.QuestionID)
	return err
}

const deleteBookmark = `DELETE FROM bookmarks WHERE user_id = $1 AND question_id = $2`

func (q *Queries) DeleteBookmark(ctx context.Context, arg MarkParams) error {
	_, err := q.db.Exec(ctx, deleteBookmark, arg.UserID, arg.QuestionID)
	return err
}

const listFlags = `SELECT question_id FROM flags WHERE user_id = $1 ORDER BY question_id`

func (q *Queries) ListFlags(ctx context.Context, userID pgtype.UUID) ([]string, error) {
	return q.listMarks(ctx, listFlags, userID)
}

const insertFlag = `
INSERT INTO flags (user_id, question_id) VALUES ($1, $2)
ON CONFLICT (user_id, question_id) DO NOTHING
`

func (q *Queries) InsertFlag(ctx context.Context, arg MarkParams) error {
	_, err := q.db.Exec(ctx, insertFlag, arg.UserID, arg.QuestionID)
	return err
}

const deleteFlag = `DELETE FROM flags WHERE user_id = $1 AND question_id = $2`

func (q *Queries) DeleteFlag(ctx context.Context, arg MarkParams) error {
	_, err := q.db.Exec(ctx, deleteFlag, arg.UserID, arg.QuestionID)
	return err
}
