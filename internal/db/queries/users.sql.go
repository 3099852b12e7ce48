package queries

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createUser = `
INSERT INTO users (email, password_hash)
VALUES ($1, $2)
RETURNING user_id, email, password_hash, created_at, last_login_at
`

type CreateUserParams struct {
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, createUser, arg.Email, arg.PasswordHash)
	var i User
	err := row.Scan(&i.UserID, &i.Email, &i.PasswordHash, &i.CreatedAt, &i.LastLoginAt)
	return i, err
}

const getUserByEmail = `
SELECT user_id, email, password_hash, created_at, last_login_at
FROM users
WHERE email = $1
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRow(ctx, getUserByEmail, email)
	var i User
	err := row.Scan(&i.UserID, &i.Email, &i.PasswordHash, &i.CreatedAt, &i.LastLoginAt)
	return i, err
}

const getUserByID = `
SELECT user_id, email, password_hash, created_at, last_login_at
FROM users
WHERE user_id = $1
`

func (q *Queries) GetUserByID(ctx context.Context, userID pgtype.UUID) (User, error) {
	row := q.db.QueryRow(ctx, getUserByID, userID)
	var i User
	err := row.Scan(&i.UserID, &i.Email, &i.PasswordHash, &i.CreatedAt, &i.LastLoginAt)
	return i, err
}

const updateUserLogin = `
UPDATE users SET last_login_at = now() WHERE user_id = $1
`

func (q *Queries) UpdateUserLogin(ctx context.Context, userID pgtype.UUID) error {
	_, err := q.db.Exec(ctx, updateUserLogin, userID)
	return err
}
