package repository

import (
	"context"
)

const createUserIfAbsent = `
INSERT INTO users (username, email, password_hash, created_at)
VALUES (?, ?, ?, ?)
ON CONFLICT DO NOTHING
`

type CreateUserParams struct {
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    int64
}

// CreateUserIfAbsent inserts the user unless the username or the email is
// already taken. It reports whether a row was written.
func (q *Queries) CreateUserIfAbsent(ctx context.Context, arg CreateUserParams) (bool, error) {
	result, err := q.db.ExecContext(ctx, createUserIfAbsent,
		arg.Username,
		arg.Email,
		arg.PasswordHash,
		arg.CreatedAt,
	)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

const getUserByEmail = `
SELECT username, email, password_hash, created_at FROM users
WHERE email = ?
ORDER BY rowid
LIMIT 1
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByEmail, email)
	var i User
	err := row.Scan(
		&i.Username,
		&i.Email,
		&i.PasswordHash,
		&i.CreatedAt,
	)
	return i, err
}

const getUserByUsername = `
SELECT username, email, password_hash, created_at FROM users
WHERE username = ?
ORDER BY rowid
LIMIT 1
`

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByUsername, username)
	var i User
	err := row.Scan(
		&i.Username,
		&i.Email,
		&i.PasswordHash,
		&i.CreatedAt,
	)
	return i, err
}

const updateUserPasswordHash = `
UPDATE users SET password_hash = ?
WHERE username = ?
`

type UpdateUserPasswordHashParams struct {
	PasswordHash string
	Username     string
}

func (q *Queries) UpdateUserPasswordHash(ctx context.Context, arg UpdateUserPasswordHashParams) error {
	_, err := q.db.ExecContext(ctx, updateUserPasswordHash, arg.PasswordHash, arg.Username)
	return err
}
