package repository

import (
	"context"
)

const createSession = `
INSERT INTO sessions (token_hash, username, email, name, picture, provider, created_at, expiry)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING token_hash, username, email, name, picture, provider, created_at, expiry
`

type CreateSessionParams struct {
	TokenHash string
	Username  string
	Email     string
	Name      string
	Picture   string
	Provider  string
	CreatedAt int64
	Expiry    int64
}

func (q *Queries) CreateSession(ctx context.Context, arg CreateSessionParams) (Session, error) {
	row := q.db.QueryRowContext(ctx, createSession,
		arg.TokenHash,
		arg.Username,
		arg.Email,
		arg.Name,
		arg.Picture,
		arg.Provider,
		arg.CreatedAt,
		arg.Expiry,
	)
	var i Session
	err := row.Scan(
		&i.TokenHash,
		&i.Username,
		&i.Email,
		&i.Name,
		&i.Picture,
		&i.Provider,
		&i.CreatedAt,
		&i.Expiry,
	)
	return i, err
}

const getSession = `
SELECT token_hash, username, email, name, picture, provider, created_at, expiry FROM sessions
WHERE token_hash = ?
`

func (q *Queries) GetSession(ctx context.Context, tokenHash string) (Session, error) {
	row := q.db.QueryRowContext(ctx, getSession, tokenHash)
	var i Session
	err := row.Scan(
		&i.TokenHash,
		&i.Username,
		&i.Email,
		&i.Name,
		&i.Picture,
		&i.Provider,
		&i.CreatedAt,
		&i.Expiry,
	)
	return i, err
}

const deleteSession = `
DELETE FROM sessions
WHERE token_hash = ?
`

func (q *Queries) DeleteSession(ctx context.Context, tokenHash string) error {
	_, err := q.db.ExecContext(ctx, deleteSession, tokenHash)
	return err
}

const deleteExpiredSessions = `
DELETE FROM sessions
WHERE expiry < ?
`

func (q *Queries) DeleteExpiredSessions(ctx context.Context, expiry int64) error {
	_, err := q.db.ExecContext(ctx, deleteExpiredSessions, expiry)
	return err
}

const countSessionsByUsername = `
SELECT COUNT(*) FROM sessions
WHERE username = ?
`

func (q *Queries) CountSessionsByUsername(ctx context.Context, username string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countSessionsByUsername, username)
	var count int64
	err := row.Scan(&count)
	return count, err
}
