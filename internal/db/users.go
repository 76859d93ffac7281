package db

import (
	"context"

	"github.com/whatsoo/backend/internal/model"
)

func (db *Postgres) EnsureSchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			avatar TEXT,
			blog_url TEXT,
			introduce TEXT,
			github_uid TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_login_time TIMESTAMPTZ
		)
		`,
		`
		CREATE TABLE IF NOT EXISTS topics (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE INDEX IF NOT EXISTS topics_user_id_idx ON topics(user_id)`,
	}

	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

func (db *Postgres) CreateUser(ctx context.Context, username, email, passwordHash string) (*model.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, username, email, password_hash, avatar, blog_url, introduce, github_uid,
		          created_at, updated_at, last_login_time
	`
	return scanUser(db.Pool.QueryRow(ctx, query, username, email, passwordHash))
}

func (db *Postgres) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
		SELECT id, username, email, password_hash, avatar, blog_url, introduce, github_uid,
		       created_at, updated_at, last_login_time
		FROM users
		WHERE email = $1
	`
	return scanUser(db.Pool.QueryRow(ctx, query, email))
}

func (db *Postgres) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	query := `
		SELECT id, username, email, password_hash, avatar, blog_url, introduce, github_uid,
		       created_at, updated_at, last_login_time
		FROM users
		WHERE id = $1
	`
	return scanUser(db.Pool.QueryRow(ctx, query, id))
}

func (db *Postgres) CountUsersByEmail(ctx context.Context, email string) (int64, error) {
	var count int64
	err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE email = $1`, email).Scan(&count)
	return count, err
}

func (db *Postgres) CountUsersByUsername(ctx context.Context, username string) (int64, error) {
	var count int64
	err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE username = $1`, username).Scan(&count)
	return count, err
}

// UpdateUserPassword swaps the stored hash in one statement and returns
// the affected row count so callers can tell a no-op from an applied
// change.
func (db *Postgres) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1
	`, id, passwordHash)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (db *Postgres) TouchLastLogin(ctx context.Context, id int64) error {
	_, err := db.Pool.Exec(ctx, `UPDATE users SET last_login_time = NOW() WHERE id = $1`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Avatar,
		&user.BlogURL,
		&user.Introduce,
		&user.GithubUID,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.LastLoginTime,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
