// Package sqlite provides the SQLite-backed implementation of
// auth.Repository plus the token/user administration used by seeding.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jcmexdev/shop-api/internal/auth"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    username  TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS api_tokens (
    token       TEXT PRIMARY KEY,
    user_id     INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS user_permissions (
    user_id     INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    permission  TEXT    NOT NULL,
    PRIMARY KEY (user_id, permission)
);
`

// Repository is the SQLite implementation of auth.Repository.
type Repository struct {
	db *sql.DB
}

var _ auth.Repository = (*Repository)(nil)

func New(db *sql.DB) (*Repository, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("sqlite: apply auth schema: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) IdentityByToken(ctx context.Context, token string) (auth.Identity, error) {
	const q = `
		SELECT u.id, u.username
		FROM   api_tokens t
		JOIN   users u ON u.id = t.user_id
		WHERE  t.token = ?`

	var id auth.Identity
	err := r.db.QueryRowContext(ctx, q, token).Scan(&id.UserID, &id.Username)
	if err == sql.ErrNoRows {
		return auth.Identity{}, auth.ErrInvalidToken
	}
	if err != nil {
		return auth.Identity{}, fmt.Errorf("sqlite: identity by token: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT permission FROM user_permissions WHERE user_id = ? ORDER BY permission`, id.UserID)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("sqlite: permissions for user %d: %w", id.UserID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p auth.Permission
		if err := rows.Scan(&p); err != nil {
			return auth.Identity{}, fmt.Errorf("sqlite: scan permission: %w", err)
		}
		id.Permissions = append(id.Permissions, p)
	}
	return id, rows.Err()
}

// CreateUser inserts a user and returns its id.
func (r *Repository) CreateUser(ctx context.Context, username string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO users (username) VALUES (?)`, username)
	if err != nil {
		return 0, fmt.Errorf("sqlite: create user %q: %w", username, err)
	}
	return res.LastInsertId()
}

// GrantPermissions grants the user the given capabilities. Idempotent.
func (r *Repository) GrantPermissions(ctx context.Context, userID int64, perms ...auth.Permission) error {
	for _, p := range perms {
		_, err := r.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO user_permissions (user_id, permission) VALUES (?, ?)`,
			userID, string(p))
		if err != nil {
			return fmt.Errorf("sqlite: grant %q to user %d: %w", p, userID, err)
		}
	}
	return nil
}

// IssueToken mints a fresh opaque bearer token for the user.
func (r *Repository) IssueToken(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO api_tokens (token, user_id, created_at) VALUES (?, ?, ?)`,
		token, userID, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("sqlite: issue token for user %d: %w", userID, err)
	}
	return token, nil
}
