package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hyperengineering/liftlog/internal/types"
)

// UpsertUser returns the user for the email, creating it on first sign-in.
func (s *SQLiteStore) UpsertUser(ctx context.Context, email string) (*types.User, error) {
	user := &types.User{}
	var createdAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, created_at FROM users WHERE email = ?
	`, email).Scan(&user.ID, &user.Email, &createdAt)
	if err == nil {
		user.CreatedAt = parseTime(createdAt)
		return user, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("query user: %w", err)
	}

	now := time.Now().UTC()
	user.ID = newID()
	user.Email = email
	user.CreatedAt = now

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, created_at) VALUES (?, ?, ?)
	`, user.ID, user.Email, fmtTime(now)); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

// CreateLoginToken stores a single-use magic-link token.
func (s *SQLiteStore) CreateLoginToken(ctx context.Context, token, email, redirectTo string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO login_tokens (token, email, redirect_to, created_at, expires_at, consumed_at)
		VALUES (?, ?, ?, ?, ?, NULL)
	`, token, email, redirectTo, fmtTime(time.Now().UTC()), fmtTime(expiresAt))
	if err != nil {
		return fmt.Errorf("insert login token: %w", err)
	}
	return nil
}

// ConsumeLoginToken marks the token used and returns its email. A token is
// good exactly once and only before its expiry.
func (s *SQLiteStore) ConsumeLoginToken(ctx context.Context, token string, now time.Time) (string, error) {
	var email, expiresAt string
	var consumedAt sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT email, expires_at, consumed_at FROM login_tokens WHERE token = ?
	`, token).Scan(&email, &expiresAt, &consumedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("query login token: %w", err)
	}

	if consumedAt.Valid {
		return "", ErrTokenConsumed
	}
	if now.UTC().After(parseTime(expiresAt)) {
		return "", ErrTokenExpired
	}

	if _, err := s.db.ExecContext(ctx, `
		UPDATE login_tokens SET consumed_at = ? WHERE token = ?
	`, fmtTime(now), token); err != nil {
		return "", fmt.Errorf("consume login token: %w", err)
	}

	return email, nil
}

// CreateSession stores a bearer session token.
func (s *SQLiteStore) CreateSession(ctx context.Context, token, userID string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id, created_at, expires_at)
		VALUES (?, ?, ?, ?)
	`, token, userID, fmtTime(time.Now().UTC()), fmtTime(expiresAt))
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetSessionUser resolves a live session token to its user.
func (s *SQLiteStore) GetSessionUser(ctx context.Context, token string, now time.Time) (*types.User, error) {
	user := &types.User{}
	var createdAt, expiresAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.email, u.created_at, s.expires_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token = ?
	`, token).Scan(&user.ID, &user.Email, &createdAt, &expiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query session: %w", err)
	}

	if now.UTC().After(parseTime(expiresAt)) {
		return nil, ErrNotFound
	}

	user.CreatedAt = parseTime(createdAt)
	return user, nil
}

// DeleteSession signs the session out. Deleting an unknown token is not an
// error: sign-out is idempotent.
func (s *SQLiteStore) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PurgeExpiredAuth removes expired sessions and login tokens. Returns the
// number of rows removed.
func (s *SQLiteStore) PurgeExpiredAuth(ctx context.Context, now time.Time) (int64, error) {
	cutoff := fmtTime(now)
	var total int64

	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		total += n
	}

	res, err = s.db.ExecContext(ctx, `DELETE FROM login_tokens WHERE expires_at < ? OR consumed_at IS NOT NULL`, cutoff)
	if err != nil {
		return total, fmt.Errorf("purge login tokens: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		total += n
	}

	return total, nil
}
