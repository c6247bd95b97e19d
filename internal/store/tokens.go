package store

import (
	"context"
	"fmt"
	"time"
)

func (s *Store) CreateRefreshToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	_, err := s.Exec(ctx, s.DB, s.rebind(
		"INSERT INTO refresh_tokens (user_id, token, expires_at) VALUES ($1, $2, $3)"),
		userID, token, expiresAt.UTC())
	return err
}

// ConsumeRefreshToken deletes a refresh token and returns its owner and
// expiry. Each token can be exchanged once.
func (s *Store) ConsumeRefreshToken(ctx context.Context, token string) (int64, time.Time, error) {
	tx, err := s.BeginTx(ctx)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var userID int64
	var expiresAt time.Time
	err = tx.QueryRowContext(ctx, s.rebind(
		"SELECT user_id, expires_at FROM refresh_tokens WHERE token = $1"), token).
		Scan(&userID, &expiresAt)
	if err != nil {
		return 0, time.Time{}, notFound(err)
	}

	if _, err := s.Exec(ctx, tx, s.rebind("DELETE FROM refresh_tokens WHERE token = $1"), token); err != nil {
		return 0, time.Time{}, err
	}
	if err := tx.Commit(); err != nil {
		return 0, time.Time{}, fmt.Errorf("commit: %w", err)
	}
	return userID, expiresAt, nil
}

func (s *Store) DeleteRefreshToken(ctx context.Context, token string) error {
	_, err := s.Exec(ctx, s.DB, s.rebind("DELETE FROM refresh_tokens WHERE token = $1"), token)
	return err
}
