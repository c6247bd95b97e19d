package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// now is the timestamp written on insert. Second precision keeps sqlite's
// text encoding of DATETIME values lexically ordered.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

const userColumns = "id, username, email, password_hash, role, created_at"

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// CreateUser inserts a user and its profile in one transaction.
func (s *Store) CreateUser(ctx context.Context, u *User, p Profile) (int64, error) {
	tx, err := s.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if u.Role == "" {
		u.Role = "USER"
	}
	u.CreatedAt = now()
	id, err := s.insertID(ctx, tx, s.rebind(
		"INSERT INTO users (username, email, password_hash, role, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id"),
		u.Username, u.Email, u.PasswordHash, u.Role, u.CreatedAt)
	if err != nil {
		return 0, err
	}

	if _, err := s.Exec(ctx, tx, s.rebind(
		"INSERT INTO profiles (user_id, full_name, bio) VALUES ($1, $2, $3)"),
		id, p.FullName, p.Bio); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	u.ID = id
	return id, nil
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*User, error) {
	return scanUser(s.DB.QueryRowContext(ctx, s.rebind(
		"SELECT "+userColumns+" FROM users WHERE id = $1"), id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(s.DB.QueryRowContext(ctx, s.rebind(
		"SELECT "+userColumns+" FROM users WHERE email = $1"), email))
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return scanUser(s.DB.QueryRowContext(ctx, s.rebind(
		"SELECT "+userColumns+" FROM users WHERE username = $1"), username))
}

// UserUpdate holds the optional fields of an account update.
type UserUpdate struct {
	Username     *string
	Email        *string
	PasswordHash *string
}

// UpdateUser applies the non-nil fields of upd and returns the updated user.
func (s *Store) UpdateUser(ctx context.Context, id int64, upd UserUpdate) (*User, error) {
	var sets []string
	var args []any
	add := func(col string, v *string) {
		if v == nil {
			return
		}
		args = append(args, *v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	add("username", upd.Username)
	add("email", upd.Email)
	add("password_hash", upd.PasswordHash)

	if len(sets) > 0 {
		args = append(args, id)
		sqlStr := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
		n, err := s.Exec(ctx, s.DB, s.rebind(sqlStr), args...)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, ErrNotFound
		}
	}
	return s.GetUserByID(ctx, id)
}

// DeleteUser removes a user. Profiles, posts, comments and refresh tokens
// go with it through ON DELETE CASCADE.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	n, err := s.Exec(ctx, s.DB, s.rebind("DELETE FROM users WHERE id = $1"), id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	var p Profile
	var bio sql.NullString
	err := s.DB.QueryRowContext(ctx, s.rebind(
		"SELECT user_id, full_name, bio FROM profiles WHERE user_id = $1"), userID).
		Scan(&p.UserID, &p.FullName, &bio)
	if err != nil {
		return nil, notFound(err)
	}
	if bio.Valid {
		p.Bio = &bio.String
	}
	return &p, nil
}

// UpdateProfile overwrites the full name and bio when they are non-nil.
func (s *Store) UpdateProfile(ctx context.Context, userID int64, fullName, bio *string) (*Profile, error) {
	if fullName != nil {
		if _, err := s.Exec(ctx, s.DB, s.rebind(
			"UPDATE profiles SET full_name = $1 WHERE user_id = $2"), *fullName, userID); err != nil {
			return nil, err
		}
	}
	if bio != nil {
		if _, err := s.Exec(ctx, s.DB, s.rebind(
			"UPDATE profiles SET bio = $1 WHERE user_id = $2"), *bio, userID); err != nil {
			return nil, err
		}
	}
	return s.GetProfile(ctx, userID)
}
