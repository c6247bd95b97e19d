package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type seedAccount struct {
	username, email, password, role, fullName, bio string
}

var seedAccounts = []seedAccount{
	{"admin", "admin@internal.com", "password@admin", "ADMIN", "Admin App", "This account is Admin App"},
	{"user-test", "user-test@dev.com", "password-user", "USER", "User Test", "This account is User Test"},
}

// Bootstrap creates the schema and seeds the default accounts.
func (s *Store) Bootstrap(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, s.Dialect.SchemaSQL()); err != nil {
		return fmt.Errorf("bootstrap schema: %w", err)
	}
	for _, acc := range seedAccounts {
		if err := s.seedAccount(ctx, acc); err != nil {
			return fmt.Errorf("seed %s: %w", acc.username, err)
		}
	}
	return nil
}

func (s *Store) seedAccount(ctx context.Context, acc seedAccount) error {
	_, err := s.GetUserByUsername(ctx, acc.username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(acc.password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	bio := acc.bio
	_, err = s.CreateUser(ctx, &User{
		Username:     acc.username,
		Email:        acc.email,
		PasswordHash: string(hash),
		Role:         acc.role,
	}, Profile{FullName: acc.fullName, Bio: &bio})
	if err != nil {
		return err
	}

	zap.L().Warn("seeded default account, change its password",
		zap.String("username", acc.username), zap.String("email", acc.email))
	return nil
}
