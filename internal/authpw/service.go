// Package authpw provides email/password credential verification for
// the direct admin login path.
package authpw

import (
	"context"
	"errors"
	"fmt"

	"estateflow/api/internal/store"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is deliberately opaque: callers surface the
// same generic message for an unknown email and a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserStore is the storage surface credential checks need.
type UserStore interface {
	GetAdminByEmail(ctx context.Context, email string) (store.AdminUser, error)
}

type Service struct {
	store UserStore
}

func NewService(store UserStore) *Service {
	return &Service{store: store}
}

// SignIn verifies an email/password pair against the stored bcrypt
// hash and returns the matching account.
func (s *Service) SignIn(ctx context.Context, email, password string) (store.AdminUser, error) {
	if email == "" || password == "" {
		return store.AdminUser{}, ErrInvalidCredentials
	}

	user, err := s.store.GetAdminByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return store.AdminUser{}, ErrInvalidCredentials
	}
	if err != nil {
		return store.AdminUser{}, fmt.Errorf("lookup admin: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return store.AdminUser{}, ErrInvalidCredentials
	}
	return user, nil
}

// HashPassword hashes a password for account seeding.
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", errors.New("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
