package authpw

import (
	"context"
	"errors"
	"testing"

	"estateflow/api/internal/store"
)

type fakeUserStore struct {
	users map[string]store.AdminUser
}

func (f *fakeUserStore) GetAdminByEmail(_ context.Context, email string) (store.AdminUser, error) {
	user, ok := f.users[email]
	if !ok {
		return store.AdminUser{}, store.ErrNotFound
	}
	return user, nil
}

func TestSignInWithValidCredentials(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	svc := NewService(&fakeUserStore{users: map[string]store.AdminUser{
		"owner@estateflow.dev": {ID: "adm_1", Email: "owner@estateflow.dev", PasswordHash: hash},
	}})

	user, err := svc.SignIn(context.Background(), "owner@estateflow.dev", "correct-horse")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if user.ID != "adm_1" {
		t.Fatalf("expected adm_1, got %q", user.ID)
	}
}

func TestSignInRejectsWrongPassword(t *testing.T) {
	hash, _ := HashPassword("correct-horse")
	svc := NewService(&fakeUserStore{users: map[string]store.AdminUser{
		"owner@estateflow.dev": {ID: "adm_1", Email: "owner@estateflow.dev", PasswordHash: hash},
	}})

	_, err := svc.SignIn(context.Background(), "owner@estateflow.dev", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSignInRejectsUnknownEmailWithSameError(t *testing.T) {
	svc := NewService(&fakeUserStore{users: map[string]store.AdminUser{}})

	_, err := svc.SignIn(context.Background(), "nobody@example.com", "whatever")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestHashPasswordRejectsShortPasswords(t *testing.T) {
	if _, err := HashPassword("short"); err == nil {
		t.Fatalf("expected error for short password")
	}
}
