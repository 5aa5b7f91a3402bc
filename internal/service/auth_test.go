package service

import (
	"context"
	"errors"
	"testing"

	"github.com/atinyakov/healthmate/internal/models"
)

type mockAuthRepo struct {
	UserExistsFunc   func(ctx context.Context, login string) (bool, error)
	RegisterUserFunc func(ctx context.Context, login, displayName string) error
	GetUserFunc      func(ctx context.Context, login string) (*models.User, error)
}

func (m *mockAuthRepo) UserExists(ctx context.Context, login string) (bool, error) {
	return m.UserExistsFunc(ctx, login)
}
func (m *mockAuthRepo) RegisterUser(ctx context.Context, login, displayName string) error {
	return m.RegisterUserFunc(ctx, login, displayName)
}
func (m *mockAuthRepo) GetUser(ctx context.Context, login string) (*models.User, error) {
	return m.GetUserFunc(ctx, login)
}

func TestUserExists_Success(t *testing.T) {
	want := true
	repo := &mockAuthRepo{
		UserExistsFunc: func(ctx context.Context, login string) (bool, error) {
			if login != "bob@example.com" {
				t.Errorf("UserExists received login = %q; want %q", login, "bob@example.com")
			}
			return want, nil
		},
	}
	svc := NewAuthService(repo)

	got, err := svc.UserExists(context.Background(), "bob@example.com")
	if err != nil {
		t.Fatalf("UserExists returned error: %v", err)
	}
	if got != want {
		t.Errorf("UserExists = %v; want %v", got, want)
	}
}

func TestUserExists_Error(t *testing.T) {
	wantErr := errors.New("db error")
	repo := &mockAuthRepo{
		UserExistsFunc: func(ctx context.Context, login string) (bool, error) {
			return false, wantErr
		},
	}
	svc := NewAuthService(repo)

	got, err := svc.UserExists(context.Background(), "alice@example.com")
	if err != wantErr {
		t.Fatalf("UserExists error = %v; want %v", err, wantErr)
	}
	if got {
		t.Errorf("UserExists = %v; want false on error", got)
	}
}

func TestRegisterUser_Success(t *testing.T) {
	called := false
	repo := &mockAuthRepo{
		RegisterUserFunc: func(ctx context.Context, login, displayName string) error {
			called = true
			if login != "carol@example.com" || displayName != "Carol" {
				t.Errorf("RegisterUser received (%q, %q); want (%q, %q)", login, displayName, "carol@example.com", "Carol")
			}
			return nil
		},
	}
	svc := NewAuthService(repo)

	if err := svc.RegisterUser(context.Background(), " carol@example.com ", " Carol"); err != nil {
		t.Fatalf("RegisterUser returned error: %v", err)
	}
	if !called {
		t.Fatal("expected RegisterUser to be called on repo")
	}
}

func TestRegisterUser_EmptyLogin(t *testing.T) {
	svc := NewAuthService(&mockAuthRepo{})

	if err := svc.RegisterUser(context.Background(), "  ", "x"); !errors.Is(err, models.ErrNotAuthenticated) {
		t.Errorf("RegisterUser error = %v; want ErrNotAuthenticated", err)
	}
}

func TestRegisterUser_Error(t *testing.T) {
	wantErr := errors.New("insert failed")
	repo := &mockAuthRepo{
		RegisterUserFunc: func(ctx context.Context, login, displayName string) error {
			return wantErr
		},
	}
	svc := NewAuthService(repo)

	err := svc.RegisterUser(context.Background(), "dave@example.com", "")
	if err != wantErr {
		t.Fatalf("RegisterUser error = %v; want %v", err, wantErr)
	}
}

func TestDisplayName(t *testing.T) {
	repo := &mockAuthRepo{
		GetUserFunc: func(ctx context.Context, login string) (*models.User, error) {
			if login == "alice@example.com" {
				return &models.User{Login: login, DisplayName: "Alice"}, nil
			}
			return nil, models.ErrNotFound
		},
	}
	svc := NewAuthService(repo)

	got, err := svc.DisplayName(context.Background(), "alice@example.com")
	if err != nil || got != "Alice" {
		t.Errorf("DisplayName = (%q, %v); want (Alice, nil)", got, err)
	}
	got, err = svc.DisplayName(context.Background(), "ghost@example.com")
	if err != nil || got != "" {
		t.Errorf("DisplayName(unknown) = (%q, %v); want empty, nil", got, err)
	}
}
