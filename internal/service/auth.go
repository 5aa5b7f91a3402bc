// Package service holds the HealthMate business logic. Services delegate
// persistence to the repository interfaces declared next to them and run
// the analytics engine over the records they load.
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/atinyakov/healthmate/internal/models"
)

// AuthRepository defines the persistence operations
// required by the authentication service.
type AuthRepository interface {
	// UserExists returns true if a user with the given login exists.
	UserExists(ctx context.Context, login string) (bool, error)
	// RegisterUser creates the user record of login, failing with
	// models.ErrAlreadyExists when it is taken.
	RegisterUser(ctx context.Context, login, displayName string) error
	// GetUser returns models.ErrNotFound for unknown logins.
	GetUser(ctx context.Context, login string) (*models.User, error)
}

// AuthService implements registration and owner lookups by delegating
// to an AuthRepository.
type AuthService struct {
	repo AuthRepository
}

// NewAuthService constructs a new AuthService using the provided repository.
func NewAuthService(repo AuthRepository) *AuthService {
	return &AuthService{repo: repo}
}

// UserExists checks whether a user with the specified login exists.
func (s *AuthService) UserExists(ctx context.Context, login string) (bool, error) {
	return s.repo.UserExists(ctx, login)
}

// RegisterUser registers login with an optional display name.
func (s *AuthService) RegisterUser(ctx context.Context, login, displayName string) error {
	login = strings.TrimSpace(login)
	if login == "" {
		return models.ErrNotAuthenticated
	}
	return s.repo.RegisterUser(ctx, login, strings.TrimSpace(displayName))
}

// DisplayName returns the stored display name of login, or "" when the
// owner never set one.
func (s *AuthService) DisplayName(ctx context.Context, login string) (string, error) {
	u, err := s.repo.GetUser(ctx, login)
	if errors.Is(err, models.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return u.DisplayName, nil
}
