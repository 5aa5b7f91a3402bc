// Package repository provides the persistence implementations behind the
// HealthMate services.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/healthmate/internal/models"
)

// PostgresAuthRepository stores registered owners in PostgreSQL.
type PostgresAuthRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAuthRepository creates a new PostgresAuthRepository with the given database connection.
func NewPostgresAuthRepository(db *sql.DB) *PostgresAuthRepository {
	return &PostgresAuthRepository{DB: db}
}

// UserExists checks whether a user with the specified login exists in the database.
func (s *PostgresAuthRepository) UserExists(ctx context.Context, login string) (bool, error) {
	var exists bool
	err := s.DB.QueryRowContext(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE login = $1)`,
		login,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("user exists: %w", err)
	}
	return exists, nil
}

// RegisterUser inserts login. It returns models.ErrAlreadyExists when the
// login is already taken, including when a concurrent registration won.
func (s *PostgresAuthRepository) RegisterUser(ctx context.Context, login, displayName string) error {
	res, err := s.DB.ExecContext(
		ctx,
		`INSERT INTO users (login, display_name) VALUES ($1, $2)
		 ON CONFLICT (login) DO NOTHING`,
		login, displayName,
	)
	if err != nil {
		return fmt.Errorf("register user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("register user: %w", err)
	}
	if n == 0 {
		return models.ErrAlreadyExists
	}
	return nil
}

// GetUser returns the stored profile of login.
func (s *PostgresAuthRepository) GetUser(ctx context.Context, login string) (*models.User, error) {
	u := models.User{Login: login}
	err := s.DB.QueryRowContext(
		ctx,
		`SELECT display_name FROM users WHERE login = $1`,
		login,
	).Scan(&u.DisplayName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
