package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/atinyakov/healthmate/internal/models"
)

// PostgresShareRepository persists shared report snapshots.
type PostgresShareRepository struct {
	DB *sql.DB
}

// NewPostgresShareRepository creates a new PostgresShareRepository using the provided *sql.DB.
func NewPostgresShareRepository(db *sql.DB) *PostgresShareRepository {
	return &PostgresShareRepository{DB: db}
}

// InsertShare stores a new shared report.
func (s *PostgresShareRepository) InsertShare(ctx context.Context, rep models.SharedReport) error {
	preview, err := json.Marshal(rep.Preview)
	if err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO shared_reports (id, owner, user_email, user_name, window_days, total_records,
			created_at, expires_at, html_content, preview)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, rep.ID, rep.Owner, rep.UserEmail, rep.UserName, rep.WindowDays, rep.TotalRecords,
		rep.CreatedAt.UTC(), rep.ExpiresAt.UTC(), rep.HTMLContent, preview)
	if err != nil {
		return fmt.Errorf("insert share: %w", err)
	}
	return nil
}

// GetShare returns the shared report with id regardless of owner or expiry.
func (s *PostgresShareRepository) GetShare(ctx context.Context, id string) (*models.SharedReport, error) {
	var (
		rep     models.SharedReport
		preview []byte
	)
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, owner, user_email, user_name, window_days, total_records,
			created_at, expires_at, html_content, preview
		FROM shared_reports WHERE id = $1
	`, id).Scan(&rep.ID, &rep.Owner, &rep.UserEmail, &rep.UserName, &rep.WindowDays, &rep.TotalRecords,
		&rep.CreatedAt, &rep.ExpiresAt, &rep.HTMLContent, &preview)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get share: %w", err)
	}
	if err := json.Unmarshal(preview, &rep.Preview); err != nil {
		return nil, fmt.Errorf("decode preview: %w", err)
	}
	return &rep, nil
}

// ListShares returns the metadata of owner's shared reports, newest first.
// Rendered content and preview rows are not loaded.
func (s *PostgresShareRepository) ListShares(ctx context.Context, owner string) ([]models.SharedReport, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, owner, user_email, user_name, window_days, total_records, created_at, expires_at
		FROM shared_reports WHERE owner = $1 ORDER BY created_at DESC
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}
	defer rows.Close()

	reports := make([]models.SharedReport, 0)
	for rows.Next() {
		var rep models.SharedReport
		if err := rows.Scan(&rep.ID, &rep.Owner, &rep.UserEmail, &rep.UserName, &rep.WindowDays,
			&rep.TotalRecords, &rep.CreatedAt, &rep.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}
	return reports, nil
}
