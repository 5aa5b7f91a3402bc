package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atinyakov/healthmate/internal/models"
)

const vitalColumns = `id, owner, systolic, diastolic, heart_rate, spo2, temperature, weight, recorded_at, record_date`

// PostgresVitalsRepository stores vital records in PostgreSQL. Every query is
// scoped by owner, so one user can never reach another user's rows.
type PostgresVitalsRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresVitalsRepository creates a new PostgresVitalsRepository using the provided *sql.DB.
func NewPostgresVitalsRepository(db *sql.DB) *PostgresVitalsRepository {
	return &PostgresVitalsRepository{DB: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVital(row scanner) (models.VitalRecord, error) {
	var v models.VitalRecord
	err := row.Scan(&v.ID, &v.Owner, &v.Systolic, &v.Diastolic, &v.HeartRate, &v.SpO2,
		&v.Temperature, &v.Weight, &v.Timestamp, &v.Date)
	return v, err
}

// InsertVital stores a new record. rec.ID must already be assigned.
func (s *PostgresVitalsRepository) InsertVital(ctx context.Context, rec models.VitalRecord) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO vitals (`+vitalColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, rec.ID, rec.Owner, rec.Systolic, rec.Diastolic, rec.HeartRate, rec.SpO2,
		rec.Temperature, rec.Weight, rec.Timestamp.UTC(), rec.Date)
	if err != nil {
		return fmt.Errorf("insert vital: %w", err)
	}
	return nil
}

// ListVitals returns every record of owner in ascending capture order.
func (s *PostgresVitalsRepository) ListVitals(ctx context.Context, owner string) ([]models.VitalRecord, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+vitalColumns+` FROM vitals WHERE owner = $1 ORDER BY recorded_at ASC
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("list vitals: %w", err)
	}
	defer rows.Close()
	return collectVitals(rows)
}

func collectVitals(rows *sql.Rows) ([]models.VitalRecord, error) {
	records := make([]models.VitalRecord, 0)
	for rows.Next() {
		v, err := scanVital(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		records = append(records, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vitals: %w", err)
	}
	return records, nil
}

// ListVitalsBetween returns owner's records captured in [from, to] in
// ascending capture order.
func (s *PostgresVitalsRepository) ListVitalsBetween(ctx context.Context, owner string, from, to time.Time) ([]models.VitalRecord, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+vitalColumns+` FROM vitals
		WHERE owner = $1 AND recorded_at >= $2 AND recorded_at <= $3
		ORDER BY recorded_at ASC
	`, owner, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("list vitals between: %w", err)
	}
	defer rows.Close()
	return collectVitals(rows)
}

// GetVital fetches one record of owner. Records of other owners are
// reported as models.ErrNotFound.
func (s *PostgresVitalsRepository) GetVital(ctx context.Context, owner, id string) (*models.VitalRecord, error) {
	v, err := scanVital(s.DB.QueryRowContext(ctx, `
		SELECT `+vitalColumns+` FROM vitals WHERE owner = $1 AND id = $2
	`, owner, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get vital: %w", err)
	}
	return &v, nil
}

// UpdateVital applies the non-nil fields of patch and returns the updated record.
func (s *PostgresVitalsRepository) UpdateVital(ctx context.Context, owner, id string, patch models.VitalPatch) (*models.VitalRecord, error) {
	sets := make([]string, 0, 6)
	args := []any{owner, id}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Systolic != nil {
		add("systolic", *patch.Systolic)
	}
	if patch.Diastolic != nil {
		add("diastolic", *patch.Diastolic)
	}
	if patch.HeartRate != nil {
		add("heart_rate", *patch.HeartRate)
	}
	if patch.SpO2 != nil {
		add("spo2", *patch.SpO2)
	}
	if patch.Temperature != nil {
		add("temperature", *patch.Temperature)
	}
	if patch.Weight != nil {
		add("weight", *patch.Weight)
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", models.ErrInvalidInput)
	}

	query := `UPDATE vitals SET ` + strings.Join(sets, ", ") +
		` WHERE owner = $1 AND id = $2 RETURNING ` + vitalColumns
	v, err := scanVital(s.DB.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update vital: %w", err)
	}
	return &v, nil
}

// DeleteVital removes one record of owner.
func (s *PostgresVitalsRepository) DeleteVital(ctx context.Context, owner, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM vitals WHERE owner = $1 AND id = $2`, owner, id)
	if err != nil {
		return fmt.Errorf("delete vital: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete vital: %w", err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// DeleteAllVitals removes every record of owner and returns how many were removed.
func (s *PostgresVitalsRepository) DeleteAllVitals(ctx context.Context, owner string) (int64, error) {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM vitals WHERE owner = $1`, owner)
	if err != nil {
		return 0, fmt.Errorf("delete all vitals: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete all vitals: %w", err)
	}
	return n, nil
}
