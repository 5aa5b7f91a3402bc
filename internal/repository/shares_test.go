package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/atinyakov/healthmate/internal/models"
)

func setupSharesMock(t *testing.T) (*PostgresShareRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	return NewPostgresShareRepository(db), mock, func() { db.Close() }
}

func TestInsertShare_Success(t *testing.T) {
	repo, mock, cleanup := setupSharesMock(t)
	defer cleanup()

	created := time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC)
	rep := models.SharedReport{
		ID: "s1", Owner: "alice@example.com", UserEmail: "alice@example.com", UserName: "Alice",
		WindowDays: 30, TotalRecords: 1, CreatedAt: created, ExpiresAt: created.Add(models.ShareTTL),
		HTMLContent: "<html></html>",
		Preview:     []models.PreviewRow{{Timestamp: created, Systolic: 120, Diastolic: 80, HeartRate: 70, SpO2: 98, Temperature: 98.6}},
	}
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO shared_reports`)).
		WithArgs("s1", "alice@example.com", "alice@example.com", "Alice", 30, 1,
			created, created.Add(models.ShareTTL), "<html></html>", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.InsertShare(context.Background(), rep); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestGetShare_Success(t *testing.T) {
	repo, mock, cleanup := setupSharesMock(t)
	defer cleanup()

	created := time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC)
	preview := []byte(`[{"timestamp":"2026-01-15T08:00:00Z","systolic":120,"diastolic":80,"heart_rate":70,"spo2":98,"temperature":98.6}]`)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM shared_reports WHERE id = $1`)).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner", "user_email", "user_name", "window_days", "total_records",
			"created_at", "expires_at", "html_content", "preview"}).
			AddRow("s1", "alice@example.com", "alice@example.com", "Alice", 30, 1,
				created, created.Add(models.ShareTTL), "<html></html>", preview))

	rep, err := repo.GetShare(context.Background(), "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.UserName != "Alice" || len(rep.Preview) != 1 || rep.Preview[0].Systolic != 120 {
		t.Errorf("GetShare = %+v", rep)
	}
	if !rep.ExpiresAt.Equal(created.Add(models.ShareTTL)) {
		t.Errorf("ExpiresAt = %v; want %v", rep.ExpiresAt, created.Add(models.ShareTTL))
	}
}

func TestGetShare_NotFound(t *testing.T) {
	repo, mock, cleanup := setupSharesMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM shared_reports WHERE id = $1`)).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetShare(context.Background(), "missing")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("GetShare error = %v; want ErrNotFound", err)
	}
}

func TestListShares(t *testing.T) {
	repo, mock, cleanup := setupSharesMock(t)
	defer cleanup()

	created := time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM shared_reports WHERE owner = $1 ORDER BY created_at DESC`)).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner", "user_email", "user_name", "window_days",
			"total_records", "created_at", "expires_at"}).
			AddRow("s2", "alice@example.com", "alice@example.com", "Alice", 7, 3, created.Add(time.Hour), created.Add(time.Hour+models.ShareTTL)).
			AddRow("s1", "alice@example.com", "alice@example.com", "Alice", 30, 9, created, created.Add(models.ShareTTL)))

	reports, err := repo.ListShares(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reports) != 2 || reports[0].ID != "s2" || reports[1].WindowDays != 30 {
		t.Errorf("ListShares = %+v", reports)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
