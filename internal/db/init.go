// Package db opens the PostgreSQL store and runs its background maintenance.
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    login TEXT PRIMARY KEY,
    display_name TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS vitals (
    id TEXT PRIMARY KEY,
    owner TEXT NOT NULL REFERENCES users(login) ON DELETE CASCADE,
    systolic INTEGER NOT NULL,
    diastolic INTEGER NOT NULL,
    heart_rate INTEGER NOT NULL,
    spo2 INTEGER NOT NULL,
    temperature DOUBLE PRECISION NOT NULL,
    weight INTEGER NOT NULL,
    recorded_at TIMESTAMPTZ NOT NULL,
    record_date TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS vitals_owner_recorded_at ON vitals (owner, recorded_at);

CREATE TABLE IF NOT EXISTS shared_reports (
    id TEXT PRIMARY KEY,
    owner TEXT NOT NULL REFERENCES users(login) ON DELETE CASCADE,
    user_email TEXT NOT NULL,
    user_name TEXT NOT NULL,
    window_days INTEGER NOT NULL,
    total_records INTEGER NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    expires_at TIMESTAMPTZ NOT NULL,
    html_content TEXT NOT NULL,
    preview JSONB NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS shared_reports_owner ON shared_reports (owner, created_at DESC);
`

// InitPostgres connects to dsn and ensures the schema exists.
func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := EnsureSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// EnsureSchema creates the tables and indexes HealthMate needs. It is safe to
// run against an already initialized database.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
