package models

import "time"

// ShareTTL is how long a shared report stays readable after creation.
const ShareTTL = 30 * 24 * time.Hour

// PreviewRow is the redacted form of a record exposed through shared reports.
// It carries no identifiers, owner or weight.
type PreviewRow struct {
	Timestamp   time.Time `json:"timestamp"`
	Systolic    int       `json:"systolic"`
	Diastolic   int       `json:"diastolic"`
	HeartRate   int       `json:"heart_rate"`
	SpO2        int       `json:"spo2"`
	Temperature float64   `json:"temperature"`
}

// SharedReport is a persisted, owner-attributed report snapshot that anyone
// holding its ID can read until ExpiresAt.
type SharedReport struct {
	// ID is the opaque share identifier.
	ID string `json:"id"`
	// Owner is the login of the user who published the report.
	Owner string `json:"-"`
	// UserEmail and UserName identify the owner on the rendered document.
	UserEmail string `json:"user_email"`
	UserName  string `json:"user_name"`
	// WindowDays is the trailing day window the report covers (0 = all).
	WindowDays int `json:"window_days"`
	// TotalRecords is the number of records in the window.
	TotalRecords int `json:"total_records"`
	// CreatedAt is the publication time.
	CreatedAt time.Time `json:"created_at"`
	// ExpiresAt is fixed at CreatedAt + ShareTTL.
	ExpiresAt time.Time `json:"expires_at"`
	// HTMLContent is the rendered report document.
	HTMLContent string `json:"html_content,omitempty"`
	// Preview holds at most ten redacted rows.
	Preview []PreviewRow `json:"preview"`
}

// Expired reports whether the report is no longer readable at now.
func (s SharedReport) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
