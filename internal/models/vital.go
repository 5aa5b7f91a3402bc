// Package models defines the core data structures for owners, vital records,
// shared reports and activity entries.
package models

import (
	"fmt"
	"time"
)

// DateLayout is the layout of the calendar date stored alongside each record.
const DateLayout = "2006-01-02"

// User represents an application user.
type User struct {
	// Login is the stable owner identifier (email or equivalent).
	Login string `json:"login"`
	// DisplayName is the optional human-readable name shown on reports.
	DisplayName string `json:"display_name,omitempty"`
}

// VitalRecord is one timestamped measurement snapshot owned by a single user.
type VitalRecord struct {
	// ID is the opaque record identifier, empty until persisted.
	ID string `json:"id,omitempty"`
	// Owner is the login of the user who created the record.
	Owner string `json:"owner"`
	// Systolic blood pressure in mmHg.
	Systolic int `json:"systolic"`
	// Diastolic blood pressure in mmHg.
	Diastolic int `json:"diastolic"`
	// HeartRate in beats per minute.
	HeartRate int `json:"heart_rate"`
	// SpO2 is the blood oxygen saturation in percent.
	SpO2 int `json:"spo2"`
	// Temperature in degrees Fahrenheit.
	Temperature float64 `json:"temperature"`
	// Weight in pounds.
	Weight int `json:"weight"`
	// Timestamp is the capture instant and the only ordering key.
	Timestamp time.Time `json:"timestamp"`
	// Date is the owner-local calendar date (YYYY-MM-DD) at capture time.
	Date string `json:"date"`
}

// CaptureDate returns the record's calendar date, falling back to the UTC
// date of the timestamp when Date is not populated.
func (v VitalRecord) CaptureDate() string {
	if v.Date != "" {
		return v.Date
	}
	return v.Timestamp.UTC().Format(DateLayout)
}

// VitalInput is the validated payload used to create a record.
type VitalInput struct {
	Systolic    *int     `json:"systolic"`
	Diastolic   *int     `json:"diastolic"`
	HeartRate   *int     `json:"heart_rate"`
	SpO2        *int     `json:"spo2"`
	Temperature *float64 `json:"temperature"`
	Weight      *int     `json:"weight"`
	// Timestamp is optional; the capture time defaults to "now".
	Timestamp Timestamp `json:"timestamp"`
}

// Validate reports ErrInvalidInput when a measurement is missing or out of range.
func (in VitalInput) Validate() error {
	if in.Systolic == nil || in.Diastolic == nil || in.HeartRate == nil ||
		in.SpO2 == nil || in.Temperature == nil || in.Weight == nil {
		return fmt.Errorf("%w: all vital measurements are required", ErrInvalidInput)
	}
	return validateRanges(in.Systolic, in.Diastolic, in.HeartRate, in.SpO2, in.Temperature, in.Weight)
}

// Record builds a VitalRecord for owner captured at ts. The calendar date is
// derived in loc.
func (in VitalInput) Record(owner string, ts time.Time, loc *time.Location) VitalRecord {
	if loc == nil {
		loc = time.UTC
	}
	return VitalRecord{
		Owner:       owner,
		Systolic:    *in.Systolic,
		Diastolic:   *in.Diastolic,
		HeartRate:   *in.HeartRate,
		SpO2:        *in.SpO2,
		Temperature: *in.Temperature,
		Weight:      *in.Weight,
		Timestamp:   ts,
		Date:        ts.In(loc).Format(DateLayout),
	}
}

// VitalPatch is a partial field update. Nil fields are left unchanged.
type VitalPatch struct {
	Systolic    *int     `json:"systolic,omitempty"`
	Diastolic   *int     `json:"diastolic,omitempty"`
	HeartRate   *int     `json:"heart_rate,omitempty"`
	SpO2        *int     `json:"spo2,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Weight      *int     `json:"weight,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p VitalPatch) Empty() bool {
	return p.Systolic == nil && p.Diastolic == nil && p.HeartRate == nil &&
		p.SpO2 == nil && p.Temperature == nil && p.Weight == nil
}

// Validate checks the supplied fields with the same rules as VitalInput.
func (p VitalPatch) Validate() error {
	if p.Empty() {
		return fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}
	return validateRanges(p.Systolic, p.Diastolic, p.HeartRate, p.SpO2, p.Temperature, p.Weight)
}

func validateRanges(systolic, diastolic, heartRate, spO2 *int, temperature *float64, weight *int) error {
	fields := []struct {
		name string
		v    *int
	}{
		{"systolic", systolic},
		{"diastolic", diastolic},
		{"heart_rate", heartRate},
		{"spo2", spO2},
		{"weight", weight},
	}
	for _, f := range fields {
		if f.v != nil && *f.v < 0 {
			return fmt.Errorf("%w: %s must be non-negative", ErrInvalidInput, f.name)
		}
	}
	if spO2 != nil && *spO2 > 100 {
		return fmt.Errorf("%w: spo2 must be between 0 and 100", ErrInvalidInput)
	}
	if temperature != nil && *temperature <= 0 {
		return fmt.Errorf("%w: temperature must be positive", ErrInvalidInput)
	}
	return nil
}
