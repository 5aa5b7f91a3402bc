package models

import "time"

// ActivityType identifies what an owner did.
type ActivityType string

const (
	// VitalRecorded is logged when a new record is stored.
	VitalRecorded ActivityType = "vital_recorded"
	// ReportExported is logged when a report is compiled for download.
	ReportExported ActivityType = "report_exported"
	// ChartExported is logged when chart series are requested.
	ChartExported ActivityType = "chart_exported"
	// ShareCreated is logged when a shared report is published.
	ShareCreated ActivityType = "share_created"
	// ProfileUpdated is logged when the owner's profile changes.
	ProfileUpdated ActivityType = "profile_updated"
)

// Title returns the human-readable title for the activity type.
func (t ActivityType) Title() string {
	switch t {
	case VitalRecorded:
		return "Vitals recorded"
	case ReportExported:
		return "Health report exported"
	case ChartExported:
		return "Analytics chart exported"
	case ShareCreated:
		return "Report shared"
	case ProfileUpdated:
		return "Profile updated"
	default:
		return "Activity"
	}
}

// Activity is one entry in an owner's recent activity feed.
type Activity struct {
	ID          string       `json:"id"`
	Owner       string       `json:"owner"`
	Type        ActivityType `json:"type"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
}
