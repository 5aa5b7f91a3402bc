package analytics

import (
	"strings"
	"time"

	"github.com/atinyakov/healthmate/internal/models"
)

const (
	// ReportRowLimit caps the record listing of a report document.
	ReportRowLimit = 15
	// PreviewRowLimit caps the record listing of a shared preview.
	PreviewRowLimit = 10
)

// rangeDateLayout formats the period bounds shown on reports.
const rangeDateLayout = "01/02/2006"

// Owner identifies who a report is compiled for.
type Owner struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

// Name returns the display name, falling back to the email's local part and
// then to "User".
func (o Owner) Name() string {
	if o.DisplayName != "" {
		return o.DisplayName
	}
	if local, _, _ := strings.Cut(o.Email, "@"); local != "" {
		return local
	}
	return "User"
}

// ReportDocument is the structured input of every rendering target.
type ReportDocument struct {
	UserName        string               `json:"user_name"`
	UserEmail       string               `json:"user_email"`
	GeneratedAt     time.Time            `json:"generated_at"`
	Window          Window               `json:"window"`
	WindowLabel     string               `json:"window_label"`
	PeriodStart     time.Time            `json:"period_start"`
	PeriodEnd       time.Time            `json:"period_end"`
	DateRangeText   string               `json:"date_range_text"`
	TotalRecords    int                  `json:"total_records"`
	Averages        *Averages            `json:"averages"`
	Statistics      *Stats               `json:"statistics"`
	Insights        []Insight            `json:"insights"`
	Recommendations []string             `json:"recommendations"`
	Charts          []ChartSeries        `json:"charts"`
	Records         []models.VitalRecord `json:"records"`
}

// SharePreviewDocument is the redacted document published through share links.
type SharePreviewDocument struct {
	UserName      string              `json:"user_name"`
	UserEmail     string              `json:"user_email"`
	GeneratedAt   time.Time           `json:"generated_at"`
	Window        Window              `json:"window"`
	WindowLabel   string              `json:"window_label"`
	DateRangeText string              `json:"date_range_text"`
	TotalRecords  int                 `json:"total_records"`
	Averages      *Averages           `json:"averages"`
	Insights      []Insight           `json:"insights"`
	Records       []models.PreviewRow `json:"records"`
}

// CompileReport assembles the report for owner over the records inside the
// window ending at now. Every derived value comes from the standalone
// functions of this package applied to the same filtered set.
func CompileReport(owner Owner, records []models.VitalRecord, w Window, now time.Time) ReportDocument {
	inWindow := FilterByRange(records, w, now)
	start := periodStart(inWindow, w, now)

	charts := make([]ChartSeries, 0, len(VitalTypes))
	for _, vt := range VitalTypes {
		charts = append(charts, BuildChartSeries(inWindow, vt, DefaultChartPoints))
	}

	rows := append([]models.VitalRecord{}, MostRecentFirst(inWindow, ReportRowLimit)...)

	return ReportDocument{
		UserName:        owner.Name(),
		UserEmail:       owner.Email,
		GeneratedAt:     now,
		Window:          w,
		WindowLabel:     w.Label(),
		PeriodStart:     start,
		PeriodEnd:       now,
		DateRangeText:   dateRangeText(start, now),
		TotalRecords:    len(inWindow),
		Averages:        Average(inWindow),
		Statistics:      Statistics(inWindow),
		Insights:        GenerateInsights(inWindow),
		Recommendations: GenerateRecommendations(inWindow),
		Charts:          charts,
		Records:         rows,
	}
}

// CompileSharePreview assembles the public, redacted variant of the report.
func CompileSharePreview(owner Owner, records []models.VitalRecord, w Window, now time.Time) SharePreviewDocument {
	inWindow := FilterByRange(records, w, now)
	start := periodStart(inWindow, w, now)

	return SharePreviewDocument{
		UserName:      owner.Name(),
		UserEmail:     owner.Email,
		GeneratedAt:   now,
		Window:        w,
		WindowLabel:   w.Label(),
		DateRangeText: dateRangeText(start, now),
		TotalRecords:  len(inWindow),
		Averages:      Average(inWindow),
		Insights:      GenerateInsights(inWindow),
		Records:       PreviewRows(inWindow, PreviewRowLimit),
	}
}

// PreviewRows redacts up to limit of the most recent records.
func PreviewRows(records []models.VitalRecord, limit int) []models.PreviewRow {
	recent := MostRecentFirst(records, limit)
	rows := make([]models.PreviewRow, 0, len(recent))
	for _, r := range recent {
		rows = append(rows, models.PreviewRow{
			Timestamp:   r.Timestamp,
			Systolic:    r.Systolic,
			Diastolic:   r.Diastolic,
			HeartRate:   r.HeartRate,
			SpO2:        r.SpO2,
			Temperature: r.Temperature,
		})
	}
	return rows
}

// periodStart is the window start, or the first record for AllTime.
func periodStart(sorted []models.VitalRecord, w Window, now time.Time) time.Time {
	if !w.All() {
		return w.Start(now)
	}
	if len(sorted) > 0 {
		return sorted[0].Timestamp
	}
	return now
}

func dateRangeText(start, end time.Time) string {
	return start.Format(rangeDateLayout) + " - " + end.Format(rangeDateLayout)
}
