package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/atinyakov/healthmate/internal/analytics"
	"github.com/atinyakov/healthmate/internal/export"
	"github.com/atinyakov/healthmate/internal/models"
)

// VitalsRepository defines the record store operations needed by VitalsService.
// Every method is scoped to owner.
type VitalsRepository interface {
	InsertVital(ctx context.Context, rec models.VitalRecord) error
	// ListVitals returns all of owner's records in ascending capture order.
	ListVitals(ctx context.Context, owner string) ([]models.VitalRecord, error)
	// ListVitalsBetween returns owner's records captured in [from, to].
	ListVitalsBetween(ctx context.Context, owner string, from, to time.Time) ([]models.VitalRecord, error)
	GetVital(ctx context.Context, owner, id string) (*models.VitalRecord, error)
	UpdateVital(ctx context.Context, owner, id string, patch models.VitalPatch) (*models.VitalRecord, error)
	DeleteVital(ctx context.Context, owner, id string) error
	DeleteAllVitals(ctx context.Context, owner string) (int64, error)
}

// ReportFormat selects the rendering target of an exported report.
type ReportFormat string

const (
	FormatJSON ReportFormat = "json"
	FormatHTML ReportFormat = "html"
	FormatXLSX ReportFormat = "xlsx"
)

// ParseReportFormat validates a format selector. An empty selector is JSON.
func ParseReportFormat(s string) (ReportFormat, error) {
	switch f := ReportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatHTML, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown report format %q", models.ErrInvalidInput, s)
	}
}

// Summary is the dashboard view of an owner's records inside a window.
type Summary struct {
	Window          analytics.Window    `json:"window"`
	WindowLabel     string              `json:"window_label"`
	TotalRecords    int                 `json:"total_records"`
	Averages        *analytics.Averages `json:"averages"`
	Statistics      *analytics.Stats    `json:"statistics"`
	Trend           *analytics.Trend    `json:"trend"`
	Insights        []analytics.Insight `json:"insights"`
	Recommendations []string            `json:"recommendations"`
	Displays        map[string]string   `json:"displays"`
	Latest          *models.VitalRecord `json:"latest"`
}

// Export is a rendered report ready to be written to a response or file.
type Export struct {
	Format      ReportFormat
	ContentType string
	Filename    string
	Body        []byte
}

// VitalsService implements record management and the analytics views over
// an owner's records.
type VitalsService struct {
	repo VitalsRepository
	deps
}

// NewVitalsService constructs a VitalsService over repo.
func NewVitalsService(repo VitalsRepository, opts ...Option) *VitalsService {
	return &VitalsService{repo: repo, deps: newDeps(opts)}
}

// Create validates in and stores it as a new record of owner. A missing
// timestamp defaults to the current time.
func (s *VitalsService) Create(ctx context.Context, owner string, in models.VitalInput) (*models.VitalRecord, error) {
	if owner == "" {
		return nil, models.ErrNotAuthenticated
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	ts := in.Timestamp.Time
	if ts.IsZero() {
		ts = s.now()
	}
	rec := in.Record(owner, ts, s.loc)
	rec.ID = s.newID()

	if err := s.repo.InsertVital(ctx, rec); err != nil {
		return nil, err
	}
	s.metrics.VitalRecorded()
	s.activity.Log(ctx, owner, models.VitalRecorded,
		fmt.Sprintf("BP: %d/%d, HR: %d BPM", rec.Systolic, rec.Diastolic, rec.HeartRate))
	return &rec, nil
}

// List returns owner's records inside w in ascending capture order.
func (s *VitalsService) List(ctx context.Context, owner string, w analytics.Window) ([]models.VitalRecord, error) {
	if owner == "" {
		return nil, models.ErrNotAuthenticated
	}
	now := s.now()
	var (
		records []models.VitalRecord
		err     error
	)
	if w.All() {
		records, err = s.repo.ListVitals(ctx, owner)
	} else {
		records, err = s.repo.ListVitalsBetween(ctx, owner, w.Start(now), now)
	}
	if err != nil {
		return nil, err
	}
	return analytics.FilterByRange(records, w, now), nil
}

// Get returns one of owner's records.
func (s *VitalsService) Get(ctx context.Context, owner, id string) (*models.VitalRecord, error) {
	if owner == "" {
		return nil, models.ErrNotAuthenticated
	}
	return s.repo.GetVital(ctx, owner, id)
}

// Update applies patch to one of owner's records.
func (s *VitalsService) Update(ctx context.Context, owner, id string, patch models.VitalPatch) (*models.VitalRecord, error) {
	if owner == "" {
		return nil, models.ErrNotAuthenticated
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	return s.repo.UpdateVital(ctx, owner, id, patch)
}

// Delete removes one of owner's records.
func (s *VitalsService) Delete(ctx context.Context, owner, id string) error {
	if owner == "" {
		return models.ErrNotAuthenticated
	}
	return s.repo.DeleteVital(ctx, owner, id)
}

// DeleteAll removes every record of owner.
func (s *VitalsService) DeleteAll(ctx context.Context, owner string) (int64, error) {
	if owner == "" {
		return 0, models.ErrNotAuthenticated
	}
	return s.repo.DeleteAllVitals(ctx, owner)
}

// Summary aggregates owner's records inside w. The weekly trend always
// compares the two most recent weeks regardless of w.
func (s *VitalsService) Summary(ctx context.Context, owner string, w analytics.Window) (*Summary, error) {
	if owner == "" {
		return nil, models.ErrNotAuthenticated
	}
	all, err := s.repo.ListVitals(ctx, owner)
	if err != nil {
		return nil, err
	}
	now := s.now()
	inWindow := analytics.FilterByRange(all, w, now)
	avg := analytics.Average(inWindow)

	displays := make(map[string]string, len(analytics.VitalTypes))
	for _, vt := range analytics.VitalTypes {
		displays[string(vt)] = analytics.FormatAverage(avg, vt)
	}

	sum := &Summary{
		Window:          w,
		WindowLabel:     w.Label(),
		TotalRecords:    len(inWindow),
		Averages:        avg,
		Statistics:      analytics.Statistics(inWindow),
		Trend:           analytics.WeeklyTrend(analytics.FilterByRange(all, analytics.AllTime, now), now),
		Insights:        analytics.GenerateInsights(inWindow),
		Recommendations: analytics.GenerateRecommendations(inWindow),
		Displays:        displays,
	}
	if n := len(inWindow); n > 0 {
		latest := inWindow[n-1]
		sum.Latest = &latest
	}
	return sum, nil
}

// Chart builds the chart series of vt over owner's records inside w.
func (s *VitalsService) Chart(ctx context.Context, owner string, w analytics.Window, vt analytics.VitalType, points int) (analytics.ChartSeries, error) {
	records, err := s.List(ctx, owner, w)
	if err != nil {
		return analytics.ChartSeries{}, err
	}
	cs := analytics.BuildChartSeries(records, vt, points)
	s.activity.Log(ctx, owner, models.ChartExported, fmt.Sprintf("%s (%s)", cs.Title, w.Label()))
	return cs, nil
}

// Report compiles the report document of owner over w.
func (s *VitalsService) Report(ctx context.Context, owner string, w analytics.Window) (analytics.ReportDocument, error) {
	if owner == "" {
		return analytics.ReportDocument{}, models.ErrNotAuthenticated
	}
	records, err := s.repo.ListVitals(ctx, owner)
	if err != nil {
		return analytics.ReportDocument{}, err
	}
	return analytics.CompileReport(reportOwner(ctx, s.names, owner), records, w, s.now()), nil
}

// Export compiles owner's report over w and renders it as format.
func (s *VitalsService) Export(ctx context.Context, owner string, w analytics.Window, format ReportFormat) (*Export, error) {
	doc, err := s.Report(ctx, owner, w)
	if err != nil {
		return nil, err
	}

	out := &Export{
		Format:   format,
		Filename: fmt.Sprintf("health-report-%s.%s", doc.GeneratedAt.Format(models.DateLayout), format),
	}
	switch format {
	case FormatHTML:
		out.ContentType = export.HTMLContentType
		out.Body, err = export.RenderHTML(doc)
	case FormatXLSX:
		out.ContentType = export.XLSXContentType
		out.Body, err = export.RenderXLSX(doc)
	case FormatJSON, "":
		out.Format = FormatJSON
		out.ContentType = "application/json"
		out.Filename = fmt.Sprintf("health-report-%s.json", doc.GeneratedAt.Format(models.DateLayout))
		out.Body, err = json.Marshal(doc)
	default:
		return nil, fmt.Errorf("%w: unknown report format %q", models.ErrInvalidInput, format)
	}
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}

	s.metrics.ReportCompiled(string(out.Format))
	s.activity.Log(ctx, owner, models.ReportExported,
		fmt.Sprintf("%s report, %s", strings.ToUpper(string(out.Format)), doc.WindowLabel))
	return out, nil
}

// reportOwner resolves the owner attribution of a report. Lookup failures
// fall back to the login alone.
func reportOwner(ctx context.Context, names DisplayNamer, login string) analytics.Owner {
	name, err := names.DisplayName(ctx, login)
	if err != nil {
		name = ""
	}
	return analytics.Owner{Email: login, DisplayName: name}
}
