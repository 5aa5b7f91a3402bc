// Package client is the HealthMate API client used by the command-line tool.
// Requests go through resty and a circuit breaker that opens after repeated
// transport or server failures.
package client

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"

	"github.com/atinyakov/healthmate/internal/analytics"
	"github.com/atinyakov/healthmate/internal/models"
)

// Config configures New.
type Config struct {
	BaseURL string
	TLS     *tls.Config
	// Token is sent as a bearer token when set.
	Token   string
	Timeout time.Duration
	// Breaker overrides the circuit breaker settings. Name and IsSuccessful
	// are always set by New.
	Breaker gobreaker.Settings
}

// Credentials is returned by Register and Login.
type Credentials struct {
	User      string     `json:"user"`
	Cert      string     `json:"cert,omitempty"`
	Key       string     `json:"key,omitempty"`
	Token     string     `json:"token,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Summary mirrors the dashboard payload of GET /api/vitals/summary.
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

// SharedLink is returned by CreateShare.
type SharedLink struct {
	Report *models.SharedReport `json:"report"`
	URL    string               `json:"url"`
}

// Document is a rendered report or shared page.
type Document struct {
	ContentType string
	Filename    string
	Body        []byte
}

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Unwrap maps statuses onto the domain sentinels so callers can use errors.Is.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return models.ErrNotAuthenticated
	case http.StatusNotFound:
		return models.ErrNotFound
	case http.StatusBadRequest:
		return models.ErrInvalidInput
	}
	return nil
}

// Client talks to one HealthMate server.
type Client struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker[*resty.Response]
}

// New builds a Client for cfg.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	rc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Accept", "application/json")
	if cfg.TLS != nil {
		rc.SetTLSClientConfig(cfg.TLS)
	}
	if cfg.Token != "" {
		rc.SetAuthToken(cfg.Token)
	}

	st := cfg.Breaker
	st.Name = "healthmate-api"
	if st.Timeout == 0 {
		st.Timeout = 30 * time.Second
	}
	if st.ReadyToTrip == nil {
		st.ReadyToTrip = func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 5 }
	}
	// Client errors are the caller's fault and must not open the breaker.
	st.IsSuccessful = func(err error) bool {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return apiErr.Status < http.StatusInternalServerError
		}
		return err == nil
	}

	return &Client{http: rc, breaker: gobreaker.NewCircuitBreaker[*resty.Response](st)}
}

// State reports the circuit breaker state.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

// do executes prepare's request through the breaker. Non-2xx responses are
// returned as *APIError.
func (c *Client) do(ctx context.Context, method, path string, prepare func(*resty.Request)) (*resty.Response, error) {
	return c.breaker.Execute(func() (*resty.Response, error) {
		req := c.http.R().SetContext(ctx)
		if prepare != nil {
			prepare(req)
		}
		resp, err := req.Execute(method, path)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", method, path, err)
		}
		if resp.IsError() {
			return resp, &APIError{Status: resp.StatusCode(), Message: strings.TrimSpace(resp.String())}
		}
		return resp, nil
	})
}

func jsonBody(body any) func(*resty.Request) {
	return func(r *resty.Request) { r.SetHeader("Content-Type", "application/json").SetBody(body) }
}

func query(kv ...string) func(*resty.Request) {
	return func(r *resty.Request) {
		for i := 0; i+1 < len(kv); i += 2 {
			if kv[i+1] != "" {
				r.SetQueryParam(kv[i], kv[i+1])
			}
		}
	}
}

func withResult(result any, prepare func(*resty.Request)) func(*resty.Request) {
	return func(r *resty.Request) {
		if prepare != nil {
			prepare(r)
		}
		r.SetResult(result)
	}
}

// Register creates the account login and returns its credentials.
func (c *Client) Register(ctx context.Context, login, displayName string) (*Credentials, error) {
	var out Credentials
	body := map[string]string{"login": login, "display_name": displayName}
	if _, err := c.do(ctx, http.MethodPost, "/api/register", withResult(&out, jsonBody(body))); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates with the configured client certificate.
func (c *Client) Login(ctx context.Context) (*Credentials, error) {
	var out Credentials
	if _, err := c.do(ctx, http.MethodPost, "/api/login", withResult(&out, nil)); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateVital records a measurement.
func (c *Client) CreateVital(ctx context.Context, in models.VitalInput) (*models.VitalRecord, error) {
	var out models.VitalRecord
	if _, err := c.do(ctx, http.MethodPost, "/api/vitals", withResult(&out, jsonBody(in))); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListVitals returns the records inside window ("" or "all" for every record).
func (c *Client) ListVitals(ctx context.Context, window string) ([]models.VitalRecord, error) {
	var out []models.VitalRecord
	if _, err := c.do(ctx, http.MethodGet, "/api/vitals", withResult(&out, query("range", window))); err != nil {
		return nil, err
	}
	return out, nil
}

// GetVital returns one record.
func (c *Client) GetVital(ctx context.Context, id string) (*models.VitalRecord, error) {
	var out models.VitalRecord
	if _, err := c.do(ctx, http.MethodGet, "/api/vitals/"+id, withResult(&out, nil)); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateVital applies patch to one record.
func (c *Client) UpdateVital(ctx context.Context, id string, patch models.VitalPatch) (*models.VitalRecord, error) {
	var out models.VitalRecord
	if _, err := c.do(ctx, http.MethodPatch, "/api/vitals/"+id, withResult(&out, jsonBody(patch))); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteVital removes one record.
func (c *Client) DeleteVital(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/vitals/"+id, nil)
	return err
}

// DeleteAllVitals removes every record and returns how many were deleted.
func (c *Client) DeleteAllVitals(ctx context.Context) (int64, error) {
	var out struct {
		Deleted int64 `json:"deleted"`
	}
	if _, err := c.do(ctx, http.MethodDelete, "/api/vitals", withResult(&out, nil)); err != nil {
		return 0, err
	}
	return out.Deleted, nil
}

// Summary returns the dashboard summary over window.
func (c *Client) Summary(ctx context.Context, window string) (*Summary, error) {
	var out Summary
	if _, err := c.do(ctx, http.MethodGet, "/api/vitals/summary", withResult(&out, query("range", window))); err != nil {
		return nil, err
	}
	return &out, nil
}

// Chart returns the chart series of vitalType over window. points <= 0
// uses the server default.
func (c *Client) Chart(ctx context.Context, vitalType, window string, points int) (*analytics.ChartSeries, error) {
	var out analytics.ChartSeries
	p := ""
	if points > 0 {
		p = strconv.Itoa(points)
	}
	if _, err := c.do(ctx, http.MethodGet, "/api/vitals/chart",
		withResult(&out, query("type", vitalType, "range", window, "points", p))); err != nil {
		return nil, err
	}
	return &out, nil
}

// Report downloads the report over window rendered as format.
func (c *Client) Report(ctx context.Context, window, format string) (*Document, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/reports", query("range", window, "format", format))
	if err != nil {
		return nil, err
	}
	return document(resp), nil
}

// CreateShare publishes a shared report over window.
func (c *Client) CreateShare(ctx context.Context, window string) (*SharedLink, error) {
	var out SharedLink
	if _, err := c.do(ctx, http.MethodPost, "/api/shares", withResult(&out, query("range", window))); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListShares returns the caller's shared reports, newest first.
func (c *Client) ListShares(ctx context.Context) ([]models.SharedReport, error) {
	var out []models.SharedReport
	if _, err := c.do(ctx, http.MethodGet, "/api/shares", withResult(&out, nil)); err != nil {
		return nil, err
	}
	return out, nil
}

// Shared fetches a public shared report as "json" or "html".
func (c *Client) Shared(ctx context.Context, id, format string) (*Document, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/shared/"+id, query("format", format))
	if err != nil {
		return nil, err
	}
	return document(resp), nil
}

// Activity returns up to limit recent activity entries.
func (c *Client) Activity(ctx context.Context, limit int) ([]models.Activity, error) {
	var out []models.Activity
	l := ""
	if limit > 0 {
		l = strconv.Itoa(limit)
	}
	if _, err := c.do(ctx, http.MethodGet, "/api/activity", withResult(&out, query("limit", l))); err != nil {
		return nil, err
	}
	return out, nil
}

func document(resp *resty.Response) *Document {
	doc := &Document{
		ContentType: resp.Header().Get("Content-Type"),
		Body:        resp.Body(),
	}
	if cd := resp.Header().Get("Content-Disposition"); cd != "" {
		if _, name, ok := strings.Cut(cd, "filename="); ok {
			doc.Filename = strings.Trim(name, `"`)
		}
	}
	return doc
}
