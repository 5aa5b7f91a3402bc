package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atinyakov/healthmate/internal/analytics"
	"github.com/atinyakov/healthmate/internal/export"
	"github.com/atinyakov/healthmate/internal/models"
)

// ShareRepository defines the persistence operations needed by ShareService.
type ShareRepository interface {
	InsertShare(ctx context.Context, rep models.SharedReport) error
	// GetShare returns models.ErrNotFound for unknown ids. Expiry is not checked.
	GetShare(ctx context.Context, id string) (*models.SharedReport, error)
	ListShares(ctx context.Context, owner string) ([]models.SharedReport, error)
}

// VitalsLister loads every record of an owner in ascending capture order.
type VitalsLister interface {
	ListVitals(ctx context.Context, owner string) ([]models.VitalRecord, error)
}

// SharedLink is a published report together with its public URL.
type SharedLink struct {
	Report *models.SharedReport `json:"report"`
	URL    string               `json:"url"`
}

// ShareService publishes time-limited report snapshots.
type ShareService struct {
	vitals  VitalsLister
	repo    ShareRepository
	baseURL string
	deps
}

// NewShareService constructs a ShareService. Share URLs are built on baseURL.
func NewShareService(vitals VitalsLister, repo ShareRepository, baseURL string, opts ...Option) *ShareService {
	return &ShareService{
		vitals:  vitals,
		repo:    repo,
		baseURL: strings.TrimRight(baseURL, "/"),
		deps:    newDeps(opts),
	}
}

// URL returns the public address of the shared report id.
func (s *ShareService) URL(id string) string {
	return s.baseURL + "/shared-report/" + id
}

// Create compiles owner's redacted report over w and publishes it for
// models.ShareTTL.
func (s *ShareService) Create(ctx context.Context, owner string, w analytics.Window) (*SharedLink, error) {
	if owner == "" {
		return nil, models.ErrNotAuthenticated
	}
	records, err := s.vitals.ListVitals(ctx, owner)
	if err != nil {
		return nil, err
	}

	now := s.now()
	doc := analytics.CompileSharePreview(reportOwner(ctx, s.names, owner), records, w, now)
	html, err := export.RenderPreviewHTML(doc)
	if err != nil {
		return nil, fmt.Errorf("render shared report: %w", err)
	}

	rep := &models.SharedReport{
		ID:           s.newID(),
		Owner:        owner,
		UserEmail:    doc.UserEmail,
		UserName:     doc.UserName,
		WindowDays:   w.Days,
		TotalRecords: doc.TotalRecords,
		CreatedAt:    now,
		ExpiresAt:    now.Add(models.ShareTTL),
		HTMLContent:  string(html),
		Preview:      doc.Records,
	}
	if err := s.repo.InsertShare(ctx, *rep); err != nil {
		return nil, err
	}

	s.metrics.ShareCreated()
	s.activity.Log(ctx, owner, models.ShareCreated, fmt.Sprintf("%s report link", w.Label()))
	return &SharedLink{Report: rep, URL: s.URL(rep.ID)}, nil
}

// Get returns a readable shared report. Unknown and expired reports are
// both reported as models.ErrNotFound.
func (s *ShareService) Get(ctx context.Context, id string) (*models.SharedReport, error) {
	if strings.TrimSpace(id) == "" {
		s.metrics.SharedRead(false)
		return nil, models.ErrNotFound
	}
	rep, err := s.repo.GetShare(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		s.metrics.SharedRead(false)
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if rep.Expired(s.now()) {
		s.metrics.SharedRead(false)
		return nil, models.ErrNotFound
	}
	s.metrics.SharedRead(true)
	return rep, nil
}

// List returns the metadata of owner's shared reports, newest first.
func (s *ShareService) List(ctx context.Context, owner string) ([]models.SharedReport, error) {
	if owner == "" {
		return nil, models.ErrNotAuthenticated
	}
	return s.repo.ListShares(ctx, owner)
}
