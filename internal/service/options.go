package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/atinyakov/healthmate/internal/models"
)

// ActivityLogger records owner activity. Implementations must not fail the
// caller's operation.
type ActivityLogger interface {
	Log(ctx context.Context, owner string, typ models.ActivityType, description string)
}

// DisplayNamer resolves an owner's display name.
type DisplayNamer interface {
	DisplayName(ctx context.Context, login string) (string, error)
}

// Recorder receives domain metrics.
type Recorder interface {
	VitalRecorded()
	ReportCompiled(format string)
	ShareCreated()
	SharedRead(found bool)
}

// Option customizes the collaborators shared by the vitals and share services.
type Option func(*deps)

type deps struct {
	activity ActivityLogger
	names    DisplayNamer
	metrics  Recorder
	now      func() time.Time
	loc      *time.Location
	newID    func() string
}

func newDeps(opts []Option) deps {
	d := deps{
		activity: nopActivity{},
		names:    nopNames{},
		metrics:  nopRecorder{},
		now:      time.Now,
		loc:      time.UTC,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// WithActivity logs owner activity through l.
func WithActivity(l ActivityLogger) Option {
	return func(d *deps) {
		if l != nil {
			d.activity = l
		}
	}
}

// WithDisplayNames resolves report owner names through n.
func WithDisplayNames(n DisplayNamer) Option {
	return func(d *deps) {
		if n != nil {
			d.names = n
		}
	}
}

// WithRecorder reports domain metrics to r.
func WithRecorder(r Recorder) Option {
	return func(d *deps) {
		if r != nil {
			d.metrics = r
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(d *deps) {
		if now != nil {
			d.now = now
		}
	}
}

// WithLocation sets the zone used to derive record calendar dates.
func WithLocation(loc *time.Location) Option {
	return func(d *deps) {
		if loc != nil {
			d.loc = loc
		}
	}
}

// WithIDGenerator replaces uuid.NewString.
func WithIDGenerator(newID func() string) Option {
	return func(d *deps) {
		if newID != nil {
			d.newID = newID
		}
	}
}

type nopActivity struct{}

func (nopActivity) Log(context.Context, string, models.ActivityType, string) {}

type nopNames struct{}

func (nopNames) DisplayName(context.Context, string) (string, error) { return "", nil }

type nopRecorder struct{}

func (nopRecorder) VitalRecorded()        {}
func (nopRecorder) ReportCompiled(string) {}
func (nopRecorder) ShareCreated()         {}
func (nopRecorder) SharedRead(bool)       {}
