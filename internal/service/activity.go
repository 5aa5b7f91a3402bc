package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atinyakov/healthmate/internal/models"
)

const (
	// DefaultActivityLimit is used when the caller does not ask for a size.
	DefaultActivityLimit = 10
	// MaxActivityLimit is the largest feed page served.
	MaxActivityLimit = 50
)

// ActivityRepository defines the persistence operations needed by ActivityService.
type ActivityRepository interface {
	PushActivity(ctx context.Context, a models.Activity) error
	RecentActivity(ctx context.Context, owner string, limit int) ([]models.Activity, error)
}

// ActivityService maintains each owner's recent activity feed.
type ActivityService struct {
	repo ActivityRepository
	log  *zap.Logger
	now  func() time.Time
}

// NewActivityService constructs an ActivityService. A nil logger discards output.
func NewActivityService(repo ActivityRepository, log *zap.Logger) *ActivityService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ActivityService{repo: repo, log: log, now: time.Now}
}

// Log appends an entry to owner's feed. Failures are logged and never
// returned, so activity tracking cannot break the operation being tracked.
func (s *ActivityService) Log(ctx context.Context, owner string, typ models.ActivityType, description string) {
	if owner == "" {
		return
	}
	a := models.Activity{
		ID:          uuid.NewString(),
		Owner:       owner,
		Type:        typ,
		Title:       typ.Title(),
		Description: description,
		Timestamp:   s.now().UTC(),
	}
	if err := s.repo.PushActivity(ctx, a); err != nil {
		s.log.Warn("failed to log activity",
			zap.String("owner", owner),
			zap.String("type", string(typ)),
			zap.Error(err),
		)
	}
}

// Recent returns owner's newest entries. limit defaults to
// DefaultActivityLimit and is capped at MaxActivityLimit.
func (s *ActivityService) Recent(ctx context.Context, owner string, limit int) ([]models.Activity, error) {
	if owner == "" {
		return nil, models.ErrNotAuthenticated
	}
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	if limit > MaxActivityLimit {
		limit = MaxActivityLimit
	}
	return s.repo.RecentActivity(ctx, owner, limit)
}
