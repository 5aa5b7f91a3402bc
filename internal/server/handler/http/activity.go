package http

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/healthmate/internal/middleware"
	"github.com/atinyakov/healthmate/internal/models"
	"github.com/atinyakov/healthmate/internal/service"
)

// ActivityService reads an owner's recent activity feed.
type ActivityService interface {
	Recent(ctx context.Context, owner string, limit int) ([]models.Activity, error)
}

// ActivityHandler serves GET /api/activity.
type ActivityHandler struct {
	Service ActivityService
	Log     *zap.Logger
}

// Recent handles GET /api/activity?limit=.
func (h *ActivityHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", service.DefaultActivityLimit)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	items, err := h.Service.Recent(r.Context(), middleware.GetOwnerFromContext(r.Context()), limit)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if items == nil {
		items = []models.Activity{}
	}
	writeJSON(w, http.StatusOK, items)
}
