package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/healthmate/internal/analytics"
	"github.com/atinyakov/healthmate/internal/middleware"
	"github.com/atinyakov/healthmate/internal/models"
	"github.com/atinyakov/healthmate/internal/service"
)

// ShareService publishes and resolves shared reports.
type ShareService interface {
	Create(ctx context.Context, owner string, w analytics.Window) (*service.SharedLink, error)
	Get(ctx context.Context, id string) (*models.SharedReport, error)
	List(ctx context.Context, owner string) ([]models.SharedReport, error)
}

// ShareHandler serves share publication for owners and the public
// shared-report endpoint.
type ShareHandler struct {
	Service ShareService
	Log     *zap.Logger
}

// Create handles POST /api/shares?range=.
func (h *ShareHandler) Create(w http.ResponseWriter, r *http.Request) {
	win, err := windowParam(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	link, err := h.Service.Create(r.Context(), middleware.GetOwnerFromContext(r.Context()), win)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

// List handles GET /api/shares.
func (h *ShareHandler) List(w http.ResponseWriter, r *http.Request) {
	reps, err := h.Service.List(r.Context(), middleware.GetOwnerFromContext(r.Context()))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if reps == nil {
		reps = []models.SharedReport{}
	}
	writeJSON(w, http.StatusOK, reps)
}

// Shared handles the public GET /api/shared/{id}?format=json|html. Unknown
// and expired reports are both answered with 404.
func (h *ShareHandler) Shared(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format != "" && format != "json" && format != "html" {
		http.Error(w, "unknown format", http.StatusBadRequest)
		return
	}

	rep, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	if format == "html" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(rep.HTMLContent))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
