package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/healthmate/internal/analytics"
	"github.com/atinyakov/healthmate/internal/middleware"
	"github.com/atinyakov/healthmate/internal/models"
	"github.com/atinyakov/healthmate/internal/service"
)

// VitalsService is the record and analytics API consumed by VitalsHandler.
type VitalsService interface {
	Create(ctx context.Context, owner string, in models.VitalInput) (*models.VitalRecord, error)
	List(ctx context.Context, owner string, w analytics.Window) ([]models.VitalRecord, error)
	Get(ctx context.Context, owner, id string) (*models.VitalRecord, error)
	Update(ctx context.Context, owner, id string, patch models.VitalPatch) (*models.VitalRecord, error)
	Delete(ctx context.Context, owner, id string) error
	DeleteAll(ctx context.Context, owner string) (int64, error)
	Summary(ctx context.Context, owner string, w analytics.Window) (*service.Summary, error)
	Chart(ctx context.Context, owner string, w analytics.Window, vt analytics.VitalType, points int) (analytics.ChartSeries, error)
	Export(ctx context.Context, owner string, w analytics.Window, format service.ReportFormat) (*service.Export, error)
}

// VitalsHandler serves the owner-scoped record, summary, chart and report
// endpoints.
type VitalsHandler struct {
	Service VitalsService
	Log     *zap.Logger
}

// Create handles POST /api/vitals.
func (h *VitalsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.VitalInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	rec, err := h.Service.Create(r.Context(), middleware.GetOwnerFromContext(r.Context()), in)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// List handles GET /api/vitals?range=.
func (h *VitalsHandler) List(w http.ResponseWriter, r *http.Request) {
	win, err := windowParam(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	records, err := h.Service.List(r.Context(), middleware.GetOwnerFromContext(r.Context()), win)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if records == nil {
		records = []models.VitalRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// Get handles GET /api/vitals/{id}.
func (h *VitalsHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Service.Get(r.Context(), middleware.GetOwnerFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Update handles PATCH /api/vitals/{id}.
func (h *VitalsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch models.VitalPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	rec, err := h.Service.Update(r.Context(), middleware.GetOwnerFromContext(r.Context()), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Delete handles DELETE /api/vitals/{id}.
func (h *VitalsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), middleware.GetOwnerFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAll handles DELETE /api/vitals.
func (h *VitalsHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.Service.DeleteAll(r.Context(), middleware.GetOwnerFromContext(r.Context()))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

// Summary handles GET /api/vitals/summary?range=.
func (h *VitalsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	win, err := windowParam(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	sum, err := h.Service.Summary(r.Context(), middleware.GetOwnerFromContext(r.Context()), win)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// Chart handles GET /api/vitals/chart?type=&range=&points=.
func (h *VitalsHandler) Chart(w http.ResponseWriter, r *http.Request) {
	vt, err := analytics.ParseVitalType(r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	win, err := windowParam(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	points, err := intParam(r, "points", analytics.DefaultChartPoints)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	cs, err := h.Service.Chart(r.Context(), middleware.GetOwnerFromContext(r.Context()), win, vt, points)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

// Report handles GET /api/reports?range=&format=. HTML and XLSX bodies are
// sent as attachments.
func (h *VitalsHandler) Report(w http.ResponseWriter, r *http.Request) {
	win, err := windowParam(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	format, err := service.ParseReportFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	out, err := h.Service.Export(r.Context(), middleware.GetOwnerFromContext(r.Context()), win, format)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Body)))
	if out.Format != service.FormatJSON {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.Filename))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Body)
}
