package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/atinyakov/healthmate/internal/analytics"
	"github.com/atinyakov/healthmate/internal/models"
)

// writeJSON encodes v with status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP status codes. Unexpected errors
// are logged and answered with a generic 500.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, models.ErrNotAuthenticated):
		http.Error(w, "authentication required", http.StatusUnauthorized)
	case errors.Is(err, models.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, models.ErrAlreadyExists):
		http.Error(w, "user already exists", http.StatusConflict)
	case errors.Is(err, models.ErrInvalidInput),
		errors.Is(err, analytics.ErrInvalidWindow),
		errors.Is(err, analytics.ErrUnknownVitalType):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		if log != nil {
			log.Error("request failed", zap.Error(err))
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// windowParam reads the "range" query parameter.
func windowParam(r *http.Request) (analytics.Window, error) {
	return analytics.ParseWindow(r.URL.Query().Get("range"))
}

// intParam reads a non-negative integer query parameter, returning def when
// it is absent.
func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: invalid %s", models.ErrInvalidInput, name)
	}
	return n, nil
}
