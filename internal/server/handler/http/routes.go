package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atinyakov/healthmate/internal/metrics"
	"github.com/atinyakov/healthmate/internal/middleware"
)

// Handlers groups the endpoint handlers mounted by NewRouter.
type Handlers struct {
	Auth     *AuthHandler
	Vitals   *VitalsHandler
	Shares   *ShareHandler
	Activity *ActivityHandler
}

// RouterDeps carries the cross-cutting collaborators of the router.
type RouterDeps struct {
	// Tokens verifies bearer tokens. Nil accepts client certificates only.
	Tokens middleware.TokenVerifier
	// SharedLimiter throttles the public shared-report endpoint. Optional.
	SharedLimiter *middleware.RateLimiter
	// Metrics enables request metrics and GET /metrics. Optional.
	Metrics *metrics.Collector
	Logger  *zap.Logger
}

// NewRouter constructs the HTTP handler of the HealthMate API.
//
// Routes:
//
//	POST   /api/register          → Auth.Register (public)
//	POST   /api/login             → Auth.Login (public, client certificate)
//	GET    /api/shared/{id}       → Shares.Shared (public, rate limited)
//	GET    /metrics               → Prometheus exposition (public)
//	POST   /api/vitals            → Vitals.Create
//	GET    /api/vitals            → Vitals.List
//	DELETE /api/vitals            → Vitals.DeleteAll
//	GET    /api/vitals/summary    → Vitals.Summary
//	GET    /api/vitals/chart      → Vitals.Chart
//	GET    /api/vitals/{id}       → Vitals.Get
//	PATCH  /api/vitals/{id}       → Vitals.Update
//	DELETE /api/vitals/{id}       → Vitals.Delete
//	GET    /api/reports           → Vitals.Report
//	POST   /api/shares            → Shares.Create
//	GET    /api/shares            → Shares.List
//	GET    /api/activity          → Activity.Recent
//
// Every route outside the public ones requires an owner, resolved by
// OwnerAuth from the client certificate or a bearer token.
func NewRouter(h Handlers, deps RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}
	r.Use(middleware.WithRequestLogging(logger))

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		// Only allow requests with Content-Type: application/json
		r.Use(chiMiddleware.AllowContentType("application/json"))

		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)

		r.Group(func(r chi.Router) {
			if deps.SharedLimiter != nil {
				r.Use(deps.SharedLimiter.Handler)
			}
			r.Get("/shared/{id}", h.Shares.Shared)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.OwnerAuth(deps.Tokens))

			r.Route("/vitals", func(r chi.Router) {
				r.Post("/", h.Vitals.Create)
				r.Get("/", h.Vitals.List)
				r.Delete("/", h.Vitals.DeleteAll)
				r.Get("/summary", h.Vitals.Summary)
				r.Get("/chart", h.Vitals.Chart)
				r.Get("/{id}", h.Vitals.Get)
				r.Patch("/{id}", h.Vitals.Update)
				r.Delete("/{id}", h.Vitals.Delete)
			})
			r.Get("/reports", h.Vitals.Report)
			r.Post("/shares", h.Shares.Create)
			r.Get("/shares", h.Shares.List)
			r.Get("/activity", h.Activity.Recent)
		})
	})

	return r
}
