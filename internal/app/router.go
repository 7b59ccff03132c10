package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/gewog/AccessGuard/internal/accounts"
	"github.com/gewog/AccessGuard/internal/audit"
	"github.com/gewog/AccessGuard/internal/resources"
	"github.com/gewog/AccessGuard/internal/roles"
	"github.com/gewog/AccessGuard/internal/rules"
	"github.com/gewog/AccessGuard/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	AccountsHandler  *accounts.Handler
	RolesHandler     *roles.Handler
	ResourcesHandler *resources.Handler
	RulesHandler     *rules.Handler
	AuditHandler     *audit.Handler
	JobHandler       *jobs.Handler
}

// NewRouter constructs the chi.Router with AccessGuard defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", func(r chi.Router) {
		r.Use(AuthRateLimiter())
		params.AccountsHandler.MountAuthRoutes(r)
	})
	r.Route("/accounts", params.AccountsHandler.MountProfileRoutes)
	if params.RolesHandler != nil {
		r.Route("/roles", params.RolesHandler.MountRoutes)
	}
	if params.ResourcesHandler != nil {
		r.Route("/resources", params.ResourcesHandler.MountRoutes)
	}
	if params.RulesHandler != nil {
		r.Route("/rules", params.RulesHandler.MountRoutes)
	}
	if params.AuditHandler != nil {
		r.Route("/audit", params.AuditHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}
