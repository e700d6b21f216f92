package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/brightmark-io/brightmark/internal/access"
	"github.com/brightmark-io/brightmark/internal/admin"
	"github.com/brightmark-io/brightmark/internal/auth"
	"github.com/brightmark-io/brightmark/internal/modules"
	"github.com/brightmark-io/brightmark/internal/observability"
	"github.com/brightmark-io/brightmark/internal/orgs"
	"github.com/brightmark-io/brightmark/internal/prompts"
	"github.com/brightmark-io/brightmark/internal/reports"
	"github.com/brightmark-io/brightmark/internal/shared"
	"github.com/brightmark-io/brightmark/internal/sysconfig"
	"github.com/brightmark-io/brightmark/internal/users"
	"github.com/brightmark-io/brightmark/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager

	AuthHandler        *auth.Handler
	PermissionsHandler *access.Handler
	UsersHandler       *users.Handler
	OrgsHandler        *orgs.Handler
	ReportsHandler     *reports.Handler
	ModulesHandler     *modules.Handler
	PromptsHandler     *prompts.Handler
	SysConfigHandler   *sysconfig.Handler
	AdminHandler       *admin.Handler
	JobHandler         *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with Brightmark defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	if params.PermissionsHandler != nil {
		params.PermissionsHandler.MountRoutes(r)
	}
	if params.UsersHandler != nil {
		r.Route("/users", params.UsersHandler.MountRoutes)
	}
	if params.OrgsHandler != nil {
		r.Route("/orgs", params.OrgsHandler.MountRoutes)
	}
	if params.ReportsHandler != nil {
		r.Route("/reports", params.ReportsHandler.MountRoutes)
	}
	if params.ModulesHandler != nil {
		r.Route("/modules", params.ModulesHandler.MountRoutes)
	}
	if params.PromptsHandler != nil {
		r.Route("/prompts", params.PromptsHandler.MountRoutes)
	}
	if params.SysConfigHandler != nil {
		r.Route("/system", params.SysConfigHandler.MountRoutes)
	}
	if params.AdminHandler != nil {
		r.Route("/admin", params.AdminHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
