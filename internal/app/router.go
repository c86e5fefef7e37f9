package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/crewbase/crewbase/internal/auth"
	"github.com/crewbase/crewbase/internal/authz"
	"github.com/crewbase/crewbase/internal/companies"
	"github.com/crewbase/crewbase/internal/managers"
	"github.com/crewbase/crewbase/internal/observability"
	"github.com/crewbase/crewbase/internal/projects"
	"github.com/crewbase/crewbase/internal/recruiting/interviews"
	"github.com/crewbase/crewbase/internal/recruiting/positions"
	"github.com/crewbase/crewbase/internal/recruiting/resumes"
	"github.com/crewbase/crewbase/internal/roles"
	"github.com/crewbase/crewbase/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger  *slog.Logger
	Config  *Config
	Tokens  *auth.TokenStore
	Authz   authz.Middleware
	Metrics *observability.Metrics

	AuthHandler       *auth.Handler
	CompaniesHandler  *companies.Handler
	ProjectsHandler   *projects.Handler
	ManagersHandler   *managers.Handler
	PositionsHandler  *positions.Handler
	ResumesHandler    *resumes.Handler
	InterviewsHandler *interviews.Handler
	RolesHandler      *roles.Handler
	UsersHandler      *users.Handler
}

// NewRouter constructs the chi.Router with crewbase defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Tokens:  params.Tokens,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	params.AuthHandler.MountRoutes(r)

	r.Route("/companies", func(r chi.Router) {
		params.CompaniesHandler.MountRoutes(r, params.Authz, params.ManagersHandler, func(r chi.Router) {
			params.ProjectsHandler.MountCreate(r, params.Authz)
		})
	})

	r.Route("/projects", func(r chi.Router) {
		params.ProjectsHandler.MountRoutes(r, params.Authz, params.ManagersHandler,
			func(r chi.Router) { params.PositionsHandler.MountRoutes(r, params.Authz) },
			func(r chi.Router) { params.ResumesHandler.MountRoutes(r, params.Authz) },
			func(r chi.Router) { params.InterviewsHandler.MountRoutes(r, params.Authz) },
		)
	})

	params.RolesHandler.MountRoutes(r, params.Authz)
	params.UsersHandler.MountRoutes(r, params.Authz)

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
