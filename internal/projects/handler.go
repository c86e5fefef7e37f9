package projects

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/crewbase/crewbase/internal/authz"
	"github.com/crewbase/crewbase/internal/managers"
	"github.com/crewbase/crewbase/internal/platform/httpx"
	"github.com/crewbase/crewbase/internal/shared"
)

// ProjectService is the service surface the handler depends on.
type ProjectService interface {
	List(ctx context.Context, filters ListFilters) ([]Project, int, error)
	Get(ctx context.Context, id uuid.UUID) (Project, error)
	Create(ctx context.Context, companyID uuid.UUID, req CreateProjectRequest, createdBy int64) (Project, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateProjectRequest, actor int64) (Project, error)
	Delete(ctx context.Context, id uuid.UUID, actor int64) error
	SetActive(ctx context.Context, id uuid.UUID, active bool, actor int64) error
}

// Handler wires project HTTP endpoints.
type Handler struct {
	logger    *slog.Logger
	service   ProjectService
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service ProjectService) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountRoutes registers /projects routes. Instance routes resolve the scope
// chain [project, company] so company owners keep read/update oversight.
// nested callbacks register project-scoped child resources (positions,
// resumes, interviews) inside the {projectID} subrouter.
func (h *Handler) MountRoutes(r chi.Router, mw authz.Middleware, managersHandler *managers.Handler, nested ...func(chi.Router)) {
	r.With(mw.Require(authz.ResourceProject, authz.ActionRead)).Get("/", h.List)

	r.Route("/{projectID}", func(r chi.Router) {
		scoped := func(action authz.Action, strength authz.Strength) func(http.Handler) http.Handler {
			return mw.RequireScoped(authz.ResourceProject, action, authz.ResourceProject, "projectID", strength)
		}
		r.With(scoped(authz.ActionRead, authz.StrengthOwnerOrManager)).Get("/", h.Show)
		r.With(scoped(authz.ActionUpdate, authz.StrengthOwnerOrManager)).Put("/", h.Update)
		r.With(scoped(authz.ActionDelete, authz.StrengthOwner)).Delete("/", h.Delete)
		r.With(scoped(authz.ActionUpdate, authz.StrengthOwner)).Post("/activate", h.setActive(true))
		r.With(scoped(authz.ActionUpdate, authz.StrengthOwner)).Post("/deactivate", h.setActive(false))

		managersHandler.MountRoutes(r, mw, authz.ResourceProject, "projectID")

		for _, mount := range nested {
			mount(r)
		}
	})
}

// MountCreate registers project creation under a company subrouter. Creation
// is gated on project:create and scoped to the parent company.
func (h *Handler) MountCreate(r chi.Router, mw authz.Middleware) {
	r.With(mw.RequireScoped(authz.ResourceProject, authz.ActionCreate, authz.ResourceCompany, "companyID", authz.StrengthOwnerOrManager)).
		Post("/projects", h.Create)
}

// List returns a paged project collection.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters := ListFilters{Search: r.URL.Query().Get("search")}
	if v := r.URL.Query().Get("company_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			httpx.RespondError(w, httpx.Fail(httpx.ErrBadRequest, authz.ReasonInvalidIdentifier))
			return
		}
		filters.CompanyID = &id
	}
	if v := r.URL.Query().Get("is_active"); v != "" {
		active := v == "true"
		filters.IsActive = &active
	}
	filters.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	filters.PerPage, _ = strconv.Atoi(r.URL.Query().Get("per_page"))

	items, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list projects", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Project{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"projects":   items,
		"pagination": shared.NewPagination(filters.Page, filters.PerPage, total),
	})
}

// Show returns one project.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	scope, _ := authz.ScopeFromContext(r.Context())
	project, err := h.service.Get(r.Context(), scope.Target().ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, project)
}

// Create inserts a project under the company resolved by the pipeline.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	scope, _ := authz.ScopeFromContext(r.Context())
	principal, _ := authz.PrincipalFromContext(r.Context())

	var req CreateProjectRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	project, err := h.service.Create(r.Context(), scope.Target().ID, req, principal.UserID)
	if err != nil {
		h.logger.Error("create project", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, project)
}

// Update applies a partial update.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	scope, _ := authz.ScopeFromContext(r.Context())
	principal, _ := authz.PrincipalFromContext(r.Context())

	var req UpdateProjectRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	project, err := h.service.Update(r.Context(), scope.Target().ID, req, principal.UserID)
	if err != nil {
		h.logger.Error("update project", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, project)
}

// Delete soft-deletes the project and cascades its assignments.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, _ := authz.ScopeFromContext(r.Context())
	principal, _ := authz.PrincipalFromContext(r.Context())

	if err := h.service.Delete(r.Context(), scope.Target().ID, principal.UserID); err != nil {
		h.logger.Error("delete project", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, _ := authz.ScopeFromContext(r.Context())
		principal, _ := authz.PrincipalFromContext(r.Context())

		if err := h.service.SetActive(r.Context(), scope.Target().ID, active, principal.UserID); err != nil {
			h.logger.Error("set project active", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
