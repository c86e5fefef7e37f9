package companies

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

// CompanyService is the service surface the handler depends on.
type CompanyService interface {
	List(ctx context.Context, filters ListFilters) ([]Company, int, error)
	Get(ctx context.Context, id uuid.UUID) (Company, error)
	Create(ctx context.Context, req CreateCompanyRequest, createdBy int64) (Company, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateCompanyRequest, actor int64) (Company, error)
	Delete(ctx context.Context, id uuid.UUID, actor int64) error
	SetActive(ctx context.Context, id uuid.UUID, active bool, actor int64) error
}

// Handler wires company HTTP endpoints.
type Handler struct {
	logger    *slog.Logger
	service   CompanyService
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service CompanyService) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountRoutes registers company routes. Collection routes pass the
// role/permission gate only; instance routes run the full pipeline. nested
// callbacks register company-scoped child routes (project creation) inside
// the {companyID} subrouter.
func (h *Handler) MountRoutes(r chi.Router, mw authz.Middleware, managersHandler *managers.Handler, nested ...func(chi.Router)) {
	r.With(mw.Require(authz.ResourceCompany, authz.ActionRead)).Get("/", h.List)
	r.With(mw.Require(authz.ResourceCompany, authz.ActionCreate)).Post("/", h.Create)

	r.Route("/{companyID}", func(r chi.Router) {
		scoped := func(action authz.Action, strength authz.Strength) func(http.Handler) http.Handler {
			return mw.RequireScoped(authz.ResourceCompany, action, authz.ResourceCompany, "companyID", strength)
		}
		r.With(scoped(authz.ActionRead, authz.StrengthOwnerOrManager)).Get("/", h.Show)
		r.With(scoped(authz.ActionUpdate, authz.StrengthOwnerOrManager)).Put("/", h.Update)
		r.With(scoped(authz.ActionDelete, authz.StrengthOwner)).Delete("/", h.Delete)
		r.With(scoped(authz.ActionUpdate, authz.StrengthOwner)).Post("/activate", h.setActive(true))
		r.With(scoped(authz.ActionUpdate, authz.StrengthOwner)).Post("/deactivate", h.setActive(false))

		managersHandler.MountRoutes(r, mw, authz.ResourceCompany, "companyID")

		for _, mount := range nested {
			mount(r)
		}
	})
}

// List returns a paged company collection.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters := ListFilters{Search: r.URL.Query().Get("search")}
	if v := r.URL.Query().Get("is_active"); v != "" {
		active := v == "true"
		filters.IsActive = &active
	}
	filters.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	filters.PerPage, _ = strconv.Atoi(r.URL.Query().Get("per_page"))

	items, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list companies", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Company{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"companies":  items,
		"pagination": shared.NewPagination(filters.Page, filters.PerPage, total),
	})
}

// Show returns one company. The pipeline already loaded it into the scope
// chain, so the full row fetch is the only remaining round trip.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	scope, _ := authz.ScopeFromContext(r.Context())
	company, err := h.service.Get(r.Context(), scope.Target().ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, company)
}

// Create inserts a company; the caller becomes its first owner.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	principal, _ := authz.PrincipalFromContext(r.Context())

	var req CreateCompanyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	company, err := h.service.Create(r.Context(), req, principal.UserID)
	if err != nil {
		h.logger.Error("create company", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, company)
}

// Update applies a partial update.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	scope, _ := authz.ScopeFromContext(r.Context())
	principal, _ := authz.PrincipalFromContext(r.Context())

	var req UpdateCompanyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	company, err := h.service.Update(r.Context(), scope.Target().ID, req, principal.UserID)
	if err != nil {
		h.logger.Error("update company", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, company)
}

// Delete soft-deletes the company and cascades its assignments.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, _ := authz.ScopeFromContext(r.Context())
	principal, _ := authz.PrincipalFromContext(r.Context())

	if err := h.service.Delete(r.Context(), scope.Target().ID, principal.UserID); err != nil {
		h.logger.Error("delete company", slog.Any("error", err))
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
			h.logger.Error("set company active", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
