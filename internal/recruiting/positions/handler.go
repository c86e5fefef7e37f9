package positions

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/crewbase/crewbase/internal/authz"
	"github.com/crewbase/crewbase/internal/platform/httpx"
)

// Handler wires position endpoints inside a project subrouter.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountRoutes registers position routes under /projects/{projectID}. The
// pipeline scopes every route to the project; deletes require owner.
func (h *Handler) MountRoutes(r chi.Router, mw authz.Middleware) {
	scoped := func(action authz.Action, strength authz.Strength) func(http.Handler) http.Handler {
		return mw.RequireScoped(authz.ResourcePosition, action, authz.ResourceProject, "projectID", strength)
	}
	r.With(scoped(authz.ActionRead, authz.StrengthOwnerOrManager)).Get("/positions", h.List)
	r.With(scoped(authz.ActionCreate, authz.StrengthOwnerOrManager)).Post("/positions", h.Create)
	r.With(scoped(authz.ActionRead, authz.StrengthOwnerOrManager)).Get("/positions/{positionID}", h.Show)
	r.With(scoped(authz.ActionUpdate, authz.StrengthOwnerOrManager)).Put("/positions/{positionID}", h.Update)
	r.With(scoped(authz.ActionDelete, authz.StrengthOwner)).Delete("/positions/{positionID}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	scope, _ := authz.ScopeFromContext(r.Context())
	items, err := h.service.List(r.Context(), scope.Target().ID)
	if err != nil {
		h.logger.Error("list positions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Position{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"positions": items})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	scope, _ := authz.ScopeFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "positionID"))
	if err != nil {
		httpx.RespondError(w, httpx.Fail(httpx.ErrBadRequest, authz.ReasonInvalidIdentifier))
		return
	}
	position, err := h.service.Get(r.Context(), scope.Target().ID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, position)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	scope, _ := authz.ScopeFromContext(r.Context())
	principal, _ := authz.PrincipalFromContext(r.Context())

	var req CreatePositionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	position, err := h.service.Create(r.Context(), scope.Target().ID, req, principal.UserID)
	if err != nil {
		h.logger.Error("create position", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, position)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	scope, _ := authz.ScopeFromContext(r.Context())
	principal, _ := authz.PrincipalFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "positionID"))
	if err != nil {
		httpx.RespondError(w, httpx.Fail(httpx.ErrBadRequest, authz.ReasonInvalidIdentifier))
		return
	}

	var req UpdatePositionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	position, err := h.service.Update(r.Context(), scope.Target().ID, id, req, principal.UserID)
	if err != nil {
		h.logger.Error("update position", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, position)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, _ := authz.ScopeFromContext(r.Context())
	principal, _ := authz.PrincipalFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "positionID"))
	if err != nil {
		httpx.RespondError(w, httpx.Fail(httpx.ErrBadRequest, authz.ReasonInvalidIdentifier))
		return
	}

	if err := h.service.Delete(r.Context(), scope.Target().ID, id, principal.UserID); err != nil {
		h.logger.Error("delete position", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
