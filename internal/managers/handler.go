package managers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/crewbase/crewbase/internal/authz"
	"github.com/crewbase/crewbase/internal/platform/httpx"
)

// Handler wires assignment endpoints under company and project routes.
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

type assignForm struct {
	UserID int64  `json:"user_id" validate:"required,gt=0"`
	Type   string `json:"type" validate:"required,oneof=owner manager"`
}

// MountRoutes registers manager routes on an entity subrouter. The scope
// pipeline runs ahead of each handler: reads accept owner_or_manager,
// mutations require owner strength on the entity itself.
func (h *Handler) MountRoutes(r chi.Router, mw authz.Middleware, entityType authz.ResourceType, param string) {
	r.With(mw.RequireScoped(authz.ResourceManager, authz.ActionRead, entityType, param, authz.StrengthOwnerOrManager)).
		Get("/managers", h.list(entityType))
	r.With(mw.RequireScoped(authz.ResourceManager, authz.ActionCreate, entityType, param, authz.StrengthOwner)).
		Post("/managers", h.assign(entityType))
	r.With(mw.RequireScoped(authz.ResourceManager, authz.ActionDelete, entityType, param, authz.StrengthOwner)).
		Delete("/managers/{userID}", h.unassign(entityType))
}

func (h *Handler) list(entityType authz.ResourceType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := authz.ScopeFromContext(r.Context())
		if !ok {
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			return
		}
		assignments, err := h.service.List(r.Context(), entityType, scope.Target().ID)
		if err != nil {
			h.logger.Error("list assignments", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		if assignments == nil {
			assignments = []Assignment{}
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"managers": assignments})
	}
}

func (h *Handler) assign(entityType authz.ResourceType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, _ := authz.ScopeFromContext(r.Context())
		principal, _ := authz.PrincipalFromContext(r.Context())

		var form assignForm
		if err := httpx.DecodeJSON(r, &form); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
			return
		}
		if err := h.validator.Struct(form); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}

		assignment, err := h.service.Assign(r.Context(), entityType, scope.Target().ID, form.UserID, authz.AssignmentType(form.Type), principal.UserID)
		if err != nil {
			h.logger.Warn("assign manager", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusCreated, assignment)
	}
}

func (h *Handler) unassign(entityType authz.ResourceType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, _ := authz.ScopeFromContext(r.Context())
		principal, _ := authz.PrincipalFromContext(r.Context())

		userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
		if err != nil || userID <= 0 {
			httpx.RespondError(w, httpx.Fail(httpx.ErrBadRequest, authz.ReasonInvalidIdentifier))
			return
		}

		if err := h.service.Unassign(r.Context(), entityType, scope.Target().ID, userID, principal.UserID); err != nil {
			h.logger.Warn("unassign manager", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
