package resumes

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/crewbase/crewbase/internal/authz"
	"github.com/crewbase/crewbase/internal/platform/httpx"
)

// Handler wires resume endpoints inside a project subrouter.
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

// MountRoutes registers resume routes under /projects/{projectID}.
func (h *Handler) MountRoutes(r chi.Router, mw authz.Middleware) {
	scoped := func(action authz.Action, strength authz.Strength) func(http.Handler) http.Handler {
		return mw.RequireScoped(authz.ResourceResume, action, authz.ResourceProject, "projectID", strength)
	}
	r.With(scoped(authz.ActionRead, authz.StrengthOwnerOrManager)).Get("/resumes", h.List)
	r.With(scoped(authz.ActionCreate, authz.StrengthOwnerOrManager)).Post("/resumes", h.Create)
	r.With(scoped(authz.ActionRead, authz.StrengthOwnerOrManager)).Get("/resumes/{resumeID}", h.Show)
	r.With(scoped(authz.ActionUpdate, authz.StrengthOwnerOrManager)).Put("/resumes/{resumeID}", h.Update)
	r.With(scoped(authz.ActionDelete, authz.StrengthOwner)).Delete("/resumes/{resumeID}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	scope, _ := authz.ScopeFromContext(r.Context())
	var positionID *uuid.UUID
	if v := r.URL.Query().Get("position_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			httpx.RespondError(w, httpx.Fail(httpx.ErrBadRequest, authz.ReasonInvalidIdentifier))
			return
		}
		positionID = &id
	}
	items, err := h.service.List(r.Context(), scope.Target().ID, positionID)
	if err != nil {
		h.logger.Error("list resumes", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Resume{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"resumes": items})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	scope, _ := authz.ScopeFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "resumeID"))
	if err != nil {
		httpx.RespondError(w, httpx.Fail(httpx.ErrBadRequest, authz.ReasonInvalidIdentifier))
		return
	}
	resume, err := h.service.Get(r.Context(), scope.Target().ID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, resume)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	scope, _ := authz.ScopeFromContext(r.Context())
	principal, _ := authz.PrincipalFromContext(r.Context())

	var req CreateResumeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	resume, err := h.service.Create(r.Context(), scope.Target().ID, req, principal.UserID)
	if err != nil {
		h.logger.Error("create resume", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, resume)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	scope, _ := authz.ScopeFromContext(r.Context())
	principal, _ := authz.PrincipalFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "resumeID"))
	if err != nil {
		httpx.RespondError(w, httpx.Fail(httpx.ErrBadRequest, authz.ReasonInvalidIdentifier))
		return
	}

	var req UpdateResumeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	resume, err := h.service.Update(r.Context(), scope.Target().ID, id, req, principal.UserID)
	if err != nil {
		h.logger.Error("update resume", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, resume)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, _ := authz.ScopeFromContext(r.Context())
	principal, _ := authz.PrincipalFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "resumeID"))
	if err != nil {
		httpx.RespondError(w, httpx.Fail(httpx.ErrBadRequest, authz.ReasonInvalidIdentifier))
		return
	}

	if err := h.service.Delete(r.Context(), scope.Target().ID, id, principal.UserID); err != nil {
		h.logger.Error("delete resume", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
