package interviews

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/crewbase/crewbase/internal/authz"
	"github.com/crewbase/crewbase/internal/platform/httpx"
)

// Handler wires interview endpoints inside a project subrouter.
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

// MountRoutes registers interview routes under /projects/{projectID}.
func (h *Handler) MountRoutes(r chi.Router, mw authz.Middleware) {
	scoped := func(action authz.Action, strength authz.Strength) func(http.Handler) http.Handler {
		return mw.RequireScoped(authz.ResourceInterview, action, authz.ResourceProject, "projectID", strength)
	}
	r.With(scoped(authz.ActionRead, authz.StrengthOwnerOrManager)).Get("/interviews", h.List)
	r.With(scoped(authz.ActionCreate, authz.StrengthOwnerOrManager)).Post("/interviews", h.Create)
	r.With(scoped(authz.ActionRead, authz.StrengthOwnerOrManager)).Get("/interviews/{interviewID}", h.Show)
	r.With(scoped(authz.ActionUpdate, authz.StrengthOwnerOrManager)).Put("/interviews/{interviewID}", h.Update)
	r.With(scoped(authz.ActionDelete, authz.StrengthOwner)).Delete("/interviews/{interviewID}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	scope, _ := authz.ScopeFromContext(r.Context())
	var resumeID *uuid.UUID
	if v := r.URL.Query().Get("resume_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			httpx.RespondError(w, httpx.Fail(httpx.ErrBadRequest, authz.ReasonInvalidIdentifier))
			return
		}
		resumeID = &id
	}
	items, err := h.service.List(r.Context(), scope.Target().ID, resumeID)
	if err != nil {
		h.logger.Error("list interviews", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Interview{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"interviews": items})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	scope, _ := authz.ScopeFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "interviewID"))
	if err != nil {
		httpx.RespondError(w, httpx.Fail(httpx.ErrBadRequest, authz.ReasonInvalidIdentifier))
		return
	}
	interview, err := h.service.Get(r.Context(), scope.Target().ID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, interview)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	scope, _ := authz.ScopeFromContext(r.Context())
	principal, _ := authz.PrincipalFromContext(r.Context())

	var req CreateInterviewRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	interview, err := h.service.Create(r.Context(), scope.Target().ID, req, principal.UserID)
	if err != nil {
		h.logger.Error("create interview", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, interview)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	scope, _ := authz.ScopeFromContext(r.Context())
	principal, _ := authz.PrincipalFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "interviewID"))
	if err != nil {
		httpx.RespondError(w, httpx.Fail(httpx.ErrBadRequest, authz.ReasonInvalidIdentifier))
		return
	}

	var req UpdateInterviewRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	interview, err := h.service.Update(r.Context(), scope.Target().ID, id, req, principal.UserID)
	if err != nil {
		h.logger.Error("update interview", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, interview)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, _ := authz.ScopeFromContext(r.Context())
	principal, _ := authz.PrincipalFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "interviewID"))
	if err != nil {
		httpx.RespondError(w, httpx.Fail(httpx.ErrBadRequest, authz.ReasonInvalidIdentifier))
		return
	}

	if err := h.service.Delete(r.Context(), scope.Target().ID, id, principal.UserID); err != nil {
		h.logger.Error("delete interview", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
