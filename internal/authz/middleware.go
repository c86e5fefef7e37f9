package authz

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/crewbase/crewbase/internal/platform/httpx"
)

// DecisionRecorder receives the terminal outcome of each pipeline run.
type DecisionRecorder interface {
	RecordAuthzDecision(resource, outcome, reason string)
}

// Middleware wires the authorization pipeline in front of HTTP handlers.
// Require runs the role/permission gate alone; RequireScoped runs the full
// gate → scope loader → ownership evaluator chain.
type Middleware struct {
	Catalog   *Catalog
	Scopes    *ScopeLoader
	Evaluator *Evaluator
	Logger    *slog.Logger
	Metrics   DecisionRecorder
}

// Require gates a collection-level route: the principal's role must grant
// (resource, action). No resource is loaded, so existence never leaks to
// unpermitted roles.
func (m Middleware) Require(resource ResourceType, action Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				m.deny(w, resource, httpx.Fail(httpx.ErrUnauthenticated, ReasonMissingToken))
				return
			}
			if err := m.gate(r.Context(), principal, resource, action); err != nil {
				m.deny(w, resource, err)
				return
			}
			m.record(resource, "allow", "")
			next.ServeHTTP(w, r)
		})
	}
}

// RequireScoped guards an instance-level route. scope names the resource
// kind the identifier in the route parameter refers to (company or project);
// strength is the assignment strength the action requires. The loaded scope
// chain is placed in the request context for the business handler.
func (m Middleware) RequireScoped(resource ResourceType, action Action, scope ResourceType, param string, strength Strength) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			principal, ok := PrincipalFromContext(ctx)
			if !ok {
				m.deny(w, resource, httpx.Fail(httpx.ErrUnauthenticated, ReasonMissingToken))
				return
			}

			// Stage 1: role/permission gate, before any resource load.
			if err := m.gate(ctx, principal, resource, action); err != nil {
				m.deny(w, resource, err)
				return
			}

			// Stage 2: scope chain resolution.
			chain, err := m.Scopes.Load(ctx, scope, chi.URLParam(r, param))
			if err != nil {
				m.deny(w, resource, m.terminal(ctx, err))
				return
			}

			// Stage 3: ownership evaluation.
			wildcard, err := m.Catalog.HasWildcard(ctx, principal.RoleID, resource)
			if err != nil {
				m.deny(w, resource, m.terminal(ctx, err))
				return
			}
			decision, err := m.Evaluator.Evaluate(ctx, principal, chain, strength, wildcard)
			if err != nil {
				m.deny(w, resource, m.terminal(ctx, err))
				return
			}
			if !decision.Allowed {
				m.deny(w, resource, httpx.Fail(httpx.ErrForbidden, decision.Reason))
				return
			}

			m.record(resource, "allow", "")
			next.ServeHTTP(w, r.WithContext(ContextWithScope(ctx, chain)))
		})
	}
}

func (m Middleware) gate(ctx context.Context, principal Principal, resource ResourceType, action Action) error {
	granted, err := m.Catalog.HasPermission(ctx, principal.RoleID, resource, action)
	if err != nil {
		return m.terminal(ctx, err)
	}
	if !granted {
		return httpx.Fail(httpx.ErrForbidden, ReasonRolePermissionDenied)
	}
	return nil
}

// terminal normalizes stage failures. Deadline expiry mid-pipeline discards
// the partial decision; other store failures surface as unavailability.
// Errors already carrying a reason code pass through unchanged.
func (m Middleware) terminal(ctx context.Context, err error) error {
	var re *httpx.ReasonError
	if errors.As(err, &re) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
		return httpx.Fail(httpx.ErrUnavailable, ReasonUpstreamTimeout)
	}
	return httpx.Failf(httpx.ErrUnavailable, "", err.Error())
}

func (m Middleware) deny(w http.ResponseWriter, resource ResourceType, err error) {
	reason := httpx.Reason(err)
	m.record(resource, "deny", reason)
	if m.Logger != nil {
		m.Logger.Warn("authorization denied",
			slog.String("resource", string(resource)),
			slog.String("reason", reason),
		)
	}
	httpx.RespondError(w, err)
}

func (m Middleware) record(resource ResourceType, outcome, reason string) {
	if m.Metrics != nil {
		m.Metrics.RecordAuthzDecision(string(resource), outcome, reason)
	}
}
