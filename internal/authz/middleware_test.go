package authz

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewbase/crewbase/internal/platform/httpx"
)

func mustUUID(t *testing.T) uuid.UUID {
	t.Helper()
	return uuid.New()
}

type recordedDecision struct {
	resource, outcome, reason string
}

type mockRecorder struct {
	decisions []recordedDecision
}

func (m *mockRecorder) RecordAuthzDecision(resource, outcome, reason string) {
	m.decisions = append(m.decisions, recordedDecision{resource, outcome, reason})
}

type pipelineFixture struct {
	mw       Middleware
	source   *mockCatalogSource
	store    *mockScopeStore
	finder   *mockFinder
	recorder *mockRecorder
}

func newPipelineFixture(perms PermissionSet) *pipelineFixture {
	source := &mockCatalogSource{sets: map[int64]PermissionSet{1: perms}}
	store := newMockScopeStore()
	finder := newMockFinder()
	recorder := &mockRecorder{}
	return &pipelineFixture{
		mw: Middleware{
			Catalog:   NewCatalog(source, nil, time.Minute, slog.Default()),
			Scopes:    NewScopeLoader(store),
			Evaluator: NewEvaluator(finder),
			Logger:    slog.Default(),
			Metrics:   recorder,
		},
		source:   source,
		store:    store,
		finder:   finder,
		recorder: recorder,
	}
}

func (f *pipelineFixture) request(t *testing.T, mwFunc func(http.Handler) http.Handler, path, target string, principal *Principal) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.With(mwFunc).Get(path, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if principal != nil {
		req = req.WithContext(ContextWithPrincipal(req.Context(), *principal))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func problemReason(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var problem httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return problem.Reason
}

func TestRequireWithoutPrincipal(t *testing.T) {
	f := newPipelineFixture(NewPermissionSet([]string{"company:read"}))

	rec := f.request(t, f.mw.Require(ResourceCompany, ActionRead), "/companies", "/companies", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, ReasonMissingToken, problemReason(t, rec))
}

func TestRequireGateDenies(t *testing.T) {
	f := newPipelineFixture(NewPermissionSet(nil))

	rec := f.request(t, f.mw.Require(ResourceCompany, ActionRead), "/companies", "/companies", &Principal{UserID: 7, RoleID: 1})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, ReasonRolePermissionDenied, problemReason(t, rec))
	require.Len(t, f.recorder.decisions, 1)
	assert.Equal(t, "deny", f.recorder.decisions[0].outcome)
}

func TestRequireScopedGateRunsBeforeResourceLoad(t *testing.T) {
	// An unpermitted role gets 403 even for a nonexistent resource, so route
	// probing cannot reveal which identifiers exist.
	f := newPipelineFixture(NewPermissionSet(nil))

	rec := f.request(t,
		f.mw.RequireScoped(ResourceCompany, ActionRead, ResourceCompany, "companyID", StrengthOwnerOrManager),
		"/companies/{companyID}", "/companies/b2f4e2f0-0000-0000-0000-000000000000", &Principal{UserID: 7, RoleID: 1})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, ReasonRolePermissionDenied, problemReason(t, rec))
	assert.Zero(t, f.store.lookups, "gate must short-circuit before the scope loader")
}

func TestRequireScopedInvalidIdentifier(t *testing.T) {
	f := newPipelineFixture(NewPermissionSet([]string{"company:read"}))

	rec := f.request(t,
		f.mw.RequireScoped(ResourceCompany, ActionRead, ResourceCompany, "companyID", StrengthOwnerOrManager),
		"/companies/{companyID}", "/companies/42", &Principal{UserID: 7, RoleID: 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ReasonInvalidIdentifier, problemReason(t, rec))
	assert.Zero(t, f.store.lookups)
}

func TestRequireScopedAllowsOwner(t *testing.T) {
	f := newPipelineFixture(NewPermissionSet([]string{"company:read"}))
	company := Resource{Type: ResourceCompany, ID: mustUUID(t), IsActive: true}
	f.store.companies[company.ID] = company
	f.finder.put(ResourceCompany, company.ID, 7, AssignmentOwner)

	rec := f.request(t,
		f.mw.RequireScoped(ResourceCompany, ActionRead, ResourceCompany, "companyID", StrengthOwnerOrManager),
		"/companies/{companyID}", "/companies/"+company.ID.String(), &Principal{UserID: 7, RoleID: 1})
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, f.recorder.decisions, 1)
	assert.Equal(t, recordedDecision{"company", "allow", ""}, f.recorder.decisions[0])
}

func TestRequireScopedDeniesNonManager(t *testing.T) {
	f := newPipelineFixture(NewPermissionSet([]string{"company:read"}))
	company := Resource{Type: ResourceCompany, ID: mustUUID(t), IsActive: true}
	f.store.companies[company.ID] = company

	rec := f.request(t,
		f.mw.RequireScoped(ResourceCompany, ActionRead, ResourceCompany, "companyID", StrengthOwnerOrManager),
		"/companies/{companyID}", "/companies/"+company.ID.String(), &Principal{UserID: 7, RoleID: 1})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, ReasonNotAManager, problemReason(t, rec))
}

func TestRequireScopedWildcardBypassesOwnership(t *testing.T) {
	f := newPipelineFixture(NewPermissionSet([]string{"company:manage"}))
	company := Resource{Type: ResourceCompany, ID: mustUUID(t), IsActive: true}
	f.store.companies[company.ID] = company

	rec := f.request(t,
		f.mw.RequireScoped(ResourceCompany, ActionDelete, ResourceCompany, "companyID", StrengthOwner),
		"/companies/{companyID}", "/companies/"+company.ID.String(), &Principal{UserID: 7, RoleID: 1})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, f.finder.calls, "wildcard must bypass the assignment walk")
}

func TestRequireScopedDeadlineExpiryMidPipeline(t *testing.T) {
	// A store timeout after the gate passed must discard the partial decision
	// and surface as unavailability, never as a denial or a leak.
	f := newPipelineFixture(NewPermissionSet([]string{"company:read"}))
	f.store.err = context.DeadlineExceeded

	rec := f.request(t,
		f.mw.RequireScoped(ResourceCompany, ActionRead, ResourceCompany, "companyID", StrengthOwnerOrManager),
		"/companies/{companyID}", "/companies/"+uuid.NewString(), &Principal{UserID: 7, RoleID: 1})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, ReasonUpstreamTimeout, problemReason(t, rec))
	require.Len(t, f.recorder.decisions, 1)
	assert.Equal(t, recordedDecision{"company", "deny", ReasonUpstreamTimeout}, f.recorder.decisions[0])
}

func TestRequireScopedScopeChainReachesHandler(t *testing.T) {
	f := newPipelineFixture(NewPermissionSet([]string{"project:read"}))
	company := Resource{Type: ResourceCompany, ID: mustUUID(t)}
	project := Resource{Type: ResourceProject, ID: mustUUID(t), ParentID: company.ID}
	f.store.companies[company.ID] = company
	f.store.projects[project.ID] = project
	f.finder.put(ResourceProject, project.ID, 7, AssignmentManager)

	var seen ScopeChain
	r := chi.NewRouter()
	r.With(f.mw.RequireScoped(ResourceProject, ActionRead, ResourceProject, "projectID", StrengthOwnerOrManager)).
		Get("/projects/{projectID}", func(w http.ResponseWriter, r *http.Request) {
			seen, _ = ScopeFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})
	req := httptest.NewRequest(http.MethodGet, "/projects/"+project.ID.String(), nil)
	req = req.WithContext(ContextWithPrincipal(req.Context(), Principal{UserID: 7, RoleID: 1}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, seen, 2)
	assert.Equal(t, project.ID, seen.Target().ID)
	assert.Equal(t, company.ID, seen[1].ID)
}
