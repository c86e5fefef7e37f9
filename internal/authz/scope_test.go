package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewbase/crewbase/internal/platform/httpx"
)

type mockScopeStore struct {
	companies map[uuid.UUID]Resource
	projects  map[uuid.UUID]Resource
	lookups   int
	err       error
}

func newMockScopeStore() *mockScopeStore {
	return &mockScopeStore{
		companies: make(map[uuid.UUID]Resource),
		projects:  make(map[uuid.UUID]Resource),
	}
}

func (m *mockScopeStore) FindCompany(ctx context.Context, id uuid.UUID) (Resource, error) {
	m.lookups++
	if m.err != nil {
		return Resource{}, m.err
	}
	if r, ok := m.companies[id]; ok {
		return r, nil
	}
	return Resource{}, httpx.Fail(httpx.ErrNotFound, ReasonResourceNotFound)
}

func (m *mockScopeStore) FindProject(ctx context.Context, id uuid.UUID) (Resource, error) {
	m.lookups++
	if m.err != nil {
		return Resource{}, m.err
	}
	if r, ok := m.projects[id]; ok {
		return r, nil
	}
	return Resource{}, httpx.Fail(httpx.ErrNotFound, ReasonResourceNotFound)
}

func TestLoadRejectsMalformedIdentifierBeforeLookup(t *testing.T) {
	store := newMockScopeStore()
	loader := NewScopeLoader(store)

	_, err := loader.Load(context.Background(), ResourceCompany, "not-a-uuid")
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrBadRequest))
	assert.Equal(t, ReasonInvalidIdentifier, httpx.Reason(err))
	assert.Zero(t, store.lookups, "malformed input must never reach the store")
}

func TestLoadCompanyChain(t *testing.T) {
	store := newMockScopeStore()
	companyID := uuid.New()
	store.companies[companyID] = Resource{Type: ResourceCompany, ID: companyID, IsActive: true}
	loader := NewScopeLoader(store)

	chain, err := loader.Load(context.Background(), ResourceCompany, companyID.String())
	require.NoError(t, err)
	require.Len(t, chain, 1)
	assert.Equal(t, companyID, chain.Target().ID)
}

func TestLoadProjectChainOrder(t *testing.T) {
	store := newMockScopeStore()
	companyID := uuid.New()
	projectID := uuid.New()
	store.companies[companyID] = Resource{Type: ResourceCompany, ID: companyID}
	store.projects[projectID] = Resource{Type: ResourceProject, ID: projectID, ParentID: companyID}
	loader := NewScopeLoader(store)

	chain, err := loader.Load(context.Background(), ResourceProject, projectID.String())
	require.NoError(t, err)
	require.Len(t, chain, 2)
	assert.Equal(t, ResourceProject, chain[0].Type)
	assert.Equal(t, projectID, chain[0].ID)
	assert.Equal(t, ResourceCompany, chain[1].Type)
	assert.Equal(t, companyID, chain[1].ID)
}

func TestLoadMissingProject(t *testing.T) {
	loader := NewScopeLoader(newMockScopeStore())

	_, err := loader.Load(context.Background(), ResourceProject, uuid.NewString())
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrNotFound))
	assert.Equal(t, ReasonResourceNotFound, httpx.Reason(err))
}

func TestLoadMissingParentCompany(t *testing.T) {
	store := newMockScopeStore()
	projectID := uuid.New()
	store.projects[projectID] = Resource{Type: ResourceProject, ID: projectID, ParentID: uuid.New()}
	loader := NewScopeLoader(store)

	_, err := loader.Load(context.Background(), ResourceProject, projectID.String())
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrNotFound))
	assert.Equal(t, ReasonParentNotFound, httpx.Reason(err))
}

func TestLoadUnscopableResourceType(t *testing.T) {
	loader := NewScopeLoader(newMockScopeStore())

	_, err := loader.Load(context.Background(), ResourceResume, uuid.NewString())
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrBadRequest))
}
