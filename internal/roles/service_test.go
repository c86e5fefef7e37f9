package roles

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewbase/crewbase/internal/authz"
	"github.com/crewbase/crewbase/internal/events"
	"github.com/crewbase/crewbase/internal/platform/httpx"
)

type sinkSpy struct {
	emitted []events.Event
}

func (s *sinkSpy) Emit(ctx context.Context, event events.Event) {
	s.emitted = append(s.emitted, event)
}

type catalogSpy struct {
	invalidated []int64
}

func (c *catalogSpy) Invalidate(ctx context.Context, roleID int64) {
	c.invalidated = append(c.invalidated, roleID)
}

type mockRoleRepo struct {
	roles  map[int64]Role
	grants map[int64][]Permission
	nextID int64
}

func newMockRoleRepo() *mockRoleRepo {
	return &mockRoleRepo{roles: make(map[int64]Role), grants: make(map[int64][]Permission), nextID: 1}
}

func (m *mockRoleRepo) List(ctx context.Context) ([]Role, error) {
	var out []Role
	for _, r := range m.roles {
		out = append(out, r)
	}
	return out, nil
}

func (m *mockRoleRepo) Get(ctx context.Context, id int64) (Role, error) {
	r, ok := m.roles[id]
	if !ok {
		return Role{}, httpx.Fail(httpx.ErrNotFound, authz.ReasonResourceNotFound)
	}
	return r, nil
}

func (m *mockRoleRepo) Create(ctx context.Context, name, description string) (Role, error) {
	for _, r := range m.roles {
		if r.Name == name {
			return Role{}, httpx.Fail(httpx.ErrAlreadyExists, reasonRoleExists)
		}
	}
	role := Role{ID: m.nextID, Name: name, Description: description}
	m.nextID++
	m.roles[role.ID] = role
	return role, nil
}

func (m *mockRoleRepo) Update(ctx context.Context, role Role) (Role, error) {
	if _, ok := m.roles[role.ID]; !ok {
		return Role{}, httpx.Fail(httpx.ErrNotFound, authz.ReasonResourceNotFound)
	}
	m.roles[role.ID] = role
	return role, nil
}

func (m *mockRoleRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.roles[id]; !ok {
		return httpx.Fail(httpx.ErrNotFound, authz.ReasonResourceNotFound)
	}
	delete(m.roles, id)
	delete(m.grants, id)
	return nil
}

func (m *mockRoleRepo) Permissions(ctx context.Context, roleID int64) ([]Permission, error) {
	return m.grants[roleID], nil
}

func (m *mockRoleRepo) ReplacePermissions(ctx context.Context, roleID int64, perms []Permission) error {
	m.grants[roleID] = perms
	return nil
}

func (m *mockRoleRepo) RolePermissions(ctx context.Context, roleID int64) (authz.PermissionSet, error) {
	pairs := make([]string, 0, len(m.grants[roleID]))
	for _, p := range m.grants[roleID] {
		pairs = append(pairs, p.Resource+":"+p.Action)
	}
	return authz.NewPermissionSet(pairs), nil
}

func newRoleFixture() (*Service, *mockRoleRepo, *catalogSpy, *sinkSpy) {
	repo := newMockRoleRepo()
	catalog := &catalogSpy{}
	sink := &sinkSpy{}
	return NewService(repo, catalog, sink), repo, catalog, sink
}

func TestSetPermissionsReplacesGrantsAndInvalidates(t *testing.T) {
	svc, repo, catalog, sink := newRoleFixture()
	role, err := svc.Create(context.Background(), CreateRoleRequest{Name: "recruiter"}, 1)
	require.NoError(t, err)

	perms := []Permission{
		{Resource: "resume", Action: "read"},
		{Resource: "resume", Action: "create"},
	}
	require.NoError(t, svc.SetPermissions(context.Background(), role.ID, perms, 1))

	assert.Equal(t, perms, repo.grants[role.ID])
	assert.Equal(t, []int64{role.ID}, catalog.invalidated)
	assert.Equal(t, events.KindUpdated, sink.emitted[len(sink.emitted)-1].Kind)
}

func TestSetPermissionsRejectsUnknownPair(t *testing.T) {
	svc, repo, catalog, _ := newRoleFixture()
	role, err := svc.Create(context.Background(), CreateRoleRequest{Name: "recruiter"}, 1)
	require.NoError(t, err)

	err = svc.SetPermissions(context.Background(), role.ID, []Permission{
		{Resource: "resume", Action: "read"},
		{Resource: "spaceship", Action: "launch"},
	}, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrBadRequest))
	assert.Equal(t, reasonUnknownPermission, httpx.Reason(err))
	assert.Empty(t, repo.grants[role.ID], "rejected set must not apply partially")
	assert.Empty(t, catalog.invalidated)
}

func TestSetPermissionsUnknownRole(t *testing.T) {
	svc, _, _, _ := newRoleFixture()

	err := svc.SetPermissions(context.Background(), 99, nil, 1)
	assert.True(t, errors.Is(err, httpx.ErrNotFound))
}

func TestDeleteInvalidatesCatalog(t *testing.T) {
	svc, _, catalog, sink := newRoleFixture()
	role, err := svc.Create(context.Background(), CreateRoleRequest{Name: "recruiter"}, 1)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), role.ID, 1))
	assert.Equal(t, []int64{role.ID}, catalog.invalidated)
	assert.Equal(t, events.KindDeleted, sink.emitted[len(sink.emitted)-1].Kind)
}

func TestCreateDuplicateName(t *testing.T) {
	svc, _, _, _ := newRoleFixture()
	_, err := svc.Create(context.Background(), CreateRoleRequest{Name: "recruiter"}, 1)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateRoleRequest{Name: "recruiter"}, 1)
	require.Error(t, err)
	assert.Equal(t, reasonRoleExists, httpx.Reason(err))
}

func TestUpdateAppliesPartialFields(t *testing.T) {
	svc, _, _, _ := newRoleFixture()
	role, err := svc.Create(context.Background(), CreateRoleRequest{Name: "recruiter", Description: "screens resumes"}, 1)
	require.NoError(t, err)

	name := "senior recruiter"
	updated, err := svc.Update(context.Background(), role.ID, UpdateRoleRequest{Name: &name}, 1)
	require.NoError(t, err)
	assert.Equal(t, "senior recruiter", updated.Name)
	assert.Equal(t, "screens resumes", updated.Description)
}
