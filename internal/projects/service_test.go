package projects

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewbase/crewbase/internal/authz"
	"github.com/crewbase/crewbase/internal/events"
	"github.com/crewbase/crewbase/internal/managers"
	"github.com/crewbase/crewbase/internal/platform/httpx"
)

type sinkSpy struct {
	emitted []events.Event
}

func (s *sinkSpy) Emit(ctx context.Context, event events.Event) {
	s.emitted = append(s.emitted, event)
}

type mockProjectRepo struct {
	projects map[uuid.UUID]Project
}

func newMockProjectRepo() *mockProjectRepo {
	return &mockProjectRepo{projects: make(map[uuid.UUID]Project)}
}

func (m *mockProjectRepo) List(ctx context.Context, filters ListFilters) ([]Project, int, error) {
	var out []Project
	for _, p := range m.projects {
		if filters.CompanyID != nil && p.CompanyID != *filters.CompanyID {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

func (m *mockProjectRepo) Get(ctx context.Context, id uuid.UUID) (Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return Project{}, httpx.Fail(httpx.ErrNotFound, authz.ReasonResourceNotFound)
	}
	return p, nil
}

func (m *mockProjectRepo) CreateTx(ctx context.Context, tx pgx.Tx, project Project) (Project, error) {
	project.ID = uuid.New()
	project.IsActive = true
	m.projects[project.ID] = project
	return project, nil
}

func (m *mockProjectRepo) Update(ctx context.Context, id uuid.UUID, project Project) (Project, error) {
	if _, ok := m.projects[id]; !ok {
		return Project{}, httpx.Fail(httpx.ErrNotFound, authz.ReasonResourceNotFound)
	}
	m.projects[id] = project
	return project, nil
}

func (m *mockProjectRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	p, ok := m.projects[id]
	if !ok {
		return httpx.Fail(httpx.ErrNotFound, authz.ReasonResourceNotFound)
	}
	p.IsActive = active
	m.projects[id] = p
	return nil
}

func (m *mockProjectRepo) SoftDeleteTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	if _, ok := m.projects[id]; !ok {
		return httpx.Fail(httpx.ErrNotFound, authz.ReasonResourceNotFound)
	}
	delete(m.projects, id)
	return nil
}

type mockAssignments struct {
	managers.Repository
	inserted []managers.Assignment
	removed  []uuid.UUID
}

func (m *mockAssignments) InsertTx(ctx context.Context, tx pgx.Tx, a managers.Assignment) (managers.Assignment, error) {
	a.ID = uuid.New()
	m.inserted = append(m.inserted, a)
	return a, nil
}

func (m *mockAssignments) RemoveForEntityTx(ctx context.Context, tx pgx.Tx, entityType authz.ResourceType, entityID uuid.UUID) error {
	m.removed = append(m.removed, entityID)
	return nil
}

func fakeTx(ctx context.Context, fn func(pgx.Tx) error) error {
	return fn(nil)
}

func TestCreateSeedsProjectOwnerIndependently(t *testing.T) {
	repo := newMockProjectRepo()
	assignments := &mockAssignments{}
	sink := &sinkSpy{}
	svc := NewService(repo, assignments, sink, fakeTx)
	companyID := uuid.New()

	created, err := svc.Create(context.Background(), companyID, CreateProjectRequest{Name: "Backend hires"}, 9)
	require.NoError(t, err)
	assert.Equal(t, companyID, created.CompanyID)

	require.Len(t, assignments.inserted, 1)
	seed := assignments.inserted[0]
	assert.Equal(t, authz.ResourceProject, seed.EntityType)
	assert.Equal(t, created.ID, seed.EntityID)
	assert.Equal(t, int64(9), seed.UserID)
	assert.Equal(t, authz.AssignmentOwner, seed.Type)

	require.Len(t, sink.emitted, 1)
	assert.Equal(t, events.KindCreated, sink.emitted[0].Kind)
	assert.Equal(t, "project", sink.emitted[0].Resource)
}

func TestDeleteCascadesProjectAssignments(t *testing.T) {
	repo := newMockProjectRepo()
	assignments := &mockAssignments{}
	sink := &sinkSpy{}
	svc := NewService(repo, assignments, sink, fakeTx)

	created, err := svc.Create(context.Background(), uuid.New(), CreateProjectRequest{Name: "Backend hires"}, 9)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID, 9))
	require.Len(t, assignments.removed, 1)
	assert.Equal(t, created.ID, assignments.removed[0])

	_, err = svc.Get(context.Background(), created.ID)
	assert.True(t, errors.Is(err, httpx.ErrNotFound))
}

func TestUpdateMissingProject(t *testing.T) {
	svc := NewService(newMockProjectRepo(), &mockAssignments{}, &sinkSpy{}, fakeTx)

	name := "renamed"
	_, err := svc.Update(context.Background(), uuid.New(), UpdateProjectRequest{Name: &name}, 9)
	require.Error(t, err)
	assert.Equal(t, authz.ReasonResourceNotFound, httpx.Reason(err))
}
