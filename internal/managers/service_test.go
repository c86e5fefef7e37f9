package managers

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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

type mockAssignmentRepo struct {
	byKey map[string]Assignment
}

func newMockAssignmentRepo() *mockAssignmentRepo {
	return &mockAssignmentRepo{byKey: make(map[string]Assignment)}
}

func (m *mockAssignmentRepo) storageKey(entityType authz.ResourceType, entityID uuid.UUID, userID int64) string {
	return string(entityType) + "/" + entityID.String() + "/" + strconv.FormatInt(userID, 10)
}

func (m *mockAssignmentRepo) Find(ctx context.Context, entityType authz.ResourceType, entityID uuid.UUID, userID int64) (*Assignment, error) {
	if a, ok := m.byKey[m.storageKey(entityType, entityID, userID)]; ok {
		return &a, nil
	}
	return nil, nil
}

func (m *mockAssignmentRepo) FindAssignment(ctx context.Context, entityType authz.ResourceType, entityID uuid.UUID, userID int64) (*authz.Assignment, error) {
	a, err := m.Find(ctx, entityType, entityID, userID)
	if err != nil || a == nil {
		return nil, err
	}
	return &authz.Assignment{EntityType: a.EntityType, EntityID: a.EntityID, UserID: a.UserID, Type: a.Type}, nil
}

func (m *mockAssignmentRepo) ListByEntity(ctx context.Context, entityType authz.ResourceType, entityID uuid.UUID) ([]Assignment, error) {
	var out []Assignment
	for _, a := range m.byKey {
		if a.EntityType == entityType && a.EntityID == entityID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAssignmentRepo) Insert(ctx context.Context, a Assignment) (Assignment, error) {
	k := m.storageKey(a.EntityType, a.EntityID, a.UserID)
	if _, exists := m.byKey[k]; exists {
		return Assignment{}, httpx.Fail(httpx.ErrAlreadyExists, authz.ReasonAlreadyManager)
	}
	a.ID = uuid.New()
	m.byKey[k] = a
	return a, nil
}

func (m *mockAssignmentRepo) Remove(ctx context.Context, entityType authz.ResourceType, entityID uuid.UUID, userID int64) error {
	all, _ := m.ListByEntity(ctx, entityType, entityID)
	if err := checkRemoval(all, userID); err != nil {
		return err
	}
	delete(m.byKey, m.storageKey(entityType, entityID, userID))
	return nil
}

func (m *mockAssignmentRepo) InsertTx(ctx context.Context, tx pgx.Tx, a Assignment) (Assignment, error) {
	return m.Insert(ctx, a)
}

func (m *mockAssignmentRepo) RemoveForEntityTx(ctx context.Context, tx pgx.Tx, entityType authz.ResourceType, entityID uuid.UUID) error {
	for k, a := range m.byKey {
		if a.EntityType == entityType && a.EntityID == entityID {
			delete(m.byKey, k)
		}
	}
	return nil
}

func TestAssignAndFindRoundTrip(t *testing.T) {
	repo := newMockAssignmentRepo()
	sink := &sinkSpy{}
	svc := NewService(repo, sink)
	entityID := uuid.New()

	created, err := svc.Assign(context.Background(), authz.ResourceProject, entityID, 7, authz.AssignmentManager, 1)
	require.NoError(t, err)
	assert.Equal(t, authz.AssignmentManager, created.Type)

	found, err := svc.Find(context.Background(), authz.ResourceProject, entityID, 7)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)

	require.Len(t, sink.emitted, 1)
	assert.Equal(t, events.KindManagerSet, sink.emitted[0].Kind)
}

func TestAssignDuplicateCompositeKey(t *testing.T) {
	repo := newMockAssignmentRepo()
	svc := NewService(repo, &sinkSpy{})
	entityID := uuid.New()

	_, err := svc.Assign(context.Background(), authz.ResourceCompany, entityID, 7, authz.AssignmentOwner, 1)
	require.NoError(t, err)

	// Re-assigning the same user fails even with a different type.
	_, err = svc.Assign(context.Background(), authz.ResourceCompany, entityID, 7, authz.AssignmentManager, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrAlreadyExists))
	assert.Equal(t, authz.ReasonAlreadyManager, httpx.Reason(err))
}

func TestAssignRejectsUnassignableEntity(t *testing.T) {
	svc := NewService(newMockAssignmentRepo(), &sinkSpy{})

	_, err := svc.Assign(context.Background(), authz.ResourceResume, uuid.New(), 7, authz.AssignmentOwner, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrBadRequest))
}

func TestAssignRejectsUnknownType(t *testing.T) {
	svc := NewService(newMockAssignmentRepo(), &sinkSpy{})

	_, err := svc.Assign(context.Background(), authz.ResourceProject, uuid.New(), 7, authz.AssignmentType("superuser"), 1)
	require.Error(t, err)
	assert.Equal(t, reasonInvalidAssignmentType, httpx.Reason(err))
}

func TestUnassignLastOwnerBlocked(t *testing.T) {
	repo := newMockAssignmentRepo()
	sink := &sinkSpy{}
	svc := NewService(repo, sink)
	entityID := uuid.New()

	_, err := svc.Assign(context.Background(), authz.ResourceCompany, entityID, 7, authz.AssignmentOwner, 7)
	require.NoError(t, err)

	err = svc.Unassign(context.Background(), authz.ResourceCompany, entityID, 7, 7)
	require.Error(t, err)
	assert.Equal(t, authz.ReasonCannotRemoveLastOwner, httpx.Reason(err))
	assert.Len(t, sink.emitted, 1, "failed unassign must not emit")
}

func TestUnassignOwnerWithCoOwner(t *testing.T) {
	repo := newMockAssignmentRepo()
	sink := &sinkSpy{}
	svc := NewService(repo, sink)
	entityID := uuid.New()

	_, err := svc.Assign(context.Background(), authz.ResourceCompany, entityID, 7, authz.AssignmentOwner, 7)
	require.NoError(t, err)
	_, err = svc.Assign(context.Background(), authz.ResourceCompany, entityID, 8, authz.AssignmentOwner, 7)
	require.NoError(t, err)

	require.NoError(t, svc.Unassign(context.Background(), authz.ResourceCompany, entityID, 7, 8))

	found, err := svc.Find(context.Background(), authz.ResourceCompany, entityID, 7)
	require.NoError(t, err)
	assert.Nil(t, found)

	last := sink.emitted[len(sink.emitted)-1]
	assert.Equal(t, events.KindManagerUnset, last.Kind)
}
