package managers

import (
	"context"

	"github.com/google/uuid"

	"github.com/crewbase/crewbase/internal/authz"
	"github.com/crewbase/crewbase/internal/events"
	"github.com/crewbase/crewbase/internal/platform/httpx"
)

// Reason code for an assign request naming an unknown assignment type.
const reasonInvalidAssignmentType = "invalid_assignment_type"

// Service wraps assignment business rules. Privilege checks are not done
// here: the pipeline guarding the mutation routes has already passed the
// evaluator at owner strength before these methods run.
type Service struct {
	repo   Repository
	events events.Sink
}

// NewService constructs a Service.
func NewService(repo Repository, sink events.Sink) *Service {
	return &Service{repo: repo, events: sink}
}

// Assign designates a user as owner or manager of an entity. Duplicate
// composite keys are rejected regardless of the requested type.
func (s *Service) Assign(ctx context.Context, entityType authz.ResourceType, entityID uuid.UUID, userID int64, atype authz.AssignmentType, createdBy int64) (Assignment, error) {
	if !AssignableEntity(entityType) {
		return Assignment{}, httpx.Fail(httpx.ErrBadRequest, authz.ReasonInvalidIdentifier)
	}
	if !atype.Valid() {
		return Assignment{}, httpx.Fail(httpx.ErrBadRequest, reasonInvalidAssignmentType)
	}
	created, err := s.repo.Insert(ctx, Assignment{
		EntityType: entityType,
		EntityID:   entityID,
		UserID:     userID,
		Type:       atype,
		CreatedBy:  createdBy,
	})
	if err != nil {
		return Assignment{}, err
	}
	s.events.Emit(ctx, events.Event{
		Kind:       events.KindManagerSet,
		Resource:   string(entityType),
		ResourceID: entityID.String(),
		ActorID:    createdBy,
	})
	return created, nil
}

// Unassign removes a user's assignment. Removing the sole owner fails with
// cannot_remove_last_owner; the repository closes the read-then-write race
// under row locks.
func (s *Service) Unassign(ctx context.Context, entityType authz.ResourceType, entityID uuid.UUID, userID, requestedBy int64) error {
	if !AssignableEntity(entityType) {
		return httpx.Fail(httpx.ErrBadRequest, authz.ReasonInvalidIdentifier)
	}
	if err := s.repo.Remove(ctx, entityType, entityID, userID); err != nil {
		return err
	}
	s.events.Emit(ctx, events.Event{
		Kind:       events.KindManagerUnset,
		Resource:   string(entityType),
		ResourceID: entityID.String(),
		ActorID:    requestedBy,
	})
	return nil
}

// Find returns the assignment for the composite key, or nil when none exists.
func (s *Service) Find(ctx context.Context, entityType authz.ResourceType, entityID uuid.UUID, userID int64) (*Assignment, error) {
	return s.repo.Find(ctx, entityType, entityID, userID)
}

// List returns all assignments on an entity.
func (s *Service) List(ctx context.Context, entityType authz.ResourceType, entityID uuid.UUID) ([]Assignment, error) {
	return s.repo.ListByEntity(ctx, entityType, entityID)
}
