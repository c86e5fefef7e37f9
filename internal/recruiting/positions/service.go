package positions

import (
	"context"

	"github.com/google/uuid"

	"github.com/crewbase/crewbase/internal/authz"
	"github.com/crewbase/crewbase/internal/events"
)

// Service wraps position business rules.
type Service struct {
	repo   Repository
	events events.Sink
}

// NewService constructs a Service.
func NewService(repo Repository, sink events.Sink) *Service {
	return &Service{repo: repo, events: sink}
}

// List returns all positions in a project.
func (s *Service) List(ctx context.Context, projectID uuid.UUID) ([]Position, error) {
	return s.repo.ListByProject(ctx, projectID)
}

// Get loads one position within a project.
func (s *Service) Get(ctx context.Context, projectID, id uuid.UUID) (Position, error) {
	return s.repo.Get(ctx, projectID, id)
}

// Create opens a position in the project.
func (s *Service) Create(ctx context.Context, projectID uuid.UUID, req CreatePositionRequest, createdBy int64) (Position, error) {
	headcount := req.Headcount
	if headcount == 0 {
		headcount = 1
	}
	created, err := s.repo.Create(ctx, Position{
		ProjectID: projectID,
		Title:     req.Title,
		Seniority: req.Seniority,
		Headcount: headcount,
		CreatedBy: createdBy,
	})
	if err != nil {
		return Position{}, err
	}
	s.events.Emit(ctx, events.Event{
		Kind:       events.KindCreated,
		Resource:   string(authz.ResourcePosition),
		ResourceID: created.ID.String(),
		ActorID:    createdBy,
	})
	return created, nil
}

// Update applies the non-nil fields.
func (s *Service) Update(ctx context.Context, projectID, id uuid.UUID, req UpdatePositionRequest, actor int64) (Position, error) {
	current, err := s.repo.Get(ctx, projectID, id)
	if err != nil {
		return Position{}, err
	}
	if req.Title != nil {
		current.Title = *req.Title
	}
	if req.Seniority != nil {
		current.Seniority = *req.Seniority
	}
	if req.Headcount != nil {
		current.Headcount = *req.Headcount
	}
	if req.Status != nil {
		current.Status = *req.Status
	}
	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		return Position{}, err
	}
	s.events.Emit(ctx, events.Event{
		Kind:       events.KindUpdated,
		Resource:   string(authz.ResourcePosition),
		ResourceID: id.String(),
		ActorID:    actor,
	})
	return updated, nil
}

// Delete removes the position.
func (s *Service) Delete(ctx context.Context, projectID, id uuid.UUID, actor int64) error {
	if err := s.repo.Delete(ctx, projectID, id); err != nil {
		return err
	}
	s.events.Emit(ctx, events.Event{
		Kind:       events.KindDeleted,
		Resource:   string(authz.ResourcePosition),
		ResourceID: id.String(),
		ActorID:    actor,
	})
	return nil
}
