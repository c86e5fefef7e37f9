package resumes

import (
	"context"

	"github.com/google/uuid"

	"github.com/crewbase/crewbase/internal/authz"
	"github.com/crewbase/crewbase/internal/events"
)

// Service wraps resume business rules.
type Service struct {
	repo   Repository
	events events.Sink
}

// NewService constructs a Service.
func NewService(repo Repository, sink events.Sink) *Service {
	return &Service{repo: repo, events: sink}
}

// List returns resumes in a project, optionally filtered by position.
func (s *Service) List(ctx context.Context, projectID uuid.UUID, positionID *uuid.UUID) ([]Resume, error) {
	return s.repo.ListByProject(ctx, projectID, positionID)
}

// Get loads one resume within a project.
func (s *Service) Get(ctx context.Context, projectID, id uuid.UUID) (Resume, error) {
	return s.repo.Get(ctx, projectID, id)
}

// Create registers a candidate submission.
func (s *Service) Create(ctx context.Context, projectID uuid.UUID, req CreateResumeRequest, createdBy int64) (Resume, error) {
	created, err := s.repo.Create(ctx, Resume{
		ProjectID:     projectID,
		PositionID:    req.PositionID,
		CandidateName: req.CandidateName,
		Email:         req.Email,
		Phone:         req.Phone,
		FileURL:       req.FileURL,
		Notes:         req.Notes,
		CreatedBy:     createdBy,
	})
	if err != nil {
		return Resume{}, err
	}
	s.events.Emit(ctx, events.Event{
		Kind:       events.KindCreated,
		Resource:   string(authz.ResourceResume),
		ResourceID: created.ID.String(),
		ActorID:    createdBy,
	})
	return created, nil
}

// Update applies the non-nil fields.
func (s *Service) Update(ctx context.Context, projectID, id uuid.UUID, req UpdateResumeRequest, actor int64) (Resume, error) {
	current, err := s.repo.Get(ctx, projectID, id)
	if err != nil {
		return Resume{}, err
	}
	if req.Status != nil {
		current.Status = *req.Status
	}
	if req.Notes != nil {
		current.Notes = *req.Notes
	}
	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		return Resume{}, err
	}
	s.events.Emit(ctx, events.Event{
		Kind:       events.KindUpdated,
		Resource:   string(authz.ResourceResume),
		ResourceID: id.String(),
		ActorID:    actor,
	})
	return updated, nil
}

// Delete removes the resume.
func (s *Service) Delete(ctx context.Context, projectID, id uuid.UUID, actor int64) error {
	if err := s.repo.Delete(ctx, projectID, id); err != nil {
		return err
	}
	s.events.Emit(ctx, events.Event{
		Kind:       events.KindDeleted,
		Resource:   string(authz.ResourceResume),
		ResourceID: id.String(),
		ActorID:    actor,
	})
	return nil
}
