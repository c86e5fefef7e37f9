package interviews

import (
	"context"

	"github.com/google/uuid"

	"github.com/crewbase/crewbase/internal/authz"
	"github.com/crewbase/crewbase/internal/events"
)

// Service wraps interview scheduling rules.
type Service struct {
	repo   Repository
	events events.Sink
}

// NewService constructs a Service.
func NewService(repo Repository, sink events.Sink) *Service {
	return &Service{repo: repo, events: sink}
}

// List returns interviews in a project, optionally filtered by resume.
func (s *Service) List(ctx context.Context, projectID uuid.UUID, resumeID *uuid.UUID) ([]Interview, error) {
	return s.repo.ListByProject(ctx, projectID, resumeID)
}

// Get loads one interview within a project.
func (s *Service) Get(ctx context.Context, projectID, id uuid.UUID) (Interview, error) {
	return s.repo.Get(ctx, projectID, id)
}

// Create schedules an interview for a candidate.
func (s *Service) Create(ctx context.Context, projectID uuid.UUID, req CreateInterviewRequest, createdBy int64) (Interview, error) {
	created, err := s.repo.Create(ctx, Interview{
		ProjectID:     projectID,
		ResumeID:      req.ResumeID,
		InterviewerID: req.InterviewerID,
		ScheduledAt:   req.ScheduledAt,
		CreatedBy:     createdBy,
	})
	if err != nil {
		return Interview{}, err
	}
	s.events.Emit(ctx, events.Event{
		Kind:       events.KindCreated,
		Resource:   string(authz.ResourceInterview),
		ResourceID: created.ID.String(),
		ActorID:    createdBy,
	})
	return created, nil
}

// Update applies the non-nil fields.
func (s *Service) Update(ctx context.Context, projectID, id uuid.UUID, req UpdateInterviewRequest, actor int64) (Interview, error) {
	current, err := s.repo.Get(ctx, projectID, id)
	if err != nil {
		return Interview{}, err
	}
	if req.ScheduledAt != nil {
		current.ScheduledAt = *req.ScheduledAt
	}
	if req.Status != nil {
		current.Status = *req.Status
	}
	if req.Feedback != nil {
		current.Feedback = *req.Feedback
	}
	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		return Interview{}, err
	}
	s.events.Emit(ctx, events.Event{
		Kind:       events.KindUpdated,
		Resource:   string(authz.ResourceInterview),
		ResourceID: id.String(),
		ActorID:    actor,
	})
	return updated, nil
}

// Delete removes the interview.
func (s *Service) Delete(ctx context.Context, projectID, id uuid.UUID, actor int64) error {
	if err := s.repo.Delete(ctx, projectID, id); err != nil {
		return err
	}
	s.events.Emit(ctx, events.Event{
		Kind:       events.KindDeleted,
		Resource:   string(authz.ResourceInterview),
		ResourceID: id.String(),
		ActorID:    actor,
	})
	return nil
}
