package projects

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/crewbase/crewbase/internal/authz"
	"github.com/crewbase/crewbase/internal/events"
	"github.com/crewbase/crewbase/internal/managers"
	"github.com/crewbase/crewbase/internal/platform/db"
)

// Service wraps project business rules.
type Service struct {
	repo        Repository
	assignments managers.Repository
	events      events.Sink
	runTx       db.TxRunner
}

// NewService constructs a Service.
func NewService(repo Repository, assignments managers.Repository, sink events.Sink, runTx db.TxRunner) *Service {
	return &Service{repo: repo, assignments: assignments, events: sink, runTx: runTx}
}

// List returns projects matching the filters plus the unpaged total.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Project, int, error) {
	return s.repo.List(ctx, filters)
}

// Get loads one project.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Project, error) {
	return s.repo.Get(ctx, id)
}

// Create inserts the project under its company and seeds the creator as the
// project's first owner in the same transaction. Project ownership is
// independent of company ownership and must be assigned explicitly.
func (s *Service) Create(ctx context.Context, companyID uuid.UUID, req CreateProjectRequest, createdBy int64) (Project, error) {
	var created Project
	err := s.runTx(ctx, func(tx pgx.Tx) error {
		var err error
		created, err = s.repo.CreateTx(ctx, tx, Project{
			CompanyID:   companyID,
			Name:        req.Name,
			Description: req.Description,
			CreatedBy:   createdBy,
		})
		if err != nil {
			return err
		}
		_, err = s.assignments.InsertTx(ctx, tx, managers.Assignment{
			EntityType: authz.ResourceProject,
			EntityID:   created.ID,
			UserID:     createdBy,
			Type:       authz.AssignmentOwner,
			CreatedBy:  createdBy,
		})
		return err
	})
	if err != nil {
		return Project{}, err
	}
	s.events.Emit(ctx, events.Event{
		Kind:       events.KindCreated,
		Resource:   string(authz.ResourceProject),
		ResourceID: created.ID.String(),
		ActorID:    createdBy,
	})
	return created, nil
}

// Update applies the non-nil fields.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateProjectRequest, actor int64) (Project, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Project{}, err
	}
	if req.Name != nil {
		current.Name = *req.Name
	}
	if req.Description != nil {
		current.Description = *req.Description
	}
	updated, err := s.repo.Update(ctx, id, current)
	if err != nil {
		return Project{}, err
	}
	s.events.Emit(ctx, events.Event{
		Kind:       events.KindUpdated,
		Resource:   string(authz.ResourceProject),
		ResourceID: id.String(),
		ActorID:    actor,
	})
	return updated, nil
}

// Delete soft-deletes the project and cascades removal of its manager
// assignments atomically with the soft-delete.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, actor int64) error {
	err := s.runTx(ctx, func(tx pgx.Tx) error {
		if err := s.repo.SoftDeleteTx(ctx, tx, id); err != nil {
			return err
		}
		return s.assignments.RemoveForEntityTx(ctx, tx, authz.ResourceProject, id)
	})
	if err != nil {
		return err
	}
	s.events.Emit(ctx, events.Event{
		Kind:       events.KindDeleted,
		Resource:   string(authz.ResourceProject),
		ResourceID: id.String(),
		ActorID:    actor,
	})
	return nil
}

// SetActive activates or deactivates the project.
func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool, actor int64) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return err
	}
	kind := events.KindDeactivated
	if active {
		kind = events.KindActivated
	}
	s.events.Emit(ctx, events.Event{
		Kind:       kind,
		Resource:   string(authz.ResourceProject),
		ResourceID: id.String(),
		ActorID:    actor,
	})
	return nil
}
