package companies

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/crewbase/crewbase/internal/authz"
	"github.com/crewbase/crewbase/internal/events"
	"github.com/crewbase/crewbase/internal/managers"
	"github.com/crewbase/crewbase/internal/platform/db"
)

// Service wraps company business rules. Authorization has already happened
// in the pipeline by the time these methods run.
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

// List returns companies matching the filters plus the unpaged total.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Company, int, error) {
	return s.repo.List(ctx, filters)
}

// Get loads one company.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Company, error) {
	return s.repo.Get(ctx, id)
}

// Create inserts the company and seeds the creator as its first owner in the
// same transaction, so the entity never exists without an owner.
func (s *Service) Create(ctx context.Context, req CreateCompanyRequest, createdBy int64) (Company, error) {
	var created Company
	err := s.runTx(ctx, func(tx pgx.Tx) error {
		var err error
		created, err = s.repo.CreateTx(ctx, tx, Company{
			Name:      req.Name,
			Industry:  req.Industry,
			Website:   req.Website,
			CreatedBy: createdBy,
		})
		if err != nil {
			return err
		}
		_, err = s.assignments.InsertTx(ctx, tx, managers.Assignment{
			EntityType: authz.ResourceCompany,
			EntityID:   created.ID,
			UserID:     createdBy,
			Type:       authz.AssignmentOwner,
			CreatedBy:  createdBy,
		})
		return err
	})
	if err != nil {
		return Company{}, err
	}
	s.events.Emit(ctx, events.Event{
		Kind:       events.KindCreated,
		Resource:   string(authz.ResourceCompany),
		ResourceID: created.ID.String(),
		ActorID:    createdBy,
	})
	return created, nil
}

// Update applies the non-nil fields.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateCompanyRequest, actor int64) (Company, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Company{}, err
	}
	if req.Name != nil {
		current.Name = *req.Name
	}
	if req.Industry != nil {
		current.Industry = *req.Industry
	}
	if req.Website != nil {
		current.Website = *req.Website
	}
	updated, err := s.repo.Update(ctx, id, current)
	if err != nil {
		return Company{}, err
	}
	s.events.Emit(ctx, events.Event{
		Kind:       events.KindUpdated,
		Resource:   string(authz.ResourceCompany),
		ResourceID: id.String(),
		ActorID:    actor,
	})
	return updated, nil
}

// Delete soft-deletes the company and cascades removal of its manager
// assignments atomically with the soft-delete.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, actor int64) error {
	err := s.runTx(ctx, func(tx pgx.Tx) error {
		if err := s.repo.SoftDeleteTx(ctx, tx, id); err != nil {
			return err
		}
		return s.assignments.RemoveForEntityTx(ctx, tx, authz.ResourceCompany, id)
	})
	if err != nil {
		return err
	}
	s.events.Emit(ctx, events.Event{
		Kind:       events.KindDeleted,
		Resource:   string(authz.ResourceCompany),
		ResourceID: id.String(),
		ActorID:    actor,
	})
	return nil
}

// SetActive activates or deactivates the company.
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
		Resource:   string(authz.ResourceCompany),
		ResourceID: id.String(),
		ActorID:    actor,
	})
	return nil
}
