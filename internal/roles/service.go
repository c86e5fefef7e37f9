package roles

import (
	"context"
	"strconv"

	"github.com/crewbase/crewbase/internal/authz"
	"github.com/crewbase/crewbase/internal/events"
	"github.com/crewbase/crewbase/internal/platform/httpx"
)

const reasonUnknownPermission = "unknown_permission"

// Catalog is the cache the service invalidates when a role's grants change.
type Catalog interface {
	Invalidate(ctx context.Context, roleID int64)
}

// Service handles role business logic.
type Service struct {
	repo    Repository
	catalog Catalog
	events  events.Sink
}

// NewService builds a Service instance.
func NewService(repo Repository, catalog Catalog, sink events.Sink) *Service {
	return &Service{repo: repo, catalog: catalog, events: sink}
}

// List returns all roles.
func (s *Service) List(ctx context.Context) ([]Role, error) {
	return s.repo.List(ctx)
}

// Get loads one role.
func (s *Service) Get(ctx context.Context, id int64) (Role, error) {
	return s.repo.Get(ctx, id)
}

// Create inserts a new role with an empty permission set.
func (s *Service) Create(ctx context.Context, req CreateRoleRequest, actor int64) (Role, error) {
	role, err := s.repo.Create(ctx, req.Name, req.Description)
	if err != nil {
		return Role{}, err
	}
	s.events.Emit(ctx, events.Event{
		Kind:       events.KindCreated,
		Resource:   string(authz.ResourceRole),
		ResourceID: formatRoleID(role.ID),
		ActorID:    actor,
	})
	return role, nil
}

// Update applies the non-nil fields.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRoleRequest, actor int64) (Role, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Role{}, err
	}
	if req.Name != nil {
		current.Name = *req.Name
	}
	if req.Description != nil {
		current.Description = *req.Description
	}
	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		return Role{}, err
	}
	s.events.Emit(ctx, events.Event{
		Kind:       events.KindUpdated,
		Resource:   string(authz.ResourceRole),
		ResourceID: formatRoleID(id),
		ActorID:    actor,
	})
	return updated, nil
}

// Delete removes a role and drops its cached permission set.
func (s *Service) Delete(ctx context.Context, id int64, actor int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.catalog.Invalidate(ctx, id)
	s.events.Emit(ctx, events.Event{
		Kind:       events.KindDeleted,
		Resource:   string(authz.ResourceRole),
		ResourceID: formatRoleID(id),
		ActorID:    actor,
	})
	return nil
}

// Permissions returns the role's current grant set.
func (s *Service) Permissions(ctx context.Context, roleID int64) ([]Permission, error) {
	if _, err := s.repo.Get(ctx, roleID); err != nil {
		return nil, err
	}
	return s.repo.Permissions(ctx, roleID)
}

// SetPermissions replaces the role's grant set and invalidates the cache so
// the next authorization check sees the new grid.
func (s *Service) SetPermissions(ctx context.Context, roleID int64, perms []Permission, actor int64) error {
	if _, err := s.repo.Get(ctx, roleID); err != nil {
		return err
	}
	for _, p := range perms {
		if !authz.ResourceType(p.Resource).Valid() || !authz.Action(p.Action).Valid() {
			return httpx.Failf(httpx.ErrBadRequest, reasonUnknownPermission, p.Resource+":"+p.Action)
		}
	}
	if err := s.repo.ReplacePermissions(ctx, roleID, perms); err != nil {
		return err
	}
	s.catalog.Invalidate(ctx, roleID)
	s.events.Emit(ctx, events.Event{
		Kind:       events.KindUpdated,
		Resource:   string(authz.ResourceRole),
		ResourceID: formatRoleID(roleID),
		ActorID:    actor,
	})
	return nil
}

func formatRoleID(id int64) string {
	return strconv.FormatInt(id, 10)
}
