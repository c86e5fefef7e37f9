package users

import (
	"context"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/crewbase/crewbase/internal/authz"
	"github.com/crewbase/crewbase/internal/events"
)

// Service handles account business logic.
type Service struct {
	repo   Repository
	events events.Sink
}

// NewService builds a Service instance.
func NewService(repo Repository, sink events.Sink) *Service {
	return &Service{repo: repo, events: sink}
}

// List returns all accounts.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Get loads one account.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.repo.Get(ctx, id)
}

// Create registers an account with a bcrypt password hash.
func (s *Service) Create(ctx context.Context, req CreateUserRequest, actor int64) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	created, err := s.repo.Create(ctx, User{
		Email:  req.Email,
		Name:   req.Name,
		RoleID: req.RoleID,
	}, string(hash))
	if err != nil {
		return User{}, err
	}
	s.events.Emit(ctx, events.Event{
		Kind:       events.KindCreated,
		Resource:   string(authz.ResourceUser),
		ResourceID: strconv.FormatInt(created.ID, 10),
		ActorID:    actor,
	})
	return created, nil
}

// SetRole reassigns the account's role. The permission catalog caches per
// role, not per user, so no invalidation is needed here.
func (s *Service) SetRole(ctx context.Context, id, roleID int64, actor int64) (User, error) {
	user, err := s.repo.SetRole(ctx, id, roleID)
	if err != nil {
		return User{}, err
	}
	s.events.Emit(ctx, events.Event{
		Kind:       events.KindUpdated,
		Resource:   string(authz.ResourceUser),
		ResourceID: strconv.FormatInt(id, 10),
		ActorID:    actor,
	})
	return user, nil
}

// SetActive toggles the account.
func (s *Service) SetActive(ctx context.Context, id int64, active bool, actor int64) (User, error) {
	user, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		return User{}, err
	}
	kind := events.KindActivated
	if !active {
		kind = events.KindDeactivated
	}
	s.events.Emit(ctx, events.Event{
		Kind:       kind,
		Resource:   string(authz.ResourceUser),
		ResourceID: strconv.FormatInt(id, 10),
		ActorID:    actor,
	})
	return user, nil
}
