package authz

import (
	"context"

	"github.com/google/uuid"

	"github.com/crewbase/crewbase/internal/platform/httpx"
)

// Resource is the generic shape of a scope-bearing resource instance.
// Companies have a zero ParentID; a project's ParentID is its company.
type Resource struct {
	Type      ResourceType
	ID        uuid.UUID
	ParentID  uuid.UUID
	IsActive  bool
	CreatedBy int64
}

// ScopeChain is the ownership lineage of the target resource, ordered most
// specific to least specific: [project, company] or [company].
type ScopeChain []Resource

// Target returns the most specific resource in the chain.
func (c ScopeChain) Target() Resource {
	return c[0]
}

// ScopeStore loads live (non-soft-deleted) resources by id.
// Implementations return httpx.ErrNotFound-wrapped errors when absent.
type ScopeStore interface {
	FindCompany(ctx context.Context, id uuid.UUID) (Resource, error)
	FindProject(ctx context.Context, id uuid.UUID) (Resource, error)
}

// ScopeLoader resolves a path-embedded identifier into a ScopeChain.
type ScopeLoader struct {
	store ScopeStore
}

// NewScopeLoader constructs a ScopeLoader.
func NewScopeLoader(store ScopeStore) *ScopeLoader {
	return &ScopeLoader{store: store}
}

// Load validates raw as a resource key and loads the scope chain for the
// given scope kind (company or project). Identifier validation happens
// before any lookup so malformed input never reaches the store.
func (l *ScopeLoader) Load(ctx context.Context, scope ResourceType, raw string) (ScopeChain, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, httpx.Fail(httpx.ErrBadRequest, ReasonInvalidIdentifier)
	}

	switch scope {
	case ResourceCompany:
		company, err := l.store.FindCompany(ctx, id)
		if err != nil {
			return nil, err
		}
		return ScopeChain{company}, nil
	case ResourceProject:
		project, err := l.store.FindProject(ctx, id)
		if err != nil {
			return nil, err
		}
		company, err := l.store.FindCompany(ctx, project.ParentID)
		if err != nil {
			return nil, httpx.Fail(httpx.ErrNotFound, ReasonParentNotFound)
		}
		return ScopeChain{project, company}, nil
	default:
		return nil, httpx.Failf(httpx.ErrBadRequest, ReasonInvalidIdentifier, "unscopable resource type "+string(scope))
	}
}
