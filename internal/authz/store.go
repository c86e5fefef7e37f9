package authz

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crewbase/crewbase/internal/platform/httpx"
)

// PGScopeStore loads companies and projects directly from PostgreSQL,
// excluding soft-deleted rows.
type PGScopeStore struct {
	pool *pgxpool.Pool
}

// NewPGScopeStore constructs a PGScopeStore.
func NewPGScopeStore(pool *pgxpool.Pool) *PGScopeStore {
	return &PGScopeStore{pool: pool}
}

// FindCompany loads a live company as a scope resource.
func (s *PGScopeStore) FindCompany(ctx context.Context, id uuid.UUID) (Resource, error) {
	const query = `SELECT id, is_active, created_by FROM companies WHERE id = $1 AND deleted_at IS NULL`
	res := Resource{Type: ResourceCompany}
	err := s.pool.QueryRow(ctx, query, id).Scan(&res.ID, &res.IsActive, &res.CreatedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Resource{}, httpx.Fail(httpx.ErrNotFound, ReasonResourceNotFound)
		}
		return Resource{}, err
	}
	return res, nil
}

// FindProject loads a live project as a scope resource; ParentID carries the
// owning company id.
func (s *PGScopeStore) FindProject(ctx context.Context, id uuid.UUID) (Resource, error) {
	const query = `SELECT id, company_id, is_active, created_by FROM projects WHERE id = $1 AND deleted_at IS NULL`
	res := Resource{Type: ResourceProject}
	err := s.pool.QueryRow(ctx, query, id).Scan(&res.ID, &res.ParentID, &res.IsActive, &res.CreatedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Resource{}, httpx.Fail(httpx.ErrNotFound, ReasonResourceNotFound)
		}
		return Resource{}, err
	}
	return res, nil
}
