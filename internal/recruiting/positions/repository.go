package positions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crewbase/crewbase/internal/authz"
	"github.com/crewbase/crewbase/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence. Every lookup is keyed
// by (project, position) so a position is never reachable through a foreign
// project's routes.
type Repository interface {
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]Position, error)
	Get(ctx context.Context, projectID, id uuid.UUID) (Position, error)
	Create(ctx context.Context, position Position) (Position, error)
	Update(ctx context.Context, position Position) (Position, error)
	Delete(ctx context.Context, projectID, id uuid.UUID) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const positionColumns = `id, project_id, title, seniority, headcount, status, created_by, created_at, updated_at`

func (r *repository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]Position, error) {
	const query = `SELECT ` + positionColumns + ` FROM positions WHERE project_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var positions []Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

func (r *repository) Get(ctx context.Context, projectID, id uuid.UUID) (Position, error) {
	const query = `SELECT ` + positionColumns + ` FROM positions WHERE project_id = $1 AND id = $2`
	p, err := scanPosition(r.pool.QueryRow(ctx, query, projectID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Position{}, httpx.Fail(httpx.ErrNotFound, authz.ReasonResourceNotFound)
		}
		return Position{}, err
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, position Position) (Position, error) {
	if position.ID == uuid.Nil {
		position.ID = uuid.New()
	}
	now := time.Now().UTC()
	position.CreatedAt = now
	position.UpdatedAt = now
	if position.Status == "" {
		position.Status = StatusOpen
	}
	const query = `INSERT INTO positions (id, project_id, title, seniority, headcount, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + positionColumns
	return scanPosition(r.pool.QueryRow(ctx, query,
		position.ID, position.ProjectID, position.Title, position.Seniority,
		position.Headcount, position.Status, position.CreatedBy, position.CreatedAt, position.UpdatedAt))
}

func (r *repository) Update(ctx context.Context, position Position) (Position, error) {
	const query = `UPDATE positions SET title = $3, seniority = $4, headcount = $5, status = $6, updated_at = $7
		WHERE project_id = $1 AND id = $2
		RETURNING ` + positionColumns
	p, err := scanPosition(r.pool.QueryRow(ctx, query,
		position.ProjectID, position.ID, position.Title, position.Seniority,
		position.Headcount, position.Status, time.Now().UTC()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Position{}, httpx.Fail(httpx.ErrNotFound, authz.ReasonResourceNotFound)
		}
		return Position{}, err
	}
	return p, nil
}

func (r *repository) Delete(ctx context.Context, projectID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM positions WHERE project_id = $1 AND id = $2`, projectID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.Fail(httpx.ErrNotFound, authz.ReasonResourceNotFound)
	}
	return nil
}

func scanPosition(row pgx.Row) (Position, error) {
	var p Position
	err := row.Scan(&p.ID, &p.ProjectID, &p.Title, &p.Seniority, &p.Headcount, &p.Status, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
