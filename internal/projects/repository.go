package projects

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crewbase/crewbase/internal/authz"
	"github.com/crewbase/crewbase/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence. Soft-deleted rows are
// invisible to every read path.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Project, int, error)
	Get(ctx context.Context, id uuid.UUID) (Project, error)
	CreateTx(ctx context.Context, tx pgx.Tx, project Project) (Project, error)
	Update(ctx context.Context, id uuid.UUID, project Project) (Project, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	SoftDeleteTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const projectColumns = `id, company_id, name, description, is_active, created_by, created_at, updated_at`

// List uses a dynamic query due to filter combinations.
func (r *repository) List(ctx context.Context, filters ListFilters) ([]Project, int, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE deleted_at IS NULL`
	countQuery := `SELECT COUNT(*) FROM projects WHERE deleted_at IS NULL`
	args := []any{}
	argCount := 0

	if filters.CompanyID != nil {
		argCount++
		clause := ` AND company_id = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, *filters.CompanyID)
	}
	if filters.Search != "" {
		argCount++
		clause := ` AND name ILIKE $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.IsActive != nil {
		argCount++
		clause := ` AND is_active = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, *filters.IsActive)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY name`
	perPage := filters.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	argCount++
	query += ` LIMIT $` + strconv.Itoa(argCount)
	args = append(args, perPage)
	argCount++
	query += ` OFFSET $` + strconv.Itoa(argCount)
	args = append(args, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, 0, err
		}
		projects = append(projects, p)
	}
	return projects, total, rows.Err()
}

// Get loads a live project by id.
func (r *repository) Get(ctx context.Context, id uuid.UUID) (Project, error) {
	const query = `SELECT ` + projectColumns + ` FROM projects WHERE id = $1 AND deleted_at IS NULL`
	p, err := scanProject(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Project{}, httpx.Fail(httpx.ErrNotFound, authz.ReasonResourceNotFound)
		}
		return Project{}, err
	}
	return p, nil
}

// CreateTx inserts a project inside an open transaction so the creator's
// owner assignment lands atomically with the row.
func (r *repository) CreateTx(ctx context.Context, tx pgx.Tx, project Project) (Project, error) {
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now
	project.IsActive = true
	const query = `INSERT INTO projects (id, company_id, name, description, is_active, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + projectColumns
	return scanProject(tx.QueryRow(ctx, query,
		project.ID, project.CompanyID, project.Name, project.Description,
		project.IsActive, project.CreatedBy, project.CreatedAt, project.UpdatedAt))
}

// Update rewrites the mutable fields.
func (r *repository) Update(ctx context.Context, id uuid.UUID, project Project) (Project, error) {
	const query = `UPDATE projects SET name = $2, description = $3, updated_at = $4
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + projectColumns
	p, err := scanProject(r.pool.QueryRow(ctx, query, id, project.Name, project.Description, time.Now().UTC()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Project{}, httpx.Fail(httpx.ErrNotFound, authz.ReasonResourceNotFound)
		}
		return Project{}, err
	}
	return p, nil
}

// SetActive flips the activation flag.
func (r *repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE projects SET is_active = $2, updated_at = $3 WHERE id = $1 AND deleted_at IS NULL`, id, active, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.Fail(httpx.ErrNotFound, authz.ReasonResourceNotFound)
	}
	return nil
}

// SoftDeleteTx marks the project deleted inside an open transaction; the
// caller removes its assignments in the same transaction.
func (r *repository) SoftDeleteTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	tag, err := tx.Exec(ctx, `UPDATE projects SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`, id, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.Fail(httpx.ErrNotFound, authz.ReasonResourceNotFound)
	}
	return nil
}

func scanProject(row pgx.Row) (Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.CompanyID, &p.Name, &p.Description, &p.IsActive, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
