package companies

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
	List(ctx context.Context, filters ListFilters) ([]Company, int, error)
	Get(ctx context.Context, id uuid.UUID) (Company, error)
	CreateTx(ctx context.Context, tx pgx.Tx, company Company) (Company, error)
	Update(ctx context.Context, id uuid.UUID, company Company) (Company, error)
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

const companyColumns = `id, name, industry, website, is_active, created_by, created_at, updated_at`

// List uses a dynamic query due to filter combinations.
func (r *repository) List(ctx context.Context, filters ListFilters) ([]Company, int, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE deleted_at IS NULL`
	countQuery := `SELECT COUNT(*) FROM companies WHERE deleted_at IS NULL`
	args := []any{}
	argCount := 0

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

	var companies []Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, 0, err
		}
		companies = append(companies, c)
	}
	return companies, total, rows.Err()
}

// Get loads a live company by id.
func (r *repository) Get(ctx context.Context, id uuid.UUID) (Company, error) {
	const query = `SELECT ` + companyColumns + ` FROM companies WHERE id = $1 AND deleted_at IS NULL`
	c, err := scanCompany(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Company{}, httpx.Fail(httpx.ErrNotFound, authz.ReasonResourceNotFound)
		}
		return Company{}, err
	}
	return c, nil
}

// CreateTx inserts a company inside an open transaction so the creator's
// owner assignment lands atomically with the row.
func (r *repository) CreateTx(ctx context.Context, tx pgx.Tx, company Company) (Company, error) {
	if company.ID == uuid.Nil {
		company.ID = uuid.New()
	}
	now := time.Now().UTC()
	company.CreatedAt = now
	company.UpdatedAt = now
	company.IsActive = true
	const query = `INSERT INTO companies (id, name, industry, website, is_active, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + companyColumns
	return scanCompany(tx.QueryRow(ctx, query,
		company.ID, company.Name, company.Industry, company.Website,
		company.IsActive, company.CreatedBy, company.CreatedAt, company.UpdatedAt))
}

// Update rewrites the mutable fields.
func (r *repository) Update(ctx context.Context, id uuid.UUID, company Company) (Company, error) {
	const query = `UPDATE companies SET name = $2, industry = $3, website = $4, updated_at = $5
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + companyColumns
	c, err := scanCompany(r.pool.QueryRow(ctx, query, id, company.Name, company.Industry, company.Website, time.Now().UTC()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Company{}, httpx.Fail(httpx.ErrNotFound, authz.ReasonResourceNotFound)
		}
		return Company{}, err
	}
	return c, nil
}

// SetActive flips the activation flag.
func (r *repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE companies SET is_active = $2, updated_at = $3 WHERE id = $1 AND deleted_at IS NULL`, id, active, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.Fail(httpx.ErrNotFound, authz.ReasonResourceNotFound)
	}
	return nil
}

// SoftDeleteTx marks the company deleted inside an open transaction; the
// caller removes its assignments in the same transaction.
func (r *repository) SoftDeleteTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	tag, err := tx.Exec(ctx, `UPDATE companies SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`, id, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.Fail(httpx.ErrNotFound, authz.ReasonResourceNotFound)
	}
	return nil
}

func scanCompany(row pgx.Row) (Company, error) {
	var c Company
	err := row.Scan(&c.ID, &c.Name, &c.Industry, &c.Website, &c.IsActive, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
