package resumes

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

// Repository provides PostgreSQL backed persistence, keyed by project.
type Repository interface {
	ListByProject(ctx context.Context, projectID uuid.UUID, positionID *uuid.UUID) ([]Resume, error)
	Get(ctx context.Context, projectID, id uuid.UUID) (Resume, error)
	Create(ctx context.Context, resume Resume) (Resume, error)
	Update(ctx context.Context, resume Resume) (Resume, error)
	Delete(ctx context.Context, projectID, id uuid.UUID) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const resumeColumns = `id, project_id, position_id, candidate_name, email, phone, file_url, status, notes, created_by, created_at, updated_at`

func (r *repository) ListByProject(ctx context.Context, projectID uuid.UUID, positionID *uuid.UUID) ([]Resume, error) {
	query := `SELECT ` + resumeColumns + ` FROM resumes WHERE project_id = $1`
	args := []any{projectID}
	if positionID != nil {
		query += ` AND position_id = $2`
		args = append(args, *positionID)
	}
	query += ` ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var resumes []Resume
	for rows.Next() {
		res, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		resumes = append(resumes, res)
	}
	return resumes, rows.Err()
}

func (r *repository) Get(ctx context.Context, projectID, id uuid.UUID) (Resume, error) {
	const query = `SELECT ` + resumeColumns + ` FROM resumes WHERE project_id = $1 AND id = $2`
	res, err := scanResume(r.pool.QueryRow(ctx, query, projectID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Resume{}, httpx.Fail(httpx.ErrNotFound, authz.ReasonResourceNotFound)
		}
		return Resume{}, err
	}
	return res, nil
}

func (r *repository) Create(ctx context.Context, resume Resume) (Resume, error) {
	if resume.ID == uuid.Nil {
		resume.ID = uuid.New()
	}
	now := time.Now().UTC()
	resume.CreatedAt = now
	resume.UpdatedAt = now
	if resume.Status == "" {
		resume.Status = StatusReceived
	}
	const query = `INSERT INTO resumes (id, project_id, position_id, candidate_name, email, phone, file_url, status, notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + resumeColumns
	return scanResume(r.pool.QueryRow(ctx, query,
		resume.ID, resume.ProjectID, resume.PositionID, resume.CandidateName, resume.Email,
		resume.Phone, resume.FileURL, resume.Status, resume.Notes, resume.CreatedBy,
		resume.CreatedAt, resume.UpdatedAt))
}

func (r *repository) Update(ctx context.Context, resume Resume) (Resume, error) {
	const query = `UPDATE resumes SET status = $3, notes = $4, updated_at = $5
		WHERE project_id = $1 AND id = $2
		RETURNING ` + resumeColumns
	res, err := scanResume(r.pool.QueryRow(ctx, query, resume.ProjectID, resume.ID, resume.Status, resume.Notes, time.Now().UTC()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Resume{}, httpx.Fail(httpx.ErrNotFound, authz.ReasonResourceNotFound)
		}
		return Resume{}, err
	}
	return res, nil
}

func (r *repository) Delete(ctx context.Context, projectID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM resumes WHERE project_id = $1 AND id = $2`, projectID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.Fail(httpx.ErrNotFound, authz.ReasonResourceNotFound)
	}
	return nil
}

func scanResume(row pgx.Row) (Resume, error) {
	var res Resume
	err := row.Scan(&res.ID, &res.ProjectID, &res.PositionID, &res.CandidateName, &res.Email,
		&res.Phone, &res.FileURL, &res.Status, &res.Notes, &res.CreatedBy, &res.CreatedAt, &res.UpdatedAt)
	return res, err
}
