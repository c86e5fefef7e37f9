package interviews

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
	ListByProject(ctx context.Context, projectID uuid.UUID, resumeID *uuid.UUID) ([]Interview, error)
	Get(ctx context.Context, projectID, id uuid.UUID) (Interview, error)
	Create(ctx context.Context, interview Interview) (Interview, error)
	Update(ctx context.Context, interview Interview) (Interview, error)
	Delete(ctx context.Context, projectID, id uuid.UUID) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const interviewColumns = `id, project_id, resume_id, interviewer_id, scheduled_at, status, feedback, created_by, created_at, updated_at`

func (r *repository) ListByProject(ctx context.Context, projectID uuid.UUID, resumeID *uuid.UUID) ([]Interview, error) {
	query := `SELECT ` + interviewColumns + ` FROM interviews WHERE project_id = $1`
	args := []any{projectID}
	if resumeID != nil {
		query += ` AND resume_id = $2`
		args = append(args, *resumeID)
	}
	query += ` ORDER BY scheduled_at`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var interviews []Interview
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, err
		}
		interviews = append(interviews, iv)
	}
	return interviews, rows.Err()
}

func (r *repository) Get(ctx context.Context, projectID, id uuid.UUID) (Interview, error) {
	const query = `SELECT ` + interviewColumns + ` FROM interviews WHERE project_id = $1 AND id = $2`
	iv, err := scanInterview(r.pool.QueryRow(ctx, query, projectID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Interview{}, httpx.Fail(httpx.ErrNotFound, authz.ReasonResourceNotFound)
		}
		return Interview{}, err
	}
	return iv, nil
}

func (r *repository) Create(ctx context.Context, interview Interview) (Interview, error) {
	if interview.ID == uuid.Nil {
		interview.ID = uuid.New()
	}
	now := time.Now().UTC()
	interview.CreatedAt = now
	interview.UpdatedAt = now
	if interview.Status == "" {
		interview.Status = StatusScheduled
	}
	const query = `INSERT INTO interviews (id, project_id, resume_id, interviewer_id, scheduled_at, status, feedback, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + interviewColumns
	return scanInterview(r.pool.QueryRow(ctx, query,
		interview.ID, interview.ProjectID, interview.ResumeID, interview.InterviewerID,
		interview.ScheduledAt, interview.Status, interview.Feedback, interview.CreatedBy,
		interview.CreatedAt, interview.UpdatedAt))
}

func (r *repository) Update(ctx context.Context, interview Interview) (Interview, error) {
	const query = `UPDATE interviews SET scheduled_at = $3, status = $4, feedback = $5, updated_at = $6
		WHERE project_id = $1 AND id = $2
		RETURNING ` + interviewColumns
	iv, err := scanInterview(r.pool.QueryRow(ctx, query,
		interview.ProjectID, interview.ID, interview.ScheduledAt, interview.Status,
		interview.Feedback, time.Now().UTC()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Interview{}, httpx.Fail(httpx.ErrNotFound, authz.ReasonResourceNotFound)
		}
		return Interview{}, err
	}
	return iv, nil
}

func (r *repository) Delete(ctx context.Context, projectID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM interviews WHERE project_id = $1 AND id = $2`, projectID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.Fail(httpx.ErrNotFound, authz.ReasonResourceNotFound)
	}
	return nil
}

func scanInterview(row pgx.Row) (Interview, error) {
	var iv Interview
	err := row.Scan(&iv.ID, &iv.ProjectID, &iv.ResumeID, &iv.InterviewerID, &iv.ScheduledAt,
		&iv.Status, &iv.Feedback, &iv.CreatedBy, &iv.CreatedAt, &iv.UpdatedAt)
	return iv, err
}
