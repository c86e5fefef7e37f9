package managers

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crewbase/crewbase/internal/authz"
	"github.com/crewbase/crewbase/internal/platform/db"
	"github.com/crewbase/crewbase/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for assignments.
// Uniqueness is enforced by the (entity_type, entity_id, user_id) index;
// the last-owner invariant is re-validated under row locks at commit time.
type Repository interface {
	Find(ctx context.Context, entityType authz.ResourceType, entityID uuid.UUID, userID int64) (*Assignment, error)
	ListByEntity(ctx context.Context, entityType authz.ResourceType, entityID uuid.UUID) ([]Assignment, error)
	Insert(ctx context.Context, a Assignment) (Assignment, error)
	Remove(ctx context.Context, entityType authz.ResourceType, entityID uuid.UUID, userID int64) error
	InsertTx(ctx context.Context, tx pgx.Tx, a Assignment) (Assignment, error)
	RemoveForEntityTx(ctx context.Context, tx pgx.Tx, entityType authz.ResourceType, entityID uuid.UUID) error
	FindAssignment(ctx context.Context, entityType authz.ResourceType, entityID uuid.UUID, userID int64) (*authz.Assignment, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const assignmentColumns = `id, entity_type, entity_id, user_id, type, created_by, created_at`

// Find returns the assignment for the composite key, or nil when absent.
func (r *repository) Find(ctx context.Context, entityType authz.ResourceType, entityID uuid.UUID, userID int64) (*Assignment, error) {
	const query = `SELECT ` + assignmentColumns + ` FROM manager_assignments WHERE entity_type = $1 AND entity_id = $2 AND user_id = $3`
	row := r.pool.QueryRow(ctx, query, entityType, entityID, userID)
	a, err := scanAssignment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// FindAssignment adapts Find to the evaluator's view of an assignment.
func (r *repository) FindAssignment(ctx context.Context, entityType authz.ResourceType, entityID uuid.UUID, userID int64) (*authz.Assignment, error) {
	a, err := r.Find(ctx, entityType, entityID, userID)
	if err != nil || a == nil {
		return nil, err
	}
	return &authz.Assignment{
		EntityType: a.EntityType,
		EntityID:   a.EntityID,
		UserID:     a.UserID,
		Type:       a.Type,
	}, nil
}

// ListByEntity returns every assignment on the entity, owners first.
func (r *repository) ListByEntity(ctx context.Context, entityType authz.ResourceType, entityID uuid.UUID) ([]Assignment, error) {
	const query = `SELECT ` + assignmentColumns + ` FROM manager_assignments WHERE entity_type = $1 AND entity_id = $2 ORDER BY type DESC, created_at`
	rows, err := r.pool.Query(ctx, query, entityType, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var assignments []Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// Insert creates an assignment, failing with already_a_manager when the
// composite key exists regardless of the requested type.
func (r *repository) Insert(ctx context.Context, a Assignment) (Assignment, error) {
	return insert(ctx, r.pool, a)
}

// InsertTx creates an assignment inside an open transaction. Company and
// project creation uses this to seed the first owner atomically.
func (r *repository) InsertTx(ctx context.Context, tx pgx.Tx, a Assignment) (Assignment, error) {
	return insert(ctx, tx, a)
}

type execQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insert(ctx context.Context, q execQuerier, a Assignment) (Assignment, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO manager_assignments (id, entity_type, entity_id, user_id, type, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + assignmentColumns
	row := q.QueryRow(ctx, query, a.ID, a.EntityType, a.EntityID, a.UserID, a.Type, a.CreatedBy, a.CreatedAt)
	created, err := scanAssignment(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Assignment{}, httpx.Fail(httpx.ErrAlreadyExists, authz.ReasonAlreadyManager)
		}
		return Assignment{}, err
	}
	return created, nil
}

// Remove deletes the assignment, re-validating the at-least-one-owner
// invariant against committed state: the entity's assignment rows are locked
// for the duration of the transaction, so two concurrent removals cannot
// both observe a second owner.
func (r *repository) Remove(ctx context.Context, entityType authz.ResourceType, entityID uuid.UUID, userID int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		const lockQuery = `SELECT ` + assignmentColumns + ` FROM manager_assignments WHERE entity_type = $1 AND entity_id = $2 FOR UPDATE`
		rows, err := tx.Query(ctx, lockQuery, entityType, entityID)
		if err != nil {
			return err
		}
		var assignments []Assignment
		for rows.Next() {
			a, err := scanAssignment(rows)
			if err != nil {
				rows.Close()
				return err
			}
			assignments = append(assignments, a)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		if err := checkRemoval(assignments, userID); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `DELETE FROM manager_assignments WHERE entity_type = $1 AND entity_id = $2 AND user_id = $3`, entityType, entityID, userID)
		return err
	})
}

// RemoveForEntityTx deletes all assignments for an entity inside the same
// transaction that soft-deletes the entity itself.
func (r *repository) RemoveForEntityTx(ctx context.Context, tx pgx.Tx, entityType authz.ResourceType, entityID uuid.UUID) error {
	_, err := tx.Exec(ctx, `DELETE FROM manager_assignments WHERE entity_type = $1 AND entity_id = $2`, entityType, entityID)
	return err
}

func scanAssignment(row pgx.Row) (Assignment, error) {
	var a Assignment
	err := row.Scan(&a.ID, &a.EntityType, &a.EntityID, &a.UserID, &a.Type, &a.CreatedBy, &a.CreatedAt)
	return a, err
}
