package roles

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crewbase/crewbase/internal/authz"
	"github.com/crewbase/crewbase/internal/platform/db"
	"github.com/crewbase/crewbase/internal/platform/httpx"
)

const reasonRoleExists = "role_already_exists"

// Repository provides PostgreSQL backed persistence for roles and
// their permission grants.
type Repository interface {
	List(ctx context.Context) ([]Role, error)
	Get(ctx context.Context, id int64) (Role, error)
	Create(ctx context.Context, name, description string) (Role, error)
	Update(ctx context.Context, role Role) (Role, error)
	Delete(ctx context.Context, id int64) error
	Permissions(ctx context.Context, roleID int64) ([]Permission, error)
	ReplacePermissions(ctx context.Context, roleID int64, perms []Permission) error

	// RolePermissions makes the repository usable as the authorization
	// catalog source.
	RolePermissions(ctx context.Context, roleID int64) (authz.PermissionSet, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description, created_at, updated_at FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx, `SELECT id, name, description, created_at, updated_at FROM roles WHERE id = $1`, id).
		Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, httpx.Fail(httpx.ErrNotFound, authz.ReasonResourceNotFound)
		}
		return Role{}, err
	}
	return role, nil
}

func (r *repository) Create(ctx context.Context, name, description string) (Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx, `INSERT INTO roles (name, description, created_at, updated_at)
		VALUES ($1, $2, now(), now())
		RETURNING id, name, description, created_at, updated_at`, name, description).
		Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Role{}, httpx.Fail(httpx.ErrAlreadyExists, reasonRoleExists)
		}
		return Role{}, err
	}
	return role, nil
}

func (r *repository) Update(ctx context.Context, role Role) (Role, error) {
	err := r.pool.QueryRow(ctx, `UPDATE roles SET name = $2, description = $3, updated_at = $4
		WHERE id = $1
		RETURNING id, name, description, created_at, updated_at`,
		role.ID, role.Name, role.Description, time.Now().UTC()).
		Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, httpx.Fail(httpx.ErrNotFound, authz.ReasonResourceNotFound)
		}
		return Role{}, err
	}
	return role, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.Fail(httpx.ErrNotFound, authz.ReasonResourceNotFound)
	}
	return nil
}

func (r *repository) Permissions(ctx context.Context, roleID int64) ([]Permission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT resource, action FROM role_permissions WHERE role_id = $1 ORDER BY resource, action`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var perms []Permission
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.Resource, &p.Action); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

// ReplacePermissions swaps the role's whole grant set in one transaction
// so concurrent readers never observe a partial grid.
func (r *repository) ReplacePermissions(ctx context.Context, roleID int64, perms []Permission) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
			return err
		}
		for _, p := range perms {
			if _, err := tx.Exec(ctx,
				`INSERT INTO role_permissions (role_id, resource, action) VALUES ($1, $2, $3)`,
				roleID, p.Resource, p.Action); err != nil {
				return err
			}
		}
		return nil
	})
}

// RolePermissions loads the grant set for the authorization catalog.
func (r *repository) RolePermissions(ctx context.Context, roleID int64) (authz.PermissionSet, error) {
	perms, err := r.Permissions(ctx, roleID)
	if err != nil {
		return nil, err
	}
	pairs := make([]string, 0, len(perms))
	for _, p := range perms {
		pairs = append(pairs, p.Resource+":"+p.Action)
	}
	return authz.NewPermissionSet(pairs), nil
}
