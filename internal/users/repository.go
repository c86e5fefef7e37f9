package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crewbase/crewbase/internal/authz"
	"github.com/crewbase/crewbase/internal/platform/httpx"
)

const reasonEmailTaken = "email_already_registered"

// Repository provides PostgreSQL backed persistence for user accounts.
type Repository interface {
	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id int64) (User, error)
	FindByEmail(ctx context.Context, email string) (User, string, error)
	Create(ctx context.Context, user User, passwordHash string) (User, error)
	SetRole(ctx context.Context, id, roleID int64) (User, error)
	SetActive(ctx context.Context, id int64, active bool) (User, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const userColumns = `id, email, name, role_id, is_active, created_at, updated_at`

func (r *repository) List(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, httpx.Fail(httpx.ErrNotFound, authz.ReasonResourceNotFound)
		}
		return User{}, err
	}
	return user, nil
}

// FindByEmail returns the user and its password hash for authentication.
func (r *repository) FindByEmail(ctx context.Context, email string) (User, string, error) {
	var (
		user User
		hash string
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, role_id, is_active, created_at, updated_at, password_hash FROM users WHERE email = $1`, email).
		Scan(&user.ID, &user.Email, &user.Name, &user.RoleID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, "", httpx.Fail(httpx.ErrNotFound, authz.ReasonResourceNotFound)
		}
		return User{}, "", err
	}
	return user, hash, nil
}

func (r *repository) Create(ctx context.Context, user User, passwordHash string) (User, error) {
	created, err := scanUser(r.pool.QueryRow(ctx,
		`INSERT INTO users (email, name, password_hash, role_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, true, now(), now())
		RETURNING `+userColumns,
		user.Email, user.Name, passwordHash, user.RoleID))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, httpx.Fail(httpx.ErrAlreadyExists, reasonEmailTaken)
		}
		return User{}, err
	}
	return created, nil
}

func (r *repository) SetRole(ctx context.Context, id, roleID int64) (User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx,
		`UPDATE users SET role_id = $2, updated_at = now() WHERE id = $1 RETURNING `+userColumns, id, roleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, httpx.Fail(httpx.ErrNotFound, authz.ReasonResourceNotFound)
		}
		return User{}, err
	}
	return user, nil
}

func (r *repository) SetActive(ctx context.Context, id int64, active bool) (User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx,
		`UPDATE users SET is_active = $2, updated_at = now() WHERE id = $1 RETURNING `+userColumns, id, active))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, httpx.Fail(httpx.ErrNotFound, authz.ReasonResourceNotFound)
		}
		return User{}, err
	}
	return user, nil
}

func scanUser(row pgx.Row) (User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.RoleID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	return user, err
}
