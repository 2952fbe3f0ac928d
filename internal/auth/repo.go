package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/folio-api/folio/internal/platform/httpx"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	Create(ctx context.Context, admin *Admin) error
	FindByEmail(ctx context.Context, email string) (*Admin, error)
	FindByID(ctx context.Context, id int64) (*Admin, error)
	UpdateProfile(ctx context.Context, id int64, username, email string) (*Admin, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
	DashboardStats(ctx context.Context) (DashboardStats, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const adminColumns = "id, username, email, password_hash, role, created_at, updated_at"

// Create inserts a new admin account.
func (r *PGRepository) Create(ctx context.Context, admin *Admin) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO admins (username, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, admin.Username, admin.Email, admin.PasswordHash, admin.Role).
		Scan(&admin.ID, &admin.CreatedAt, &admin.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return httpx.ErrDuplicate
		}
		return err
	}
	return nil
}

// FindByEmail fetches an admin by email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*Admin, error) {
	return r.scanOne(r.pool.QueryRow(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE email = $1`, email))
}

// FindByID fetches an admin by id.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*Admin, error) {
	return r.scanOne(r.pool.QueryRow(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE id = $1`, id))
}

// UpdateProfile replaces username and email, returning the updated row.
func (r *PGRepository) UpdateProfile(ctx context.Context, id int64, username, email string) (*Admin, error) {
	admin, err := r.scanOne(r.pool.QueryRow(ctx, `
		UPDATE admins
		SET username = $2, email = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+adminColumns, id, username, email))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, httpx.ErrDuplicate
		}
		return nil, err
	}
	return admin, nil
}

// UpdatePassword replaces the stored credential hash.
func (r *PGRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE admins SET password_hash = $2, updated_at = now() WHERE id = $1`, id, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// DashboardStats aggregates project and contact counts.
func (r *PGRepository) DashboardStats(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM projects),
			(SELECT COUNT(*) FROM projects WHERE featured),
			(SELECT COUNT(*) FROM contacts),
			(SELECT COUNT(*) FROM contacts WHERE status = 'new')
	`).Scan(&stats.Projects, &stats.FeaturedProjects, &stats.Contacts, &stats.NewContacts)
	if err != nil {
		return DashboardStats{}, err
	}
	return stats, nil
}

func (r *PGRepository) scanOne(row pgx.Row) (*Admin, error) {
	var admin Admin
	err := row.Scan(&admin.ID, &admin.Username, &admin.Email, &admin.PasswordHash,
		&admin.Role, &admin.CreatedAt, &admin.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &admin, nil
}

var _ Repository = (*PGRepository)(nil)
