package contacts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/folio-api/folio/internal/platform/httpx"
)

// Repository defines persistence operations for contact submissions.
type Repository interface {
	Create(ctx context.Context, contact *Contact) error
	Get(ctx context.Context, id int64) (*Contact, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*Contact, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, req ListRequest) ([]Contact, int, error)
	Stats(ctx context.Context) (Stats, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const contactColumns = "id, name, email, message, status, ip_address, user_agent, created_at, updated_at"

// Create inserts a contact submission.
func (r *PGRepository) Create(ctx context.Context, contact *Contact) error {
	if contact.Status == "" {
		contact.Status = StatusNew
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO contacts (name, email, message, status, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, contact.Name, contact.Email, contact.Message, contact.Status,
		contact.IPAddress, contact.UserAgent).
		Scan(&contact.ID, &contact.CreatedAt, &contact.UpdatedAt)
}

// Get fetches a contact by id.
func (r *PGRepository) Get(ctx context.Context, id int64) (*Contact, error) {
	return scanContact(r.pool.QueryRow(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id))
}

// UpdateStatus replaces the status, returning the updated row.
func (r *PGRepository) UpdateStatus(ctx context.Context, id int64, status string) (*Contact, error) {
	return scanContact(r.pool.QueryRow(ctx, `
		UPDATE contacts SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+contactColumns, id, status))
}

// Delete removes a contact record.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// List returns a filtered, paginated slice plus the total match count,
// newest first.
func (r *PGRepository) List(ctx context.Context, req ListRequest) ([]Contact, int, error) {
	whereClause := ""
	var args []interface{}
	argPos := 1
	if req.Status != "" {
		whereClause = fmt.Sprintf("WHERE status = $%d", argPos)
		args = append(args, req.Status)
		argPos++
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM contacts %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}

	query := fmt.Sprintf(`
		SELECT %s FROM contacts
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, contactColumns, whereClause, argPos, argPos+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Contact
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *contact)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

// Stats aggregates per-status counts.
func (r *PGRepository) Stats(ctx context.Context) (Stats, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM contacts GROUP BY status ORDER BY status`)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()

	stats := Stats{Statuses: []StatusCount{}}
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return Stats{}, err
		}
		stats.Statuses = append(stats.Statuses, sc)
		stats.Total += sc.Count
	}
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

func scanContact(row pgx.Row) (*Contact, error) {
	var c Contact
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Message, &c.Status,
		&c.IPAddress, &c.UserAgent, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

var _ Repository = (*PGRepository)(nil)
