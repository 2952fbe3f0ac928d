package projects

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/folio-api/folio/internal/platform/httpx"
)

// Repository defines persistence operations for projects.
type Repository interface {
	Create(ctx context.Context, project *Project) error
	Get(ctx context.Context, id int64) (*Project, error)
	Update(ctx context.Context, project *Project) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, req ListRequest) ([]Project, int, error)
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

const projectColumns = `id, title, description, short_description, image_url,
	live_url, github_url, tags, technologies, featured, sort_order, created_at, updated_at`

// Create inserts a project record.
func (r *PGRepository) Create(ctx context.Context, project *Project) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO projects (title, description, short_description, image_url,
			live_url, github_url, tags, technologies, featured, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`, project.Title, project.Description, project.ShortDescription, project.ImageURL,
		project.LiveURL, project.GithubURL, project.Tags, project.Technologies,
		project.Featured, project.Order).
		Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)
}

// Get fetches a project by id.
func (r *PGRepository) Get(ctx context.Context, id int64) (*Project, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	project, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return project, nil
}

// Update replaces every mutable column of the record.
func (r *PGRepository) Update(ctx context.Context, project *Project) error {
	err := r.pool.QueryRow(ctx, `
		UPDATE projects
		SET title = $2, description = $3, short_description = $4, image_url = $5,
			live_url = $6, github_url = $7, tags = $8, technologies = $9,
			featured = $10, sort_order = $11, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, project.ID, project.Title, project.Description, project.ShortDescription,
		project.ImageURL, project.LiveURL, project.GithubURL, project.Tags,
		project.Technologies, project.Featured, project.Order).
		Scan(&project.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return httpx.ErrNotFound
	}
	return err
}

// Delete removes a project record.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// List returns a filtered, paginated slice plus the total match count.
// Ordering follows the public site: featured first, then manual sort order,
// newest last within ties.
func (r *PGRepository) List(ctx context.Context, req ListRequest) ([]Project, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if req.Featured != nil {
		conditions = append(conditions, fmt.Sprintf("featured = $%d", argPos))
		args = append(args, *req.Featured)
		argPos++
	}
	if req.Tag != "" {
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(tags)", argPos))
		args = append(args, req.Tag)
		argPos++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + conditions[0]
		for i := 1; i < len(conditions); i++ {
			whereClause += " AND " + conditions[i]
		}
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM projects %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM projects
		%s
		ORDER BY featured DESC, sort_order ASC, created_at DESC
		LIMIT $%d OFFSET $%d
	`, projectColumns, whereClause, argPos, argPos+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *project)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

// Stats aggregates catalogue counts in a single round-trip.
func (r *PGRepository) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE featured),
			(SELECT COUNT(DISTINCT tag) FROM projects, unnest(tags) AS tag)
		FROM projects
	`).Scan(&stats.Total, &stats.Featured, &stats.TotalTags)
	if err != nil {
		return Stats{}, err
	}
	return stats, nil
}

func scanProject(row pgx.Row) (*Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.ShortDescription, &p.ImageURL,
		&p.LiveURL, &p.GithubURL, &p.Tags, &p.Technologies, &p.Featured, &p.Order,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Technologies == nil {
		p.Technologies = []string{}
	}
	return &p, nil
}

var _ Repository = (*PGRepository)(nil)
