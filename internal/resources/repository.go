package resources

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gewog/AccessGuard/internal/platform/db"
)

// RepositoryPort defines data access methods for protected resources.
type RepositoryPort interface {
	List(ctx context.Context) ([]Resource, error)
	Get(ctx context.Context, id int64) (Resource, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, name, description string) (Resource, error)
	Update(ctx context.Context, id int64, name, description string) (Resource, error)
	Delete(ctx context.Context, id int64) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns all resources ordered by id.
func (r *Repository) List(ctx context.Context) ([]Resource, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description, created_at, updated_at FROM resources ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Resource
	for rows.Next() {
		var res Resource
		if err := rows.Scan(&res.ID, &res.Name, &res.Description, &res.CreatedAt, &res.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Get fetches a resource by id.
func (r *Repository) Get(ctx context.Context, id int64) (Resource, error) {
	var res Resource
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, created_at, updated_at FROM resources WHERE id = $1`, id,
	).Scan(&res.ID, &res.Name, &res.Description, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Resource{}, ErrNotFound
		}
		return Resource{}, err
	}
	return res, nil
}

// Exists reports whether the resource id is present.
func (r *Repository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM resources WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// Create inserts a new resource.
func (r *Repository) Create(ctx context.Context, name, description string) (Resource, error) {
	now := time.Now().UTC()
	var res Resource
	err := r.pool.QueryRow(ctx,
		`INSERT INTO resources (name, description, created_at, updated_at)
		 VALUES ($1, $2, $3, $3)
		 RETURNING id, name, description, created_at, updated_at`,
		name, description, now,
	).Scan(&res.ID, &res.Name, &res.Description, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Resource{}, ErrNameTaken
		}
		return Resource{}, err
	}
	return res, nil
}

// Update replaces the resource's mutable fields.
func (r *Repository) Update(ctx context.Context, id int64, name, description string) (Resource, error) {
	var res Resource
	err := r.pool.QueryRow(ctx,
		`UPDATE resources SET name = $2, description = $3, updated_at = $4
		 WHERE id = $1
		 RETURNING id, name, description, created_at, updated_at`,
		id, name, description, time.Now().UTC(),
	).Scan(&res.ID, &res.Name, &res.Description, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Resource{}, ErrNotFound
		}
		if db.IsUniqueViolation(err) {
			return Resource{}, ErrNameTaken
		}
		return Resource{}, err
	}
	return res, nil
}

// Delete removes a resource. Restricted while access rules reference it.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ RepositoryPort = (*Repository)(nil)
