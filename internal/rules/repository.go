package rules

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gewog/AccessGuard/internal/platform/db"
)

// RepositoryPort defines data access methods for access rules.
type RepositoryPort interface {
	List(ctx context.Context) ([]Rule, error)
	Get(ctx context.Context, id int64) (Rule, error)
	Create(ctx context.Context, rule Rule) (Rule, error)
	Update(ctx context.Context, rule Rule) (Rule, error)
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

const ruleColumns = `id, role_id, resource_id, read_permission, create_permission, update_permission, delete_permission, created_at, updated_at`

func scanRule(row pgx.Row) (Rule, error) {
	var rule Rule
	err := row.Scan(&rule.ID, &rule.RoleID, &rule.ResourceID,
		&rule.Read, &rule.Create, &rule.Update, &rule.Delete,
		&rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Rule{}, ErrNotFound
		}
		return Rule{}, err
	}
	return rule, nil
}

// List returns all access rules ordered by id.
func (r *Repository) List(ctx context.Context) ([]Rule, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+ruleColumns+` FROM access_rules ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Rule
	for rows.Next() {
		var rule Rule
		if err := rows.Scan(&rule.ID, &rule.RoleID, &rule.ResourceID,
			&rule.Read, &rule.Create, &rule.Update, &rule.Delete,
			&rule.CreatedAt, &rule.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Get fetches a rule by id.
func (r *Repository) Get(ctx context.Context, id int64) (Rule, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+ruleColumns+` FROM access_rules WHERE id = $1`, id)
	return scanRule(row)
}

// Create inserts a new rule. The unique constraint on (role_id, resource_id)
// is the authoritative duplicate check.
func (r *Repository) Create(ctx context.Context, rule Rule) (Rule, error) {
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx,
		`INSERT INTO access_rules (role_id, resource_id, read_permission, create_permission, update_permission, delete_permission, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		 RETURNING `+ruleColumns,
		rule.RoleID, rule.ResourceID, rule.Read, rule.Create, rule.Update, rule.Delete, now)
	created, err := scanRule(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Rule{}, ErrDuplicatePair
		}
		if db.IsForeignKeyViolation(err) {
			return Rule{}, ErrRoleMissing
		}
		return Rule{}, err
	}
	return created, nil
}

// Update replaces every mutable field of the rule.
func (r *Repository) Update(ctx context.Context, rule Rule) (Rule, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE access_rules
		 SET role_id = $2, resource_id = $3, read_permission = $4, create_permission = $5, update_permission = $6, delete_permission = $7, updated_at = $8
		 WHERE id = $1
		 RETURNING `+ruleColumns,
		rule.ID, rule.RoleID, rule.ResourceID, rule.Read, rule.Create, rule.Update, rule.Delete, time.Now().UTC())
	updated, err := scanRule(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Rule{}, ErrDuplicatePair
		}
		if db.IsForeignKeyViolation(err) {
			return Rule{}, ErrRoleMissing
		}
		return Rule{}, err
	}
	return updated, nil
}

// Delete removes a rule by id.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM access_rules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ RepositoryPort = (*Repository)(nil)
