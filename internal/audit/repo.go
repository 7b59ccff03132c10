package audit

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines persistence for decision audit entries.
type Repository interface {
	Insert(ctx context.Context, entry Entry) error
	Window(ctx context.Context, filters TimelineFilters, offset, limit int) ([]Entry, error)
	PurgeOlderThan(ctx context.Context, before time.Time) (int64, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Insert stores a single decision entry.
func (r *PGRepository) Insert(ctx context.Context, entry Entry) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO authz_audit (principal_id, resource_id, action, allowed, reason, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))`,
		entry.PrincipalID, entry.ResourceID, entry.Action, entry.Allowed, entry.Reason, nullableTime(entry.At))
	return err
}

// Window returns a page of entries, newest first. The caller requests one
// extra row to detect whether a next page exists.
func (r *PGRepository) Window(ctx context.Context, filters TimelineFilters, offset, limit int) ([]Entry, error) {
	const query = `
		SELECT id, principal_id, resource_id, action, allowed, reason, occurred_at
		FROM authz_audit
		WHERE ($1::bigint = 0 OR principal_id = $1)
		  AND ($2::bigint = 0 OR resource_id = $2)
		  AND (NOT $3::boolean OR NOT allowed)
		  AND ($4::timestamptz IS NULL OR occurred_at >= $4)
		  AND ($5::timestamptz IS NULL OR occurred_at < $5)
		ORDER BY occurred_at DESC, id DESC
		OFFSET $6 LIMIT $7`

	rows, err := r.pool.Query(ctx, query,
		filters.PrincipalID, filters.ResourceID, filters.DeniedOnly,
		nullableTime(filters.From), nullableTime(filters.To), offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.PrincipalID, &e.ResourceID, &e.Action, &e.Allowed, &e.Reason, &e.At); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// PurgeOlderThan deletes entries past the retention window.
func (r *PGRepository) PurgeOlderThan(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM authz_audit WHERE occurred_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

var _ Repository = (*PGRepository)(nil)
