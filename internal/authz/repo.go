package authz

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository loads decision snapshots from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// DecisionSnapshot fetches the principal row joined to the matching access
// rules in a single query, so the active flag, the role and the rules come
// from one consistent read.
func (r *Repository) DecisionSnapshot(ctx context.Context, principalID, resourceID int64) (Snapshot, error) {
	const query = `
		SELECT a.is_active, a.role_id,
		       ar.id, ar.role_id, ar.resource_id,
		       ar.read_permission, ar.create_permission, ar.update_permission, ar.delete_permission
		FROM accounts a
		LEFT JOIN access_rules ar ON ar.role_id = a.role_id AND ar.resource_id = $2
		WHERE a.id = $1
		ORDER BY ar.id`

	rows, err := r.pool.Query(ctx, query, principalID, resourceID)
	if err != nil {
		return Snapshot{}, err
	}
	defer rows.Close()

	var snap Snapshot
	for rows.Next() {
		var (
			ruleID     *int64
			roleID     *int64
			resID      *int64
			readPerm   *bool
			createPerm *bool
			updatePerm *bool
			deletePerm *bool
		)
		if err := rows.Scan(&snap.Active, &snap.RoleID, &ruleID, &roleID, &resID,
			&readPerm, &createPerm, &updatePerm, &deletePerm); err != nil {
			return Snapshot{}, err
		}
		snap.PrincipalFound = true
		if ruleID != nil {
			snap.Rules = append(snap.Rules, Rule{
				ID:         *ruleID,
				RoleID:     *roleID,
				ResourceID: *resID,
				Read:       *readPerm,
				Create:     *createPerm,
				Update:     *updatePerm,
				Delete:     *deletePerm,
			})
		}
	}
	if err := rows.Err(); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Snapshot{}, nil
		}
		return Snapshot{}, err
	}
	return snap, nil
}

var _ Store = (*Repository)(nil)
