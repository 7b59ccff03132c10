package accounts

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gewog/AccessGuard/internal/platform/db"
)

// Repository defines persistence operations for accounts.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id int64) (*Account, error)
	Create(ctx context.Context, acct Account) (int64, error)
	Update(ctx context.Context, acct Account) error
	Deactivate(ctx context.Context, id int64) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const accountColumns = `id, email, password_hash, first_name, last_name, is_active, role_id, created_at, updated_at`

func scanAccount(row pgx.Row) (*Account, error) {
	var acct Account
	err := row.Scan(&acct.ID, &acct.Email, &acct.PasswordHash, &acct.FirstName,
		&acct.LastName, &acct.IsActive, &acct.RoleID, &acct.CreatedAt, &acct.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &acct, nil
}

// FindByEmail fetches an account by email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
	return scanAccount(row)
}

// FindByID fetches an account by id.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

// Create inserts a new account. The unique constraint on email is the
// authoritative duplicate check; violations surface as ErrEmailTaken.
func (r *PGRepository) Create(ctx context.Context, acct Account) (int64, error) {
	now := time.Now().UTC()
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO accounts (email, password_hash, first_name, last_name, is_active, role_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		 RETURNING id`,
		acct.Email, acct.PasswordHash, acct.FirstName, acct.LastName, acct.IsActive, acct.RoleID, now,
	).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, ErrEmailTaken
		}
		return 0, err
	}
	return id, nil
}

// Update replaces all mutable fields of the account.
func (r *PGRepository) Update(ctx context.Context, acct Account) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE accounts
		 SET email = $2, password_hash = $3, first_name = $4, last_name = $5, updated_at = $6
		 WHERE id = $1`,
		acct.ID, acct.Email, acct.PasswordHash, acct.FirstName, acct.LastName, time.Now().UTC())
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrEmailTaken
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Deactivate soft-deletes the account. The row is retained. The update and
// the existence probe run in one transaction so the missing-vs-repeated
// distinction cannot be confused by a concurrent delete.
func (r *PGRepository) Deactivate(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE accounts SET is_active = FALSE, updated_at = $2 WHERE id = $1 AND is_active`,
			id, time.Now().UTC())
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, id).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return ErrNotFound
			}
			return ErrAlreadyInactive
		}
		return nil
	})
}

var _ Repository = (*PGRepository)(nil)
