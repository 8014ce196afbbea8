package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bodegamx/storefront/internal/domain/user"
)

const (
	userColumns = `id, first_name, last_name, birth_date, email, password_hash,
		role, is_affiliate, COALESCE(referral_code, ''), created_at`

	insertUserSQL = `INSERT INTO users (first_name, last_name, birth_date, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	findUserByEmailSQL = `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	findUserByIDSQL = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	setAffiliateSQL = `UPDATE users SET is_affiliate = TRUE, referral_code = $1 WHERE id = $2`
)

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts an account and returns its generated ID.
func (r *UserRepository) Create(ctx context.Context, u *user.User) (int64, error) {
	err := r.pool.QueryRow(ctx, insertUserSQL,
		u.FirstName, u.LastName, u.BirthDate, u.Email, u.PasswordHash, u.Role,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("creating user %q: %w", u.Email, err)
	}
	return u.ID, nil
}

// FindByEmail looks up an account by email. Returns user.ErrNotFound when no
// account matches.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	rows, err := r.pool.Query(ctx, findUserByEmailSQL, email)
	if err != nil {
		return nil, fmt.Errorf("finding user by email: %w", err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("finding user by email: %w", err)
	}
	return &u, nil
}

// FindByID looks up an account by ID. Returns user.ErrNotFound when no
// account matches.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*user.User, error) {
	rows, err := r.pool.Query(ctx, findUserByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("finding user %d: %w", id, err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("finding user %d: %w", id, err)
	}
	return &u, nil
}

// SetAffiliate flags the account as an affiliate and stores its referral code.
func (r *UserRepository) SetAffiliate(ctx context.Context, id int64, referralCode string) error {
	ct, err := r.pool.Exec(ctx, setAffiliateSQL, referralCode, id)
	if err != nil {
		return fmt.Errorf("enrolling affiliate %d: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.CollectableRow) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.BirthDate, &u.Email, &u.PasswordHash,
		&u.Role, &u.IsAffiliate, &u.ReferralCode, &u.CreatedAt,
	)
	return u, err
}
