package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bodegamx/storefront/internal/domain/affiliate"
)

const (
	listCommissionsSQL = `SELECT c.affiliate_id, c.product_id, COALESCE(p.name, ''), c.amount, c.created_at
		FROM commissions c
		LEFT JOIN products p ON p.id = c.product_id
		WHERE c.affiliate_id = $1
		ORDER BY c.created_at DESC, c.id DESC`

	sumCommissionsSQL = `SELECT COALESCE(SUM(amount), 0) FROM commissions WHERE affiliate_id = $1`

	insertWithdrawalSQL = `INSERT INTO withdrawals (affiliate_id, amount, payout_account)
		VALUES ($1, $2, $3)`

	deleteCommissionsSQL = `DELETE FROM commissions WHERE affiliate_id = $1`

	listWithdrawalsSQL = `SELECT affiliate_id, amount, payout_account, created_at
		FROM withdrawals
		WHERE affiliate_id = $1
		ORDER BY created_at DESC, id DESC`
)

var _ affiliate.Repository = (*AffiliateRepository)(nil)

// AffiliateRepository implements affiliate.Repository backed by PostgreSQL.
type AffiliateRepository struct {
	pool *pgxpool.Pool
}

// NewAffiliateRepository returns an AffiliateRepository that uses the given pool.
func NewAffiliateRepository(pool *pgxpool.Pool) *AffiliateRepository {
	return &AffiliateRepository{pool: pool}
}

// ListCommissions returns the affiliate's outstanding commission records,
// newest first, with product names joined in.
func (r *AffiliateRepository) ListCommissions(ctx context.Context, affiliateID int64) ([]affiliate.CommissionRecord, error) {
	rows, err := r.pool.Query(ctx, listCommissionsSQL, affiliateID)
	if err != nil {
		return nil, fmt.Errorf("listing commissions for affiliate %d: %w", affiliateID, err)
	}
	return pgx.CollectRows(rows, scanCommission)
}

// Withdraw sums the affiliate's outstanding commissions, records one
// withdrawal for that amount, and deletes the summed rows in a single
// transaction, so a failure at any point leaves the ledger untouched. The
// transaction runs at REPEATABLE READ so the SUM and the DELETE share one
// snapshot: a commission committed mid-withdrawal is neither paid out nor
// deleted, it stays for the next withdrawal. Returns
// affiliate.ErrNothingToWithdraw when the balance is zero; no withdrawal is
// recorded in that case.
func (r *AffiliateRepository) Withdraw(ctx context.Context, affiliateID int64, payoutAccount string) (decimal.Decimal, error) {
	var amount decimal.Decimal
	err := pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{IsoLevel: pgx.RepeatableRead}, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, sumCommissionsSQL, affiliateID).Scan(&amount); err != nil {
			return errors.Wrap(err, "sum commissions")
		}
		if amount.IsZero() {
			return affiliate.ErrNothingToWithdraw
		}

		if _, err := tx.Exec(ctx, insertWithdrawalSQL, affiliateID, amount, payoutAccount); err != nil {
			return errors.Wrap(err, "insert withdrawal")
		}

		if _, err := tx.Exec(ctx, deleteCommissionsSQL, affiliateID); err != nil {
			return errors.Wrap(err, "clear commissions")
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, affiliate.ErrNothingToWithdraw) {
			return decimal.Zero, affiliate.ErrNothingToWithdraw
		}
		return decimal.Zero, fmt.Errorf("withdrawing for affiliate %d: %w", affiliateID, err)
	}

	return amount, nil
}

// ListWithdrawals returns the affiliate's payout history, newest first.
func (r *AffiliateRepository) ListWithdrawals(ctx context.Context, affiliateID int64) ([]affiliate.Withdrawal, error) {
	rows, err := r.pool.Query(ctx, listWithdrawalsSQL, affiliateID)
	if err != nil {
		return nil, fmt.Errorf("listing withdrawals for affiliate %d: %w", affiliateID, err)
	}
	return pgx.CollectRows(rows, scanWithdrawal)
}

func scanCommission(row pgx.CollectableRow) (affiliate.CommissionRecord, error) {
	var rec affiliate.CommissionRecord
	err := row.Scan(&rec.AffiliateID, &rec.ProductID, &rec.ProductName, &rec.Amount, &rec.CreatedAt)
	return rec, err
}

func scanWithdrawal(row pgx.CollectableRow) (affiliate.Withdrawal, error) {
	var w affiliate.Withdrawal
	err := row.Scan(&w.AffiliateID, &w.Amount, &w.PayoutAccount, &w.CreatedAt)
	return w, err
}
