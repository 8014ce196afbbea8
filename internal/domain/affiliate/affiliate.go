package affiliate

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for ledger operations.
var (
	// ErrNothingToWithdraw is returned when an affiliate has no outstanding
	// commission to pay out. No withdrawal is recorded in that case.
	ErrNothingToWithdraw = errors.New("nothing to withdraw")
	// ErrInvalidPayoutAccount is returned when the payout account is not
	// exactly 18 characters long.
	ErrInvalidPayoutAccount = errors.New("payout account must be exactly 18 characters")
	// ErrMissingAffiliate is returned when no affiliate ID was supplied.
	ErrMissingAffiliate = errors.New("affiliate id required")
)

// CommissionRecord is a single accrued commission, created inside the order
// transaction that earned it and deleted when the affiliate withdraws.
type CommissionRecord struct {
	AffiliateID int64
	ProductID   int64
	ProductName string
	Amount      decimal.Decimal
	CreatedAt   time.Time
}

// Withdrawal is one payout of accrued commission. Rows are append-only.
type Withdrawal struct {
	AffiliateID   int64
	Amount        decimal.Decimal
	PayoutAccount string
	CreatedAt     time.Time
}

// Repository defines ledger persistence operations. Withdraw must run as a
// single transaction: sum outstanding commissions, record the withdrawal,
// and delete the contributing rows, or none of it.
type Repository interface {
	ListCommissions(ctx context.Context, affiliateID int64) ([]CommissionRecord, error)
	Withdraw(ctx context.Context, affiliateID int64, payoutAccount string) (decimal.Decimal, error)
	ListWithdrawals(ctx context.Context, affiliateID int64) ([]Withdrawal, error)
}
