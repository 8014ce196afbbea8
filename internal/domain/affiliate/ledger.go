package affiliate

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// PayoutAccountLength is the required length of a payout account identifier
// (an 18-digit CLABE interbank account number).
const PayoutAccountLength = 18

// Balance holds an affiliate's outstanding commission total and the records
// behind it, newest first.
type Balance struct {
	TotalOwed decimal.Decimal
	History   []CommissionRecord
}

// Ledger exposes the affiliate commission ledger: balance queries, payouts,
// and payout history.
type Ledger struct {
	repo Repository
}

// NewLedger creates a Ledger backed by the given repository.
func NewLedger(repo Repository) *Ledger {
	return &Ledger{repo: repo}
}

// GetBalance returns all outstanding commission records for the affiliate,
// newest first, along with their exact sum. An affiliate with no records gets
// a zero balance, not an error.
func (l *Ledger) GetBalance(ctx context.Context, affiliateID int64) (*Balance, error) {
	if affiliateID == 0 {
		return nil, ErrMissingAffiliate
	}

	records, err := l.repo.ListCommissions(ctx, affiliateID)
	if err != nil {
		return nil, errors.Wrap(err, "list commissions")
	}

	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Amount)
	}

	return &Balance{TotalOwed: total, History: records}, nil
}

// Withdraw pays out the affiliate's entire outstanding balance to the given
// account. The sum, the withdrawal record, and the deletion of the summed
// commission rows happen in one repository transaction; either all of it
// persists or none does. Returns the amount paid out.
func (l *Ledger) Withdraw(ctx context.Context, affiliateID int64, payoutAccount string) (decimal.Decimal, error) {
	if affiliateID == 0 {
		return decimal.Zero, ErrMissingAffiliate
	}
	if len(payoutAccount) != PayoutAccountLength {
		return decimal.Zero, ErrInvalidPayoutAccount
	}

	amount, err := l.repo.Withdraw(ctx, affiliateID, payoutAccount)
	if err != nil {
		if errors.Is(err, ErrNothingToWithdraw) {
			return decimal.Zero, ErrNothingToWithdraw
		}
		return decimal.Zero, errors.Wrap(err, "withdraw")
	}

	return amount, nil
}

// GetWithdrawalHistory returns all payouts for the affiliate, newest first.
func (l *Ledger) GetWithdrawalHistory(ctx context.Context, affiliateID int64) ([]Withdrawal, error) {
	if affiliateID == 0 {
		return nil, ErrMissingAffiliate
	}

	ws, err := l.repo.ListWithdrawals(ctx, affiliateID)
	if err != nil {
		return nil, errors.Wrap(err, "list withdrawals")
	}
	return ws, nil
}
