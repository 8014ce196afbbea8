package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a referenced order does not exist.
var ErrNotFound = errors.New("order not found")

// Order is an immutable order header with its line items. Once committed it
// is never updated; fulfillment archives and removes it.
type Order struct {
	ID        int64
	BuyerID   int64
	Total     decimal.Decimal
	Lines     []Line
	CreatedAt time.Time
}

// Line is a single order line carrying a name/price snapshot taken at order
// time. Commission is the accrual candidate for this line; it is persisted
// only when the order's referral code resolves to an affiliate.
type Line struct {
	ProductID   int64
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
	Commission  decimal.Decimal
}

// Summary is an order as seen by the fulfillment view: header data joined
// with the buyer's name and the line snapshots.
type Summary struct {
	ID        int64
	BuyerName string
	Total     decimal.Decimal
	CreatedAt time.Time
	Lines     []SummaryLine
}

// SummaryLine is a line item in a fulfillment summary.
type SummaryLine struct {
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// Repository defines order persistence operations.
//
// Create must execute as one transaction: insert the header, every line, and
// (when referralCode resolves to an affiliate) one commission record per line.
// On any failure nothing persists. The generated order ID is returned.
//
// MarkDelivered must likewise atomically archive the order with its lines and
// delete the live rows; it returns ErrNotFound for an unknown order.
type Repository interface {
	Create(ctx context.Context, o *Order, referralCode string) (int64, error)
	ListOpen(ctx context.Context) ([]Summary, error)
	MarkDelivered(ctx context.Context, orderID int64) error
}
