package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/bodegamx/storefront/internal/domain/affiliate"
)

// Sentinel errors for order validation.
var (
	ErrMissingBuyer = errors.New("buyer id required")
	ErrEmptyCart    = errors.New("cart must not be empty")
)

// TransactionError wraps any failure of the atomic write sequence. Callers
// are guaranteed that nothing from the attempt persisted.
type TransactionError struct {
	cause error
}

func (e *TransactionError) Error() string {
	return "order transaction failed: " + e.cause.Error()
}

func (e *TransactionError) Unwrap() error { return e.cause }

// CartLine is a client-supplied cart entry. Name and price are snapshots the
// buyer's session observed; see PriceVerifier for the trust boundary.
type CartLine struct {
	ProductID   int64
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// PriceVerifier checks client-supplied cart pricing before the order is
// persisted. The storefront currently trusts the client (matching the
// historical behavior); a hardened deployment can inject a catalog-backed
// verifier without touching the coordinator.
type PriceVerifier interface {
	Verify(ctx context.Context, cart []CartLine) error
}

// TrustClientPricing accepts every cart as supplied.
type TrustClientPricing struct{}

// Verify implements PriceVerifier by accepting the cart unchanged.
func (TrustClientPricing) Verify(context.Context, []CartLine) error { return nil }

// CreateOrderRequest holds the input for creating an order.
type CreateOrderRequest struct {
	BuyerID      int64
	Cart         []CartLine
	ReferralCode string
}

// Coordinator orchestrates order creation: validation, total computation,
// commission candidates, and the atomic multi-table write.
type Coordinator struct {
	orders  Repository
	pricing PriceVerifier
}

// NewCoordinator creates a Coordinator with the required dependencies.
func NewCoordinator(orders Repository, pricing PriceVerifier) *Coordinator {
	return &Coordinator{orders: orders, pricing: pricing}
}

// CreateOrder validates the request, computes the order total and per-line
// commission candidates, and persists everything in one transaction via the
// repository. The referral code, when present, is resolved inside that same
// transaction; a code that matches no affiliate accrues nothing and is not an
// error. Returns the generated order ID.
func (c *Coordinator) CreateOrder(ctx context.Context, req CreateOrderRequest) (int64, error) {
	if req.BuyerID == 0 {
		return 0, ErrMissingBuyer
	}
	if len(req.Cart) == 0 {
		return 0, ErrEmptyCart
	}

	if err := c.pricing.Verify(ctx, req.Cart); err != nil {
		return 0, errors.Wrap(err, "verify pricing")
	}

	total := decimal.Zero
	lines := make([]Line, len(req.Cart))
	for i, cl := range req.Cart {
		extended := cl.UnitPrice.Mul(decimal.NewFromInt(int64(cl.Quantity)))
		total = total.Add(extended)

		lines[i] = Line{
			ProductID:   cl.ProductID,
			ProductName: cl.ProductName,
			UnitPrice:   cl.UnitPrice,
			Quantity:    cl.Quantity,
			Commission:  affiliate.Commission(cl.UnitPrice, cl.Quantity),
		}
	}

	o := &Order{
		BuyerID: req.BuyerID,
		Total:   total,
		Lines:   lines,
	}

	id, err := c.orders.Create(ctx, o, req.ReferralCode)
	if err != nil {
		return 0, &TransactionError{cause: err}
	}

	return id, nil
}
