package order

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockOrderRepo struct {
	orders    []*Order
	referrals []string
	nextID    int64
	err       error
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order, referralCode string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.orders = append(m.orders, o)
	m.referrals = append(m.referrals, referralCode)
	m.nextID++
	return m.nextID, nil
}

func (m *mockOrderRepo) ListOpen(_ context.Context) ([]Summary, error) { return nil, nil }

func (m *mockOrderRepo) MarkDelivered(_ context.Context, _ int64) error { return nil }

type rejectAllPricing struct{}

func (rejectAllPricing) Verify(_ context.Context, _ []CartLine) error {
	return errors.New("price mismatch")
}

// --- Helpers ---

func cartLine(id int64, name, price string, qty int) CartLine {
	return CartLine{
		ProductID:   id,
		ProductName: name,
		UnitPrice:   decimal.RequireFromString(price),
		Quantity:    qty,
	}
}

// --- Tests ---

func TestCreateOrder_MissingBuyer(t *testing.T) {
	repo := &mockOrderRepo{}
	c := NewCoordinator(repo, TrustClientPricing{})

	_, err := c.CreateOrder(context.Background(), CreateOrderRequest{
		Cart: []CartLine{cartLine(1, "Porter", "10.00", 1)},
	})

	require.ErrorIs(t, err, ErrMissingBuyer)
	assert.Empty(t, repo.orders, "nothing may be written on validation failure")
}

func TestCreateOrder_EmptyCart(t *testing.T) {
	repo := &mockOrderRepo{}
	c := NewCoordinator(repo, TrustClientPricing{})

	_, err := c.CreateOrder(context.Background(), CreateOrderRequest{BuyerID: 7})

	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, repo.orders)
}

func TestCreateOrder_TotalAndCommissions(t *testing.T) {
	repo := &mockOrderRepo{}
	c := NewCoordinator(repo, TrustClientPricing{})

	id, err := c.CreateOrder(context.Background(), CreateOrderRequest{
		BuyerID: 7,
		Cart: []CartLine{
			cartLine(1, "Porter", "10.00", 2),
			cartLine(2, "Stout", "3.50", 1),
		},
		ReferralCode: "AFI-3-1700000000000",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	require.Len(t, repo.orders, 1)

	o := repo.orders[0]
	assert.True(t, decimal.RequireFromString("23.50").Equal(o.Total))
	require.Len(t, o.Lines, 2)

	// 2% of the extended price, exact, per line.
	assert.True(t, decimal.RequireFromString("0.40").Equal(o.Lines[0].Commission), "got %s", o.Lines[0].Commission)
	assert.True(t, decimal.RequireFromString("0.07").Equal(o.Lines[1].Commission), "got %s", o.Lines[1].Commission)

	// Line snapshots preserve input order and values.
	assert.Equal(t, "Porter", o.Lines[0].ProductName)
	assert.Equal(t, 2, o.Lines[0].Quantity)
	assert.Equal(t, "AFI-3-1700000000000", repo.referrals[0])
}

func TestCreateOrder_ReferralCodePassedThroughUnchanged(t *testing.T) {
	repo := &mockOrderRepo{}
	c := NewCoordinator(repo, TrustClientPricing{})

	// The coordinator does not resolve the code itself; matching happens
	// inside the repository transaction, case-sensitively.
	_, err := c.CreateOrder(context.Background(), CreateOrderRequest{
		BuyerID:      1,
		Cart:         []CartLine{cartLine(1, "Porter", "10.00", 1)},
		ReferralCode: "afi-3-X",
	})

	require.NoError(t, err)
	assert.Equal(t, "afi-3-X", repo.referrals[0])
}

func TestCreateOrder_RepositoryFailure(t *testing.T) {
	repo := &mockOrderRepo{err: errors.New("constraint violation")}
	c := NewCoordinator(repo, TrustClientPricing{})

	_, err := c.CreateOrder(context.Background(), CreateOrderRequest{
		BuyerID: 7,
		Cart:    []CartLine{cartLine(1, "Porter", "10.00", 1)},
	})

	var txErr *TransactionError
	require.ErrorAs(t, err, &txErr)
	assert.Contains(t, txErr.Error(), "constraint violation")
}

func TestCreateOrder_PricingRejection(t *testing.T) {
	repo := &mockOrderRepo{}
	c := NewCoordinator(repo, rejectAllPricing{})

	_, err := c.CreateOrder(context.Background(), CreateOrderRequest{
		BuyerID: 7,
		Cart:    []CartLine{cartLine(1, "Porter", "10.00", 1)},
	})

	require.Error(t, err)
	assert.Empty(t, repo.orders)
}

func TestCreateOrder_SequentialOrdersAreIndependent(t *testing.T) {
	repo := &mockOrderRepo{}
	c := NewCoordinator(repo, TrustClientPricing{})

	_, err := c.CreateOrder(context.Background(), CreateOrderRequest{
		BuyerID: 7,
		Cart:    []CartLine{cartLine(1, "Porter", "10.00", 1)},
	})
	require.NoError(t, err)

	_, err = c.CreateOrder(context.Background(), CreateOrderRequest{
		BuyerID: 7,
		Cart: []CartLine{
			cartLine(2, "Stout", "5.00", 3),
			cartLine(3, "Lager", "2.00", 1),
		},
	})
	require.NoError(t, err)

	require.Len(t, repo.orders, 2)
	assert.True(t, decimal.RequireFromString("10.00").Equal(repo.orders[0].Total))
	assert.True(t, decimal.RequireFromString("17.00").Equal(repo.orders[1].Total))
	assert.Len(t, repo.orders[0].Lines, 1)
	assert.Len(t, repo.orders[1].Lines, 2)
}
