package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/bodegamx/storefront/internal/domain/order"
)

type createOrderRequest struct {
	BuyerID      int64         `json:"buyerId"`
	Cart         []cartLineDTO `json:"cart"`
	ReferralCode string        `json:"referralCode"`
}

type cartLineDTO struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

// CreateOrder handles POST /api/orders: decodes the cart submission,
// delegates to the coordinator, and returns the generated order ID.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	cart := make([]order.CartLine, len(req.Cart))
	for i, l := range req.Cart {
		cart[i] = order.CartLine{
			ProductID:   l.ProductID,
			ProductName: l.Name,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
		}
	}

	id, err := h.orders.CreateOrder(r.Context(), order.CreateOrderRequest{
		BuyerID:      req.BuyerID,
		Cart:         cart,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		h.mapOrderError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("orderId", func(e *jx.Encoder) { e.Int64(id) })
		})
	})
}

// mapOrderError converts coordinator errors to API error responses.
func (h *Handler) mapOrderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, order.ErrMissingBuyer), errors.Is(err, order.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, kindInvalidRequest, err.Error())
	default:
		serverError(w, r, http.StatusInternalServerError, kindTransactionFailed,
			"order could not be processed", err)
	}
}
