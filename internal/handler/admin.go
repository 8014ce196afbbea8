package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/bodegamx/storefront/internal/domain/order"
	"github.com/bodegamx/storefront/internal/domain/product"
)

type createProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Style       string          `json:"style"`
	Origin      string          `json:"origin"`
	Country     string          `json:"country"`
}

// AdminListOrders handles GET /api/admin/orders: every open order with its
// buyer name and line snapshots, newest first.
func (h *Handler) AdminListOrders(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.orderRepo.ListOpen(r.Context())
	if err != nil {
		serverError(w, r, http.StatusServiceUnavailable, kindStorageUnavailable,
			"orders temporarily unavailable", err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, s := range summaries {
				e.Obj(func(e *jx.Encoder) {
					e.Field("id", func(e *jx.Encoder) { e.Int64(s.ID) })
					e.Field("customer", func(e *jx.Encoder) { e.Str(s.BuyerName) })
					e.Field("total", func(e *jx.Encoder) { e.Str(s.Total.StringFixed(2)) })
					e.Field("createdAt", func(e *jx.Encoder) { e.Str(s.CreatedAt.Format(time.RFC3339)) })
					e.Field("lines", func(e *jx.Encoder) {
						e.Arr(func(e *jx.Encoder) {
							for _, l := range s.Lines {
								e.Obj(func(e *jx.Encoder) {
									e.Field("product", func(e *jx.Encoder) { e.Str(l.ProductName) })
									e.Field("price", func(e *jx.Encoder) { e.Str(l.UnitPrice.StringFixed(2)) })
									e.Field("quantity", func(e *jx.Encoder) { e.Int(l.Quantity) })
								})
							}
						})
					})
				})
			}
		})
	})
}

// AdminCreateProduct handles POST /api/admin/products.
func (h *Handler) AdminCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" || req.Price.IsZero() || req.Style == "" || req.Origin == "" || req.Country == "" {
		writeError(w, http.StatusBadRequest, kindInvalidRequest, "name, price, style, origin and country are required")
		return
	}

	id, err := h.products.Create(r.Context(), &product.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
		Style:       req.Style,
		Origin:      req.Origin,
		Country:     req.Country,
	})
	if err != nil {
		serverError(w, r, http.StatusServiceUnavailable, kindStorageUnavailable,
			"catalog temporarily unavailable", err)
		return
	}

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("id", func(e *jx.Encoder) { e.Int64(id) })
		})
	})
}

// AdminMarkDelivered handles POST /api/admin/orders/{id}/delivered: archives
// the order and removes it from the live tables.
func (h *Handler) AdminMarkDelivered(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.orderRepo.MarkDelivered(r.Context(), id); err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, http.StatusNotFound, kindNotFound, "order not found")
			return
		}
		serverError(w, r, http.StatusInternalServerError, kindTransactionFailed,
			"delivery could not be recorded", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
