// Package handler exposes the storefront API over net/http. Each handler
// decodes its request DTO, delegates to a domain service, and maps the result
// (or error) to a JSON response with a stable machine-readable error kind.
package handler

import (
	"net/http"

	"github.com/bodegamx/storefront/internal/domain/affiliate"
	"github.com/bodegamx/storefront/internal/domain/order"
	"github.com/bodegamx/storefront/internal/domain/product"
	"github.com/bodegamx/storefront/internal/domain/user"
)

// Handler bundles the domain dependencies behind the HTTP surface.
type Handler struct {
	orders    *order.Coordinator
	orderRepo order.Repository
	ledger    *affiliate.Ledger
	users     *user.Service
	products  product.Repository
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	orders *order.Coordinator,
	orderRepo order.Repository,
	ledger *affiliate.Ledger,
	users *user.Service,
	products product.Repository,
) *Handler {
	return &Handler{
		orders:    orders,
		orderRepo: orderRepo,
		ledger:    ledger,
		users:     users,
		products:  products,
	}
}

// Register wires every route onto the mux. Admin routes are wrapped with the
// given guard (API-key authentication).
func (h *Handler) Register(mux *http.ServeMux, admin func(http.Handler) http.Handler) {
	mux.HandleFunc("POST /api/orders", h.CreateOrder)

	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("GET /api/products/search", h.SearchProducts)
	mux.HandleFunc("GET /api/products/{id}", h.GetProduct)

	mux.HandleFunc("POST /api/users/register", h.RegisterUser)
	mux.HandleFunc("POST /api/users/login", h.Login)
	mux.HandleFunc("POST /api/users/{id}/affiliate", h.EnrollAffiliate)

	mux.HandleFunc("GET /api/affiliates/{id}/balance", h.GetBalance)
	mux.HandleFunc("POST /api/affiliates/{id}/withdrawals", h.Withdraw)
	mux.HandleFunc("GET /api/affiliates/{id}/withdrawals", h.ListWithdrawals)

	mux.Handle("GET /api/admin/orders", admin(http.HandlerFunc(h.AdminListOrders)))
	mux.Handle("POST /api/admin/products", admin(http.HandlerFunc(h.AdminCreateProduct)))
	mux.Handle("POST /api/admin/orders/{id}/delivered", admin(http.HandlerFunc(h.AdminMarkDelivered)))
}
