package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/bodegamx/storefront/internal/domain/product"
)

// ListProducts handles GET /api/products with optional repeated style= and
// origin= query parameters.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := product.Filter{
		Styles:  q["style"],
		Origins: q["origin"],
	}

	products, err := h.products.List(r.Context(), f)
	if err != nil {
		serverError(w, r, http.StatusServiceUnavailable, kindStorageUnavailable,
			"catalog temporarily unavailable", err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeProducts(e, products)
	})
}

// SearchProducts handles GET /api/products/search?q=: case-insensitive
// substring match over name, style, origin, and country.
func (h *Handler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, kindInvalidRequest, "missing search query")
		return
	}

	products, err := h.products.Search(r.Context(), query)
	if err != nil {
		serverError(w, r, http.StatusServiceUnavailable, kindStorageUnavailable,
			"catalog temporarily unavailable", err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeProducts(e, products)
	})
}

// GetProduct handles GET /api/products/{id}.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, http.StatusNotFound, kindNotFound, "product not found")
			return
		}
		serverError(w, r, http.StatusServiceUnavailable, kindStorageUnavailable,
			"catalog temporarily unavailable", err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeProduct(e, *p)
	})
}

func encodeProducts(e *jx.Encoder, products []product.Product) {
	e.Arr(func(e *jx.Encoder) {
		for _, p := range products {
			encodeProduct(e, p)
		}
	})
}

func encodeProduct(e *jx.Encoder, p product.Product) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(p.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
		e.Field("description", func(e *jx.Encoder) { e.Str(p.Description) })
		e.Field("price", func(e *jx.Encoder) { e.Float64(p.Price.InexactFloat64()) })
		e.Field("image", func(e *jx.Encoder) { e.Str(p.Image) })
		e.Field("style", func(e *jx.Encoder) { e.Str(p.Style) })
		e.Field("origin", func(e *jx.Encoder) { e.Str(p.Origin) })
		e.Field("country", func(e *jx.Encoder) { e.Str(p.Country) })
	})
}
