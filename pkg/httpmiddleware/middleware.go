// Package httpmiddleware provides net/http middleware used by the storefront
// server: panic recovery, CORS, rate limiting, request IDs, request logging,
// and OpenTelemetry instrumentation.
package httpmiddleware

import (
	"net/http"
	"strings"
)

// Middleware wraps an http.Handler with additional behaviour.
type Middleware func(http.Handler) http.Handler

// Wrap applies middlewares to h. The first middleware in the list becomes the
// outermost wrapper, so Wrap(h, a, b) serves requests as a(b(h)).
func Wrap(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// RouteFinder resolves a request to its registered route pattern, for use as
// a low-cardinality label in logs and metrics.
type RouteFinder func(r *http.Request) (route string, ok bool)

// MakeRouteFinder builds a RouteFinder from a ServeMux. The returned route is
// the mux pattern with its method prefix stripped ("POST /api/orders" becomes
// "/api/orders"), so metrics keyed on it stay low-cardinality even for
// wildcard routes.
func MakeRouteFinder(mux *http.ServeMux) RouteFinder {
	return func(r *http.Request) (string, bool) {
		_, pattern := mux.Handler(r)
		if pattern == "" {
			return "", false
		}
		if i := strings.IndexByte(pattern, ' '); i >= 0 {
			pattern = pattern[i+1:]
		}
		return pattern, true
	}
}
