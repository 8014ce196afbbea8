package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// Stable machine-readable error kinds. Raw storage errors never leak to the
// caller; they are logged server-side and translated to one of these.
const (
	kindInvalidRequest     = "invalid_request"
	kindUnauthorized       = "unauthorized"
	kindNotFound           = "not_found"
	kindNothingToWithdraw  = "nothing_to_withdraw"
	kindTransactionFailed  = "transaction_failed"
	kindStorageUnavailable = "storage_unavailable"
)

// writeJSON encodes a response body with jx and writes it with the given
// status code.
func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	var e jx.Encoder
	encode(&e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError writes the error envelope: {code, kind, message}.
func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("code", func(e *jx.Encoder) { e.Int(status) })
			e.Field("kind", func(e *jx.Encoder) { e.Str(kind) })
			e.Field("message", func(e *jx.Encoder) { e.Str(message) })
		})
	})
}

// serverError logs the underlying cause with request context and reports a
// sanitized failure to the caller.
func serverError(w http.ResponseWriter, r *http.Request, status int, kind, message string, err error) {
	zctx.From(r.Context()).Error(message,
		zap.String("kind", kind),
		zap.Error(err),
	)
	writeError(w, status, kind, message)
}

// decodeBody decodes a JSON request body into dst, rejecting unknown
// payloads with a 400.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, kindInvalidRequest, "malformed request body")
		return false
	}
	return true
}

// pathID parses the {id} path segment as an int64. Writes a 400 and returns
// false when the segment is missing or not numeric.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, kindInvalidRequest, "invalid id")
		return 0, false
	}
	return id, true
}
