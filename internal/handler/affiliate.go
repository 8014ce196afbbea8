package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/bodegamx/storefront/internal/domain/affiliate"
)

type withdrawRequest struct {
	PayoutAccount string `json:"payoutAccount"`
}

// GetBalance handles GET /api/affiliates/{id}/balance: the affiliate's
// outstanding commission records, newest first, with their total formatted
// to two decimal places.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	b, err := h.ledger.GetBalance(r.Context(), id)
	if err != nil {
		h.mapLedgerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("totalOwed", func(e *jx.Encoder) { e.Str(b.TotalOwed.StringFixed(2)) })
			e.Field("history", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, rec := range b.History {
						e.Obj(func(e *jx.Encoder) {
							e.Field("productId", func(e *jx.Encoder) { e.Int64(rec.ProductID) })
							e.Field("product", func(e *jx.Encoder) { e.Str(rec.ProductName) })
							e.Field("amount", func(e *jx.Encoder) { e.Str(rec.Amount.StringFixed(2)) })
							e.Field("createdAt", func(e *jx.Encoder) { e.Str(rec.CreatedAt.Format(time.RFC3339)) })
						})
					}
				})
			})
		})
	})
}

// Withdraw handles POST /api/affiliates/{id}/withdrawals: pays out the whole
// outstanding balance to the supplied 18-character payout account.
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req withdrawRequest
	if !decodeBody(w, r, &req) {
		return
	}

	amount, err := h.ledger.Withdraw(r.Context(), id, req.PayoutAccount)
	if err != nil {
		// A failure inside the withdraw transaction is a write failure, not a
		// read outage: the rollback guarantee means nothing was cleared.
		switch {
		case errors.Is(err, affiliate.ErrMissingAffiliate),
			errors.Is(err, affiliate.ErrInvalidPayoutAccount),
			errors.Is(err, affiliate.ErrNothingToWithdraw):
			h.mapLedgerError(w, r, err)
		default:
			serverError(w, r, http.StatusInternalServerError, kindTransactionFailed,
				"withdrawal could not be processed", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("amount", func(e *jx.Encoder) { e.Str(amount.StringFixed(2)) })
		})
	})
}

// ListWithdrawals handles GET /api/affiliates/{id}/withdrawals: the payout
// history, newest first.
func (h *Handler) ListWithdrawals(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ws, err := h.ledger.GetWithdrawalHistory(r.Context(), id)
	if err != nil {
		h.mapLedgerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("withdrawals", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, wd := range ws {
						e.Obj(func(e *jx.Encoder) {
							e.Field("amount", func(e *jx.Encoder) { e.Str(wd.Amount.StringFixed(2)) })
							e.Field("payoutAccount", func(e *jx.Encoder) { e.Str(wd.PayoutAccount) })
							e.Field("createdAt", func(e *jx.Encoder) { e.Str(wd.CreatedAt.Format(time.RFC3339)) })
						})
					}
				})
			})
		})
	})
}

// mapLedgerError converts ledger errors to API error responses.
func (h *Handler) mapLedgerError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, affiliate.ErrMissingAffiliate),
		errors.Is(err, affiliate.ErrInvalidPayoutAccount):
		writeError(w, http.StatusBadRequest, kindInvalidRequest, err.Error())
	case errors.Is(err, affiliate.ErrNothingToWithdraw):
		writeError(w, http.StatusBadRequest, kindNothingToWithdraw, "no outstanding commission to withdraw")
	default:
		serverError(w, r, http.StatusServiceUnavailable, kindStorageUnavailable,
			"ledger temporarily unavailable", err)
	}
}
