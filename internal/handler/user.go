package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/bodegamx/storefront/internal/domain/user"
)

type registerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	BirthDate string `json:"birthDate"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterUser handles POST /api/users/register.
func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, kindInvalidRequest, "email and password required")
		return
	}

	var birthDate *time.Time
	if req.BirthDate != "" {
		t, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, kindInvalidRequest, "birthDate must be YYYY-MM-DD")
			return
		}
		birthDate = &t
	}

	u, err := h.users.Register(r.Context(), user.RegisterRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		BirthDate: birthDate,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			writeError(w, http.StatusBadRequest, kindInvalidRequest, "email already registered")
			return
		}
		serverError(w, r, http.StatusServiceUnavailable, kindStorageUnavailable,
			"registration temporarily unavailable", err)
		return
	}

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("user", func(e *jx.Encoder) { encodeUser(e, u) })
		})
	})
}

// Login handles POST /api/users/login. An unknown email and a wrong password
// are reported distinctly, matching the storefront's existing clients.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, kindInvalidRequest, "email and password required")
		return
	}

	u, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			writeError(w, http.StatusBadRequest, kindInvalidRequest, "email not registered")
		case errors.Is(err, user.ErrWrongPassword):
			writeError(w, http.StatusUnauthorized, kindUnauthorized, "wrong password")
		default:
			serverError(w, r, http.StatusServiceUnavailable, kindStorageUnavailable,
				"login temporarily unavailable", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("user", func(e *jx.Encoder) { encodeUser(e, u) })
		})
	})
}

// EnrollAffiliate handles POST /api/users/{id}/affiliate: flags the account
// as an affiliate and returns its referral code.
func (h *Handler) EnrollAffiliate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	u, err := h.users.EnrollAffiliate(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			writeError(w, http.StatusNotFound, kindNotFound, "user not found")
		case errors.Is(err, user.ErrAlreadyAffiliate):
			writeError(w, http.StatusBadRequest, kindInvalidRequest, "user is already an affiliate")
		default:
			serverError(w, r, http.StatusServiceUnavailable, kindStorageUnavailable,
				"enrollment temporarily unavailable", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("user", func(e *jx.Encoder) { encodeUser(e, u) })
		})
	})
}

func encodeUser(e *jx.Encoder, u *user.User) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(u.ID) })
		e.Field("firstName", func(e *jx.Encoder) { e.Str(u.FirstName) })
		e.Field("email", func(e *jx.Encoder) { e.Str(u.Email) })
		e.Field("role", func(e *jx.Encoder) { e.Str(u.Role) })
		e.Field("isAffiliate", func(e *jx.Encoder) { e.Bool(u.IsAffiliate) })
		if u.ReferralCode != "" {
			e.Field("referralCode", func(e *jx.Encoder) { e.Str(u.ReferralCode) })
		}
	})
}
