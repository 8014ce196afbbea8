package user

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Roles assigned to accounts. New registrations are always customers.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// Sentinel errors for account operations.
var (
	ErrNotFound         = errors.New("user not found")
	ErrEmailTaken       = errors.New("email already registered")
	ErrWrongPassword    = errors.New("wrong password")
	ErrAlreadyAffiliate = errors.New("user is already an affiliate")
)

// User is a storefront account. Affiliates additionally carry a referral
// code; orders placed with that code accrue commission to them.
type User struct {
	ID           int64
	FirstName    string
	LastName     string
	BirthDate    *time.Time
	Email        string
	PasswordHash string
	Role         string
	IsAffiliate  bool
	ReferralCode string
	CreatedAt    time.Time
}

// Repository defines account persistence operations.
type Repository interface {
	Create(ctx context.Context, u *User) (int64, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	SetAffiliate(ctx context.Context, id int64, referralCode string) error
}
