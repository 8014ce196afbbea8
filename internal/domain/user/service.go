package user

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"golang.org/x/crypto/bcrypt"
)

// Service encapsulates account business logic: registration, login, and
// affiliate enrollment.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a user Service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// RegisterRequest holds the input for creating an account.
type RegisterRequest struct {
	FirstName string
	LastName  string
	BirthDate *time.Time
	Email     string
	Password  string
}

// Register creates a customer account with a bcrypt-hashed password.
// Fails with ErrEmailTaken when the email is already registered.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	existing, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, errors.Wrap(err, "check email")
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	u := &User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		BirthDate:    req.BirthDate,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         RoleCustomer,
	}

	id, err := s.repo.Create(ctx, u)
	if err != nil {
		return nil, errors.Wrap(err, "create user")
	}
	u.ID = id

	return u, nil
}

// Login authenticates by email and password. Fails with ErrNotFound for an
// unknown email and ErrWrongPassword for a bad password, so the handler can
// report them distinctly.
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "find user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrWrongPassword
	}

	return u, nil
}

// EnrollAffiliate marks the user as an affiliate and assigns their referral
// code. Enrolling twice fails with ErrAlreadyAffiliate; the original code is
// never regenerated, since outstanding orders may reference it.
func (s *Service) EnrollAffiliate(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "find user")
	}

	if u.IsAffiliate {
		return nil, ErrAlreadyAffiliate
	}

	code := fmt.Sprintf("AFI-%d-%d", id, s.now().UnixMilli())
	if err := s.repo.SetAffiliate(ctx, id, code); err != nil {
		return nil, errors.Wrap(err, "set affiliate")
	}

	u.IsAffiliate = true
	u.ReferralCode = code

	return u, nil
}
