package user

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- Mock implementation ---

type mockUserRepo struct {
	byID   map[int64]*User
	nextID int64
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{byID: make(map[int64]*User)}
}

func (m *mockUserRepo) Create(_ context.Context, u *User) (int64, error) {
	m.nextID++
	cp := *u
	cp.ID = m.nextID
	m.byID[cp.ID] = &cp
	return cp.ID, nil
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockUserRepo) FindByID(_ context.Context, id int64) (*User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) SetAffiliate(_ context.Context, id int64, referralCode string) error {
	u, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.IsAffiliate = true
	u.ReferralCode = referralCode
	return nil
}

// --- Tests ---

func TestRegister_HashesPassword(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewService(repo)

	u, err := svc.Register(context.Background(), RegisterRequest{
		FirstName: "Elena",
		Email:     "elena@example.com",
		Password:  "hunter22",
	})

	require.NoError(t, err)
	assert.Equal(t, RoleCustomer, u.Role)
	assert.NotEqual(t, "hunter22", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("hunter22")))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewService(repo)

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "elena@example.com", Password: "x"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterRequest{Email: "elena@example.com", Password: "y"})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewService(repo)

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "elena@example.com", Password: "hunter22"})
	require.NoError(t, err)

	u, err := svc.Login(context.Background(), "elena@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "elena@example.com", u.Email)

	_, err = svc.Login(context.Background(), "elena@example.com", "wrong")
	require.ErrorIs(t, err, ErrWrongPassword)

	_, err = svc.Login(context.Background(), "nobody@example.com", "hunter22")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestEnrollAffiliate(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewService(repo)
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }

	created, err := svc.Register(context.Background(), RegisterRequest{Email: "elena@example.com", Password: "x"})
	require.NoError(t, err)

	u, err := svc.EnrollAffiliate(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, u.IsAffiliate)
	assert.True(t, strings.HasPrefix(u.ReferralCode, "AFI-"), "code %q", u.ReferralCode)
	assert.Contains(t, u.ReferralCode, "-1700000000000")

	// Enrolling twice must not regenerate the code.
	_, err = svc.EnrollAffiliate(context.Background(), created.ID)
	require.ErrorIs(t, err, ErrAlreadyAffiliate)

	stored, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ReferralCode, stored.ReferralCode)
}

func TestEnrollAffiliate_UnknownUser(t *testing.T) {
	svc := NewService(newMockUserRepo())

	_, err := svc.EnrollAffiliate(context.Background(), 42)
	require.ErrorIs(t, err, ErrNotFound)
}
