package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trip-planner-api/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

type mockJWTSigner struct{ mock.Mock }

func (m *mockJWTSigner) Sign(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

// --- tests ---

func baseReq() domain.RegisterRequest {
	return domain.RegisterRequest{
		Username:    "alice",
		Password:    "password123",
		DisplayName: "Alice",
		Phone:       "+14155550100",
		Timezone:    "America/New_York",
	}
}

func TestRegister_Succeeds(t *testing.T) {
	us := &mockUserStore{}
	jwt := &mockJWTSigner{}
	svc := NewService(ServiceDeps{UserRepo: us, JWTProvider: jwt})

	us.On("GetByUsername", mock.Anything, "alice").Return(nil, domain.ErrNotFound)
	us.On("Put", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.UserID != "" &&
			u.Username == "alice" &&
			u.Enable &&
			u.PasswordHash != "" &&
			u.PasswordHash != "password123"
	})).Return(nil)
	jwt.On("Sign", mock.Anything).Return("token-1", nil)

	u, token, err := svc.Register(context.Background(), baseReq())
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)
	assert.Equal(t, "America/New_York", u.Timezone)
	us.AssertExpectations(t)
}

func TestRegister_DefaultsTimezoneToUTC(t *testing.T) {
	us := &mockUserStore{}
	jwt := &mockJWTSigner{}
	svc := NewService(ServiceDeps{UserRepo: us, JWTProvider: jwt})

	req := baseReq()
	req.Timezone = ""

	us.On("GetByUsername", mock.Anything, "alice").Return(nil, domain.ErrNotFound)
	us.On("Put", mock.Anything, mock.Anything).Return(nil)
	jwt.On("Sign", mock.Anything).Return("token-1", nil)

	u, _, err := svc.Register(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "UTC", u.Timezone)
}

func TestRegister_TakenUsernameConflicts(t *testing.T) {
	us := &mockUserStore{}
	svc := NewService(ServiceDeps{UserRepo: us, JWTProvider: &mockJWTSigner{}})

	us.On("GetByUsername", mock.Anything, "alice").
		Return(&domain.User{UserID: "u-1", Username: "alice"}, nil)

	_, _, err := svc.Register(context.Background(), baseReq())
	require.ErrorIs(t, err, domain.ErrConflict)
	us.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestLogin_Succeeds(t *testing.T) {
	us := &mockUserStore{}
	jwt := &mockJWTSigner{}
	svc := NewService(ServiceDeps{UserRepo: us, JWTProvider: jwt})

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	us.On("GetByUsername", mock.Anything, "alice").Return(&domain.User{
		UserID: "u-1", Username: "alice", PasswordHash: string(hash), Enable: true,
	}, nil)
	jwt.On("Sign", "u-1").Return("token-1", nil)

	u, token, err := svc.Login(context.Background(), "alice", "password123")
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.UserID)
	assert.Equal(t, "token-1", token)
}

func TestLogin_WrongPassword(t *testing.T) {
	us := &mockUserStore{}
	svc := NewService(ServiceDeps{UserRepo: us, JWTProvider: &mockJWTSigner{}})

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	us.On("GetByUsername", mock.Anything, "alice").Return(&domain.User{
		UserID: "u-1", Username: "alice", PasswordHash: string(hash), Enable: true,
	}, nil)

	_, _, err = svc.Login(context.Background(), "alice", "nope")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_DisabledAccount(t *testing.T) {
	us := &mockUserStore{}
	svc := NewService(ServiceDeps{UserRepo: us, JWTProvider: &mockJWTSigner{}})

	us.On("GetByUsername", mock.Anything, "alice").Return(&domain.User{
		UserID: "u-1", Username: "alice", Enable: false,
	}, nil)

	_, _, err := svc.Login(context.Background(), "alice", "password123")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_UnknownUser(t *testing.T) {
	us := &mockUserStore{}
	svc := NewService(ServiceDeps{UserRepo: us, JWTProvider: &mockJWTSigner{}})

	us.On("GetByUsername", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

	_, _, err := svc.Login(context.Background(), "ghost", "password123")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}
