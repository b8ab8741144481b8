package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/otpgate/internal/audit"
	"github.com/otpgate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockAccountSvc struct{ mock.Mock }

func (m *mockAccountSvc) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountSvc) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	args := m.Called(ctx, username, password)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountSvc) Get(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockOTPSvc struct{ mock.Mock }

func (m *mockOTPSvc) Issue(ctx context.Context, user *domain.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *mockOTPSvc) Verify(ctx context.Context, username, code string) error {
	return m.Called(ctx, username, code).Error(0)
}

type mockSessionSvc struct{ mock.Mock }

func (m *mockSessionSvc) Create(ctx context.Context, username, userID string) (*domain.Session, error) {
	args := m.Called(ctx, username, userID)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func newHandler(accounts *mockAccountSvc, codes *mockOTPSvc, sessions *mockSessionSvc) *AuthHandler {
	return NewAuthHandler(accounts, codes, sessions, audit.New(""))
}

func postJSON(t *testing.T, h http.HandlerFunc, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(raw))
	rr := httptest.NewRecorder()
	h(rr, r)
	return rr
}

// --- Register ---

func TestRegister_InvalidBody(t *testing.T) {
	h := newHandler(&mockAccountSvc{}, &mockOTPSvc{}, &mockSessionSvc{})
	r := httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewBufferString("not-json"))
	rr := httptest.NewRecorder()
	h.Register(rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRegister_MissingFields(t *testing.T) {
	h := newHandler(&mockAccountSvc{}, &mockOTPSvc{}, &mockSessionSvc{})
	rr := postJSON(t, h.Register, "/api/register", domain.RegisterRequest{Username: "alice"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var resp StatusEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "error", resp.Status)
}

func TestRegister_Duplicate(t *testing.T) {
	accounts := &mockAccountSvc{}
	accounts.On("Register", mock.Anything, mock.Anything).Return(nil, domain.ErrDuplicateUser)
	h := newHandler(accounts, &mockOTPSvc{}, &mockSessionSvc{})

	rr := postJSON(t, h.Register, "/api/register", domain.RegisterRequest{
		Username: "alice", Email: "a@x.com", Password: "pw1",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	accounts.AssertExpectations(t)
}

func TestRegister_HappyPath(t *testing.T) {
	accounts := &mockAccountSvc{}
	accounts.On("Register", mock.Anything, mock.Anything).Return(&domain.User{UserID: "u1", Username: "alice"}, nil)
	h := newHandler(accounts, &mockOTPSvc{}, &mockSessionSvc{})

	rr := postJSON(t, h.Register, "/api/register", domain.RegisterRequest{
		Username: "alice", Email: "a@x.com", Password: "pw1",
	})
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp StatusEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "success", resp.Status)
	accounts.AssertExpectations(t)
}

// --- Login ---

func TestLogin_MissingFields(t *testing.T) {
	h := newHandler(&mockAccountSvc{}, &mockOTPSvc{}, &mockSessionSvc{})
	rr := postJSON(t, h.Login, "/api/login", domain.LoginRequest{Username: "alice"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	accounts := &mockAccountSvc{}
	accounts.On("Authenticate", mock.Anything, "bob", "wrong").Return(nil, domain.ErrInvalidCredentials)
	h := newHandler(accounts, &mockOTPSvc{}, &mockSessionSvc{})

	rr := postJSON(t, h.Login, "/api/login", domain.LoginRequest{Username: "bob", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	accounts.AssertExpectations(t)
}

func TestLogin_HappyPath_ReturnsPendingAndCode(t *testing.T) {
	alice := &domain.User{UserID: "u1", Username: "alice", Email: "a@x.com"}
	accounts := &mockAccountSvc{}
	accounts.On("Authenticate", mock.Anything, "alice", "pw1").Return(alice, nil)
	codes := &mockOTPSvc{}
	codes.On("Issue", mock.Anything, alice).Return("042137", nil)
	h := newHandler(accounts, codes, &mockSessionSvc{})

	rr := postJSON(t, h.Login, "/api/login", domain.LoginRequest{Username: "alice", Password: "pw1"})
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp LoginEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "042137", resp.VerificationCode)
	accounts.AssertExpectations(t)
	codes.AssertExpectations(t)
}

// --- VerifyLogin ---

func TestVerifyLogin_MissingFields(t *testing.T) {
	h := newHandler(&mockAccountSvc{}, &mockOTPSvc{}, &mockSessionSvc{})
	rr := postJSON(t, h.VerifyLogin, "/api/verify_login", domain.VerifyLoginRequest{Username: "alice"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestVerifyLogin_NoPendingCode(t *testing.T) {
	codes := &mockOTPSvc{}
	codes.On("Verify", mock.Anything, "alice", "123456").Return(domain.ErrNoPendingCode)
	h := newHandler(&mockAccountSvc{}, codes, &mockSessionSvc{})

	rr := postJSON(t, h.VerifyLogin, "/api/verify_login", domain.VerifyLoginRequest{
		Username: "alice", VerificationCode: "123456",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	codes.AssertExpectations(t)
}

func TestVerifyLogin_Expired(t *testing.T) {
	codes := &mockOTPSvc{}
	codes.On("Verify", mock.Anything, "alice", "123456").Return(domain.ErrCodeExpired)
	h := newHandler(&mockAccountSvc{}, codes, &mockSessionSvc{})

	rr := postJSON(t, h.VerifyLogin, "/api/verify_login", domain.VerifyLoginRequest{
		Username: "alice", VerificationCode: "123456",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestVerifyLogin_HappyPath(t *testing.T) {
	alice := &domain.User{UserID: "u1", Username: "alice", Email: "a@x.com"}
	codes := &mockOTPSvc{}
	codes.On("Verify", mock.Anything, "alice", "123456").Return(nil)
	accounts := &mockAccountSvc{}
	accounts.On("Get", mock.Anything, "alice").Return(alice, nil)
	sessions := &mockSessionSvc{}
	sessions.On("Create", mock.Anything, "alice", "u1").Return(&domain.Session{
		SessionID: "s1", UserID: "u1", Username: "alice",
	}, nil)
	h := newHandler(accounts, codes, sessions)

	rr := postJSON(t, h.VerifyLogin, "/api/verify_login", domain.VerifyLoginRequest{
		Username: "alice", VerificationCode: "123456",
	})
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp VerifyEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "s1", resp.SessionID)
	require.NotNil(t, resp.User)
	assert.Equal(t, "alice", resp.User.Username)
	assert.Equal(t, "a@x.com", resp.User.Email)
	codes.AssertExpectations(t)
	sessions.AssertExpectations(t)
}
