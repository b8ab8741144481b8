package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/otpgate/internal/application/account"
	"github.com/otpgate/internal/application/otp"
	"github.com/otpgate/internal/application/session"
	"github.com/otpgate/internal/audit"
	"github.com/otpgate/internal/domain"
	"github.com/otpgate/internal/pkg/validate"
)

// AuthHandler orchestrates the register → login → verify_login protocol.
type AuthHandler struct {
	accounts account.Service
	codes    otp.Service
	sessions session.Service
	trail    *audit.Logger
}

func NewAuthHandler(accounts account.Service, codes otp.Service, sessions session.Service, trail *audit.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, codes: codes, sessions: sessions, trail: trail}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "all fields are required")
		return
	}
	_, err := h.accounts.Register(r.Context(), req)
	h.trail.Record(audit.EventRegister, req.Username, err == nil)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, StatusEnvelope{Status: "success", Message: "registration complete"})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}
	u, err := h.accounts.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		h.trail.Record(audit.EventLogin, req.Username, false)
		writeError(w, statusForError(err), err.Error())
		return
	}
	code, err := h.codes.Issue(r.Context(), u)
	h.trail.Record(audit.EventLogin, req.Username, err == nil)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, LoginEnvelope{
		Status:           "pending",
		Message:          "verification code issued",
		VerificationCode: code,
	})
}

func (h *AuthHandler) VerifyLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "username and verification_code are required")
		return
	}
	if err := h.codes.Verify(r.Context(), req.Username, req.VerificationCode); err != nil {
		h.trail.Record(audit.EventVerifyLogin, req.Username, false)
		writeError(w, statusForError(err), err.Error())
		return
	}
	u, err := h.accounts.Get(r.Context(), req.Username)
	if err != nil {
		h.trail.Record(audit.EventVerifyLogin, req.Username, false)
		writeError(w, statusForError(err), err.Error())
		return
	}
	sess, err := h.sessions.Create(r.Context(), u.Username, u.UserID)
	h.trail.Record(audit.EventVerifyLogin, req.Username, err == nil)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, VerifyEnvelope{
		Status:    "success",
		Message:   "login complete",
		SessionID: sess.SessionID,
		User:      &SafeUser{Username: u.Username, Email: u.Email},
	})
}

// statusForError maps domain errors to HTTP status codes. Anything outside
// the domain taxonomy is a storage or programming fault and becomes a 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrDuplicateUser),
		errors.Is(err, domain.ErrNoPendingCode),
		errors.Is(err, domain.ErrCodeExpired),
		errors.Is(err, domain.ErrCodeMismatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
