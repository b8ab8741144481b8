package handler

import (
	"encoding/json"
	"net/http"
)

// StatusEnvelope is the generic response wrapper.
type StatusEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// LoginEnvelope wraps the pending-verification login response. The code is
// echoed here as a test aid for deployments without a real delivery channel.
type LoginEnvelope struct {
	Status           string `json:"status"`
	Message          string `json:"message,omitempty"`
	VerificationCode string `json:"verification_code"`
}

// VerifyEnvelope wraps the successful verify-login response.
type VerifyEnvelope struct {
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
	SessionID string    `json:"session_id"`
	User      *SafeUser `json:"user"`
}

// SafeUser is the user shape exposed over the wire — never the hash.
type SafeUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, StatusEnvelope{Status: "error", Error: msg})
}
