package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrValidation         = errors.New("missing required field")
	ErrDuplicateUser      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoPendingCode      = errors.New("no pending verification code")
	ErrCodeExpired        = errors.New("verification code expired")
	ErrCodeMismatch       = errors.New("verification code mismatch")
	ErrStorage            = errors.New("storage failure")
)
