package domain

import "time"

// Session is minted only after a successful verification-code check.
// The session_id is an opaque UUID; there is no refresh or revoke operation,
// so a session lives until the store is cleaned up externally.
type Session struct {
	SessionID  string    `json:"session_id" dynamodbav:"session_id"`
	UserID     string    `json:"user_id" dynamodbav:"user_id"`
	Username   string    `json:"username" dynamodbav:"username"`
	CreatedAt  time.Time `json:"created_at" dynamodbav:"created_at"`
	LastActive time.Time `json:"last_active" dynamodbav:"last_active"`
}
