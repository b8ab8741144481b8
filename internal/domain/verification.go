package domain

import "time"

// VerificationCode is a pending one-time login code. At most one exists per
// username; issuing a new one overwrites any previous code. Expiry is checked
// lazily at verification time — there is no background sweep.
type VerificationCode struct {
	Code      string    `json:"code" dynamodbav:"code"`
	ExpiresAt time.Time `json:"expires_at" dynamodbav:"expires_at"`
}
