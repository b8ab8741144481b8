package id

import (
	"crypto/rand"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// New generates a random UUID string, used for user and session identifiers.
func New() string {
	return uuid.NewString()
}

// NewEvent generates a ULID string for audit events. ULIDs are
// lexicographically sortable by creation time, so the audit log sorts itself.
func NewEvent() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
