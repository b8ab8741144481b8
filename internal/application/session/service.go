package session

import (
	"context"
	"time"

	"github.com/otpgate/internal/domain"
	"github.com/otpgate/internal/pkg/id"
	"github.com/otpgate/internal/store"
)

type Service interface {
	Create(ctx context.Context, username, userID string) (*domain.Session, error)
}

type service struct {
	docs *store.Store
}

func NewService(docs *store.Store) Service {
	return &service{docs: docs}
}

// Create mints a session for an already-verified user. Callers must have
// consumed a valid verification code first; this service does not re-check.
func (s *service) Create(ctx context.Context, username, userID string) (*domain.Session, error) {
	now := time.Now().UTC()
	sess := domain.Session{
		SessionID:  id.New(),
		UserID:     userID,
		Username:   username,
		CreatedAt:  now,
		LastActive: now,
	}
	err := s.docs.Update(ctx, func(doc *domain.Document) error {
		doc.Sessions[sess.SessionID] = sess
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sess, nil
}
