package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/otpgate/internal/domain"
	"github.com/otpgate/internal/store"
)

// Notifier delivers an issued code out of band. Delivery is best-effort:
// a failed delivery never fails the login, since the code is also surfaced
// in the response for now.
type Notifier interface {
	Notify(ctx context.Context, user *domain.User, code string) error
}

type Service interface {
	Issue(ctx context.Context, user *domain.User) (string, error)
	Verify(ctx context.Context, username, code string) error
}

type service struct {
	docs     *store.Store
	notifier Notifier
	ttl      time.Duration
}

func NewService(docs *store.Store, notifier Notifier, ttl time.Duration) Service {
	return &service{docs: docs, notifier: notifier, ttl: ttl}
}

// Issue stores a fresh 6-digit code for the user, replacing any pending one,
// and dispatches it through the notifier.
func (s *service) Issue(ctx context.Context, user *domain.User) (string, error) {
	code, err := newCode()
	if err != nil {
		return "", err
	}
	err = s.docs.Update(ctx, func(doc *domain.Document) error {
		doc.VerificationCodes[user.Username] = domain.VerificationCode{
			Code:      code,
			ExpiresAt: time.Now().UTC().Add(s.ttl),
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if err := s.notifier.Notify(ctx, user, code); err != nil {
		slog.Warn("verification code delivery failed", "username", user.Username, "err", err)
	}
	return code, nil
}

// Verify consumes the pending code for the username. An expired code is
// deleted even though verification fails — once checked, a code is never
// reusable. A mismatched code stays pending so the user can retry until the
// 5-minute window closes.
func (s *service) Verify(ctx context.Context, username, code string) error {
	var verifyErr error
	err := s.docs.Update(ctx, func(doc *domain.Document) error {
		pending, ok := doc.VerificationCodes[username]
		if !ok {
			return fmt.Errorf("no code issued for %q: %w", username, domain.ErrNoPendingCode)
		}
		if time.Now().After(pending.ExpiresAt) {
			delete(doc.VerificationCodes, username)
			verifyErr = fmt.Errorf("code for %q expired: %w", username, domain.ErrCodeExpired)
			return nil // persist the consumption
		}
		if pending.Code != code {
			return fmt.Errorf("code for %q does not match: %w", username, domain.ErrCodeMismatch)
		}
		delete(doc.VerificationCodes, username)
		return nil
	})
	if err != nil {
		return err
	}
	return verifyErr
}

// newCode draws a 6-digit numeric code uniformly at random, leading zeros
// included.
func newCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
