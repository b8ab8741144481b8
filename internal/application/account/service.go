package account

import (
	"context"
	"fmt"
	"time"

	"github.com/otpgate/internal/domain"
	"github.com/otpgate/internal/pkg/id"
	"github.com/otpgate/internal/store"
	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	Get(ctx context.Context, username string) (*domain.User, error)
}

type service struct {
	docs *store.Store
}

func NewService(docs *store.Store) Service {
	return &service{docs: docs}
}

// Register creates a new user. Usernames are the primary key of the user
// mapping, so a duplicate aborts the update with nothing written. Passwords
// are stored as bcrypt hashes only.
func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := domain.User{
		UserID:       id.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	err = s.docs.Update(ctx, func(doc *domain.Document) error {
		if _, exists := doc.Users[req.Username]; exists {
			return fmt.Errorf("username %q already taken: %w", req.Username, domain.ErrDuplicateUser)
		}
		doc.Users[req.Username] = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Get looks up a user by username. Verified callers use it to build the
// response after the code check consumed the pending code.
func (s *service) Get(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := s.docs.View(ctx, func(doc *domain.Document) error {
		stored, ok := doc.Users[username]
		if !ok {
			return fmt.Errorf("unknown user %q: %w", username, domain.ErrInvalidCredentials)
		}
		u = stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Authenticate checks the password against the stored hash. A missing user
// and a wrong password return the same error so the response does not reveal
// which usernames exist.
func (s *service) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	var u domain.User
	err := s.docs.View(ctx, func(doc *domain.Document) error {
		stored, ok := doc.Users[username]
		if !ok {
			return domain.ErrInvalidCredentials
		}
		if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(password)); err != nil {
			return domain.ErrInvalidCredentials
		}
		u = stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}
