// Package store wraps a document backend with the process-wide critical
// section that serializes every load-modify-save cycle. Backends persist the
// whole document; the granularity of every mutation is document-level, so a
// single mutex is the isolation boundary.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/otpgate/internal/domain"
)

// Backend persists the entire document as one unit.
type Backend interface {
	// Init creates an empty document if none exists yet. Called once at
	// process start, before any request is served.
	Init(ctx context.Context) error
	Load(ctx context.Context) (*domain.Document, error)
	Save(ctx context.Context, doc *domain.Document) error
}

// Store serializes all document access through a single mutex. Two concurrent
// requests can never interleave their read-modify-write cycles, so no update
// is silently lost.
type Store struct {
	mu      sync.Mutex
	backend Backend
}

func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// Init initializes the backing store. Must succeed before the server starts.
func (s *Store) Init(ctx context.Context) error {
	if err := s.backend.Init(ctx); err != nil {
		return fmt.Errorf("init document store: %w", err)
	}
	return nil
}

// View loads the document and runs fn against it without persisting.
// Mutations made by fn are discarded.
func (s *Store) View(ctx context.Context, fn func(doc *domain.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.backend.Load(ctx)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	doc.Normalize()
	return fn(doc)
}

// Update loads the document, runs fn, and saves the result. The document is
// persisted only when fn returns nil; a non-nil error aborts the cycle with
// nothing written.
func (s *Store) Update(ctx context.Context, fn func(doc *domain.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.backend.Load(ctx)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	doc.Normalize()
	if err := fn(doc); err != nil {
		return err
	}
	if err := s.backend.Save(ctx, doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}
