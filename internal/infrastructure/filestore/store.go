// Package filestore persists the document as a single flat JSON file.
// This is the default backend: one pretty-printed file, rewritten wholesale
// on every mutation.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/otpgate/internal/domain"
)

// Store reads and writes the whole document to one JSON file on disk.
type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

// Init creates the data directory and an empty document if the file is absent.
func (s *Store) Init(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", s.path, err)
	}
	return s.Save(ctx, domain.NewDocument())
}

func (s *Store) Load(_ context.Context) (*domain.Document, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %v: %w", s.path, err, domain.ErrStorage)
	}
	var doc domain.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %v: %w", s.path, err, domain.ErrStorage)
	}
	return &doc, nil
}

// Save writes to a temp file in the same directory and renames it over the
// target, so a crash mid-write never leaves a truncated document behind.
func (s *Store) Save(_ context.Context, doc *domain.Document) error {
	raw, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("encode document: %v: %w", err, domain.ErrStorage)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %v: %w", err, domain.ErrStorage)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %v: %w", err, domain.ErrStorage)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %v: %w", err, domain.ErrStorage)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %v: %w", s.path, err, domain.ErrStorage)
	}
	return nil
}
