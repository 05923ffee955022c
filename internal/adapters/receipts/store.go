// Package receipts persists installation receipts in a JSON file.
package receipts

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/selfie/internal/core/domain"
	"go.trai.ch/zerr"
)

// FileName is the name of the receipts file inside the state directory.
const FileName = "receipts.json"

// Store implements ports.ReceiptStore using a flat JSON file.
type Store struct {
	path  string
	mu    sync.RWMutex
	cache map[string]domain.Receipt
}

// DefaultPath returns the receipts file in the user's cache directory.
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", zerr.Wrap(err, "failed to locate user cache directory")
	}
	return filepath.Join(dir, "selfie", FileName), nil
}

// NewStore creates a Store backed by the file at path. A missing file is an empty store.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path:  filepath.Clean(path),
		cache: make(map[string]domain.Receipt),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.With(zerr.Wrap(err, "failed to read receipts"), "file", s.path)
	}

	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, &s.cache); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to unmarshal receipts"), "file", s.path)
	}

	return nil
}

func (s *Store) save() error {
	s.mu.RLock()
	data, err := json.MarshalIndent(s.cache, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return zerr.Wrap(err, "failed to marshal receipts")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return zerr.Wrap(err, "failed to create directory for receipts")
	}

	// Readers never see a partially written file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return zerr.Wrap(err, "failed to write receipts")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return zerr.Wrap(err, "failed to replace receipts")
	}

	return nil
}

// Get returns the receipt for name, or nil if the package has none.
func (s *Store) Get(name string) (*domain.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.cache[name]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

// Put stores receipts and writes the file.
func (s *Store) Put(receipts ...domain.Receipt) error {
	if len(receipts) == 0 {
		return nil
	}

	s.mu.Lock()
	for _, r := range receipts {
		s.cache[r.Package] = r
	}
	s.mu.Unlock()

	return s.save()
}
