// Package client is the data synchronization SDK for the Haven listing API.
// It owns the request pipeline, the session, per-view preferences, the
// collection state container and the client-side filter/sort engine.
package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Preference keys. Filter, sort and view-mode keys are derived per view
// (e.g. "publicFilters", "publicSort", "publicView").
const (
	KeyToken              = "token"
	KeyUser               = "user"
	KeyRedirectAfterLogin = "redirectAfterLogin"
)

// FiltersKey returns the preference key holding a view's filter criteria.
func FiltersKey(view string) string { return view + "Filters" }

// SortKey returns the preference key holding a view's sort descriptor.
func SortKey(view string) string { return view + "Sort" }

// ViewModeKey returns the preference key holding a view's display mode.
func ViewModeKey(view string) string { return view + "View" }

// Store persists small client preferences as JSON, one value per key.
// Load reports false when the key has never been saved.
type Store interface {
	Load(key string, into any) (bool, error)
	Save(key string, v any) error
	Delete(key string) error
}

// FileStore is a Store keeping each key in its own JSON file under a directory.
// Values survive process restarts.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

// NewFileStore creates the directory if needed and returns a store over it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create prefs directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileStore) Load(key string, into any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read pref %s: %w", key, err)
	}
	if err := json.Unmarshal(data, into); err != nil {
		return false, fmt.Errorf("failed to decode pref %s: %w", key, err)
	}
	return true, nil
}

func (s *FileStore) Save(key string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode pref %s: %w", key, err)
	}
	if err := os.WriteFile(s.path(key), data, 0o600); err != nil {
		return fmt.Errorf("failed to write pref %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete pref %s: %w", key, err)
	}
	return nil
}

// MemStore is an in-memory Store for tests.
type MemStore struct {
	mu     sync.Mutex
	values map[string]json.RawMessage
}

func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string]json.RawMessage)}
}

func (s *MemStore) Load(key string, into any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.values[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, into); err != nil {
		return false, fmt.Errorf("failed to decode pref %s: %w", key, err)
	}
	return true, nil
}

func (s *MemStore) Save(key string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode pref %s: %w", key, err)
	}
	s.values[key] = data
	return nil
}

func (s *MemStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}
