package memory

import (
	"context"
	"errors"
	"sync"

	"invoicer/internal/storage"
)

// ErrWriteFailed is returned by Set while write failures are injected.
var ErrWriteFailed = errors.New("memory: write failed")

// Store keeps blobs in a map. It stands in for browser local storage in
// tests and in the memory backend.
type Store struct {
	mu         sync.Mutex
	blobs      map[string][]byte
	writes     int
	failWrites bool
}

func New() *Store {
	return &Store{blobs: make(map[string][]byte)}
}

// NewWith returns a store preloaded with one blob.
func NewWith(key string, data []byte) *Store {
	s := New()
	s.blobs[key] = append([]byte(nil), data...)
	return s
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *Store) Set(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return ErrWriteFailed
	}
	s.blobs[key] = append([]byte(nil), data...)
	s.writes++
	return nil
}

// FailWrites makes every following Set fail until called with false.
func (s *Store) FailWrites(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrites = fail
}

// Writes reports how many Set calls succeeded.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
