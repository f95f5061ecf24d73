package storage

import (
	"context"
	"errors"
	"sync"

	appbanking "github.com/buchmeister/backend/internal/application/banking"
)

// ErrObjectNotFound is returned when a stored object does not exist
var ErrObjectNotFound = errors.New("object not found")

// StubObjectStorage keeps attachment blobs in memory. Use this for
// development and tests until a real S3 backend is configured.
type StubObjectStorage struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewStubObjectStorage creates a new StubObjectStorage
func NewStubObjectStorage() *StubObjectStorage {
	return &StubObjectStorage{
		objects: make(map[string][]byte),
	}
}

// Ensure StubObjectStorage implements ObjectStorage
var _ appbanking.ObjectStorage = (*StubObjectStorage)(nil)

// Put stores a blob in memory
func (s *StubObjectStorage) Put(_ context.Context, key, _ string, data []byte) error {
	if key == "" {
		return errors.New("storage key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	s.objects[key] = stored
	return nil
}

// Get returns a stored blob
func (s *StubObjectStorage) Get(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.New("storage key is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Delete removes a stored blob. Deleting a missing key is not an error.
func (s *StubObjectStorage) Delete(_ context.Context, key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Len returns the number of stored objects
func (s *StubObjectStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
