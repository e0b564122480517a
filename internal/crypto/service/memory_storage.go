package service

import (
	"context"
	"sync"

	cryptoDomain "github.com/allisson/casevault/internal/crypto/domain"
)

// MemoryStorage is an in-process SecureStorage for tests and ephemeral runs.
type MemoryStorage struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{entries: make(map[string][]byte)}
}

// IsAvailable always reports true.
func (s *MemoryStorage) IsAvailable(ctx context.Context) bool {
	return true
}

// Get returns a copy of the value stored under name.
func (s *MemoryStorage) Get(ctx context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.entries[name]
	if !ok {
		return nil, cryptoDomain.ErrSecretNotFound
	}
	return append([]byte(nil), value...), nil
}

// Set stores a copy of value under name.
func (s *MemoryStorage) Set(ctx context.Context, name string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[name] = append([]byte(nil), value...)
	return nil
}
