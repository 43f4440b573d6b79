package service

import (
	"context"
	"sync"
	"time"
)

// RevocationStore хранит ID отозванных токенов до истечения их срока
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// MemoryRevocationStore - хранилище в памяти процесса
type MemoryRevocationStore struct {
	mu    sync.Mutex
	items map[string]time.Time
	now   func() time.Time
}

func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{
		items: make(map[string]time.Time),
		now:   time.Now,
	}
}

func (s *MemoryRevocationStore) Revoke(_ context.Context, jti string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Заодно чистим просроченные записи
	now := s.now()
	for id, exp := range s.items {
		if !exp.After(now) {
			delete(s.items, id)
		}
	}

	s.items[jti] = until
	return nil
}

func (s *MemoryRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.items[jti]
	return ok && exp.After(s.now()), nil
}
