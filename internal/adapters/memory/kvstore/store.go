package kvstore

import (
	"context"
	"sync"

	"github.com/Overland-East-Bay/membership-tracker/internal/ports/out/kvstore"
)

// Store is an in-memory implementation of kvstore.Store.
// It is safe for concurrent use.
type Store struct {
	mu sync.RWMutex
	m  map[string][]byte

	// FailPut, when set, is returned by every Put. Used to simulate a full disk.
	FailPut error
}

func NewStore() *Store {
	return &Store{
		m: make(map[string][]byte),
	}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	_ = ctx
	if !kvstore.ValidKey(key) {
		return nil, false, kvstore.ErrInvalidKey
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	if !ok {
		return nil, false, nil
	}
	return cloneBytes(v), true, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	_ = ctx
	if !kvstore.ValidKey(key) {
		return kvstore.ErrInvalidKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailPut != nil {
		return s.FailPut
	}
	s.m[key] = cloneBytes(value)
	return nil
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
