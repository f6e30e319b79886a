package memory

import (
	"context"
	"sync"
)

// Store keeps values in process memory. Values are copied on the way in and
// out so callers cannot alias stored bytes.
type Store struct {
	mu    sync.Mutex
	items map[string][]byte
}

func New() *Store {
	return &Store{items: make(map[string][]byte)}
}

// NewWithValues seeds the store, mainly for tests.
func NewWithValues(values map[string][]byte) *Store {
	s := New()
	for k, v := range values {
		s.items[k] = append([]byte(nil), v...)
	}
	return s
}

// Get implements kv.Getter
func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Set implements kv.Setter
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = append([]byte(nil), value...)
	return nil
}

// Keys returns the number of stored keys.
func (s *Store) Keys() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
