package memory

import (
	"context"
	"sync"

	"github.com/DarshanM12/student-ecommerce/internal/domain"
)

// kvStoreInMemory хранит значения в памяти (для разработки/тестов).
type kvStoreInMemory struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewKeyValueStore создаёт in-memory реализацию KeyValueStore.
func NewKeyValueStore() domain.KeyValueStore {
	return &kvStoreInMemory{values: make(map[string][]byte)}
}

func (s *kvStoreInMemory) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (s *kvStoreInMemory) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = append([]byte(nil), value...)
	return nil
}

func (s *kvStoreInMemory) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

var _ domain.KeyValueStore = (*kvStoreInMemory)(nil)
