package session

import (
	"context"
	"sync"
)

var _ Backend = (*MemoryBackend)(nil)

// MemoryBackend keeps the session in process memory. It does not survive a
// restart and is meant for tests and throwaway agents.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		values: make(map[string]string),
	}
}

func (b *MemoryBackend) GetMany(_ context.Context, keys []string) (map[string]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	found := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := b.values[k]; ok {
			found[k] = v
		}
	}
	return found, nil
}

func (b *MemoryBackend) Apply(_ context.Context, set map[string]string, del []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for k, v := range set {
		b.values[k] = v
	}
	for _, k := range del {
		delete(b.values, k)
	}
	return nil
}

// Len reports how many keys are held.
func (b *MemoryBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.values)
}
