package persistence

import "sync"

// MemoryStore is a goroutine-safe Store backed by a map. It is the default
// backend for local runs and tests; results do not survive the process.
type MemoryStore struct {
	mu      sync.RWMutex
	results map[string]any
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		results: make(map[string]any),
	}
}

var _ Store = (*MemoryStore)(nil)

// MemoryProvider returns a Provider that creates a fresh MemoryStore per run.
func MemoryProvider() Provider {
	return func(runID string) (Store, error) {
		return NewMemoryStore(), nil
	}
}

func (s *MemoryStore) Save(address string, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results[address] = payload
	return nil
}

func (s *MemoryStore) Lookup(address string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, ok := s.results[address]
	return payload, ok
}

func (s *MemoryStore) Addresses() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	addrs := make([]string, 0, len(s.results))
	for addr := range s.results {
		addrs = append(addrs, addr)
	}
	return addrs
}
