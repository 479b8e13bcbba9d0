package cache

import (
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is a process-local Store, used when no Redis address is configured.
type MemoryStore struct {
	mu        sync.RWMutex
	items     map[string]memoryItem
	gens      map[string]uint64
	stopClean chan struct{}
	closeOnce sync.Once
}

// NewMemoryStore starts a cleanup loop unless cleanupInterval is 0.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		items:     make(map[string]memoryItem),
		gens:      make(map[string]uint64),
		stopClean: make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go s.cleanupLoop(cleanupInterval)
	}
	return s
}

func (s *MemoryStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.deleteExpired(time.Now())
		case <-s.stopClean:
			return
		}
	}
}

func (s *MemoryStore) deleteExpired(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range s.items {
		if now.After(v.expiresAt) {
			delete(s.items, k)
		}
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.items[key]
	if !ok || time.Now().After(it.expiresAt) {
		return nil, ErrNotFound
	}

	out := make([]byte, len(it.value))
	copy(out, it.value)
	return out, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	v := make([]byte, len(value))
	copy(v, value)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[key] = memoryItem{value: v, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Generation(ctx context.Context, key string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gens[key], nil
}

func (s *MemoryStore) SetIfGeneration(ctx context.Context, key string, value []byte, ttl time.Duration, gen uint64) (bool, error) {
	v := make([]byte, len(value))
	copy(v, value)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gens[key] != gen {
		return false, nil
	}
	s.items[key] = memoryItem{value: v, expiresAt: time.Now().Add(ttl)}
	return true, nil
}

func (s *MemoryStore) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range keys {
		delete(s.items, k)
		s.gens[k]++
	}
	return nil
}

func (s *MemoryStore) Close() error {
	s.closeOnce.Do(func() { close(s.stopClean) })
	return nil
}

var _ Store = (*MemoryStore)(nil)
