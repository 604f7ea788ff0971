package cache

import (
	"context"
	"sync"
	"time"

	"github.com/statyba/storefront/internal/domain/shared"
)

// entry is a claimed key, optionally holding a remembered value
type entry struct {
	value     string
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

// InMemoryIdempotencyStore implements IdempotencyStore using an in-memory map.
// It is suitable for single-instance deployments and tests.
type InMemoryIdempotencyStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	janitor *janitor
}

// NewInMemoryIdempotencyStore creates a new in-memory idempotency store.
// A background goroutine drops expired entries until Close is called.
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	store := &InMemoryIdempotencyStore{
		entries: make(map[string]entry),
	}
	store.janitor = startJanitor(cleanupInterval, store.cleanup)
	return store
}

// MarkProcessed claims key with a TTL.
// Returns true if the key was newly claimed, false if a live claim exists.
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if e, ok := s.entries[key]; ok && !e.expired(now) {
		return false, nil
	}
	s.entries[key] = entry{expiresAt: now.Add(ttl)}
	return true, nil
}

// IsProcessed checks if key holds a live claim
func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	return ok && !e.expired(time.Now()), nil
}

// Remember stores value against key and refreshes its TTL
func (s *InMemoryIdempotencyStore) Remember(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Recall returns the value remembered for key, or "" if none
func (s *InMemoryIdempotencyStore) Recall(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok || e.expired(time.Now()) {
		return "", nil
	}
	return e.value, nil
}

// Forget drops key
func (s *InMemoryIdempotencyStore) Forget(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times
func (s *InMemoryIdempotencyStore) Close() error {
	s.janitor.stop()
	return nil
}

// cleanup removes expired entries from the store
func (s *InMemoryIdempotencyStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, key)
		}
	}
}

// Size returns the number of entries in the store (for testing/monitoring)
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
