package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/domain/cart"
	"github.com/statyba/storefront/internal/domain/shared"
)

type cartEntry struct {
	raw       []byte
	expiresAt time.Time
}

type tokenEntry struct {
	token     string
	expiresAt time.Time
}

// InMemoryCartStore keeps carts in process memory. Carts are stored encoded so
// callers never share mutable state with the store.
type InMemoryCartStore struct {
	mu        sync.RWMutex
	carts     map[string]cartEntry
	customers map[uuid.UUID]tokenEntry
	janitor   *janitor
}

// NewInMemoryCartStore creates an in-memory cart store
func NewInMemoryCartStore() *InMemoryCartStore {
	s := &InMemoryCartStore{
		carts:     make(map[string]cartEntry),
		customers: make(map[uuid.UUID]tokenEntry),
	}
	s.janitor = startJanitor(cleanupInterval, s.cleanup)
	return s
}

// Get returns the cart for token or shared.ErrNotFound
func (s *InMemoryCartStore) Get(_ context.Context, token string) (*cart.Cart, error) {
	s.mu.RLock()
	e, ok := s.carts[token]
	s.mu.RUnlock()

	if !ok || !time.Now().Before(e.expiresAt) {
		return nil, shared.ErrNotFound
	}
	var c cart.Cart
	if err := json.Unmarshal(e.raw, &c); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	return &c, nil
}

// TokenForCustomer returns the token of the customer's cart, or ""
func (s *InMemoryCartStore) TokenForCustomer(_ context.Context, customerID uuid.UUID) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.customers[customerID]
	if !ok || !time.Now().Before(e.expiresAt) {
		return "", nil
	}
	return e.token, nil
}

// Save stores the cart with ttl
func (s *InMemoryCartStore) Save(_ context.Context, c *cart.Cart, ttl time.Duration) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	expires := time.Now().Add(ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[c.Token] = cartEntry{raw: raw, expiresAt: expires}
	if c.CustomerID != nil {
		s.customers[*c.CustomerID] = tokenEntry{token: c.Token, expiresAt: expires}
	}
	return nil
}

// Delete removes the cart and any customer mapping pointing at it
func (s *InMemoryCartStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, token)
	for id, e := range s.customers {
		if e.token == token {
			delete(s.customers, id)
		}
	}
	return nil
}

// Close stops the cleanup goroutine
func (s *InMemoryCartStore) Close() error {
	s.janitor.stop()
	return nil
}

func (s *InMemoryCartStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for token, e := range s.carts {
		if !now.Before(e.expiresAt) {
			delete(s.carts, token)
		}
	}
	for id, e := range s.customers {
		if !now.Before(e.expiresAt) {
			delete(s.customers, id)
		}
	}
}

var _ cart.Store = (*InMemoryCartStore)(nil)
