package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/statyba/storefront/internal/domain/cart"
	"github.com/statyba/storefront/internal/domain/shared"
)

// RedisCartStore keeps carts as JSON documents under cart:{token}.
// A customer's cart is also reachable through cart:customer:{id}.
type RedisCartStore struct {
	client *redis.Client
}

// NewRedisCartStore creates a cart store on an existing Redis client
func NewRedisCartStore(client *redis.Client) *RedisCartStore {
	return &RedisCartStore{client: client}
}

func cartKey(token string) string {
	return "cart:" + token
}

func customerCartKey(id uuid.UUID) string {
	return "cart:customer:" + id.String()
}

// Get returns the cart for token or shared.ErrNotFound
func (s *RedisCartStore) Get(ctx context.Context, token string) (*cart.Cart, error) {
	raw, err := s.client.Get(ctx, cartKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	var c cart.Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	return &c, nil
}

// TokenForCustomer returns the token of the customer's cart, or "" when none exists
func (s *RedisCartStore) TokenForCustomer(ctx context.Context, customerID uuid.UUID) (string, error) {
	token, err := s.client.Get(ctx, customerCartKey(customerID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up customer cart: %w", err)
	}
	return token, nil
}

// Save writes the cart and its customer mapping with the same TTL
func (s *RedisCartStore) Save(ctx context.Context, c *cart.Cart, ttl time.Duration) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, cartKey(c.Token), raw, ttl)
		if c.CustomerID != nil {
			pipe.Set(ctx, customerCartKey(*c.CustomerID), c.Token, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// Delete removes the cart and, when it still points at this cart, the customer mapping
func (s *RedisCartStore) Delete(ctx context.Context, token string) error {
	existing, err := s.Get(ctx, token)
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	keys := []string{cartKey(token)}
	if existing.CustomerID != nil {
		mapped, err := s.TokenForCustomer(ctx, *existing.CustomerID)
		if err != nil {
			return err
		}
		if mapped == token {
			keys = append(keys, customerCartKey(*existing.CustomerID))
		}
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

var _ cart.Store = (*RedisCartStore)(nil)
