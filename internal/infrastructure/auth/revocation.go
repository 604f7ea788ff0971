package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList invalidates tokens before they expire
type RevocationList interface {
	// Revoke invalidates a single token by JTI for ttl
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// RevokeCustomer invalidates every token of the customer issued
	// before the current second
	RevokeCustomer(ctx context.Context, customerID string, ttl time.Duration) error
	IsCustomerRevoked(ctx context.Context, customerID string, issuedAt time.Time) (bool, error)
}

// Check reports ErrTokenRevoked when claims have been invalidated
func Check(ctx context.Context, list RevocationList, claims *Claims) error {
	if list == nil {
		return nil
	}
	revoked, err := list.IsRevoked(ctx, claims.ID)
	if err != nil {
		return err
	}
	if !revoked {
		revoked, err = list.IsCustomerRevoked(ctx, claims.CustomerID, claims.IssuedAtTime())
		if err != nil {
			return err
		}
	}
	if revoked {
		return ErrTokenRevoked
	}
	return nil
}

// RedisRevocationList implements RevocationList using Redis
type RedisRevocationList struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisRevocationList creates a revocation list on an existing client
func NewRedisRevocationList(client *redis.Client) *RedisRevocationList {
	return &RedisRevocationList{client: client, keyPrefix: "auth:revoked:"}
}

func (l *RedisRevocationList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := l.client.Set(ctx, l.keyPrefix+"jti:"+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (l *RedisRevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := l.client.Exists(ctx, l.keyPrefix+"jti:"+jti).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}

func (l *RedisRevocationList) RevokeCustomer(ctx context.Context, customerID string, ttl time.Duration) error {
	err := l.client.Set(ctx, l.keyPrefix+"customer:"+customerID, time.Now().Unix(), ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to revoke customer tokens: %w", err)
	}
	return nil
}

func (l *RedisRevocationList) IsCustomerRevoked(ctx context.Context, customerID string, issuedAt time.Time) (bool, error) {
	raw, err := l.client.Get(ctx, l.keyPrefix+"customer:"+customerID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check customer revocation: %w", err)
	}
	cutoff, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("failed to parse revocation timestamp: %w", err)
	}
	return issuedAt.Unix() < cutoff, nil
}

var _ RevocationList = (*RedisRevocationList)(nil)

// InMemoryRevocationList is a single-process RevocationList
type InMemoryRevocationList struct {
	mu        sync.Mutex
	jtis      map[string]time.Time // JTI -> expiry
	customers map[string]int64     // customer -> cutoff unix second
}

// NewInMemoryRevocationList creates an empty list
func NewInMemoryRevocationList() *InMemoryRevocationList {
	return &InMemoryRevocationList{
		jtis:      make(map[string]time.Time),
		customers: make(map[string]int64),
	}
}

func (l *InMemoryRevocationList) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.jtis[jti] = time.Now().Add(ttl)
	return nil
}

func (l *InMemoryRevocationList) IsRevoked(_ context.Context, jti string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	exp, ok := l.jtis[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(exp) {
		delete(l.jtis, jti)
		return false, nil
	}
	return true, nil
}

func (l *InMemoryRevocationList) RevokeCustomer(_ context.Context, customerID string, _ time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.customers[customerID] = time.Now().Unix()
	return nil
}

func (l *InMemoryRevocationList) IsCustomerRevoked(_ context.Context, customerID string, issuedAt time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff, ok := l.customers[customerID]
	if !ok {
		return false, nil
	}
	return issuedAt.Unix() < cutoff, nil
}

var _ RevocationList = (*InMemoryRevocationList)(nil)
