package cache

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/statyba/storefront/internal/domain/cart"
	"github.com/statyba/storefront/internal/domain/shared"
	"github.com/statyba/storefront/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Stores bundles every cache-backed store the server needs
type Stores struct {
	Carts       cart.Store
	Idempotency shared.IdempotencyStore
	Blobs       BlobCache
	// Redis is nil when the in-memory stores are in use
	Redis *redis.Client

	closers []func() error
}

// Close releases the stores and the Redis connection
func (s *Stores) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Factory creates stores based on configuration
type Factory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory stores
// when Redis is unavailable. Default is true
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a new factory
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStores returns Redis-backed stores when Redis is enabled and reachable.
// Otherwise it falls back to in-memory stores if allowed.
func (f *Factory) CreateStores() (*Stores, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory carts and caches")
		return f.inMemory(), nil
	}

	client, err := NewRedisClient(f.redisConfig)
	if err == nil {
		f.logger.Info("using Redis stores", zap.String("addr", f.redisConfig.Addr()))
		return &Stores{
			Carts:       NewRedisCartStore(client),
			Idempotency: NewRedisIdempotencyStore(client, DefaultIdempotencyPrefix),
			Blobs:       NewRedisBlobCache(client, "storefront:"),
			Redis:       client,
			closers:     []func() error{client.Close},
		}, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required but unavailable: %w", err)
	}
	f.logger.Warn("Redis unavailable, falling back to in-memory stores. "+
		"Carts and checkout keys will not be shared between instances.",
		zap.Error(err),
	)
	return f.inMemory(), nil
}

func (f *Factory) inMemory() *Stores {
	carts := NewInMemoryCartStore()
	idem := NewInMemoryIdempotencyStore()
	blobs := NewInMemoryBlobCache()
	return &Stores{
		Carts:       carts,
		Idempotency: idem,
		Blobs:       blobs,
		closers:     []func() error{carts.Close, idem.Close, blobs.Close},
	}
}
