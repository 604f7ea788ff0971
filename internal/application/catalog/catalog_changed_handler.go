package catalog

import (
	"context"

	"github.com/statyba/storefront/internal/domain/catalog"
	"github.com/statyba/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// CacheInvalidator drops cached entries by key prefix
type CacheInvalidator interface {
	DeletePrefix(ctx context.Context, prefix string) error
}

// CatalogChangedHandler drops cached output derived from the catalog,
// such as the sitemap, whenever a storefront-facing record changes.
type CatalogChangedHandler struct {
	cache    CacheInvalidator
	prefixes []string
	logger   *zap.Logger
}

// NewCatalogChangedHandler creates a handler that clears every prefix on change
func NewCatalogChangedHandler(cache CacheInvalidator, logger *zap.Logger, prefixes ...string) *CatalogChangedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogChangedHandler{
		cache:    cache,
		prefixes: prefixes,
		logger:   logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *CatalogChangedHandler) EventTypes() []string {
	return catalog.CatalogEventTypes()
}

// Handle processes a catalog change event
func (h *CatalogChangedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	for _, prefix := range h.prefixes {
		if err := h.cache.DeletePrefix(ctx, prefix); err != nil {
			h.logger.Error("failed to invalidate cache",
				zap.String("prefix", prefix),
				zap.String("event_type", event.EventType()),
				zap.Error(err),
			)
			return err
		}
	}

	h.logger.Debug("catalog cache invalidated",
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_id", event.AggregateID().String()),
	)
	return nil
}
