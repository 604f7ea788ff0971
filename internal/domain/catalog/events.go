package catalog

import (
	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeProduct    = "Product"
	AggregateTypeBrand      = "Brand"
	AggregateTypeCategory   = "Category"
	AggregateTypeCollection = "Collection"
)

// Event type constants
const (
	EventTypeProductChanged    = "ProductChanged"
	EventTypeProductDeleted    = "ProductDeleted"
	EventTypeBrandChanged      = "BrandChanged"
	EventTypeCategoryChanged   = "CategoryChanged"
	EventTypeCollectionChanged = "CollectionChanged"
)

// CatalogChangedEvent signals that a storefront-facing catalog record changed.
// Consumers use it to drop cached listings and sitemaps.
type CatalogChangedEvent struct {
	shared.BaseDomainEvent
	Slug string `json:"slug"`
}

// NewCatalogChangedEvent creates a new CatalogChangedEvent
func NewCatalogChangedEvent(eventType, aggType string, id uuid.UUID, slug string) *CatalogChangedEvent {
	return &CatalogChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, aggType, id),
		Slug:            slug,
	}
}

// CatalogEventTypes lists every catalog change event type
func CatalogEventTypes() []string {
	return []string{
		EventTypeProductChanged,
		EventTypeProductDeleted,
		EventTypeBrandChanged,
		EventTypeCategoryChanged,
		EventTypeCollectionChanged,
	}
}
