package inventory

import (
	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/domain/shared"
)

// AggregateTypeStockItem is the aggregate type of stock events
const AggregateTypeStockItem = "StockItem"

// Event type constants
const (
	EventTypeStockAdjusted = "StockAdjusted"
	EventTypeStockLow      = "StockLow"
)

// StockAdjustedEvent is published whenever on-hand quantity changes
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID    `json:"product_id"`
	Type      MovementType `json:"movement_type"`
	Delta     int          `json:"delta"`
	Before    int          `json:"before"`
	After     int          `json:"after"`
	Reason    string       `json:"reason"`
}

// NewStockAdjustedEvent creates a StockAdjustedEvent from a movement
func NewStockAdjustedEvent(item *StockItem, m *StockMovement) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAdjusted, AggregateTypeStockItem, item.ID),
		ProductID:       item.ProductID,
		Type:            m.Type,
		Delta:           m.Delta,
		Before:          m.Before,
		After:           m.After,
		Reason:          m.Reason,
	}
}

// StockLowEvent is published when available stock drops to the low-stock threshold
type StockLowEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Available int       `json:"available"`
	Threshold int       `json:"threshold"`
}

// NewStockLowEvent creates a StockLowEvent
func NewStockLowEvent(item *StockItem) *StockLowEvent {
	return &StockLowEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockLow, AggregateTypeStockItem, item.ID),
		ProductID:       item.ProductID,
		Available:       item.Available(),
		Threshold:       item.LowStockThreshold,
	}
}
