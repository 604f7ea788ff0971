package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/statyba/storefront/internal/domain/shared"
)

// AggregateTypeOrder is the aggregate type of order events
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderPlaced        = "OrderPlaced"
	EventTypeOrderStatusChanged = "OrderStatusChanged"
	EventTypeOrderDelivered     = "OrderDelivered"
)

// OrderPlacedEvent is published when checkout succeeds
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	Number     string          `json:"number"`
	CustomerID *uuid.UUID      `json:"customer_id,omitempty"`
	Email      string          `json:"email"`
	GrandTotal decimal.Decimal `json:"grand_total"`
	ItemCount  int             `json:"item_count"`
}

// NewOrderPlacedEvent creates an OrderPlacedEvent
func NewOrderPlacedEvent(o *Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, AggregateTypeOrder, o.ID),
		Number:          o.Number,
		CustomerID:      o.CustomerID,
		Email:           o.Email,
		GrandTotal:      o.GrandTotal,
		ItemCount:       o.ItemCount(),
	}
}

// OrderStatusChangedEvent is published on every status transition
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	Number string `json:"number"`
	From   Status `json:"from"`
	To     Status `json:"to"`
	Reason string `json:"reason,omitempty"`
}

// NewOrderStatusChangedEvent creates an OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *Order, from Status) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID),
		Number:          o.Number,
		From:            from,
		To:              o.Status,
		Reason:          o.CancelReason,
	}
}

// OrderDeliveredEvent is published when an order reaches the customer
type OrderDeliveredEvent struct {
	shared.BaseDomainEvent
	Number     string      `json:"number"`
	CustomerID *uuid.UUID  `json:"customer_id,omitempty"`
	ProductIDs []uuid.UUID `json:"product_ids"`
}

// NewOrderDeliveredEvent creates an OrderDeliveredEvent
func NewOrderDeliveredEvent(o *Order) *OrderDeliveredEvent {
	ids := make([]uuid.UUID, len(o.Items))
	for i, item := range o.Items {
		ids[i] = item.ProductID
	}
	return &OrderDeliveredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderDelivered, AggregateTypeOrder, o.ID),
		Number:          o.Number,
		CustomerID:      o.CustomerID,
		ProductIDs:      ids,
	}
}
