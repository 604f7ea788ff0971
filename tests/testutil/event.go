package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/domain/shared"
)

// TestEvent is a domain event with no payload of its own
type TestEvent struct {
	shared.BaseDomainEvent
}

// NewTestEvent creates an event of eventType on a fresh aggregate
func NewTestEvent(eventType string) *TestEvent {
	return &TestEvent{
		BaseDomainEvent: shared.BaseDomainEvent{
			ID:        uuid.New(),
			Type:      eventType,
			Timestamp: time.Now(),
			AggID:     uuid.New(),
			AggType:   "Test",
		},
	}
}
