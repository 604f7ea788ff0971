package shared

import "context"

// EventHandler reacts to domain events. An empty EventTypes result
// subscribes the handler to everything.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	EventTypes() []string
}

// EventPublisher publishes domain events.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber manages handler registration. Subscribe falls back to the
// handler's own EventTypes when none are given.
type EventSubscriber interface {
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
}

// EventBus is a publisher and subscriber with a lifecycle.
type EventBus interface {
	EventPublisher
	EventSubscriber
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// PublishPending hands every aggregate's recorded events to publisher and
// clears them. Publish errors are logged by the bus and not returned. A nil
// publisher is a no-op.
func PublishPending[A AggregateRoot](ctx context.Context, publisher EventPublisher, aggregates ...A) {
	if publisher == nil {
		return
	}
	for _, agg := range aggregates {
		events := agg.GetDomainEvents()
		if len(events) == 0 {
			continue
		}
		_ = publisher.Publish(ctx, events...)
		agg.ClearDomainEvents()
	}
}
