package event

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/statyba/storefront/internal/domain/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ErrBusStopped is returned when publishing to a stopped asynchronous bus
var ErrBusStopped = errors.New("event bus is stopped")

const tracerName = "storefront/event"

// envelope carries one event and the context it was published with
type envelope struct {
	ctx   context.Context
	event shared.DomainEvent
}

// InMemoryEventBus implements EventBus with in-process pub/sub.
// By default events are dispatched synchronously inside Publish. With
// WithAsync the bus queues events and worker goroutines dispatch them between
// Start and Stop; Stop drains the queue before returning.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	tracer   trace.Tracer

	async      bool
	workers    int
	bufferSize int

	mu      sync.RWMutex
	queue   chan envelope
	running atomic.Bool
	wg      sync.WaitGroup
}

// BusOption configures the bus
type BusOption func(*InMemoryEventBus)

// WithAsync dispatches events on workers goroutines fed by a queue of bufferSize
func WithAsync(workers, bufferSize int) BusOption {
	return func(b *InMemoryEventBus) {
		b.async = true
		b.workers = max(workers, 1)
		b.bufferSize = max(bufferSize, 0)
	}
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger, opts ...BusOption) *InMemoryEventBus {
	b := &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger,
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish hands events to their handlers. Handler errors are logged and do not
// stop other handlers; the caller's operation already succeeded.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if !b.async {
		for _, event := range events {
			b.dispatch(ctx, event)
		}
		return nil
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.running.Load() {
		return ErrBusStopped
	}
	// handlers run after the request finished, so keep values but drop cancellation
	detached := context.WithoutCancel(ctx)
	for _, event := range events {
		select {
		case b.queue <- envelope{ctx: detached, event: event}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Subscribe registers a handler; without explicit types the handler's own are used
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
	b.logger.Debug("handler unsubscribed")
}

// Start launches the workers of an asynchronous bus. Calling it twice is a no-op
func (b *InMemoryEventBus) Start(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running.Load() {
		return nil
	}
	if b.async {
		b.queue = make(chan envelope, b.bufferSize)
		for range b.workers {
			b.wg.Add(1)
			go b.work(b.queue)
		}
	}
	b.running.Store(true)
	b.logger.Info("event bus started", zap.Bool("async", b.async), zap.Int("workers", b.workers))
	return nil
}

// Stop closes the queue and waits for queued events to be handled or ctx to end
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.mu.Lock()
	if !b.running.Load() {
		b.mu.Unlock()
		return nil
	}
	b.running.Store(false)
	if b.queue != nil {
		close(b.queue)
		b.queue = nil
	}
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		b.logger.Info("event bus stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *InMemoryEventBus) work(queue <-chan envelope) {
	defer b.wg.Done()
	for env := range queue {
		b.dispatch(env.ctx, env.event)
	}
}

// dispatch delivers one event to every interested handler inside a span
func (b *InMemoryEventBus) dispatch(ctx context.Context, event shared.DomainEvent) {
	ctx, span := b.tracer.Start(ctx, "event."+event.EventType(),
		trace.WithAttributes(
			attribute.String("event.type", event.EventType()),
			attribute.String("event.id", event.EventID().String()),
			attribute.String("aggregate.type", event.AggregateType()),
		))
	defer span.End()

	for _, handler := range b.registry.GetHandlers(event.EventType()) {
		if err := b.dispatchToHandler(ctx, handler, event); err != nil {
			span.RecordError(err)
			b.logger.Error("handler failed to process event",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
				zap.Error(err),
			)
		}
	}
}

// dispatchToHandler runs a handler, turning a panic into a logged error
func (b *InMemoryEventBus) dispatchToHandler(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked",
				zap.String("event_type", event.EventType()),
				zap.Any("panic", r),
			)
			err = errors.New("event handler panicked")
		}
	}()
	return handler.Handle(ctx, event)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
