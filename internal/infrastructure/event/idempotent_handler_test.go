package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/statyba/storefront/internal/domain/shared"
	"github.com/statyba/storefront/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockEventHandler is a testify mock of shared.EventHandler
type MockEventHandler struct {
	mock.Mock
}

func (m *MockEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventHandler) EventTypes() []string {
	return []string{"OrderDelivered"}
}

// failingStore is an idempotency store whose claims always fail
type failingStore struct {
	shared.IdempotencyStore
}

func (failingStore) MarkProcessed(context.Context, string, time.Duration) (bool, error) {
	return false, errors.New("redis down")
}

func TestIdempotentHandler_NewEvent(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	inner := new(MockEventHandler)
	event := newTestEvent("OrderDelivered")
	inner.On("Handle", mock.Anything, event).Return(nil)

	handler := NewIdempotentHandler(inner, store, zap.NewNop())
	require.NoError(t, handler.Handle(context.Background(), event))

	inner.AssertExpectations(t)
	assert.Equal(t, IdempotencyStats{EventsProcessed: 1}, handler.Stats())
	assert.Equal(t, []string{"OrderDelivered"}, handler.EventTypes())
}

func TestIdempotentHandler_DuplicateEvent(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	inner := new(MockEventHandler)
	event := newTestEvent("OrderDelivered")
	inner.On("Handle", mock.Anything, event).Return(nil).Once()

	handler := NewIdempotentHandler(inner, store, zap.NewNop())
	for range 3 {
		require.NoError(t, handler.Handle(context.Background(), event))
	}

	inner.AssertExpectations(t)
	assert.Equal(t, IdempotencyStats{EventsProcessed: 1, EventsDuplicate: 2}, handler.Stats())
}

func TestIdempotentHandler_FailureReleasesClaim(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	inner := new(MockEventHandler)
	event := newTestEvent("OrderDelivered")
	inner.On("Handle", mock.Anything, event).Return(errors.New("db down")).Once()
	inner.On("Handle", mock.Anything, event).Return(nil).Once()

	handler := NewIdempotentHandler(inner, store, zap.NewNop())
	assert.Error(t, handler.Handle(context.Background(), event))
	require.NoError(t, handler.Handle(context.Background(), event), "redelivery after failure is processed")

	inner.AssertExpectations(t)
	assert.Equal(t, IdempotencyStats{EventsProcessed: 1, EventsFailed: 1}, handler.Stats())
}

func TestIdempotentHandler_StoreErrorStillProcesses(t *testing.T) {
	inner := new(MockEventHandler)
	event := newTestEvent("OrderDelivered")
	inner.On("Handle", mock.Anything, event).Return(nil).Twice()

	handler := NewIdempotentHandler(inner, failingStore{}, zap.NewNop())
	require.NoError(t, handler.Handle(context.Background(), event))
	require.NoError(t, handler.Handle(context.Background(), event))

	inner.AssertExpectations(t)
}

func TestIdempotentHandler_Disabled(t *testing.T) {
	inner := new(MockEventHandler)
	event := newTestEvent("OrderDelivered")
	inner.On("Handle", mock.Anything, event).Return(nil).Twice()

	handler := NewIdempotentHandler(inner, failingStore{}, zap.NewNop(),
		WithIdempotencyConfig(shared.IdempotencyConfig{Enabled: false}))
	require.NoError(t, handler.Handle(context.Background(), event))
	require.NoError(t, handler.Handle(context.Background(), event))

	inner.AssertExpectations(t)
}
