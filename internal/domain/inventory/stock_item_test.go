package inventory

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStock(t *testing.T, qty, reserved, threshold int) *StockItem {
	t.Helper()
	item, err := NewStockItem(uuid.New(), threshold)
	require.NoError(t, err)
	item.Quantity = qty
	item.Reserved = reserved
	return item
}

func TestNewStockItem(t *testing.T) {
	_, err := NewStockItem(uuid.Nil, 1)
	assert.Error(t, err)
	_, err = NewStockItem(uuid.New(), -1)
	assert.Error(t, err)

	item, err := NewStockItem(uuid.New(), 3)
	require.NoError(t, err)
	assert.True(t, item.TrackInventory)
	assert.Equal(t, 0, item.Available())
}

func TestAdjustStock(t *testing.T) {
	actor := uuid.New()

	tests := []struct {
		name      string
		qty       int
		reserved  int
		mode      AdjustMode
		amount    int
		reason    string
		wantQty   int
		wantType  MovementType
		wantDelta int
		wantErr   string
	}{
		{name: "set absolute", qty: 10, mode: AdjustModeSet, amount: 25, reason: "count", wantQty: 25, wantType: MovementTypeAdjustment, wantDelta: 15},
		{name: "set to zero", qty: 10, mode: AdjustModeSet, amount: 0, reason: "write-off", wantQty: 0, wantType: MovementTypeAdjustment, wantDelta: -10},
		{name: "increase", qty: 10, mode: AdjustModeIncrease, amount: 5, reason: "delivery", wantQty: 15, wantType: MovementTypeIncrease, wantDelta: 5},
		{name: "decrease", qty: 10, mode: AdjustModeDecrease, amount: 4, reason: "damaged", wantQty: 6, wantType: MovementTypeDecrease, wantDelta: -4},
		{name: "decrease below reserved", qty: 10, reserved: 8, mode: AdjustModeDecrease, amount: 3, reason: "damaged", wantErr: "INSUFFICIENT_STOCK"},
		{name: "set below reserved", qty: 10, reserved: 8, mode: AdjustModeSet, amount: 7, reason: "count", wantErr: "INSUFFICIENT_STOCK"},
		{name: "decrease below zero", qty: 2, mode: AdjustModeDecrease, amount: 3, reason: "lost", wantErr: "INSUFFICIENT_STOCK"},
		{name: "negative set", qty: 2, mode: AdjustModeSet, amount: -1, reason: "x", wantErr: "INVALID_QUANTITY"},
		{name: "zero increase", qty: 2, mode: AdjustModeIncrease, amount: 0, reason: "x", wantErr: "INVALID_QUANTITY"},
		{name: "missing reason", qty: 2, mode: AdjustModeSet, amount: 1, reason: "  ", wantErr: "INVALID_REASON"},
		{name: "long reason", qty: 2, mode: AdjustModeSet, amount: 1, reason: strings.Repeat("r", MaxReasonLength+1), wantErr: "INVALID_REASON"},
		{name: "unknown mode", qty: 2, mode: "multiply", amount: 1, reason: "x", wantErr: "INVALID_MODE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := newStock(t, tt.qty, tt.reserved, 0)
			m, err := item.AdjustStock(tt.mode, tt.amount, tt.reason, &actor)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, errorCode(err), tt.wantErr)
				assert.Equal(t, tt.qty, item.Quantity)
				assert.Empty(t, item.GetDomainEvents())
				return
			}
			require.NoError(t, err)
			require.NotNil(t, m)
			assert.Equal(t, tt.wantQty, item.Quantity)
			assert.Equal(t, tt.wantType, m.Type)
			assert.Equal(t, tt.wantDelta, m.Delta)
			assert.Equal(t, tt.qty, m.Before)
			assert.Equal(t, tt.wantQty, m.After)
			assert.Equal(t, &actor, m.ActorID)
			require.NotEmpty(t, item.GetDomainEvents())
			assert.Equal(t, EventTypeStockAdjusted, item.GetDomainEvents()[0].EventType())
		})
	}
}

func TestAdjustStockNoop(t *testing.T) {
	item := newStock(t, 7, 0, 0)
	m, err := item.AdjustStock(AdjustModeSet, 7, "recount", nil)
	require.NoError(t, err)
	assert.Nil(t, m)
	assert.Empty(t, item.GetDomainEvents())
}

func TestAdjustStockBackorder(t *testing.T) {
	item := newStock(t, 2, 1, 0)
	item.AllowBackorder = true
	m, err := item.AdjustStock(AdjustModeDecrease, 5, "correction", nil)
	require.NoError(t, err)
	assert.Equal(t, -3, m.After)
}

func TestAdjustStockEmitsLowStockOnCrossing(t *testing.T) {
	item := newStock(t, 10, 0, 5)

	_, err := item.AdjustStock(AdjustModeDecrease, 4, "damaged", nil)
	require.NoError(t, err)
	assert.Len(t, item.GetDomainEvents(), 1)

	item.ClearDomainEvents()
	_, err = item.AdjustStock(AdjustModeDecrease, 1, "damaged", nil)
	require.NoError(t, err)
	events := item.GetDomainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, EventTypeStockLow, events[1].EventType())

	item.ClearDomainEvents()
	_, err = item.AdjustStock(AdjustModeDecrease, 1, "damaged", nil)
	require.NoError(t, err)
	assert.Len(t, item.GetDomainEvents(), 1, "already low, no second StockLow")
}

func TestReservationLifecycle(t *testing.T) {
	item := newStock(t, 5, 0, 0)

	m, err := item.Reserve(3, "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, MovementTypeReservation, m.Type)
	assert.Equal(t, 2, item.Available())
	assert.Equal(t, 5, item.Quantity)

	_, err = item.Reserve(3, "ORD-2")
	assert.Error(t, err)

	_, err = item.Release(1, "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, 2, item.Reserved)

	m, err = item.CommitSale(2, "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, MovementTypeSale, m.Type)
	assert.Equal(t, 3, item.Quantity)
	assert.Equal(t, 0, item.Reserved)

	_, err = item.CommitSale(1, "ORD-1")
	assert.Error(t, err)

	_, err = item.Restock(2, "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)
}

func TestUntrackedStockAlwaysFulfills(t *testing.T) {
	item := newStock(t, 0, 0, 0)
	item.SetPolicy(false, false)
	assert.True(t, item.CanFulfill(100))
	_, err := item.Reserve(100, "ORD-1")
	assert.NoError(t, err)
	assert.False(t, item.IsLow())
}

func errorCode(err error) string {
	if de, ok := shared.AsDomainError(err); ok {
		return de.Code
	}
	return err.Error()
}
