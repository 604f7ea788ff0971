package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/statyba/storefront/internal/application/transaction"
	"github.com/statyba/storefront/internal/domain/catalog"
	"github.com/statyba/storefront/internal/domain/inventory"
	"github.com/statyba/storefront/internal/domain/shared"
	"github.com/statyba/storefront/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stockFixture struct {
	svc       *StockService
	stock     *testutil.MockStockItemRepository
	movements *testutil.MockStockMovementRepository
	products  *testutil.MockProductRepository
	events    *testutil.MockEventPublisher
}

func newStockFixture() *stockFixture {
	f := &stockFixture{
		stock:     new(testutil.MockStockItemRepository),
		movements: new(testutil.MockStockMovementRepository),
		products:  new(testutil.MockProductRepository),
		events:    &testutil.MockEventPublisher{},
	}
	scope := &transaction.NoOpScope{StockRepo: f.stock, MovementRepo: f.movements, ProductRepo: f.products}
	f.svc = NewStockService(f.stock, f.movements, scope, nil)
	f.svc.SetEventPublisher(f.events)
	return f
}

func newItem(t *testing.T, qty, reserved, threshold int) *inventory.StockItem {
	t.Helper()
	item, err := inventory.NewStockItem(uuid.New(), threshold)
	require.NoError(t, err)
	item.Quantity = qty
	item.Reserved = reserved
	return item
}

func TestStockService_AdjustStock_Increase(t *testing.T) {
	f := newStockFixture()
	item := newItem(t, 10, 0, 5)
	actor := uuid.New()

	f.stock.On("FindByProductForUpdate", mock.Anything, item.ProductID).Return(item, nil)
	f.stock.On("Save", mock.Anything, item).Return(nil)
	f.movements.On("Create", mock.Anything, mock.MatchedBy(func(ms []*inventory.StockMovement) bool {
		return len(ms) == 1 && ms[0].Delta == 4 && ms[0].Before == 10 && ms[0].After == 14 && *ms[0].ActorID == actor
	})).Return(nil)

	resp, err := f.svc.AdjustStock(context.Background(), item.ProductID, AdjustStockRequest{Mode: "increase", Quantity: 4, Reason: "delivery"}, &actor)
	require.NoError(t, err)
	assert.Equal(t, 14, resp.Item.Quantity)
	require.NotNil(t, resp.Movement)
	assert.Equal(t, "increase", resp.Movement.Type)
	assert.Len(t, f.events.GetEventsByType(inventory.EventTypeStockAdjusted), 1)
	f.movements.AssertExpectations(t)
}

func TestStockService_AdjustStock_NoOp(t *testing.T) {
	f := newStockFixture()
	item := newItem(t, 7, 0, 5)
	f.stock.On("FindByProductForUpdate", mock.Anything, item.ProductID).Return(item, nil)

	resp, err := f.svc.AdjustStock(context.Background(), item.ProductID, AdjustStockRequest{Mode: "set", Quantity: 7, Reason: "recount"}, nil)
	require.NoError(t, err)
	assert.Nil(t, resp.Movement)
	assert.Equal(t, 7, resp.Item.Quantity)
	f.stock.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.movements.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, f.events.GetEvents())
}

func TestStockService_AdjustStock_BelowReserved(t *testing.T) {
	f := newStockFixture()
	item := newItem(t, 10, 8, 2)
	f.stock.On("FindByProductForUpdate", mock.Anything, item.ProductID).Return(item, nil)

	_, err := f.svc.AdjustStock(context.Background(), item.ProductID, AdjustStockRequest{Mode: "decrease", Quantity: 3, Reason: "damaged"}, nil)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	f.stock.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestStockService_AdjustStock_CreatesMissingItem(t *testing.T) {
	f := newStockFixture()
	product, err := catalog.NewProduct("Mug", "", "MUG", decimal.NewFromInt(5))
	require.NoError(t, err)

	f.stock.On("FindByProductForUpdate", mock.Anything, product.ID).Return(nil, shared.ErrNotFound)
	f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.stock.On("Save", mock.Anything, mock.MatchedBy(func(i *inventory.StockItem) bool {
		return i.ProductID == product.ID && i.Quantity == 20 && i.LowStockThreshold == DefaultLowStockThreshold
	})).Return(nil)
	f.movements.On("Create", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.svc.AdjustStock(context.Background(), product.ID, AdjustStockRequest{Mode: "set", Quantity: 20, Reason: "initial"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "adjustment", resp.Movement.Type)
}

func TestStockService_AdjustStock_UnknownProduct(t *testing.T) {
	f := newStockFixture()
	id := uuid.New()
	f.stock.On("FindByProductForUpdate", mock.Anything, id).Return(nil, shared.ErrNotFound)
	f.products.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	_, err := f.svc.AdjustStock(context.Background(), id, AdjustStockRequest{Mode: "set", Quantity: 1, Reason: "x"}, nil)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestStockService_AdjustStock_EmitsStockLow(t *testing.T) {
	f := newStockFixture()
	item := newItem(t, 10, 0, 5)
	f.stock.On("FindByProductForUpdate", mock.Anything, item.ProductID).Return(item, nil)
	f.stock.On("Save", mock.Anything, item).Return(nil)
	f.movements.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.AdjustStock(context.Background(), item.ProductID, AdjustStockRequest{Mode: "decrease", Quantity: 6, Reason: "sold offline"}, nil)
	require.NoError(t, err)

	low := f.events.GetEventsByType(inventory.EventTypeStockLow)
	require.Len(t, low, 1)
	assert.Equal(t, 4, low[0].(*inventory.StockLowEvent).Available)
}

func TestStockService_AdjustStock_ConcurrencyConflict(t *testing.T) {
	f := newStockFixture()
	item := newItem(t, 10, 0, 5)
	f.stock.On("FindByProductForUpdate", mock.Anything, item.ProductID).Return(item, nil)
	f.stock.On("Save", mock.Anything, item).Return(shared.ErrConcurrencyConflict)

	_, err := f.svc.AdjustStock(context.Background(), item.ProductID, AdjustStockRequest{Mode: "increase", Quantity: 1, Reason: "x"}, nil)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	assert.Empty(t, f.events.GetEvents())
}

func TestStockService_Reserve(t *testing.T) {
	f := newStockFixture()
	tracked := newItem(t, 5, 0, 1)
	untracked := newItem(t, 0, 0, 1)
	untracked.TrackInventory = false

	f.stock.On("FindByProductForUpdate", mock.Anything, tracked.ProductID).Return(tracked, nil)
	f.stock.On("FindByProductForUpdate", mock.Anything, untracked.ProductID).Return(untracked, nil)
	f.stock.On("Save", mock.Anything, tracked).Return(nil)
	f.movements.On("Create", mock.Anything, mock.MatchedBy(func(ms []*inventory.StockMovement) bool {
		return len(ms) == 1 && ms[0].Type == inventory.MovementTypeReservation && ms[0].Reference == "ORD-1"
	})).Return(nil)

	err := f.svc.Reserve(context.Background(), "ORD-1", []Line{
		{ProductID: tracked.ProductID, Quantity: 2},
		{ProductID: untracked.ProductID, Quantity: 3},
		{ProductID: tracked.ProductID, Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, tracked.Reserved)
	assert.Equal(t, 0, untracked.Reserved)
	f.stock.AssertNumberOfCalls(t, "Save", 1)
}

func TestStockService_Reserve_Insufficient(t *testing.T) {
	f := newStockFixture()
	item := newItem(t, 2, 1, 0)
	f.stock.On("FindByProductForUpdate", mock.Anything, item.ProductID).Return(item, nil)

	err := f.svc.Reserve(context.Background(), "ORD-2", []Line{{ProductID: item.ProductID, Quantity: 2}})
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	f.movements.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestStockService_MissingStockRecord(t *testing.T) {
	f := newStockFixture()
	missing := uuid.New()
	f.stock.On("FindByProductForUpdate", mock.Anything, missing).Return(nil, shared.ErrNotFound)

	err := f.svc.Reserve(context.Background(), "ORD-5", []Line{{ProductID: missing, Quantity: 1}})
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)

	// nothing was ever reserved, so undoing is a no-op
	require.NoError(t, f.svc.Release(context.Background(), "ORD-5", []Line{{ProductID: missing, Quantity: 1}}))
	require.NoError(t, f.svc.Restock(context.Background(), "ORD-5", []Line{{ProductID: missing, Quantity: 1}}))
	f.stock.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.movements.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestStockService_CommitSaleAndRelease(t *testing.T) {
	f := newStockFixture()
	item := newItem(t, 10, 4, 2)
	f.stock.On("FindByProductForUpdate", mock.Anything, item.ProductID).Return(item, nil)
	f.stock.On("Save", mock.Anything, item).Return(nil)
	f.movements.On("Create", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, f.svc.CommitSale(context.Background(), "ORD-3", []Line{{ProductID: item.ProductID, Quantity: 3}}))
	assert.Equal(t, 7, item.Quantity)
	assert.Equal(t, 1, item.Reserved)

	require.NoError(t, f.svc.Release(context.Background(), "ORD-4", []Line{{ProductID: item.ProductID, Quantity: 1}}))
	assert.Equal(t, 0, item.Reserved)
	assert.Equal(t, 7, item.Available())
}

func TestStockService_ListLowStock(t *testing.T) {
	f := newStockFixture()
	item := newItem(t, 1, 0, 5)
	f.stock.On("FindLowStock", mock.Anything, mock.MatchedBy(func(filter shared.Filter) bool {
		return filter.OrderBy == "quantity" && filter.OrderDir == "asc" && filter.Page == 1 && filter.PageSize == 20
	})).Return([]inventory.StockItem{*item}, int64(1), nil)

	page, err := f.svc.ListLowStock(context.Background(), ListQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.True(t, page.Items[0].IsLow)
	assert.Equal(t, 1, page.TotalPages)
}

func TestStockService_UpdateSettings(t *testing.T) {
	f := newStockFixture()
	item := newItem(t, 3, 0, 5)
	f.stock.On("FindByProductForUpdate", mock.Anything, item.ProductID).Return(item, nil)
	f.stock.On("Save", mock.Anything, item).Return(nil)

	threshold, backorder := 1, true
	resp, err := f.svc.UpdateSettings(context.Background(), item.ProductID, UpdateStockSettingsRequest{
		LowStockThreshold: &threshold,
		AllowBackorder:    &backorder,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.LowStockThreshold)
	assert.True(t, resp.AllowBackorder)
	assert.True(t, resp.TrackInventory)
	assert.False(t, resp.IsLow)
}

func TestMergeLines(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	merged := mergeLines([]Line{{ProductID: a, Quantity: 1}, {ProductID: b, Quantity: 2}, {ProductID: a, Quantity: 3}})
	require.Len(t, merged, 2)
	totals := map[uuid.UUID]int{merged[0].ProductID: merged[0].Quantity, merged[1].ProductID: merged[1].Quantity}
	assert.Equal(t, 4, totals[a])
	assert.Equal(t, 2, totals[b])
	assert.True(t, string(merged[0].ProductID[:]) < string(merged[1].ProductID[:]))
}
