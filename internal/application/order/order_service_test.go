package order

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/statyba/storefront/internal/application/transaction"
	"github.com/statyba/storefront/internal/domain/inventory"
	"github.com/statyba/storefront/internal/domain/order"
	"github.com/statyba/storefront/internal/domain/shared"
	"github.com/statyba/storefront/internal/infrastructure/printing"
	"github.com/statyba/storefront/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeInvoicer struct {
	locale string
	err    error
}

func (f *fakeInvoicer) Generate(_ context.Context, o *order.Order, locale string) (*printing.Invoice, error) {
	f.locale = locale
	if f.err != nil {
		return nil, f.err
	}
	return &printing.Invoice{PDF: []byte("%PDF"), Key: printing.InvoiceKey(o.Number), URL: "https://cdn.example.com/signed"}, nil
}

type orderFixture struct {
	svc       *Service
	orders    *testutil.MockOrderRepository
	stock     *testutil.MockStockItemRepository
	movements *testutil.MockStockMovementRepository
	events    *testutil.MockEventPublisher
	invoicer  *fakeInvoicer
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		orders:    new(testutil.MockOrderRepository),
		stock:     new(testutil.MockStockItemRepository),
		movements: new(testutil.MockStockMovementRepository),
		events:    &testutil.MockEventPublisher{},
		invoicer:  &fakeInvoicer{},
	}
	scope := &transaction.NoOpScope{OrderRepo: f.orders, StockRepo: f.stock, MovementRepo: f.movements}
	f.svc = NewService(f.orders, scope, f.invoicer, nil)
	f.svc.SetEventPublisher(f.events)
	return f
}

func newOrder(t *testing.T, customerID *uuid.UUID, productID uuid.UUID, qty int) *order.Order {
	t.Helper()
	o, err := order.Place(order.PlaceInput{
		CustomerID: customerID,
		Email:      "buyer@example.com",
		Lines: []order.LineInput{
			{ProductID: productID, SKU: "MUG", Name: "Mug", UnitPrice: decimal.NewFromInt(10), Quantity: qty},
		},
		ShippingAddress: order.Address{FullName: "Ona", Line1: "Gatvė 1", City: "Kaunas", PostalCode: "44000", Country: "LT"},
		Locale:          "lt",
	})
	require.NoError(t, err)
	o.ClearDomainEvents()
	return o
}

func TestService_Transition_ShippedCommitsStock(t *testing.T) {
	f := newOrderFixture()
	productID := uuid.New()
	o := newOrder(t, nil, productID, 2)
	o.Status = order.StatusProcessing

	item, err := inventory.NewStockItem(productID, 1)
	require.NoError(t, err)
	item.Quantity, item.Reserved = 10, 2

	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.orders.On("Save", mock.Anything, o).Return(nil)
	f.stock.On("FindByProductForUpdate", mock.Anything, productID).Return(item, nil)
	f.stock.On("Save", mock.Anything, item).Return(nil)
	f.movements.On("Create", mock.Anything, mock.MatchedBy(func(ms []*inventory.StockMovement) bool {
		return len(ms) == 1 && ms[0].Type == inventory.MovementTypeSale && ms[0].Reference == o.Number
	})).Return(nil)

	resp, err := f.svc.Transition(context.Background(), o.ID, TransitionRequest{Status: "shipped"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "shipped", resp.Status)
	assert.NotNil(t, resp.ShippedAt)
	assert.Equal(t, 8, item.Quantity)
	assert.Equal(t, 0, item.Reserved)
	assert.Len(t, f.events.GetEventsByType(order.EventTypeOrderStatusChanged), 1)
	assert.Len(t, f.events.GetEventsByType(inventory.EventTypeStockAdjusted), 1)
}

func TestService_Transition_CancelReleasesStock(t *testing.T) {
	f := newOrderFixture()
	productID := uuid.New()
	o := newOrder(t, nil, productID, 3)

	item, err := inventory.NewStockItem(productID, 1)
	require.NoError(t, err)
	item.Quantity, item.Reserved = 5, 3

	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.orders.On("Save", mock.Anything, o).Return(nil)
	f.stock.On("FindByProductForUpdate", mock.Anything, productID).Return(item, nil)
	f.stock.On("Save", mock.Anything, item).Return(nil)
	f.movements.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err = f.svc.Transition(context.Background(), o.ID, TransitionRequest{Status: "cancelled"}, nil)
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "INVALID_REASON", de.Code)

	actor := uuid.New()
	resp, err := f.svc.Transition(context.Background(), o.ID, TransitionRequest{Status: "cancelled", Reason: "customer request"}, &actor)
	require.NoError(t, err)
	assert.Equal(t, "customer request", resp.CancelReason)
	assert.Equal(t, 0, item.Reserved)
	assert.Equal(t, 5, item.Quantity)
}

func TestService_Transition_Delivered(t *testing.T) {
	f := newOrderFixture()
	customerID := uuid.New()
	o := newOrder(t, &customerID, uuid.New(), 1)
	o.Status = order.StatusShipped
	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.orders.On("Save", mock.Anything, o).Return(nil)

	_, err := f.svc.Transition(context.Background(), o.ID, TransitionRequest{Status: "delivered"}, nil)
	require.NoError(t, err)

	delivered := f.events.GetEventsByType(order.EventTypeOrderDelivered)
	require.Len(t, delivered, 1)
	assert.Equal(t, &customerID, delivered[0].(*order.OrderDeliveredEvent).CustomerID)
	f.stock.AssertNotCalled(t, "FindByProductForUpdate", mock.Anything, mock.Anything)
}

func TestService_Transition_Invalid(t *testing.T) {
	f := newOrderFixture()
	o := newOrder(t, nil, uuid.New(), 1)
	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)

	_, err := f.svc.Transition(context.Background(), o.ID, TransitionRequest{Status: "delivered"}, nil)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	assert.Empty(t, f.events.GetEvents())
}

func TestService_GetForCustomer(t *testing.T) {
	f := newOrderFixture()
	owner, other := uuid.New(), uuid.New()
	o := newOrder(t, &owner, uuid.New(), 1)
	f.orders.On("FindByNumber", mock.Anything, o.Number).Return(o, nil)

	resp, err := f.svc.GetForCustomer(context.Background(), owner, o.Number)
	require.NoError(t, err)
	assert.Equal(t, o.ID, resp.ID)

	_, err = f.svc.GetForCustomer(context.Background(), other, o.Number)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = f.svc.GetForCustomer(context.Background(), owner, "not-a-number")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestService_ListForCustomer(t *testing.T) {
	f := newOrderFixture()
	customerID := uuid.New()
	o := newOrder(t, &customerID, uuid.New(), 2)
	to := time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)

	f.orders.On("List", mock.Anything, mock.MatchedBy(func(filter order.Filter) bool {
		return filter.CustomerID != nil && *filter.CustomerID == customerID &&
			filter.Status == order.StatusPending &&
			filter.To != nil && filter.To.Equal(to.AddDate(0, 0, 1)) &&
			filter.Page == 1 && filter.PageSize == 20
	})).Return([]order.Order{*o}, int64(1), nil)

	page, err := f.svc.ListForCustomer(context.Background(), customerID, ListQuery{Status: "pending", To: &to})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 2, page.Items[0].ItemCount)
	assert.True(t, decimal.NewFromInt(20).Equal(page.Items[0].GrandTotal))
}

func TestService_Invoice(t *testing.T) {
	f := newOrderFixture()
	o := newOrder(t, nil, uuid.New(), 1)
	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)

	inv, err := f.svc.Invoice(context.Background(), o.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "lt", f.invoicer.locale)
	assert.Equal(t, o.Number+".pdf", inv.Filename)
	assert.Equal(t, "https://cdn.example.com/signed", inv.URL)

	_, err = f.svc.Invoice(context.Background(), o.ID, "en")
	require.NoError(t, err)
	assert.Equal(t, "en", f.invoicer.locale)

	f.invoicer.err = printing.NewRenderError(printing.ErrCodeRenderTimeout, "timed out", nil)
	_, err = f.svc.Invoice(context.Background(), o.ID, "en")
	assert.Error(t, err)
}

func TestService_Invoice_Disabled(t *testing.T) {
	svc := NewService(new(testutil.MockOrderRepository), &transaction.NoOpScope{}, nil, nil)
	_, err := svc.Invoice(context.Background(), uuid.New(), "en")
	assert.ErrorIs(t, err, errInvoicesDisabled)
}
