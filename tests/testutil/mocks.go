package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/domain/catalog"
	"github.com/statyba/storefront/internal/domain/customer"
	"github.com/statyba/storefront/internal/domain/inventory"
	"github.com/statyba/storefront/internal/domain/order"
	"github.com/statyba/storefront/internal/domain/referral"
	"github.com/statyba/storefront/internal/domain/review"
	"github.com/statyba/storefront/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
	err    error
}

// Publish records events and returns the configured error
func (m *MockEventPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return m.err
}

// SetError makes subsequent Publish calls fail
func (m *MockEventPublisher) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// GetEvents returns a copy of every published event
func (m *MockEventPublisher) GetEvents() []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]shared.DomainEvent, len(m.events))
	copy(out, m.events)
	return out
}

// GetEventsByType returns the published events of one type
func (m *MockEventPublisher) GetEventsByType(eventType string) []shared.DomainEvent {
	var out []shared.DomainEvent
	for _, e := range m.GetEvents() {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]catalog.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, slug, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) ExistsBySKU(ctx context.Context, sku string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, sku, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) CountByBrand(ctx context.Context, brandID uuid.UUID) (int64, error) {
	args := m.Called(ctx, brandID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) Iterate(ctx context.Context, now time.Time, batchSize int, fn func([]catalog.Product) bool) error {
	args := m.Called(ctx, now, batchSize, fn)
	return args.Error(0)
}

// MockStockItemRepository is a mock implementation of inventory.StockItemRepository
type MockStockItemRepository struct {
	mock.Mock
}

func (m *MockStockItemRepository) FindByProduct(ctx context.Context, productID uuid.UUID) (*inventory.StockItem, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockItem), args.Error(1)
}

func (m *MockStockItemRepository) FindByProducts(ctx context.Context, productIDs []uuid.UUID) ([]inventory.StockItem, error) {
	args := m.Called(ctx, productIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.StockItem), args.Error(1)
}

func (m *MockStockItemRepository) FindByProductForUpdate(ctx context.Context, productID uuid.UUID) (*inventory.StockItem, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockItem), args.Error(1)
}

func (m *MockStockItemRepository) FindLowStock(ctx context.Context, filter shared.Filter) ([]inventory.StockItem, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]inventory.StockItem), args.Get(1).(int64), args.Error(2)
}

func (m *MockStockItemRepository) Save(ctx context.Context, item *inventory.StockItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

// MockStockMovementRepository is a mock implementation of inventory.StockMovementRepository
type MockStockMovementRepository struct {
	mock.Mock
}

func (m *MockStockMovementRepository) Create(ctx context.Context, movements ...*inventory.StockMovement) error {
	args := m.Called(ctx, movements)
	return args.Error(0)
}

func (m *MockStockMovementRepository) ListByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]inventory.StockMovement, int64, error) {
	args := m.Called(ctx, productID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]inventory.StockMovement), args.Get(1).(int64), args.Error(2)
}

// MockOrderRepository is a mock implementation of order.Repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByNumber(ctx context.Context, number string) (*order.Order, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, filter order.Filter) ([]order.Order, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]order.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) HasDeliveredProduct(ctx context.Context, customerID, productID uuid.UUID) (bool, error) {
	args := m.Called(ctx, customerID, productID)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) CountDelivered(ctx context.Context, customerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

// MockCustomerRepository is a mock implementation of customer.Repository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByReferralCode(ctx context.Context, code string) (*customer.Customer, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockCustomerRepository) ExistsByReferralCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, c *customer.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

// MockReferralRepository is a mock implementation of referral.Repository
type MockReferralRepository struct {
	mock.Mock
}

func (m *MockReferralRepository) FindByReferee(ctx context.Context, refereeID uuid.UUID) (*referral.Referral, error) {
	args := m.Called(ctx, refereeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*referral.Referral), args.Error(1)
}

func (m *MockReferralRepository) ListByReferrer(ctx context.Context, referrerID uuid.UUID) ([]referral.Referral, error) {
	args := m.Called(ctx, referrerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]referral.Referral), args.Error(1)
}

func (m *MockReferralRepository) Save(ctx context.Context, r *referral.Referral) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

// MockReviewRepository is a mock implementation of review.Repository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*review.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*review.Review), args.Error(1)
}

func (m *MockReviewRepository) ExistsFor(ctx context.Context, productID, customerID uuid.UUID) (bool, error) {
	args := m.Called(ctx, productID, customerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReviewRepository) List(ctx context.Context, filter review.Filter) ([]review.Review, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]review.Review), args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewRepository) RatingDistribution(ctx context.Context, productID uuid.UUID) ([5]int, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([5]int), args.Error(1)
}

func (m *MockReviewRepository) Save(ctx context.Context, r *review.Review) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var (
	_ shared.EventPublisher             = (*MockEventPublisher)(nil)
	_ catalog.ProductRepository         = (*MockProductRepository)(nil)
	_ inventory.StockItemRepository     = (*MockStockItemRepository)(nil)
	_ inventory.StockMovementRepository = (*MockStockMovementRepository)(nil)
	_ order.Repository                  = (*MockOrderRepository)(nil)
	_ customer.Repository               = (*MockCustomerRepository)(nil)
	_ referral.Repository               = (*MockReferralRepository)(nil)
	_ review.Repository                 = (*MockReviewRepository)(nil)
)
