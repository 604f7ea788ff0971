// Package transaction defines the unit-of-work boundary shared by the
// application services.
package transaction

import (
	"context"

	"github.com/statyba/storefront/internal/domain/catalog"
	"github.com/statyba/storefront/internal/domain/customer"
	"github.com/statyba/storefront/internal/domain/inventory"
	"github.com/statyba/storefront/internal/domain/order"
	"github.com/statyba/storefront/internal/domain/referral"
	"github.com/statyba/storefront/internal/domain/review"
)

// Scope runs fn inside one database transaction. An error returned by fn
// rolls the transaction back.
type Scope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories gives access to repositories bound to the same transaction
type Repositories interface {
	Products() catalog.ProductRepository
	Stock() inventory.StockItemRepository
	Movements() inventory.StockMovementRepository
	Orders() order.Repository
	Reviews() review.Repository
	Referrals() referral.Repository
	Customers() customer.Repository
}

// NoOpScope runs fn against fixed repositories without a transaction.
// Tests use it to drive services with mocked repositories.
type NoOpScope struct {
	ProductRepo  catalog.ProductRepository
	StockRepo    inventory.StockItemRepository
	MovementRepo inventory.StockMovementRepository
	OrderRepo    order.Repository
	ReviewRepo   review.Repository
	ReferralRepo referral.Repository
	CustomerRepo customer.Repository
}

// Execute calls fn with s as the repository set
func (s *NoOpScope) Execute(_ context.Context, fn func(repos Repositories) error) error {
	return fn(s)
}

func (s *NoOpScope) Products() catalog.ProductRepository          { return s.ProductRepo }
func (s *NoOpScope) Stock() inventory.StockItemRepository         { return s.StockRepo }
func (s *NoOpScope) Movements() inventory.StockMovementRepository { return s.MovementRepo }
func (s *NoOpScope) Orders() order.Repository                     { return s.OrderRepo }
func (s *NoOpScope) Reviews() review.Repository                   { return s.ReviewRepo }
func (s *NoOpScope) Referrals() referral.Repository               { return s.ReferralRepo }
func (s *NoOpScope) Customers() customer.Repository               { return s.CustomerRepo }
