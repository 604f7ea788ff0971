package persistence

import (
	"context"

	"github.com/statyba/storefront/internal/application/transaction"
	"github.com/statyba/storefront/internal/domain/catalog"
	"github.com/statyba/storefront/internal/domain/customer"
	"github.com/statyba/storefront/internal/domain/inventory"
	"github.com/statyba/storefront/internal/domain/localization"
	"github.com/statyba/storefront/internal/domain/order"
	"github.com/statyba/storefront/internal/domain/referral"
	"github.com/statyba/storefront/internal/domain/review"
	"gorm.io/gorm"
)

// GormTransactionScope implements transaction.Scope using GORM transactions
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a transaction, committing when fn returns nil
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos transaction.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txRepositories{tx: tx})
	})
}

type txRepositories struct {
	tx *gorm.DB
}

func (r *txRepositories) Products() catalog.ProductRepository  { return NewGormProductRepository(r.tx) }
func (r *txRepositories) Stock() inventory.StockItemRepository { return NewGormStockItemRepository(r.tx) }
func (r *txRepositories) Movements() inventory.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}
func (r *txRepositories) Orders() order.Repository       { return NewGormOrderRepository(r.tx) }
func (r *txRepositories) Reviews() review.Repository     { return NewGormReviewRepository(r.tx) }
func (r *txRepositories) Referrals() referral.Repository { return NewGormReferralRepository(r.tx) }
func (r *txRepositories) Customers() customer.Repository { return NewGormCustomerRepository(r.tx) }

var (
	_ transaction.Scope                  = (*GormTransactionScope)(nil)
	_ catalog.ProductRepository          = (*GormProductRepository)(nil)
	_ catalog.BrandRepository            = (*GormBrandRepository)(nil)
	_ catalog.CategoryRepository         = (*GormCategoryRepository)(nil)
	_ catalog.CollectionRepository       = (*GormCollectionRepository)(nil)
	_ inventory.StockItemRepository      = (*GormStockItemRepository)(nil)
	_ inventory.StockMovementRepository  = (*GormStockMovementRepository)(nil)
	_ order.Repository                   = (*GormOrderRepository)(nil)
	_ review.Repository                  = (*GormReviewRepository)(nil)
	_ referral.Repository                = (*GormReferralRepository)(nil)
	_ customer.Repository                = (*GormCustomerRepository)(nil)
	_ localization.TranslationRepository = (*GormTranslationRepository)(nil)
)
