package persistence

import (
	"github.com/statyba/storefront/internal/domain/catalog"
	"github.com/statyba/storefront/internal/domain/customer"
	"github.com/statyba/storefront/internal/domain/inventory"
	"github.com/statyba/storefront/internal/domain/localization"
	"github.com/statyba/storefront/internal/domain/order"
	"github.com/statyba/storefront/internal/domain/referral"
	"github.com/statyba/storefront/internal/domain/review"
)

// Models lists every persisted type. Production schemas come from the SQL
// migrations; tests use the list with AutoMigrate on SQLite.
func Models() []any {
	return []any{
		&catalog.Brand{},
		&catalog.Category{},
		&catalog.Product{},
		&catalog.ProductImage{},
		&catalog.ProductCategory{},
		&catalog.Collection{},
		&catalog.CollectionProduct{},
		&localization.Translation{},
		&inventory.StockItem{},
		&inventory.StockMovement{},
		&customer.Customer{},
		&order.Order{},
		&order.Item{},
		&review.Review{},
		&referral.Referral{},
	}
}
