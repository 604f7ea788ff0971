package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/statyba/storefront/internal/domain/shared"
)

// ProductSort enumerates storefront listing orders
type ProductSort string

const (
	ProductSortNewest    ProductSort = "newest"
	ProductSortPriceAsc  ProductSort = "price_asc"
	ProductSortPriceDesc ProductSort = "price_desc"
	ProductSortName      ProductSort = "name"
	ProductSortRating    ProductSort = "rating"
)

// IsValid reports whether s is a known sort
func (s ProductSort) IsValid() bool {
	switch s {
	case ProductSortNewest, ProductSortPriceAsc, ProductSortPriceDesc, ProductSortName, ProductSortRating:
		return true
	}
	return false
}

// ProductFilter narrows product listings.
// CategoryIDs should already include descendants of the requested category.
type ProductFilter struct {
	Search       string
	BrandIDs     []uuid.UUID
	CategoryIDs  []uuid.UUID
	ProductIDs   []uuid.UUID
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	InStock      bool
	FeaturedOnly bool
	Status       ProductStatus
	// StorefrontAt restricts results to products visible to customers at that instant
	StorefrontAt *time.Time
	Sort         ProductSort
	Page         int
	PageSize     int
}

// ProductRepository persists products
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySlug(ctx context.Context, slug string) (*Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	List(ctx context.Context, filter ProductFilter) ([]Product, int64, error)
	ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	ExistsBySKU(ctx context.Context, sku string, excludeID *uuid.UUID) (bool, error)
	CountByBrand(ctx context.Context, brandID uuid.UUID) (int64, error)
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
	Save(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Iterate walks storefront-visible products in ID order, batchSize at a time,
	// until fn returns false or rows are exhausted.
	Iterate(ctx context.Context, now time.Time, batchSize int, fn func([]Product) bool) error
}

// BrandRepository persists brands
type BrandRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Brand, error)
	FindBySlug(ctx context.Context, slug string) (*Brand, error)
	FindBySlugs(ctx context.Context, slugs []string) ([]Brand, error)
	List(ctx context.Context, filter shared.Filter, enabledOnly bool) ([]Brand, int64, error)
	ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, brand *Brand) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryRepository persists the category tree
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindBySlug(ctx context.Context, slug string) (*Category, error)
	FindAll(ctx context.Context, visibleOnly bool) ([]Category, error)
	FindDescendants(ctx context.Context, category *Category) ([]Category, error)
	ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	HasChildren(ctx context.Context, id uuid.UUID) (bool, error)
	Save(ctx context.Context, category *Category) error
	SaveAll(ctx context.Context, categories []Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CollectionRepository persists collections and their manual memberships
type CollectionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Collection, error)
	FindBySlug(ctx context.Context, slug string) (*Collection, error)
	List(ctx context.Context, filter shared.Filter, visibleOnly bool) ([]Collection, int64, error)
	ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, collection *Collection) error
	Delete(ctx context.Context, id uuid.UUID) error
}
