package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/statyba/storefront/internal/domain/catalog"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) withImages(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

// FindByID finds a product with its images and categories
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var p catalog.Product
	if err := r.withImages(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	if err := r.loadCategoryIDs(ctx, []*catalog.Product{&p}); err != nil {
		return nil, err
	}
	return &p, nil
}

// FindBySlug finds a product by slug
func (r *GormProductRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	var p catalog.Product
	if err := r.withImages(ctx).First(&p, "slug = ?", slug).Error; err != nil {
		return nil, translate(err)
	}
	if err := r.loadCategoryIDs(ctx, []*catalog.Product{&p}); err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByIDs returns the products that exist among ids, in no particular order
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	var products []catalog.Product
	if err := r.withImages(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, r.loadCategoryIDs(ctx, ptrs(products))
}

// List returns a page of products matching filter and the total count
func (r *GormProductRepository) List(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&catalog.Product{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := pageWindow(filter.Page, filter.PageSize)
	var products []catalog.Product
	err := applySort(query, filter.Sort).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Offset(offset).Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, r.loadCategoryIDs(ctx, ptrs(products))
}

func (r *GormProductRepository) applyFilter(query *gorm.DB, f catalog.ProductFilter) *gorm.DB {
	if f.Search != "" {
		pattern := likePattern(f.Search)
		query = query.Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(sku) LIKE ? ESCAPE '\\')", pattern, pattern)
	}
	if len(f.BrandIDs) > 0 {
		query = query.Where("brand_id IN ?", f.BrandIDs)
	}
	if len(f.CategoryIDs) > 0 {
		query = query.Where("id IN (?)",
			r.db.Model(&catalog.ProductCategory{}).Select("product_id").Where("category_id IN ?", f.CategoryIDs))
	}
	if len(f.ProductIDs) > 0 {
		query = query.Where("id IN ?", f.ProductIDs)
	}
	if f.MinPrice != nil {
		query = query.Where("COALESCE(sale_price, price) >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		query = query.Where("COALESCE(sale_price, price) <= ?", *f.MaxPrice)
	}
	if f.InStock {
		query = query.Where("id IN (?)",
			r.db.Table("stock_items").Select("product_id").
				Where("track_inventory = ? OR allow_backorder = ? OR quantity - reserved > 0", false, true))
	}
	if f.FeaturedOnly {
		query = query.Where("is_featured = ?", true)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.StorefrontAt != nil {
		query = storefrontScope(query, *f.StorefrontAt)
	}
	return query
}

func storefrontScope(query *gorm.DB, at time.Time) *gorm.DB {
	return query.Where("status = ? AND is_visible = ? AND published_at IS NOT NULL AND published_at <= ?",
		catalog.ProductStatusPublished, true, at)
}

func applySort(query *gorm.DB, sort catalog.ProductSort) *gorm.DB {
	switch sort {
	case catalog.ProductSortPriceAsc:
		query = query.Order("COALESCE(sale_price, price) ASC")
	case catalog.ProductSortPriceDesc:
		query = query.Order("COALESCE(sale_price, price) DESC")
	case catalog.ProductSortName:
		query = query.Order("name ASC")
	case catalog.ProductSortRating:
		query = query.Order("average_rating DESC").Order("review_count DESC")
	default:
		query = query.Order("published_at DESC").Order("created_at DESC")
	}
	return query.Order("id ASC")
}

// ExistsBySlug reports whether another product uses slug
func (r *GormProductRepository) ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&catalog.Product{}).Where("slug = ?", slug), excludeID)
}

// ExistsBySKU reports whether another product uses sku
func (r *GormProductRepository) ExistsBySKU(ctx context.Context, sku string, excludeID *uuid.UUID) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&catalog.Product{}).Where("sku = ?", sku), excludeID)
}

// CountByBrand counts products of a brand
func (r *GormProductRepository) CountByBrand(ctx context.Context, brandID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&catalog.Product{}).Where("brand_id = ?", brandID).Count(&count).Error
	return count, err
}

// CountByCategory counts products linked directly to a category
func (r *GormProductRepository) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&catalog.ProductCategory{}).Where("category_id = ?", categoryID).Count(&count).Error
	return count, err
}

// Save persists the product together with its category links and images
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveVersioned(tx, product, &product.BaseAggregateRoot); err != nil {
			return err
		}

		if err := tx.Where("product_id = ?", product.ID).Delete(&catalog.ProductCategory{}).Error; err != nil {
			return err
		}
		if len(product.CategoryIDs) > 0 {
			links := make([]catalog.ProductCategory, len(product.CategoryIDs))
			for i, id := range product.CategoryIDs {
				links[i] = catalog.ProductCategory{ProductID: product.ID, CategoryID: id}
			}
			if err := tx.Create(&links).Error; err != nil {
				return translate(err)
			}
		}

		if err := tx.Where("product_id = ?", product.ID).Delete(&catalog.ProductImage{}).Error; err != nil {
			return err
		}
		if len(product.Images) > 0 {
			for i := range product.Images {
				product.Images[i].ProductID = product.ID
			}
			if err := tx.Select("*").Create(&product.Images).Error; err != nil {
				return translate(err)
			}
		}
		return nil
	})
}

// Delete removes a product and its join rows
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&catalog.ProductCategory{}, &catalog.ProductImage{}, &catalog.CollectionProduct{}} {
			if err := tx.Where("product_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&catalog.Product{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound)
		}
		return nil
	})
}

// UpdateRating writes the rating columns only. The version is left alone so
// rating refreshes never conflict with catalog edits.
func (r *GormProductRepository) UpdateRating(ctx context.Context, productID uuid.UUID, average decimal.Decimal, count int) error {
	var p catalog.Product
	p.RecordRating(average, count)
	res := r.db.WithContext(ctx).Model(&catalog.Product{}).
		Where("id = ?", productID).
		UpdateColumns(map[string]any{
			"average_rating": p.AverageRating,
			"review_count":   p.ReviewCount,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound)
	}
	return nil
}

// Iterate walks storefront-visible products by ascending ID
func (r *GormProductRepository) Iterate(ctx context.Context, now time.Time, batchSize int, fn func([]catalog.Product) bool) error {
	if batchSize <= 0 {
		batchSize = 500
	}
	var cursor *uuid.UUID
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		query := storefrontScope(r.db.WithContext(ctx).Model(&catalog.Product{}), now)
		if cursor != nil {
			query = query.Where("id > ?", *cursor)
		}
		var batch []catalog.Product
		if err := query.Order("id ASC").Limit(batchSize).Find(&batch).Error; err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		if !fn(batch) || len(batch) < batchSize {
			return nil
		}
		last := batch[len(batch)-1].ID
		cursor = &last
	}
}

func (r *GormProductRepository) loadCategoryIDs(ctx context.Context, products []*catalog.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(products))
	index := make(map[uuid.UUID]*catalog.Product, len(products))
	for i, p := range products {
		ids[i] = p.ID
		index[p.ID] = p
		p.CategoryIDs = make([]uuid.UUID, 0)
	}

	var links []catalog.ProductCategory
	if err := r.db.WithContext(ctx).Where("product_id IN ?", ids).Order("category_id").Find(&links).Error; err != nil {
		return err
	}
	for _, l := range links {
		if p, ok := index[l.ProductID]; ok {
			p.CategoryIDs = append(p.CategoryIDs, l.CategoryID)
		}
	}
	return nil
}

func ptrs[T any](items []T) []*T {
	out := make([]*T, len(items))
	for i := range items {
		out[i] = &items[i]
	}
	return out
}

func exists(query *gorm.DB, excludeID *uuid.UUID) (bool, error) {
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
