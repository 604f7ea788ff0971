package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/domain/catalog"
	"github.com/statyba/storefront/internal/domain/shared"
	"gorm.io/gorm"
)

// GormBrandRepository implements catalog.BrandRepository using GORM
type GormBrandRepository struct {
	db *gorm.DB
}

// NewGormBrandRepository creates a new GormBrandRepository
func NewGormBrandRepository(db *gorm.DB) *GormBrandRepository {
	return &GormBrandRepository{db: db}
}

func (r *GormBrandRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Brand, error) {
	var b catalog.Brand
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *GormBrandRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Brand, error) {
	var b catalog.Brand
	if err := r.db.WithContext(ctx).First(&b, "slug = ?", slug).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

// FindBySlugs returns the brands whose slug is in slugs; unknown slugs are skipped
func (r *GormBrandRepository) FindBySlugs(ctx context.Context, slugs []string) ([]catalog.Brand, error) {
	if len(slugs) == 0 {
		return []catalog.Brand{}, nil
	}
	var brands []catalog.Brand
	err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Order("sort_order, name").Find(&brands).Error
	return brands, err
}

func (r *GormBrandRepository) List(ctx context.Context, filter shared.Filter, enabledOnly bool) ([]catalog.Brand, int64, error) {
	query := r.db.WithContext(ctx).Model(&catalog.Brand{})
	if enabledOnly {
		query = query.Where("is_enabled = ?", true)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE ? ESCAPE '\\'", likePattern(filter.Search))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if filter.OrderBy == "" {
		filter.OrderBy, filter.OrderDir = "sort_order", "asc"
	}
	var brands []catalog.Brand
	if err := paginate(query, filter, BrandSortFields, "sort_order").Find(&brands).Error; err != nil {
		return nil, 0, err
	}
	return brands, total, nil
}

func (r *GormBrandRepository) ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&catalog.Brand{}).Where("slug = ?", slug), excludeID)
}

func (r *GormBrandRepository) Save(ctx context.Context, brand *catalog.Brand) error {
	return saveVersioned(r.db.WithContext(ctx), brand, &brand.BaseAggregateRoot)
}

func (r *GormBrandRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(r.db.WithContext(ctx), &catalog.Brand{}, id)
}

func deleteByID(db *gorm.DB, model any, id uuid.UUID) error {
	res := db.Delete(model, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
