package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/domain/catalog"
	"gorm.io/gorm"
)

// GormCategoryRepository implements catalog.CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	var c catalog.Category
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *GormCategoryRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Category, error) {
	var c catalog.Category
	if err := r.db.WithContext(ctx).First(&c, "slug = ?", slug).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// FindAll returns every category ordered for tree building
func (r *GormCategoryRepository) FindAll(ctx context.Context, visibleOnly bool) ([]catalog.Category, error) {
	query := r.db.WithContext(ctx)
	if visibleOnly {
		query = query.Where("is_visible = ?", true)
	}
	var categories []catalog.Category
	err := query.Order("level ASC, sort_order ASC, name ASC").Find(&categories).Error
	return categories, err
}

// FindDescendants returns all categories below category, excluding itself
func (r *GormCategoryRepository) FindDescendants(ctx context.Context, category *catalog.Category) ([]catalog.Category, error) {
	var categories []catalog.Category
	err := r.db.WithContext(ctx).
		Where("path LIKE ?", category.Path+"/%").
		Order("level ASC, sort_order ASC").
		Find(&categories).Error
	return categories, err
}

func (r *GormCategoryRepository) ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&catalog.Category{}).Where("slug = ?", slug), excludeID)
}

func (r *GormCategoryRepository) HasChildren(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&catalog.Category{}).Where("parent_id = ?", id), nil)
}

func (r *GormCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	return saveVersioned(r.db.WithContext(ctx), category, &category.BaseAggregateRoot)
}

// SaveAll saves a moved subtree atomically
func (r *GormCategoryRepository) SaveAll(ctx context.Context, categories []catalog.Category) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range categories {
			if err := saveVersioned(tx, &categories[i], &categories[i].BaseAggregateRoot); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a category and its product links
func (r *GormCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&catalog.ProductCategory{}).Error; err != nil {
			return err
		}
		return deleteByID(tx, &catalog.Category{}, id)
	})
}
