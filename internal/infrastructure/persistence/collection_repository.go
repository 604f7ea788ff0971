package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/domain/catalog"
	"github.com/statyba/storefront/internal/domain/shared"
	"gorm.io/gorm"
)

// GormCollectionRepository implements catalog.CollectionRepository using GORM
type GormCollectionRepository struct {
	db *gorm.DB
}

// NewGormCollectionRepository creates a new GormCollectionRepository
func NewGormCollectionRepository(db *gorm.DB) *GormCollectionRepository {
	return &GormCollectionRepository{db: db}
}

func (r *GormCollectionRepository) withProducts(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Products", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

func (r *GormCollectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Collection, error) {
	var c catalog.Collection
	if err := r.withProducts(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *GormCollectionRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Collection, error) {
	var c catalog.Collection
	if err := r.withProducts(ctx).First(&c, "slug = ?", slug).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// List returns collections without their memberships
func (r *GormCollectionRepository) List(ctx context.Context, filter shared.Filter, visibleOnly bool) ([]catalog.Collection, int64, error) {
	query := r.db.WithContext(ctx).Model(&catalog.Collection{})
	if visibleOnly {
		query = query.Where("is_visible = ?", true)
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
	var collections []catalog.Collection
	if err := paginate(query, filter, CollectionSortFields, "sort_order").Find(&collections).Error; err != nil {
		return nil, 0, err
	}
	return collections, total, nil
}

func (r *GormCollectionRepository) ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&catalog.Collection{}).Where("slug = ?", slug), excludeID)
}

// Save persists the collection and replaces its manual memberships
func (r *GormCollectionRepository) Save(ctx context.Context, collection *catalog.Collection) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveVersioned(tx, collection, &collection.BaseAggregateRoot); err != nil {
			return err
		}
		if err := tx.Where("collection_id = ?", collection.ID).Delete(&catalog.CollectionProduct{}).Error; err != nil {
			return err
		}
		if len(collection.Products) == 0 {
			return nil
		}
		for i := range collection.Products {
			collection.Products[i].CollectionID = collection.ID
		}
		return translate(tx.Create(&collection.Products).Error)
	})
}

func (r *GormCollectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("collection_id = ?", id).Delete(&catalog.CollectionProduct{}).Error; err != nil {
			return err
		}
		return deleteByID(tx, &catalog.Collection{}, id)
	})
}
