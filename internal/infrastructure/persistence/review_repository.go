package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/domain/review"
	"gorm.io/gorm"
)

// GormReviewRepository implements review.Repository using GORM
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

func (r *GormReviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*review.Review, error) {
	var rv review.Review
	if err := r.db.WithContext(ctx).First(&rv, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &rv, nil
}

func (r *GormReviewRepository) ExistsFor(ctx context.Context, productID, customerID uuid.UUID) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&review.Review{}).
		Where("product_id = ? AND customer_id = ?", productID, customerID), nil)
}

func (r *GormReviewRepository) List(ctx context.Context, filter review.Filter) ([]review.Review, int64, error) {
	query := r.db.WithContext(ctx).Model(&review.Review{})
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset, limit := pageWindow(filter.Page, filter.PageSize)
	var reviews []review.Review
	err := query.Order("created_at DESC").Order("id ASC").Offset(offset).Limit(limit).Find(&reviews).Error
	return reviews, total, err
}

// RatingDistribution counts approved reviews per star; index 0 holds one-star reviews
func (r *GormReviewRepository) RatingDistribution(ctx context.Context, productID uuid.UUID) ([5]int, error) {
	var rows []struct {
		Rating int
		Count  int
	}
	var dist [5]int
	err := r.db.WithContext(ctx).Model(&review.Review{}).
		Select("rating, COUNT(*) AS count").
		Where("product_id = ? AND status = ?", productID, review.StatusApproved).
		Group("rating").
		Scan(&rows).Error
	if err != nil {
		return dist, err
	}
	for _, row := range rows {
		if row.Rating >= 1 && row.Rating <= 5 {
			dist[row.Rating-1] = row.Count
		}
	}
	return dist, nil
}

func (r *GormReviewRepository) Save(ctx context.Context, rv *review.Review) error {
	return saveVersioned(r.db.WithContext(ctx), rv, &rv.BaseAggregateRoot)
}

func (r *GormReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(r.db.WithContext(ctx), &review.Review{}, id)
}
