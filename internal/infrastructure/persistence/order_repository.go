package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/domain/order"
	"gorm.io/gorm"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&o, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (r *GormOrderRepository) FindByNumber(ctx context.Context, number string) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&o, "number = ?", number).Error; err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

// List returns orders newest first with their items
func (r *GormOrderRepository) List(ctx context.Context, filter order.Filter) ([]order.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&order.Order{})
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		query = query.Where("placed_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("placed_at < ?", *filter.To)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("(LOWER(number) LIKE ? ESCAPE '\\' OR LOWER(email) LIKE ? ESCAPE '\\')", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset, limit := pageWindow(filter.Page, filter.PageSize)
	var orders []order.Order
	err := query.Preload("Items").
		Order("placed_at DESC").Order("id ASC").
		Offset(offset).Limit(limit).
		Find(&orders).Error
	return orders, total, err
}

func (r *GormOrderRepository) HasDeliveredProduct(ctx context.Context, customerID, productID uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&order.Item{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.customer_id = ? AND orders.status = ? AND order_items.product_id = ?",
			customerID, order.StatusDelivered, productID)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormOrderRepository) CountDelivered(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&order.Order{}).
		Where("customer_id = ? AND status = ?", customerID, order.StatusDelivered).
		Count(&count).Error
	return count, err
}

// Save persists the order; items are written once when the order is created
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		isNew := o.Version == 1
		if err := saveVersioned(tx, o, &o.BaseAggregateRoot); err != nil {
			return err
		}
		if !isNew || len(o.Items) == 0 {
			return nil
		}
		var existing int64
		if err := tx.Model(&order.Item{}).Where("order_id = ?", o.ID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return nil
		}
		for i := range o.Items {
			o.Items[i].OrderID = o.ID
		}
		return translate(tx.Create(&o.Items).Error)
	})
}
