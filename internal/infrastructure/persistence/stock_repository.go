package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/domain/inventory"
	"github.com/statyba/storefront/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockItemRepository implements inventory.StockItemRepository using GORM
type GormStockItemRepository struct {
	db *gorm.DB
}

// NewGormStockItemRepository creates a new GormStockItemRepository
func NewGormStockItemRepository(db *gorm.DB) *GormStockItemRepository {
	return &GormStockItemRepository{db: db}
}

func (r *GormStockItemRepository) FindByProduct(ctx context.Context, productID uuid.UUID) (*inventory.StockItem, error) {
	var item inventory.StockItem
	if err := r.db.WithContext(ctx).First(&item, "product_id = ?", productID).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (r *GormStockItemRepository) FindByProducts(ctx context.Context, productIDs []uuid.UUID) ([]inventory.StockItem, error) {
	if len(productIDs) == 0 {
		return []inventory.StockItem{}, nil
	}
	var items []inventory.StockItem
	err := r.db.WithContext(ctx).Where("product_id IN ?", productIDs).Find(&items).Error
	return items, err
}

// FindByProductForUpdate takes a row lock on dialects that support it.
// Save still checks the version, so SQLite stays correct without the lock.
func (r *GormStockItemRepository) FindByProductForUpdate(ctx context.Context, productID uuid.UUID) (*inventory.StockItem, error) {
	query := r.db.WithContext(ctx)
	if query.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var item inventory.StockItem
	if err := query.First(&item, "product_id = ?", productID).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

// FindLowStock lists tracked items whose available quantity is at or below the threshold
func (r *GormStockItemRepository) FindLowStock(ctx context.Context, filter shared.Filter) ([]inventory.StockItem, int64, error) {
	query := r.db.WithContext(ctx).Model(&inventory.StockItem{}).
		Where("track_inventory = ? AND quantity - reserved <= low_stock_threshold", true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if filter.OrderBy == "" {
		filter.OrderBy, filter.OrderDir = "quantity", "asc"
	}
	var items []inventory.StockItem
	if err := paginate(query, filter, StockSortFields, "quantity").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Save persists the item with optimistic locking on version
func (r *GormStockItemRepository) Save(ctx context.Context, item *inventory.StockItem) error {
	return saveVersioned(r.db.WithContext(ctx), item, &item.BaseAggregateRoot)
}

// GormStockMovementRepository implements inventory.StockMovementRepository using GORM
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

func (r *GormStockMovementRepository) Create(ctx context.Context, movements ...*inventory.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(movements).Error
}

// ListByProduct returns movements newest first
func (r *GormStockMovementRepository) ListByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]inventory.StockMovement, int64, error) {
	query := r.db.WithContext(ctx).Model(&inventory.StockMovement{}).Where("product_id = ?", productID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	f := filter.Normalize()
	var movements []inventory.StockMovement
	err := query.Order("created_at DESC").Order("id DESC").
		Offset(f.Offset()).Limit(f.PageSize).
		Find(&movements).Error
	return movements, total, err
}
