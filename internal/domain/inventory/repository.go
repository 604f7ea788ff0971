package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/domain/shared"
)

// StockItemRepository persists stock items
type StockItemRepository interface {
	FindByProduct(ctx context.Context, productID uuid.UUID) (*StockItem, error)
	FindByProducts(ctx context.Context, productIDs []uuid.UUID) ([]StockItem, error)
	// FindByProductForUpdate locks the row for the rest of the transaction
	FindByProductForUpdate(ctx context.Context, productID uuid.UUID) (*StockItem, error)
	FindLowStock(ctx context.Context, filter shared.Filter) ([]StockItem, int64, error)
	// Save inserts new items and updates existing ones with optimistic locking
	// on Version; a lost update returns shared.ErrConcurrencyConflict.
	Save(ctx context.Context, item *StockItem) error
}

// StockMovementRepository persists the movement history
type StockMovementRepository interface {
	Create(ctx context.Context, movements ...*StockMovement) error
	ListByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]StockMovement, int64, error)
}
