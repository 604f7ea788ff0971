package inventory

import (
	"time"

	"github.com/google/uuid"
)

// MovementType classifies a stock movement
type MovementType string

const (
	MovementTypeAdjustment  MovementType = "adjustment"
	MovementTypeIncrease    MovementType = "increase"
	MovementTypeDecrease    MovementType = "decrease"
	MovementTypeReservation MovementType = "reservation"
	MovementTypeRelease     MovementType = "release"
	MovementTypeSale        MovementType = "sale"
	MovementTypeReturn      MovementType = "return"
)

// StockMovement is an append-only audit record of a stock change.
// For reservation and release movements Before/After are available units;
// for all others they are on-hand quantities.
type StockMovement struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID    `gorm:"type:uuid;not null;index"`
	Type      MovementType `gorm:"type:varchar(20);not null"`
	Delta     int          `gorm:"not null"`
	Before    int          `gorm:"column:quantity_before;not null"`
	After     int          `gorm:"column:quantity_after;not null"`
	Reason    string       `gorm:"type:varchar(255);not null"`
	Reference string       `gorm:"type:varchar(64);index"`
	ActorID   *uuid.UUID   `gorm:"type:uuid"`
	CreatedAt time.Time    `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement creates a movement record
func NewStockMovement(productID uuid.UUID, movementType MovementType, delta, before, after int, reason, reference string, actorID *uuid.UUID) *StockMovement {
	return &StockMovement{
		ID:        uuid.New(),
		ProductID: productID,
		Type:      movementType,
		Delta:     delta,
		Before:    before,
		After:     after,
		Reason:    reason,
		Reference: reference,
		ActorID:   actorID,
		CreatedAt: time.Now(),
	}
}
