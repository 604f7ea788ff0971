package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/domain/shared"
)

// MaxReasonLength bounds the free-text reason of an adjustment
const MaxReasonLength = 255

// AdjustMode selects how AdjustStock interprets its quantity
type AdjustMode string

const (
	AdjustModeSet      AdjustMode = "set"
	AdjustModeIncrease AdjustMode = "increase"
	AdjustModeDecrease AdjustMode = "decrease"
)

// IsValid reports whether m is a known mode
func (m AdjustMode) IsValid() bool {
	switch m {
	case AdjustModeSet, AdjustModeIncrease, AdjustModeDecrease:
		return true
	}
	return false
}

// StockItem is the on-hand stock of one product.
// Reserved units belong to placed but not yet shipped orders.
type StockItem struct {
	shared.BaseAggregateRoot
	ProductID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Quantity          int       `gorm:"not null;default:0"`
	Reserved          int       `gorm:"not null;default:0"`
	LowStockThreshold int       `gorm:"not null;default:5"`
	TrackInventory    bool      `gorm:"not null;default:true"`
	AllowBackorder    bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (StockItem) TableName() string {
	return "stock_items"
}

// NewStockItem creates an empty, tracked stock record for a product
func NewStockItem(productID uuid.UUID, lowStockThreshold int) (*StockItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if lowStockThreshold < 0 {
		return nil, shared.NewDomainError("INVALID_THRESHOLD", "Low stock threshold cannot be negative")
	}
	return &StockItem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		LowStockThreshold: lowStockThreshold,
		TrackInventory:    true,
	}, nil
}

// Available returns units that can still be sold
func (s *StockItem) Available() int {
	return s.Quantity - s.Reserved
}

// IsLow reports whether available stock is at or below the threshold
func (s *StockItem) IsLow() bool {
	return s.TrackInventory && s.Available() <= s.LowStockThreshold
}

// CanFulfill reports whether qty more units can be sold
func (s *StockItem) CanFulfill(qty int) bool {
	if !s.TrackInventory || s.AllowBackorder {
		return true
	}
	return s.Available() >= qty
}

// AdjustStock changes on-hand quantity by mode and records why.
// Decreases that would leave fewer units than are reserved (or a negative
// quantity) are rejected unless backorders are allowed. An adjustment that
// does not change the quantity returns a nil movement and leaves the item untouched.
func (s *StockItem) AdjustStock(mode AdjustMode, quantity int, reason string, actorID *uuid.UUID) (*StockMovement, error) {
	if !mode.IsValid() {
		return nil, shared.NewDomainError("INVALID_MODE", "Adjustment mode must be set, increase or decrease")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Adjustment reason is required")
	}
	if len([]rune(reason)) > MaxReasonLength {
		return nil, shared.NewDomainError("INVALID_REASON", fmt.Sprintf("Adjustment reason cannot exceed %d characters", MaxReasonLength))
	}

	var target int
	switch mode {
	case AdjustModeSet:
		if quantity < 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
		}
		target = quantity
	case AdjustModeIncrease:
		if quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
		}
		target = s.Quantity + quantity
	case AdjustModeDecrease:
		if quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
		}
		target = s.Quantity - quantity
	}

	if target < s.Quantity && !s.AllowBackorder && (target < 0 || target < s.Reserved) {
		return nil, shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Cannot reduce stock to %d: %d units are reserved", target, s.Reserved))
	}

	delta := target - s.Quantity
	if delta == 0 {
		return nil, nil
	}

	movementType := MovementTypeAdjustment
	switch mode {
	case AdjustModeIncrease:
		movementType = MovementTypeIncrease
	case AdjustModeDecrease:
		movementType = MovementTypeDecrease
	}
	return s.apply(movementType, delta, s.Available(), reason, "", actorID), nil
}

// Reserve holds qty units for an order
func (s *StockItem) Reserve(qty int, reference string) (*StockMovement, error) {
	if qty <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Reservation quantity must be positive")
	}
	if !s.CanFulfill(qty) {
		return nil, shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Only %d units available", max(s.Available(), 0)))
	}
	before := s.Available()
	s.Reserved += qty
	return s.record(MovementTypeReservation, -qty, before, "order reservation", reference, nil), nil
}

// Release returns reserved units to available stock
func (s *StockItem) Release(qty int, reference string) (*StockMovement, error) {
	if qty <= 0 || qty > s.Reserved {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Release quantity exceeds reserved stock")
	}
	before := s.Available()
	s.Reserved -= qty
	return s.record(MovementTypeRelease, qty, before, "order cancelled", reference, nil), nil
}

// CommitSale removes previously reserved units from stock once an order ships
func (s *StockItem) CommitSale(qty int, reference string) (*StockMovement, error) {
	if qty <= 0 || qty > s.Reserved {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Sale quantity exceeds reserved stock")
	}
	before := s.Available()
	s.Reserved -= qty
	return s.apply(MovementTypeSale, -qty, before, "order shipped", reference, nil), nil
}

// Restock adds returned units back to stock
func (s *StockItem) Restock(qty int, reference string) (*StockMovement, error) {
	if qty <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Return quantity must be positive")
	}
	return s.apply(MovementTypeReturn, qty, s.Available(), "order returned", reference, nil), nil
}

// SetThreshold changes the low-stock threshold
func (s *StockItem) SetThreshold(threshold int) error {
	if threshold < 0 {
		return shared.NewDomainError("INVALID_THRESHOLD", "Low stock threshold cannot be negative")
	}
	s.LowStockThreshold = threshold
	s.touch()
	return nil
}

// SetPolicy toggles tracking and backorders
func (s *StockItem) SetPolicy(track, allowBackorder bool) {
	s.TrackInventory = track
	s.AllowBackorder = allowBackorder
	s.touch()
}

// apply changes on-hand quantity by delta, recording the movement and events
func (s *StockItem) apply(movementType MovementType, delta, beforeAvailable int, reason, reference string, actorID *uuid.UUID) *StockMovement {
	beforeQty := s.Quantity
	s.Quantity += delta
	movement := NewStockMovement(s.ProductID, movementType, delta, beforeQty, s.Quantity, reason, reference, actorID)
	s.touch()
	s.AddDomainEvent(NewStockAdjustedEvent(s, movement))
	s.checkLow(beforeAvailable)
	return movement
}

// record logs a reservation-type movement that changes availability but not on-hand quantity
func (s *StockItem) record(movementType MovementType, delta, beforeAvailable int, reason, reference string, actorID *uuid.UUID) *StockMovement {
	movement := NewStockMovement(s.ProductID, movementType, delta, beforeAvailable, s.Available(), reason, reference, actorID)
	s.touch()
	s.checkLow(beforeAvailable)
	return movement
}

// checkLow emits StockLow when availability crosses from above the threshold to at or below it
func (s *StockItem) checkLow(beforeAvailable int) {
	if !s.TrackInventory {
		return
	}
	if beforeAvailable > s.LowStockThreshold && s.Available() <= s.LowStockThreshold {
		s.AddDomainEvent(NewStockLowEvent(s))
	}
}

// touch only refreshes the timestamp; the repository bumps Version when it saves
func (s *StockItem) touch() {
	s.UpdatedAt = time.Now()
}
