package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/domain/inventory"
)

// StockItemResponse represents a stock item in API responses
type StockItemResponse struct {
	ID                uuid.UUID `json:"id"`
	ProductID         uuid.UUID `json:"product_id"`
	Quantity          int       `json:"quantity"`
	Reserved          int       `json:"reserved"`
	Available         int       `json:"available"`
	LowStockThreshold int       `json:"low_stock_threshold"`
	TrackInventory    bool      `json:"track_inventory"`
	AllowBackorder    bool      `json:"allow_backorder"`
	IsLow             bool      `json:"is_low"`
	UpdatedAt         time.Time `json:"updated_at"`
	Version           int       `json:"version"`
}

// StockMovementResponse represents a stock movement in API responses
type StockMovementResponse struct {
	ID        uuid.UUID  `json:"id"`
	ProductID uuid.UUID  `json:"product_id"`
	Type      string     `json:"type"`
	Delta     int        `json:"delta"`
	Before    int        `json:"before"`
	After     int        `json:"after"`
	Reason    string     `json:"reason"`
	Reference string     `json:"reference,omitempty"`
	ActorID   *uuid.UUID `json:"actor_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// AdjustStockRequest is the admin stock adjustment form
type AdjustStockRequest struct {
	Mode     string `json:"mode" binding:"required,oneof=set increase decrease"`
	Quantity int    `json:"quantity" binding:"min=0"`
	Reason   string `json:"reason" binding:"required,max=255"`
}

// AdjustStockResponse carries the updated item and the recorded movement, if any
type AdjustStockResponse struct {
	Item     StockItemResponse      `json:"item"`
	Movement *StockMovementResponse `json:"movement,omitempty"`
}

// UpdateStockSettingsRequest changes threshold and policy flags
type UpdateStockSettingsRequest struct {
	LowStockThreshold *int  `json:"low_stock_threshold" binding:"omitempty,min=0"`
	TrackInventory    *bool `json:"track_inventory"`
	AllowBackorder    *bool `json:"allow_backorder"`
}

// ListQuery is the pagination query shared by the stock listings
type ListQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Line is one product quantity of an order
type Line struct {
	ProductID uuid.UUID
	Quantity  int
}

// ToStockItemResponse converts a domain StockItem to StockItemResponse
func ToStockItemResponse(item *inventory.StockItem) StockItemResponse {
	return StockItemResponse{
		ID:                item.ID,
		ProductID:         item.ProductID,
		Quantity:          item.Quantity,
		Reserved:          item.Reserved,
		Available:         item.Available(),
		LowStockThreshold: item.LowStockThreshold,
		TrackInventory:    item.TrackInventory,
		AllowBackorder:    item.AllowBackorder,
		IsLow:             item.IsLow(),
		UpdatedAt:         item.UpdatedAt,
		Version:           item.Version,
	}
}

// ToStockMovementResponse converts a domain StockMovement to StockMovementResponse
func ToStockMovementResponse(m *inventory.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:        m.ID,
		ProductID: m.ProductID,
		Type:      string(m.Type),
		Delta:     m.Delta,
		Before:    m.Before,
		After:     m.After,
		Reason:    m.Reason,
		Reference: m.Reference,
		ActorID:   m.ActorID,
		CreatedAt: m.CreatedAt,
	}
}
