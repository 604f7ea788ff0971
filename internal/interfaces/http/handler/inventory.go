package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	inventoryapp "github.com/statyba/storefront/internal/application/inventory"
	"github.com/statyba/storefront/internal/domain/shared"
)

// StockService is the back-office inventory surface
type StockService interface {
	Get(ctx context.Context, productID uuid.UUID) (*inventoryapp.StockItemResponse, error)
	AdjustStock(ctx context.Context, productID uuid.UUID, req inventoryapp.AdjustStockRequest, actorID *uuid.UUID) (*inventoryapp.AdjustStockResponse, error)
	UpdateSettings(ctx context.Context, productID uuid.UUID, req inventoryapp.UpdateStockSettingsRequest) (*inventoryapp.StockItemResponse, error)
	ListLowStock(ctx context.Context, query inventoryapp.ListQuery) (shared.Paginated[inventoryapp.StockItemResponse], error)
	ListMovements(ctx context.Context, productID uuid.UUID, query inventoryapp.ListQuery) (shared.Paginated[inventoryapp.StockMovementResponse], error)
}

// InventoryHandler handles stock endpoints
type InventoryHandler struct {
	BaseHandler
	stock StockService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(stock StockService) *InventoryHandler {
	return &InventoryHandler{stock: stock}
}

// Get returns the stock item of a product.
// @Summary      Get product stock
// @Tags         admin-inventory
// @Produce      json
// @Param        id path string true "Record ID" format(uuid)
// @Success      200 {object} dto.Response{data=inventoryapp.StockItemResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/products/{id}/stock [get]
func (h *InventoryHandler) Get(c *gin.Context) {
	productID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	item, err := h.stock.Get(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Adjust sets, increases or decreases on-hand stock.
// @Summary      Adjust product stock
// @Description  Sets, increases or decreases on-hand stock and records a movement
// @Tags         admin-inventory
// @Accept       json
// @Produce      json
// @Param        id path string true "Record ID" format(uuid)
// @Param        request body inventoryapp.AdjustStockRequest true "Adjustment"
// @Success      200 {object} dto.Response{data=inventoryapp.AdjustStockResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/products/{id}/stock/adjust [post]
func (h *InventoryHandler) Adjust(c *gin.Context) {
	productID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.AdjustStockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.stock.AdjustStock(c.Request.Context(), productID, req, optionalCustomerID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// UpdateSettings changes the low-stock threshold and policy flags.
// @Summary      Update stock settings
// @Tags         admin-inventory
// @Accept       json
// @Produce      json
// @Param        id path string true "Record ID" format(uuid)
// @Param        request body inventoryapp.UpdateStockSettingsRequest true "Threshold and policy flags"
// @Success      200 {object} dto.Response{data=inventoryapp.StockItemResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/products/{id}/stock [patch]
func (h *InventoryHandler) UpdateSettings(c *gin.Context) {
	productID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.UpdateStockSettingsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.stock.UpdateSettings(c.Request.Context(), productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Movements lists the stock ledger of a product, newest first.
// @Summary      List stock movements
// @Tags         admin-inventory
// @Produce      json
// @Param        id path string true "Record ID" format(uuid)
// @Param        page query int false "Page number" minimum(1)
// @Param        page_size query int false "Page size" minimum(1) maximum(100)
// @Success      200 {object} dto.Response{data=[]inventoryapp.StockMovementResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/products/{id}/stock/movements [get]
func (h *InventoryHandler) Movements(c *gin.Context) {
	productID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var query inventoryapp.ListQuery
	if !h.bindQuery(c, &query) {
		return
	}
	result, err := h.stock.ListMovements(c.Request.Context(), productID, query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page(&h.BaseHandler, c, result)
}

// LowStock lists tracked items at or below their threshold.
// @Summary      List low stock items
// @Tags         admin-inventory
// @Produce      json
// @Param        page query int false "Page number" minimum(1)
// @Param        page_size query int false "Page size" minimum(1) maximum(100)
// @Success      200 {object} dto.Response{data=[]inventoryapp.StockItemResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/stock/low [get]
func (h *InventoryHandler) LowStock(c *gin.Context) {
	var query inventoryapp.ListQuery
	if !h.bindQuery(c, &query) {
		return
	}
	result, err := h.stock.ListLowStock(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page(&h.BaseHandler, c, result)
}
