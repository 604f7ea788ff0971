package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/statyba/storefront/internal/application/catalog"
	"github.com/statyba/storefront/internal/domain/shared"
)

// BrandService is the brand use-case surface
type BrandService interface {
	Create(ctx context.Context, req catalogapp.CreateBrandRequest) (*catalogapp.BrandResponse, error)
	Update(ctx context.Context, id uuid.UUID, req catalogapp.UpdateBrandRequest) (*catalogapp.BrandResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*catalogapp.BrandResponse, error)
	GetBySlug(ctx context.Context, slug, locale string) (*catalogapp.BrandResponse, error)
	List(ctx context.Context, filter catalogapp.BrandListFilter, enabledOnly bool, locale string) (shared.Paginated[catalogapp.BrandResponse], error)
}

// BrandHandler handles brand endpoints
type BrandHandler struct {
	BaseHandler
	brands BrandService
}

// NewBrandHandler creates a new BrandHandler
func NewBrandHandler(brands BrandService) *BrandHandler {
	return &BrandHandler{brands: brands}
}

// List returns enabled brands.
// @Summary      List brands
// @Tags         brands
// @Produce      json
// @Param        search query string false "Search in brand name"
// @Param        page query int false "Page number" minimum(1)
// @Param        page_size query int false "Page size" minimum(1) maximum(100)
// @Param        locale query string false "Response locale, overrides Accept-Language"
// @Param        Accept-Language header string false "Preferred locales"
// @Success      200 {object} dto.Response{data=[]catalogapp.BrandResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/brands [get]
func (h *BrandHandler) List(c *gin.Context) {
	h.list(c, true)
}

// AdminList returns every brand.
// @Summary      List every brand
// @Tags         admin-brands
// @Produce      json
// @Param        search query string false "Search in brand name"
// @Param        page query int false "Page number" minimum(1)
// @Param        page_size query int false "Page size" minimum(1) maximum(100)
// @Success      200 {object} dto.Response{data=[]catalogapp.BrandResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/brands [get]
func (h *BrandHandler) AdminList(c *gin.Context) {
	h.list(c, false)
}

func (h *BrandHandler) list(c *gin.Context, enabledOnly bool) {
	var filter catalogapp.BrandListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	result, err := h.brands.List(c.Request.Context(), filter, enabledOnly, h.locale(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page(&h.BaseHandler, c, result)
}

// GetBySlug returns an enabled brand.
// @Summary      Get a brand
// @Tags         brands
// @Produce      json
// @Param        slug path string true "Localized slug"
// @Param        locale query string false "Response locale, overrides Accept-Language"
// @Param        Accept-Language header string false "Preferred locales"
// @Success      200 {object} dto.Response{data=catalogapp.BrandResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/brands/{slug} [get]
func (h *BrandHandler) GetBySlug(c *gin.Context) {
	brand, err := h.brands.GetBySlug(c.Request.Context(), c.Param("slug"), h.locale(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, brand)
}

// AdminGet returns one brand by ID.
// @Summary      Get a brand by ID
// @Tags         admin-brands
// @Produce      json
// @Param        id path string true "Record ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.BrandResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/brands/{id} [get]
func (h *BrandHandler) AdminGet(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	brand, err := h.brands.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, brand)
}

// Create creates a brand.
// @Summary      Create a brand
// @Tags         admin-brands
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateBrandRequest true "Brand details"
// @Success      201 {object} dto.Response{data=catalogapp.BrandResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/brands [post]
func (h *BrandHandler) Create(c *gin.Context) {
	var req catalogapp.CreateBrandRequest
	if !h.bindJSON(c, &req) {
		return
	}
	brand, err := h.brands.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, brand)
}

// Update replaces brand details.
// @Summary      Update a brand
// @Tags         admin-brands
// @Accept       json
// @Produce      json
// @Param        id path string true "Record ID" format(uuid)
// @Param        request body catalogapp.UpdateBrandRequest true "Brand details"
// @Success      200 {object} dto.Response{data=catalogapp.BrandResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/brands/{id} [put]
func (h *BrandHandler) Update(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateBrandRequest
	if !h.bindJSON(c, &req) {
		return
	}
	brand, err := h.brands.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, brand)
}

// Delete removes a brand without products.
// @Summary      Delete a brand
// @Description  Brands that still have products cannot be deleted
// @Tags         admin-brands
// @Produce      json
// @Param        id path string true "Record ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/brands/{id} [delete]
func (h *BrandHandler) Delete(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.brands.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
