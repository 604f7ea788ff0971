package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/statyba/storefront/internal/application/catalog"
	"github.com/statyba/storefront/internal/domain/shared"
)

// ProductService is the catalog product use-case surface
type ProductService interface {
	Create(ctx context.Context, req catalogapp.CreateProductRequest) (*catalogapp.ProductResponse, error)
	Update(ctx context.Context, id uuid.UUID, req catalogapp.UpdateProductRequest) (*catalogapp.ProductResponse, error)
	Publish(ctx context.Context, id uuid.UUID, req catalogapp.PublishProductRequest) (*catalogapp.ProductResponse, error)
	Unpublish(ctx context.Context, id uuid.UUID) (*catalogapp.ProductResponse, error)
	Archive(ctx context.Context, id uuid.UUID) (*catalogapp.ProductResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*catalogapp.ProductResponse, error)
	GetBySlug(ctx context.Context, slug, locale string) (*catalogapp.ProductResponse, error)
	ListStorefront(ctx context.Context, query catalogapp.ProductListQuery, locale string) (shared.Paginated[catalogapp.ProductCard], error)
	ListAdmin(ctx context.Context, query catalogapp.ProductListQuery) (shared.Paginated[catalogapp.ProductResponse], error)
}

// ProductHandler handles product endpoints of the storefront and back office
type ProductHandler struct {
	BaseHandler
	products ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// List returns storefront product cards.
// @Summary      List products
// @Description  Published product cards in the negotiated locale
// @Tags         products
// @Produce      json
// @Param        search query string false "Search in name and description"
// @Param        brand query []string false "Brand slugs" collectionFormat(multi)
// @Param        category query string false "Category slug, includes descendants"
// @Param        collection query string false "Collection slug"
// @Param        min_price query number false "Minimum price"
// @Param        max_price query number false "Maximum price"
// @Param        in_stock query bool false "Only products that can be bought now"
// @Param        featured query bool false "Only featured products"
// @Param        sort query string false "Sort order" Enums(newest, price_asc, price_desc, name, rating)
// @Param        page query int false "Page number" minimum(1)
// @Param        page_size query int false "Page size" minimum(1) maximum(100)
// @Param        locale query string false "Response locale, overrides Accept-Language"
// @Param        Accept-Language header string false "Preferred locales"
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductCard,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var query catalogapp.ProductListQuery
	if !h.bindQuery(c, &query) {
		return
	}
	// storefront listings are always published products
	query.Status = ""

	result, err := h.products.ListStorefront(c.Request.Context(), query, h.locale(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page(&h.BaseHandler, c, result)
}

// GetBySlug returns a storefront product by its localized slug.
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        slug path string true "Localized slug"
// @Param        locale query string false "Response locale, overrides Accept-Language"
// @Param        Accept-Language header string false "Preferred locales"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/products/{slug} [get]
func (h *ProductHandler) GetBySlug(c *gin.Context) {
	product, err := h.products.GetBySlug(c.Request.Context(), c.Param("slug"), h.locale(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// AdminList returns products in every status.
// @Summary      List products in every status
// @Tags         admin-products
// @Produce      json
// @Param        search query string false "Search in name, SKU and description"
// @Param        status query string false "Product status" Enums(draft, published, archived)
// @Param        sort query string false "Sort order" Enums(newest, price_asc, price_desc, name, rating)
// @Param        page query int false "Page number" minimum(1)
// @Param        page_size query int false "Page size" minimum(1) maximum(100)
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/products [get]
func (h *ProductHandler) AdminList(c *gin.Context) {
	var query catalogapp.ProductListQuery
	if !h.bindQuery(c, &query) {
		return
	}
	result, err := h.products.ListAdmin(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page(&h.BaseHandler, c, result)
}

// AdminGet returns one product by ID.
// @Summary      Get a product by ID
// @Tags         admin-products
// @Produce      json
// @Param        id path string true "Record ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/products/{id} [get]
func (h *ProductHandler) AdminGet(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	product, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Create creates a draft product.
// @Summary      Create a product
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateProductRequest true "Product details"
// @Success      201 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.CreateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	product, err := h.products.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Update applies a partial product update.
// @Summary      Update a product
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        id path string true "Record ID" format(uuid)
// @Param        request body catalogapp.UpdateProductRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/products/{id} [patch]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	product, err := h.products.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Publish publishes a product now or at publish_at.
// @Summary      Publish a product
// @Description  Publishes now, or at publish_at when it lies in the future
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        id path string true "Record ID" format(uuid)
// @Param        request body catalogapp.PublishProductRequest false "Scheduled publish time"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/products/{id}/publish [post]
func (h *ProductHandler) Publish(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req catalogapp.PublishProductRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}
	product, err := h.products.Publish(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Unpublish returns a product to draft.
// @Summary      Unpublish a product
// @Tags         admin-products
// @Produce      json
// @Param        id path string true "Record ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/products/{id}/unpublish [post]
func (h *ProductHandler) Unpublish(c *gin.Context) {
	h.transition(c, h.products.Unpublish)
}

// Archive takes a product off sale permanently.
// @Summary      Archive a product
// @Tags         admin-products
// @Produce      json
// @Param        id path string true "Record ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/products/{id}/archive [post]
func (h *ProductHandler) Archive(c *gin.Context) {
	h.transition(c, h.products.Archive)
}

func (h *ProductHandler) transition(c *gin.Context, fn func(context.Context, uuid.UUID) (*catalogapp.ProductResponse, error)) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	product, err := fn(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete removes a product.
// @Summary      Delete a product
// @Tags         admin-products
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
// @Router       /api/v1/admin/products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
