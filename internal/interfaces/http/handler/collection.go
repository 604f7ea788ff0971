package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/statyba/storefront/internal/application/catalog"
	"github.com/statyba/storefront/internal/domain/shared"
)

// CollectionService is the collection use-case surface
type CollectionService interface {
	Create(ctx context.Context, req catalogapp.CreateCollectionRequest) (*catalogapp.CollectionResponse, error)
	Update(ctx context.Context, id uuid.UUID, req catalogapp.UpdateCollectionRequest) (*catalogapp.CollectionResponse, error)
	AddProduct(ctx context.Context, id, productID uuid.UUID) (*catalogapp.CollectionResponse, error)
	RemoveProduct(ctx context.Context, id, productID uuid.UUID) (*catalogapp.CollectionResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*catalogapp.CollectionResponse, error)
	List(ctx context.Context, page, pageSize int, search string, visibleOnly bool, locale string) (shared.Paginated[catalogapp.CollectionResponse], error)
	Gallery(ctx context.Context, slug string, query catalogapp.GalleryQuery, locale string) (*catalogapp.GalleryResponse, error)
}

// CollectionHandler handles collection and gallery endpoints
type CollectionHandler struct {
	BaseHandler
	collections CollectionService
}

// NewCollectionHandler creates a new CollectionHandler
func NewCollectionHandler(collections CollectionService) *CollectionHandler {
	return &CollectionHandler{collections: collections}
}

type collectionListQuery struct {
	Search   string `form:"search" binding:"max=100"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

type galleryQuery struct {
	After    string `form:"after" binding:"omitempty,uuid"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=48"`
}

func (q galleryQuery) toApp() catalogapp.GalleryQuery {
	out := catalogapp.GalleryQuery{Page: q.Page, PageSize: q.PageSize}
	if id, err := uuid.Parse(q.After); err == nil {
		out.After = &id
	}
	return out
}

// List returns visible collections.
// @Summary      List collections
// @Tags         collections
// @Produce      json
// @Param        search query string false "Search in collection name"
// @Param        page query int false "Page number" minimum(1)
// @Param        page_size query int false "Page size" minimum(1) maximum(100)
// @Param        locale query string false "Response locale, overrides Accept-Language"
// @Param        Accept-Language header string false "Preferred locales"
// @Success      200 {object} dto.Response{data=[]catalogapp.CollectionResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/collections [get]
func (h *CollectionHandler) List(c *gin.Context) {
	h.list(c, true)
}

// AdminList returns every collection.
// @Summary      List every collection
// @Tags         admin-collections
// @Produce      json
// @Param        search query string false "Search in collection name"
// @Param        page query int false "Page number" minimum(1)
// @Param        page_size query int false "Page size" minimum(1) maximum(100)
// @Success      200 {object} dto.Response{data=[]catalogapp.CollectionResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/collections [get]
func (h *CollectionHandler) AdminList(c *gin.Context) {
	h.list(c, false)
}

func (h *CollectionHandler) list(c *gin.Context, visibleOnly bool) {
	var query collectionListQuery
	if !h.bindQuery(c, &query) {
		return
	}
	result, err := h.collections.List(c.Request.Context(), query.Page, query.PageSize, query.Search, visibleOnly, h.locale(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page(&h.BaseHandler, c, result)
}

// Gallery returns one arranged page of a visible collection.
// Pages are addressed by ?after=<product id> or ?page=.
// @Summary      Get a collection gallery page
// @Description  One arranged page of a visible collection, addressed by cursor or page number
// @Tags         collections
// @Produce      json
// @Param        slug path string true "Localized slug"
// @Param        after query string false "Continue after this product" format(uuid)
// @Param        page query int false "Page number" minimum(1)
// @Param        page_size query int false "Page size" minimum(1) maximum(48)
// @Param        locale query string false "Response locale, overrides Accept-Language"
// @Param        Accept-Language header string false "Preferred locales"
// @Success      200 {object} dto.Response{data=catalogapp.GalleryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/collections/{slug} [get]
func (h *CollectionHandler) Gallery(c *gin.Context) {
	var query galleryQuery
	if !h.bindQuery(c, &query) {
		return
	}
	gallery, err := h.collections.Gallery(c.Request.Context(), c.Param("slug"), query.toApp(), h.locale(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gallery)
}

// AdminGet returns one collection by ID.
// @Summary      Get a collection by ID
// @Tags         admin-collections
// @Produce      json
// @Param        id path string true "Record ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.CollectionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/collections/{id} [get]
func (h *CollectionHandler) AdminGet(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	collection, err := h.collections.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, collection)
}

// Create creates a manual or automatic collection.
// @Summary      Create a collection
// @Tags         admin-collections
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateCollectionRequest true "Collection details and rules"
// @Success      201 {object} dto.Response{data=catalogapp.CollectionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/collections [post]
func (h *CollectionHandler) Create(c *gin.Context) {
	var req catalogapp.CreateCollectionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	collection, err := h.collections.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, collection)
}

// Update replaces collection details.
// @Summary      Update a collection
// @Tags         admin-collections
// @Accept       json
// @Produce      json
// @Param        id path string true "Record ID" format(uuid)
// @Param        request body catalogapp.UpdateCollectionRequest true "Collection details and rules"
// @Success      200 {object} dto.Response{data=catalogapp.CollectionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/collections/{id} [put]
func (h *CollectionHandler) Update(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateCollectionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	collection, err := h.collections.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, collection)
}

// AddProduct appends a product to a manual collection.
// @Summary      Add a product to a collection
// @Tags         admin-collections
// @Produce      json
// @Param        id path string true "Record ID" format(uuid)
// @Param        productId path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.CollectionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/collections/{id}/products/{productId} [put]
func (h *CollectionHandler) AddProduct(c *gin.Context) {
	h.membership(c, h.collections.AddProduct)
}

// RemoveProduct drops a product from a manual collection.
// @Summary      Remove a product from a collection
// @Tags         admin-collections
// @Produce      json
// @Param        id path string true "Record ID" format(uuid)
// @Param        productId path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.CollectionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/collections/{id}/products/{productId} [delete]
func (h *CollectionHandler) RemoveProduct(c *gin.Context) {
	h.membership(c, h.collections.RemoveProduct)
}

func (h *CollectionHandler) membership(c *gin.Context, fn func(context.Context, uuid.UUID, uuid.UUID) (*catalogapp.CollectionResponse, error)) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	productID, ok := h.uuidParam(c, "productId")
	if !ok {
		return
	}
	collection, err := fn(c.Request.Context(), id, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, collection)
}

// Delete removes a collection.
// @Summary      Delete a collection
// @Tags         admin-collections
// @Produce      json
// @Param        id path string true "Record ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/collections/{id} [delete]
func (h *CollectionHandler) Delete(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.collections.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
