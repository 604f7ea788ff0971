package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/statyba/storefront/internal/application/catalog"
)

// CategoryService is the category use-case surface
type CategoryService interface {
	Create(ctx context.Context, req catalogapp.CreateCategoryRequest) (*catalogapp.CategoryResponse, error)
	Update(ctx context.Context, id uuid.UUID, req catalogapp.UpdateCategoryRequest) (*catalogapp.CategoryResponse, error)
	Move(ctx context.Context, id uuid.UUID, req catalogapp.MoveCategoryRequest) (*catalogapp.CategoryResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*catalogapp.CategoryResponse, error)
	GetBySlug(ctx context.Context, slug, locale string) (*catalogapp.CategoryResponse, error)
	Tree(ctx context.Context, visibleOnly bool, locale string) ([]catalogapp.CategoryResponse, error)
}

// CategoryHandler handles category endpoints
type CategoryHandler struct {
	BaseHandler
	categories CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categories CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// Tree returns the visible category tree.
// @Summary      Get the category tree
// @Tags         categories
// @Produce      json
// @Param        locale query string false "Response locale, overrides Accept-Language"
// @Param        Accept-Language header string false "Preferred locales"
// @Success      200 {object} dto.Response{data=[]catalogapp.CategoryResponse}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/categories [get]
func (h *CategoryHandler) Tree(c *gin.Context) {
	h.tree(c, true)
}

// AdminTree returns the full category tree.
// @Summary      Get the full category tree
// @Tags         admin-categories
// @Produce      json
// @Success      200 {object} dto.Response{data=[]catalogapp.CategoryResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/categories [get]
func (h *CategoryHandler) AdminTree(c *gin.Context) {
	h.tree(c, false)
}

func (h *CategoryHandler) tree(c *gin.Context, visibleOnly bool) {
	tree, err := h.categories.Tree(c.Request.Context(), visibleOnly, h.locale(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if tree == nil {
		tree = []catalogapp.CategoryResponse{}
	}
	h.Success(c, tree)
}

// GetBySlug returns a visible category.
// @Summary      Get a category
// @Tags         categories
// @Produce      json
// @Param        slug path string true "Localized slug"
// @Param        locale query string false "Response locale, overrides Accept-Language"
// @Param        Accept-Language header string false "Preferred locales"
// @Success      200 {object} dto.Response{data=catalogapp.CategoryResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/categories/{slug} [get]
func (h *CategoryHandler) GetBySlug(c *gin.Context) {
	category, err := h.categories.GetBySlug(c.Request.Context(), c.Param("slug"), h.locale(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, category)
}

// AdminGet returns one category by ID.
// @Summary      Get a category by ID
// @Tags         admin-categories
// @Produce      json
// @Param        id path string true "Record ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.CategoryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/categories/{id} [get]
func (h *CategoryHandler) AdminGet(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	category, err := h.categories.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, category)
}

// Create creates a category, optionally under a parent.
// @Summary      Create a category
// @Tags         admin-categories
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateCategoryRequest true "Category details"
// @Success      201 {object} dto.Response{data=catalogapp.CategoryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req catalogapp.CreateCategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	category, err := h.categories.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, category)
}

// Update replaces category details.
// @Summary      Update a category
// @Tags         admin-categories
// @Accept       json
// @Produce      json
// @Param        id path string true "Record ID" format(uuid)
// @Param        request body catalogapp.UpdateCategoryRequest true "Category details"
// @Success      200 {object} dto.Response{data=catalogapp.CategoryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateCategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	category, err := h.categories.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, category)
}

// Move re-parents a category.
// @Summary      Move a category
// @Description  Re-parents a category; moving under its own subtree or past the depth limit is rejected
// @Tags         admin-categories
// @Accept       json
// @Produce      json
// @Param        id path string true "Record ID" format(uuid)
// @Param        request body catalogapp.MoveCategoryRequest true "New parent"
// @Success      200 {object} dto.Response{data=catalogapp.CategoryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/categories/{id}/move [post]
func (h *CategoryHandler) Move(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req catalogapp.MoveCategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	category, err := h.categories.Move(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, category)
}

// Delete removes an empty leaf category.
// @Summary      Delete a category
// @Description  Only leaf categories without products can be deleted
// @Tags         admin-categories
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
// @Router       /api/v1/admin/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.categories.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
