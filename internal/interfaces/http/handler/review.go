package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/statyba/storefront/internal/application/catalog"
	reviewapp "github.com/statyba/storefront/internal/application/review"
	"github.com/statyba/storefront/internal/domain/shared"
)

// ReviewService is the product review use-case surface
type ReviewService interface {
	Submit(ctx context.Context, productID, customerID uuid.UUID, req reviewapp.SubmitRequest, locale string) (*reviewapp.Response, error)
	Edit(ctx context.Context, id, customerID uuid.UUID, req reviewapp.SubmitRequest) (*reviewapp.Response, error)
	ListPublic(ctx context.Context, productID uuid.UUID, query reviewapp.ListQuery) (shared.Paginated[reviewapp.PublicResponse], error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID, query reviewapp.ListQuery) (shared.Paginated[reviewapp.Response], error)
	List(ctx context.Context, query reviewapp.ListQuery) (shared.Paginated[reviewapp.Response], error)
	Summary(ctx context.Context, productID uuid.UUID) (*reviewapp.SummaryResponse, error)
	Approve(ctx context.Context, id, moderatorID uuid.UUID) (*reviewapp.Response, error)
	Reject(ctx context.Context, id, moderatorID uuid.UUID, req reviewapp.RejectRequest) (*reviewapp.Response, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductFinder resolves storefront product slugs
type ProductFinder interface {
	GetBySlug(ctx context.Context, slug, locale string) (*catalogapp.ProductResponse, error)
}

// ReviewHandler handles review endpoints
type ReviewHandler struct {
	BaseHandler
	reviews  ReviewService
	products ProductFinder
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviews ReviewService, products ProductFinder) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, products: products}
}

// product resolves the :slug path parameter, which may also be a product ID
func (h *ReviewHandler) product(c *gin.Context) (uuid.UUID, bool) {
	slug := c.Param("slug")
	if id, err := uuid.Parse(slug); err == nil {
		return id, true
	}
	product, err := h.products.GetBySlug(c.Request.Context(), slug, h.locale(c))
	if err != nil {
		h.HandleError(c, err)
		return uuid.Nil, false
	}
	return product.ID, true
}

type reviewListQuery struct {
	Status    string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
	ProductID string `form:"product_id" binding:"omitempty,uuid"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

func (q reviewListQuery) toApp() reviewapp.ListQuery {
	out := reviewapp.ListQuery{Status: q.Status, Page: q.Page, PageSize: q.PageSize}
	if id, err := uuid.Parse(q.ProductID); err == nil {
		out.ProductID = &id
	}
	return out
}

// ListPublic returns the approved reviews of a product.
// @Summary      List product reviews
// @Tags         reviews
// @Produce      json
// @Param        slug path string true "Product slug or ID"
// @Param        page query int false "Page number" minimum(1)
// @Param        page_size query int false "Page size" minimum(1) maximum(100)
// @Success      200 {object} dto.Response{data=[]reviewapp.PublicResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/products/{slug}/reviews [get]
func (h *ReviewHandler) ListPublic(c *gin.Context) {
	var query reviewListQuery
	if !h.bindQuery(c, &query) {
		return
	}
	productID, ok := h.product(c)
	if !ok {
		return
	}
	result, err := h.reviews.ListPublic(c.Request.Context(), productID, query.toApp())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page(&h.BaseHandler, c, result)
}

// Summary returns the rating summary of a product.
// @Summary      Get a product rating summary
// @Tags         reviews
// @Produce      json
// @Param        slug path string true "Product slug or ID"
// @Success      200 {object} dto.Response{data=reviewapp.SummaryResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/products/{slug}/reviews/summary [get]
func (h *ReviewHandler) Summary(c *gin.Context) {
	productID, ok := h.product(c)
	if !ok {
		return
	}
	summary, err := h.reviews.Summary(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Submit records the customer's review of a product, pending moderation.
// @Summary      Review a product
// @Description  Stored pending moderation; one review per customer and product
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Param        slug path string true "Product slug or ID"
// @Param        request body reviewapp.SubmitRequest true "Rating and text"
// @Success      201 {object} dto.Response{data=reviewapp.Response}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/products/{slug}/reviews [post]
func (h *ReviewHandler) Submit(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}
	var req reviewapp.SubmitRequest
	if !h.bindJSON(c, &req) {
		return
	}
	productID, ok := h.product(c)
	if !ok {
		return
	}
	review, err := h.reviews.Submit(c.Request.Context(), productID, customerID, req, h.locale(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, review)
}

// Edit rewrites one of the customer's reviews and sends it back to moderation.
// @Summary      Edit my review
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        id path string true "Review ID" format(uuid)
// @Param        request body reviewapp.SubmitRequest true "Rating and text"
// @Success      200 {object} dto.Response{data=reviewapp.Response}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/account/reviews/{id} [put]
func (h *ReviewHandler) Edit(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req reviewapp.SubmitRequest
	if !h.bindJSON(c, &req) {
		return
	}
	review, err := h.reviews.Edit(c.Request.Context(), id, customerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, review)
}

// MyReviews lists the customer's reviews in every status.
// @Summary      List my reviews
// @Tags         account
// @Produce      json
// @Param        status query string false "Review status" Enums(pending, approved, rejected)
// @Param        page query int false "Page number" minimum(1)
// @Param        page_size query int false "Page size" minimum(1) maximum(100)
// @Success      200 {object} dto.Response{data=[]reviewapp.Response,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/account/reviews [get]
func (h *ReviewHandler) MyReviews(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}
	var query reviewListQuery
	if !h.bindQuery(c, &query) {
		return
	}
	result, err := h.reviews.ListForCustomer(c.Request.Context(), customerID, query.toApp())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page(&h.BaseHandler, c, result)
}

// List returns the moderation queue.
// @Summary      List reviews for moderation
// @Tags         admin-reviews
// @Produce      json
// @Param        status query string false "Review status" Enums(pending, approved, rejected)
// @Param        product_id query string false "Product ID" format(uuid)
// @Param        page query int false "Page number" minimum(1)
// @Param        page_size query int false "Page size" minimum(1) maximum(100)
// @Success      200 {object} dto.Response{data=[]reviewapp.Response,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/reviews [get]
func (h *ReviewHandler) List(c *gin.Context) {
	var query reviewListQuery
	if !h.bindQuery(c, &query) {
		return
	}
	result, err := h.reviews.List(c.Request.Context(), query.toApp())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page(&h.BaseHandler, c, result)
}

// Approve publishes a review.
// @Summary      Approve a review
// @Tags         admin-reviews
// @Produce      json
// @Param        id path string true "Review ID" format(uuid)
// @Success      200 {object} dto.Response{data=reviewapp.Response}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/reviews/{id}/approve [post]
func (h *ReviewHandler) Approve(c *gin.Context) {
	moderatorID, ok := h.customerID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	review, err := h.reviews.Approve(c.Request.Context(), id, moderatorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, review)
}

// Reject hides a review with a reason.
// @Summary      Reject a review
// @Tags         admin-reviews
// @Accept       json
// @Produce      json
// @Param        id path string true "Review ID" format(uuid)
// @Param        request body reviewapp.RejectRequest true "Rejection reason"
// @Success      200 {object} dto.Response{data=reviewapp.Response}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/reviews/{id}/reject [post]
func (h *ReviewHandler) Reject(c *gin.Context) {
	moderatorID, ok := h.customerID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req reviewapp.RejectRequest
	if !h.bindJSON(c, &req) {
		return
	}
	review, err := h.reviews.Reject(c.Request.Context(), id, moderatorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, review)
}

// Delete removes a review.
// @Summary      Delete a review
// @Tags         admin-reviews
// @Produce      json
// @Param        id path string true "Review ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/reviews/{id} [delete]
func (h *ReviewHandler) Delete(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.reviews.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
