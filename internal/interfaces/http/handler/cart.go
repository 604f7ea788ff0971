package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	cartapp "github.com/statyba/storefront/internal/application/cart"
	"github.com/statyba/storefront/internal/interfaces/http/middleware"
)

// CartService is the shopping cart use-case surface
type CartService interface {
	Get(ctx context.Context, owner cartapp.Owner, locale string) (*cartapp.View, error)
	AddItem(ctx context.Context, owner cartapp.Owner, req cartapp.AddItemRequest, locale string) (*cartapp.View, error)
	UpdateItem(ctx context.Context, owner cartapp.Owner, productID uuid.UUID, req cartapp.UpdateItemRequest, locale string) (*cartapp.View, error)
	RemoveItem(ctx context.Context, owner cartapp.Owner, productID uuid.UUID, locale string) (*cartapp.View, error)
	Clear(ctx context.Context, owner cartapp.Owner) error
}

// CartCookie configures how the guest cart token travels
type CartCookie struct {
	Name string
	TTL  time.Duration
}

// CartHandler handles cart endpoints for guests and customers
type CartHandler struct {
	BaseHandler
	carts  CartService
	cookie CartCookie
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(carts CartService, cookie CartCookie) *CartHandler {
	if cookie.Name == "" {
		cookie.Name = middleware.DefaultCartCookie
	}
	if cookie.TTL <= 0 {
		cookie.TTL = cartapp.DefaultTTL
	}
	return &CartHandler{carts: carts, cookie: cookie}
}

// cartOwner identifies the caller's cart from the token and the session
func cartOwner(c *gin.Context, cookieName string) cartapp.Owner {
	return cartapp.Owner{
		Token:      middleware.CartToken(c, cookieName),
		CustomerID: optionalCustomerID(c),
	}
}

func (h *CartHandler) respond(c *gin.Context, view *cartapp.View) {
	if view.Token != "" {
		middleware.SetCartToken(c, h.cookie.Name, view.Token, h.cookie.TTL)
	}
	h.Success(c, view)
}

// Get returns the priced cart; callers without one see an empty cart.
// @Summary      Get the cart
// @Tags         cart
// @Produce      json
// @Param        X-Cart-Token header string false "Guest cart token"
// @Param        locale query string false "Response locale, overrides Accept-Language"
// @Param        Accept-Language header string false "Preferred locales"
// @Success      200 {object} dto.Response{data=cartapp.View}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	view, err := h.carts.Get(c.Request.Context(), cartOwner(c, h.cookie.Name), h.locale(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.respond(c, view)
}

// AddItem adds units of a product, creating the cart when needed.
// @Summary      Add a cart item
// @Description  Creates the cart when needed; the token is returned in X-Cart-Token and the cart cookie
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        X-Cart-Token header string false "Guest cart token"
// @Param        request body cartapp.AddItemRequest true "Product and quantity"
// @Param        locale query string false "Response locale, overrides Accept-Language"
// @Param        Accept-Language header string false "Preferred locales"
// @Success      200 {object} dto.Response{data=cartapp.View}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	var req cartapp.AddItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	view, err := h.carts.AddItem(c.Request.Context(), cartOwner(c, h.cookie.Name), req, h.locale(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.respond(c, view)
}

// UpdateItem sets the quantity of a line; zero removes it.
// @Summary      Set a cart item quantity
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        X-Cart-Token header string false "Guest cart token"
// @Param        productId path string true "Product ID" format(uuid)
// @Param        request body cartapp.UpdateItemRequest true "New quantity, zero removes the line"
// @Param        locale query string false "Response locale, overrides Accept-Language"
// @Param        Accept-Language header string false "Preferred locales"
// @Success      200 {object} dto.Response{data=cartapp.View}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/cart/items/{productId} [patch]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	productID, ok := h.uuidParam(c, "productId")
	if !ok {
		return
	}
	var req cartapp.UpdateItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	view, err := h.carts.UpdateItem(c.Request.Context(), cartOwner(c, h.cookie.Name), productID, req, h.locale(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.respond(c, view)
}

// RemoveItem drops a line.
// @Summary      Remove a cart item
// @Tags         cart
// @Produce      json
// @Param        X-Cart-Token header string false "Guest cart token"
// @Param        productId path string true "Product ID" format(uuid)
// @Param        locale query string false "Response locale, overrides Accept-Language"
// @Param        Accept-Language header string false "Preferred locales"
// @Success      200 {object} dto.Response{data=cartapp.View}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/cart/items/{productId} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	productID, ok := h.uuidParam(c, "productId")
	if !ok {
		return
	}
	view, err := h.carts.RemoveItem(c.Request.Context(), cartOwner(c, h.cookie.Name), productID, h.locale(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.respond(c, view)
}

// Clear empties the cart.
// @Summary      Empty the cart
// @Tags         cart
// @Produce      json
// @Param        X-Cart-Token header string false "Guest cart token"
// @Success      204
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/cart [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.carts.Clear(c.Request.Context(), cartOwner(c, h.cookie.Name)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
