package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	cartapp "github.com/statyba/storefront/internal/application/cart"
	orderapp "github.com/statyba/storefront/internal/application/order"
	"github.com/statyba/storefront/internal/interfaces/http/middleware"
)

// CheckoutService turns a cart into an order
type CheckoutService interface {
	Checkout(ctx context.Context, owner cartapp.Owner, req orderapp.CheckoutRequest, locale, idempotencyKey string) (*orderapp.Response, error)
}

// CheckoutHandler handles order placement
type CheckoutHandler struct {
	BaseHandler
	checkout   CheckoutService
	cookieName string
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkout CheckoutService, cookieName string) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, cookieName: cookieName}
}

// Checkout places an order from the caller's cart. Retrying with the same
// Idempotency-Key returns the order placed by the first attempt.
// @Summary      Place an order
// @Description  Turns the caller's cart into an order and reserves stock for every line
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        X-Cart-Token header string false "Guest cart token"
// @Param        Idempotency-Key header string false "Replays return the first order"
// @Param        request body orderapp.CheckoutRequest true "Contact and addresses"
// @Param        locale query string false "Response locale, overrides Accept-Language"
// @Param        Accept-Language header string false "Preferred locales"
// @Success      201 {object} dto.Response{data=orderapp.Response}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/checkout [post]
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req orderapp.CheckoutRequest
	if !h.bindJSON(c, &req) {
		return
	}
	key := middleware.IdempotencyKey(c)
	if len(key) > 128 {
		h.BadRequest(c, "Idempotency-Key must be at most 128 characters")
		return
	}

	order, err := h.checkout.Checkout(c.Request.Context(), cartOwner(c, h.cookieName), req, h.locale(c), key)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	middleware.ClearCartToken(c, h.cookieName)
	h.Created(c, order)
}
