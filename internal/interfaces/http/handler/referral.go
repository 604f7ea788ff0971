package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	identityapp "github.com/statyba/storefront/internal/application/identity"
	referralapp "github.com/statyba/storefront/internal/application/referral"
)

// ReferralService reports referral progress
type ReferralService interface {
	Stats(ctx context.Context, referrerID uuid.UUID, code string) (*referralapp.StatsResponse, error)
}

// CustomerLookup loads the signed-in customer
type CustomerLookup interface {
	Me(ctx context.Context, customerID uuid.UUID) (*identityapp.CustomerResponse, error)
}

// ReferralHandler serves the customer's referral dashboard
type ReferralHandler struct {
	BaseHandler
	referrals ReferralService
	customers CustomerLookup
}

// NewReferralHandler creates a new ReferralHandler
func NewReferralHandler(referrals ReferralService, customers CustomerLookup) *ReferralHandler {
	return &ReferralHandler{referrals: referrals, customers: customers}
}

// Stats returns the customer's referral code with pending and completed counts.
// @Summary      Get referral progress
// @Tags         account
// @Produce      json
// @Success      200 {object} dto.Response{data=referralapp.StatsResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/account/referrals [get]
func (h *ReferralHandler) Stats(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	customer, err := h.customers.Me(ctx, customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	stats, err := h.referrals.Stats(ctx, customerID, customer.ReferralCode)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}
