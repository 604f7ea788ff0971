package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	identityapp "github.com/statyba/storefront/internal/application/identity"
	"github.com/statyba/storefront/internal/infrastructure/logger"
	"github.com/statyba/storefront/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// AccountService is the customer identity use-case surface
type AccountService interface {
	Register(ctx context.Context, req identityapp.RegisterRequest) (*identityapp.AuthResult, error)
	Login(ctx context.Context, req identityapp.LoginRequest) (*identityapp.AuthResult, error)
	Refresh(ctx context.Context, req identityapp.RefreshRequest) (*identityapp.TokenResponse, error)
	Logout(ctx context.Context, in identityapp.LogoutInput) error
	Me(ctx context.Context, customerID uuid.UUID) (*identityapp.CustomerResponse, error)
	UpdateProfile(ctx context.Context, customerID uuid.UUID, req identityapp.UpdateProfileRequest) (*identityapp.CustomerResponse, error)
	ChangePassword(ctx context.Context, customerID uuid.UUID, req identityapp.ChangePasswordRequest) (*identityapp.TokenResponse, error)
}

// CartMerger moves a guest cart onto a customer's cart
type CartMerger interface {
	MergeGuest(ctx context.Context, guestToken string, customerID uuid.UUID) (string, error)
}

// AuthHandler handles registration, sessions and the customer profile
type AuthHandler struct {
	BaseHandler
	accounts AccountService
	carts    CartMerger
	cookie   CartCookie
}

// NewAuthHandler creates a new AuthHandler. carts may be nil, in which case
// guest carts are left alone on sign-in.
func NewAuthHandler(accounts AccountService, carts CartMerger, cookie CartCookie) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = middleware.DefaultCartCookie
	}
	return &AuthHandler{accounts: accounts, carts: carts, cookie: cookie}
}

// Register creates a customer account and signs it in.
// @Summary      Register a customer
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        X-Cart-Token header string false "Guest cart token"
// @Param        request body identityapp.RegisterRequest true "Account details"
// @Success      201 {object} dto.Response{data=identityapp.AuthResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req identityapp.RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.Locale == "" {
		req.Locale = h.locale(c)
	}
	result, err := h.accounts.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.adoptGuestCart(c, result.Customer.ID)
	h.Created(c, result)
}

// Login exchanges credentials for a token pair.
// @Summary      Sign in
// @Description  A guest cart named by X-Cart-Token is merged into the customer's cart
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        X-Cart-Token header string false "Guest cart token"
// @Param        request body identityapp.LoginRequest true "Credentials"
// @Success      200 {object} dto.Response{data=identityapp.AuthResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req identityapp.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.accounts.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.adoptGuestCart(c, result.Customer.ID)
	h.Success(c, result)
}

// adoptGuestCart merges the caller's guest cart into the customer's. A failed
// merge never fails the sign-in.
func (h *AuthHandler) adoptGuestCart(c *gin.Context, customerID uuid.UUID) {
	if h.carts == nil {
		return
	}
	guest := middleware.CartToken(c, h.cookie.Name)
	if guest == "" {
		return
	}
	token, err := h.carts.MergeGuest(c.Request.Context(), guest, customerID)
	if err != nil {
		logger.L(c.Request.Context()).Warn("failed to merge guest cart",
			zap.String("customer_id", customerID.String()),
			zap.Error(err),
		)
		return
	}
	if token != "" {
		middleware.SetCartToken(c, h.cookie.Name, token, h.cookie.TTL)
	}
}

// Refresh rotates a refresh token.
// @Summary      Refresh tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identityapp.RefreshRequest true "Refresh token"
// @Success      200 {object} dto.Response{data=identityapp.TokenResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req identityapp.RefreshRequest
	if !h.bindJSON(c, &req) {
		return
	}
	tokens, err := h.accounts.Refresh(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tokens)
}

// Logout revokes the presented access token.
// @Summary      Sign out
// @Tags         auth
// @Produce      json
// @Success      204
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}
	in := identityapp.LogoutInput{CustomerID: customerID}
	if claims := middleware.GetJWTClaims(c); claims != nil {
		in.TokenJTI = claims.ID
		if claims.ExpiresAt != nil {
			in.ExpiresAt = claims.ExpiresAt.Time
		}
	}
	if err := h.accounts.Logout(c.Request.Context(), in); err != nil {
		h.HandleError(c, err)
		return
	}
	middleware.ClearCartToken(c, h.cookie.Name)
	h.NoContent(c)
}

// Me returns the signed-in customer.
// @Summary      Get the signed-in customer
// @Tags         account
// @Produce      json
// @Success      200 {object} dto.Response{data=identityapp.CustomerResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/account [get]
func (h *AuthHandler) Me(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}
	customer, err := h.accounts.Me(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// UpdateProfile changes names, phone and preferred locale.
// @Summary      Update the profile
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        request body identityapp.UpdateProfileRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=identityapp.CustomerResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/account [patch]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}
	var req identityapp.UpdateProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}
	customer, err := h.accounts.UpdateProfile(c.Request.Context(), customerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// ChangePassword replaces the password and issues a fresh token pair.
// @Summary      Change the password
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        request body identityapp.ChangePasswordRequest true "Current and new password"
// @Success      200 {object} dto.Response{data=identityapp.TokenResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/account/password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}
	var req identityapp.ChangePasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}
	tokens, err := h.accounts.ChangePassword(c.Request.Context(), customerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tokens)
}
