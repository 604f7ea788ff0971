package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	identityapp "github.com/statyba/storefront/internal/application/identity"
	referralapp "github.com/statyba/storefront/internal/application/referral"
	"github.com/statyba/storefront/internal/domain/shared"
	"github.com/statyba/storefront/internal/infrastructure/auth"
	"github.com/statyba/storefront/internal/interfaces/http/dto"
	"github.com/statyba/storefront/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockAccountService struct {
	mock.Mock
}

func (m *mockAccountService) Register(ctx context.Context, req identityapp.RegisterRequest) (*identityapp.AuthResult, error) {
	return ptrResult[identityapp.AuthResult](m.Called(ctx, req))
}

func (m *mockAccountService) Login(ctx context.Context, req identityapp.LoginRequest) (*identityapp.AuthResult, error) {
	return ptrResult[identityapp.AuthResult](m.Called(ctx, req))
}

func (m *mockAccountService) Refresh(ctx context.Context, req identityapp.RefreshRequest) (*identityapp.TokenResponse, error) {
	return ptrResult[identityapp.TokenResponse](m.Called(ctx, req))
}

func (m *mockAccountService) Logout(ctx context.Context, in identityapp.LogoutInput) error {
	return m.Called(ctx, in).Error(0)
}

func (m *mockAccountService) Me(ctx context.Context, customerID uuid.UUID) (*identityapp.CustomerResponse, error) {
	return ptrResult[identityapp.CustomerResponse](m.Called(ctx, customerID))
}

func (m *mockAccountService) UpdateProfile(ctx context.Context, customerID uuid.UUID, req identityapp.UpdateProfileRequest) (*identityapp.CustomerResponse, error) {
	return ptrResult[identityapp.CustomerResponse](m.Called(ctx, customerID, req))
}

func (m *mockAccountService) ChangePassword(ctx context.Context, customerID uuid.UUID, req identityapp.ChangePasswordRequest) (*identityapp.TokenResponse, error) {
	return ptrResult[identityapp.TokenResponse](m.Called(ctx, customerID, req))
}

func authResult(customerID uuid.UUID) *identityapp.AuthResult {
	return &identityapp.AuthResult{
		Customer: identityapp.CustomerResponse{ID: customerID, Email: "ona@example.com", Role: "customer", ReferralCode: "ONA7K2"},
		Tokens:   identityapp.TokenResponse{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer"},
	}
}

func setupAuthRouter(accounts *mockAccountService, carts CartMerger, customerID *uuid.UUID) *gin.Engine {
	h := NewAuthHandler(accounts, carts, CartCookie{TTL: time.Hour})
	r := newTestRouter(customerID)
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.Refresh)
	r.POST("/auth/logout", h.Logout)
	r.GET("/account", h.Me)
	r.PATCH("/account", h.UpdateProfile)
	r.POST("/account/password", h.ChangePassword)
	return r
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("defaults the locale to the negotiated one", func(t *testing.T) {
		id := uuid.New()
		accounts := new(mockAccountService)
		accounts.On("Register", mock.Anything, mock.MatchedBy(func(req identityapp.RegisterRequest) bool {
			return req.Email == "ona@example.com" && req.Locale == "en" && req.ReferralCode == "JON4S1"
		})).Return(authResult(id), nil)

		w := perform(setupAuthRouter(accounts, nil, nil), http.MethodPost, "/auth/register",
			`{"email":"ona@example.com","password":"correct horse","referral_code":"JON4S1"}`)

		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		got := decodeData[identityapp.AuthResult](t, w)
		assert.Equal(t, id, got.Customer.ID)
		assert.Equal(t, "access", got.Tokens.AccessToken)
		accounts.AssertExpectations(t)
	})

	t.Run("validation", func(t *testing.T) {
		accounts := new(mockAccountService)
		w := perform(setupAuthRouter(accounts, nil, nil), http.MethodPost, "/auth/register", `{"email":"nope","password":"short","locale":"??"}`)

		assertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
		assert.Len(t, decodeResponse(t, w).Error.Details, 3)
		accounts.AssertNotCalled(t, "Register")
	})

	t.Run("email taken", func(t *testing.T) {
		accounts := new(mockAccountService)
		accounts.On("Register", mock.Anything, mock.Anything).
			Return(nil, shared.NewDomainError("EMAIL_TAKEN", "An account with this email already exists"))

		w := perform(setupAuthRouter(accounts, nil, nil), http.MethodPost, "/auth/register",
			`{"email":"ona@example.com","password":"correct horse"}`)

		assertErrorCode(t, w, http.StatusConflict, "EMAIL_TAKEN")
	})
}

func TestAuthHandler_Login(t *testing.T) {
	id := uuid.New()
	body := `{"email":"ona@example.com","password":"correct horse"}`

	t.Run("merges the guest cart", func(t *testing.T) {
		accounts := new(mockAccountService)
		accounts.On("Login", mock.Anything, identityapp.LoginRequest{Email: "ona@example.com", Password: "correct horse"}).
			Return(authResult(id), nil)
		carts := new(mockCartService)
		carts.On("MergeGuest", mock.Anything, "guest-tok", id).Return("customer-tok", nil)

		w := perform(setupAuthRouter(accounts, carts, nil), http.MethodPost, "/auth/login", body,
			middleware.CartTokenHeader, "guest-tok")

		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "customer-tok", w.Header().Get(middleware.CartTokenHeader))
		carts.AssertExpectations(t)
	})

	t.Run("a failed merge does not fail the login", func(t *testing.T) {
		accounts := new(mockAccountService)
		accounts.On("Login", mock.Anything, mock.Anything).Return(authResult(id), nil)
		carts := new(mockCartService)
		carts.On("MergeGuest", mock.Anything, "guest-tok", id).Return("", errors.New("redis down"))

		w := perform(setupAuthRouter(accounts, carts, nil), http.MethodPost, "/auth/login", body,
			"Cookie", "cart_token=guest-tok")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get(middleware.CartTokenHeader))
	})

	t.Run("no guest cart skips the merge", func(t *testing.T) {
		accounts := new(mockAccountService)
		accounts.On("Login", mock.Anything, mock.Anything).Return(authResult(id), nil)
		carts := new(mockCartService)

		w := perform(setupAuthRouter(accounts, carts, nil), http.MethodPost, "/auth/login", body)

		assert.Equal(t, http.StatusOK, w.Code)
		carts.AssertNotCalled(t, "MergeGuest")
	})

	t.Run("bad credentials", func(t *testing.T) {
		accounts := new(mockAccountService)
		accounts.On("Login", mock.Anything, mock.Anything).
			Return(nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password"))

		w := perform(setupAuthRouter(accounts, nil, nil), http.MethodPost, "/auth/login", body)

		assertErrorCode(t, w, http.StatusUnauthorized, dto.ErrCodeUnauthorized)
	})
}

func TestAuthHandler_Refresh(t *testing.T) {
	accounts := new(mockAccountService)
	accounts.On("Refresh", mock.Anything, identityapp.RefreshRequest{RefreshToken: "old"}).
		Return(nil, shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired"))

	r := setupAuthRouter(accounts, nil, nil)
	assertErrorCode(t, perform(r, http.MethodPost, "/auth/refresh", `{"refresh_token":"old"}`), http.StatusUnauthorized, dto.ErrCodeTokenExpired)
	assertErrorCode(t, perform(r, http.MethodPost, "/auth/refresh", `{}`), http.StatusBadRequest, dto.ErrCodeValidation)
}

func TestAuthHandler_Logout(t *testing.T) {
	id := uuid.New()
	expires := time.Now().Add(10 * time.Minute).Truncate(time.Second)

	accounts := new(mockAccountService)
	accounts.On("Logout", mock.Anything, mock.MatchedBy(func(in identityapp.LogoutInput) bool {
		return in.CustomerID == id && in.TokenJTI == "jti-1" && in.ExpiresAt.Equal(expires)
	})).Return(nil)

	r := setupAuthRouter(accounts, nil, &id)
	h := NewAuthHandler(accounts, nil, CartCookie{})
	r.POST("/test/logout", func(c *gin.Context) {
		c.Set(middleware.JWTClaimsKey, &auth.Claims{
			RegisteredClaims: jwt.RegisteredClaims{ID: "jti-1", ExpiresAt: jwt.NewNumericDate(expires)},
			CustomerID:       id.String(),
		})
		h.Logout(c)
	})

	w := perform(r, http.MethodPost, "/test/logout", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	accounts.AssertExpectations(t)

	w = perform(setupAuthRouter(accounts, nil, nil), http.MethodPost, "/auth/logout", nil)
	assertErrorCode(t, w, http.StatusUnauthorized, dto.ErrCodeUnauthorized)
}

func TestAuthHandler_Account(t *testing.T) {
	id := uuid.New()
	accounts := new(mockAccountService)
	accounts.On("Me", mock.Anything, id).Return(&authResult(id).Customer, nil)
	accounts.On("UpdateProfile", mock.Anything, id, identityapp.UpdateProfileRequest{FirstName: "Ona", Locale: "lt"}).
		Return(&identityapp.CustomerResponse{ID: id, FirstName: "Ona", PreferredLocale: "lt"}, nil)
	accounts.On("ChangePassword", mock.Anything, id, identityapp.ChangePasswordRequest{CurrentPassword: "correct horse", NewPassword: "battery staple"}).
		Return(&identityapp.TokenResponse{AccessToken: "new-access"}, nil)

	r := setupAuthRouter(accounts, nil, &id)

	w := perform(r, http.MethodGet, "/account", nil)
	assert.Equal(t, "ONA7K2", decodeData[identityapp.CustomerResponse](t, w).ReferralCode)

	w = perform(r, http.MethodPatch, "/account", `{"first_name":"Ona","locale":"lt"}`)
	assert.Equal(t, "lt", decodeData[identityapp.CustomerResponse](t, w).PreferredLocale)

	w = perform(r, http.MethodPost, "/account/password", `{"current_password":"correct horse","new_password":"battery staple"}`)
	assert.Equal(t, "new-access", decodeData[identityapp.TokenResponse](t, w).AccessToken)

	w = perform(r, http.MethodPost, "/account/password", `{"current_password":"correct horse","new_password":"short"}`)
	assertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)

	accounts.AssertExpectations(t)
}

type mockReferralService struct {
	mock.Mock
}

func (m *mockReferralService) Stats(ctx context.Context, referrerID uuid.UUID, code string) (*referralapp.StatsResponse, error) {
	return ptrResult[referralapp.StatsResponse](m.Called(ctx, referrerID, code))
}

func TestReferralHandler_Stats(t *testing.T) {
	id := uuid.New()
	accounts := new(mockAccountService)
	accounts.On("Me", mock.Anything, id).Return(&authResult(id).Customer, nil)
	referrals := new(mockReferralService)
	referrals.On("Stats", mock.Anything, id, "ONA7K2").Return(&referralapp.StatsResponse{
		Code: "ONA7K2", Total: 3, Pending: 1, Completed: 2, TotalRewards: decimal.NewFromInt(10), Currency: "EUR",
	}, nil)

	h := NewReferralHandler(referrals, accounts)
	r := newTestRouter(&id)
	r.GET("/account/referrals", h.Stats)

	w := perform(r, http.MethodGet, "/account/referrals", nil)

	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	stats := decodeData[referralapp.StatsResponse](t, w)
	assert.Equal(t, 2, stats.Completed)
	assert.True(t, stats.TotalRewards.Equal(decimal.NewFromInt(10)))
	referrals.AssertExpectations(t)
}
