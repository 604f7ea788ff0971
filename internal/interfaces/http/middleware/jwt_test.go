package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/infrastructure/auth"
	"github.com/statyba/storefront/internal/infrastructure/config"
	"github.com/statyba/storefront/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-at-least-32-chars"

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService(t *testing.T) *auth.JWTService {
	t.Helper()
	svc, err := auth.NewJWTService(config.JWTConfig{
		Secret:                 testSecret,
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "storefront-test",
	})
	require.NoError(t, err)
	return svc
}

func newTestTokenPair(t *testing.T, svc *auth.JWTService, role string) (*auth.TokenPair, uuid.UUID) {
	t.Helper()
	id := uuid.New()
	pair, err := svc.GenerateTokenPair(auth.Subject{CustomerID: id, Email: "ona@example.com", Role: role})
	require.NoError(t, err)
	return pair, id
}

func serveWithToken(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if token != "" {
		req.Header.Set(AuthHeaderKey, token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func TestJWTAuth_ValidToken(t *testing.T) {
	svc := newTestJWTService(t)
	pair, customerID := newTestTokenPair(t, svc, "customer")

	router := gin.New()
	router.Use(JWTAuth(JWTMiddlewareConfig{JWTService: svc}))
	router.GET("/test", func(c *gin.Context) {
		id, ok := GetCustomerID(c)
		assert.True(t, ok)
		assert.Equal(t, customerID, id)
		assert.Equal(t, "customer", c.GetString(JWTRoleKey))
		assert.NotEmpty(t, c.GetString(JWTTokenIDKey))
		assert.NotNil(t, GetJWTClaims(c))
		c.Status(http.StatusOK)
	})

	rec := serveWithToken(router, BearerPrefix+pair.AccessToken)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTAuth_Rejections(t *testing.T) {
	svc := newTestJWTService(t)
	pair, _ := newTestTokenPair(t, svc, "customer")

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "storefront-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		CustomerID: uuid.NewString(),
		TokenType:  auth.TokenTypeAccess,
	})
	expiredToken, err := expired.SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", dto.ErrCodeUnauthorized},
		{"wrong scheme", "Basic abc", dto.ErrCodeTokenInvalid},
		{"empty bearer", "Bearer ", dto.ErrCodeTokenInvalid},
		{"garbage token", "Bearer not.a.jwt", dto.ErrCodeTokenInvalid},
		{"refresh token as access", BearerPrefix + pair.RefreshToken, dto.ErrCodeTokenInvalid},
		{"expired", BearerPrefix + expiredToken, dto.ErrCodeTokenExpired},
	}

	router := gin.New()
	router.Use(JWTAuth(JWTMiddlewareConfig{JWTService: svc}))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveWithToken(router, tt.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tt.code, errorCode(t, rec))
		})
	}
}

func TestJWTAuth_RevokedToken(t *testing.T) {
	svc := newTestJWTService(t)
	pair, _ := newTestTokenPair(t, svc, "customer")
	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	revocations := auth.NewInMemoryRevocationList()
	require.NoError(t, revocations.Revoke(context.Background(), claims.ID, time.Hour))

	router := gin.New()
	router.Use(JWTAuth(JWTMiddlewareConfig{JWTService: svc, Revocations: revocations}))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := serveWithToken(router, BearerPrefix+pair.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, dto.ErrCodeTokenInvalid, errorCode(t, rec))
}

type brokenRevocations struct{ auth.RevocationList }

func (brokenRevocations) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func TestJWTAuth_RevocationStoreDownFailsOpen(t *testing.T) {
	svc := newTestJWTService(t)
	pair, _ := newTestTokenPair(t, svc, "customer")

	router := gin.New()
	router.Use(JWTAuth(JWTMiddlewareConfig{JWTService: svc, Revocations: brokenRevocations{}}))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := serveWithToken(router, BearerPrefix+pair.AccessToken)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTAuth_CustomOnError(t *testing.T) {
	svc := newTestJWTService(t)
	var got error

	router := gin.New()
	router.Use(JWTAuth(JWTMiddlewareConfig{
		JWTService: svc,
		OnError: func(c *gin.Context, err error) {
			got = err
			c.JSON(http.StatusTeapot, gin.H{"custom": true})
		},
	}))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := serveWithToken(router, "Bearer bad")
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.ErrorIs(t, got, auth.ErrInvalidToken)
}

func TestOptionalJWTAuth(t *testing.T) {
	svc := newTestJWTService(t)
	pair, customerID := newTestTokenPair(t, svc, "customer")

	router := gin.New()
	router.Use(OptionalJWTAuth(JWTMiddlewareConfig{JWTService: svc}))
	router.GET("/test", func(c *gin.Context) {
		id, ok := GetCustomerID(c)
		if !ok {
			c.String(http.StatusOK, "guest")
			return
		}
		c.String(http.StatusOK, id.String())
	})

	t.Run("anonymous", func(t *testing.T) {
		rec := serveWithToken(router, "")
		assert.Equal(t, "guest", rec.Body.String())
	})
	t.Run("valid token", func(t *testing.T) {
		rec := serveWithToken(router, BearerPrefix+pair.AccessToken)
		assert.Equal(t, customerID.String(), rec.Body.String())
	})
	t.Run("invalid token is ignored", func(t *testing.T) {
		rec := serveWithToken(router, "Bearer nope")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "guest", rec.Body.String())
	})
}

func TestRequireRole(t *testing.T) {
	svc := newTestJWTService(t)
	admin, _ := newTestTokenPair(t, svc, RoleAdmin)
	shopper, _ := newTestTokenPair(t, svc, "customer")

	router := gin.New()
	router.Use(JWTAuth(JWTMiddlewareConfig{JWTService: svc}), RequireRole(RoleAdmin))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serveWithToken(router, BearerPrefix+admin.AccessToken).Code)

	rec := serveWithToken(router, BearerPrefix+shopper.AccessToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, dto.ErrCodeForbidden, errorCode(t, rec))
}

func TestGetCustomerID_NotSet(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := GetCustomerID(c)
	assert.False(t, ok)
	assert.Nil(t, GetJWTClaims(c))
}
