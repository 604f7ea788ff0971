package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/infrastructure/auth"
	"github.com/statyba/storefront/internal/infrastructure/logger"
	"github.com/statyba/storefront/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey     = "jwt_claims"
	JWTCustomerIDKey = "jwt_customer_id"
	JWTRoleKey       = "jwt_role"
	JWTTokenIDKey    = "jwt_jti"
	AuthHeaderKey    = "Authorization"
	BearerPrefix     = "Bearer "
)

// RoleAdmin is the role allowed into the back office
const RoleAdmin = "admin"

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	JWTService *auth.JWTService
	// Revocations is optional; when set, logged-out tokens are rejected
	Revocations auth.RevocationList
	// Optional callback if token is invalid (default: return 401)
	OnError func(c *gin.Context, err error)
	Logger  *zap.Logger
}

// JWTAuth requires a valid access token
func JWTAuth(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := authenticate(c, cfg)
		if err != nil {
			handleAuthError(c, cfg, err)
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// OptionalJWTAuth attaches the customer when a valid token is presented and
// lets anonymous requests through. A presented but invalid token is ignored,
// so a guest with a stale token keeps browsing.
func OptionalJWTAuth(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(AuthHeaderKey) == "" {
			c.Next()
			return
		}
		claims, err := authenticate(c, cfg)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Debug("Ignoring invalid optional token", zap.Error(err))
			}
			c.Next()
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// RequireRole rejects authenticated customers without one of roles. It must
// run after JWTAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(JWTRoleKey)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden,
			dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "Insufficient permissions", GetRequestID(c)))
	}
}

func authenticate(c *gin.Context, cfg JWTMiddlewareConfig) (*auth.Claims, error) {
	header := c.GetHeader(AuthHeaderKey)
	if header == "" {
		return nil, errMissingToken
	}
	tokenString, ok := strings.CutPrefix(header, BearerPrefix)
	if !ok || tokenString == "" {
		return nil, auth.ErrInvalidToken
	}

	claims, err := cfg.JWTService.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, err
	}

	if err := auth.Check(c.Request.Context(), cfg.Revocations, claims); err != nil {
		if errors.Is(err, auth.ErrTokenRevoked) {
			return nil, err
		}
		// revocation store unreachable: fail open
		if cfg.Logger != nil {
			cfg.Logger.Error("Failed to check token revocation",
				zap.String("jti", claims.ID),
				zap.Error(err))
		}
	}
	return claims, nil
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(JWTClaimsKey, claims)
	c.Set(JWTCustomerIDKey, claims.CustomerID)
	c.Set(JWTRoleKey, claims.Role)
	c.Set(JWTTokenIDKey, claims.ID)
	c.Request = c.Request.WithContext(logger.WithCustomerID(c.Request.Context(), claims.CustomerID))
}

var errMissingToken = errors.New("missing authorization header")

// handleAuthError handles authentication errors
func handleAuthError(c *gin.Context, cfg JWTMiddlewareConfig, err error) {
	if cfg.OnError != nil {
		cfg.OnError(c, err)
		c.Abort()
		return
	}
	if cfg.Logger != nil {
		cfg.Logger.Warn("JWT authentication failed",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
	}

	code, message := dto.ErrCodeUnauthorized, "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, message = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenRevoked):
		code, message = dto.ErrCodeTokenInvalid, "Token has been revoked"
	case errors.Is(err, auth.ErrInvalidTokenType):
		code, message = dto.ErrCodeTokenInvalid, "Invalid token type"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		code, message = dto.ErrCodeTokenInvalid, "Token is not yet valid"
	case errors.Is(err, errMissingToken):
	default:
		code, message = dto.ErrCodeTokenInvalid, "Invalid token"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetCustomerID returns the authenticated customer, if any
func GetCustomerID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetString(JWTCustomerIDKey)
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
