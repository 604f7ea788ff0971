package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Storefront request headers
const (
	CartTokenHeader      = "X-Cart-Token"
	IdempotencyKeyHeader = "Idempotency-Key"
	DefaultCartCookie    = "cart_token"
	maxCartTokenLength   = 64
)

// CartToken returns the guest cart token presented by the client, header first
func CartToken(c *gin.Context, cookieName string) string {
	token := strings.TrimSpace(c.GetHeader(CartTokenHeader))
	if token == "" {
		token, _ = c.Cookie(cookieOrDefault(cookieName))
	}
	if len(token) > maxCartTokenLength {
		return ""
	}
	return token
}

// SetCartToken echoes the cart token in the response header and cookie
func SetCartToken(c *gin.Context, cookieName, token string, ttl time.Duration) {
	c.Header(CartTokenHeader, token)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookieOrDefault(cookieName), token, int(ttl.Seconds()), "/", "", c.Request.TLS != nil, true)
}

// ClearCartToken expires the cart cookie
func ClearCartToken(c *gin.Context, cookieName string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookieOrDefault(cookieName), "", -1, "/", "", c.Request.TLS != nil, true)
}

// IdempotencyKey returns the trimmed Idempotency-Key header
func IdempotencyKey(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
}

func cookieOrDefault(name string) string {
	if name == "" {
		return DefaultCartCookie
	}
	return name
}
