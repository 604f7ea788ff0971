package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/statyba/storefront/internal/domain/localization"
	"github.com/statyba/storefront/internal/infrastructure/logger"
)

// LocaleKey is the gin context key holding the negotiated locale
const LocaleKey = "locale"

// LocaleQueryParam overrides negotiation when it names a supported locale
const LocaleQueryParam = "locale"

// LocaleConfig configures locale negotiation
type LocaleConfig struct {
	Locales *localization.Locales
	// Preference returns the authenticated customer's preferred locale, if any.
	// It runs after the auth middleware of the route group.
	Preference func(c *gin.Context) string
}

// Locale negotiates the response locale: ?locale, then the customer's
// preference, then Accept-Language, then the store default.
func Locale(cfg LocaleConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		overrides := []string{c.Query(LocaleQueryParam)}
		if cfg.Preference != nil {
			overrides = append(overrides, cfg.Preference(c))
		}
		locale := cfg.Locales.Negotiate(c.GetHeader("Accept-Language"), overrides...)

		c.Set(LocaleKey, locale)
		c.Header("Content-Language", locale)
		c.Request = c.Request.WithContext(logger.WithLocale(c.Request.Context(), locale))
		c.Next()
	}
}

// GetLocale returns the negotiated locale, or fallback when none was set
func GetLocale(c *gin.Context, fallback string) string {
	if locale := c.GetString(LocaleKey); locale != "" {
		return locale
	}
	return fallback
}
