package middleware

import (
	"net/http"
	"net/netip"

	"github.com/gin-gonic/gin"
	"github.com/statyba/storefront/internal/interfaces/http/dto"
)

// IPAllowlist rejects requests whose client IP is outside entries.
// Entries are single addresses or CIDR prefixes; unparsable entries are
// skipped. An empty list allows every client.
func IPAllowlist(entries []string) gin.HandlerFunc {
	prefixes := make([]netip.Prefix, 0, len(entries))
	for _, entry := range entries {
		if p, err := netip.ParsePrefix(entry); err == nil {
			prefixes = append(prefixes, p.Masked())
			continue
		}
		if addr, err := netip.ParseAddr(entry); err == nil {
			prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
		}
	}
	if len(entries) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		addr, err := netip.ParseAddr(c.ClientIP())
		if err == nil {
			addr = addr.Unmap()
			for _, p := range prefixes {
				if p.Contains(addr) {
					c.Next()
					return
				}
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden,
			dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "Access denied", GetRequestID(c)))
	}
}
