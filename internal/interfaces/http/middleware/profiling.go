package middleware

import (
	"context"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/grafana/pyroscope-go"
)

// Profiling labels attached to request goroutines
const (
	ProfilingLabelRoute  = "route"
	ProfilingLabelMethod = "method"
	ProfilingLabelArea   = "area"
)

// ProfilingConfig holds configuration for the profiling middleware
type ProfilingConfig struct {
	Enabled   bool
	SkipPaths []string
}

// DefaultProfilingConfig returns default profiling middleware configuration
func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		Enabled:   true,
		SkipPaths: []string{"/health", "/ready"},
	}
}

// Profiling tags CPU and allocation samples taken while a request runs
// with its route, method and API area so profiles can be split by endpoint
func Profiling(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || slices.Contains(cfg.SkipPaths, c.Request.URL.Path) {
			c.Next()
			return
		}
		labels := pyroscope.Labels(
			ProfilingLabelRoute, route,
			ProfilingLabelMethod, c.Request.Method,
			ProfilingLabelArea, routeArea(route),
		)
		pyroscope.TagWrapper(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

// routeArea returns the first resource segment of a route, skipping the
// API version: "/api/v1/products/:slug" gives "products"
func routeArea(route string) string {
	if rest, ok := strings.CutPrefix(route, "/api/"); ok {
		if _, after, found := strings.Cut(rest, "/"); found {
			route = after
		}
	}
	area, _, _ := strings.Cut(strings.TrimPrefix(route, "/"), "/")
	return area
}
