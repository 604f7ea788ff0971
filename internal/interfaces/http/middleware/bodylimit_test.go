package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/statyba/storefront/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
)

// readAll echoes how many body bytes the handler managed to read
func readAll(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(http.StatusBadRequest, "truncated after %d bytes", len(data))
		return
	}
	c.String(http.StatusOK, "read %d bytes", len(data))
}

func TestBodyLimit(t *testing.T) {
	tests := []struct {
		name          string
		limit         int64
		body          string
		contentLength int64 // -1 streams the body without a length
		wantStatus    int
		wantBody      string
	}{
		{"within limit", 1024, `{"product_id":"p1","quantity":1}`, 32, http.StatusOK, "read 32 bytes"},
		{"declared length over limit", 100, strings.Repeat("x", 200), 200, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge},
		{"streamed body over limit", 50, strings.Repeat("x", 100), -1, http.StatusBadRequest, "truncated"},
		{"streamed body at limit", 50, strings.Repeat("x", 50), -1, http.StatusOK, "read 50 bytes"},
		{"zero limit disables the check", 0, strings.Repeat("x", 4096), 4096, http.StatusOK, "read 4096 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(BodyLimit(tt.limit))
			router.POST("/cart/items", readAll)

			req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(tt.body))
			req.ContentLength = tt.contentLength
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}

	t.Run("requests without a body pass", func(t *testing.T) {
		router := gin.New()
		router.Use(BodyLimit(10))
		router.GET("/products", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
