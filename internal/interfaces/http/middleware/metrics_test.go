package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/statyba/storefront/internal/infrastructure/config"
	"github.com/statyba/storefront/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func setupMetricsRouter(t *testing.T) (*gin.Engine, *sdkmetric.ManualReader) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reader := sdkmetric.NewManualReader()
	mp, err := telemetry.NewMeterProviderWithReader("storefront-test", reader, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = mp.Shutdown(t.Context()) })

	router := gin.New()
	router.Use(HTTPMetrics(mp, zap.NewNop()))
	router.GET("/api/v1/products/:slug", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"slug": c.Param("slug")})
	})
	router.POST("/api/v1/checkout", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "boom"})
	})
	return router, reader
}

func serve(router *gin.Engine, method, path string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	router.ServeHTTP(w, req)
	return w.Code
}

func collectHTTPMetric(t *testing.T, reader *sdkmetric.ManualReader, name string) *metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(t.Context(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestHTTPMetrics_DisabledProvider(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mp, err := telemetry.NewMeterProvider(t.Context(), config.TelemetryConfig{}, zap.NewNop())
	require.NoError(t, err)

	router := gin.New()
	router.Use(HTTPMetrics(mp, zap.NewNop()))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/health"))
}

func TestHTTPMetrics_NilProvider(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(HTTPMetrics(nil, nil))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/health"))
}

func TestHTTPMetrics_CountsByRoutePattern(t *testing.T) {
	router, reader := setupMetricsRouter(t)

	serve(router, http.MethodGet, "/api/v1/products/oak-table")
	serve(router, http.MethodGet, "/api/v1/products/lamp")
	serve(router, http.MethodGet, "/wp-login.php")

	total := collectHTTPMetric(t, reader, "http_server_request_total")
	require.NotNil(t, total)
	sum, ok := total.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	byRoute := map[string]int64{}
	for _, dp := range sum.DataPoints {
		route, _ := dp.Attributes.Value(telemetry.MetricHTTPRoute)
		byRoute[route.AsString()] += dp.Value
	}
	assert.Equal(t, map[string]int64{"/api/v1/products/:slug": 2, unmatchedRoute: 1}, byRoute)
}

func TestHTTPMetrics_ErrorsAndDuration(t *testing.T) {
	router, reader := setupMetricsRouter(t)

	assert.Equal(t, http.StatusInternalServerError, serve(router, http.MethodPost, "/api/v1/checkout"))
	serve(router, http.MethodGet, "/api/v1/products/lamp")

	errs := collectHTTPMetric(t, reader, "http_server_error_total")
	require.NotNil(t, errs)
	errSum := errs.Data.(metricdata.Sum[int64])
	require.Len(t, errSum.DataPoints, 1)
	assert.Equal(t, int64(1), errSum.DataPoints[0].Value)
	route, _ := errSum.DataPoints[0].Attributes.Value(telemetry.MetricHTTPRoute)
	assert.Equal(t, "/api/v1/checkout", route.AsString())

	duration := collectHTTPMetric(t, reader, "http_server_request_duration_seconds")
	require.NotNil(t, duration)
	hist, ok := duration.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(2), count)

	active := collectHTTPMetric(t, reader, "http_server_active_requests")
	require.NotNil(t, active)
	for _, dp := range active.Data.(metricdata.Sum[int64]).DataPoints {
		assert.Zero(t, dp.Value)
	}
}
