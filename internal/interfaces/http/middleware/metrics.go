package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/statyba/storefront/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// unmatchedRoute labels requests no route matched, keeping 404 scans out of the route dimension
const unmatchedRoute = "unmatched"

// httpMetrics holds the request rate, error and duration instruments
type httpMetrics struct {
	requestTotal    *telemetry.Counter
	errorTotal      *telemetry.Counter
	requestDuration *telemetry.Histogram
	activeRequests  metric.Int64UpDownCounter
}

func newHTTPMetrics(meter metric.Meter) (*httpMetrics, error) {
	requestTotal, err := telemetry.NewCounter(meter,
		"http_server_request_total", "Total number of HTTP requests", "{request}")
	if err != nil {
		return nil, err
	}
	errorTotal, err := telemetry.NewCounter(meter,
		"http_server_error_total", "HTTP requests answered with a 5xx status", "{request}")
	if err != nil {
		return nil, err
	}
	requestDuration, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_request_duration_seconds",
		Description: "HTTP request latency distribution in seconds",
		Unit:        "s",
		Boundaries:  telemetry.HTTPDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	activeRequests, err := meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("Number of currently active HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}
	return &httpMetrics{
		requestTotal:    requestTotal,
		errorTotal:      errorTotal,
		requestDuration: requestDuration,
		activeRequests:  activeRequests,
	}, nil
}

// HTTPMetrics records request count, 5xx count, latency and in-flight
// requests per method and route pattern. It is a pass-through when the
// provider is disabled or the instruments cannot be created.
func HTTPMetrics(mp *telemetry.MeterProvider, log *zap.Logger) gin.HandlerFunc {
	if !mp.IsEnabled() {
		return func(c *gin.Context) { c.Next() }
	}
	return HTTPMetricsWithMeter(mp.Meter("http.server"), log)
}

// HTTPMetricsWithMeter builds the metrics middleware on meter
func HTTPMetricsWithMeter(meter metric.Meter, log *zap.Logger) gin.HandlerFunc {
	metrics, err := newHTTPMetrics(meter)
	if err != nil {
		if log != nil {
			log.Warn("HTTP metrics disabled", zap.Error(err))
		}
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()

		metrics.activeRequests.Add(ctx, 1)
		c.Next()
		metrics.activeRequests.Add(ctx, -1)

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		status := c.Writer.Status()
		base := []attribute.KeyValue{
			telemetry.MetricHTTPMethod.String(c.Request.Method),
			telemetry.MetricHTTPRoute.String(route),
		}

		metrics.requestTotal.Inc(ctx, append(base, telemetry.MetricHTTPStatusCode.Int(status))...)
		if status >= http.StatusInternalServerError {
			metrics.errorTotal.Inc(ctx, base...)
		}
		metrics.requestDuration.RecordDuration(ctx, time.Since(start), base...)
	}
}
