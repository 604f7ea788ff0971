package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey     contextKey = "logger"
	requestIDKey  contextKey = "request_id"
	customerIDKey contextKey = "customer_id"
	localeKey     contextKey = "locale"
	operationKey  contextKey = "operation"
)

// WithContext attaches a logger to ctx
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the attached logger or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// WithRequestID stores the request ID
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithCustomerID stores the authenticated customer ID
func WithCustomerID(ctx context.Context, customerID string) context.Context {
	return context.WithValue(ctx, customerIDKey, customerID)
}

// WithLocale stores the negotiated storefront locale
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeKey, locale)
}

// WithOperation names the use case running on ctx, such as "checkout.place"
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, operationKey, operation)
}

func RequestID(ctx context.Context) string  { return stringValue(ctx, requestIDKey) }
func CustomerID(ctx context.Context) string { return stringValue(ctx, customerIDKey) }
func Locale(ctx context.Context) string     { return stringValue(ctx, localeKey) }
func Operation(ctx context.Context) string  { return stringValue(ctx, operationKey) }

func stringValue(ctx context.Context, key contextKey) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// TraceID returns the active span's trace ID, or "" without a valid span
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

// L returns the context logger enriched with trace, request, customer and
// locale fields that are present in ctx.
//
//	logger.L(ctx).Info("order placed", zap.String("number", o.Number))
func L(ctx context.Context) *zap.Logger {
	return Enrich(ctx, FromContext(ctx))
}

// Enrich adds the context correlation fields to l
func Enrich(ctx context.Context, l *zap.Logger) *zap.Logger {
	fields := make([]zap.Field, 0, 6)
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	if v := RequestID(ctx); v != "" {
		fields = append(fields, zap.String("request_id", v))
	}
	if v := CustomerID(ctx); v != "" {
		fields = append(fields, zap.String("customer_id", v))
	}
	if v := Locale(ctx); v != "" {
		fields = append(fields, zap.String("locale", v))
	}
	if v := Operation(ctx); v != "" {
		fields = append(fields, zap.String("operation", v))
	}
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}
