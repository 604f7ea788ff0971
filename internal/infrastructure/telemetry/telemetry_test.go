package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/infrastructure/config"
	"github.com/statyba/storefront/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// useRecorder installs a recording global tracer provider for the test
func useRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func attrMap(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		m[kv.Key] = kv.Value
	}
	return m
}

func TestNewTracerProvider_Disabled(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), config.TelemetryConfig{}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))
	assert.NoError(t, tp.ForceFlush(context.Background()))
	assert.NoError(t, tp.Shutdown(context.Background()))

	tp.EnableSpanProfiles()
	assert.False(t, tp.SpanProfilesEnabled())
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, sampler(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestStartServiceSpan(t *testing.T) {
	recorder := useRecorder(t)
	productID := uuid.New()

	ctx, span := StartServiceSpan(context.Background(), "checkout", "place",
		AttrCustomerID, "c-1", AttrQuantity, 3, "odd")
	SetAttributes(span, AttrProductID, productID, 42, "non-string key")
	AddEvent(span, "stock_reserved", AttrQuantity, int64(3))
	RecordError(span, errors.New("out of stock"))
	span.End()

	require.NotNil(t, ctx)
	assert.Equal(t, "checkout.place", logger.Operation(ctx))
	spans := recorder.Ended()
	require.Len(t, spans, 1)
	got := spans[0]
	assert.Equal(t, "checkout.place", got.Name())
	assert.Equal(t, codes.Error, got.Status().Code)
	assert.Equal(t, "out of stock", got.Status().Description)

	attrs := attrMap(got)
	assert.Equal(t, "c-1", attrs[AttrCustomerID].AsString())
	assert.Equal(t, int64(3), attrs[AttrQuantity].AsInt64())
	assert.Equal(t, productID.String(), attrs[AttrProductID].AsString())
	assert.Len(t, attrs, 3)

	require.Len(t, got.Events(), 2, "stock_reserved plus the recorded error")
	assert.Equal(t, "stock_reserved", got.Events()[0].Name)
}

func TestSpanHelpers_NilSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		SetAttributes(nil, "k", "v")
		RecordError(nil, errors.New("x"))
		AddEvent(nil, "e")
	})
}

func TestLoggerProvider_Disabled(t *testing.T) {
	lp, err := NewLoggerProvider(context.Background(), config.TelemetryConfig{Enabled: true}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, lp.IsEnabled(), "log export is opt-in")

	base := zap.NewNop()
	assert.Same(t, base, lp.Bridge(base, zapcore.InfoLevel))
	assert.False(t, lp.Core(zapcore.DebugLevel).Enabled(zapcore.ErrorLevel))
	assert.NoError(t, lp.ForceFlush(context.Background()))
	assert.NoError(t, lp.Shutdown(context.Background()))
}

func TestLevelFilterCore(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	filtered := &levelFilterCore{Core: core, minLevel: zapcore.WarnLevel}

	l := zap.New(filtered).With(zap.String("component", "cart"))
	l.Info("dropped")
	l.Warn("kept")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "kept", entry.Message)
	assert.Equal(t, "cart", entry.ContextMap()["component"])
}

func TestNewProfiler(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		p, err := NewProfiler(config.TelemetryConfig{}, zap.NewNop())
		require.NoError(t, err)
		assert.False(t, p.IsEnabled())
		assert.NoError(t, p.Stop())
		assert.NoError(t, p.Stop())
	})
	t.Run("missing server", func(t *testing.T) {
		_, err := NewProfiler(config.TelemetryConfig{ProfilingEnabled: true, ServiceName: "storefront"}, zap.NewNop())
		assert.ErrorContains(t, err, "server address")
	})
	t.Run("missing name", func(t *testing.T) {
		_, err := NewProfiler(config.TelemetryConfig{ProfilingEnabled: true, ProfilingServer: "http://pyroscope:4040"}, zap.NewNop())
		assert.ErrorContains(t, err, "application name")
	})
}

type tracedRow struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func TestDBTracingPlugin_Register(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedRow{}))

	require.NoError(t, NewDBTracingPlugin(DBTracingConfig{}, zap.NewNop()).Register(db), "disabled is a no-op")

	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true}, zap.NewNop())
	assert.Equal(t, 200*time.Millisecond, plugin.config.SlowQueryThresh)
	assert.Equal(t, "storefront", plugin.config.DBName)
	require.NoError(t, plugin.Register(db))

	require.NoError(t, db.Create(&tracedRow{Name: "a"}).Error)
	var rows []tracedRow
	require.NoError(t, db.Find(&rows).Error)
	assert.Len(t, rows, 1)
}

func TestDBTracingPlugin_After(t *testing.T) {
	recorder := useRecorder(t)
	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true, SlowQueryThresh: time.Millisecond}, zap.NewNop())

	ctx, span := otel.Tracer("test").Start(context.Background(), "query")
	ctx = context.WithValue(ctx, queryStartTimeKey, time.Now().Add(-time.Second))
	db := &gorm.DB{
		Config:       &gorm.Config{},
		Statement:    &gorm.Statement{Context: ctx, Table: "products"},
		Error:        errors.New("deadlock"),
		RowsAffected: 2,
	}
	db.Statement.DB = db
	plugin.after(db)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	attrs := attrMap(spans[0])
	assert.Equal(t, int64(2), attrs["db.rows_affected"].AsInt64())
	assert.Equal(t, "products", attrs["db.sql.table"].AsString())
	assert.True(t, attrs["db.slow_query"].AsBool())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestDBTracingPlugin_AfterIgnoresNotFound(t *testing.T) {
	recorder := useRecorder(t)
	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true}, zap.NewNop())

	ctx, span := otel.Tracer("test").Start(context.Background(), "query")
	db := &gorm.DB{
		Config:    &gorm.Config{},
		Statement: &gorm.Statement{Context: ctx},
		Error:     gorm.ErrRecordNotFound,
	}
	db.Statement.DB = db
	plugin.after(db)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.NotContains(t, attrMap(spans[0]), attribute.Key("db.slow_query"))
}
