package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool          // include query variables in spans; development only
	SlowQueryThresh time.Duration // default 200ms
	DBName          string        // default "storefront"
}

// DBTracingPlugin registers otelgorm plus slow query marking on a GORM DB.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates a new database tracing plugin with the given configuration.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.DBName == "" {
		cfg.DBName = "storefront"
	}
	return &DBTracingPlugin{config: cfg, logger: logger}
}

// Register installs the plugin on db. It is a no-op when tracing is disabled.
func (p *DBTracingPlugin) Register(db *gorm.DB) error {
	if !p.config.Enabled {
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBName)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	cb := db.Callback()
	processors := []struct {
		op     string
		before func(string) error
		after  func(string) error
	}{
		{"create", func(n string) error { return cb.Create().Before("gorm:create").Register(n, p.before) },
			func(n string) error { return cb.Create().After("gorm:create").Register(n, p.after) }},
		{"query", func(n string) error { return cb.Query().Before("gorm:query").Register(n, p.before) },
			func(n string) error { return cb.Query().After("gorm:query").Register(n, p.after) }},
		{"update", func(n string) error { return cb.Update().Before("gorm:update").Register(n, p.before) },
			func(n string) error { return cb.Update().After("gorm:update").Register(n, p.after) }},
		{"delete", func(n string) error { return cb.Delete().Before("gorm:delete").Register(n, p.before) },
			func(n string) error { return cb.Delete().After("gorm:delete").Register(n, p.after) }},
		{"row", func(n string) error { return cb.Row().Before("gorm:row").Register(n, p.before) },
			func(n string) error { return cb.Row().After("gorm:row").Register(n, p.after) }},
		{"raw", func(n string) error { return cb.Raw().Before("gorm:raw").Register(n, p.before) },
			func(n string) error { return cb.Raw().After("gorm:raw").Register(n, p.after) }},
	}
	for _, proc := range processors {
		if err := proc.before("otel_timing:before_" + proc.op); err != nil {
			return err
		}
		if err := proc.after("otel_timing:after_" + proc.op); err != nil {
			return err
		}
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
	)
	return nil
}

type contextKey string

const queryStartTimeKey contextKey = "otel_query_start_time"

func (p *DBTracingPlugin) before(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, time.Now())
	}
}

func (p *DBTracingPlugin) after(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	if start, ok := ctx.Value(queryStartTimeKey).(time.Time); ok {
		if elapsed := time.Since(start); elapsed > p.config.SlowQueryThresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
			span.AddEvent("slow_query_warning", trace.WithAttributes(
				attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds()),
			))
		}
	}
}
