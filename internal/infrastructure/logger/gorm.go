package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultMaxSQLLength caps logged statements; FindByIDs over a large cart or
// a sitemap batch expands into long IN lists.
const DefaultMaxSQLLength = 2048

// GormLogger writes GORM output through zap. Every entry carries the request
// correlation fields of its context (request_id, customer_id, locale,
// operation, trace_id).
type GormLogger struct {
	log           *zap.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
	maxSQL        int
	logNotFound   bool
}

type GormLoggerOption func(*GormLogger)

// WithSlowThreshold sets the slow query threshold; zero disables slow logs
func WithSlowThreshold(threshold time.Duration) GormLoggerOption {
	return func(l *GormLogger) { l.slowThreshold = threshold }
}

// WithMaxSQLLength truncates logged SQL to n bytes; zero keeps it whole
func WithMaxSQLLength(n int) GormLoggerOption {
	return func(l *GormLogger) { l.maxSQL = n }
}

// WithRecordNotFoundLogged logs gorm.ErrRecordNotFound as an error. Off by default.
func WithRecordNotFoundLogged(enabled bool) GormLoggerOption {
	return func(l *GormLogger) { l.logNotFound = enabled }
}

func NewGormLogger(zapLogger *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	gl := &GormLogger{
		log:           zapLogger.Named("gorm"),
		level:         level,
		slowThreshold: 200 * time.Millisecond,
		maxSQL:        DefaultMaxSQLLength,
	}
	for _, opt := range opts {
		opt(gl)
	}
	return gl
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *GormLogger) printf(ctx context.Context, min gormlogger.LogLevel, lvl zapcore.Level, msg string, data []any) {
	if l.level < min {
		return
	}
	Enrich(ctx, l.log).Sugar().Logf(lvl, msg, data...)
}

// Trace logs one statement: failures at error, slow statements at warn, and
// everything else at debug when the level is Info.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	slow := l.slowThreshold > 0 && elapsed > l.slowThreshold

	var (
		lvl zapcore.Level
		msg string
	)
	switch {
	case err != nil && l.level >= gormlogger.Error:
		if !l.logNotFound && errors.Is(err, gormlogger.ErrRecordNotFound) {
			return
		}
		lvl, msg = zapcore.ErrorLevel, "sql failed"
	case slow && l.level >= gormlogger.Warn:
		lvl, msg = zapcore.WarnLevel, "slow sql"
	case l.level >= gormlogger.Info:
		lvl, msg = zapcore.DebugLevel, "sql"
	default:
		return
	}

	sql, rows := fc()
	fields := []zap.Field{
		zap.String("sql", l.truncate(sql)),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}
	if slow {
		fields = append(fields, zap.Duration("slow_threshold", l.slowThreshold))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	Enrich(ctx, l.log).Log(lvl, msg, fields...)
}

func (l *GormLogger) truncate(sql string) string {
	if l.maxSQL <= 0 || len(sql) <= l.maxSQL {
		return sql
	}
	return sql[:l.maxSQL] + "…"
}

// MapGormLogLevel maps the application log level onto GORM's levels
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
