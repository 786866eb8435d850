// Package telemetry provides OpenTelemetry integration for distributed tracing.
package telemetry

import (
	"context"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig controls how database operations are traced.
type DBTracingConfig struct {
	Enabled          bool
	LogFullSQL       bool          // include full SQL text in spans; leaks data, dev only
	SlowQueryThresh  time.Duration // queries above this get a slow_query_warning event
	DBSystem         string
	WithoutVariables bool // strip bind variables from recorded SQL
}

// DefaultDBTracingConfig returns the secure defaults: tracing off, variables
// stripped, 200ms slow query threshold.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		Enabled:          false,
		LogFullSQL:       false,
		SlowQueryThresh:  200 * time.Millisecond,
		DBSystem:         "postgresql",
		WithoutVariables: true,
	}
}

// DBTracingPlugin layers slow query detection and error marking on top of the
// otelgorm plugin.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	return &DBTracingPlugin{config: cfg, logger: logger}
}

// RegisterOtelGorm installs otelgorm plus the timing callbacks on db. A
// disabled config makes this a no-op.
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{
		otelgorm.WithDBName(p.config.DBSystem),
	}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}

	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	// Start-time callbacks must run before otelgorm opens the span, and the
	// slow query check after it.
	if err := p.registerBeforeCallbacks(db); err != nil {
		return err
	}
	if err := p.registerSlowQueryCallback(db); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
		zap.String("db_system", p.config.DBSystem),
	)

	return nil
}

func (p *DBTracingPlugin) registerBeforeCallbacks(db *gorm.DB) error {
	stamp := func(db *gorm.DB) {
		if db.Statement.Context != nil {
			db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, time.Now())
		}
	}

	cb := db.Callback()
	return firstErr(
		cb.Create().Before("gorm:create").Register("otel_timing:before_create", stamp),
		cb.Query().Before("gorm:query").Register("otel_timing:before_query", stamp),
		cb.Update().Before("gorm:update").Register("otel_timing:before_update", stamp),
		cb.Delete().Before("gorm:delete").Register("otel_timing:before_delete", stamp),
		cb.Row().Before("gorm:row").Register("otel_timing:before_row", stamp),
		cb.Raw().Before("gorm:raw").Register("otel_timing:before_raw", stamp),
	)
}

func (p *DBTracingPlugin) registerSlowQueryCallback(db *gorm.DB) error {
	cb := db.Callback()
	return firstErr(
		cb.Create().After("gorm:create").Register("otel_slow_query:create", p.slowQueryCallback),
		cb.Query().After("gorm:query").Register("otel_slow_query:query", p.slowQueryCallback),
		cb.Update().After("gorm:update").Register("otel_slow_query:update", p.slowQueryCallback),
		cb.Delete().After("gorm:delete").Register("otel_slow_query:delete", p.slowQueryCallback),
		cb.Row().After("gorm:row").Register("otel_slow_query:row", p.slowQueryCallback),
		cb.Raw().After("gorm:raw").Register("otel_slow_query:raw", p.slowQueryCallback),
	)
}

func (p *DBTracingPlugin) slowQueryCallback(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	annotateSpan(ctx, db, p.config.SlowQueryThresh)
}

// annotateSpan enriches the active otelgorm span with row counts, table name,
// errors, and a slow query event when elapsed time exceeds the threshold.
func annotateSpan(ctx context.Context, db *gorm.DB, slowThresh time.Duration) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}

	// ErrRecordNotFound is a normal lookup miss, not a span failure.
	if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	startTime, ok := ctx.Value(queryStartTimeKey).(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(startTime)
	if elapsed > slowThresh {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		span.AddEvent("slow_query_warning", trace.WithAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.Int64("threshold_ms", slowThresh.Milliseconds()),
		))
	}
}

type contextKey string

// queryStartTimeKey carries the pre-query timestamp through the statement
// context so the after callback can compute elapsed time.
const queryStartTimeKey contextKey = "otel_query_start_time"

// WithQueryStartTime stamps ctx with the current time for slow query
// measurement.
func WithQueryStartTime(ctx context.Context) context.Context {
	return context.WithValue(ctx, queryStartTimeKey, time.Now())
}

// DBTracingCallback is a standalone timing callback pair for callers that
// want slow query detection without the full otelgorm plugin.
type DBTracingCallback struct {
	slowQueryThresh time.Duration
}

func NewDBTracingCallback(slowQueryThresh time.Duration) *DBTracingCallback {
	return &DBTracingCallback{slowQueryThresh: slowQueryThresh}
}

// BeforeCallback records the query start time in the statement context.
func (c *DBTracingCallback) BeforeCallback(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, time.Now())
	}
}

// AfterCallback annotates the active span with the outcome of the statement.
func (c *DBTracingCallback) AfterCallback(db *gorm.DB) {
	if db.Statement.Context == nil {
		return
	}
	annotateSpan(db.Statement.Context, db, c.slowQueryThresh)
}

// RegisterCallbacks hooks the before/after pair into every GORM operation.
func (c *DBTracingCallback) RegisterCallbacks(db *gorm.DB) error {
	cb := db.Callback()
	return firstErr(
		cb.Create().Before("gorm:create").Register("otel_timing:before_create", c.BeforeCallback),
		cb.Query().Before("gorm:query").Register("otel_timing:before_query", c.BeforeCallback),
		cb.Update().Before("gorm:update").Register("otel_timing:before_update", c.BeforeCallback),
		cb.Delete().Before("gorm:delete").Register("otel_timing:before_delete", c.BeforeCallback),
		cb.Row().Before("gorm:row").Register("otel_timing:before_row", c.BeforeCallback),
		cb.Raw().Before("gorm:raw").Register("otel_timing:before_raw", c.BeforeCallback),

		cb.Create().After("gorm:create").Register("otel_timing:after_create", c.AfterCallback),
		cb.Query().After("gorm:query").Register("otel_timing:after_query", c.AfterCallback),
		cb.Update().After("gorm:update").Register("otel_timing:after_update", c.AfterCallback),
		cb.Delete().After("gorm:delete").Register("otel_timing:after_delete", c.AfterCallback),
		cb.Row().After("gorm:row").Register("otel_timing:after_row", c.AfterCallback),
		cb.Raw().After("gorm:raw").Register("otel_timing:after_raw", c.AfterCallback),
	)
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
