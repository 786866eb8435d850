package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func observedGormLogger(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), recorded
}

// stockRecordsQuery stands in for the gorm trace callback payload.
func stockRecordsQuery(rows int64) func() (string, int64) {
	return func() (string, int64) {
		return "SELECT * FROM stock_records WHERE item_id = ?", rows
	}
}

func TestNewGormLogger(t *testing.T) {
	gormLog, _ := observedGormLogger(gormlogger.Info)

	assert.NotNil(t, gormLog)
	assert.Equal(t, gormlogger.Info, gormLog.logLevel)
}

func TestGormLoggerOptions(t *testing.T) {
	gormLog, _ := observedGormLogger(
		gormlogger.Info,
		WithSlowThreshold(500*time.Millisecond),
		WithIgnoreRecordNotFoundError(false),
	)

	assert.Equal(t, 500*time.Millisecond, gormLog.slowThreshold)
	assert.False(t, gormLog.ignoreRecordNotFoundError)
}

func TestGormLoggerLogMode(t *testing.T) {
	gormLog, _ := observedGormLogger(gormlogger.Info)

	derived := gormLog.LogMode(gormlogger.Warn)

	assert.Equal(t, gormlogger.Info, gormLog.logLevel)

	derivedGorm, ok := derived.(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Warn, derivedGorm.logLevel)
}

func TestGormLoggerLevels(t *testing.T) {
	t.Run("info", func(t *testing.T) {
		gormLog, recorded := observedGormLogger(gormlogger.Info)
		gormLog.Info(context.Background(), "migrated table %s", "stock_records")

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Contains(t, logs[0].Message, "migrated table stock_records")
	})

	t.Run("info suppressed when silent", func(t *testing.T) {
		gormLog, recorded := observedGormLogger(gormlogger.Silent)
		gormLog.Info(context.Background(), "migrated table")

		assert.Empty(t, recorded.All())
	})

	t.Run("warn", func(t *testing.T) {
		gormLog, recorded := observedGormLogger(gormlogger.Warn)
		gormLog.Warn(context.Background(), "ledger truncated to %d entries", 100)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Contains(t, logs[0].Message, "ledger truncated to 100 entries")
		assert.Equal(t, zapcore.WarnLevel, logs[0].Level)
	})

	t.Run("error", func(t *testing.T) {
		gormLog, recorded := observedGormLogger(gormlogger.Error)
		gormLog.Error(context.Background(), "connection lost")

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, zapcore.ErrorLevel, logs[0].Level)
	})
}

func TestGormLoggerTrace(t *testing.T) {
	t.Run("query error", func(t *testing.T) {
		gormLog, recorded := observedGormLogger(gormlogger.Error)

		gormLog.Trace(context.Background(), time.Now(), stockRecordsQuery(0), errors.New("pq: deadlock detected"))

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Contains(t, logs[0].Message, "SQL Error")
	})

	t.Run("record not found ignored", func(t *testing.T) {
		gormLog, recorded := observedGormLogger(gormlogger.Error, WithIgnoreRecordNotFoundError(true))

		gormLog.Trace(context.Background(), time.Now(), stockRecordsQuery(0), gormlogger.ErrRecordNotFound)

		assert.Empty(t, recorded.All())
	})

	t.Run("slow query", func(t *testing.T) {
		gormLog, recorded := observedGormLogger(gormlogger.Warn, WithSlowThreshold(time.Nanosecond))

		began := time.Now().Add(-time.Second)
		gormLog.Trace(context.Background(), began, stockRecordsQuery(10), nil)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Contains(t, logs[0].Message, "SLOW SQL")
	})

	t.Run("normal query", func(t *testing.T) {
		gormLog, recorded := observedGormLogger(gormlogger.Info)

		gormLog.Trace(context.Background(), time.Now(), stockRecordsQuery(5), nil)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Contains(t, logs[0].Message, "SQL Query")
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		gormLog, recorded := observedGormLogger(gormlogger.Silent)

		gormLog.Trace(context.Background(), time.Now(), stockRecordsQuery(5), nil)

		assert.Empty(t, recorded.All())
	})

	t.Run("request id propagated from context", func(t *testing.T) {
		gormLog, recorded := observedGormLogger(gormlogger.Info)

		ctx := context.WithValue(context.Background(), RequestIDKey, "restock-req-9")
		gormLog.Trace(ctx, time.Now(), stockRecordsQuery(1), nil)

		logs := recorded.All()
		require.Len(t, logs, 1)

		var requestID string
		for _, field := range logs[0].Context {
			if field.Key == "request_id" {
				requestID = field.String
			}
		}
		assert.Equal(t, "restock-req-9", requestID)
	})
}

func TestMapGormLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"error", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"info", gormlogger.Info},
		{"debug", gormlogger.Info},
		{"trace", gormlogger.Warn},
		{"", gormlogger.Warn},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapGormLogLevel(tt.level))
		})
	}
}

func TestGormLoggerImplementsInterface(t *testing.T) {
	gormLog, _ := observedGormLogger(gormlogger.Info)

	var _ gormlogger.Interface = gormLog
}
