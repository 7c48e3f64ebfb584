package logger

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(level zapcore.Level, gormLevel gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(level)
	return NewGormLogger(zap.New(core), gormLevel, opts...), recorded
}

func selectEntities() (string, int64) {
	return `SELECT * FROM "catalog_entities" WHERE id = 'x'`, 1
}

func TestGormLogger_Options(t *testing.T) {
	gormLog, _ := newObservedGormLogger(zapcore.InfoLevel, gormlogger.Info,
		WithSlowThreshold(500*time.Millisecond),
		WithIgnoreRecordNotFoundError(false),
	)

	assert.Equal(t, 500*time.Millisecond, gormLog.slowThreshold)
	assert.False(t, gormLog.ignoreRecordNotFoundError)

	changed, ok := gormLog.LogMode(gormlogger.Warn).(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Warn, changed.logLevel)
	assert.Equal(t, gormlogger.Info, gormLog.logLevel, "LogMode must not mutate the receiver")
}

func TestGormLogger_Messages(t *testing.T) {
	gormLog, recorded := newObservedGormLogger(zapcore.InfoLevel, gormlogger.Warn)

	gormLog.Info(context.Background(), "suppressed %s", "info")
	gormLog.Warn(context.Background(), "retrying %d", 2)
	gormLog.Error(context.Background(), "failed")

	logs := recorded.All()
	require.Len(t, logs, 2)
	assert.Equal(t, "retrying 2", logs[0].Message)
	assert.Equal(t, zapcore.WarnLevel, logs[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, logs[1].Level)
}

func TestGormLogger_Trace(t *testing.T) {
	t.Run("error is logged", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(zapcore.DebugLevel, gormlogger.Error)
		gormLog.Trace(context.Background(), time.Now(), selectEntities, errors.New("connection reset"))

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "sql failed", logs[0].Message)
		assert.Equal(t, zapcore.ErrorLevel, logs[0].Level)
	})

	t.Run("record not found is ignored by default", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(zapcore.DebugLevel, gormlogger.Error)
		gormLog.Trace(context.Background(), time.Now(), selectEntities, gormlogger.ErrRecordNotFound)

		assert.Empty(t, recorded.All())
	})

	t.Run("slow query warns", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(zapcore.DebugLevel, gormlogger.Warn, WithSlowThreshold(time.Millisecond))
		gormLog.Trace(context.Background(), time.Now().Add(-time.Second), selectEntities, nil)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "slow sql", logs[0].Message)
		assert.Equal(t, time.Millisecond, logs[0].ContextMap()["threshold"])
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(zapcore.DebugLevel, gormlogger.Silent)
		gormLog.Trace(context.Background(), time.Now(), selectEntities, errors.New("boom"))

		assert.Empty(t, recorded.All())
	})

	t.Run("fast query is not logged at warn", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(zapcore.DebugLevel, gormlogger.Warn)
		gormLog.Trace(context.Background(), time.Now(), selectEntities, nil)

		assert.Empty(t, recorded.All())
	})

	t.Run("carries request, tenant and entity ids", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(zapcore.DebugLevel, gormlogger.Info)
		ctx := WithEntityID(WithTenantID(WithRequestID(context.Background(), "req-1"), "tenant-1"), "ent-1")
		gormLog.Trace(ctx, time.Now(), selectEntities, nil)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "sql", logs[0].Message)
		assert.Equal(t, zapcore.DebugLevel, logs[0].Level)
		fields := logs[0].ContextMap()
		assert.Equal(t, "req-1", fields["request_id"])
		assert.Equal(t, "tenant-1", fields["tenant_id"])
		assert.Equal(t, "ent-1", fields["entity_id"])
	})

	t.Run("long statements are truncated", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(zapcore.DebugLevel, gormlogger.Info)
		long := func() (string, int64) { return strings.Repeat("x", maxLoggedSQL+50), 1 }
		gormLog.Trace(context.Background(), time.Now(), long, nil)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Len(t, logs[0].ContextMap()["sql"], maxLoggedSQL+3)
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
		{"info", gormlogger.Warn},
		{"DEBUG", gormlogger.Info},
		{"", gormlogger.Warn},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapGormLogLevel(tt.level))
		})
	}
}

var _ gormlogger.Interface = (*GormLogger)(nil)
