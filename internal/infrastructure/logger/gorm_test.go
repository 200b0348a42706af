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

func newObservedGormLogger(t *testing.T, zapLevel zapcore.Level, gormLevel gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	t.Helper()
	core, recorded := observer.New(zapLevel)
	return NewGormLogger(zap.New(core), gormLevel, opts...), recorded
}

func TestNewGormLogger(t *testing.T) {
	gormLog, _ := newObservedGormLogger(t, zapcore.InfoLevel, gormlogger.Info)

	assert.Equal(t, gormlogger.Info, gormLog.level)
	assert.True(t, gormLog.skipNotFound)
}

func TestGormLoggerWithOptions(t *testing.T) {
	gormLog, _ := newObservedGormLogger(t, zapcore.InfoLevel, gormlogger.Info,
		WithSlowThreshold(500*time.Millisecond),
		WithSkipNotFound(false),
	)

	assert.Equal(t, 500*time.Millisecond, gormLog.slowThreshold)
	assert.False(t, gormLog.skipNotFound)
}

func TestGormLogger_LogMode(t *testing.T) {
	gormLog, _ := newObservedGormLogger(t, zapcore.InfoLevel, gormlogger.Info)

	newLogger := gormLog.LogMode(gormlogger.Warn)

	// Original must be unchanged
	assert.Equal(t, gormlogger.Info, gormLog.level)

	newGormLog, ok := newLogger.(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Warn, newGormLog.level)
}

func TestGormLogger_Info(t *testing.T) {
	gormLog, recorded := newObservedGormLogger(t, zapcore.InfoLevel, gormlogger.Info)

	gormLog.Info(context.Background(), "test message %s", "value")

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].Message, "test message value")
}

func TestGormLogger_Info_Suppressed(t *testing.T) {
	gormLog, recorded := newObservedGormLogger(t, zapcore.InfoLevel, gormlogger.Silent)

	gormLog.Info(context.Background(), "test message")

	assert.Empty(t, recorded.All())
}

func TestGormLogger_Warn(t *testing.T) {
	gormLog, recorded := newObservedGormLogger(t, zapcore.WarnLevel, gormlogger.Warn)

	gormLog.Warn(context.Background(), "warning message %d", 42)

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].Message, "warning message 42")
	assert.Equal(t, zapcore.WarnLevel, logs[0].Level)
}

func TestGormLogger_Trace_Error(t *testing.T) {
	gormLog, recorded := newObservedGormLogger(t, zapcore.ErrorLevel, gormlogger.Error)

	fc := func() (string, int64) {
		return "SELECT * FROM invoices", 0
	}
	gormLog.Trace(context.Background(), time.Now(), fc, errors.New("test error"))

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].Message, "SQL Error")
}

func TestGormLogger_Trace_RecordNotFoundIgnored(t *testing.T) {
	gormLog, recorded := newObservedGormLogger(t, zapcore.ErrorLevel, gormlogger.Error)

	fc := func() (string, int64) {
		return "SELECT * FROM invoices WHERE id = ?", 0
	}
	gormLog.Trace(context.Background(), time.Now(), fc, gormlogger.ErrRecordNotFound)

	assert.Empty(t, recorded.All())
}

func TestGormLogger_Trace_SlowQuery(t *testing.T) {
	gormLog, recorded := newObservedGormLogger(t, zapcore.WarnLevel, gormlogger.Warn,
		WithSlowThreshold(1*time.Nanosecond),
	)

	begin := time.Now().Add(-1 * time.Second)
	fc := func() (string, int64) {
		return "SELECT * FROM invoices", 10
	}
	gormLog.Trace(context.Background(), begin, fc, nil)

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].Message, "SLOW SQL")
}

func TestGormLogger_Trace_Silent(t *testing.T) {
	gormLog, recorded := newObservedGormLogger(t, zapcore.DebugLevel, gormlogger.Silent)

	fc := func() (string, int64) {
		return "SELECT * FROM invoices", 5
	}
	gormLog.Trace(context.Background(), time.Now(), fc, nil)

	assert.Empty(t, recorded.All())
}

func TestGormLogger_Trace_ContextFields(t *testing.T) {
	gormLog, recorded := newObservedGormLogger(t, zapcore.DebugLevel, gormlogger.Info)

	ctx := context.WithValue(context.Background(), RequestIDKey, "test-req-id")
	ctx = context.WithValue(ctx, TenantIDKey, "tenant-42")

	fc := func() (string, int64) {
		return "SELECT * FROM invoices", 5
	}
	gormLog.Trace(ctx, time.Now(), fc, nil)

	logs := recorded.All()
	require.Len(t, logs, 1)

	fields := map[string]string{}
	for _, field := range logs[0].Context {
		fields[field.Key] = field.String
	}
	assert.Equal(t, "test-req-id", fields["request_id"])
	assert.Equal(t, "tenant-42", fields["tenant_id"])
}

func TestGormLoggerImplementsInterface(t *testing.T) {
	gormLog, _ := newObservedGormLogger(t, zapcore.InfoLevel, gormlogger.Info)

	var _ gormlogger.Interface = gormLog
}
