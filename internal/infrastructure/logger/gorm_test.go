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

func TestGormLogger_LogMode(t *testing.T) {
	gl := NewGormLogger(zap.NewNop(), gormlogger.Info)
	changed, ok := gl.LogMode(gormlogger.Warn).(*GormLogger)
	require.True(t, ok)

	assert.Equal(t, gormlogger.Info, gl.logLevel)
	assert.Equal(t, gormlogger.Warn, changed.logLevel)
}

func TestGormLogger_Trace(t *testing.T) {
	sql := func() (string, int64) {
		return `SELECT * FROM "products" WHERE tenant_id = 'x' AND external_id = '1001'`, 1
	}

	tests := []struct {
		name    string
		level   gormlogger.LogLevel
		begin   time.Time
		err     error
		wantMsg string
		wantLvl zapcore.Level
	}{
		{"error", gormlogger.Info, time.Now(), errors.New("connection refused"), "SQL Error", zapcore.ErrorLevel},
		{"record not found is ignored", gormlogger.Info, time.Now(), gormlogger.ErrRecordNotFound, "", 0},
		{"slow query", gormlogger.Warn, time.Now().Add(-time.Second), nil, "SLOW SQL >= 200ms", zapcore.WarnLevel},
		{"normal query", gormlogger.Info, time.Now(), nil, "SQL Query", zapcore.DebugLevel},
		{"silent", gormlogger.Silent, time.Now(), errors.New("x"), "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)
			gl := NewGormLogger(zap.New(core), tt.level)

			ctx, _ := WithRunID(context.Background(), zap.NewNop(), "run-7")
			gl.Trace(ctx, tt.begin, sql, tt.err)

			if tt.wantMsg == "" {
				assert.Zero(t, recorded.Len())
				return
			}
			require.Equal(t, 1, recorded.Len())
			entry := recorded.All()[0]
			assert.Equal(t, tt.wantMsg, entry.Message)
			assert.Equal(t, tt.wantLvl, entry.Level)
			assert.Equal(t, "run-7", entry.ContextMap()["run_id"])
		})
	}
}

func TestGormLogger_SlowThresholdOption(t *testing.T) {
	gl := NewGormLogger(zap.NewNop(), gormlogger.Warn, WithSlowThreshold(time.Second))
	assert.Equal(t, time.Second, gl.slowThreshold)
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("warn"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("unknown"))
}

func TestGormLoggerImplementsInterface(t *testing.T) {
	var _ gormlogger.Interface = NewGormLogger(zap.NewNop(), gormlogger.Warn)
}
