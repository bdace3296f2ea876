package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{"default config", DefaultConfig()},
		{"production config", ProductionConfig()},
		{"stderr without time format", &Config{Level: "debug", Format: "json", Output: "stderr"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestNew_TeesExtraCores(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	cfg := DefaultConfig()
	cfg.Output = filepath.Join(t.TempDir(), "sync.log")

	l, err := New(cfg, core)
	require.NoError(t, err)

	l.Info("Feed sync run completed", zap.String("run_id", "r-1"))
	require.NoError(t, l.Sync())

	require.Equal(t, 1, recorded.Len())
	assert.Equal(t, "r-1", recorded.All()[0].ContextMap()["run_id"])

	data, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "Feed sync run completed"))
}

func TestNewForEnvironment(t *testing.T) {
	for _, env := range []string{"production", "development", ""} {
		l, err := NewForEnvironment(env)
		require.NoError(t, err)
		assert.NotNil(t, l)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"verbose", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.input))
		})
	}
}

func TestNamed(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	Named(zap.New(core), "feedsync").Info("hello")
	require.Equal(t, 1, recorded.Len())
	assert.Equal(t, "feedsync", recorded.All()[0].LoggerName)
}
