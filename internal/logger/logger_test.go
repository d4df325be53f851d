package logger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"safebite/internal/config"
	"safebite/internal/logger"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, logger.ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, logger.ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, logger.ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, logger.ParseLevel("verbose"))
}

func TestNew(t *testing.T) {
	for _, format := range []string{"console", "json"} {
		l, err := logger.New(config.LogConfig{Level: "warn", Format: format})
		require.NoError(t, err)
		assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, l.Core().Enabled(zapcore.ErrorLevel))
	}
}
