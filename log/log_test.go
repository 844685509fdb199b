package log

import (
	"bytes"
	stdlog "log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
	}{
		{"debug", DebugLevel},
		{"INFO", InfoLevel},
		{"warn", WarnLevel},
		{"warning", WarnLevel},
		{"Error", ErrorLevel},
	}

	for _, tc := range tests {
		level, err := ParseLevel(tc.input)
		require.NoError(t, err)
		assert.Equal(t, tc.want, level)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "debug", DebugLevel.String())
	assert.Equal(t, "info", InfoLevel.String())
	assert.Equal(t, "warn", WarnLevel.String())
	assert.Equal(t, "error", ErrorLevel.String())
}

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	var buf bytes.Buffer

	stdlog.SetOutput(&buf)
	defer stdlog.SetOutput(os.Stderr)

	fn()

	return buf.String()
}

func TestGoLogger_LevelFiltering(t *testing.T) {
	logger := &GoLogger{Level: WarnLevel}

	out := captureOutput(t, func() {
		logger.Info("should be suppressed")
		logger.Warn("should appear")
	})

	assert.NotContains(t, out, "should be suppressed")
	assert.Contains(t, out, "should appear")
	assert.Contains(t, out, "[warn]")
}

func TestGoLogger_WithFields(t *testing.T) {
	logger := (&GoLogger{Level: InfoLevel}).WithFields("dependency", "user-service")

	out := captureOutput(t, func() {
		logger.Infof("circuit %s", "open")
	})

	assert.Contains(t, out, "dependency=user-service")
	assert.Contains(t, out, "circuit open")
}

func TestGoLogger_SanitizesControlCharacters(t *testing.T) {
	logger := &GoLogger{Level: InfoLevel}

	out := captureOutput(t, func() {
		logger.Info("line1\nforged entry")
	})

	assert.Contains(t, out, `line1\nforged entry`)
}

func TestNoneLogger_IsSilent(t *testing.T) {
	logger := &NoneLogger{}

	out := captureOutput(t, func() {
		logger.Error("nothing")
		logger.WithFields("k", "v").Infof("nothing %d", 1)
	})

	assert.Empty(t, out)
	require.NoError(t, logger.Sync())
}

func TestNewZapLogger(t *testing.T) {
	logger, err := NewZapLogger(ZapConfig{Environment: "production", Level: "info"})
	require.NoError(t, err)
	require.NotNil(t, logger)

	_, err = NewZapLogger(ZapConfig{Environment: "production", Level: "verbose"})
	assert.Error(t, err)
}
