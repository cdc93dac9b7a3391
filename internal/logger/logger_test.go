package logger

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// capture replaces stdout and stderr while fn runs
func capture(t *testing.T, fn func()) (stdout string, stderr string) {
	t.Helper()

	origOut, origErr := os.Stdout, os.Stderr
	defer func() { os.Stdout, os.Stderr = origOut, origErr }()

	rOut, wOut, err := os.Pipe()
	require.NoError(t, err, "failed to create stdout pipe")
	rErr, wErr, err := os.Pipe()
	require.NoError(t, err, "failed to create stderr pipe")

	os.Stdout, os.Stderr = wOut, wErr

	fn()

	require.NoError(t, wOut.Close())
	require.NoError(t, wErr.Close())

	outBytes, err := io.ReadAll(rOut)
	require.NoError(t, err, "failed to read stdout pipe")
	errBytes, err := io.ReadAll(rErr)
	require.NoError(t, err, "failed to read stderr pipe")

	return string(outBytes), string(errBytes)
}

func TestLogger_parseLevel(t *testing.T) {
	t.Run("valid value", func(t *testing.T) {
		tests := []struct {
			input    string
			expected slog.Level
		}{
			{"DEBUG", slog.LevelDebug},
			{"debug", slog.LevelDebug},
			{"Info", slog.LevelInfo},
			{"info", slog.LevelInfo},
			{"WARN", slog.LevelWarn},
			{"warn", slog.LevelWarn},
			{"ERROR", slog.LevelError},
			{"error", slog.LevelError},
		}

		for _, tt := range tests {
			t.Run(tt.input, func(t *testing.T) {
				got, err := parseLevel(tt.input)

				require.NoError(t, err)
				require.Equal(t, tt.expected, got)
			})
		}
	})

	t.Run("not valid", func(t *testing.T) {
		for _, value := range []string{"", "verbose", "warning"} {
			_, err := parseLevel(value)
			require.Errorf(t, err, "level %q must be rejected", value)
		}
	})
}

func TestLogger_New(t *testing.T) {
	t.Run("dev is text", func(t *testing.T) {
		_, stderr := capture(t, func() {
			l, err := New(EnvDevelopment, LevelInfo)
			require.NoError(t, err)
			l.Info("hello", "key", "value")
		})

		require.Contains(t, stderr, "msg=hello")
		require.Contains(t, stderr, "key=value")
	})

	t.Run("prod is json", func(t *testing.T) {
		_, stderr := capture(t, func() {
			l, err := New(EnvProduction, LevelInfo)
			require.NoError(t, err)
			l.Info("hello")
		})

		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(stderr), &entry), "prod logs must be json")
		require.Equal(t, "hello", entry["msg"])
	})

	t.Run("unknown env fails", func(t *testing.T) {
		_, err := New("staging", LevelInfo)
		require.Error(t, err)
	})

	t.Run("unknown level fails", func(t *testing.T) {
		_, err := New(EnvProduction, "loud")
		require.Error(t, err)
	})
}

func TestLogger_NewJSONLogger(t *testing.T) {
	stdout, stderr := capture(t, func() {
		l, err := NewJSONLogger(LevelInfo)
		require.NoError(t, err)

		l.Info("test message", "key", "value")
	})

	require.Empty(t, stdout, "logs must go to stderr only")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(stderr), &entry))
	require.Equal(t, "test message", entry["msg"])
	require.Equal(t, "INFO", entry["level"])
	require.Equal(t, "value", entry["key"])

	source, ok := entry["source"].(map[string]any)
	require.True(t, ok, "source must be attached")
	require.Equal(t, "logger_test.go", source["file"], "source must point to the caller, without directories")
}

func TestLogger_NewNoOpLogger(t *testing.T) {
	stdout, stderr := capture(t, func() {
		l := NewNoOpLogger()
		l.Debug("debug message")
		l.Info("info message")
		l.Warn("warn message")
		l.Error("error message")
	})

	require.Empty(t, stdout)
	require.Empty(t, stderr)
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		logFn    func(Logger)
		isLogged bool
	}{
		{"debug logs debug", LevelDebug, func(l Logger) { l.Debug("test") }, true},
		{"info skips debug", LevelInfo, func(l Logger) { l.Debug("test") }, false},
		{"info logs info", LevelInfo, func(l Logger) { l.Info("test") }, true},
		{"warn skips info", LevelWarn, func(l Logger) { l.Info("test") }, false},
		{"warn logs warn", LevelWarn, func(l Logger) { l.Warn("test") }, true},
		{"error skips warn", LevelError, func(l Logger) { l.Warn("test") }, false},
		{"error logs error", LevelError, func(l Logger) { l.Error("test") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr := capture(t, func() {
				l, err := NewTextLogger(tt.level)
				require.NoError(t, err)

				tt.logFn(l)
			})

			require.Equal(t, tt.isLogged, len(stderr) > 0)
		})
	}
}

func TestLogger_WithAndGroup(t *testing.T) {
	_, stderr := capture(t, func() {
		l, err := NewTextLogger(LevelInfo)
		require.NoError(t, err)

		l.With("component", "auth").WithGroup("req").Info("test message", "id", 7)
	})

	require.Contains(t, stderr, "component=auth")
	require.Contains(t, stderr, "req.id=7")
	require.Contains(t, stderr, "test message")
}
