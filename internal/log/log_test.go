package log

import (
	"testing"

	charmlog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestLevelFromEnv(t *testing.T) {
	tests := []struct {
		value    string
		expected charmlog.Level
	}{
		{"debug", charmlog.DebugLevel},
		{"info", charmlog.InfoLevel},
		{"warn", charmlog.WarnLevel},
		{"error", charmlog.ErrorLevel},
		{"", charmlog.WarnLevel},
		{"bogus", charmlog.WarnLevel},
	}

	for _, tt := range tests {
		t.Setenv(EnvLogLevel, tt.value)
		assert.Equal(t, tt.expected, levelFromEnv(), "level %q", tt.value)
	}
}

func TestReconfigure(t *testing.T) {
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvNoColor, "1")
	Reconfigure()

	// The package-level helpers must not panic at any level.
	Debug("debug line", "k", "v")
	Info("info line")
	Warn("warn line")
	Error("error line")
}
