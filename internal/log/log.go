// Package log is the process-wide structured logger. Level and color come
// from the environment so every subcommand behaves the same.
package log

import (
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

// Environment knobs.
const (
	EnvLogLevel = "RUSTYHOOK_LOG_LEVEL"
	EnvNoColor  = "RUSTYHOOK_NO_COLOR"
)

var logger = newLogger()

func newLogger() *charmlog.Logger {
	l := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: false,
	})
	l.SetLevel(levelFromEnv())
	if os.Getenv(EnvNoColor) != "" {
		l.SetColorProfile(termenv.Ascii)
	}
	return l
}

func levelFromEnv() charmlog.Level {
	switch os.Getenv(EnvLogLevel) {
	case "debug":
		return charmlog.DebugLevel
	case "info":
		return charmlog.InfoLevel
	case "warn":
		return charmlog.WarnLevel
	case "error":
		return charmlog.ErrorLevel
	default:
		return charmlog.WarnLevel
	}
}

// Reconfigure re-reads the environment; tests use it after t.Setenv.
func Reconfigure() {
	logger = newLogger()
}

// Debug logs at debug level with optional key-value pairs.
func Debug(msg string, keyvals ...any) { logger.Debug(msg, keyvals...) }

// Info logs at info level with optional key-value pairs.
func Info(msg string, keyvals ...any) { logger.Info(msg, keyvals...) }

// Warn logs at warn level with optional key-value pairs.
func Warn(msg string, keyvals ...any) { logger.Warn(msg, keyvals...) }

// Error logs at error level with optional key-value pairs.
func Error(msg string, keyvals ...any) { logger.Error(msg, keyvals...) }
