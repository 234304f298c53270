// Package ragline provides a high-level logging interface for the data
// plane, built on top of internal/ragcore's zerolog-backed logger. It
// offers:
//   - Multiple severity levels (Debug, Info, Warn, Error)
//   - Structured logging with key-value pairs
//   - Global log level control
package ragline

import (
	"github.com/ragline/ragline/internal/ragcore"
)

// LogLevel represents the severity of a log message. Higher levels include
// messages from all lower levels.
type LogLevel = ragcore.LogLevel

const (
	LogLevelOff   = ragcore.LogLevelOff
	LogLevelError = ragcore.LogLevelError
	LogLevelWarn  = ragcore.LogLevelWarn
	LogLevelInfo  = ragcore.LogLevelInfo
	LogLevelDebug = ragcore.LogLevelDebug
)

// Logger is the structured logging interface every component writes
// through. Pass a custom implementation via a component's logger option to
// route logs elsewhere.
type Logger = ragcore.Logger

// NewLogger builds the default zerolog-backed Logger at the given level.
func NewLogger(level LogLevel) Logger {
	return ragcore.NewLogger(level)
}

// SetLogLevel sets the level of the package-wide default logger used by
// components constructed without an explicit logger option.
func SetLogLevel(level LogLevel) {
	ragcore.SetGlobalLogLevel(level)
}

// Debug logs a message at debug level on the package-wide default logger.
func Debug(msg string, keysAndValues ...interface{}) {
	ragcore.GlobalLogger.Debug(msg, keysAndValues...)
}

// Info logs a message at info level on the package-wide default logger.
func Info(msg string, keysAndValues ...interface{}) {
	ragcore.GlobalLogger.Info(msg, keysAndValues...)
}

// Warn logs a message at warning level on the package-wide default logger.
func Warn(msg string, keysAndValues ...interface{}) {
	ragcore.GlobalLogger.Warn(msg, keysAndValues...)
}

// Error logs a message at error level on the package-wide default logger.
func Error(msg string, keysAndValues ...interface{}) {
	ragcore.GlobalLogger.Error(msg, keysAndValues...)
}
