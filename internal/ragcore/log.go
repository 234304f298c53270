package ragcore

import (
	"os"

	"github.com/rs/zerolog"
)

// LogLevel represents the severity of a log message. Higher values are more
// verbose.
type LogLevel int

const (
	LogLevelOff LogLevel = iota
	LogLevelError
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// Logger is the structured logging interface every ragline component writes
// through. No component calls fmt.Println or the stdlib log package
// directly.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	SetLevel(level LogLevel)
}

// zerologLogger adapts zerolog.Logger to the Logger interface, translating
// the variadic key-value pairs used throughout this package into zerolog's
// structured fields.
type zerologLogger struct {
	logger zerolog.Logger
	level  LogLevel
}

// NewLogger creates a Logger backed by zerolog, writing JSON lines to
// os.Stderr at the given level.
func NewLogger(level LogLevel) Logger {
	zl := zerolog.New(os.Stderr).With().Timestamp().Logger()
	return &zerologLogger{logger: zl, level: level}
}

func (l *zerologLogger) SetLevel(level LogLevel) { l.level = level }

func (l *zerologLogger) event(lvl LogLevel, msg string, kv []interface{}) {
	if lvl > l.level {
		return
	}
	var ev *zerolog.Event
	switch lvl {
	case LogLevelDebug:
		ev = l.logger.Debug()
	case LogLevelInfo:
		ev = l.logger.Info()
	case LogLevelWarn:
		ev = l.logger.Warn()
	case LogLevelError:
		ev = l.logger.Error()
	default:
		return
	}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, kv[i+1])
	}
	ev.Msg(msg)
}

func (l *zerologLogger) Debug(msg string, kv ...interface{}) { l.event(LogLevelDebug, msg, kv) }
func (l *zerologLogger) Info(msg string, kv ...interface{})  { l.event(LogLevelInfo, msg, kv) }
func (l *zerologLogger) Warn(msg string, kv ...interface{})  { l.event(LogLevelWarn, msg, kv) }
func (l *zerologLogger) Error(msg string, kv ...interface{}) { l.event(LogLevelError, msg, kv) }

// GlobalLogger is the package-level logger instance used when a component is
// constructed without an explicit Logger option.
var GlobalLogger Logger

func init() {
	GlobalLogger = NewLogger(LogLevelInfo)
}

// SetGlobalLogLevel adjusts the verbosity of GlobalLogger.
func SetGlobalLogLevel(level LogLevel) {
	GlobalLogger.SetLevel(level)
}
