// Package log holds the process-wide logger. Output goes to stderr so stdout
// stays reserved for device documents.
package log

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/paularlott/logger"
	logslog "github.com/paularlott/logger/slog"
)

type holder struct {
	logger logger.Logger
}

var current atomic.Pointer[holder]

func init() {
	Configure("info", "console")
}

// Configure sets the process-wide logger. Level is one of trace, debug, info,
// warn or error; format is console or json.
func Configure(level, format string) {
	ConfigureWriter(os.Stderr, level, format)
}

// ConfigureWriter is Configure with an explicit destination.
func ConfigureWriter(w io.Writer, level, format string) {
	SetLogger(logslog.New(logslog.Config{
		Level:  level,
		Format: format,
		Writer: w,
	}))
}

// SetLogger replaces the process-wide logger.
func SetLogger(l logger.Logger) {
	if l == nil {
		l = logger.NewNullLogger()
	}
	current.Store(&holder{logger: l})
}

// Logger returns the current process-wide logger.
func Logger() logger.Logger {
	return current.Load().logger
}

func Trace(msg string, keysAndValues ...any) {
	Logger().Trace(msg, keysAndValues...)
}

func Debug(msg string, keysAndValues ...any) {
	Logger().Debug(msg, keysAndValues...)
}

func Info(msg string, keysAndValues ...any) {
	Logger().Info(msg, keysAndValues...)
}

func Warn(msg string, keysAndValues ...any) {
	Logger().Warn(msg, keysAndValues...)
}

func Error(msg string, keysAndValues ...any) {
	Logger().Error(msg, keysAndValues...)
}
