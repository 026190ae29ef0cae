// Package logging provides the process-wide structured logger.
//
// Log lines go to stderr so that JSON command output on stdout stays machine-readable.
package logging

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// Params configures the logger.
type Params struct {
	Debug  bool
	Output io.Writer // defaults to os.Stderr
}

var current atomic.Pointer[log.Logger]

func init() {
	current.Store(newLogger(Params{}))
}

// Init replaces the process-wide logger.
func Init(params Params) {
	current.Store(newLogger(params))
}

func newLogger(params Params) *log.Logger {
	out := params.Output
	if out == nil {
		out = os.Stderr
	}
	level := log.InfoLevel
	if params.Debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		Level:           level,
		Prefix:          "citegraph",
	})
}

// Logger returns the current logger.
func Logger() *log.Logger {
	return current.Load()
}

// With returns a child logger carrying the given key-value pairs.
func With(keyvals ...any) *log.Logger {
	return current.Load().With(keyvals...)
}

// Debug writes a message at DEBUG level.
func Debug(message string, keyvals ...any) {
	current.Load().Debug(message, keyvals...)
}

// Info writes a message at INFO level.
func Info(message string, keyvals ...any) {
	current.Load().Info(message, keyvals...)
}

// Warn writes a message at WARN level.
func Warn(message string, keyvals ...any) {
	current.Load().Warn(message, keyvals...)
}

// Error writes a message at ERROR level.
func Error(message string, keyvals ...any) {
	current.Load().Error(message, keyvals...)
}
