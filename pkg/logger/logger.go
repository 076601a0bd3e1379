// Package logger provides the daemon's structured logger, a thin
// facade over charmbracelet/log that keeps a stable Field-based API
// so call sites never import the backend directly.
package logger

import (
	"io"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

// Config holds logger configuration.
type Config struct {
	Level  string
	Format string // "text" or "json"
	Output io.Writer
}

// Logger is a structured logger.
type Logger struct {
	backend *charmlog.Logger
}

// Field is a structured logging field.
type Field struct {
	Key   string
	Value interface{}
}

// New creates a new logger.
func New(cfg Config) *Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	backend := charmlog.NewWithOptions(output, charmlog.Options{
		Level:           parseLevel(cfg.Level),
		Formatter:       parseFormatter(cfg.Format),
		ReportTimestamp: true,
	})

	return &Logger{backend: backend}
}

// WithComponent creates a child logger with a component prefix.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{backend: l.backend.WithPrefix(component)}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...Field) { l.backend.Debug(msg, toArgs(fields)...) }

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...Field) { l.backend.Info(msg, toArgs(fields)...) }

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...Field) { l.backend.Warn(msg, toArgs(fields)...) }

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...Field) { l.backend.Error(msg, toArgs(fields)...) }

func toArgs(fields []Field) []interface{} {
	args := make([]interface{}, 0, len(fields)*2)
	for _, f := range fields {
		args = append(args, f.Key, f.Value)
	}
	return args
}

func parseLevel(level string) charmlog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return charmlog.DebugLevel
	case "warn", "warning":
		return charmlog.WarnLevel
	case "error":
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

func parseFormatter(format string) charmlog.Formatter {
	if strings.ToLower(format) == "json" {
		return charmlog.JSONFormatter
	}
	return charmlog.TextFormatter
}

// Field constructors

// String creates a string field.
func String(key, val string) Field { return Field{Key: key, Value: val} }

// Int creates an int field.
func Int(key string, val int) Field { return Field{Key: key, Value: val} }

// Int64 creates an int64 field.
func Int64(key string, val int64) Field { return Field{Key: key, Value: val} }

// Uint64 creates a uint64 field.
func Uint64(key string, val uint64) Field { return Field{Key: key, Value: val} }

// Bool creates a bool field.
func Bool(key string, val bool) Field { return Field{Key: key, Value: val} }

// Uint creates a uint field.
func Uint(key string, val uint) Field { return Field{Key: key, Value: val} }

// Uint32 creates a uint32 field.
func Uint32(key string, val uint32) Field { return Field{Key: key, Value: val} }

// Float64 creates a float64 field.
func Float64(key string, val float64) Field { return Field{Key: key, Value: val} }

// Error creates an error field.
func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: "nil"}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Any creates a field with any value.
func Any(key string, val interface{}) Field { return Field{Key: key, Value: val} }
