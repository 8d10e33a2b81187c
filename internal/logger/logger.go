package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	default:
		return "unknown"
	}
}

// ParseLevel maps a level name to a LogLevel. The empty string means info.
func ParseLevel(name string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return DebugLevel, nil
	case "", "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return InfoLevel, fmt.Errorf("unknown log level %q", name)
	}
}

// Logger provides structured logging tagged with the emitting component
type Logger interface {
	Debug(component, message string, fields map[string]interface{})
	Info(component, message string, fields map[string]interface{})
	Warning(component, message string, fields map[string]interface{})
	Error(component string, err error, fields map[string]interface{})
}

// StructuredLogger writes through log/slog
type StructuredLogger struct {
	logger *slog.Logger
	level  LogLevel
}

func NewStructuredLogger(writer io.Writer, level LogLevel, useJSON bool) *StructuredLogger {
	opts := &slog.HandlerOptions{
		Level: slogLevel(level),
	}

	var handler slog.Handler
	if useJSON {
		handler = slog.NewJSONHandler(writer, opts)
	} else {
		handler = slog.NewTextHandler(writer, opts)
	}

	return &StructuredLogger{
		logger: slog.New(handler),
		level:  level,
	}
}

func (l *StructuredLogger) Debug(component, message string, fields map[string]interface{}) {
	if l.level > DebugLevel {
		return
	}
	l.logWithFields(slog.LevelDebug, component, message, fields)
}

func (l *StructuredLogger) Info(component, message string, fields map[string]interface{}) {
	if l.level > InfoLevel {
		return
	}
	l.logWithFields(slog.LevelInfo, component, message, fields)
}

func (l *StructuredLogger) Warning(component, message string, fields map[string]interface{}) {
	if l.level > WarnLevel {
		return
	}
	l.logWithFields(slog.LevelWarn, component, message, fields)
}

func (l *StructuredLogger) Error(component string, err error, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	if err != nil {
		fields["error"] = err.Error()
	}

	l.logWithFields(slog.LevelError, component, "operation failed", fields)
}

func (l *StructuredLogger) logWithFields(level slog.Level, component, message string, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2+2)
	args = append(args, "component", component)
	for k, v := range fields {
		args = append(args, k, v)
	}
	l.logger.Log(context.Background(), level, message, args...)
}

func slogLevel(level LogLevel) slog.Level {
	switch level {
	case DebugLevel:
		return slog.LevelDebug
	case WarnLevel:
		return slog.LevelWarn
	case ErrorLevel:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NoOpLogger discards everything
type NoOpLogger struct{}

func (NoOpLogger) Debug(component, message string, fields map[string]interface{})   {}
func (NoOpLogger) Info(component, message string, fields map[string]interface{})    {}
func (NoOpLogger) Warning(component, message string, fields map[string]interface{}) {}
func (NoOpLogger) Error(component string, err error, fields map[string]interface{}) {}
