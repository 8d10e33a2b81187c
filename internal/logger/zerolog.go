package logger

import (
	"io"

	"github.com/rs/zerolog"
)

// ZerologAdapter is the Logger used by the odometer binaries
type ZerologAdapter struct {
	logger zerolog.Logger
}

func NewZerolog(writer io.Writer, level LogLevel) *ZerologAdapter {
	return &ZerologAdapter{
		logger: zerolog.New(writer).
			Level(zerologLevel(level)).
			With().
			Timestamp().
			Logger(),
	}
}

// New picks the JSON or console encoding for writer
func New(writer io.Writer, level LogLevel, useJSON bool) *ZerologAdapter {
	if useJSON {
		return NewZerolog(writer, level)
	}
	return NewZerolog(zerolog.ConsoleWriter{Out: writer, NoColor: true, TimeFormat: "15:04:05.000"}, level)
}

func (z *ZerologAdapter) Debug(component, message string, fields map[string]interface{}) {
	emit(z.logger.Debug(), component, fields).Msg(message)
}

func (z *ZerologAdapter) Info(component, message string, fields map[string]interface{}) {
	emit(z.logger.Info(), component, fields).Msg(message)
}

func (z *ZerologAdapter) Warning(component, message string, fields map[string]interface{}) {
	emit(z.logger.Warn(), component, fields).Msg(message)
}

func (z *ZerologAdapter) Error(component string, err error, fields map[string]interface{}) {
	emit(z.logger.Error(), component, fields).Err(err).Msg(component + " failed")
}

// emit is nil safe, zerolog returns a nil event for disabled levels
func emit(event *zerolog.Event, component string, fields map[string]interface{}) *zerolog.Event {
	if event == nil {
		return nil
	}
	return event.Str("component", component).Fields(fields)
}

func zerologLevel(level LogLevel) zerolog.Level {
	switch level {
	case DebugLevel:
		return zerolog.DebugLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
