package logging

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// NewZerolog returns a timestamped JSON zerolog logger at the given level
// name. Unknown names mean info.
func NewZerolog(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// EventLogger adapts zerolog.Logger to the dispatcher.Logger interface.
type EventLogger struct {
	logger zerolog.Logger
}

// NewEventLogger creates a new EventLogger wrapping a zerolog.Logger.
func NewEventLogger(logger zerolog.Logger) *EventLogger {
	return &EventLogger{logger: logger}
}

// Debug logs a debug message with optional key-value pairs.
func (l *EventLogger) Debug(msg string, keysAndValues ...any) {
	l.logger.Debug().Fields(toFields(keysAndValues)).Msg(msg)
}

// Info logs an info message with optional key-value pairs.
func (l *EventLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Info().Fields(toFields(keysAndValues)).Msg(msg)
}

// Error logs an error message with optional key-value pairs.
func (l *EventLogger) Error(msg string, keysAndValues ...any) {
	l.logger.Error().Fields(toFields(keysAndValues)).Msg(msg)
}

// toFields converts key-value pairs to a map for zerolog. A trailing key
// without value and non-string keys are dropped.
func toFields(keysAndValues []any) map[string]any {
	fields := make(map[string]any, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			fields[key] = keysAndValues[i+1]
		}
	}
	return fields
}
