package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// ServiceName is the OTel instrumentation scope of the map logger.
const ServiceName = "geotag-map"

// console is where records go when no log file is given. Swapped by tests.
var console io.Writer = os.Stdout

// SlogManager builds the process slog.Logger: a text log to the session file
// (or the console), mirrored into OTel when a provider is set.
type SlogManager struct {
	logger      *slog.Logger
	logProvider *sdklog.LoggerProvider
	state       ContextProvider
}

func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// ParseLevel accepts slog level names in any case, including offsets such as
// "warn+2". Anything else is info.
func ParseLevel(level string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// SetContextProvider adds attributes from p to every record logged after the
// next Setup.
func (m *SlogManager) SetContextProvider(p ContextProvider) {
	m.state = p
}

// Setup replaces the logger. Console output is used only when file is nil; a
// nil provider disables OTel.
func (m *SlogManager) Setup(file io.Writer, level string, provider *sdklog.LoggerProvider) {
	m.logProvider = provider

	out := file
	if out == nil {
		out = console
	}
	handlers := []slog.Handler{
		slog.NewTextHandler(out, &slog.HandlerOptions{Level: ParseLevel(level), ReplaceAttr: utcTime}),
	}
	if provider != nil {
		handlers = append(handlers, otelslog.NewHandler(ServiceName, otelslog.WithLoggerProvider(provider)))
	}

	var handler slog.Handler = newFanout(handlers...)
	if m.state != nil {
		handler = &stateHandler{next: handler, provider: m.state}
	}

	m.logger = slog.New(handler)
	m.logger.Info("Logging initialized", "level", ParseLevel(level).String())
}

// utcTime renders record times as RFC3339 in UTC.
func utcTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.TimeKey {
		return a
	}
	if t, ok := a.Value.Any().(time.Time); ok {
		a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
	}
	return a
}

// Logger returns the configured logger, or slog.Default before Setup.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// Flush forces a flush of OTel logs if available.
func (m *SlogManager) Flush(ctx context.Context) error {
	if m.logProvider == nil {
		return nil
	}
	return m.logProvider.ForceFlush(ctx)
}
