package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

func withConsole(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	orig := console
	console = &buf
	t.Cleanup(func() { console = orig })
	return &buf
}

func TestSetup_Destination(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		stdout := withConsole(t)
		var file bytes.Buffer
		m := NewSlogManager()
		m.Setup(&file, "info", nil)
		m.Logger().Info("image placed")

		assert.Contains(t, file.String(), "image placed")
		assert.Empty(t, stdout.String())
	})

	t.Run("console", func(t *testing.T) {
		stdout := withConsole(t)
		m := NewSlogManager()
		m.Setup(nil, "info", nil)
		m.Logger().Info("image placed")

		assert.Contains(t, stdout.String(), "image placed")
	})
}

func TestSetup_Level(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "warn", nil)

	m.Logger().Info("tracks loaded")
	m.Logger().Warn("tracks fetch failed")

	assert.NotContains(t, buf.String(), "tracks loaded")
	assert.Contains(t, buf.String(), "tracks fetch failed")
	assert.Contains(t, buf.String(), "level=WARN")
}

func TestSetup_ReplacesLogger(t *testing.T) {
	var first, second bytes.Buffer
	m := NewSlogManager()

	m.Setup(&first, "info", nil)
	m.Setup(&second, "info", nil)
	m.Logger().Info("after reload")

	assert.NotContains(t, first.String(), "after reload")
	assert.Contains(t, second.String(), "after reload")
}

func TestSetup_TimeIsUTC(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "info", nil)

	line := strings.SplitN(buf.String(), "\n", 2)[0]
	require.True(t, strings.HasPrefix(line, "time="))
	stamp := strings.Fields(line)[0]
	assert.True(t, strings.HasSuffix(stamp, "Z"), stamp)
}

func TestLogger_DefaultBeforeSetup(t *testing.T) {
	assert.Equal(t, slog.Default(), NewSlogManager().Logger())
}

func TestSetup_MapState(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	active := int64(0)
	m.SetContextProvider(func() []slog.Attr {
		if active == 0 {
			return nil
		}
		return []slog.Attr{slog.Int64("activeImage", active), slog.Int("images", 2)}
	})
	m.Setup(&buf, "info", nil)

	m.Logger().Info("no active image")
	active = 7
	m.Logger().With("component", "sync").Info("marker dragged")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.NotContains(t, lines[1], "map.")
	assert.Contains(t, lines[2], "component=sync")
	assert.Contains(t, lines[2], "map.activeImage=7")
	assert.Contains(t, lines[2], "map.images=2")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"Warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"warn+2", slog.LevelWarn + 2},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (failingHandler) Handle(context.Context, slog.Record) error {
	return errors.New("exporter down")
}

func TestFanout(t *testing.T) {
	var a, b bytes.Buffer
	info := slog.NewTextHandler(&a, &slog.HandlerOptions{Level: slog.LevelInfo})
	debug := slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelDebug})

	f := newFanout(nil, info, nil, debug)
	require.Len(t, f, 2)
	assert.True(t, f.Enabled(context.Background(), slog.LevelDebug))
	assert.False(t, newFanout().Enabled(context.Background(), slog.LevelInfo))

	slog.New(f.WithGroup("sync").WithAttrs([]slog.Attr{slog.Int("image", 3)})).Debug("moved")
	assert.Empty(t, a.String())
	assert.Contains(t, b.String(), "sync.image=3")
	assert.Equal(t, f, f.WithGroup(""))
}

func TestFanout_KeepsGoingOnError(t *testing.T) {
	var buf bytes.Buffer
	f := newFanout(failingHandler{}, slog.NewTextHandler(&buf, nil))

	err := f.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "settings sent", 0))
	assert.EqualError(t, err, "exporter down")
	assert.Contains(t, buf.String(), "settings sent")
}

func TestFlush(t *testing.T) {
	m := NewSlogManager()
	assert.NoError(t, m.Flush(context.Background()))

	var buf bytes.Buffer
	m.Setup(&buf, "info", sdklog.NewLoggerProvider())
	m.Logger().Info("otel mirrored")

	assert.Contains(t, buf.String(), "otel mirrored")
	assert.NoError(t, m.Flush(context.Background()))
}
