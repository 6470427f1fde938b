package otel

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/fibs-geotag/mapsync/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	otellog "go.opentelemetry.io/otel/log"
)

func TestNew_Disabled(t *testing.T) {
	p, err := New(Config{Enabled: false, LogWriter: &bytes.Buffer{}})
	require.NoError(t, err)

	assert.False(t, p.Enabled())
	assert.Nil(t, p.LoggerProvider())
	assert.NoError(t, p.Flush(context.Background()))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNew_EnabledWithoutOutput(t *testing.T) {
	_, err := New(Config{Enabled: true, ServiceName: "geotag-map"})
	assert.ErrorIs(t, err, ErrNoExporter)
}

func TestNew_FileExporter(t *testing.T) {
	var buf bytes.Buffer
	p, err := New(Config{
		Enabled:        true,
		ServiceName:    "geotag-map",
		ServiceVersion: "1.2.3",
		BatchTimeout:   time.Second,
		LogWriter:      &buf,
	})
	require.NoError(t, err)
	require.True(t, p.Enabled())

	var rec otellog.Record
	rec.SetBody(otellog.StringValue("image 4 moved"))
	p.LoggerProvider().Logger("test").Emit(context.Background(), rec)

	require.NoError(t, p.Flush(context.Background()))
	assert.Contains(t, buf.String(), "image 4 moved")
	assert.Contains(t, buf.String(), "1.2.3")
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestConfigFrom(t *testing.T) {
	var buf bytes.Buffer
	cfg := ConfigFrom(config.OTelConfig{
		Enabled:     true,
		ServiceName: "geotag-map",
		Endpoint:    "localhost:4318",
		Insecure:    true,
	}, &buf)

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "geotag-map", cfg.ServiceName)
	assert.Equal(t, defaultBatchTimeout, cfg.BatchTimeout)
	assert.Equal(t, "localhost:4318", cfg.Endpoint)
	assert.True(t, cfg.Insecure)
	assert.Same(t, &buf, cfg.LogWriter.(*bytes.Buffer))

	cfg = ConfigFrom(config.OTelConfig{BatchTimeout: 2 * time.Second}, nil)
	assert.Equal(t, 2*time.Second, cfg.BatchTimeout)
}
