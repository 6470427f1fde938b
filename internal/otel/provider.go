// Package otel builds the OpenTelemetry log provider behind the slog bridge.
// Records go to the session log file and, when an endpoint is set, to an
// OTLP/HTTP collector.
package otel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fibs-geotag/mapsync/internal/config"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// ErrNoExporter is returned when OTel is enabled with neither a log writer
// nor an endpoint.
var ErrNoExporter = errors.New("OTel enabled but no log writer or endpoint configured")

const defaultBatchTimeout = 5 * time.Second

// Config holds OTel configuration
type Config struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	BatchTimeout   time.Duration
	LogWriter      io.Writer // receives pretty-printed records
	Endpoint       string    // OTLP/HTTP host:port, optional
	Insecure       bool
}

// ConfigFrom combines the otel.* settings with the writer that receives the
// exported records.
func ConfigFrom(c config.OTelConfig, logWriter io.Writer) Config {
	timeout := c.BatchTimeout
	if timeout <= 0 {
		timeout = defaultBatchTimeout
	}
	return Config{
		Enabled:      c.Enabled,
		ServiceName:  c.ServiceName,
		BatchTimeout: timeout,
		LogWriter:    logWriter,
		Endpoint:     c.Endpoint,
		Insecure:     c.Insecure,
	}
}

// Provider owns the log provider. A disabled Provider is a no-op.
type Provider struct {
	logProvider *sdklog.LoggerProvider
}

// New builds the provider. With cfg.Enabled false it returns a no-op
// provider and never fails.
func New(cfg Config) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{}, nil
	}

	ctx := context.Background()
	attrs := []resource.Option{resource.WithAttributes(semconv.ServiceName(cfg.ServiceName))}
	if cfg.ServiceVersion != "" {
		attrs = append(attrs, resource.WithAttributes(semconv.ServiceVersion(cfg.ServiceVersion)))
	}
	res, err := resource.New(ctx, attrs...)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exporters, err := newExporters(ctx, cfg)
	if err != nil {
		return nil, err
	}

	opts := []sdklog.LoggerProviderOption{sdklog.WithResource(res)}
	for _, exp := range exporters {
		opts = append(opts, sdklog.WithProcessor(
			sdklog.NewBatchProcessor(exp, sdklog.WithExportTimeout(cfg.BatchTimeout)),
		))
	}
	return &Provider{logProvider: sdklog.NewLoggerProvider(opts...)}, nil
}

func newExporters(ctx context.Context, cfg Config) ([]sdklog.Exporter, error) {
	var out []sdklog.Exporter

	if cfg.LogWriter != nil {
		exp, err := stdoutlog.New(stdoutlog.WithWriter(cfg.LogWriter), stdoutlog.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("failed to create file log exporter: %w", err)
		}
		out = append(out, exp)
	}

	if cfg.Endpoint != "" {
		opts := []otlploghttp.Option{otlploghttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlploghttp.WithInsecure())
		}
		exp, err := otlploghttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP log exporter: %w", err)
		}
		out = append(out, exp)
	}

	if len(out) == 0 {
		return nil, ErrNoExporter
	}
	return out, nil
}

// LoggerProvider returns the log provider for the otelslog bridge, or nil
// when disabled.
func (p *Provider) LoggerProvider() *sdklog.LoggerProvider {
	return p.logProvider
}

// Enabled reports whether records are exported.
func (p *Provider) Enabled() bool {
	return p.logProvider != nil
}

// Flush exports pending records.
func (p *Provider) Flush(ctx context.Context) error {
	if p.logProvider == nil {
		return nil
	}
	if err := p.logProvider.ForceFlush(ctx); err != nil {
		return fmt.Errorf("log flush failed: %w", err)
	}
	return nil
}

// Shutdown flushes and stops the exporters. Call it once on exit.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.logProvider == nil {
		return nil
	}
	if err := p.logProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("log shutdown failed: %w", err)
	}
	return nil
}
