package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/fibs-geotag/mapsync/internal/app"
	"github.com/fibs-geotag/mapsync/internal/config"
	"github.com/fibs-geotag/mapsync/internal/dispatcher"
	"github.com/fibs-geotag/mapsync/internal/feed"
	"github.com/fibs-geotag/mapsync/internal/influx"
	"github.com/fibs-geotag/mapsync/internal/logging"
	"github.com/fibs-geotag/mapsync/internal/monitor"
	intOtel "github.com/fibs-geotag/mapsync/internal/otel"
	"github.com/fibs-geotag/mapsync/internal/render"
	"github.com/fibs-geotag/mapsync/internal/render/websocket"
	"github.com/fibs-geotag/mapsync/internal/storage"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// BuildDate can be set at build time via ldflags
var (
	Version   string = "0.0.1"
	BuildDate string = "unknown"

	BinaryName string = "geotag_map"
)

// closer is anything that must be shut down on exit.
type closer interface {
	Close() error
}

func main() {
	flags := pflag.NewFlagSet(BinaryName, pflag.ExitOnError)
	configDir := flags.String("config", ".", "directory containing "+config.FileName)
	flags.String("startup", "", "map page query string, e.g. \"images=1_2&direction=true\"")
	flags.String("log-level", "", "override logLevel")
	flags.String("renderer", "", "override renderer.type (recorder|websocket)")
	limit := flags.Int("limit", 20, "number of requests shown by the requests command")
	out := flags.String("out", "", "write requests to this file instead of stdout (.gz compresses)")
	_ = flags.Parse(os.Args[1:])

	if err := config.Load(*configDir); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config, using defaults: %v\n", err)
	}
	_ = viper.BindPFlag("startup", flags.Lookup("startup"))
	_ = viper.BindPFlag("logLevel", flags.Lookup("log-level"))
	_ = viper.BindPFlag("renderer.type", flags.Lookup("renderer"))

	command := "run"
	if flags.NArg() > 0 {
		command = flags.Arg(0)
	}

	var err error
	switch command {
	case "run":
		err = run()
	case "requests":
		err = exportRequests(*out, *limit)
	case "version":
		fmt.Printf("%s %s (built %s)\n", BinaryName, Version, BuildDate)
	default:
		err = fmt.Errorf("unknown command %q", command)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	sessionStart := time.Now()
	logLevel := config.GetString("logLevel")

	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs dir: %w", err)
	}
	logFilePath := logging.LogFilePath(logsDir, BinaryName, sessionStart)
	if _, err := os.Stat(logFilePath); err == nil {
		_ = os.Rename(logFilePath, logFilePath+".old")
	}
	logFile, err := os.OpenFile(logFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	otelCfg := intOtel.ConfigFrom(config.GetOTelConfig(), logFile)
	otelCfg.ServiceVersion = Version
	otelProvider, err := intOtel.New(otelCfg)
	if err != nil {
		return fmt.Errorf("failed to set up OpenTelemetry: %w", err)
	}

	// the state only exists once the runtime is built
	var current atomic.Pointer[app.State]
	slogManager := logging.NewSlogManager()
	slogManager.SetContextProvider(func() []slog.Attr {
		if s := current.Load(); s != nil {
			return s.LogAttrs()
		}
		return nil
	})
	slogManager.Setup(logFile, logLevel, otelProvider.LoggerProvider())
	logger := slogManager.Logger()
	logger.Info("Starting up", "version", Version, "buildDate", BuildDate, "logFile", logFilePath)

	var closers []closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				logger.Warn("Error during shutdown", "error", err)
			}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = slogManager.Flush(ctx)
		_ = otelProvider.Shutdown(ctx)
	}()

	backendCfg := config.GetBackendConfig()
	client := feed.New(backendCfg.URL, backendCfg.Timeout)
	checkBackend(client, logger)

	sinkOpts := []feed.SinkOption{feed.WithLogger(logger)}

	journal, err := storage.NewBackend(config.GetStorageConfig(), logger)
	if err != nil {
		return err
	}
	if journal != nil {
		if err := journal.Init(); err != nil {
			return fmt.Errorf("failed to init request journal: %w", err)
		}
		closers = append(closers, journal)
		sinkOpts = append(sinkOpts, feed.WithJournal(journal))
		logger.Info("Request journal enabled", "type", config.GetStorageConfig().Type)
	}

	eventLog := logging.NewZerolog(logFile, logLevel)
	influxManager := influx.NewManager(eventLog, config.GetInfluxConfig())
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 10*time.Second)
	err = influxManager.Connect(connectCtx)
	cancelConnect()
	switch {
	case errors.Is(err, influx.ErrDisabled):
	case err != nil:
		logger.Warn("Request telemetry unavailable", "error", err)
	default:
		closers = append(closers, influxManager)
		sinkOpts = append(sinkOpts, feed.WithTelemetry(influxManager))
	}

	sink, err := feed.NewAsyncSink(client, sinkOpts...)
	if err != nil {
		return err
	}
	sink.Start()
	closers = append(closers, closeFunc(func() error {
		sink.Close()
		return nil
	}))

	d, err := dispatcher.New(logging.NewEventLogger(eventLog))
	if err != nil {
		return err
	}
	closers = append(closers, closeFunc(func() error {
		d.Close()
		return nil
	}))

	startup := config.ParseStartup(config.GetString("startup"))
	renderer, ws := newRenderer(startup, d, logger)

	mon := monitor.NewService(monitor.Dependencies{
		Logger:     logger,
		Interval:   config.GetMonitorConfig().Interval,
		StatusPath: config.GetMonitorConfig().StatusPath,
		Request:    func() { d.Post(app.CmdStatus, nil) },
	})

	rt, err := app.NewRuntime(app.Dependencies{
		Startup:      startup,
		Labels:       config.GetLabels(),
		AppName:      config.GetString("appName"),
		Renderer:     renderer,
		Fetcher:      client,
		Updates:      sink,
		Settings:     sink,
		Dispatcher:   d,
		Logger:       logger,
		FetchTimeout: backendCfg.Timeout,
		Pending:      sink.Pending,
		OnStatus:     mon.Report,
	})
	if err != nil {
		return err
	}
	current.Store(rt.State())
	closers = append(closers, closeFunc(func() error {
		rt.Close()
		return nil
	}))

	if ws != nil {
		if err := ws.Init(); err != nil {
			return fmt.Errorf("failed to connect to map page bridge: %w", err)
		}
		closers = append(closers, ws)
	}

	if err := mon.Start(); err != nil {
		logger.Info("Status monitor disabled", "reason", err)
	} else {
		closers = append(closers, closeFunc(func() error {
			mon.Stop()
			return nil
		}))
	}

	logger.Info("Map started",
		"images", len(startup.ImageIDs),
		"showDirection", startup.ShowDirection,
		"mapType", startup.MapType,
	)
	rt.Start()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("Shutting down")
	if err := rt.Sync(); err != nil && !errors.Is(err, dispatcher.ErrClosed) {
		logger.Warn("Error draining event loop", "error", err)
	}
	return nil
}

// newRenderer picks the renderer from renderer.type. The websocket renderer
// is returned separately so the caller can connect it once handlers exist.
func newRenderer(startup config.Startup, d *dispatcher.Dispatcher, logger *slog.Logger) (render.Renderer, *websocket.Renderer) {
	cfg := config.GetRendererConfig()
	switch cfg.Type {
	case "websocket":
		ws := websocket.New(websocket.Config{
			URL:     cfg.URL,
			Secret:  cfg.Secret,
			AppName: config.GetString("appName"),
			MapType: startup.MapType,
		}, d.Post, logger)
		return ws, ws
	case "", "recorder":
		return render.NewRecorder(), nil
	default:
		logger.Warn("Unknown renderer type, using recorder", "type", cfg.Type)
		return render.NewRecorder(), nil
	}
}

func checkBackend(client *feed.Client, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Healthcheck(ctx); err != nil {
		logger.Warn("Geotag server not reachable", "url", client.BaseURL(), "error", err)
		return
	}
	logger.Info("Geotag server reachable", "url", client.BaseURL())
}

type closeFunc func() error

func (f closeFunc) Close() error { return f() }
