package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "geotag_map.cfg.json"

// BackendConfig points at the local geotag web server.
type BackendConfig struct {
	URL     string
	Timeout time.Duration
}

// RendererConfig selects the map renderer.
type RendererConfig struct {
	Type   string // recorder | websocket
	URL    string
	Secret string
}

// SQLiteConfig holds sqlite journal settings. An empty Path keeps the
// database in memory, optionally dumped to DumpPath every DumpInterval.
type SQLiteConfig struct {
	Path         string
	DumpPath     string
	DumpInterval time.Duration
}

// StorageConfig selects the request journal backend.
type StorageConfig struct {
	Type   string // none | memory | sqlite | postgres
	SQLite SQLiteConfig
}

// OTelConfig holds OpenTelemetry settings.
type OTelConfig struct {
	Enabled      bool
	ServiceName  string
	BatchTimeout time.Duration
	Endpoint     string
	Insecure     bool
}

// InfluxConfig holds request telemetry settings.
type InfluxConfig struct {
	Enabled    bool
	Host       string
	Port       string
	Protocol   string
	Token      string
	Org        string
	Bucket     string
	BackupPath string
}

// MonitorConfig holds the status monitor settings. A zero Interval disables it.
type MonitorConfig struct {
	Interval   time.Duration
	StatusPath string
}

// Labels are the menu texts. The character wrapped in <u></u> is the
// keyboard shortcut.
type Labels struct {
	Title         string
	ShowMenu      string
	HideMenu      string
	MouseZoom     string
	ShowTracks    string
	ShowWikipedia string
	CurrentImage  string
	NextImage     string
	PreviousImage string
	ShowAll       string
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")
	viper.SetDefault("appName", "Geotag")
	viper.SetDefault("startup", "")

	viper.SetDefault("backend.url", "http://localhost:4321")
	viper.SetDefault("backend.timeout", "30s")

	viper.SetDefault("renderer.type", "recorder")
	viper.SetDefault("renderer.url", "ws://localhost:4322/map")
	viper.SetDefault("renderer.secret", "")

	viper.SetDefault("storage.type", "none")
	viper.SetDefault("storage.sqlite.path", "")
	viper.SetDefault("storage.sqlite.dumpPath", "")
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "geotag")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "geotag-map")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "geotag-metrics")
	viper.SetDefault("influx.bucket", "geotag_requests")
	viper.SetDefault("influx.backupPath", "")

	viper.SetDefault("monitor.interval", "1m")
	viper.SetDefault("monitor.statusPath", "")

	viper.SetDefault("labels.title", "Geotag")
	viper.SetDefault("labels.showMenu", "Show <u>m</u>enu")
	viper.SetDefault("labels.hideMenu", "Hide <u>m</u>enu")
	viper.SetDefault("labels.mouseZoom", "Mouse wheel <u>z</u>oom")
	viper.SetDefault("labels.showTracks", "Show <u>t</u>racks")
	viper.SetDefault("labels.showWikipedia", "Show <u>W</u>ikipedia entries")
	viper.SetDefault("labels.currentImage", "<u>C</u>urrent image")
	viper.SetDefault("labels.nextImage", "<u>N</u>ext image")
	viper.SetDefault("labels.previousImage", "<u>P</u>revious image")
	viper.SetDefault("labels.showAll", "Show <u>a</u>ll images")
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetBackendConfig returns the geotag web server settings.
func GetBackendConfig() BackendConfig {
	return BackendConfig{
		URL:     viper.GetString("backend.url"),
		Timeout: viper.GetDuration("backend.timeout"),
	}
}

// GetRendererConfig returns the renderer settings.
func GetRendererConfig() RendererConfig {
	return RendererConfig{
		Type:   viper.GetString("renderer.type"),
		URL:    viper.GetString("renderer.url"),
		Secret: viper.GetString("renderer.secret"),
	}
}

// GetStorageConfig returns the request journal settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		SQLite: SQLiteConfig{
			Path:         viper.GetString("storage.sqlite.path"),
			DumpPath:     viper.GetString("storage.sqlite.dumpPath"),
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
		},
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetInfluxConfig returns the request telemetry settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:    viper.GetBool("influx.enabled"),
		Host:       viper.GetString("influx.host"),
		Port:       viper.GetString("influx.port"),
		Protocol:   viper.GetString("influx.protocol"),
		Token:      viper.GetString("influx.token"),
		Org:        viper.GetString("influx.org"),
		Bucket:     viper.GetString("influx.bucket"),
		BackupPath: viper.GetString("influx.backupPath"),
	}
}

// GetMonitorConfig returns the status monitor settings.
func GetMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Interval:   viper.GetDuration("monitor.interval"),
		StatusPath: viper.GetString("monitor.statusPath"),
	}
}

// GetLabels returns the menu labels.
func GetLabels() Labels {
	return Labels{
		Title:         viper.GetString("labels.title"),
		ShowMenu:      viper.GetString("labels.showMenu"),
		HideMenu:      viper.GetString("labels.hideMenu"),
		MouseZoom:     viper.GetString("labels.mouseZoom"),
		ShowTracks:    viper.GetString("labels.showTracks"),
		ShowWikipedia: viper.GetString("labels.showWikipedia"),
		CurrentImage:  viper.GetString("labels.currentImage"),
		NextImage:     viper.GetString("labels.nextImage"),
		PreviousImage: viper.GetString("labels.previousImage"),
		ShowAll:       viper.GetString("labels.showAll"),
	}
}
