// Package logging sets up the slog and zerolog loggers of the map process.
package logging

import (
	"fmt"
	"path/filepath"
	"time"
)

// LogFilePath builds the session log file path, e.g.
// logs/geotag_map.20260212_213836.log.
func LogFilePath(logsDir, name string, sessionStart time.Time) string {
	return filepath.Join(
		logsDir,
		fmt.Sprintf("%s.%s.log", name, sessionStart.Format("20060102_150405")),
	)
}
