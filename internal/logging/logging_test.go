package logging

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogFilePath(t *testing.T) {
	sessionStart := time.Date(2026, 2, 12, 21, 38, 36, 0, time.UTC)

	tests := []struct {
		desc    string
		logsDir string
		base    string
		want    string
	}{
		{
			desc:    "basic path",
			logsDir: "logs",
			base:    "geotag_map",
			want:    filepath.Join("logs", "geotag_map.20260212_213836.log"),
		},
		{
			desc:    "relative path with dot",
			logsDir: "./logs",
			base:    "geotag_map",
			want:    filepath.Join(".", "logs", "geotag_map.20260212_213836.log"),
		},
		{
			desc:    "absolute path",
			logsDir: filepath.Join("/var", "log", "geotag"),
			base:    "geotag_map",
			want:    filepath.Join("/var", "log", "geotag", "geotag_map.20260212_213836.log"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got := LogFilePath(tt.logsDir, tt.base, sessionStart)
			assert.Equal(t, tt.want, got)
		})
	}
}
