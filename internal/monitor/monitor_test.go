package monitor

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStart_RequestsPeriodically(t *testing.T) {
	var requests atomic.Int32
	s := NewService(Dependencies{
		Interval: 5 * time.Millisecond,
		Request:  func() { requests.Add(1) },
	})

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	require.NoError(t, s.Start(), "second start is a no-op")

	assert.Eventually(t, func() bool { return requests.Load() >= 2 }, time.Second, 5*time.Millisecond)

	s.Stop()
	assert.False(t, s.IsRunning())
}

func TestStart_NeedsIntervalAndRequest(t *testing.T) {
	assert.Error(t, NewService(Dependencies{Request: func() {}}).Start())
	assert.Error(t, NewService(Dependencies{Interval: time.Second}).Start())
}

func TestStop_NotRunning(t *testing.T) {
	s := NewService(Dependencies{})
	s.Stop()
	assert.False(t, s.IsRunning())
}

func TestReport_LogsAndWritesFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "status.json")
	s := NewService(Dependencies{
		Logger:     slog.New(slog.NewTextHandler(&buf, nil)),
		StatusPath: path,
	})

	s.Report(Status{Images: 3, Positioned: 2, ActiveImage: 7, Tracks: 1})

	assert.Contains(t, buf.String(), "images=3")
	assert.Contains(t, buf.String(), "activeImage=7")

	last, n := s.Last()
	assert.Equal(t, 1, n)
	assert.Equal(t, 2, last.Positioned)
	assert.False(t, last.Time.IsZero())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk Status
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, 3, onDisk.Images)
	assert.Equal(t, 1, onDisk.Tracks)
}
