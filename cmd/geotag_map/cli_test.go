package main

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fibs-geotag/mapsync/pkg/core"
)

func TestWriteRequests(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeRequests(&buf, nil))
	assert.JSONEq(t, `[]`, buf.String())

	buf.Reset()
	sent := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, writeRequests(&buf, []core.RequestRecord{
		{Kind: core.RequestUpdate, ImageID: 3, Path: "/geotag", Query: "id=3", OK: true, SentAt: sent},
	}))

	var got []core.RequestRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].ImageID)
	assert.True(t, got[0].SentAt.Equal(sent))
}

func TestExportRequests_NoJournal(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("storage.type", "none")

	assert.ErrorIs(t, exportRequests("", 10), errNoJournal)
}

func TestExportRequests_Gzip(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("storage.type", "memory")

	path := filepath.Join(t.TempDir(), "requests.json.gz")
	require.NoError(t, exportRequests(path, 10))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)

	var got []core.RequestRecord
	require.NoError(t, json.NewDecoder(gz).Decode(&got))
	assert.Empty(t, got)
}
