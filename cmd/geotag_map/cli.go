package main

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fibs-geotag/mapsync/internal/config"
	"github.com/fibs-geotag/mapsync/internal/storage"
	"github.com/fibs-geotag/mapsync/pkg/core"
)

var errNoJournal = errors.New("request journal disabled (storage.type is none)")

// exportRequests writes the newest journaled requests as JSON to path, or to
// stdout when path is empty. A .gz suffix compresses the output.
func exportRequests(path string, limit int) error {
	journal, err := storage.NewBackend(config.GetStorageConfig(), slog.New(slog.NewTextHandler(os.Stderr, nil)))
	if err != nil {
		return err
	}
	if journal == nil {
		return errNoJournal
	}
	if err := journal.Init(); err != nil {
		return fmt.Errorf("failed to open request journal: %w", err)
	}
	defer journal.Close()

	records, err := journal.RecentRequests(limit)
	if err != nil {
		return fmt.Errorf("failed to read requests: %w", err)
	}

	if path == "" {
		return writeRequests(os.Stdout, records)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var w io.Writer = f
	if strings.HasSuffix(path, ".gz") {
		gz := gzip.NewWriter(f)
		defer gz.Close()
		w = gz
	}
	if err := writeRequests(w, records); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %d requests to %s\n", len(records), path)
	return nil
}

func writeRequests(w io.Writer, records []core.RequestRecord) error {
	if records == nil {
		records = []core.RequestRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
