package storage

import (
	"fmt"
	"log/slog"

	"github.com/fibs-geotag/mapsync/internal/config"
	"github.com/fibs-geotag/mapsync/internal/database"
	gormstorage "github.com/fibs-geotag/mapsync/internal/storage/gorm"
	"github.com/fibs-geotag/mapsync/internal/storage/memory"
)

// NewBackend creates a journal backend based on configuration. It returns
// nil for "none".
func NewBackend(cfg config.StorageConfig, logger *slog.Logger) (Backend, error) {
	switch cfg.Type {
	case "", "none":
		return nil, nil
	case "memory":
		return memory.New(), nil
	case "sqlite":
		db, err := database.GetSqliteDBStandalone(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite journal: %w", err)
		}
		return gormstorage.New(gormstorage.Dependencies{
			DB:           db,
			Logger:       logger,
			DumpPath:     cfg.SQLite.DumpPath,
			DumpInterval: cfg.SQLite.DumpInterval,
		}), nil
	case "postgres":
		db, err := database.GetPostgresDBStandalone()
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres journal: %w", err)
		}
		return gormstorage.New(gormstorage.Dependencies{DB: db, Logger: logger}), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
