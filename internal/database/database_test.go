package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type probe struct {
	ID   uint `gorm:"primarykey"`
	Name string
}

func TestGetSqliteDBStandalone_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	db, err := GetSqliteDBStandalone(path)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&probe{}))
	require.NoError(t, db.Create(&probe{Name: "a"}).Error)

	var count int64
	require.NoError(t, db.Model(&probe{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestDumpMemoryDBToDisk(t *testing.T) {
	db, err := GetSqliteDBStandalone(filepath.Join(t.TempDir(), "src.db"))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&probe{}))
	require.NoError(t, db.Create(&probe{Name: "x"}).Error)

	out := filepath.Join(t.TempDir(), "dump.db")
	require.NoError(t, os.WriteFile(out, []byte("stale"), 0o644))

	require.NoError(t, DumpMemoryDBToDisk(db, out))

	dumped, err := GetSqliteDBStandalone(out)
	require.NoError(t, err)
	var got probe
	require.NoError(t, dumped.First(&got).Error)
	assert.Equal(t, "x", got.Name)
}

func TestDumpMemoryDBToDisk_NoPath(t *testing.T) {
	assert.Error(t, DumpMemoryDBToDisk(nil, ""))
}

func TestPostgresDSN(t *testing.T) {
	viper.Set("db.host", "db.local")
	viper.Set("db.port", "5432")
	viper.Set("db.username", "geo")
	viper.Set("db.password", "secret")
	viper.Set("db.database", "geotag")
	defer viper.Reset()

	assert.Equal(t, "host=db.local port=5432 user=geo password=secret dbname=geotag sslmode=disable", PostgresDSN())
}
