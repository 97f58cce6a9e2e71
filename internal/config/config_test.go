package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BOOKHOUND_DATA_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:4723", cfg.DriverURL)
	assert.Equal(t, "English to Polish", cfg.LanguagePair)
	assert.Equal(t, 8011, cfg.Port)
	assert.False(t, cfg.DumpSnapshots)
	assert.Equal(t, "", cfg.ScrapeCron)
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BOOKHOUND_DATA_DIR", dir)
	t.Setenv("BOOKHOUND_DRIVER_URL", "http://device-farm:4723")
	t.Setenv("BOOKHOUND_LANGUAGE_PAIR", "English to Romanian")
	t.Setenv("BOOKHOUND_SCRAPE_CRON", "0 0 7-22 * * *")
	t.Setenv("BOOKHOUND_DUMP_SNAPSHOTS", "true")
	t.Setenv("BOOKHOUND_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://device-farm:4723", cfg.DriverURL)
	assert.Equal(t, "English to Romanian", cfg.LanguagePair)
	assert.Equal(t, "0 0 7-22 * * *", cfg.ScrapeCron)
	assert.True(t, cfg.DumpSnapshots)
	assert.Equal(t, 9090, cfg.Port)
}

func TestDerivedPaths(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BOOKHOUND_DATA_DIR", dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(cfg.DataDir, "bookings.db"), cfg.DatabasePath())
	assert.Equal(t, filepath.Join(cfg.DataDir, "snapshots"), cfg.SnapshotDir())
}

func TestValidateRejectsEmptyLanguagePair(t *testing.T) {
	cfg := &Config{DriverURL: "http://localhost:4723", AppPackage: "com.example.app"}
	assert.Error(t, cfg.Validate())
}
