package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestSetOverwriteReports(t *testing.T) {
	originalValue := OverwriteReports
	t.Cleanup(func() { OverwriteReports = originalValue })

	testCases := []struct {
		name     string
		input    bool
		expected bool
	}{
		{name: "set to true", input: true, expected: true},
		{name: "set to false", input: false, expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			SetOverwriteReports(tc.input)
			assert.Equal(t, tc.expected, OverwriteReports)
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	InitConfig()
	cfg := Load()

	assert.Equal(t, "./books.json", cfg.Manifest)
	assert.Equal(t, "sqlite", cfg.Backend)
	assert.Equal(t, "books", cfg.Collection)
	assert.Equal(t, "./catalog.db", cfg.SQLiteDB)
	assert.Equal(t, "catalog", cfg.DatasetteDatabase)
	assert.Equal(t, 10*time.Second, cfg.PostgresTimeout)
	assert.Equal(t, "file", cfg.BlobBackend)
	assert.Equal(t, "./blobs", cfg.BlobRoot)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 10, cfg.RPS)
	assert.True(t, cfg.HistoryEnabled)
	assert.Equal(t, "./history.db", cfg.HistoryDB)
	assert.Empty(t, cfg.MetricsFile)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	InitConfig()
	viper.Set("store.backend", "datasette")
	viper.Set("datasette.url", "https://data.example.com")
	viper.Set("sync.workers", 2)
	viper.Set("sync.rps", 0)
	viper.Set("history.enabled", false)

	cfg := Load()

	assert.Equal(t, "datasette", cfg.Backend)
	assert.Equal(t, "https://data.example.com", cfg.DatasetteURL)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 0, cfg.RPS)
	assert.False(t, cfg.HistoryEnabled)
}
