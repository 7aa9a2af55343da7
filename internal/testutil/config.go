package testutil

import (
	"testing"

	"github.com/lepinkainen/shelfsync/internal/config"
	"github.com/spf13/viper"
)

// ResetConfig resets viper and the config globals, restoring them when the
// test completes.
func ResetConfig(t *testing.T) {
	t.Helper()

	overwrite := config.OverwriteReports
	viper.Reset()

	t.Cleanup(func() {
		config.OverwriteReports = overwrite
		viper.Reset()
	})
}

// SetViperValue sets a viper configuration value and schedules cleanup.
func SetViperValue(t *testing.T, key string, value any) {
	t.Helper()

	oldValue := viper.Get(key)
	hadValue := viper.IsSet(key)

	viper.Set(key, value)

	t.Cleanup(func() {
		if hadValue {
			viper.Set(key, oldValue)
			return
		}
		// A nil override falls through to config and defaults again
		viper.Set(key, nil)
	})
}

// SetupLocalStores points the catalog, blob and history stores at files
// inside env and registers the remaining defaults.
func SetupLocalStores(t *testing.T, env *TestEnv) {
	t.Helper()

	ResetConfig(t)
	config.InitConfig()

	env.MkdirAll("blobs")
	viper.Set("store.backend", "sqlite")
	viper.Set("sqlite.dbfile", env.Path("catalog.db"))
	viper.Set("blobs.backend", "file")
	viper.Set("blobs.root", env.Path("blobs"))
	viper.Set("history.dbfile", env.Path("history.db"))
	viper.Set("sync.rps", 0)
}
