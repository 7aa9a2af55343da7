package config

import (
	"time"

	"github.com/spf13/viper"
)

// Global configuration variables
var (
	// OverwriteReports controls whether an existing JSON report file is replaced
	OverwriteReports bool
)

// Config is the resolved runtime configuration for a sync run
type Config struct {
	Manifest string

	Backend    string
	Collection string

	SQLiteDB string

	DatasetteURL      string
	DatasetteDatabase string
	DatasetteToken    string

	PostgresDSN     string
	PostgresTimeout time.Duration

	BlobBackend string
	BlobRoot    string
	BlobToken   string

	Workers int
	RPS     int

	HistoryEnabled bool
	HistoryDB      string

	MetricsFile string

	LogLevel string
	LogFile  string
}

// InitConfig registers defaults for every configuration key
func InitConfig() {
	viper.SetDefault("catalog.manifest", "./books.json")

	viper.SetDefault("store.backend", "sqlite")
	viper.SetDefault("store.collection", "books")
	viper.SetDefault("sqlite.dbfile", "./catalog.db")
	viper.SetDefault("datasette.database", "catalog")
	viper.SetDefault("postgres.timeout", "10s")

	viper.SetDefault("blobs.backend", "file")
	viper.SetDefault("blobs.root", "./blobs")

	viper.SetDefault("sync.workers", 8)
	viper.SetDefault("sync.rps", 10)

	viper.SetDefault("history.enabled", true)
	viper.SetDefault("history.dbfile", "./history.db")

	viper.SetDefault("log.level", "info")
}

// Load reads the current viper state into a Config
func Load() Config {
	return Config{
		Manifest: viper.GetString("catalog.manifest"),

		Backend:    viper.GetString("store.backend"),
		Collection: viper.GetString("store.collection"),

		SQLiteDB: viper.GetString("sqlite.dbfile"),

		DatasetteURL:      viper.GetString("datasette.url"),
		DatasetteDatabase: viper.GetString("datasette.database"),
		DatasetteToken:    viper.GetString("datasette.token"),

		PostgresDSN:     viper.GetString("postgres.dsn"),
		PostgresTimeout: viper.GetDuration("postgres.timeout"),

		BlobBackend: viper.GetString("blobs.backend"),
		BlobRoot:    viper.GetString("blobs.root"),
		BlobToken:   viper.GetString("blobs.token"),

		Workers: viper.GetInt("sync.workers"),
		RPS:     viper.GetInt("sync.rps"),

		HistoryEnabled: viper.GetBool("history.enabled"),
		HistoryDB:      viper.GetString("history.dbfile"),

		MetricsFile: viper.GetString("metrics.file"),

		LogLevel: viper.GetString("log.level"),
		LogFile:  viper.GetString("log.file"),
	}
}

// SetOverwriteReports sets the OverwriteReports flag
func SetOverwriteReports(overwrite bool) {
	OverwriteReports = overwrite
}
