package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/lepinkainen/shelfsync/internal/config"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

// stdout receives rendered reports
var stdout io.Writer = os.Stdout

// CLI represents the complete command structure for the shelfsync application
type CLI struct {
	// Global flags
	Overwrite  bool   `help:"Overwrite an existing JSON report file"`
	LogLevel   string `help:"Log level (debug, info, warn, error)"`
	Backend    string `help:"Remote store backend (sqlite, datasette, postgres)"`
	Collection string `help:"Remote collection (table) name"`

	Sync    SyncCmd    `cmd:"" default:"withargs" help:"Reconcile the remote catalog with the local manifest"`
	List    ListCmd    `cmd:"" help:"List records in the remote catalog"`
	History HistoryCmd `cmd:"" help:"Show recent sync runs"`
}

// SyncCmd represents the sync command
type SyncCmd struct {
	Manifest string `short:"m" help:"Path to the manifest file (JSON or YAML)"`
	DryRun   bool   `help:"Show what would change without touching the remote catalog"`
	Workers  int    `short:"w" help:"Maximum number of concurrent remote operations"`
	Report   string `help:"Write the sync result as JSON to this path"`
}

// ListCmd represents the list command
type ListCmd struct{}

// HistoryCmd represents the history command
type HistoryCmd struct {
	Limit int `short:"n" help:"Number of runs to show" default:"10"`
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("shelfsync"),
		kong.Description("Reconcile a remote book catalog with a local manifest."),
		kong.UsageOnError(),
	}, options...)
	return kong.New(cli, options...)
}

// Execute runs the Kong-based CLI
func Execute() {
	initLogging("info", "")
	initConfig()

	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		slog.Error("Failed to build CLI", "error", err)
		os.Exit(1)
	}

	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	updateGlobalConfig(&cli)

	cfg := config.Load()
	closeLog := initLogging(cfg.LogLevel, cfg.LogFile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	kctx.BindTo(ctx, (*context.Context)(nil))

	err = kctx.Run()
	stop()
	if err != nil {
		slog.Error("Command failed", "error", err)
		closeLog()
		os.Exit(1)
	}
	closeLog()
}

func initConfig() {
	// Initialize global config defaults
	config.InitConfig()

	// Enable environment variable support, e.g. SHELFSYNC_STORE_BACKEND
	viper.SetEnvPrefix("shelfsync")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			slog.Info("Config file not found, writing default config file...")
			if err := viper.SafeWriteConfig(); err != nil {
				slog.Error("Error writing config file", "error", err)
			}
			return
		}
		slog.Error("Fatal error config file", "error", err)
		os.Exit(1)
	}
}

func updateGlobalConfig(cli *CLI) {
	config.SetOverwriteReports(cli.Overwrite)

	if cli.LogLevel != "" {
		viper.Set("log.level", cli.LogLevel)
	}
	if cli.Backend != "" {
		viper.Set("store.backend", cli.Backend)
	}
	if cli.Collection != "" {
		viper.Set("store.collection", cli.Collection)
	}
}

// initLogging installs the default logger. When file is set, output is also
// written to a size-rotated log file. The returned func flushes and closes it.
func initLogging(level, file string) func() {
	var out io.Writer = os.Stdout
	closeLog := func() {}

	if file != "" {
		rotator := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		out = io.MultiWriter(os.Stdout, rotator)
		closeLog = func() { _ = rotator.Close() }
	}

	handler := humanlog.NewHandler(out, &humanlog.Options{
		Level: parseLevel(level),
	})
	slog.SetDefault(slog.New(handler))

	return closeLog
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
