package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/shelfsync/internal/config"
	"github.com/lepinkainen/shelfsync/internal/testutil"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetCmdState(t *testing.T) {
	t.Helper()
	testutil.ResetConfig(t)
	config.InitConfig()
}

func parseCLI(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()

	cli := &CLI{}
	parser, err := newParser(cli,
		kong.Exit(func(code int) {
			t.Fatalf("unexpected Kong exit %d", code)
		}),
	)
	require.NoError(t, err)

	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return cli, ctx
}

func TestDefaultCommandIsSync(t *testing.T) {
	resetCmdState(t)

	_, ctx := parseCLI(t)
	assert.Equal(t, "sync", ctx.Command())
}

func TestSyncFlagsWithoutCommandName(t *testing.T) {
	resetCmdState(t)

	cli, ctx := parseCLI(t, "--dry-run", "-m", "shelf.json", "-w", "3")
	assert.Equal(t, "sync", ctx.Command())
	assert.True(t, cli.Sync.DryRun)
	assert.Equal(t, "shelf.json", cli.Sync.Manifest)
	assert.Equal(t, 3, cli.Sync.Workers)
}

func TestSyncCommandParsing(t *testing.T) {
	resetCmdState(t)

	cli, ctx := parseCLI(t, "sync", "--manifest", "books.yaml", "--report", "out/result.json")
	assert.Equal(t, "sync", ctx.Command())
	assert.Equal(t, "books.yaml", cli.Sync.Manifest)
	assert.Equal(t, "out/result.json", cli.Sync.Report)
	assert.False(t, cli.Sync.DryRun)
}

func TestHistoryCommandParsing(t *testing.T) {
	resetCmdState(t)

	cli, ctx := parseCLI(t, "history")
	assert.Equal(t, "history", ctx.Command())
	assert.Equal(t, 10, cli.History.Limit)

	cli, _ = parseCLI(t, "history", "-n", "3")
	assert.Equal(t, 3, cli.History.Limit)
}

func TestListCommandParsing(t *testing.T) {
	resetCmdState(t)

	_, ctx := parseCLI(t, "list", "--backend", "datasette")
	assert.Equal(t, "list", ctx.Command())
}

func TestUpdateGlobalConfig(t *testing.T) {
	resetCmdState(t)

	cli := &CLI{
		Overwrite:  true,
		LogLevel:   "debug",
		Backend:    "postgres",
		Collection: "library",
	}

	updateGlobalConfig(cli)

	assert.True(t, config.OverwriteReports)
	assert.Equal(t, "debug", viper.GetString("log.level"))
	assert.Equal(t, "postgres", viper.GetString("store.backend"))
	assert.Equal(t, "library", viper.GetString("store.collection"))
}

func TestUpdateGlobalConfigKeepsDefaults(t *testing.T) {
	resetCmdState(t)

	updateGlobalConfig(&CLI{})

	assert.False(t, config.OverwriteReports)
	assert.Equal(t, "sqlite", viper.GetString("store.backend"))
	assert.Equal(t, "books", viper.GetString("store.collection"))
	assert.Equal(t, "info", viper.GetString("log.level"))
}

func TestInitConfigWritesDefaultConfig(t *testing.T) {
	resetCmdState(t)
	env := testutil.NewTestEnv(t)
	env.Chdir(".")

	initConfig()

	assert.True(t, env.FileExists("config.yaml"))
	assert.Equal(t, "sqlite", viper.GetString("store.backend"))
}

func TestInitConfigReadsExistingConfig(t *testing.T) {
	resetCmdState(t)
	env := testutil.NewTestEnv(t)
	env.WriteFileString("config.yaml", "store:\n  backend: datasette\nsync:\n  workers: 2\n")
	env.Chdir(".")

	initConfig()

	assert.Equal(t, "datasette", viper.GetString("store.backend"))
	assert.Equal(t, 2, viper.GetInt("sync.workers"))
	assert.Equal(t, "books", viper.GetString("store.collection"))
}

func TestEnvironmentVariableBinding(t *testing.T) {
	resetCmdState(t)
	env := testutil.NewTestEnv(t)
	env.Chdir(".")

	t.Setenv("SHELFSYNC_STORE_BACKEND", "postgres")
	t.Setenv("SHELFSYNC_SYNC_RPS", "0")

	initConfig()

	assert.Equal(t, "postgres", viper.GetString("store.backend"))
	assert.Equal(t, 0, viper.GetInt("sync.rps"))
}

func TestParseLevel(t *testing.T) {
	tests := map[string]string{
		"":        "INFO",
		"debug":   "DEBUG",
		"DEBUG":   "DEBUG",
		"info":    "INFO",
		"warn":    "WARN",
		"warning": "WARN",
		"error":   "ERROR",
		"bogus":   "INFO",
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in).String(), in)
	}
}

func TestInitLoggingToFile(t *testing.T) {
	env := testutil.NewTestEnv(t)
	logFile := env.Path("logs", "shelfsync.log")

	closeLog := initLogging("debug", logFile)
	t.Cleanup(func() { initLogging("info", "") })

	slog.Debug("logging probe", "key", "a_x")
	closeLog()

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "logging probe")
	assert.DirExists(t, filepath.Dir(logFile))
}

func TestInitLoggingDoesNotPanic(t *testing.T) {
	for _, level := range []string{"", "debug", "info", "warn", "error", "invalid"} {
		t.Run(level, func(t *testing.T) {
			require.NotPanics(t, func() {
				closeLog := initLogging(level, "")
				closeLog()
			})
		})
	}
}
