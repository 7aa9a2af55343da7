package cmd

import (
	"context"
	"log/slog"

	"github.com/lepinkainen/shelfsync/internal/catalog"
	"github.com/lepinkainen/shelfsync/internal/config"
	"github.com/lepinkainen/shelfsync/internal/fileutil"
	"github.com/lepinkainen/shelfsync/internal/metrics"
	"github.com/lepinkainen/shelfsync/internal/ratelimit"
	"github.com/lepinkainen/shelfsync/internal/reconcile"
	"github.com/lepinkainen/shelfsync/internal/report"
	"github.com/lepinkainen/shelfsync/internal/runlog"
)

// Run reconciles the remote catalog. Failed individual operations are
// reported but do not fail the command.
func (s *SyncCmd) Run(ctx context.Context) error {
	cfg := config.Load()

	manifest := s.Manifest
	if manifest == "" {
		manifest = cfg.Manifest
	}
	workers := s.Workers
	if workers <= 0 {
		workers = cfg.Workers
	}

	// The manifest must be valid before the remote store is opened: Connect
	// may create tables.
	m, err := catalog.LoadManifest(manifest)
	if err != nil {
		return err
	}

	remote, closeRemote, err := openRemote(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRemote()

	recorder := metrics.New()
	r := reconcile.New(remote, reconcile.Options{
		Workers: workers,
		Limiter: ratelimit.New("remote", cfg.RPS),
		Metrics: recorder,
		DryRun:  s.DryRun,
	})

	res, err := r.RunManifest(ctx, m)
	if err != nil {
		return err
	}

	if err := report.Result(stdout, res); err != nil {
		slog.Warn("Failed to render result", "error", err)
	}

	if s.Report != "" {
		if _, err := fileutil.WriteJSONFile(res, s.Report, config.OverwriteReports); err != nil {
			slog.Error("Failed to write report", "path", s.Report, "error", err)
		}
	}

	if cfg.MetricsFile != "" {
		if err := recorder.WriteTextfile(cfg.MetricsFile); err != nil {
			slog.Error("Failed to write metrics", "path", cfg.MetricsFile, "error", err)
		}
	}

	if cfg.HistoryEnabled {
		recordRun(ctx, cfg.HistoryDB, res)
	}

	if !res.OK() {
		slog.Warn("Some operations failed", "failed", len(res.Failures))
	}
	return nil
}

func recordRun(ctx context.Context, dbPath string, res *reconcile.Result) {
	history, err := runlog.Open(dbPath)
	if err != nil {
		slog.Error("Failed to open run history", "path", dbPath, "error", err)
		return
	}
	defer func() { _ = history.Close() }()

	id, err := history.Record(ctx, res)
	if err != nil {
		slog.Error("Failed to record run", "error", err)
		return
	}
	slog.Debug("Recorded run", "id", id)
}

// Run prints every record in the remote catalog
func (l *ListCmd) Run(ctx context.Context) error {
	cfg := config.Load()

	remote, closeRemote, err := openRemote(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRemote()

	books, err := remote.List(ctx)
	if err != nil {
		return err
	}
	return report.Listing(stdout, books)
}

// Run prints the most recent sync runs
func (h *HistoryCmd) Run(ctx context.Context) error {
	cfg := config.Load()

	history, err := runlog.Open(cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer func() { _ = history.Close() }()

	runs, err := history.List(ctx, h.Limit)
	if err != nil {
		return err
	}
	return report.History(stdout, runs)
}
