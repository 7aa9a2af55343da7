package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lepinkainen/shelfsync/internal/blobstore"
	"github.com/lepinkainen/shelfsync/internal/catalog"
	"github.com/lepinkainen/shelfsync/internal/config"
	"github.com/lepinkainen/shelfsync/internal/datastore"
)

// openRemote is swapped out in tests
var openRemote = openRemoteFromConfig

func newStore(cfg config.Config) (datastore.Store, error) {
	switch cfg.Backend {
	case "sqlite":
		return datastore.NewSQLiteStore(cfg.SQLiteDB, cfg.Collection), nil
	case "datasette":
		if cfg.DatasetteURL == "" {
			return nil, fmt.Errorf("datasette backend requires datasette.url")
		}
		return datastore.NewDatasetteClient(cfg.DatasetteURL, cfg.DatasetteDatabase, cfg.Collection, cfg.DatasetteToken), nil
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres backend requires postgres.dsn")
		}
		return datastore.NewPostgresStore(cfg.PostgresDSN, cfg.Collection, cfg.PostgresTimeout), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %q", cfg.Backend)
	}
}

func newBlobStore(cfg config.Config) (catalog.BlobStore, error) {
	switch cfg.BlobBackend {
	case "file":
		return blobstore.NewFileStore(cfg.BlobRoot), nil
	case "http":
		return blobstore.NewHTTPStore(cfg.BlobToken), nil
	default:
		return nil, fmt.Errorf("unknown blob backend: %q", cfg.BlobBackend)
	}
}

// openRemoteFromConfig connects the configured record store and pairs it
// with the configured blob store
func openRemoteFromConfig(ctx context.Context, cfg config.Config) (catalog.Repository, func(), error) {
	store, err := newStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	blobs, err := newBlobStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	if err := store.Connect(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to open %s store: %w", cfg.Backend, err)
	}
	slog.Debug("Connected to remote store", "backend", cfg.Backend, "collection", cfg.Collection, "blobs", cfg.BlobBackend)

	closeStore := func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close remote store", "backend", cfg.Backend, "error", err)
		}
	}
	return catalog.Remote{RecordStore: store, BlobStore: blobs}, closeStore, nil
}
