package datastore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/lepinkainen/shelfsync/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStore_ConnectValidation(t *testing.T) {
	err := NewPostgresStore("", "books", time.Second).Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DSN is not configured")

	err = NewPostgresStore("postgres://localhost/x", "bad-name", time.Second).Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid collection name")
}

func TestPostgresStore_DefaultTimeout(t *testing.T) {
	s := NewPostgresStore("postgres://localhost/x", "books", 0)
	assert.Equal(t, 10*time.Second, s.timeout)
	assert.NoError(t, s.Close())
}

// Runs only when SHELFSYNC_TEST_POSTGRES_DSN points at a scratch database.
func TestPostgresStore_Integration(t *testing.T) {
	dsn := os.Getenv("SHELFSYNC_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("SHELFSYNC_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	store := NewPostgresStore(dsn, "shelfsync_test_books", 5*time.Second)
	require.NoError(t, store.Connect(ctx))
	t.Cleanup(func() {
		_, _ = store.db.Exec(context.Background(), "DROP TABLE IF EXISTS shelfsync_test_books")
		_ = store.Close()
	})

	id, err := store.Create(ctx, catalog.Book{Name: "Dune", Author: "Frank Herbert", Excerpts: []string{"https://e/1.png"}})
	require.NoError(t, err)

	books, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, id, books[0].ID)
	assert.Equal(t, []string{"https://e/1.png"}, books[0].Excerpts)

	require.NoError(t, store.Delete(ctx, id))
	books, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)
}
