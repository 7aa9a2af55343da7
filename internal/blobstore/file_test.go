package blobstore

import (
	"context"
	"testing"

	"github.com/lepinkainen/shelfsync/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_DeleteBlob(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString("blobs/excerpts/dune/1.png", "png")
	env.WriteFileString("blobs/excerpts/dune/2.png", "png")
	env.WriteFileString("outside.txt", "keep")

	store := NewFileStore(env.Path("blobs"))
	ctx := context.Background()

	require.NoError(t, store.DeleteBlob(ctx, "https://firebasestorage.googleapis.com/v0/b/app/o/excerpts%2Fdune%2F1.png?alt=media"))
	assert.False(t, env.FileExists("blobs/excerpts/dune/1.png"))

	require.NoError(t, store.DeleteBlob(ctx, "file://"+env.Path("blobs/excerpts/dune/2.png")))
	assert.False(t, env.FileExists("blobs/excerpts/dune/2.png"))

	require.NoError(t, store.DeleteBlob(ctx, "excerpts/dune/1.png"), "missing blob is not an error")

	err := store.DeleteBlob(ctx, "file://"+env.Path("outside.txt"))
	require.Error(t, err)
	assert.True(t, env.FileExists("outside.txt"))
}

func TestFileStore_Resolve(t *testing.T) {
	env := testutil.NewTestEnv(t)
	store := NewFileStore(env.Path("blobs"))

	got, err := store.Resolve("../outside.txt")
	require.NoError(t, err)
	assert.Equal(t, env.Path("blobs", "outside.txt"), got)

	_, err = store.Resolve("file://" + env.Path("blobs"))
	assert.Error(t, err, "the root itself is not a blob")
}

func TestFileStore_CancelledContext(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString("blobs/a.png", "png")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewFileStore(env.Path("blobs")).DeleteBlob(ctx, "a.png")
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, env.FileExists("blobs/a.png"))
}
