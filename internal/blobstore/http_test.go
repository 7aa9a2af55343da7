package blobstore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStore_DeleteBlob(t *testing.T) {
	var gotMethod, gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAuth = r.Header.Get("Authorization")
		switch r.URL.Path {
		case "/gone.png":
			w.WriteHeader(http.StatusNotFound)
		case "/locked.png":
			w.WriteHeader(http.StatusForbidden)
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer ts.Close()

	store := NewHTTPStore("secret")
	ctx := context.Background()

	require.NoError(t, store.DeleteBlob(ctx, ts.URL+"/a.png"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "Bearer secret", gotAuth)

	require.NoError(t, store.DeleteBlob(ctx, ts.URL+"/gone.png"))

	err := store.DeleteBlob(ctx, ts.URL+"/locked.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestHTTPStore_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	err := NewHTTPStore("").DeleteBlob(context.Background(), url+"/a.png")
	assert.Error(t, err)
}
