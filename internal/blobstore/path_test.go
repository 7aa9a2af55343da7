package blobstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectPath(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		want string
	}{
		{name: "relative path", ref: "excerpts/dune/1.png", want: "excerpts/dune/1.png"},
		{name: "storage download url", ref: "https://firebasestorage.googleapis.com/v0/b/app.appspot.com/o/excerpts%2Fdune%2F1.png?alt=media&token=abc", want: "excerpts/dune/1.png"},
		{name: "escaped spaces", ref: "https://storage.example.com/v0/b/bucket/o/excerpts%2FThe%20Hobbit%2Fp1.jpg?alt=media", want: "excerpts/The Hobbit/p1.jpg"},
		{name: "plain https", ref: "https://cdn.example.com/excerpts/a.png", want: "excerpts/a.png"},
		{name: "gs url", ref: "gs://bucket/excerpts/a.png", want: "excerpts/a.png"},
		{name: "dot segments collapse", ref: "excerpts/../../etc/passwd", want: "etc/passwd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ObjectPath(tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestObjectPath_Errors(t *testing.T) {
	for _, ref := range []string{"", "   ", "https://cdn.example.com/", "ftp://host/a.png", "://bad"} {
		t.Run(ref, func(t *testing.T) {
			_, err := ObjectPath(ref)
			assert.Error(t, err)
		})
	}
}
