package catalog

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name   string
		title  string
		author string
		want   string
	}{
		{name: "plain", title: "Dune", author: "Frank Herbert", want: "dune_frank herbert"},
		{name: "surrounding whitespace", title: "  Dune ", author: "\tFrank Herbert\n", want: "dune_frank herbert"},
		{name: "mixed case", title: "DUNE", author: "frank HERBERT", want: "dune_frank herbert"},
		{name: "inner whitespace kept", title: "War  and Peace", author: "Tolstoy", want: "war  and peace_tolstoy"},
		{name: "empty", title: "", author: "", want: "_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Key(tt.title, tt.author))
		})
	}
}

func TestBookKeyMatchesKey(t *testing.T) {
	b := Book{Name: "The Hobbit", Author: "J.R.R. Tolkien"}
	assert.Equal(t, Key("the hobbit", "j.r.r. tolkien"), b.Key())
}
