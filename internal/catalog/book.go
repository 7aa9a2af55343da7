// Package catalog holds the book record type, the manifest loader and the
// repository contract the reconciler works against.
package catalog

import "strings"

// Book is a single catalog record as stored remotely
type Book struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name"`
	Author      string   `json:"author"`
	CoverURL    string   `json:"coverUrl,omitempty"`
	PublishYear int      `json:"publishYear,omitempty"`
	Edition     string   `json:"edition,omitempty"`
	PageCount   int      `json:"pageCount,omitempty"`
	Description string   `json:"description,omitempty"`
	Excerpts    []string `json:"excerpts"`
}

// Key returns the composite key used to match this record.
func (b Book) Key() string {
	return Key(b.Name, b.Author)
}

// Key builds the composite matching key for a name/author pair.
func Key(name, author string) string {
	return Normalize(name) + "_" + Normalize(author)
}

// Normalize trims surrounding whitespace and lower-cases s.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
