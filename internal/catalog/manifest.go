package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	apperrors "github.com/lepinkainen/shelfsync/internal/errors"
	"github.com/lepinkainen/shelfsync/internal/fileutil"
	"gopkg.in/yaml.v3"
)

// Manifest is the parsed local source-of-truth file
type Manifest struct {
	Path    string
	Books   []Book
	Invalid []*apperrors.ValidationError
}

// Keys returns the composite keys of all valid books, in file order.
func (m *Manifest) Keys() []string {
	keys := make([]string, 0, len(m.Books))
	for _, b := range m.Books {
		keys = append(keys, b.Key())
	}
	return keys
}

// manifestEntry is the on-disk shape of a single book
type manifestEntry struct {
	BookName    string     `json:"bookName"`
	AuthorName  string     `json:"authorName"`
	BookCover   string     `json:"bookCover"`
	PublishYear flexInt    `json:"publishYear"`
	Edition     flexString `json:"edition"`
	Pages       flexInt    `json:"pages"`
	Description string     `json:"description"`
	Excerpts    []string   `json:"excerpts"`
}

// LoadManifest reads and validates the manifest at path. Any error returned
// is a *errors.ManifestError.
func LoadManifest(path string) (*Manifest, error) {
	data, err := fileutil.ReadTextFile(path)
	if err != nil {
		return nil, apperrors.NewManifestError(path, "read failed", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		data, err = yamlToJSON(data)
		if err != nil {
			return nil, apperrors.NewManifestError(path, "invalid YAML", err)
		}
	}

	m, err := ParseManifest(data)
	if err != nil {
		var me *apperrors.ManifestError
		if errors.As(err, &me) {
			me.Path = path
			return nil, me
		}
		return nil, apperrors.NewManifestError(path, "parse failed", err)
	}
	m.Path = path
	return m, nil
}

// ParseManifest parses manifest JSON. It tolerates a byte-order mark, a bare
// array, a {"books": [...]} wrapper and a single book object.
func ParseManifest(data []byte) (*Manifest, error) {
	data = fileutil.TrimText(data)
	if len(data) == 0 {
		return nil, apperrors.NewManifestError("", "document is empty", nil)
	}

	rawEntries, err := splitEntries(data)
	if err != nil {
		return nil, apperrors.NewManifestError("", "invalid JSON", err)
	}

	m := &Manifest{}
	seen := make(map[string]int)
	var duplicates []string

	for i, raw := range rawEntries {
		book, vErr := parseEntry(i, raw)
		if vErr != nil {
			slog.Warn("Skipping invalid manifest entry", "index", vErr.Index, "error", vErr)
			m.Invalid = append(m.Invalid, vErr)
			continue
		}

		key := book.Key()
		seen[key]++
		if seen[key] == 2 {
			duplicates = append(duplicates, key)
		}
		m.Books = append(m.Books, book)
	}

	if len(duplicates) > 0 {
		sort.Strings(duplicates)
		return nil, apperrors.NewManifestError("", "duplicate book entries: "+strings.Join(duplicates, ", "), nil)
	}

	return m, nil
}

func splitEntries(data []byte) ([]json.RawMessage, error) {
	switch data[0] {
	case '[':
		var entries []json.RawMessage
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, err
		}
		return entries, nil
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil, err
		}
		books, ok := obj["books"]
		if !ok {
			// A lone book object
			return []json.RawMessage{json.RawMessage(data)}, nil
		}
		if string(bytes.TrimSpace(books)) == "null" {
			return nil, fmt.Errorf("books: expected an array, got null")
		}
		var entries []json.RawMessage
		if err := json.Unmarshal(books, &entries); err != nil {
			return nil, fmt.Errorf("books: %w", err)
		}
		return entries, nil
	default:
		return nil, fmt.Errorf("expected an array or object, got %q", data[0])
	}
}

func parseEntry(index int, raw json.RawMessage) (Book, *apperrors.ValidationError) {
	var entry manifestEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Book{}, apperrors.NewValidationError(index, "", err.Error())
	}

	name := strings.TrimSpace(entry.BookName)
	author := strings.TrimSpace(entry.AuthorName)
	if name == "" {
		return Book{}, apperrors.NewValidationError(index, "bookName", "is required")
	}
	if author == "" {
		return Book{}, apperrors.NewValidationError(index, "authorName", "is required")
	}

	excerpts := make([]string, 0, len(entry.Excerpts))
	for _, u := range entry.Excerpts {
		if u = strings.TrimSpace(u); u != "" {
			excerpts = append(excerpts, u)
		}
	}

	return Book{
		Name:        name,
		Author:      author,
		CoverURL:    strings.TrimSpace(entry.BookCover),
		PublishYear: int(entry.PublishYear),
		Edition:     string(entry.Edition),
		PageCount:   int(entry.Pages),
		Description: entry.Description,
		Excerpts:    excerpts,
	}, nil
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	return json.Marshal(doc)
}
