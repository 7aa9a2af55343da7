package datastore

import (
	"encoding/json"
	"fmt"

	"github.com/lepinkainen/shelfsync/internal/catalog"
)

// bookRow is the column layout shared by the SQL backends and Datasette
type bookRow struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Author      string `json:"author"`
	CoverURL    string `json:"cover_url"`
	PublishYear int    `json:"publish_year"`
	Edition     string `json:"edition"`
	PageCount   int    `json:"page_count"`
	Description string `json:"description"`
	Excerpts    string `json:"excerpts"`
}

func rowFromBook(b catalog.Book) (bookRow, error) {
	excerpts, err := encodeExcerpts(b.Excerpts)
	if err != nil {
		return bookRow{}, err
	}
	return bookRow{
		ID:          b.ID,
		Name:        b.Name,
		Author:      b.Author,
		CoverURL:    b.CoverURL,
		PublishYear: b.PublishYear,
		Edition:     b.Edition,
		PageCount:   b.PageCount,
		Description: b.Description,
		Excerpts:    excerpts,
	}, nil
}

func (r bookRow) book() (catalog.Book, error) {
	excerpts, err := decodeExcerpts(r.Excerpts)
	if err != nil {
		return catalog.Book{}, fmt.Errorf("record %s: %w", r.ID, err)
	}
	return catalog.Book{
		ID:          r.ID,
		Name:        r.Name,
		Author:      r.Author,
		CoverURL:    r.CoverURL,
		PublishYear: r.PublishYear,
		Edition:     r.Edition,
		PageCount:   r.PageCount,
		Description: r.Description,
		Excerpts:    excerpts,
	}, nil
}

func encodeExcerpts(excerpts []string) (string, error) {
	if excerpts == nil {
		excerpts = []string{}
	}
	data, err := json.Marshal(excerpts)
	if err != nil {
		return "", fmt.Errorf("failed to encode excerpts: %w", err)
	}
	return string(data), nil
}

func decodeExcerpts(raw string) ([]string, error) {
	excerpts := []string{}
	if raw == "" {
		return excerpts, nil
	}
	if err := json.Unmarshal([]byte(raw), &excerpts); err != nil {
		return nil, fmt.Errorf("failed to decode excerpts: %w", err)
	}
	if excerpts == nil {
		excerpts = []string{}
	}
	return excerpts, nil
}
