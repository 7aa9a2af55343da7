package datastore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/lepinkainen/shelfsync/internal/catalog"
)

// DatasetteClient implements Store against a remote Datasette instance using
// its JSON read API and the 1.0 write API.
type DatasetteClient struct {
	baseURL  string
	database string
	table    string
	apiToken string
	client   *http.Client
}

// NewDatasetteClient creates a new DatasetteClient instance
func NewDatasetteClient(baseURL, database, table, apiToken string) *DatasetteClient {
	return &DatasetteClient{
		baseURL:  baseURL,
		database: database,
		table:    table,
		apiToken: apiToken,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type datasettePage struct {
	Rows    []bookRow `json:"rows"`
	NextURL string    `json:"next_url"`
}

type datasetteError struct {
	OK     bool     `json:"ok"`
	Errors []string `json:"errors"`
}

// Connect validates the configured location. Tables are created by the
// insert API on first write.
func (c *DatasetteClient) Connect(_ context.Context) error {
	if c.baseURL == "" {
		return fmt.Errorf("datasette base URL is not configured")
	}
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid base URL: unsupported scheme %q", u.Scheme)
	}
	return validateCollection(c.table)
}

func (c *DatasetteClient) endpoint(query url.Values, elem ...string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	u.Path = path.Join(append([]string{u.Path}, elem...)...)
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

// List pages through the table until Datasette stops returning a next_url
func (c *DatasetteClient) List(ctx context.Context) ([]catalog.Book, error) {
	next, err := c.endpoint(url.Values{"_shape": {"objects"}, "_size": {"max"}}, c.database, c.table+".json")
	if err != nil {
		return nil, err
	}

	var books []catalog.Book
	for next != "" {
		var page datasettePage
		status, err := c.do(ctx, http.MethodGet, next, nil, &page)
		if err != nil {
			return nil, err
		}
		if status == http.StatusNotFound {
			// Table not created yet
			return books, nil
		}

		for _, r := range page.Rows {
			book, err := r.book()
			if err != nil {
				return nil, err
			}
			books = append(books, book)
		}
		next = page.NextURL
	}

	return books, nil
}

// Create inserts one row with a client-generated primary key
func (c *DatasetteClient) Create(ctx context.Context, book catalog.Book) (string, error) {
	book.ID = uuid.NewString()
	r, err := rowFromBook(book)
	if err != nil {
		return "", err
	}

	endpoint, err := c.endpoint(nil, c.database, c.table, "-", "insert")
	if err != nil {
		return "", err
	}

	status, err := c.do(ctx, http.MethodPost, endpoint, map[string]any{"row": r}, nil)
	if err != nil {
		return "", err
	}
	if status == http.StatusNotFound {
		if err := c.createTable(ctx, r); err != nil {
			return "", err
		}
	}
	return r.ID, nil
}

// createTable creates the table through the create API, seeding it with row
func (c *DatasetteClient) createTable(ctx context.Context, r bookRow) error {
	endpoint, err := c.endpoint(nil, c.database, "-", "create")
	if err != nil {
		return err
	}

	payload := map[string]any{
		"table": c.table,
		"row":   r,
		"pk":    "id",
	}
	status, err := c.do(ctx, http.MethodPost, endpoint, payload, nil)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return fmt.Errorf("database %s not found", c.database)
	}
	return nil
}

// Delete removes the row with the given primary key. A missing row is not an error.
func (c *DatasetteClient) Delete(ctx context.Context, id string) error {
	endpoint, err := c.endpoint(nil, c.database, c.table, id, "-", "delete")
	if err != nil {
		return err
	}

	_, err = c.do(ctx, http.MethodPost, endpoint, map[string]any{}, nil)
	return err
}

// do sends a request and decodes a JSON response into out. 404 is handed
// back to the caller as a status rather than an error.
func (c *DatasetteClient) do(ctx context.Context, method, endpoint string, payload, out any) (int, error) {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal JSON payload: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return resp.StatusCode, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp datasetteError
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil || len(errResp.Errors) == 0 {
			return resp.StatusCode, fmt.Errorf("request failed with status %d", resp.StatusCode)
		}
		return resp.StatusCode, fmt.Errorf("API error (HTTP %d): %v", resp.StatusCode, errResp.Errors)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// Close is a no-op for the HTTP client
func (c *DatasetteClient) Close() error {
	return nil
}
