package blobstore

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// HTTPStore deletes blobs by sending DELETE to their URL
type HTTPStore struct {
	apiToken string
	client   *http.Client
}

// NewHTTPStore creates an HTTPStore. apiToken is sent as a bearer token when set.
func NewHTTPStore(apiToken string) *HTTPStore {
	return &HTTPStore{
		apiToken: apiToken,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// DeleteBlob issues DELETE <ref>. Any 2xx response or 404 counts as success.
func (s *HTTPStore) DeleteBlob(ctx context.Context, ref string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, ref, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if s.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiToken)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("delete failed with status %d", resp.StatusCode)
	}
	return nil
}
