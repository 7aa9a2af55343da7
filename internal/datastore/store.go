package datastore

import (
	"context"
	"fmt"
	"regexp"

	"github.com/lepinkainen/shelfsync/internal/catalog"
)

// Store is a remote catalog collection with a connection lifecycle
type Store interface {
	catalog.RecordStore

	// Connect establishes a connection and prepares the collection
	Connect(ctx context.Context) error

	// Close closes the connection to the data store
	Close() error
}

var collectionNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// validateCollection guards collection names that end up inside SQL and URLs
func validateCollection(name string) error {
	if !collectionNamePattern.MatchString(name) {
		return fmt.Errorf("invalid collection name: %q", name)
	}
	return nil
}
