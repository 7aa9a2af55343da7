package catalog

import "context"

// RecordStore is the remote document collection holding the live catalog.
type RecordStore interface {
	// List returns every record in the collection
	List(ctx context.Context) ([]Book, error)

	// Create stores a new record and returns the ID the store assigned to it
	Create(ctx context.Context, book Book) (string, error)

	// Delete removes the record with the given ID
	Delete(ctx context.Context, id string) error
}

// BlobStore removes stored binary objects referenced by URL.
type BlobStore interface {
	DeleteBlob(ctx context.Context, url string) error
}

// Repository is everything the reconciler needs from the managed backend.
type Repository interface {
	RecordStore
	BlobStore
}

// Remote pairs a record store with a blob store.
type Remote struct {
	RecordStore
	BlobStore
}
