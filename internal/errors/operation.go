package errors

import (
	"errors"
	"fmt"
)

// OperationError represents a failed create or delete against the remote store
type OperationError struct {
	Op  string
	Key string
	Err error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// NewOperationError wraps err with the operation and composite key it failed on
func NewOperationError(op, key string, err error) *OperationError {
	return &OperationError{Op: op, Key: key, Err: err}
}

// IsOperationError reports whether err is an OperationError
func IsOperationError(err error) bool {
	var opErr *OperationError
	return errors.As(err, &opErr)
}

// BlobError is returned when a stored excerpt blob could not be deleted
type BlobError struct {
	URL string
	Err error
}

func (e *BlobError) Error() string {
	return fmt.Sprintf("delete blob %s: %v", e.URL, e.Err)
}

func (e *BlobError) Unwrap() error {
	return e.Err
}

// NewBlobError creates a BlobError for url
func NewBlobError(url string, err error) *BlobError {
	return &BlobError{URL: url, Err: err}
}

// IsBlobError reports whether err is a BlobError
func IsBlobError(err error) bool {
	var blobErr *BlobError
	return errors.As(err, &blobErr)
}
