package errors

import (
	"errors"
	"fmt"
)

// ManifestError means the manifest could not be used at all. Nothing remote
// is touched once one of these is returned.
type ManifestError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ManifestError) Error() string {
	msg := fmt.Sprintf("manifest %s: %s", e.Path, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ManifestError) Unwrap() error {
	return e.Err
}

// NewManifestError creates a ManifestError for the given path
func NewManifestError(path, reason string, err error) *ManifestError {
	return &ManifestError{Path: path, Reason: reason, Err: err}
}

// IsManifestError reports whether err is a ManifestError (even when wrapped).
func IsManifestError(err error) bool {
	var manifestErr *ManifestError
	return errors.As(err, &manifestErr)
}

// ValidationError describes a single manifest entry that was skipped
type ValidationError struct {
	Index  int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("entry %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("entry %d: %s %s", e.Index, e.Field, e.Reason)
}

// NewValidationError creates a ValidationError for the entry at index
func NewValidationError(index int, field, reason string) *ValidationError {
	return &ValidationError{Index: index, Field: field, Reason: reason}
}

// IsValidationError reports whether err is a ValidationError
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}
