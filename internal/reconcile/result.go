package reconcile

import (
	"time"

	apperrors "github.com/lepinkainen/shelfsync/internal/errors"
)

// Entry identifies a record that was (or would be) added or removed
type Entry struct {
	ID     string `json:"id,omitempty"`
	Key    string `json:"key"`
	Name   string `json:"name"`
	Author string `json:"author"`
}

// Failure is a create or delete that did not go through
type Failure struct {
	Op     string `json:"op"`
	Key    string `json:"key"`
	Name   string `json:"name"`
	Author string `json:"author"`
	ID     string `json:"id,omitempty"`
	Err    string `json:"error"`
}

// BlobFailure is an excerpt blob that could not be removed
type BlobFailure struct {
	Key string `json:"key"`
	URL string `json:"url"`
	Err string `json:"error"`
}

// Result summarises one reconciliation pass
type Result struct {
	Manifest     string                       `json:"manifest"`
	DryRun       bool                         `json:"dryRun"`
	TotalLocal   int                          `json:"totalLocal"`
	Unchanged    int                          `json:"unchanged"`
	Added        []Entry                      `json:"added"`
	Removed      []Entry                      `json:"removed"`
	Failures     []Failure                    `json:"failures"`
	BlobFailures []BlobFailure                `json:"blobFailures"`
	Invalid      []*apperrors.ValidationError `json:"invalid"`
	StartedAt    time.Time                    `json:"startedAt"`
	FinishedAt   time.Time                    `json:"finishedAt"`
}

// OK reports whether every planned operation succeeded
func (r *Result) OK() bool {
	return len(r.Failures) == 0
}

// Duration returns how long the run took
func (r *Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
