// Package metrics exposes Prometheus collectors for sync runs. Collectors
// live on a private registry and are written out as a node_exporter textfile.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation labels
const (
	OpCreate = "create"
	OpDelete = "delete"
)

// Recorder collects counters for a single process
type Recorder struct {
	registry *prometheus.Registry

	operations   *prometheus.CounterVec
	blobDeletes  *prometheus.CounterVec
	invalid      prometheus.Counter
	lastDuration prometheus.Gauge
	lastSuccess  prometheus.Gauge
}

// New creates a Recorder with its own registry
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "shelfsync",
				Subsystem: "sync",
				Name:      "operations_total",
				Help:      "Remote record operations issued by the reconciler.",
			},
			[]string{"op", "status"},
		),
		blobDeletes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "shelfsync",
				Subsystem: "sync",
				Name:      "blob_deletes_total",
				Help:      "Excerpt blob deletions attempted.",
			},
			[]string{"status"},
		),
		invalid: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "shelfsync",
				Subsystem: "manifest",
				Name:      "invalid_entries_total",
				Help:      "Manifest entries skipped by validation.",
			},
		),
		lastDuration: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "shelfsync",
				Subsystem: "sync",
				Name:      "last_run_duration_seconds",
				Help:      "Wall-clock duration of the last sync run.",
			},
		),
		lastSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "shelfsync",
				Subsystem: "sync",
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time the last sync run finished.",
			},
		),
	}

	r.registry.MustRegister(r.operations, r.blobDeletes, r.invalid, r.lastDuration, r.lastSuccess)
	return r
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Operation counts a create or delete outcome
func (r *Recorder) Operation(op string, err error) {
	if r == nil {
		return
	}
	r.operations.WithLabelValues(op, status(err)).Inc()
}

// BlobDelete counts an excerpt blob deletion outcome
func (r *Recorder) BlobDelete(err error) {
	if r == nil {
		return
	}
	r.blobDeletes.WithLabelValues(status(err)).Inc()
}

// InvalidEntries adds n skipped manifest entries
func (r *Recorder) InvalidEntries(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.invalid.Add(float64(n))
}

// RunFinished records the run duration and completion time
func (r *Recorder) RunFinished(started, finished time.Time) {
	if r == nil {
		return
	}
	r.lastDuration.Set(finished.Sub(started).Seconds())
	r.lastSuccess.Set(float64(finished.Unix()))
}

// Registry exposes the underlying registry, e.g. for tests
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes all collected metrics in the text exposition format
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
