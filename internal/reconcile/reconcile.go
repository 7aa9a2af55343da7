// Package reconcile brings a remote book catalog in line with a local
// manifest: books missing remotely are created, remote books missing from
// the manifest are deleted along with their excerpt blobs, and everything
// else is left alone.
package reconcile

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/lepinkainen/shelfsync/internal/catalog"
	apperrors "github.com/lepinkainen/shelfsync/internal/errors"
	"github.com/lepinkainen/shelfsync/internal/metrics"
	"github.com/lepinkainen/shelfsync/internal/ratelimit"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds concurrent remote operations when Options.Workers is unset
const DefaultWorkers = 8

// Recorder receives per-operation outcomes. *metrics.Recorder satisfies it.
type Recorder interface {
	Operation(op string, err error)
	BlobDelete(err error)
	InvalidEntries(n int)
	RunFinished(started, finished time.Time)
}

// Options tunes a Reconciler
type Options struct {
	// Workers is the maximum number of add/remove tasks in flight
	Workers int
	// Limiter, when set, is waited on before every remote call
	Limiter *ratelimit.Limiter
	// Metrics, when set, is told about every operation
	Metrics Recorder
	// DryRun stops after planning
	DryRun bool
}

// Reconciler applies manifest/remote differences through a Repository
type Reconciler struct {
	repo catalog.Repository
	opts Options
}

type nopRecorder struct{}

func (nopRecorder) Operation(string, error)          {}
func (nopRecorder) BlobDelete(error)                 {}
func (nopRecorder) InvalidEntries(int)               {}
func (nopRecorder) RunFinished(time.Time, time.Time) {}

// New creates a Reconciler for repo
func New(repo catalog.Repository, opts Options) *Reconciler {
	if opts.Workers < 1 {
		opts.Workers = DefaultWorkers
	}
	if opts.Metrics == nil {
		opts.Metrics = nopRecorder{}
	}
	return &Reconciler{repo: repo, opts: opts}
}

// Run loads the manifest at path, plans against the remote store and, unless
// this is a dry run, applies the plan. An error is returned only when the
// manifest cannot be used or the remote store cannot be listed; in both cases
// nothing has been mutated. Individual operation failures end up in the Result.
func (r *Reconciler) Run(ctx context.Context, path string) (*Result, error) {
	started := time.Now()

	m, err := catalog.LoadManifest(path)
	if err != nil {
		return nil, err
	}
	return r.run(ctx, m, started)
}

// RunManifest is Run for a manifest that has already been loaded
func (r *Reconciler) RunManifest(ctx context.Context, m *catalog.Manifest) (*Result, error) {
	return r.run(ctx, m, time.Now())
}

func (r *Reconciler) run(ctx context.Context, m *catalog.Manifest, started time.Time) (*Result, error) {
	r.opts.Metrics.InvalidEntries(len(m.Invalid))

	slog.Info("Loaded manifest", "path", m.Path, "books", len(m.Books), "invalid", len(m.Invalid))

	plan, err := r.Plan(ctx, m)
	if err != nil {
		return nil, err
	}

	slog.Info("Planned sync",
		"add", len(plan.ToAdd),
		"remove", len(plan.ToRemove),
		"unchanged", plan.Unchanged,
		"dry_run", r.opts.DryRun,
	)

	var res *Result
	if r.opts.DryRun {
		res = Preview(plan)
	} else {
		res = r.Apply(ctx, plan)
	}
	res.StartedAt = started
	res.FinishedAt = time.Now()
	r.opts.Metrics.RunFinished(res.StartedAt, res.FinishedAt)

	slog.Info("Sync finished",
		"added", len(res.Added),
		"removed", len(res.Removed),
		"failed", len(res.Failures),
		"blob_failures", len(res.BlobFailures),
		"unchanged", res.Unchanged,
		"total", res.TotalLocal,
		"duration", res.Duration(),
	)
	return res, nil
}

func newResult(plan *Plan) *Result {
	res := &Result{
		Added:        []Entry{},
		Removed:      []Entry{},
		Failures:     []Failure{},
		BlobFailures: []BlobFailure{},
		Invalid:      []*apperrors.ValidationError{},
		Unchanged:    plan.Unchanged,
	}
	if plan.Manifest != nil {
		res.Manifest = plan.Manifest.Path
		res.TotalLocal = len(plan.Manifest.Books)
		res.Invalid = append(res.Invalid, plan.Manifest.Invalid...)
	}
	return res
}

// Preview reports what applying plan would do, without touching anything
func Preview(plan *Plan) *Result {
	res := newResult(plan)
	res.DryRun = true
	for _, b := range plan.ToAdd {
		res.Added = append(res.Added, entryFor(b, ""))
	}
	for _, b := range plan.ToRemove {
		res.Removed = append(res.Removed, entryFor(b, b.ID))
	}
	return res
}

// Apply executes every add and remove in plan on a bounded worker pool.
// Operations are independent: a failure is recorded and siblings carry on.
func (r *Reconciler) Apply(ctx context.Context, plan *Plan) *Result {
	res := newResult(plan)
	var mu sync.Mutex

	// Plain Group: one failed operation must not cancel the others.
	var g errgroup.Group
	g.SetLimit(r.opts.Workers)

	for _, book := range plan.ToAdd {
		g.Go(func() error {
			r.add(ctx, book, res, &mu)
			return nil
		})
	}
	for _, book := range plan.ToRemove {
		g.Go(func() error {
			r.remove(ctx, book, res, &mu)
			return nil
		})
	}
	_ = g.Wait()

	sortResult(res)
	return res
}

func (r *Reconciler) add(ctx context.Context, book catalog.Book, res *Result, mu *sync.Mutex) {
	key := book.Key()

	book.ID = ""
	if book.Excerpts == nil {
		book.Excerpts = []string{}
	}

	id, err := r.call(ctx, func() (string, error) { return r.repo.Create(ctx, book) })
	r.opts.Metrics.Operation(metrics.OpCreate, err)

	mu.Lock()
	defer mu.Unlock()

	if err != nil {
		opErr := apperrors.NewOperationError(metrics.OpCreate, key, err)
		slog.Error("Failed to add book", "key", key, "op", metrics.OpCreate, "error", opErr)
		res.Failures = append(res.Failures, failureFor(metrics.OpCreate, book, "", opErr))
		return
	}

	slog.Info("Added book", "name", book.Name, "author", book.Author, "id", id)
	res.Added = append(res.Added, entryFor(book, id))
}

func (r *Reconciler) remove(ctx context.Context, book catalog.Book, res *Result, mu *sync.Mutex) {
	key := book.Key()

	for _, url := range book.Excerpts {
		_, err := r.call(ctx, func() (string, error) { return "", r.repo.DeleteBlob(ctx, url) })
		r.opts.Metrics.BlobDelete(err)
		if err != nil {
			blobErr := apperrors.NewBlobError(url, err)
			slog.Warn("Failed to delete excerpt blob", "key", key, "url", url, "error", blobErr)
			mu.Lock()
			res.BlobFailures = append(res.BlobFailures, BlobFailure{Key: key, URL: url, Err: err.Error()})
			mu.Unlock()
		}
	}

	_, err := r.call(ctx, func() (string, error) { return "", r.repo.Delete(ctx, book.ID) })
	r.opts.Metrics.Operation(metrics.OpDelete, err)

	mu.Lock()
	defer mu.Unlock()

	if err != nil {
		opErr := apperrors.NewOperationError(metrics.OpDelete, key, err)
		slog.Error("Failed to remove book", "key", key, "id", book.ID, "op", metrics.OpDelete, "error", opErr)
		res.Failures = append(res.Failures, failureFor(metrics.OpDelete, book, book.ID, opErr))
		return
	}

	slog.Info("Removed book", "name", book.Name, "author", book.Author, "id", book.ID)
	res.Removed = append(res.Removed, entryFor(book, book.ID))
}

// call waits for the limiter, then runs fn
func (r *Reconciler) call(ctx context.Context, fn func() (string, error)) (string, error) {
	if err := r.opts.Limiter.Wait(ctx); err != nil {
		return "", err
	}
	return fn()
}

func entryFor(b catalog.Book, id string) Entry {
	return Entry{ID: id, Key: b.Key(), Name: b.Name, Author: b.Author}
}

func failureFor(op string, b catalog.Book, id string, err error) Failure {
	return Failure{Op: op, Key: b.Key(), Name: b.Name, Author: b.Author, ID: id, Err: err.Error()}
}

func sortResult(res *Result) {
	byKey := func(entries []Entry) {
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].Key != entries[j].Key {
				return entries[i].Key < entries[j].Key
			}
			return entries[i].ID < entries[j].ID
		})
	}
	byKey(res.Added)
	byKey(res.Removed)

	sort.Slice(res.Failures, func(i, j int) bool {
		if res.Failures[i].Key != res.Failures[j].Key {
			return res.Failures[i].Key < res.Failures[j].Key
		}
		return res.Failures[i].Op < res.Failures[j].Op
	})
	sort.Slice(res.BlobFailures, func(i, j int) bool {
		if res.BlobFailures[i].Key != res.BlobFailures[j].Key {
			return res.BlobFailures[i].Key < res.BlobFailures[j].Key
		}
		return res.BlobFailures[i].URL < res.BlobFailures[j].URL
	})
}
