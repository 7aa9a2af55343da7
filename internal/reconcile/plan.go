package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/lepinkainen/shelfsync/internal/catalog"
)

// Plan is the set difference between the manifest and the remote store
type Plan struct {
	Manifest *catalog.Manifest

	// ToAdd holds manifest books whose key is missing remotely
	ToAdd []catalog.Book
	// ToRemove holds remote records whose key is not in the manifest
	ToRemove []catalog.Book
	// Unchanged counts keys present on both sides
	Unchanged int
}

// Empty reports whether applying the plan would change nothing
func (p *Plan) Empty() bool {
	return len(p.ToAdd) == 0 && len(p.ToRemove) == 0
}

// Plan lists the remote store and diffs it against m. A listing failure is
// returned as is and nothing is mutated.
func (r *Reconciler) Plan(ctx context.Context, m *catalog.Manifest) (*Plan, error) {
	if err := r.opts.Limiter.Wait(ctx); err != nil {
		return nil, err
	}
	remote, err := r.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list remote catalog: %w", err)
	}
	return Diff(m, remote), nil
}

// Diff computes the plan for a manifest and a remote listing
func Diff(m *catalog.Manifest, remote []catalog.Book) *Plan {
	local := make(map[string]catalog.Book, len(m.Books))
	for _, b := range m.Books {
		local[b.Key()] = b
	}

	remoteByKey := make(map[string][]catalog.Book, len(remote))
	for _, b := range remote {
		key := b.Key()
		remoteByKey[key] = append(remoteByKey[key], b)
	}

	plan := &Plan{Manifest: m}

	for key, book := range local {
		if _, ok := remoteByKey[key]; ok {
			plan.Unchanged++
			continue
		}
		plan.ToAdd = append(plan.ToAdd, book)
	}

	for key, books := range remoteByKey {
		if _, ok := local[key]; ok {
			if len(books) > 1 {
				slog.Warn("Remote catalog holds duplicate records", "key", key, "count", len(books))
			}
			continue
		}
		plan.ToRemove = append(plan.ToRemove, books...)
	}

	sort.Slice(plan.ToAdd, func(i, j int) bool {
		return plan.ToAdd[i].Key() < plan.ToAdd[j].Key()
	})
	sort.Slice(plan.ToRemove, func(i, j int) bool {
		ki, kj := plan.ToRemove[i].Key(), plan.ToRemove[j].Key()
		if ki != kj {
			return ki < kj
		}
		return plan.ToRemove[i].ID < plan.ToRemove[j].ID
	})

	return plan
}
