// Package inventory aggregates per-manager collection results into
// immutable, timestamped snapshots.
package inventory

import (
	"context"
	"sync"
	"time"

	"github.com/phl28/bagpack/internal/managers"
)

// Warning records a non-fatal, per-manager collection failure. A manager
// contributes at most one warning per run.
type Warning struct {
	Manager managers.Manager `json:"manager"`
	Message string           `json:"message"`
}

// Snapshot is one immutable, point-in-time inventory. Packages are ordered
// by manager enumeration order, then by per-manager discovery order.
// GeneratedAt is stamped once, when the run completes, so it reads as "data
// as of this moment".
type Snapshot struct {
	GeneratedAt time.Time
	Packages    []managers.PackageRecord
}

// CollectionSummary is the unit returned by one aggregation run: the
// snapshot plus whatever per-manager warnings accumulated along the way.
type CollectionSummary struct {
	Snapshot Snapshot
	Warnings []Warning
}

// Aggregator runs a set of collectors concurrently and assembles their
// results. A failing collector contributes nothing to the snapshot and
// exactly one warning; the run itself always succeeds.
type Aggregator struct {
	collectors []managers.Collector
	now        func() time.Time
}

// New creates an Aggregator over the given collectors. Their order fixes the
// snapshot's manager ordering.
func New(collectors ...managers.Collector) *Aggregator {
	return &Aggregator{collectors: collectors, now: time.Now}
}

// Collect runs every collector concurrently and composes the summary.
// Collectors communicate their outcome back exclusively through their return
// values; each writes a distinct result slot, so the composition never
// observes partial output.
func (a *Aggregator) Collect(ctx context.Context) *CollectionSummary {
	type outcome struct {
		manager managers.Manager
		records []managers.PackageRecord
		err     error
	}

	outcomes := make([]outcome, len(a.collectors))
	var wg sync.WaitGroup
	for i, c := range a.collectors {
		wg.Add(1)
		go func(i int, c managers.Collector) {
			defer wg.Done()
			records, err := c.Collect(ctx)
			outcomes[i] = outcome{manager: c.Manager(), records: records, err: err}
		}(i, c)
	}
	wg.Wait()

	summary := &CollectionSummary{}
	for _, o := range outcomes {
		if o.err != nil {
			summary.Warnings = append(summary.Warnings, Warning{
				Manager: o.manager,
				Message: o.err.Error(),
			})
			continue
		}
		summary.Snapshot.Packages = append(summary.Snapshot.Packages, o.records...)
	}
	summary.Snapshot.GeneratedAt = a.now().UTC()

	return summary
}
