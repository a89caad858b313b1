// Package scheduler owns the manual and periodic inventory refresh contract:
// at most one aggregation in flight, a recurring timer that can be re-armed,
// and an atomically swapped "current summary" slot.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/phl28/bagpack/internal/inventory"
)

// Collector runs one full aggregation. *inventory.Aggregator satisfies it.
type Collector interface {
	Collect(ctx context.Context) *inventory.CollectionSummary
}

// run tracks one in-flight aggregation so late callers can join it. summary
// is written before done is closed and never after.
type run struct {
	done    chan struct{}
	summary *inventory.CollectionSummary
}

// Scheduler serializes refreshes over one Collector. The zero value is not
// usable; construct with New.
type Scheduler struct {
	collector Collector
	interval  time.Duration

	// OnComplete, when set, is called with each completed summary before
	// RefreshNow returns. Set it before the first refresh; it is used to
	// persist runs in watch mode.
	OnComplete func(*inventory.CollectionSummary)

	mu       sync.Mutex
	inflight *run
	ticker   *time.Ticker
	stopCh   chan struct{}
	armed    bool
	wg       sync.WaitGroup

	current atomic.Pointer[inventory.CollectionSummary]
}

// New creates a Scheduler refreshing via the given collector. A non-positive
// interval falls back to 24 hours.
func New(collector Collector, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Scheduler{collector: collector, interval: interval}
}

// Current returns the most recently completed summary, or nil before the
// first refresh finishes. Safe for concurrent use; readers never observe a
// partially built snapshot because the slot is replaced atomically.
func (s *Scheduler) Current() *inventory.CollectionSummary {
	return s.current.Load()
}

// RefreshNow runs one aggregation, stores the result as current, and returns
// it. If a run is already in flight, RefreshNow waits for that run and
// returns its result instead of starting a second one.
func (s *Scheduler) RefreshNow(ctx context.Context) *inventory.CollectionSummary {
	s.mu.Lock()
	if r := s.inflight; r != nil {
		s.mu.Unlock()
		<-r.done
		return r.summary
	}
	r := &run{done: make(chan struct{})}
	s.inflight = r
	s.mu.Unlock()

	summary := s.collector.Collect(ctx)
	s.current.Store(summary)
	if s.OnComplete != nil {
		s.OnComplete(summary)
	}
	r.summary = summary

	s.mu.Lock()
	s.inflight = nil
	s.mu.Unlock()
	close(r.done)

	return summary
}

// Schedule arms the recurring refresh, counting from now rather than from
// the previous snapshot's timestamp. Calling it while already armed resets
// the interval instead of creating a second timer.
func (s *Scheduler) Schedule() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.armed {
		s.ticker.Reset(s.interval)
		return
	}

	s.armed = true
	s.ticker = time.NewTicker(s.interval)
	s.stopCh = make(chan struct{})
	s.wg.Add(1)
	go s.loop(s.ticker, s.stopCh)
}

func (s *Scheduler) loop(ticker *time.Ticker, stopCh chan struct{}) {
	defer s.wg.Done()

	for {
		select {
		case <-ticker.C:
			log.Debug().Msg("periodic refresh triggered")
			summary := s.RefreshNow(context.Background())
			log.Info().
				Int("packages", len(summary.Snapshot.Packages)).
				Int("warnings", len(summary.Warnings)).
				Time("generated_at", summary.Snapshot.GeneratedAt).
				Msg("periodic refresh completed")
		case <-stopCh:
			return
		}
	}
}

// Stop disarms the timer. A run already in flight is allowed to complete;
// Stop only waits for the timer loop to exit. Stopping an unarmed scheduler
// is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.armed {
		s.mu.Unlock()
		return
	}
	s.armed = false
	s.ticker.Stop()
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
}
