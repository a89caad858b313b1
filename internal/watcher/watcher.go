// Package watcher triggers inventory refreshes when package manager install
// roots change on disk. It complements the 24-hour periodic refresh in watch
// mode: installing or removing a package updates the snapshot within the
// quiet period instead of a day later.
package watcher

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/phl28/bagpack/internal/inventory"
)

// Refresher starts (or joins) one inventory refresh. The scheduler satisfies
// it.
type Refresher interface {
	RefreshNow(ctx context.Context) *inventory.CollectionSummary
}

// Watcher observes a set of install roots via fsnotify and debounces the
// event stream: a batch install produces one refresh after the quiet period,
// not one per file.
type Watcher struct {
	refresher Refresher
	roots     []string
	quiet     time.Duration

	fs     *fsnotify.Watcher
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a Watcher. A non-positive quiet period falls back to 5
// seconds.
func New(refresher Refresher, roots []string, quiet time.Duration) *Watcher {
	if quiet <= 0 {
		quiet = 5 * time.Second
	}
	return &Watcher{refresher: refresher, roots: roots, quiet: quiet}
}

// Start registers every existing root with fsnotify and begins processing
// events. Roots that do not exist on this machine are skipped; if none of
// them exist Start fails, since there would be nothing to watch.
func (w *Watcher) Start() error {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create filesystem watcher: %w", err)
	}

	watched := 0
	for _, root := range w.roots {
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			continue
		}
		if err := fs.Add(root); err != nil {
			log.Warn().Str("root", root).Err(err).Msg("cannot watch install root")
			continue
		}
		log.Debug().Str("root", root).Msg("watching install root")
		watched++
	}
	if watched == 0 {
		fs.Close()
		return fmt.Errorf("no watchable install roots among %d candidates", len(w.roots))
	}

	w.fs = fs
	w.stopCh = make(chan struct{})
	w.wg.Add(1)
	go w.run()

	return nil
}

// run debounces filesystem events into refresh triggers. The timer restarts
// on every relevant event, so the refresh fires only after the install root
// has been quiet for the full period.
func (w *Watcher) run() {
	defer w.wg.Done()

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.quiet)
			timerC = timer.C

		case <-timerC:
			timer = nil
			timerC = nil
			log.Info().Msg("install roots changed, refreshing inventory")
			summary := w.refresher.RefreshNow(context.Background())
			log.Info().
				Int("packages", len(summary.Snapshot.Packages)).
				Int("warnings", len(summary.Warnings)).
				Msg("change-triggered refresh completed")

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("filesystem watcher error")

		case <-w.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// Stop halts event processing and releases the fsnotify watcher. A refresh
// already triggered is allowed to complete.
func (w *Watcher) Stop() error {
	if w.stopCh == nil {
		return nil
	}
	close(w.stopCh)
	w.wg.Wait()
	return w.fs.Close()
}
