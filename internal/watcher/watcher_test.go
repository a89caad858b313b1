package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phl28/bagpack/internal/inventory"
)

type fakeRefresher struct {
	calls atomic.Int32
}

func (f *fakeRefresher) RefreshNow(ctx context.Context) *inventory.CollectionSummary {
	f.calls.Add(1)
	return &inventory.CollectionSummary{
		Snapshot: inventory.Snapshot{GeneratedAt: time.Now().UTC()},
	}
}

func waitForCalls(t *testing.T, f *fakeRefresher, want int32) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for f.calls.Load() < want {
		select {
		case <-deadline:
			t.Fatalf("expected %d refreshes, got %d", want, f.calls.Load())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestWatcherDebouncesBurstIntoOneRefresh(t *testing.T) {
	root := t.TempDir()
	refresher := &fakeRefresher{}

	w := New(refresher, []string{root}, 100*time.Millisecond)
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	// A burst of writes within the quiet period must collapse to one refresh.
	for i := 0; i < 5; i++ {
		name := filepath.Join(root, "pkg"+string(rune('a'+i)))
		if err := os.WriteFile(name, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	waitForCalls(t, refresher, 1)

	// Allow another quiet period to pass; no further refresh should fire.
	time.Sleep(300 * time.Millisecond)
	if got := refresher.calls.Load(); got != 1 {
		t.Errorf("expected exactly 1 refresh for the burst, got %d", got)
	}
}

func TestWatcherRefreshesAgainAfterNewChanges(t *testing.T) {
	root := t.TempDir()
	refresher := &fakeRefresher{}

	w := New(refresher, []string{root}, 50*time.Millisecond)
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(root, "first"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	waitForCalls(t, refresher, 1)

	if err := os.WriteFile(filepath.Join(root, "second"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	waitForCalls(t, refresher, 2)
}

func TestWatcherSkipsMissingRoots(t *testing.T) {
	root := t.TempDir()
	refresher := &fakeRefresher{}

	w := New(refresher, []string{"/nonexistent/Cellar", root}, 50*time.Millisecond)
	if err := w.Start(); err != nil {
		t.Fatalf("expected Start to succeed with one valid root, got %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(root, "pkg"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	waitForCalls(t, refresher, 1)
}

func TestWatcherFailsWithNoWatchableRoots(t *testing.T) {
	w := New(&fakeRefresher{}, []string{"/nonexistent/a", "/nonexistent/b"}, time.Second)
	if err := w.Start(); err == nil {
		w.Stop()
		t.Fatal("expected Start to fail when no roots exist")
	}
}

func TestWatcherStopBeforeStart(t *testing.T) {
	w := New(&fakeRefresher{}, nil, time.Second)
	if err := w.Stop(); err != nil {
		t.Errorf("expected Stop on unstarted watcher to be a no-op, got %v", err)
	}
}

func TestWatcherDefaultQuietPeriod(t *testing.T) {
	w := New(&fakeRefresher{}, nil, 0)
	if w.quiet != 5*time.Second {
		t.Errorf("expected 5s default quiet period, got %v", w.quiet)
	}
}
