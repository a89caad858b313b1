package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/phl28/bagpack/internal/inventory"
	"github.com/phl28/bagpack/internal/scheduler"
	"github.com/phl28/bagpack/internal/watcher"
)

var (
	watchInterval    time.Duration
	watchQuietPeriod time.Duration

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Keep the inventory fresh in the foreground",
		Long: `Run bagpack as a foreground daemon: collect immediately, then refresh on a
recurring interval (24 hours by default) and whenever a package manager's
install directory changes on disk. Every completed run is recorded in the
local history.

Stop with Ctrl-C; a refresh already in flight is allowed to finish.`,
		Example: `  # Refresh every 24 hours plus on filesystem changes
  bagpack watch

  # Shorter cadence
  bagpack watch --interval 6h`,
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "refresh interval (default: 24h or BAGPACK_REFRESH_INTERVAL)")
	watchCmd.Flags().DurationVar(&watchQuietPeriod, "quiet-period", 0, "debounce window for filesystem triggers (default: 5s or BAGPACK_QUIET_PERIOD)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if watchInterval > 0 {
		cfg.RefreshInterval = watchInterval
	}
	if watchQuietPeriod > 0 {
		cfg.QuietPeriod = watchQuietPeriod
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	sched := scheduler.New(newAggregator(cfg), cfg.RefreshInterval)
	sched.OnComplete = func(summary *inventory.CollectionSummary) {
		if _, err := db.SaveSummary(summary); err != nil {
			log.Error().Err(err).Msg("failed to record run")
		}
	}

	sched.Schedule()
	defer sched.Stop()

	fsWatcher := watcher.New(sched, cfg.WatchRoots, cfg.QuietPeriod)
	if err := fsWatcher.Start(); err != nil {
		// Filesystem triggers are an optimization; the periodic refresh
		// still runs without them.
		log.Warn().Err(err).Msg("filesystem triggers disabled")
		fsWatcher = nil
	} else {
		defer fsWatcher.Stop()
	}

	log.Info().
		Dur("interval", cfg.RefreshInterval).
		Msg("watch started, collecting initial inventory")

	summary := sched.RefreshNow(cmd.Context())
	log.Info().
		Int("packages", len(summary.Snapshot.Packages)).
		Int("warnings", len(summary.Warnings)).
		Msg("initial inventory collected")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	fmt.Fprintf(os.Stderr, "received signal %v, shutting down...\n", sig)
	return nil
}
