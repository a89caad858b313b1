package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phl28/bagpack/internal/inventory"
	"github.com/phl28/bagpack/internal/output"
)

var (
	exportOut    string
	exportCached bool

	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Export the package inventory as JSON",
		Long: `Export the inventory in the wire format consumed by the rendering layers:
one document with a generation timestamp and per-manager package arrays.

By default a fresh collection runs first. With --cached the latest recorded
run is exported instead, without touching any package manager.`,
		Example: `  # Collect and export to stdout
  bagpack export

  # Export to a file
  bagpack export --out inventory.json

  # Export the last recorded run without collecting
  bagpack export --cached`,
		RunE: runExport,
	}
)

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "write to this file instead of stdout")
	exportCmd.Flags().BoolVar(&exportCached, "cached", false, "export the latest recorded run instead of collecting")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var summary *inventory.CollectionSummary
	if exportCached {
		db, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		if summary, err = db.LatestSummary(); err != nil {
			return err
		}
		if summary == nil {
			return fmt.Errorf("no recorded runs to export; run 'bagpack scan' first")
		}
	} else {
		summary = newAggregator(cfg).Collect(cmd.Context())
	}

	// Warnings are not part of the wire document; surface them on stderr so
	// piping stdout stays clean.
	if warnings := output.RenderWarnings(summary.Warnings); warnings != "" {
		fmt.Fprint(os.Stderr, warnings)
	}

	document, err := inventory.MarshalSnapshot(&summary.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot: %w", err)
	}

	if exportOut == "" {
		fmt.Println(string(document))
		return nil
	}
	if err := os.WriteFile(exportOut, append(document, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", exportOut, err)
	}
	return nil
}
