package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phl28/bagpack/internal/managers"
	"github.com/phl28/bagpack/internal/output"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last recorded inventory run",
	Long: `Show when the inventory was last collected, how many packages each manager
reported, and any warnings from that run. Reads the local history only; no
package manager is invoked.`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	summary, err := db.LatestSummary()
	if err != nil {
		return err
	}
	if summary == nil {
		fmt.Println("No inventory runs recorded yet.")
		fmt.Println()
		fmt.Println("Run 'bagpack scan' to collect the first snapshot.")
		return nil
	}

	runs, err := db.ListRuns(1)
	if err != nil {
		return err
	}

	fmt.Printf("Last run:    %s\n", summary.Snapshot.GeneratedAt.Local().Format("2006-01-02 15:04:05"))
	if len(runs) > 0 {
		fmt.Printf("Run ID:      %d\n", runs[0].ID)
	}

	counts := summary.Snapshot.CountByManager()
	for _, m := range managers.Enumerate() {
		fmt.Printf("%-12s %d packages\n", string(m)+":", counts[m])
	}
	fmt.Printf("Outdated:    %d\n", summary.Snapshot.OutdatedCount())

	if warnings := output.RenderWarnings(summary.Warnings); warnings != "" {
		fmt.Println()
		fmt.Print(warnings)
	}

	return nil
}
