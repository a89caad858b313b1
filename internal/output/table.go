// Package output renders inventory snapshots and collection warnings for the
// terminal. Tables use ASCII characters and ANSI color codes; color is
// suppressed on non-TTY output and when NO_COLOR is set.
package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/phl28/bagpack/internal/inventory"
	"github.com/phl28/bagpack/internal/managers"
)

// ANSI color codes for package status display
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// RenderSnapshotTable renders the full inventory as one table, grouped by
// manager in enumeration order with per-manager discovery order preserved.
func RenderSnapshotTable(snap *inventory.Snapshot) string {
	if len(snap.Packages) == 0 {
		return "No packages found.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-8s %-28s %-14s %-14s %-10s %s\n",
		"Manager", "Package", "Current", "Latest", "Status", "Installed"))
	sb.WriteString(strings.Repeat("─", 92))
	sb.WriteString("\n")

	for _, m := range managers.Enumerate() {
		for _, rec := range snap.RecordsFor(m) {
			latest := "—"
			if rec.LatestVersion != nil {
				latest = *rec.LatestVersion
			}
			installed := "—"
			if rec.InstalledAt != nil {
				installed = formatRelativeTime(*rec.InstalledAt)
			}

			status := formatStatus(rec.Status)
			if IsColorEnabled() {
				status = statusColor(rec.Status) + status + colorReset
			}

			sb.WriteString(fmt.Sprintf("%-8s %-28s %-14s %-14s %-10s %s\n",
				string(m),
				truncate(rec.Name, 28),
				truncate(rec.CurrentVersion, 14),
				truncate(latest, 14),
				status,
				installed))
		}
	}

	return sb.String()
}

// RenderWarnings renders per-manager collection warnings, one line each.
// Returns an empty string when there are none.
func RenderWarnings(warnings []inventory.Warning) string {
	if len(warnings) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, w := range warnings {
		line := fmt.Sprintf("⚠ %s: %s", w.Manager, w.Message)
		if IsColorEnabled() {
			line = colorYellow + line + colorReset
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}

// RenderSummaryLine renders the one-line scan result footer.
// Example: "142 packages (brew 98 · npm 12 · pip 32), 7 outdated"
func RenderSummaryLine(snap *inventory.Snapshot) string {
	counts := snap.CountByManager()
	parts := make([]string, 0, len(managers.Enumerate()))
	for _, m := range managers.Enumerate() {
		parts = append(parts, fmt.Sprintf("%s %d", m, counts[m]))
	}
	return fmt.Sprintf("%d packages (%s), %d outdated",
		len(snap.Packages), strings.Join(parts, " · "), snap.OutdatedCount())
}

// formatStatus returns the display label for a status. unknown renders as
// "-", matching the wire format.
func formatStatus(status managers.Status) string {
	if status == managers.StatusUnknown {
		return "-"
	}
	return string(status)
}

func statusColor(status managers.Status) string {
	switch status {
	case managers.StatusCurrent:
		return colorGreen
	case managers.StatusOutdated:
		return colorYellow
	default:
		return colorGray
	}
}

// formatRelativeTime converts a timestamp to relative time (e.g., "2 days ago").
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "—"
	}

	diff := time.Since(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return plural(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return plural(int(diff.Hours()), "hour")
	case diff < 7*24*time.Hour:
		return plural(int(diff.Hours()/24), "day")
	case diff < 30*24*time.Hour:
		return plural(int(diff.Hours()/24/7), "week")
	case diff < 365*24*time.Hour:
		return plural(int(diff.Hours()/24/30), "month")
	default:
		return plural(int(diff.Hours()/24/365), "year")
	}
}

func plural(n int, unit string) string {
	if n <= 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// truncate truncates a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
