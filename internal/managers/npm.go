package managers

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/phl28/bagpack/internal/runner"
)

// npm exits with code 1 when outdated packages exist; that is its signal for
// "there is something to report", not a failure.
var npmOutdatedExitCodes = []int{0, 1}

// NpmCollector inventories globally installed npm packages. Both steps are
// JSON (`npm ls --global --json --depth=0` and `npm outdated --global
// --json`).
type NpmCollector struct {
	runner runner.Runner
	bin    string
	dates  DateResolver
}

// NewNpmCollector creates an npm collector. An empty bin falls back to
// "npm". dates may be nil to disable install date lookup.
func NewNpmCollector(r runner.Runner, bin string, dates DateResolver) *NpmCollector {
	if bin == "" {
		bin = "npm"
	}
	return &NpmCollector{runner: r, bin: bin, dates: dates}
}

func (c *NpmCollector) Manager() Manager {
	return ManagerNpm
}

// npmListOutput represents the structure of `npm ls --global --json` output.
type npmListOutput struct {
	Dependencies map[string]npmListEntry `json:"dependencies"`
}

type npmListEntry struct {
	Version string `json:"version"`
}

// npmOutdatedEntry represents one value of the `npm outdated --global --json`
// object, which is keyed by package name.
type npmOutdatedEntry struct {
	Latest string `json:"latest"`
}

// Collect lists global npm packages, annotates them with the latest published
// versions, and returns normalized records in name order (npm's own listing
// order).
func (c *NpmCollector) Collect(ctx context.Context) ([]PackageRecord, error) {
	res, err := c.runner.Run(ctx, c.bin, []string{"ls", "--global", "--json", "--depth=0"})
	if err != nil {
		return nil, err
	}

	var parsed npmListOutput
	if err := json.Unmarshal(res.Stdout, &parsed); err != nil {
		return nil, &ParseError{Manager: ManagerNpm, Step: "inventory", Err: err}
	}

	names := make([]string, 0, len(parsed.Dependencies))
	for name, entry := range parsed.Dependencies {
		if name == "" || entry.Version == "" {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return []PackageRecord{}, nil
	}
	sort.Strings(names)

	out, err := c.runner.Run(ctx, c.bin, []string{"outdated", "--global", "--json"}, npmOutdatedExitCodes...)
	if err != nil {
		return nil, err
	}

	// npm prints an empty body instead of {} when nothing is outdated.
	outdated := map[string]npmOutdatedEntry{}
	if body := strings.TrimSpace(string(out.Stdout)); body != "" {
		if err := json.Unmarshal([]byte(body), &outdated); err != nil {
			return nil, &ParseError{Manager: ManagerNpm, Step: "outdated", Err: err}
		}
	}

	records := make([]PackageRecord, 0, len(names))
	for _, name := range names {
		var latestPtr *string
		if entry, ok := outdated[name]; ok {
			v := entry.Latest
			latestPtr = &v
		}
		records = append(records, Normalize(
			name,
			parsed.Dependencies[name].Version,
			latestPtr,
			resolveInstallDate(c.dates, ManagerNpm, name),
			ManagerNpm,
		))
	}
	return records, nil
}
