package managers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/phl28/bagpack/internal/runner"
)

// BrewCollector inventories Homebrew formulae. The inventory step is textual
// (`brew list --versions`); the outdated step is JSON (`brew outdated
// --json=v2`).
type BrewCollector struct {
	runner runner.Runner
	bin    string
	dates  DateResolver
}

// NewBrewCollector creates a brew collector. An empty bin falls back to
// "brew". dates may be nil to disable install date lookup.
func NewBrewCollector(r runner.Runner, bin string, dates DateResolver) *BrewCollector {
	if bin == "" {
		bin = "brew"
	}
	return &BrewCollector{runner: r, bin: bin, dates: dates}
}

func (c *BrewCollector) Manager() Manager {
	return ManagerBrew
}

// brewOutdatedOutput represents the structure of `brew outdated --json=v2`
// output. Casks are not inventoried, so only formulae are decoded.
type brewOutdatedOutput struct {
	Formulae []brewOutdatedFormula `json:"formulae"`
}

type brewOutdatedFormula struct {
	Name           string `json:"name"`
	LatestVersion  string `json:"latest_version"`
	CurrentVersion string `json:"current_version"`
}

// Collect lists installed formulae, annotates them with the newest available
// versions, and returns normalized records. If the inventory step fails the
// outdated step is never attempted; a zero-package inventory skips the
// outdated step entirely.
func (c *BrewCollector) Collect(ctx context.Context) ([]PackageRecord, error) {
	res, err := c.runner.Run(ctx, c.bin, []string{"list", "--versions"})
	if err != nil {
		return nil, err
	}

	names, installed, err := parseBrewList(res.Stdout)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return []PackageRecord{}, nil
	}

	out, err := c.runner.Run(ctx, c.bin, []string{"outdated", "--json=v2"})
	if err != nil {
		return nil, err
	}

	latest, err := parseBrewOutdated(out.Stdout)
	if err != nil {
		return nil, err
	}

	records := make([]PackageRecord, 0, len(names))
	for _, name := range names {
		var latestPtr *string
		if v, ok := latest[name]; ok {
			v := v
			latestPtr = &v
		}
		records = append(records, Normalize(
			name,
			installed[name],
			latestPtr,
			resolveInstallDate(c.dates, ManagerBrew, name),
			ManagerBrew,
		))
	}
	return records, nil
}

// parseBrewList parses `brew list --versions` output: one formula per line,
// name first, versions after. Multi-installed kegs list several versions and
// the newest sorts last, so the last field wins.
func parseBrewList(output []byte) ([]string, map[string]string, error) {
	var names []string
	installed := make(map[string]string)

	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, nil, &ParseError{
				Manager: ManagerBrew,
				Step:    "inventory",
				Err:     fmt.Errorf("line %q: expected name and version", line),
			}
		}
		name := fields[0]
		if _, seen := installed[name]; !seen {
			names = append(names, name)
		}
		installed[name] = fields[len(fields)-1]
	}

	return names, installed, nil
}

// parseBrewOutdated builds a name to latest-version map from `brew outdated
// --json=v2`. Some brew versions omit latest_version and report the newest
// available version as current_version, so that field is the fallback.
func parseBrewOutdated(output []byte) (map[string]string, error) {
	var parsed brewOutdatedOutput
	if err := json.Unmarshal(output, &parsed); err != nil {
		return nil, &ParseError{Manager: ManagerBrew, Step: "outdated", Err: err}
	}

	latest := make(map[string]string, len(parsed.Formulae))
	for _, f := range parsed.Formulae {
		if f.Name == "" {
			continue
		}
		v := f.LatestVersion
		if v == "" {
			v = f.CurrentVersion
		}
		latest[f.Name] = v
	}
	return latest, nil
}
