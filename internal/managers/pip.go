package managers

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/phl28/bagpack/internal/runner"
)

// PipCollector inventories globally installed pip packages. Both steps are
// JSON (`pip list --format=json` and `pip list --outdated --format=json`).
type PipCollector struct {
	runner runner.Runner
	bin    string
	python string
	dates  DateResolver
}

// NewPipCollector creates a pip collector. An empty bin falls back to
// "pip3". When python is non-empty the collector runs `<python> -m pip`
// instead of the pip binary, for hosts where pip itself is not on the search
// path. dates may be nil to disable install date lookup.
func NewPipCollector(r runner.Runner, bin, python string, dates DateResolver) *PipCollector {
	if bin == "" {
		bin = "pip3"
	}
	return &PipCollector{runner: r, bin: bin, python: python, dates: dates}
}

func (c *PipCollector) Manager() Manager {
	return ManagerPip
}

// command resolves the program and argument prefix for one pip invocation,
// honoring the interpreter override.
func (c *PipCollector) command(args ...string) (string, []string) {
	if c.python != "" {
		return c.python, append([]string{"-m", "pip"}, args...)
	}
	return c.bin, args
}

// pipListEntry represents one element of `pip list --format=json` output.
type pipListEntry struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// pipOutdatedEntry represents one element of `pip list --outdated
// --format=json` output.
type pipOutdatedEntry struct {
	Name          string `json:"name"`
	LatestVersion string `json:"latest_version"`
}

// Collect lists installed pip packages, annotates them with the latest
// available versions, and returns normalized records in pip's listing order.
func (c *PipCollector) Collect(ctx context.Context) ([]PackageRecord, error) {
	program, args := c.command("list", "--format=json")
	res, err := c.runner.Run(ctx, program, args)
	if err != nil {
		return nil, err
	}

	var parsed []pipListEntry
	if err := json.Unmarshal(res.Stdout, &parsed); err != nil {
		return nil, &ParseError{Manager: ManagerPip, Step: "inventory", Err: err}
	}
	if len(parsed) == 0 {
		return []PackageRecord{}, nil
	}

	program, args = c.command("list", "--outdated", "--format=json")
	out, err := c.runner.Run(ctx, program, args)
	if err != nil {
		return nil, err
	}

	latest, err := parsePipOutdated(out.Stdout)
	if err != nil {
		return nil, err
	}

	records := make([]PackageRecord, 0, len(parsed))
	for _, entry := range parsed {
		if entry.Name == "" {
			continue
		}
		var latestPtr *string
		if v, ok := latest[entry.Name]; ok {
			v := v
			latestPtr = &v
		}
		records = append(records, Normalize(
			entry.Name,
			entry.Version,
			latestPtr,
			resolveInstallDate(c.dates, ManagerPip, entry.Name),
			ManagerPip,
		))
	}
	return records, nil
}

// parsePipOutdated builds a name to latest-version map. Some pip versions
// print nothing at all when no package is outdated, so empty stdout is a
// valid empty result rather than a parse failure.
func parsePipOutdated(output []byte) (map[string]string, error) {
	if strings.TrimSpace(string(output)) == "" {
		return map[string]string{}, nil
	}

	var parsed []pipOutdatedEntry
	if err := json.Unmarshal(output, &parsed); err != nil {
		return nil, &ParseError{Manager: ManagerPip, Step: "outdated", Err: err}
	}

	latest := make(map[string]string, len(parsed))
	for _, entry := range parsed {
		if entry.Name == "" {
			continue
		}
		latest[entry.Name] = entry.LatestVersion
	}
	return latest, nil
}
