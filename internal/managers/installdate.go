package managers

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DateResolver reports a best-effort install timestamp for a package, or nil
// when no timestamp is available. Implementations never fail a collector.
type DateResolver interface {
	Resolve(manager Manager, name string) *time.Time
}

// FSDateResolver derives install dates from each manager's on-disk layout:
// the Homebrew cellar directory for a formula, the global node_modules
// directory for an npm package, and the site-packages dist-info directory for
// a pip package. The directory modification time stands in for the install
// time, which is a heuristic and nothing more.
type FSDateResolver struct {
	BrewRoots []string
	NpmRoots  []string
	PipRoots  []string
}

// NewFSDateResolver creates a resolver probing the conventional install roots
// for this machine. Roots that do not exist simply never match.
func NewFSDateResolver() *FSDateResolver {
	pipRoots, _ := filepath.Glob("/usr/local/lib/python3*/site-packages")
	if more, _ := filepath.Glob("/opt/homebrew/lib/python3*/site-packages"); len(more) > 0 {
		pipRoots = append(pipRoots, more...)
	}
	return &FSDateResolver{
		BrewRoots: []string{
			"/opt/homebrew/Cellar",
			"/usr/local/Cellar",
			"/home/linuxbrew/.linuxbrew/Cellar",
		},
		NpmRoots: []string{
			"/opt/homebrew/lib/node_modules",
			"/usr/local/lib/node_modules",
		},
		PipRoots: pipRoots,
	}
}

// Resolve returns the package directory's modification time, or nil when the
// package cannot be located under any known root.
func (r *FSDateResolver) Resolve(manager Manager, name string) *time.Time {
	switch manager {
	case ManagerBrew:
		return dirModTime(r.BrewRoots, name)
	case ManagerNpm:
		// Scoped packages (@scope/name) map directly onto the directory
		// layout under node_modules.
		return dirModTime(r.NpmRoots, name)
	case ManagerPip:
		return r.resolvePip(name)
	}
	return nil
}

// resolvePip looks for the package's dist-info directory, which embeds the
// version (requests-2.32.3.dist-info), then falls back to a plain module
// directory. Pip normalizes dashes to underscores in dist-info names.
func (r *FSDateResolver) resolvePip(name string) *time.Time {
	normalized := strings.ToLower(strings.ReplaceAll(name, "-", "_"))

	for _, root := range r.PipRoots {
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() || !strings.HasSuffix(entry.Name(), ".dist-info") {
				continue
			}
			if !strings.HasPrefix(strings.ToLower(entry.Name()), normalized+"-") {
				continue
			}
			if info, err := entry.Info(); err == nil {
				t := info.ModTime().UTC()
				return &t
			}
		}
	}

	return dirModTime(r.PipRoots, name)
}

func dirModTime(roots []string, name string) *time.Time {
	for _, root := range roots {
		info, err := os.Stat(filepath.Join(root, name))
		if err != nil || !info.IsDir() {
			continue
		}
		t := info.ModTime().UTC()
		return &t
	}
	return nil
}
