// Package config provides environment-driven configuration for bagpack.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Default binaries invoked when no override is set. pip defaults to pip3
// since plain "pip" is frequently absent or points at a Python 2 install.
const (
	DefaultBrewBin = "brew"
	DefaultNpmBin  = "npm"
	DefaultPipBin  = "pip3"

	DefaultRefreshInterval = 24 * time.Hour
	DefaultCommandTimeout  = 60 * time.Second
	DefaultQuietPeriod     = 5 * time.Second
)

// Config holds all runtime settings. Every field has a usable default; the
// environment only overrides.
type Config struct {
	// Manager binary overrides (BAGPACK_BREW_BIN, BAGPACK_NPM_BIN,
	// BAGPACK_PIP_BIN). PythonBin, when set, makes the pip collector run
	// `<python> -m pip` instead of the pip binary (BAGPACK_PYTHON_BIN).
	BrewBin   string
	NpmBin    string
	PipBin    string
	PythonBin string

	// DataDir is where the snapshot history database lives.
	// Defaults to ~/.bagpack (BAGPACK_DATA_DIR).
	DataDir string

	// RefreshInterval is the periodic refresh cadence in watch mode
	// (BAGPACK_REFRESH_INTERVAL, a Go duration string).
	RefreshInterval time.Duration

	// CommandTimeout bounds a single package manager invocation
	// (BAGPACK_COMMAND_TIMEOUT, a Go duration string).
	CommandTimeout time.Duration

	// QuietPeriod is the filesystem watcher debounce window
	// (BAGPACK_QUIET_PERIOD, a Go duration string).
	QuietPeriod time.Duration

	// WatchRoots are the install directories observed in watch mode
	// (BAGPACK_WATCH_ROOTS, colon-separated). Roots that do not exist on
	// this machine are skipped at watch startup.
	WatchRoots []string
}

// DefaultWatchRoots lists the install roots observed in watch mode when no
// override is set. Nonexistent paths are skipped when the watcher starts.
func DefaultWatchRoots() []string {
	return []string{
		"/opt/homebrew/Cellar",
		"/usr/local/Cellar",
		"/home/linuxbrew/.linuxbrew/Cellar",
		"/opt/homebrew/lib/node_modules",
		"/usr/local/lib/node_modules",
	}
}

// FromEnv builds a Config from defaults plus environment overrides.
func FromEnv() (*Config, error) {
	cfg := &Config{
		BrewBin:         envOr("BAGPACK_BREW_BIN", DefaultBrewBin),
		NpmBin:          envOr("BAGPACK_NPM_BIN", DefaultNpmBin),
		PipBin:          envOr("BAGPACK_PIP_BIN", DefaultPipBin),
		PythonBin:       os.Getenv("BAGPACK_PYTHON_BIN"),
		DataDir:         os.Getenv("BAGPACK_DATA_DIR"),
		RefreshInterval: DefaultRefreshInterval,
		CommandTimeout:  DefaultCommandTimeout,
		QuietPeriod:     DefaultQuietPeriod,
		WatchRoots:      DefaultWatchRoots(),
	}

	var err error
	if cfg.RefreshInterval, err = envDuration("BAGPACK_REFRESH_INTERVAL", cfg.RefreshInterval); err != nil {
		return nil, err
	}
	if cfg.CommandTimeout, err = envDuration("BAGPACK_COMMAND_TIMEOUT", cfg.CommandTimeout); err != nil {
		return nil, err
	}
	if cfg.QuietPeriod, err = envDuration("BAGPACK_QUIET_PERIOD", cfg.QuietPeriod); err != nil {
		return nil, err
	}

	if roots := os.Getenv("BAGPACK_WATCH_ROOTS"); roots != "" {
		cfg.WatchRoots = nil
		for _, root := range strings.Split(roots, ":") {
			if root = strings.TrimSpace(root); root != "" {
				cfg.WatchRoots = append(cfg.WatchRoots, root)
			}
		}
	}

	return cfg, nil
}

// DBPath returns the snapshot database path, creating the data directory if
// needed.
func (c *Config) DBPath() (string, error) {
	dir := c.DataDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		dir = filepath.Join(home, ".bagpack")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return filepath.Join(dir, "bagpack.db"), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, v)
	}
	return d, nil
}
