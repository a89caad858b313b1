package app

import (
	"fmt"

	"github.com/phl28/bagpack/internal/config"
	"github.com/phl28/bagpack/internal/inventory"
	"github.com/phl28/bagpack/internal/managers"
	"github.com/phl28/bagpack/internal/runner"
	"github.com/phl28/bagpack/internal/store"
)

// loadConfig resolves the runtime configuration from the environment plus
// command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	if dataDirFlag != "" {
		cfg.DataDir = dataDirFlag
	}
	return cfg, nil
}

// newAggregator builds the production aggregator: one process runner shared
// by the three collectors, plus the filesystem install date resolver.
func newAggregator(cfg *config.Config) *inventory.Aggregator {
	r := runner.New(cfg.CommandTimeout)
	dates := managers.NewFSDateResolver()
	return inventory.New(
		managers.NewBrewCollector(r, cfg.BrewBin, dates),
		managers.NewNpmCollector(r, cfg.NpmBin, dates),
		managers.NewPipCollector(r, cfg.PipBin, cfg.PythonBin, dates),
	)
}

// openStore opens (and if necessary initializes) the snapshot history
// database.
func openStore(cfg *config.Config) (*store.Store, error) {
	dbPath, err := cfg.DBPath()
	if err != nil {
		return nil, err
	}
	db, err := store.New(dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.CreateSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create database schema: %w", err)
	}
	return db, nil
}
