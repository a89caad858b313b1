package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/phl28/bagpack/internal/inventory"
)

// RunMeta summarizes one persisted inventory run without its full document.
type RunMeta struct {
	ID            int64
	GeneratedAt   time.Time
	PackageCount  int
	OutdatedCount int
	WarningCount  int
	CreatedAt     time.Time
}

// SaveSummary persists a completed run and returns its row ID. The snapshot
// is stored as the wire-format document, so whatever the store returns is
// byte-compatible with the export command.
func (s *Store) SaveSummary(summary *inventory.CollectionSummary) (int64, error) {
	document, err := inventory.MarshalSnapshot(&summary.Snapshot)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize snapshot: %w", err)
	}

	warnings := summary.Warnings
	if warnings == nil {
		warnings = []inventory.Warning{}
	}
	warningsJSON, err := json.Marshal(warnings)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize warnings: %w", err)
	}

	query := `
		INSERT INTO runs
		(generated_at, package_count, outdated_count, warning_count, document, warnings, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	res, err := s.db.Exec(query,
		summary.Snapshot.GeneratedAt.UTC().Format(time.RFC3339),
		len(summary.Snapshot.Packages),
		summary.Snapshot.OutdatedCount(),
		len(warnings),
		string(document),
		string(warningsJSON),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}
	return id, nil
}

// LatestSummary returns the most recently persisted run, or (nil, nil) when
// no run has been recorded yet.
func (s *Store) LatestSummary() (*inventory.CollectionSummary, error) {
	var document, warningsJSON string
	err := s.db.QueryRow(
		`SELECT document, warnings FROM runs ORDER BY id DESC LIMIT 1`,
	).Scan(&document, &warningsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read latest run: %w", err)
	}

	snapshot, err := inventory.UnmarshalSnapshot([]byte(document))
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored snapshot: %w", err)
	}

	var warnings []inventory.Warning
	if err := json.Unmarshal([]byte(warningsJSON), &warnings); err != nil {
		return nil, fmt.Errorf("failed to parse stored warnings: %w", err)
	}
	if len(warnings) == 0 {
		warnings = nil
	}

	return &inventory.CollectionSummary{Snapshot: *snapshot, Warnings: warnings}, nil
}

// ListRuns returns metadata for the most recent runs, newest first. A
// non-positive limit returns all runs.
func (s *Store) ListRuns(limit int) ([]RunMeta, error) {
	query := `
		SELECT id, generated_at, package_count, outdated_count, warning_count, created_at
		FROM runs
		ORDER BY id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunMeta
	for rows.Next() {
		var meta RunMeta
		var generatedAt, createdAt string
		if err := rows.Scan(&meta.ID, &generatedAt, &meta.PackageCount, &meta.OutdatedCount, &meta.WarningCount, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if meta.GeneratedAt, err = time.Parse(time.RFC3339, generatedAt); err != nil {
			return nil, fmt.Errorf("failed to parse generated_at for run %d: %w", meta.ID, err)
		}
		if meta.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at for run %d: %w", meta.ID, err)
		}
		runs = append(runs, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}
