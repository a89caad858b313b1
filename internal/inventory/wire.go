package inventory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/phl28/bagpack/internal/managers"
)

// wireDocument is the export representation of a snapshot, consumed by the
// rendering layers:
//
//	{
//	  "generatedAt": "<RFC 3339 UTC>",
//	  "managers": {
//	    "brew": [ { "name", "currentVersion", "latestVersion",
//	                "installedAt", "status" } ],
//	    "npm":  [ ... ],
//	    "pip":  [ ... ]
//	  }
//	}
//
// All three manager keys are always present, with empty arrays rather than
// null. Absent latestVersion/installedAt serialize as null, and the unknown
// status serializes as the literal "-".
type wireDocument struct {
	GeneratedAt string                            `json:"generatedAt"`
	Managers    map[managers.Manager][]wireRecord `json:"managers"`
}

type wireRecord struct {
	Name           string          `json:"name"`
	CurrentVersion string          `json:"currentVersion"`
	LatestVersion  *string         `json:"latestVersion"`
	InstalledAt    *string         `json:"installedAt"`
	Status         managers.Status `json:"status"`
}

// MarshalSnapshot serializes a snapshot to the wire format, indented for
// human inspection.
func MarshalSnapshot(s *Snapshot) ([]byte, error) {
	doc := wireDocument{
		GeneratedAt: s.GeneratedAt.UTC().Format(time.RFC3339),
		Managers:    make(map[managers.Manager][]wireRecord, len(managers.Enumerate())),
	}

	for _, m := range managers.Enumerate() {
		doc.Managers[m] = []wireRecord{}
	}
	for _, rec := range s.Packages {
		var installedAt *string
		if rec.InstalledAt != nil {
			ts := rec.InstalledAt.UTC().Format(time.RFC3339)
			installedAt = &ts
		}
		doc.Managers[rec.Manager] = append(doc.Managers[rec.Manager], wireRecord{
			Name:           rec.Name,
			CurrentVersion: rec.CurrentVersion,
			LatestVersion:  rec.LatestVersion,
			InstalledAt:    installedAt,
			Status:         rec.Status,
		})
	}

	return json.MarshalIndent(doc, "", "  ")
}

// UnmarshalSnapshot parses a wire-format document back into a snapshot. The
// manager tag of each record is restored from its containing key; unknown
// manager keys are rejected.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var doc wireDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse inventory document: %w", err)
	}

	generatedAt, err := time.Parse(time.RFC3339, doc.GeneratedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid generatedAt %q: %w", doc.GeneratedAt, err)
	}

	for key := range doc.Managers {
		if _, err := managers.ParseManager(string(key)); err != nil {
			return nil, fmt.Errorf("invalid inventory document: %w", err)
		}
	}

	snap := &Snapshot{GeneratedAt: generatedAt.UTC()}
	for _, m := range managers.Enumerate() {
		for _, rec := range doc.Managers[m] {
			var installedAt *time.Time
			if rec.InstalledAt != nil {
				ts, err := time.Parse(time.RFC3339, *rec.InstalledAt)
				if err != nil {
					return nil, fmt.Errorf("invalid installedAt %q for %s/%s: %w", *rec.InstalledAt, m, rec.Name, err)
				}
				utc := ts.UTC()
				installedAt = &utc
			}
			snap.Packages = append(snap.Packages, managers.PackageRecord{
				Name:           rec.Name,
				CurrentVersion: rec.CurrentVersion,
				LatestVersion:  rec.LatestVersion,
				InstalledAt:    installedAt,
				Status:         rec.Status,
				Manager:        m,
			})
		}
	}

	return snap, nil
}
