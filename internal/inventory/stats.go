package inventory

import "github.com/phl28/bagpack/internal/managers"

// RecordsFor returns the snapshot's records for one manager, in discovery
// order.
func (s *Snapshot) RecordsFor(m managers.Manager) []managers.PackageRecord {
	var records []managers.PackageRecord
	for _, rec := range s.Packages {
		if rec.Manager == m {
			records = append(records, rec)
		}
	}
	return records
}

// OutdatedCount returns the number of packages flagged as outdated.
func (s *Snapshot) OutdatedCount() int {
	count := 0
	for _, rec := range s.Packages {
		if rec.Status == managers.StatusOutdated {
			count++
		}
	}
	return count
}

// CountByManager returns per-manager package counts. Managers with zero
// packages are present in the result with a zero count.
func (s *Snapshot) CountByManager() map[managers.Manager]int {
	counts := make(map[managers.Manager]int, len(managers.Enumerate()))
	for _, m := range managers.Enumerate() {
		counts[m] = 0
	}
	for _, rec := range s.Packages {
		counts[rec.Manager]++
	}
	return counts
}
