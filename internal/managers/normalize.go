package managers

import (
	"strings"
	"time"
)

// Normalize builds one PackageRecord from raw collector data and derives its
// status. Version whitespace is trimmed here and only here, so all managers
// share identical comparison semantics: exact string equality post-trim, no
// semantic-version ordering.
//
// Status derivation:
//   - latestVersion nil: the outdated step did not mention the package, so it
//     is current and LatestVersion stays absent.
//   - latestVersion present but blank: the outdated step named the package
//     without a usable version, so the status is unknown.
//   - latestVersion differs from currentVersion: outdated.
//   - otherwise: current, with the reported latest version kept.
func Normalize(name, currentVersion string, latestVersion *string, installedAt *time.Time, manager Manager) PackageRecord {
	rec := PackageRecord{
		Name:           strings.TrimSpace(name),
		CurrentVersion: strings.TrimSpace(currentVersion),
		Status:         StatusCurrent,
		Manager:        manager,
	}

	if installedAt != nil {
		utc := installedAt.UTC()
		rec.InstalledAt = &utc
	}

	if latestVersion == nil {
		return rec
	}

	latest := strings.TrimSpace(*latestVersion)
	if latest == "" {
		rec.Status = StatusUnknown
		return rec
	}

	rec.LatestVersion = &latest
	if latest != rec.CurrentVersion {
		rec.Status = StatusOutdated
	}
	return rec
}

// resolveInstallDate asks the resolver for a best-effort install timestamp.
// A nil resolver disables install date lookup entirely.
func resolveInstallDate(dates DateResolver, manager Manager, name string) *time.Time {
	if dates == nil {
		return nil
	}
	return dates.Resolve(manager, name)
}
