// Package managers defines the normalized package model shared by all
// supported package managers and the per-manager collectors that produce it.
package managers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Manager identifies which package manager reported a record.
type Manager string

const (
	ManagerBrew Manager = "brew"
	ManagerNpm  Manager = "npm"
	ManagerPip  Manager = "pip"
)

// Enumerate returns all supported managers in their canonical order. Snapshot
// composition and wire output follow this order.
func Enumerate() []Manager {
	return []Manager{ManagerBrew, ManagerNpm, ManagerPip}
}

// ParseManager validates a manager identifier from external input.
func ParseManager(s string) (Manager, error) {
	switch Manager(s) {
	case ManagerBrew, ManagerNpm, ManagerPip:
		return Manager(s), nil
	}
	return "", fmt.Errorf("unrecognized package manager %q", s)
}

// Status describes how a package's installed version relates to the latest
// version its manager knows about. It is always derived by Normalize, never
// set directly by a collector.
type Status string

const (
	StatusCurrent  Status = "current"
	StatusOutdated Status = "outdated"
	StatusUnknown  Status = "unknown"
)

// MarshalJSON serializes the status for the wire format, where unknown is
// the literal "-".
func (s Status) MarshalJSON() ([]byte, error) {
	switch s {
	case StatusCurrent, StatusOutdated:
		return json.Marshal(string(s))
	case StatusUnknown:
		return json.Marshal("-")
	}
	return nil, fmt.Errorf("invalid package status %q", string(s))
}

// UnmarshalJSON accepts exactly the three wire literals and rejects anything
// else.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw {
	case string(StatusCurrent):
		*s = StatusCurrent
	case string(StatusOutdated):
		*s = StatusOutdated
	case "-":
		*s = StatusUnknown
	default:
		return fmt.Errorf("unrecognized package status %q", raw)
	}
	return nil
}

// PackageRecord is one installed package as seen by one manager.
// LatestVersion and InstalledAt are nil when the manager reported nothing
// usable; an empty string is never used as an absent marker.
type PackageRecord struct {
	Name           string
	CurrentVersion string
	LatestVersion  *string
	InstalledAt    *time.Time
	Status         Status
	Manager        Manager
}

// Collector produces the normalized records for one manager. A Collector
// either returns the full record set or fails as a whole; it never returns
// partial data alongside an error.
type Collector interface {
	Manager() Manager
	Collect(ctx context.Context) ([]PackageRecord, error)
}

// ParseError reports command output that did not match the manager's
// expected JSON or text shape. It is handled exactly like a command failure:
// the collector fails and contributes one warning.
type ParseError struct {
	Manager Manager
	Step    string // "inventory" or "outdated"
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s %s output: %v", e.Manager, e.Step, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
