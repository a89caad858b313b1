package managers

import (
	"context"
	"errors"
	"testing"
)

// Test data: sample npm ls --global --json --depth=0 output
const mockNpmListJSON = `{
  "name": "lib",
  "dependencies": {
    "typescript": {"version": "5.5.2"},
    "corepack": {"version": "0.29.3"}
  }
}`

// Test data: sample npm outdated --global --json output
const mockNpmOutdatedJSON = `{
  "typescript": {"current": "5.5.2", "wanted": "5.6.3", "latest": "5.6.3"}
}`

func npmListArgs() []string     { return []string{"ls", "--global", "--json", "--depth=0"} }
func npmOutdatedArgs() []string { return []string{"outdated", "--global", "--json"} }

func TestNpmCollect(t *testing.T) {
	r := newFakeRunner()
	r.respond("npm", npmListArgs(), fakeResponse{stdout: mockNpmListJSON})
	// npm signals "outdated packages exist" with exit code 1.
	r.respond("npm", npmOutdatedArgs(), fakeResponse{stdout: mockNpmOutdatedJSON, exitCode: 1})

	c := NewNpmCollector(r, "", nil)
	records, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	// Records come back in name order.
	corepack, typescript := records[0], records[1]
	if corepack.Name != "corepack" || typescript.Name != "typescript" {
		t.Fatalf("unexpected record order: %q, %q", corepack.Name, typescript.Name)
	}

	if typescript.Status != StatusOutdated {
		t.Errorf("expected typescript outdated, got %s", typescript.Status)
	}
	if typescript.LatestVersion == nil || *typescript.LatestVersion != "5.6.3" {
		t.Errorf("expected typescript latest 5.6.3, got %v", typescript.LatestVersion)
	}

	if corepack.Status != StatusCurrent {
		t.Errorf("expected corepack current, got %s", corepack.Status)
	}
	if corepack.LatestVersion != nil {
		t.Errorf("expected no latest for corepack, got %v", *corepack.LatestVersion)
	}
}

func TestNpmCollectEmptyDependencies(t *testing.T) {
	tests := []struct {
		name string
		list string
	}{
		{name: "empty dependencies map", list: `{"dependencies": {}}`},
		{name: "missing dependencies key", list: `{"name": "lib"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newFakeRunner()
			r.respond("npm", npmListArgs(), fakeResponse{stdout: tt.list})

			c := NewNpmCollector(r, "", nil)
			records, err := c.Collect(context.Background())
			if err != nil {
				t.Fatalf("Collect failed: %v", err)
			}
			if len(records) != 0 {
				t.Errorf("expected 0 records, got %d", len(records))
			}
			if len(r.calls) != 1 {
				t.Errorf("expected outdated step to be skipped, got %v", r.calls)
			}
		})
	}
}

func TestNpmCollectNothingOutdated(t *testing.T) {
	r := newFakeRunner()
	r.respond("npm", npmListArgs(), fakeResponse{stdout: mockNpmListJSON})
	r.respond("npm", npmOutdatedArgs(), fakeResponse{stdout: ""})

	c := NewNpmCollector(r, "", nil)
	records, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	for _, rec := range records {
		if rec.Status != StatusCurrent {
			t.Errorf("expected %s current, got %s", rec.Name, rec.Status)
		}
		if rec.LatestVersion != nil {
			t.Errorf("expected no latest for %s, got %v", rec.Name, *rec.LatestVersion)
		}
	}
}

func TestNpmCollectDisallowedExitCode(t *testing.T) {
	r := newFakeRunner()
	r.respond("npm", npmListArgs(), fakeResponse{stdout: mockNpmListJSON})
	r.respond("npm", npmOutdatedArgs(), fakeResponse{stdout: "boom", exitCode: 2})

	c := NewNpmCollector(r, "", nil)
	if _, err := c.Collect(context.Background()); err == nil {
		t.Fatal("expected exit code 2 to fail the collector")
	}
}

func TestNpmCollectMalformedInventory(t *testing.T) {
	r := newFakeRunner()
	r.respond("npm", npmListArgs(), fakeResponse{stdout: "not json"})

	c := NewNpmCollector(r, "", nil)
	_, err := c.Collect(context.Background())

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
	if parseErr.Manager != ManagerNpm || parseErr.Step != "inventory" {
		t.Errorf("unexpected parse error: %+v", parseErr)
	}
}

func TestNpmCollectSkipsEntriesWithoutVersion(t *testing.T) {
	r := newFakeRunner()
	r.respond("npm", npmListArgs(), fakeResponse{stdout: `{"dependencies": {"broken": {}, "typescript": {"version": "5.5.2"}}}`})
	r.respond("npm", npmOutdatedArgs(), fakeResponse{stdout: "{}"})

	c := NewNpmCollector(r, "", nil)
	records, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(records) != 1 || records[0].Name != "typescript" {
		t.Errorf("expected only typescript, got %+v", records)
	}
}
