package managers

import (
	"context"
	"errors"
	"testing"
)

// Test data: sample brew outdated --json=v2 output
const mockBrewOutdatedJSON = `{
  "formulae": [
    {"name": "wget", "latest_version": "1.24.6"},
    {"name": "node", "current_version": "22.1.0"}
  ],
  "casks": []
}`

func brewListArgs() []string     { return []string{"list", "--versions"} }
func brewOutdatedArgs() []string { return []string{"outdated", "--json=v2"} }

func TestBrewCollect(t *testing.T) {
	r := newFakeRunner()
	r.respond("brew", brewListArgs(), fakeResponse{stdout: "wget 1.24.5\nnode 20.10.0\nhtop 3.3.0\n"})
	r.respond("brew", brewOutdatedArgs(), fakeResponse{stdout: mockBrewOutdatedJSON})

	c := NewBrewCollector(r, "", nil)
	records, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	wget := records[0]
	if wget.Name != "wget" || wget.CurrentVersion != "1.24.5" {
		t.Errorf("unexpected first record: %+v", wget)
	}
	if wget.LatestVersion == nil || *wget.LatestVersion != "1.24.6" {
		t.Errorf("expected latest 1.24.6, got %v", wget.LatestVersion)
	}
	if wget.Status != StatusOutdated {
		t.Errorf("expected wget outdated, got %s", wget.Status)
	}

	// latest_version missing falls back to current_version.
	node := records[1]
	if node.LatestVersion == nil || *node.LatestVersion != "22.1.0" {
		t.Errorf("expected node latest 22.1.0, got %v", node.LatestVersion)
	}
	if node.Status != StatusOutdated {
		t.Errorf("expected node outdated, got %s", node.Status)
	}

	// Not mentioned by the outdated step: current, no latest.
	htop := records[2]
	if htop.LatestVersion != nil {
		t.Errorf("expected no latest for htop, got %v", *htop.LatestVersion)
	}
	if htop.Status != StatusCurrent {
		t.Errorf("expected htop current, got %s", htop.Status)
	}

	for _, rec := range records {
		if rec.Manager != ManagerBrew {
			t.Errorf("expected manager brew, got %s", rec.Manager)
		}
	}
}

func TestBrewCollectMultiVersionLine(t *testing.T) {
	r := newFakeRunner()
	r.respond("brew", brewListArgs(), fakeResponse{stdout: "node 20.10.0 22.1.0\n"})
	r.respond("brew", brewOutdatedArgs(), fakeResponse{stdout: `{"formulae": []}`})

	c := NewBrewCollector(r, "", nil)
	records, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].CurrentVersion != "22.1.0" {
		t.Errorf("expected newest installed version 22.1.0, got %q", records[0].CurrentVersion)
	}
}

func TestBrewCollectEmptyInventorySkipsOutdated(t *testing.T) {
	r := newFakeRunner()
	r.respond("brew", brewListArgs(), fakeResponse{stdout: "\n"})

	c := NewBrewCollector(r, "", nil)
	records, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected 0 records, got %d", len(records))
	}
	if len(r.calls) != 1 {
		t.Errorf("expected only the inventory command to run, got %v", r.calls)
	}
}

func TestBrewCollectInventoryFailureAbortsOutdated(t *testing.T) {
	r := newFakeRunner()
	r.respond("brew", brewListArgs(), fakeResponse{exitCode: 1})
	r.respond("brew", brewOutdatedArgs(), fakeResponse{stdout: mockBrewOutdatedJSON})

	c := NewBrewCollector(r, "", nil)
	if _, err := c.Collect(context.Background()); err == nil {
		t.Fatal("expected inventory failure to fail the collector")
	}
	if len(r.calls) != 1 {
		t.Errorf("expected outdated step to be skipped after inventory failure, got %v", r.calls)
	}
}

func TestBrewCollectOutdatedFailureFailsCollector(t *testing.T) {
	r := newFakeRunner()
	r.respond("brew", brewListArgs(), fakeResponse{stdout: "wget 1.24.5\n"})
	r.respond("brew", brewOutdatedArgs(), fakeResponse{exitCode: 1})

	c := NewBrewCollector(r, "", nil)
	if _, err := c.Collect(context.Background()); err == nil {
		t.Fatal("expected outdated failure to fail the collector")
	}
}

func TestBrewCollectMalformedOutputs(t *testing.T) {
	tests := []struct {
		name     string
		list     string
		outdated string
	}{
		{
			name:     "inventory line without version",
			list:     "wget\n",
			outdated: `{"formulae": []}`,
		},
		{
			name:     "outdated is not JSON",
			list:     "wget 1.24.5\n",
			outdated: "Error: unknown command",
		},
		{
			name:     "outdated is a JSON array",
			list:     "wget 1.24.5\n",
			outdated: `[{"name": "wget"}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newFakeRunner()
			r.respond("brew", brewListArgs(), fakeResponse{stdout: tt.list})
			r.respond("brew", brewOutdatedArgs(), fakeResponse{stdout: tt.outdated})

			c := NewBrewCollector(r, "", nil)
			_, err := c.Collect(context.Background())
			if err == nil {
				t.Fatal("expected parse failure")
			}
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected *ParseError, got %T: %v", err, err)
			}
			if parseErr.Manager != ManagerBrew {
				t.Errorf("expected brew parse error, got %s", parseErr.Manager)
			}
		})
	}
}

func TestBrewCollectCustomBinary(t *testing.T) {
	r := newFakeRunner()
	r.respond("/opt/custom/brew", brewListArgs(), fakeResponse{stdout: "wget 1.24.5\n"})
	r.respond("/opt/custom/brew", brewOutdatedArgs(), fakeResponse{stdout: `{"formulae": []}`})

	c := NewBrewCollector(r, "/opt/custom/brew", nil)
	if _, err := c.Collect(context.Background()); err != nil {
		t.Fatalf("Collect with custom binary failed: %v", err)
	}
}
