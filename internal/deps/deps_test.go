package deps_test

import (
	"os"
	"path/filepath"
	"testing"

	"stagehand/internal/deps"
)

func TestCheckBinariesFindsInstalledCommand(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "fake-python")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write fake binary: %v", err)
	}
	t.Setenv("PATH", dir)

	statuses := deps.CheckBinaries([]deps.Requirement{
		{Name: "Pipeline interpreter", Command: "fake-python"},
	})
	if len(statuses) != 1 {
		t.Fatalf("expected 1 status, got %d", len(statuses))
	}
	if !statuses[0].Available {
		t.Fatalf("expected available, got %+v", statuses[0])
	}
}

func TestCheckBinariesReportsMissingCommand(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	statuses := deps.CheckBinaries([]deps.Requirement{
		{Name: "Opener", Command: "definitely-not-installed", Optional: true},
	})
	if statuses[0].Available {
		t.Fatal("expected missing binary")
	}
	if statuses[0].Detail == "" {
		t.Fatal("expected detail message")
	}
	if !statuses[0].Optional {
		t.Fatal("expected optional flag to carry through")
	}
}

func TestCheckBinariesUnconfiguredCommand(t *testing.T) {
	statuses := deps.CheckBinaries([]deps.Requirement{
		{Name: "Opener", Command: "  "},
	})
	if statuses[0].Available {
		t.Fatal("expected unavailable for empty command")
	}
	if statuses[0].Detail != "command not configured" {
		t.Fatalf("unexpected detail: %q", statuses[0].Detail)
	}
}
