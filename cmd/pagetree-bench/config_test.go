package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadScenarioAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	writeFile(t, path, "ops:\n  - kind: put\n    key: 1\n    value: 2\n")

	sc, err := loadScenario(path)
	if err != nil {
		t.Fatalf("loadScenario: %v", err)
	}
	if sc.PageSize != 4096 {
		t.Fatalf("PageSize = %d, want default 4096", sc.PageSize)
	}
	if sc.DataFile != "pagetree-bench.db" {
		t.Fatalf("DataFile = %q, want default", sc.DataFile)
	}
	if len(sc.Ops) != 1 || sc.Ops[0].Kind != "put" {
		t.Fatalf("Ops = %+v, want one put op", sc.Ops)
	}
}

func TestLoadScenarioRejectsUnknownOpKind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	writeFile(t, path, "ops:\n  - kind: delete\n    key: 1\n")

	if _, err := loadScenario(path); err == nil {
		t.Fatalf("loadScenario: want error for unknown op kind, got nil")
	}
}

func TestLoadScenarioMissingFile(t *testing.T) {
	if _, err := loadScenario(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("loadScenario: want error for missing file, got nil")
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writeFile: %v", err)
	}
}
