package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestRunCommandCompletes(t *testing.T) {
	args := []string{
		"run",
		"--run-id", "cli-run",
		"--agent", "value",
		"--iterations", "4",
		"--batch-size", "4",
		"--seed", "11",
	}
	if err := run(context.Background(), args); err != nil {
		t.Fatalf("run command: %v", err)
	}
}

func TestRunCommandFromConfig(t *testing.T) {
	path := writeConfig(t, map[string]any{
		"run_id":     "cli-cfg-run",
		"agent":      "policy",
		"iterations": 3,
		"seed":       7,
	})
	args := []string{"run", "--config", path, "--iterations", "2"}
	if err := run(context.Background(), args); err != nil {
		t.Fatalf("run command: %v", err)
	}
}

func TestRunCommandRequiresRunID(t *testing.T) {
	if err := run(context.Background(), []string{"run", "--iterations", "1"}); err == nil {
		t.Fatal("expected missing run id error")
	}
}

func TestUnknownCommand(t *testing.T) {
	if err := run(context.Background(), []string{"frobnicate"}); err == nil {
		t.Fatal("expected usage error")
	}
}

func TestExportImportStateCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processor.json")

	if err := run(context.Background(), []string{"export-state", "--out", path, "--qubits", "3", "--seed", "5"}); err != nil {
		t.Fatalf("export-state: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected snapshot file: %v", err)
	}
	if err := run(context.Background(), []string{"import-state", "--in", path}); err != nil {
		t.Fatalf("import-state: %v", err)
	}
}
