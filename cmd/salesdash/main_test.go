package main

import (
	"os"
	"path/filepath"
	"testing"

	"sales-dashboard/internal/config"
)

func TestAppCommands(t *testing.T) {
	app := newApp()

	want := []string{"generate", "serve", "load", "report", "ask", "doctor", "deploy"}
	if len(app.Commands) != len(want) {
		t.Fatalf("got %d commands, want %d", len(app.Commands), len(want))
	}
	for i, name := range want {
		if app.Commands[i].Name != name {
			t.Errorf("command %d = %q, want %q", i, app.Commands[i].Name, name)
		}
	}
}

func TestBundleFilesSkipsMissing(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "sales.csv")
	if err := os.WriteFile(csvPath, []byte("header\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{}
	cfg.Data.CSVFile = csvPath
	cfg.Assistant.ContextFile = filepath.Join(dir, "missing-llms.txt")

	files := bundleFiles(cfg, "")

	if _, ok := files["sales.csv"]; !ok {
		t.Error("existing dataset should be bundled")
	}
	if _, ok := files["llms.txt"]; ok {
		t.Error("missing context file should be skipped")
	}
	if _, ok := files["salesdash.yaml"]; ok {
		t.Error("config should be skipped when no path was given")
	}
}

func TestCheckDatasetMissingFile(t *testing.T) {
	cfg := &config.Config{}
	cfg.Data.CSVFile = filepath.Join(t.TempDir(), "nope.csv")

	result := checkDataset(t.Context(), cfg)
	if result.Status != "FAIL" {
		t.Errorf("status = %q, want FAIL", result.Status)
	}
}

func TestCheckWarehouseUnconfigured(t *testing.T) {
	cfg := &config.Config{}

	result := checkWarehouse(t.Context(), cfg)
	if result.Status != "WARN" {
		t.Errorf("status = %q, want WARN", result.Status)
	}
}

func TestCheckAssistantOffline(t *testing.T) {
	cfg := &config.Config{}

	result := checkAssistant(cfg)
	if result.Status != "WARN" {
		t.Errorf("status = %q, want WARN", result.Status)
	}
}
