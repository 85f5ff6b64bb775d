package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	yamlContent := []byte(`
backend:
  base_url: "https://analysis.example.com/api/v1"
  timeout_sec: 20
  username: "analyst"
polling:
  interval_sec: 15
  auto_refresh: true
logging:
  level: "info"
  format: "json"
storage:
  archive_path: "/tmp/meridian/archive.db"
  export_dir: "/tmp/meridian/exports"
alpaca:
  api_key: "test-key"
  api_secret: "test-secret"
analysis:
  analysts: ["market", "news", "fundamentals"]
  research_depth: 3
  provider: "openai"
  quick_model: "gpt-4o-mini"
  deep_model: "o4-mini"
`)

	tmpFile, err := os.CreateTemp("", "meridian-config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(yamlContent); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatalf("failed to close temp file: %v", err)
	}

	// Clear any environment overrides that might interfere.
	os.Unsetenv("MERIDIAN_BACKEND_URL")
	os.Unsetenv("MERIDIAN_USERNAME")
	os.Unsetenv("ALPACA_API_KEY")
	os.Unsetenv("ALPACA_API_SECRET")
	os.Unsetenv("APCA_API_KEY_ID")
	os.Unsetenv("APCA_API_SECRET_KEY")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	// -- Backend --
	if cfg.Backend.BaseURL != "https://analysis.example.com/api/v1" {
		t.Errorf("Backend.BaseURL = %q, want %q", cfg.Backend.BaseURL, "https://analysis.example.com/api/v1")
	}
	if cfg.Backend.TimeoutSec != 20 {
		t.Errorf("Backend.TimeoutSec = %d, want %d", cfg.Backend.TimeoutSec, 20)
	}
	if cfg.Backend.Username != "analyst" {
		t.Errorf("Backend.Username = %q, want %q", cfg.Backend.Username, "analyst")
	}

	// -- Polling --
	if cfg.Polling.IntervalSec != 15 {
		t.Errorf("Polling.IntervalSec = %d, want %d", cfg.Polling.IntervalSec, 15)
	}
	if !cfg.Polling.AutoRefresh {
		t.Error("Polling.AutoRefresh = false, want true")
	}

	// -- Logging --
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}

	// -- Storage --
	if cfg.Storage.ArchivePath != "/tmp/meridian/archive.db" {
		t.Errorf("Storage.ArchivePath = %q, want %q", cfg.Storage.ArchivePath, "/tmp/meridian/archive.db")
	}

	// -- Alpaca --
	if cfg.Alpaca.APIKey != "test-key" {
		t.Errorf("Alpaca.APIKey = %q, want %q", cfg.Alpaca.APIKey, "test-key")
	}

	// -- Analysis --
	if len(cfg.Analysis.Analysts) != 3 {
		t.Errorf("len(Analysis.Analysts) = %d, want %d", len(cfg.Analysis.Analysts), 3)
	}
	if cfg.Analysis.ResearchDepth != 3 {
		t.Errorf("Analysis.ResearchDepth = %d, want %d", cfg.Analysis.ResearchDepth, 3)
	}
	if cfg.Analysis.Provider != "openai" {
		t.Errorf("Analysis.Provider = %q, want %q", cfg.Analysis.Provider, "openai")
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	yamlContent := []byte(`
backend:
  base_url: "http://localhost:8000/api/v1"
`)

	tmpFile, err := os.CreateTemp("", "meridian-config-defaults-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(yamlContent); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	tmpFile.Close()

	os.Unsetenv("MERIDIAN_POLL_INTERVAL")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Backend.TimeoutSec != 30 {
		t.Errorf("Backend.TimeoutSec default = %d, want %d", cfg.Backend.TimeoutSec, 30)
	}
	if cfg.Polling.IntervalSec != 10 {
		t.Errorf("Polling.IntervalSec default = %d, want %d", cfg.Polling.IntervalSec, 10)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging defaults = %q/%q, want info/json", cfg.Logging.Level, cfg.Logging.Format)
	}
	if cfg.Analysis.ResearchDepth != 1 {
		t.Errorf("Analysis.ResearchDepth default = %d, want %d", cfg.Analysis.ResearchDepth, 1)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	yamlContent := []byte(`
backend:
  base_url: "http://yaml-host/api/v1"
  username: "yaml-user"
storage:
  archive_path: "/original/archive.db"
`)

	tmpFile, err := os.CreateTemp("", "meridian-config-env-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(yamlContent); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	tmpFile.Close()

	os.Setenv("MERIDIAN_BACKEND_URL", "http://env-host/api/v1")
	os.Setenv("MERIDIAN_ARCHIVE_PATH", "/env/archive.db")
	defer os.Unsetenv("MERIDIAN_BACKEND_URL")
	defer os.Unsetenv("MERIDIAN_ARCHIVE_PATH")

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Backend.BaseURL != "http://env-host/api/v1" {
		t.Errorf("Backend.BaseURL = %q, want %q (env override)", cfg.Backend.BaseURL, "http://env-host/api/v1")
	}
	// username should remain from YAML since no env override was set.
	if cfg.Backend.Username != "yaml-user" {
		t.Errorf("Backend.Username = %q, want %q (from YAML)", cfg.Backend.Username, "yaml-user")
	}
	if cfg.Storage.ArchivePath != "/env/archive.db" {
		t.Errorf("Storage.ArchivePath = %q, want %q (env override)", cfg.Storage.ArchivePath, "/env/archive.db")
	}
}
