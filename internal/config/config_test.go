package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := defaults()

	if cfg.Archive.BaseURL != "https://data.gharchive.org" {
		t.Errorf("Archive.BaseURL = %q", cfg.Archive.BaseURL)
	}
	if cfg.Archive.Timeout() != 60*time.Second {
		t.Errorf("Archive.Timeout = %v", cfg.Archive.Timeout())
	}
	if len(cfg.Extraction.EventTypes) != 4 {
		t.Errorf("EventTypes = %v, want the four PR-discussion kinds", cfg.Extraction.EventTypes)
	}
	if cfg.Cleaning.MinTokens != 2 {
		t.Errorf("MinTokens = %d, want 2", cfg.Cleaning.MinTokens)
	}
	if cfg.Cleaning.DropTrivial {
		t.Error("DropTrivial defaults to true, want false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config fails validation: %v", err)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("GHARVEST_CONFIG", "")
	t.Setenv("GHARVEST_LOG_LEVEL", "debug")
	t.Setenv("GHARVEST_ARCHIVE__BASE_URL", "http://localhost:9999")
	t.Setenv("GHARVEST_CLEANING__MIN_TOKENS", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.Archive.BaseURL != "http://localhost:9999" {
		t.Errorf("Archive.BaseURL = %q", cfg.Archive.BaseURL)
	}
	if cfg.Cleaning.MinTokens != 5 {
		t.Errorf("MinTokens = %d, want 5", cfg.Cleaning.MinTokens)
	}
	// Untouched keys keep their defaults.
	if cfg.Server.Port != 4400 {
		t.Errorf("Server.Port = %d, want default 4400", cfg.Server.Port)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
archive:
  base_url: http://archive.test
extraction:
  repos:
    - golang/go
  start_date: "2024-03-01"
  end_date: "2024-03-05"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	t.Setenv("GHARVEST_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Archive.BaseURL != "http://archive.test" {
		t.Errorf("Archive.BaseURL = %q", cfg.Archive.BaseURL)
	}
	if len(cfg.Extraction.Repos) != 1 || cfg.Extraction.Repos[0] != "golang/go" {
		t.Errorf("Repos = %v", cfg.Extraction.Repos)
	}
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("archive:\n  base_url: http://from-file\n"), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	t.Setenv("GHARVEST_CONFIG", path)
	t.Setenv("GHARVEST_ARCHIVE__BASE_URL", "http://from-env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Archive.BaseURL != "http://from-env" {
		t.Errorf("Archive.BaseURL = %q, want env value", cfg.Archive.BaseURL)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty repos", func(c *Config) { c.Extraction.Repos = nil }},
		{"empty event types", func(c *Config) { c.Extraction.EventTypes = nil }},
		{"start equals end", func(c *Config) { c.Extraction.EndDate = c.Extraction.StartDate }},
		{"start after end", func(c *Config) { c.Extraction.StartDate = "2024-03-01"; c.Extraction.EndDate = "2024-02-01" }},
		{"unparseable date", func(c *Config) { c.Extraction.StartDate = "02/01/2024" }},
		{"negative min tokens", func(c *Config) { c.Cleaning.MinTokens = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate accepted an invalid config")
			}
		})
	}
}

func TestDateRange(t *testing.T) {
	e := ExtractionConfig{StartDate: "2024-02-01", EndDate: "2024-02-03"}
	start, end, err := e.DateRange()
	if err != nil {
		t.Fatalf("DateRange: %v", err)
	}
	if end.Sub(start) != 48*time.Hour {
		t.Errorf("range spans %v, want 48h", end.Sub(start))
	}
}
