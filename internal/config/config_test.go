package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("CKAN_RESOURCE_ID", "resource-1")
	t.Setenv("CKAN_API_TOKEN", "token-1")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Windows) != 3 {
		t.Fatalf("expected 3 default windows, got %d", len(cfg.Windows))
	}
	if cfg.Windows[0].Start != "2022-04-01" || cfg.Windows[0].End != "2022-05-31" {
		t.Fatalf("unexpected first window %+v", cfg.Windows[0])
	}
	if len(cfg.Areas) != 1 || cfg.Areas[0].Name != "highfive_area" {
		t.Fatalf("unexpected default areas %+v", cfg.Areas)
	}
	if cfg.CacheBackend != "file" {
		t.Fatalf("unexpected default cache backend %q", cfg.CacheBackend)
	}
	if cfg.OutputDir != "data3" {
		t.Fatalf("unexpected default output dir %q", cfg.OutputDir)
	}
	if cfg.HTTPTimeout != 60*time.Second {
		t.Fatalf("unexpected default http timeout %v", cfg.HTTPTimeout)
	}
	if cfg.ExtractInterval != 0 {
		t.Fatalf("interval must default to run-once, got %v", cfg.ExtractInterval)
	}
}

// TestLoadMissingSecrets verifies the run aborts before any processing when
// a required secret is absent.
func TestLoadMissingSecrets(t *testing.T) {
	t.Setenv("CKAN_RESOURCE_ID", "resource-1")
	t.Setenv("CKAN_API_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing API token")
	}
}

func TestLoadWindowsFromEnv(t *testing.T) {
	setRequired(t)
	t.Setenv("EXTRACT_WINDOWS", "2021-06-01..2021-06-30, 2021-07-01..2021-07-31")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(cfg.Windows))
	}
	if cfg.Windows[1].Start != "2021-07-01" || cfg.Windows[1].End != "2021-07-31" {
		t.Fatalf("unexpected second window %+v", cfg.Windows[1])
	}
}

func TestLoadRejectsBadWindows(t *testing.T) {
	setRequired(t)

	t.Setenv("EXTRACT_WINDOWS", "2021-06-01")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for window without separator")
	}

	t.Setenv("EXTRACT_WINDOWS", "2021-06-30..2021-06-01")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for end before start")
	}

	t.Setenv("EXTRACT_WINDOWS", "junk..2021-06-01")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed date")
	}
}

func TestLoadAreasFromEnv(t *testing.T) {
	setRequired(t)
	t.Setenv("EXTRACT_AREAS", "center=data/center.geojson,harbour=data/harbour.geojson")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Areas) != 2 {
		t.Fatalf("expected 2 areas, got %d", len(cfg.Areas))
	}
	if cfg.Areas[1].Name != "harbour" || cfg.Areas[1].Path != "data/harbour.geojson" {
		t.Fatalf("unexpected second area %+v", cfg.Areas[1])
	}
}

func TestLoadRejectsUnknownCacheBackend(t *testing.T) {
	setRequired(t)
	t.Setenv("CACHE_BACKEND", "s3")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unsupported cache backend")
	}
}
