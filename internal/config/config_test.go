package config

import (
	"context"
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"ATURMATION_API_URL", "ATURMATION_LOG_LEVEL", "ATURMATION_PAGE_SIZE"} {
		t.Setenv(key, "") // registers restore
		os.Unsetenv(key)  //nolint:errcheck
	}

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:5000/api" {
		t.Errorf("APIBaseURL = %q, want the local default", cfg.APIBaseURL)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.PageSize != 20 {
		t.Errorf("PageSize = %d, want 20", cfg.PageSize)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ATURMATION_API_URL", "https://inventory.example.com/api")
	t.Setenv("ATURMATION_LOG_LEVEL", "debug")
	t.Setenv("ATURMATION_PAGE_SIZE", "50")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.APIBaseURL != "https://inventory.example.com/api" {
		t.Errorf("APIBaseURL = %q, want the env override", cfg.APIBaseURL)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.PageSize != 50 {
		t.Errorf("PageSize = %d, want 50", cfg.PageSize)
	}
}

func TestLoadRejectsNonsensePageSize(t *testing.T) {
	t.Setenv("ATURMATION_PAGE_SIZE", "-1")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.PageSize != 20 {
		t.Errorf("PageSize = %d, want fall back to 20", cfg.PageSize)
	}
}
