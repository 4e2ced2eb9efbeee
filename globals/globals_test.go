package globals

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	env := map[string]string{"API_BASE_URL": "https://api.example.com/v1/"}
	cfg, err := FromEnv(func(k string) string { return env[k] })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIBaseURL != "https://api.example.com/v1" {
		t.Fatalf("trailing slash not trimmed: %q", cfg.APIBaseURL)
	}
	if cfg.Port != ":8080" {
		t.Fatalf("expected default port, got %q", cfg.Port)
	}
	if cfg.Debounce != 500*time.Millisecond {
		t.Fatalf("expected 500ms debounce, got %v", cfg.Debounce)
	}
	if cfg.CatalogLimit != 1000 {
		t.Fatalf("expected catalog limit 1000, got %d", cfg.CatalogLimit)
	}
	if cfg.MongoDB != "tripdesk" {
		t.Fatalf("expected default mongo db, got %q", cfg.MongoDB)
	}
	if cfg.PreviewTTL != time.Hour {
		t.Fatalf("expected previews to expire after an hour, got %v", cfg.PreviewTTL)
	}
}

func TestFromEnvPortAndMissingBase(t *testing.T) {
	env := map[string]string{"PORT": "9000"}
	cfg, err := FromEnv(func(k string) string { return env[k] })
	if err != ErrMissingAPIBase {
		t.Fatalf("expected ErrMissingAPIBase, got %v", err)
	}
	if cfg.Port != ":9000" {
		t.Fatalf("expected :9000, got %q", cfg.Port)
	}
}
