package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.Bus.PollInterval != 5*time.Second {
		t.Errorf("poll interval = %v, want 5s", cfg.Bus.PollInterval)
	}
	if cfg.Bus.CacheSize != 100 {
		t.Errorf("cache size = %d, want 100", cfg.Bus.CacheSize)
	}
	if cfg.Orchestrator.StallTimeout != 30*time.Second {
		t.Errorf("stall timeout = %v, want 30s", cfg.Orchestrator.StallTimeout)
	}
	if cfg.Anthropic.MaxTokens != 1024 {
		t.Errorf("max tokens = %d, want 1024", cfg.Anthropic.MaxTokens)
	}
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
anthropic:
  api_key: sk-ant-test-key-0123456789
  model: claude-sonnet-4-20250514
bus:
  remote_url: http://localhost:9090
  poll_interval: 2s
orchestrator:
  turn_delay: 500ms
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}

	if cfg.Anthropic.APIKey != "sk-ant-test-key-0123456789" {
		t.Errorf("api key = %q", cfg.Anthropic.APIKey)
	}
	if cfg.Anthropic.Model != "claude-sonnet-4-20250514" {
		t.Errorf("model = %q", cfg.Anthropic.Model)
	}
	if cfg.Bus.RemoteURL != "http://localhost:9090" {
		t.Errorf("remote url = %q", cfg.Bus.RemoteURL)
	}
	if cfg.Bus.PollInterval != 2*time.Second {
		t.Errorf("poll interval = %v, want 2s", cfg.Bus.PollInterval)
	}
	if cfg.Orchestrator.TurnDelay != 500*time.Millisecond {
		t.Errorf("turn delay = %v, want 500ms", cfg.Orchestrator.TurnDelay)
	}
	// Unset values fall back to defaults.
	if cfg.Bus.CacheSize != 100 {
		t.Errorf("cache size = %d, want default 100", cfg.Bus.CacheSize)
	}
}

func TestLoadFromPathExpandsEnv(t *testing.T) {
	t.Setenv("CRAFTERS_TEST_KEY", "sk-ant-from-env-0123456789")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "anthropic:\n  api_key: ${CRAFTERS_TEST_KEY}\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Anthropic.APIKey != "sk-ant-from-env-0123456789" {
		t.Errorf("api key = %q, want expanded env value", cfg.Anthropic.APIKey)
	}
}

func TestLoadFromPathMissingFile(t *testing.T) {
	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	cfg.Anthropic.APIKey = "sk-ant-REDACTED"
	cfg.Bus.RemoteURL = "http://example.test"

	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadFromPath(GetUserConfigPath())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Anthropic.APIKey != cfg.Anthropic.APIKey {
		t.Errorf("api key = %q, want %q", loaded.Anthropic.APIKey, cfg.Anthropic.APIKey)
	}
	if loaded.Bus.RemoteURL != cfg.Bus.RemoteURL {
		t.Errorf("remote url = %q, want %q", loaded.Bus.RemoteURL, cfg.Bus.RemoteURL)
	}
}
