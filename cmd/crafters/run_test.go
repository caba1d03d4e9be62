package main

import (
	"testing"
	"time"

	"github.com/spotty118/collaborative-ai-crafters-sub000/internal/config"
	"github.com/spotty118/collaborative-ai-crafters-sub000/pkg/models"
)

func TestSelectAgents(t *testing.T) {
	agents := []models.Agent{
		{ID: "a-1", Name: "Ada"},
		{ID: "a-2", Name: "Ben"},
		{ID: "a-3", Name: "Fey"},
	}

	all := selectAgents(agents, nil)
	if len(all) != 3 {
		t.Errorf("no filter: got %d agents, want 3", len(all))
	}

	some := selectAgents(agents, []string{"Ada", "Fey"})
	if len(some) != 2 || some[0].Name != "Ada" || some[1].Name != "Fey" {
		t.Errorf("filtered: got %+v", some)
	}

	none := selectAgents(agents, []string{"Ghost"})
	if len(none) != 0 {
		t.Errorf("unknown name: got %d agents, want 0", len(none))
	}
}

func TestSetConfigValue(t *testing.T) {
	cfg := config.Default()

	if err := setConfigValue(cfg, "orchestrator.turn_delay", "750ms"); err != nil {
		t.Fatalf("set turn_delay: %v", err)
	}
	if cfg.Orchestrator.TurnDelay != 750*time.Millisecond {
		t.Errorf("turn_delay = %v, want 750ms", cfg.Orchestrator.TurnDelay)
	}

	if err := setConfigValue(cfg, "bus.cache_size", "200"); err != nil {
		t.Fatalf("set cache_size: %v", err)
	}
	if cfg.Bus.CacheSize != 200 {
		t.Errorf("cache_size = %d, want 200", cfg.Bus.CacheSize)
	}

	if err := setConfigValue(cfg, "bus.cache_size", "zero"); err == nil {
		t.Error("non-numeric cache_size should error")
	}
	if err := setConfigValue(cfg, "anthropic.api_key", "bad-key"); err == nil {
		t.Error("malformed API key should error")
	}
	if err := setConfigValue(cfg, "no.such.key", "x"); err == nil {
		t.Error("unknown key should error")
	}
}

func TestGetConfigValueMasksKey(t *testing.T) {
	cfg := config.Default()
	cfg.Anthropic.APIKey = "sk-ant-REDACTED"

	got, err := getConfigValue(cfg, "anthropic.api_key")
	if err != nil {
		t.Fatalf("getConfigValue: %v", err)
	}
	if got == cfg.Anthropic.APIKey {
		t.Error("api key should be masked in output")
	}
}
