// Package config handles configuration loading for crafters. It
// supports XDG config paths, project-level overrides, and environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for crafters.
type Config struct {
	Anthropic    AnthropicConfig    `mapstructure:"anthropic"`
	Bus          BusConfig          `mapstructure:"bus"`
	Orchestrator OrchestratorConfig `mapstructure:"orchestrator"`
	TUI          TUIConfig          `mapstructure:"tui"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	// APIKey is the Anthropic API key, or a ${VAR} reference.
	APIKey string `mapstructure:"api_key"`
	// Model is the model identifier for agent turns.
	Model string `mapstructure:"model"`
	// MaxTokens caps the response length per turn.
	MaxTokens int `mapstructure:"max_tokens"`
	// UseAWSBedrock routes completions through AWS Bedrock.
	UseAWSBedrock bool `mapstructure:"use_aws_bedrock"`
	// AWSRegion is the Bedrock region.
	AWSRegion string `mapstructure:"aws_region"`
	// AWSProfile is the shared-config profile for Bedrock.
	AWSProfile string `mapstructure:"aws_profile"`
}

// BusConfig holds message bus settings.
type BusConfig struct {
	// RemoteURL is the base URL of the remote message service. Empty
	// means local delivery only.
	RemoteURL string `mapstructure:"remote_url"`
	// PollInterval is how often remote messages are fetched.
	PollInterval time.Duration `mapstructure:"poll_interval"`
	// CacheSize bounds the per-recipient in-memory message cache.
	CacheSize int `mapstructure:"cache_size"`
}

// OrchestratorConfig holds coordination settings.
type OrchestratorConfig struct {
	// TurnDelay is the pause between conversational turns.
	TurnDelay time.Duration `mapstructure:"turn_delay"`
	// StallTimeout is how long a working agent may go without a
	// status update before the liveness sweep resets it.
	StallTimeout time.Duration `mapstructure:"stall_timeout"`
	// LivenessInterval is how often the liveness sweep runs.
	LivenessInterval time.Duration `mapstructure:"liveness_interval"`
}

// TUIConfig holds watch-view display settings.
type TUIConfig struct {
	RefreshRate time.Duration `mapstructure:"refresh_rate"`
}

// Load loads configuration from XDG paths, project overrides, and
// environment variables. Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY)
// 2. Project config (.crafters.yaml in current directory or a parent)
// 3. User config (~/.config/crafters/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		pv := viper.New()
		pv.SetConfigFile(projectConfig)
		if err := pv.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(pv.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file.
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)
	return cfg, nil
}

// Save writes the configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(userConfigDir, "config.yaml"))

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.model", cfg.Anthropic.Model)
	v.Set("anthropic.max_tokens", cfg.Anthropic.MaxTokens)
	v.Set("anthropic.use_aws_bedrock", cfg.Anthropic.UseAWSBedrock)
	v.Set("anthropic.aws_region", cfg.Anthropic.AWSRegion)
	v.Set("anthropic.aws_profile", cfg.Anthropic.AWSProfile)
	v.Set("bus.remote_url", cfg.Bus.RemoteURL)
	v.Set("bus.poll_interval", cfg.Bus.PollInterval.String())
	v.Set("bus.cache_size", cfg.Bus.CacheSize)
	v.Set("orchestrator.turn_delay", cfg.Orchestrator.TurnDelay.String())
	v.Set("orchestrator.stall_timeout", cfg.Orchestrator.StallTimeout.String())
	v.Set("orchestrator.liveness_interval", cfg.Orchestrator.LivenessInterval.String())
	v.Set("tui.refresh_rate", cfg.TUI.RefreshRate.String())

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the project config path, or "" when no
// project config exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("anthropic.use_aws_bedrock", false)

	v.SetDefault("bus.remote_url", "")
	v.SetDefault("bus.poll_interval", "5s")
	v.SetDefault("bus.cache_size", 100)

	v.SetDefault("orchestrator.turn_delay", "3s")
	v.SetDefault("orchestrator.stall_timeout", "30s")
	v.SetDefault("orchestrator.liveness_interval", "10s")

	v.SetDefault("tui.refresh_rate", "100ms")
}

// getUserConfigDir returns the XDG config directory for crafters.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "crafters")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "crafters")
	}
	return filepath.Join(home, ".config", "crafters")
}

// findProjectConfig searches for .crafters.yaml in the current
// directory and its parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".crafters.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Anthropic: AnthropicConfig{
			MaxTokens: 1024,
		},
		Bus: BusConfig{
			PollInterval: 5 * time.Second,
			CacheSize:    100,
		},
		Orchestrator: OrchestratorConfig{
			TurnDelay:        3 * time.Second,
			StallTimeout:     30 * time.Second,
			LivenessInterval: 10 * time.Second,
		},
		TUI: TUIConfig{
			RefreshRate: 100 * time.Millisecond,
		},
	}
}
