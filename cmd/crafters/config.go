package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/spotty118/collaborative-ai-crafters-sub000/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify crafters configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/crafters/config.yaml
Project-specific overrides can be placed in .crafters.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	fmt.Printf("anthropic.api_key: %s (%s)\n",
		config.MaskAPIKey(cfg.Anthropic.APIKey), config.GetAPIKeySource(cfg))
	fmt.Printf("anthropic.model: %s\n", orUnset(cfg.Anthropic.Model))
	fmt.Printf("anthropic.max_tokens: %d\n", cfg.Anthropic.MaxTokens)
	fmt.Printf("anthropic.use_aws_bedrock: %t\n", cfg.Anthropic.UseAWSBedrock)
	fmt.Printf("bus.remote_url: %s\n", orUnset(cfg.Bus.RemoteURL))
	fmt.Printf("bus.poll_interval: %s\n", cfg.Bus.PollInterval)
	fmt.Printf("bus.cache_size: %d\n", cfg.Bus.CacheSize)
	fmt.Printf("orchestrator.turn_delay: %s\n", cfg.Orchestrator.TurnDelay)
	fmt.Printf("orchestrator.stall_timeout: %s\n", cfg.Orchestrator.StallTimeout)
	fmt.Printf("orchestrator.liveness_interval: %s\n", cfg.Orchestrator.LivenessInterval)
	fmt.Printf("tui.refresh_rate: %s\n", cfg.TUI.RefreshRate)
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// setConfigKey sets a configuration value and saves the config.
func setConfigKey(cfg *config.Config, key, value string) {
	if err := setConfigValue(cfg, key, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	display := value
	if strings.EqualFold(key, "anthropic.api_key") {
		display = config.MaskAPIKey(value)
	}
	fmt.Printf("Set %s = %s\n", key, display)
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		return config.MaskAPIKey(cfg.Anthropic.APIKey), nil
	case "anthropic.model":
		return orUnset(cfg.Anthropic.Model), nil
	case "anthropic.max_tokens":
		return strconv.Itoa(cfg.Anthropic.MaxTokens), nil
	case "anthropic.use_aws_bedrock":
		return strconv.FormatBool(cfg.Anthropic.UseAWSBedrock), nil
	case "bus.remote_url":
		return orUnset(cfg.Bus.RemoteURL), nil
	case "bus.poll_interval":
		return cfg.Bus.PollInterval.String(), nil
	case "bus.cache_size":
		return strconv.Itoa(cfg.Bus.CacheSize), nil
	case "orchestrator.turn_delay":
		return cfg.Orchestrator.TurnDelay.String(), nil
	case "orchestrator.stall_timeout":
		return cfg.Orchestrator.StallTimeout.String(), nil
	case "orchestrator.liveness_interval":
		return cfg.Orchestrator.LivenessInterval.String(), nil
	case "tui.refresh_rate":
		return cfg.TUI.RefreshRate.String(), nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		if err := config.ValidateAPIKey(value); err != nil {
			return err
		}
		cfg.Anthropic.APIKey = value
	case "anthropic.model":
		cfg.Anthropic.Model = value
	case "anthropic.max_tokens":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("max_tokens must be a positive integer")
		}
		cfg.Anthropic.MaxTokens = n
	case "anthropic.use_aws_bedrock":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("use_aws_bedrock must be true or false")
		}
		cfg.Anthropic.UseAWSBedrock = b
	case "bus.remote_url":
		cfg.Bus.RemoteURL = value
	case "bus.poll_interval":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("poll_interval: %w", err)
		}
		cfg.Bus.PollInterval = d
	case "bus.cache_size":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("cache_size must be a positive integer")
		}
		cfg.Bus.CacheSize = n
	case "orchestrator.turn_delay":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("turn_delay: %w", err)
		}
		cfg.Orchestrator.TurnDelay = d
	case "orchestrator.stall_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("stall_timeout: %w", err)
		}
		cfg.Orchestrator.StallTimeout = d
	case "orchestrator.liveness_interval":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("liveness_interval: %w", err)
		}
		cfg.Orchestrator.LivenessInterval = d
	case "tui.refresh_rate":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("refresh_rate: %w", err)
		}
		cfg.TUI.RefreshRate = d
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}
