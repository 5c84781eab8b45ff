// Package config loads sessionmesh settings from YAML files.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider names accepted in the backend section.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds everything needed to assemble a coordinator and its backend.
type Config struct {
	Model           string        `yaml:"model"`
	MaxOutputTokens int           `yaml:"max_output_tokens"`
	ContextPairs    int           `yaml:"context_pairs"`
	SystemPrompt    string        `yaml:"system_prompt"`
	MaxConcurrent   int           `yaml:"max_concurrent"`
	Backend         BackendConfig `yaml:"backend"`
	Reaper          ReaperConfig  `yaml:"reaper"`
}

// BackendConfig selects and configures the model provider. APIKey falls back
// to the provider's conventional environment variable when left empty.
type BackendConfig struct {
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
}

// ReaperConfig controls idle-session cleanup.
type ReaperConfig struct {
	Interval    time.Duration `yaml:"interval"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// Default returns the configuration used when no file overrides it.
func Default() *Config {
	return &Config{
		Model:           "gpt-4o-mini",
		MaxOutputTokens: 4000,
		ContextPairs:    6,
		Backend: BackendConfig{
			Provider: ProviderOpenAI,
		},
		Reaper: ReaperConfig{
			Interval:    time.Minute,
			IdleTimeout: 5 * time.Minute,
		},
	}
}

// Load reads and parses a YAML config file, layered over Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse unmarshals YAML over Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the coordinator cannot run with.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("config: model must not be empty")
	}
	if c.MaxOutputTokens < 0 {
		return fmt.Errorf("config: max_output_tokens must not be negative")
	}
	if c.ContextPairs < 2 {
		return fmt.Errorf("config: context_pairs must be at least 2, got %d", c.ContextPairs)
	}
	if c.MaxConcurrent < 0 {
		return fmt.Errorf("config: max_concurrent must not be negative")
	}
	switch c.Backend.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("config: unknown backend provider %q", c.Backend.Provider)
	}
	if c.Reaper.Interval <= 0 {
		return fmt.Errorf("config: reaper interval must be positive")
	}
	if c.Reaper.IdleTimeout <= 0 {
		return fmt.Errorf("config: reaper idle_timeout must be positive")
	}
	return nil
}
