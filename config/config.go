// Package config handles configuration loading for AgentHub. It layers
// built-in defaults, an optional YAML file and environment variables, with
// the environment winning.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for an AgentHub process.
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Bus        BusConfig        `mapstructure:"bus"`
	Selector   SelectorConfig   `mapstructure:"selector"`
	Dispatcher DispatcherConfig `mapstructure:"dispatcher"`
	Store      StoreConfig      `mapstructure:"store"`
	Anthropic  AnthropicConfig  `mapstructure:"anthropic"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"` // "text" or "json"
	AddSource bool   `mapstructure:"add_source"`
}

// BusConfig holds message bus settings.
type BusConfig struct {
	DefaultTimeout         time.Duration            `mapstructure:"default_timeout"`
	AgentTimeouts          map[string]time.Duration `mapstructure:"agent_timeouts"`
	RetryAttempts          int                      `mapstructure:"retry_attempts"`
	RetryBackoffMultiplier float64                  `mapstructure:"retry_backoff_multiplier"`
}

// SelectorConfig holds agent selection weights.
type SelectorConfig struct {
	FallbackAgentID string        `mapstructure:"fallback_agent_id"`
	IdleWeight      float64       `mapstructure:"idle_weight"`
	SuccessWeight   float64       `mapstructure:"success_weight"`
	FailurePenalty  float64       `mapstructure:"failure_penalty"`
	FailureWindow   time.Duration `mapstructure:"failure_window"`
}

// DispatcherConfig holds query routing settings.
type DispatcherConfig struct {
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`
}

// StoreConfig holds workflow history persistence settings.
type StoreConfig struct {
	Backend  string `mapstructure:"backend"` // "memory" or "sqlite"
	Capacity int    `mapstructure:"capacity"`
	Path     string `mapstructure:"path"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// OpenAIConfig holds OpenAI API settings.
type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// Load reads configuration with the following precedence (highest first):
//  1. Environment variables (AGENTHUB_* plus the vendor API key variables)
//  2. The explicit file at path, when given
//  3. config.yaml in the working directory or ~/.config/agenthub
//  4. Built-in defaults
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(userConfigDir())
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("AGENTHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Vendor API keys keep their conventional names.
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("openai.api_key", "OPENAI_API_KEY")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("unknown store backend %q (want memory or sqlite)", c.Store.Backend)
	}
	if c.Store.Backend == "sqlite" && c.Store.Path == "" {
		return fmt.Errorf("store.path is required for the sqlite backend")
	}
	if c.Dispatcher.ConfidenceThreshold < 0 || c.Dispatcher.ConfidenceThreshold > 1 {
		return fmt.Errorf("dispatcher.confidence_threshold must be in [0, 1]")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.add_source", false)

	v.SetDefault("bus.default_timeout", "30s")
	v.SetDefault("bus.retry_attempts", 2)
	v.SetDefault("bus.retry_backoff_multiplier", 1.5)

	v.SetDefault("selector.fallback_agent_id", "")
	v.SetDefault("selector.idle_weight", 1.0)
	v.SetDefault("selector.success_weight", 1.0)
	v.SetDefault("selector.failure_penalty", 0.5)
	v.SetDefault("selector.failure_window", "5m")

	v.SetDefault("dispatcher.confidence_threshold", 0.5)

	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.capacity", 256)
	v.SetDefault("store.path", "")

	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "")
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model", "")
}

// userConfigDir returns the XDG config directory for AgentHub.
func userConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "agenthub")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "agenthub")
	}
	return filepath.Join(home, ".config", "agenthub")
}
