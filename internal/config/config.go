// Package config loads winmirror settings from file, environment, and defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// KeyStrategy selects how keyboard events reach a target window.
const (
	KeyStrategyInject = "inject" // low-level key event with thread-input attach
	KeyStrategyPost   = "post"   // WM_KEYDOWN/WM_KEYUP posted to the message queue
)

type Config struct {
	Source      string   `mapstructure:"source"`
	Targets     []string `mapstructure:"targets"`
	DebounceMs  int      `mapstructure:"debounce_ms"`
	SettleMs    int      `mapstructure:"settle_ms"`
	PollMs      int      `mapstructure:"poll_ms"`
	KeyStrategy string   `mapstructure:"key_strategy"`
	LogLevel    string   `mapstructure:"log_level"`
	LogFormat   string   `mapstructure:"log_format"`
}

func Default() *Config {
	return &Config{
		Source:      "rg1",
		Targets:     []string{"rg2", "rg3"},
		DebounceMs:  1000,
		SettleMs:    500,
		PollMs:      10,
		KeyStrategy: KeyStrategyInject,
		LogLevel:    "info",
		LogFormat:   "text",
	}
}

func Load(cfgFile string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("winmirror")
		v.SetConfigType("yaml")
		v.AddConfigPath(configDir())
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("WINMIRROR")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings that would make the mirror loop misbehave.
func (c *Config) Validate() error {
	if c.Source == "" {
		return fmt.Errorf("source pattern must not be empty")
	}
	if c.DebounceMs <= 0 {
		return fmt.Errorf("debounce_ms must be positive, got %d", c.DebounceMs)
	}
	if c.PollMs <= 0 {
		return fmt.Errorf("poll_ms must be positive, got %d", c.PollMs)
	}
	if c.SettleMs < 0 {
		return fmt.Errorf("settle_ms must not be negative, got %d", c.SettleMs)
	}
	switch c.KeyStrategy {
	case KeyStrategyInject, KeyStrategyPost:
	default:
		return fmt.Errorf("key_strategy must be %q or %q, got %q",
			KeyStrategyInject, KeyStrategyPost, c.KeyStrategy)
	}
	return nil
}

func configDir() string {
	if runtime.GOOS == "windows" {
		if pd := os.Getenv("ProgramData"); pd != "" {
			return filepath.Join(pd, "winmirror")
		}
		return `C:\ProgramData\winmirror`
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "winmirror")
}
