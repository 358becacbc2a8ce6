// Package config loads the CLI configuration from .comanda/config.json with
// COMANDA_* environment overrides on top.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config is the flat comanda configuration.
type Config struct {
	APIURL          string `json:"api_url"`
	Token           string `json:"token,omitempty"`
	NATSURL         string `json:"nats_url,omitempty"`
	HintSubject     string `json:"hint_subject,omitempty"`
	RefreshSeconds  int    `json:"refresh_seconds,omitempty"`
	FeedPollSeconds int    `json:"feed_poll_seconds,omitempty"`
	AlertSeconds    int    `json:"alert_seconds,omitempty"`
	SoundDisabled   bool   `json:"sound_disabled,omitempty"`
}

// DefaultConfig returns the configuration used when no file exists: the dev
// stub backend on localhost and the production poll cadence.
func DefaultConfig() *Config {
	return &Config{
		APIURL:          "http://localhost:8069",
		RefreshSeconds:  30,
		FeedPollSeconds: 15,
		AlertSeconds:    10,
	}
}

// LoadConfig reads .comanda/config.json from the given directory and applies
// environment overrides. A missing file is not an error: defaults plus
// environment are returned.
func LoadConfig(dir string) (*Config, error) {
	cfg := DefaultConfig()

	path := filepath.Join(dir, ".comanda", "config.json")
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// fall through to env overrides
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	applyEnv(cfg)
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("api_url is required")
	}
	return cfg, nil
}

// SaveConfig writes config.json under .comanda in the given directory.
func SaveConfig(dir string, cfg *Config) error {
	cfgDir := filepath.Join(dir, ".comanda")
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		return fmt.Errorf("failed to create .comanda dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(cfgDir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("COMANDA_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("COMANDA_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("COMANDA_NATS_URL"); v != "" {
		cfg.NATSURL = v
	}
	if v := os.Getenv("COMANDA_HINT_SUBJECT"); v != "" {
		cfg.HintSubject = v
	}
	if v := os.Getenv("COMANDA_REFRESH_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RefreshSeconds = n
		}
	}
	if v := os.Getenv("COMANDA_FEED_POLL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.FeedPollSeconds = n
		}
	}
	if v := os.Getenv("COMANDA_NO_SOUND"); v != "" {
		cfg.SoundDisabled = v == "1" || v == "true"
	}
}

// RefreshInterval returns the board refresh cadence.
func (c *Config) RefreshInterval() time.Duration {
	return secondsOr(c.RefreshSeconds, 30)
}

// FeedPollInterval returns the notification poll cadence.
func (c *Config) FeedPollInterval() time.Duration {
	return secondsOr(c.FeedPollSeconds, 15)
}

// AlertInterval returns the sound-alert repeat cadence.
func (c *Config) AlertInterval() time.Duration {
	return secondsOr(c.AlertSeconds, 10)
}

func secondsOr(n, fallback int) time.Duration {
	if n <= 0 {
		n = fallback
	}
	return time.Duration(n) * time.Second
}
