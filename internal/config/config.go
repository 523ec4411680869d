// Package config holds wcost configuration and the model pricing table.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all wcost configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Tracking   TrackingConfig   `toml:"tracking"`
	Appearance AppearanceConfig `toml:"appearance"`
	Pricing    PricingOverrides `toml:"pricing"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	ClaudeDir string `toml:"claude_dir,omitempty"` // override ~/.claude/projects
	CSVPath   string `toml:"csv_path,omitempty"`   // override per-project CSV resolution
	StatsPath string `toml:"stats_path,omitempty"` // override stats JSON location
	Quiet     bool   `toml:"quiet"`
}

// TrackingConfig holds the tracked-workflow set used for detection.
type TrackingConfig struct {
	Workflows []string `toml:"workflows"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// PricingOverrides allows user-defined pricing for specific models.
type PricingOverrides struct {
	Overrides map[string]ModelPricingOverride `toml:"overrides,omitempty"`
}

// ModelPricingOverride holds per-model pricing overrides. Unset fields
// inherit the built-in defaults.
type ModelPricingOverride struct {
	InputPerMTok        *float64 `toml:"input_per_mtok,omitempty"`
	OutputPerMTok       *float64 `toml:"output_per_mtok,omitempty"`
	CacheWrite5mPerMTok *float64 `toml:"cache_write_5m_per_mtok,omitempty"`
	CacheWrite1hPerMTok *float64 `toml:"cache_write_1h_per_mtok,omitempty"`
	CacheReadPerMTok    *float64 `toml:"cache_read_per_mtok,omitempty"`
}

// DefaultWorkflows is the built-in tracked-workflow set. A session is
// classified only when its command invocation names one of these.
var DefaultWorkflows = []string{
	"ecc-dev-story",
	"ecc-code-review",
	"ecc-create-story",
	"ecc-e2e",
	"ecc-impact-analysis",
	"deploy-story",
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Tracking: TrackingConfig{
			Workflows: append([]string(nil), DefaultWorkflows...),
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// TrackedWorkflows returns the configured workflow set as a lookup map.
func (c Config) TrackedWorkflows() map[string]struct{} {
	names := c.Tracking.Workflows
	if len(names) == 0 {
		names = DefaultWorkflows
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "wcost")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "wcost")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
