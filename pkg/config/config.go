// Package config handles loading and saving tg configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/tg/config.yaml
//   - State:   ~/.local/state/tg/ (tree-grid expansion state)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/treegrid/pkg/treegrid"
)

const appName = "tg"

// UIConfig holds UI preference settings.
type UIConfig struct {
	IncludeHeader bool `yaml:"include_header"`
	ExpandDepth   int  `yaml:"expand_depth,omitempty"` // Levels expanded on first open (0 = collapsed)
	DetailWidth   int  `yaml:"detail_width,omitempty"` // Detail pane columns (0 = hidden)
}

// KeysConfig overrides the navigation key bindings. Each entry lists the
// terminal keys (bubbletea names, e.g. "up", "k", "ctrl+p") for one action.
type KeysConfig struct {
	Up    []string `yaml:"up,omitempty"`
	Down  []string `yaml:"down,omitempty"`
	Left  []string `yaml:"left,omitempty"`
	Right []string `yaml:"right,omitempty"`
	Enter []string `yaml:"enter,omitempty"`
}

// StateConfig controls persistence of expand/collapse state.
type StateConfig struct {
	Persist bool   `yaml:"persist"`
	Dir     string `yaml:"dir,omitempty"` // Defaults to StateDir()
}

// Config is the top-level configuration for tg.
type Config struct {
	UI    UIConfig    `yaml:"ui,omitempty"`
	Keys  KeysConfig  `yaml:"keys,omitempty"`
	State StateConfig `yaml:"state,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		UI: UIConfig{
			IncludeHeader: true,
			DetailWidth:   40,
		},
		State: StateConfig{
			Persist: true,
		},
	}
}

// ConfigDir returns the XDG config directory for tg.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// StateDir returns the XDG state directory for tg.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", appName)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.UI.ExpandDepth < 0 {
		return cfg, fmt.Errorf("parsing config: ui.expand_depth must be >= 0, got %d", cfg.UI.ExpandDepth)
	}

	cfg.State.Dir = expandHome(cfg.State.Dir)
	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// ResolvedStateDir returns where expansion state is written, or "" when
// persistence is off.
func (c Config) ResolvedStateDir() string {
	if !c.State.Persist {
		return ""
	}
	if c.State.Dir != "" {
		return c.State.Dir
	}
	return StateDir()
}

// KeyMap returns the default tree-grid bindings with any configured keys
// swapped in. Help text follows the configured keys.
func (c Config) KeyMap() treegrid.KeyMap {
	km := treegrid.DefaultKeyMap()
	override := func(b *key.Binding, keys []string) {
		if len(keys) == 0 {
			return
		}
		b.SetKeys(keys...)
		b.SetHelp(strings.Join(keys, "/"), b.Help().Desc)
	}
	override(&km.Up, c.Keys.Up)
	override(&km.Down, c.Keys.Down)
	override(&km.Left, c.Keys.Left)
	override(&km.Right, c.Keys.Right)
	override(&km.Enter, c.Keys.Enter)
	return km
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
