// Package config handles global sld configuration and the per-vault
// .sld.yaml file, and turns both into rule contributions.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/aidanlsb/sld/internal/rules"
)

// Config represents the global sld configuration.
type Config struct {
	// Debug enables [sld-*] trace lines on stderr.
	Debug bool `toml:"debug"`

	// UseDefaults controls whether the built-in rules are contributed ahead
	// of user rules (default: true).
	UseDefaults *bool `toml:"use_defaults"`

	// Rules are contributed after the defaults and before vault rules.
	Rules []rules.PrefixRule `toml:"rules"`

	// UI controls optional CLI theming preferences.
	UI UIConfig `toml:"ui"`
}

// UIConfig represents optional CLI theming preferences.
type UIConfig struct {
	// Accent is an ANSI color code ("0" to "255") or a hex color ("#RRGGBB").
	Accent string `toml:"accent"`

	// CodeTheme sets the Glamour/Chroma theme used for rendered markdown.
	CodeTheme string `toml:"code_theme"`
}

// DefaultsEnabled reports whether built-in rules should be contributed.
func (c *Config) DefaultsEnabled() bool {
	if c == nil || c.UseDefaults == nil {
		return true
	}
	return *c.UseDefaults
}

// LoadOptional is LoadFrom, except that a missing file is an empty config.
func LoadOptional(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration from a specific path. Invalid rules are
// rejected here so nothing downstream sees them.
func LoadFrom(path string) (*Config, error) {
	var config Config
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := rules.ValidateAll(config.Rules); err != nil {
		return nil, fmt.Errorf("invalid rules in %s: %w", path, err)
	}
	return &config, nil
}

// DefaultPath returns the default config file path.
// Checks ~/.config/sld/config.toml first (XDG style),
// then falls back to OS-specific location.
func DefaultPath() string {
	if xdgPath, err := XDGPath(); err == nil {
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "sld", "config.toml")
	}

	return filepath.Join(".", "config.toml")
}

// XDGPath returns the XDG-style config path (~/.config/sld/config.toml).
func XDGPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "sld", "config.toml"), nil
}

const defaultConfig = `# sld configuration

# debug = false

# Set to false to drop the built-in @ > # ! rules.
# use_defaults = true

# Rules are matched in order; the first prefix or emoji that starts an
# alias wins. A rule with the same prefix as a built-in replaces it.
# [[rules]]
# prefix = "@"
# emoji = "👤"
# link_type = "person"
# color = "#A78BFA"
# underline = true

# [ui]
# accent = "39"
# code_theme = "monokai"
`

// CreateDefault writes a commented config file to path unless one exists.
func CreateDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfig), 0o644); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}
	return true, nil
}
