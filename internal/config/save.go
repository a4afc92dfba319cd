package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/aidanlsb/sld/internal/atomicfile"
	"github.com/aidanlsb/sld/internal/rules"
)

// fileConfig is Config as written to disk: every field is optional so unset
// values stay out of the file.
type fileConfig struct {
	Debug       *bool              `toml:"debug,omitempty"`
	UseDefaults *bool              `toml:"use_defaults,omitempty"`
	Rules       []rules.PrefixRule `toml:"rules,omitempty"`
	UI          *fileUIConfig      `toml:"ui,omitempty"`
}

type fileUIConfig struct {
	Accent    string `toml:"accent,omitempty"`
	CodeTheme string `toml:"code_theme,omitempty"`
}

func (c *Config) toFile() fileConfig {
	out := fileConfig{UseDefaults: c.UseDefaults, Rules: c.Rules}
	if c.Debug {
		debug := true
		out.Debug = &debug
	}
	ui := fileUIConfig{
		Accent:    strings.TrimSpace(c.UI.Accent),
		CodeTheme: strings.TrimSpace(c.UI.CodeTheme),
	}
	if ui != (fileUIConfig{}) {
		out.UI = &ui
	}
	return out
}

// SaveTo writes cfg to path atomically, creating the directory if needed.
// Invalid rules are refused.
func SaveTo(path string, cfg *Config) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config path is required")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if err := rules.ValidateAll(cfg.Rules); err != nil {
		return fmt.Errorf("refusing to save: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg.toFile()); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := atomicfile.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}
