package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/aidanlsb/sld/internal/atomicfile"
	"github.com/aidanlsb/sld/internal/rules"
)

// VaultConfigFile is the per-vault config file name.
const VaultConfigFile = ".sld.yaml"

// DataDir holds generated vault state such as the link index.
const DataDir = ".sld"

// VaultConfig represents vault-level configuration from .sld.yaml.
type VaultConfig struct {
	// Rules are contributed after the global rules, so they win on a
	// shared prefix.
	Rules []rules.PrefixRule `yaml:"rules,omitempty"`

	// Index configures the SQLite link index.
	Index *IndexConfig `yaml:"index,omitempty"`

	// Ignore lists vault-relative directories skipped when walking and
	// watching. DataDir and .git are always skipped.
	Ignore []string `yaml:"ignore,omitempty"`
}

// IndexConfig configures the link index.
type IndexConfig struct {
	// Enabled turns indexing on for `sld index`, `sld watch` and the language
	// server (default: true).
	Enabled *bool `yaml:"enabled,omitempty"`

	// IncludeUnclassified also records links no rule matched.
	IncludeUnclassified bool `yaml:"include_unclassified,omitempty"`
}

// IndexEnabled reports whether the vault wants its link index maintained.
func (vc *VaultConfig) IndexEnabled() bool {
	if vc == nil || vc.Index == nil || vc.Index.Enabled == nil {
		return true
	}
	return *vc.Index.Enabled
}

// IncludeUnclassified reports whether links without a rule are indexed.
func (vc *VaultConfig) IncludeUnclassified() bool {
	return vc != nil && vc.Index != nil && vc.Index.IncludeUnclassified
}

// LoadVaultConfig loads .sld.yaml from vaultPath. A missing file yields an
// empty config.
func LoadVaultConfig(vaultPath string) (*VaultConfig, error) {
	path := filepath.Join(vaultPath, VaultConfigFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &VaultConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var vc VaultConfig
	if err := yaml.Unmarshal(data, &vc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := rules.ValidateAll(vc.Rules); err != nil {
		return nil, fmt.Errorf("invalid rules in %s: %w", path, err)
	}
	return &vc, nil
}

// SaveVaultConfig writes vc to vaultPath/.sld.yaml atomically.
func SaveVaultConfig(vaultPath string, vc *VaultConfig) error {
	if vc == nil {
		vc = &VaultConfig{}
	}
	data, err := yaml.Marshal(vc)
	if err != nil {
		return fmt.Errorf("failed to marshal vault config: %w", err)
	}
	path := filepath.Join(vaultPath, VaultConfigFile)
	if err := atomicfile.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// FindVaultRoot walks up from dir to the nearest directory holding
// .sld.yaml or the .sld data directory. It returns dir itself when neither
// is found.
func FindVaultRoot(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	for cur := abs; ; {
		for _, marker := range []string{VaultConfigFile, DataDir} {
			if _, err := os.Stat(filepath.Join(cur, marker)); err == nil {
				return cur
			}
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return abs
		}
		cur = parent
	}
}
