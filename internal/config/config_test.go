package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aidanlsb/sld/internal/rules"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadFromParsesRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `
debug = true
use_defaults = false

[[rules]]
prefix = "@"
emoji = "🧑"
link_type = "contact"
color = "#ff0000"
underline = true

[[rules]]
prefix = "$"
emoji = "💰"
link_type = "money"

[ui]
accent = "39"
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if !cfg.Debug {
		t.Error("expected debug = true")
	}
	if cfg.DefaultsEnabled() {
		t.Error("expected defaults disabled")
	}
	if len(cfg.Rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(cfg.Rules))
	}
	if cfg.Rules[0].LinkType != "contact" || !cfg.Rules[0].Underline {
		t.Errorf("unexpected first rule: %+v", cfg.Rules[0])
	}
	if cfg.UI.Accent != "39" {
		t.Errorf("accent = %q", cfg.UI.Accent)
	}
}

func TestLoadFromRejectsInvalidRule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `
[[rules]]
prefix = "@@"
link_type = "bad"
`)
	_, err := LoadFrom(path)
	if !errors.Is(err, rules.ErrInvalidRule) {
		t.Fatalf("expected ErrInvalidRule, got %v", err)
	}
}

func TestDefaultsEnabledByDefault(t *testing.T) {
	var nilCfg *Config
	if !nilCfg.DefaultsEnabled() || !(&Config{}).DefaultsEnabled() {
		t.Fatal("defaults should be enabled when unset")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	off := false
	cfg := &Config{
		UseDefaults: &off,
		Rules:       []rules.PrefixRule{{Prefix: ">", Emoji: "📍", LinkType: "place", BackgroundAlpha: 0.3}},
		UI:          UIConfig{Accent: "  #336699 "},
	}

	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if loaded.DefaultsEnabled() {
		t.Error("use_defaults=false was not persisted")
	}
	if len(loaded.Rules) != 1 || loaded.Rules[0].LinkType != "place" || loaded.Rules[0].BackgroundAlpha != 0.3 {
		t.Errorf("rules not persisted: %+v", loaded.Rules)
	}
	if loaded.UI.Accent != "#336699" {
		t.Errorf("accent = %q", loaded.UI.Accent)
	}
}

func TestSaveToRejectsInvalidRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := &Config{Rules: []rules.PrefixRule{{Prefix: "ab"}}}
	if err := SaveTo(path, cfg); err == nil {
		t.Fatal("expected error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("nothing should have been written")
	}
}

func TestCreateDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sld", "config.toml")
	created, err := CreateDefault(path)
	if err != nil || !created {
		t.Fatalf("CreateDefault = %v, %v", created, err)
	}
	if _, err := LoadFrom(path); err != nil {
		t.Fatalf("default config does not parse: %v", err)
	}
	created, err = CreateDefault(path)
	if err != nil || created {
		t.Fatalf("second CreateDefault = %v, %v", created, err)
	}
}

func TestLoadVaultConfig(t *testing.T) {
	vault := t.TempDir()

	vc, err := LoadVaultConfig(vault)
	if err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if !vc.IndexEnabled() || len(vc.Rules) != 0 {
		t.Fatalf("unexpected defaults: %+v", vc)
	}

	writeFile(t, filepath.Join(vault, VaultConfigFile), `
rules:
  - prefix: ">"
    emoji: "🧭"
    link_type: navigation
index:
  enabled: false
  include_unclassified: true
ignore:
  - archive
`)
	vc, err = LoadVaultConfig(vault)
	if err != nil {
		t.Fatalf("LoadVaultConfig: %v", err)
	}
	if vc.IndexEnabled() {
		t.Error("index should be disabled")
	}
	if !vc.IncludeUnclassified() {
		t.Error("include_unclassified not read")
	}
	if len(vc.Rules) != 1 || vc.Rules[0].LinkType != "navigation" {
		t.Errorf("rules = %+v", vc.Rules)
	}
	if len(vc.Ignore) != 1 || vc.Ignore[0] != "archive" {
		t.Errorf("ignore = %v", vc.Ignore)
	}
}

func TestSaveVaultConfigRoundTrip(t *testing.T) {
	vault := t.TempDir()
	in := &VaultConfig{Rules: []rules.PrefixRule{{Prefix: "~", Emoji: "🌊", LinkType: "mood"}}}
	if err := SaveVaultConfig(vault, in); err != nil {
		t.Fatalf("SaveVaultConfig: %v", err)
	}
	out, err := LoadVaultConfig(vault)
	if err != nil {
		t.Fatalf("LoadVaultConfig: %v", err)
	}
	if len(out.Rules) != 1 || out.Rules[0].Emoji != "🌊" {
		t.Fatalf("rules = %+v", out.Rules)
	}
}

func TestFindVaultRoot(t *testing.T) {
	vault := t.TempDir()
	writeFile(t, filepath.Join(vault, VaultConfigFile), "")
	deep := filepath.Join(vault, "a", "b")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatal(err)
	}

	want, _ := filepath.Abs(vault)
	if got := FindVaultRoot(deep); got != want {
		t.Fatalf("FindVaultRoot = %q, want %q", got, want)
	}
}

func TestContributionsOrder(t *testing.T) {
	global := &Config{Rules: []rules.PrefixRule{{Prefix: ">", Emoji: "📍", LinkType: "location"}}}
	vault := &VaultConfig{Rules: []rules.PrefixRule{{Prefix: ">", Emoji: "🧭", LinkType: "navigation"}}}

	set := Resolve(global, vault, nil)
	if set.Len() != len(rules.Defaults()) {
		t.Fatalf("expected vault rule to replace the default in place, got %d rules", set.Len())
	}
	r, ok := set.Lookup(">")
	if !ok || r.LinkType != "navigation" {
		t.Fatalf("vault rule should win: %+v", r)
	}
	if set.Rules()[1].Prefix != ">" {
		t.Fatalf("overwritten rule moved: %+v", set.Rules())
	}

	flags := []rules.PrefixRule{{Prefix: ">", LinkType: "flag"}}
	r, _ = Resolve(global, vault, flags).Lookup(">")
	if r.LinkType != "flag" {
		t.Fatalf("flags should win: %+v", r)
	}
}

func TestContributionsWithoutDefaults(t *testing.T) {
	off := false
	res := rules.NewResolver()
	Contributions(res, &Config{UseDefaults: &off}, nil)
	if res.Resolve().Len() != 0 {
		t.Fatal("expected no rules")
	}
	got := res.Contributors()
	if len(got) != 2 || got[0] != ContribGlobal || got[1] != ContribVault {
		t.Fatalf("contributors = %v", got)
	}
}

func TestLoadOptional(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadOptional(filepath.Join(dir, "missing.toml"))
	if err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if !cfg.DefaultsEnabled() || len(cfg.Rules) != 0 {
		t.Fatalf("expected empty config, got %+v", cfg)
	}

	bad := filepath.Join(dir, "bad.toml")
	writeFile(t, bad, "rules = [ { prefix = \"ab\" } ]\n")
	if _, err := LoadOptional(bad); err == nil {
		t.Fatal("expected invalid rule to be reported")
	}
}
