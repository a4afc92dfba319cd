// Package cli implements the command-line interface.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/sld/internal/config"
	"github.com/aidanlsb/sld/internal/rules"
	"github.com/aidanlsb/sld/internal/ui"
)

var (
	// Global flags
	vaultPathFlag string
	configPath    string
	extraRules    ruleList

	// Resolved values
	resolvedVaultPath  string
	resolvedConfigPath string
	cfg                *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "sld",
	Short: "Semantic link decorations for markdown wikilinks",
	Long: `sld classifies aliased wikilinks such as [[Ada Lovelace|@Ada]] by the prefix
that starts their alias, and swaps that prefix for the rule's emoji.

Rules are merged from the built-in defaults, the global config file, the
vault's .sld.yaml and any --rule flags, in that order. A later rule with the
same prefix replaces an earlier one in place.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch cmd.Name() {
		case "version", "help", "completion":
			return nil
		}

		var err error
		cfg, resolvedConfigPath, err = loadGlobalConfigWithPath()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		ui.ConfigureTheme(cfg.UI.Accent)
		ui.ConfigureMarkdownCodeTheme(cfg.UI.CodeTheme)

		if err := rules.ValidateAll(extraRules); err != nil {
			return fmt.Errorf("invalid --rule: %w", err)
		}

		// Resolve vault path: explicit path > nearest .sld.yaml or .sld/ > cwd
		if vaultPathFlag != "" {
			resolvedVaultPath = vaultPathFlag
			if _, err := os.Stat(resolvedVaultPath); os.IsNotExist(err) {
				return fmt.Errorf("vault not found: %s\n\nRun 'sld init %s' to create it", resolvedVaultPath, resolvedVaultPath)
			}
			return nil
		}
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		resolvedVaultPath = config.FindVaultRoot(cwd)
		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&vaultPathFlag, "vault-path", "", "Path to the vault (default: nearest directory with .sld.yaml)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for script use)")
	rootCmd.PersistentFlags().Var(&extraRules, "rule", "Extra rule, e.g. prefix=@,emoji=👤,type=person (repeatable)")
}

// getVaultPath returns the resolved vault path.
func getVaultPath() string {
	return resolvedVaultPath
}

func loadGlobalConfigWithPath() (*config.Config, string, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = config.DefaultPath()
	}
	loaded, err := config.LoadOptional(path)
	return loaded, path, err
}

// loadVaultConfig reads the vault's .sld.yaml; a missing file is an empty
// config.
func loadVaultConfig() (*config.VaultConfig, error) {
	return config.LoadVaultConfig(getVaultPath())
}

// resolveRules merges the defaults, global config, vault config and --rule
// flags.
func resolveRules() (*rules.Set, *config.VaultConfig, error) {
	vc, err := loadVaultConfig()
	if err != nil {
		return nil, nil, err
	}
	return config.Resolve(cfg, vc, extraRules), vc, nil
}
