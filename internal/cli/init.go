package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/sld/internal/atomicfile"
	"github.com/aidanlsb/sld/internal/config"
	"github.com/aidanlsb/sld/internal/ui"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize a vault",
	Long: `Marks a directory as an sld vault (default: the current directory).

Creates:
  - .sld.yaml   (vault rules and index settings)
  - .sld/       (index directory)
  - .gitignore  (ignores the index)

The global config file is also created when it does not exist yet.
Existing files are left alone.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

const defaultVaultConfig = `# sld vault configuration
#
# Rules here override global rules with the same prefix.
# rules:
#   - prefix: "%"
#     emoji: "📚"
#     link_type: book
#     color: "#f9e2af"

index:
  enabled: true

# Vault-relative directories skipped by 'sld index' and 'sld watch'.
# ignore:
#   - templates
`

var gitignoreEntries = []string{config.DataDir + "/"}

type initResult struct {
	Path         string `json:"path"`
	VaultConfig  string `json:"vault_config"`
	Gitignore    string `json:"gitignore"`
	GlobalConfig string `json:"global_config"`
}

func runInit(cmd *cobra.Command, args []string) error {
	path := "."
	if len(args) == 1 {
		path = args[0]
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return handleError(ErrInvalidInput, err, "")
	}

	res, err := initVault(abs)
	if err != nil {
		return handleError(ErrFileWriteError, err, "")
	}

	created, err := config.CreateDefault(resolvedConfigPath)
	if err != nil {
		return handleError(ErrFileWriteError, err, "")
	}
	res.GlobalConfig = "exists"
	if created {
		res.GlobalConfig = "created"
	}

	if isJSONOutput() {
		outputSuccess(res, nil)
		return nil
	}
	fmt.Println(ui.Successf("Initialized vault at %s", ui.FilePath(abs)))
	fmt.Printf("  %s  %s\n", ui.Muted.Render(config.VaultConfigFile), res.VaultConfig)
	fmt.Printf("  %s  %s\n", ui.Muted.Render(".gitignore"), res.Gitignore)
	if created {
		fmt.Printf("  %s  created\n", ui.Muted.Render(resolvedConfigPath))
	}
	fmt.Println(ui.Hint("Run 'sld index' to build the link index"))
	return nil
}

func initVault(path string) (*initResult, error) {
	if err := os.MkdirAll(filepath.Join(path, config.DataDir), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", config.DataDir, err)
	}
	res := &initResult{Path: path, VaultConfig: "exists"}

	cfgPath := filepath.Join(path, config.VaultConfigFile)
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		if err := atomicfile.WriteFile(cfgPath, []byte(defaultVaultConfig), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", config.VaultConfigFile, err)
		}
		res.VaultConfig = "created"
	}

	status, err := ensureGitignore(filepath.Join(path, ".gitignore"))
	if err != nil {
		return nil, err
	}
	res.Gitignore = status
	return res, nil
}

// ensureGitignore appends missing sld entries and reports "created",
// "updated" or "unchanged".
func ensureGitignore(path string) (string, error) {
	existing := ""
	if data, err := os.ReadFile(path); err == nil {
		existing = string(data)
	}

	var missing []string
	for _, entry := range gitignoreEntries {
		if !strings.Contains(existing, entry) {
			missing = append(missing, entry)
		}
	}
	if len(missing) == 0 {
		return "unchanged", nil
	}

	status := "updated"
	content := strings.TrimRight(existing, "\n") + "\n\n# sld\n"
	if existing == "" {
		status = "created"
		content = "# sld link index (rebuilt with 'sld index')\n"
	}
	content += strings.Join(missing, "\n") + "\n"
	if err := atomicfile.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write .gitignore: %w", err)
	}
	return status, nil
}
