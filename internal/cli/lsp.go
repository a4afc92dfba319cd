package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/sld/internal/lsp"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Start the Language Server Protocol server",
	Long: `Start a Language Server Protocol (LSP) server for markdown notes.

The server:
- Publishes classified link ranges as sld/annotations notifications
- Replaces an alias prefix with its emoji via workspace/applyEdit when a
  link is completed or the caret leaves it
- Shows the link type on hover
- Reindexes a note when it is saved

The server communicates over stdin/stdout using JSON-RPC. Editors report the
caret and the visible range with the sld/didChangeSelection and
sld/didChangeVisibleRange notifications.

Examples:
  # Start LSP server (for editor integration)
  sld lsp

  # Start with debug logging to stderr
  sld lsp --debug

  # Start for a specific vault
  sld lsp --vault-path /path/to/vault`,
	Args: cobra.NoArgs,
	RunE: runLSP,
}

var lspDebug bool

func init() {
	lspCmd.Flags().BoolVar(&lspDebug, "debug", false, "Enable debug logging to stderr")
	rootCmd.AddCommand(lspCmd)
}

func runLSP(cmd *cobra.Command, args []string) error {
	// Without a vault marker or --vault-path the client's rootUri decides.
	vaultPath := ""
	if vaultPathFlag != "" || hasVaultMarker(getVaultPath()) {
		vaultPath = getVaultPath()
	}

	server := lsp.NewServer(lsp.Options{
		VaultPath:  vaultPath,
		Debug:      lspDebug || cfg.Debug,
		Global:     cfg,
		ExtraRules: extraRules,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return server.Run(ctx)
}
