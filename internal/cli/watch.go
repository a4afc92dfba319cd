package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/sld/internal/index"
	"github.com/aidanlsb/sld/internal/rules"
	"github.com/aidanlsb/sld/internal/ui"
	"github.com/aidanlsb/sld/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the vault and keep the index current",
	Long: `Brings the index up to date, then watches the vault and reindexes notes as
they are saved.

The watcher:
- Monitors all .md files in the vault
- Debounces rapid changes (waits 100ms after the last one)
- Skips .sld/, .git/ and the vault's ignore list
- Reloads rules when .sld.yaml changes and reindexes everything

Examples:
  sld watch
  sld watch --debug
  sld watch --vault-path ~/notes`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var watchDebug bool

func init() {
	watchCmd.Flags().BoolVar(&watchDebug, "debug", false, "Enable debug logging to stderr")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	vaultPath := getVaultPath()
	debug := watchDebug || cfg.Debug

	rs, vc, err := resolveRules()
	if err != nil {
		return handleError(ErrConfigInvalid, err, "Fix .sld.yaml and try again")
	}
	if !vc.IndexEnabled() {
		return handleErrorMsg(ErrInvalidInput, "indexing is disabled for this vault", "Set index.enabled: true in .sld.yaml")
	}

	db, rebuilt, err := index.OpenWithRebuild(vaultPath)
	if errors.Is(err, index.ErrIndexLocked) {
		return handleError(ErrIndexLocked, err, "Another sld process is rebuilding the index; try again shortly")
	}
	if err != nil {
		return handleError(ErrDatabaseError, err, "")
	}
	defer db.Close()

	opts := index.IndexOptions{IncludeUnclassified: vc.IncludeUnclassified()}
	res, err := db.IndexVault(vaultPath, rs, index.ReindexOptions{IndexOptions: opts, Ignore: vc.Ignore, Full: rebuilt})
	if err != nil {
		return handleError(ErrDatabaseError, err, "")
	}

	w, err := watcher.New(watcher.Config{
		VaultPath: vaultPath,
		Database:  db,
		Rules: func() (*rules.Set, error) {
			rs, _, err := resolveRules()
			return rs, err
		},
		IndexOptions: opts,
		Ignore:       vc.Ignore,
		Debug:        debug,
		OnReindex: func(path string, err error) {
			if err != nil {
				fmt.Fprintln(os.Stderr, ui.Warningf("Error reindexing %s: %v", path, err))
			} else if debug {
				fmt.Printf("Reindexed: %s\n", path)
			}
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Watching vault: %s (%s)\n", ui.FilePath(vaultPath), ui.Count(res.Links, "link", "links"))
	fmt.Println(ui.Hint("Press Ctrl+C to stop"))

	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	fmt.Println("\nWatcher stopped")
	return nil
}
