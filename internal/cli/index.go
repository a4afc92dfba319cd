package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/sld/internal/index"
	"github.com/aidanlsb/sld/internal/ui"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index the vault's links",
	Long: `Parses every markdown note in the vault and records its classified links in
the SQLite index at .sld/index.db.

By default only notes whose modification time changed since the last run
are parsed, and notes that were deleted are dropped from the index. Use
--full to parse everything again.

Examples:
  sld index
  sld index --full
  sld index --json`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

var indexFull bool

func init() {
	indexCmd.Flags().BoolVar(&indexFull, "full", false, "Reindex every note, changed or not")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	vaultPath := getVaultPath()
	start := time.Now()

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

	if !isJSONOutput() {
		fmt.Printf("Indexing vault: %s\n", ui.FilePath(vaultPath))
		if rebuilt {
			fmt.Println(ui.Hint("Index was written by an older version and has been rebuilt"))
		}
	}

	var spinner *ui.Spinner
	if !isJSONOutput() {
		spinner = ui.NewSpinner("Indexing notes")
		spinner.Start()
	}
	res, err := db.IndexVault(vaultPath, rs, index.ReindexOptions{
		IndexOptions: index.IndexOptions{IncludeUnclassified: vc.IncludeUnclassified()},
		Ignore:       vc.Ignore,
		Full:         indexFull || rebuilt,
	})
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return handleError(ErrDatabaseError, err, "")
	}

	elapsed := time.Since(start).Milliseconds()
	if isJSONOutput() {
		var warnings []Warning
		for _, fe := range res.Errors {
			warnings = append(warnings, Warning{Code: ErrFileReadError, Message: fe.Message, File: fe.FilePath})
		}
		outputSuccessWithWarnings(res, warnings, &Meta{Count: res.Indexed, QueryTimeMs: elapsed})
		return nil
	}

	for _, fe := range res.Errors {
		fmt.Fprintln(os.Stderr, ui.Warningf("%s: %s", fe.FilePath, fe.Message))
	}
	if len(res.Removed) > 0 {
		fmt.Println(ui.Hint("Removed " + ui.Count(len(res.Removed), "deleted note", "deleted notes") + " from the index"))
	}
	fmt.Println(ui.Successf("Indexed %s (%s unchanged), %s in %dms",
		ui.Count(res.Indexed, "note", "notes"),
		fmt.Sprint(res.Skipped),
		ui.Count(res.Links, "link", "links"),
		elapsed))
	return nil
}

// openIndex opens an existing index for reading.
func openIndex() (*index.Database, error) {
	if _, err := os.Stat(index.DBPath(getVaultPath())); errors.Is(err, os.ErrNotExist) {
		return nil, handleErrorMsg(ErrDatabaseError, "no index found for "+getVaultPath(), "Run 'sld index' first")
	}
	db, err := index.Open(getVaultPath())
	if err != nil {
		return nil, handleError(ErrDatabaseError, err, "Run 'sld index --full' to rebuild the index")
	}
	return db, nil
}
