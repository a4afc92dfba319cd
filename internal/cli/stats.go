package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/sld/internal/ui"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	Long: `Displays how many notes and links the index holds, broken down by link type.

Examples:
  sld stats
  sld stats --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		db, err := openIndex()
		if err != nil || db == nil {
			return err
		}
		defer db.Close()

		stats, err := db.Stats()
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		elapsed := time.Since(start).Milliseconds()

		if isJSONOutput() {
			outputSuccess(stats, &Meta{QueryTimeMs: elapsed})
			return nil
		}

		fmt.Println(ui.Header("Index Statistics"))
		fmt.Printf("%s  %s\n", ui.Muted.Render("Notes:       "), ui.Accent.Render(fmt.Sprint(stats.Files)))
		fmt.Printf("%s  %s\n", ui.Muted.Render("Links:       "), ui.Accent.Render(fmt.Sprint(stats.Links)))
		fmt.Printf("%s  %s\n", ui.Muted.Render("Unclassified:"), ui.Accent.Render(fmt.Sprint(stats.Unclassified)))

		if len(stats.ByType) > 0 {
			fmt.Println()
			tbl := ui.NewResultsTable(ui.NewDisplayContext(), ui.StatsLayout).WithHeader()
			for _, tc := range stats.ByType {
				tbl.AddRow(tc.LinkType, fmt.Sprint(tc.Count))
			}
			fmt.Println(tbl.Render())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
