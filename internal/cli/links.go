package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/sld/internal/index"
	"github.com/aidanlsb/sld/internal/ui"
	"github.com/aidanlsb/sld/internal/wikilink"
)

var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "Query indexed links",
	Long: `Lists links recorded by 'sld index', filtered by type, target or note.

Examples:
  sld links --type person
  sld links --type person --type location --limit 20
  sld links --target "Ada Lovelace"
  sld links --file daily/2026-02-14.md --json
  sld links --unclassified`,
	Args: cobra.NoArgs,
	RunE: runLinks,
}

var (
	linksTypes        []string
	linksTarget       string
	linksFile         string
	linksUnclassified bool
	linksLimit        int
)

func init() {
	f := linksCmd.Flags()
	f.StringSliceVar(&linksTypes, "type", nil, "Only links of this type (repeatable)")
	f.StringVar(&linksTarget, "target", "", "Only links to this target")
	f.StringVar(&linksFile, "file", "", "Only links in this note (vault-relative)")
	f.BoolVar(&linksUnclassified, "unclassified", false, "Only links no rule matched")
	f.IntVar(&linksLimit, "limit", 0, "Maximum number of links (0 for all)")
	linksCmd.MarkFlagsMutuallyExclusive("type", "unclassified")
	rootCmd.AddCommand(linksCmd)
}

func runLinks(cmd *cobra.Command, args []string) error {
	start := time.Now()
	db, err := openIndex()
	if err != nil || db == nil {
		return err
	}
	defer db.Close()

	links, err := db.Links(index.LinkQuery{
		Types:        linksTypes,
		Target:       linksTarget,
		FilePath:     linksFile,
		Unclassified: linksUnclassified,
		Limit:        linksLimit,
	})
	if err != nil {
		return handleError(ErrDatabaseError, err, "")
	}
	if links == nil {
		links = []index.Link{}
	}

	if isJSONOutput() {
		outputSuccess(links, &Meta{Count: len(links), QueryTimeMs: time.Since(start).Milliseconds()})
		return nil
	}

	if len(links) == 0 {
		fmt.Println(ui.Hint("No matching links"))
		return nil
	}

	tbl := ui.NewResultsTable(ui.NewDisplayContext(), ui.LinksLayout)
	for i, l := range links {
		tbl.AddRow(
			ui.FormatRowNum(i+1, len(links)),
			l.LinkType,
			wikilink.Open+l.Target+string(wikilink.Pipe)+l.Alias+wikilink.Close,
			l.FilePath+":"+strconv.Itoa(l.Line),
		)
	}
	fmt.Println(tbl.Render())
	fmt.Println(ui.Hint(ui.Count(len(links), "link", "links")))
	return nil
}
