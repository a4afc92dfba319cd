package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/sld/internal/ui"
)

var annotateCmd = &cobra.Command{
	Use:   "annotate <file>",
	Short: "List the classified links in a note",
	Long: `Parses a note and lists every aliased link whose alias starts with a rule's
prefix or emoji, with the attributes an editor would attach to it.

Links inside code spans and code blocks are ignored.

Examples:
  sld annotate daily/2026-02-14.md
  sld annotate notes.md --rule prefix=%,emoji=📚,type=book
  cat notes.md | sld annotate - --json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnnotate,
}

type annotationOutput struct {
	From       int               `json:"from"`
	To         int               `json:"to"`
	Line       int               `json:"line"`
	Text       string            `json:"text"`
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

type annotateResult struct {
	File        string             `json:"file"`
	Annotations []annotationOutput `json:"annotations"`
}

func init() {
	rootCmd.AddCommand(annotateCmd)
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	rs, _, err := resolveRules()
	if err != nil {
		return handleError(ErrConfigInvalid, err, "Fix .sld.yaml and try again")
	}
	n, err := readNoteArg(args[0])
	if err != nil {
		return handleError(noteErrorCode(err), err, "")
	}

	set := annotateText(n.Content, rs)
	result := annotateResult{File: n.Display, Annotations: make([]annotationOutput, 0, set.Len())}
	for _, a := range set.All() {
		result.Annotations = append(result.Annotations, annotationOutput{
			From:       a.From,
			To:         a.To,
			Line:       lineOf(n.Content, a.From),
			Text:       n.Content[a.From:a.To],
			Type:       a.Type(),
			Attributes: a.Attributes,
		})
	}

	if isJSONOutput() {
		outputSuccess(result, &Meta{Count: len(result.Annotations)})
		return nil
	}

	if len(result.Annotations) == 0 {
		fmt.Println(ui.Hint("No classified links in " + n.Display))
		return nil
	}

	tbl := ui.NewResultsTable(ui.NewDisplayContext(), ui.LinksLayout)
	for i, a := range result.Annotations {
		tbl.AddRow(
			ui.FormatRowNum(i+1, len(result.Annotations)),
			a.Type,
			a.Text,
			n.Display+":"+strconv.Itoa(a.Line),
		)
	}
	fmt.Println(tbl.Render())
	return nil
}
