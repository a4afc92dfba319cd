package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/sld/internal/ui"
)

var renderCmd = &cobra.Command{
	Use:   "render <file>",
	Short: "Print a note with its classified links styled",
	Long: `Prints a note with every classified link styled by its rule: foreground
colour, background blended over the terminal background with the rule's
alpha, and underline. Rules without any styling use the accent colour.

Examples:
  sld render notes.md
  sld render notes.md --types
  sld render notes.md --color always | less -R`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

var (
	renderColor string
	renderTypes bool
)

func init() {
	renderCmd.Flags().StringVar(&renderColor, "color", "auto", "When to style output: auto, always or never")
	renderCmd.Flags().BoolVar(&renderTypes, "types", false, "Print each link's type after it")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	mode, err := ui.ParseColorMode(renderColor)
	if err != nil {
		return handleError(ErrInvalidInput, err, "")
	}
	rs, _, err := resolveRules()
	if err != nil {
		return handleError(ErrConfigInvalid, err, "Fix .sld.yaml and try again")
	}
	n, err := readNoteArg(args[0])
	if err != nil {
		return handleError(noteErrorCode(err), err, "")
	}

	color := !isJSONOutput() && ui.UseColor(mode, os.Stdout)
	r := ui.NewRenderer(os.Stdout, color)
	out := ui.RenderAnnotated(n.Content, annotateText(n.Content, rs), rs, ui.AnnotatedOptions{
		Renderer:  r,
		Base:      ui.BaseFor(r),
		ShowTypes: renderTypes,
	})

	if isJSONOutput() {
		outputSuccess(map[string]string{"file": n.Display, "text": out}, nil)
		return nil
	}
	fmt.Print(out)
	return nil
}
