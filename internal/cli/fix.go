package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/sld/internal/atomicfile"
	"github.com/aidanlsb/sld/internal/editor"
	"github.com/aidanlsb/sld/internal/linkmatch"
	"github.com/aidanlsb/sld/internal/replace"
	"github.com/aidanlsb/sld/internal/rules"
	"github.com/aidanlsb/sld/internal/ui"
)

var fixCmd = &cobra.Command{
	Use:   "fix <file>...",
	Short: "Replace alias prefixes with their emoji",
	Long: `Rewrites every aliased link whose alias starts with a rule's prefix so that
the prefix becomes the rule's emoji, the same edit an editor makes when the
caret leaves the link. Links that already carry the emoji are left alone.

Examples:
  sld fix notes.md
  sld fix daily/*.md --dry-run
  sld fix notes.md --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFix,
}

var fixDryRun bool

type replacementOutput struct {
	Line        int    `json:"line"`
	Offset      int    `json:"offset"`
	Alias       string `json:"alias"`
	Prefix      string `json:"prefix"`
	Replacement string `json:"replacement"`
}

type fixResult struct {
	File         string              `json:"file"`
	Replacements []replacementOutput `json:"replacements"`
	Changed      bool                `json:"changed"`
	DryRun       bool                `json:"dry_run"`
	// Text is the fixed note when it was read from stdin.
	Text string `json:"text,omitempty"`
}

func init() {
	fixCmd.Flags().BoolVar(&fixDryRun, "dry-run", false, "Show the replacements without writing")
	rootCmd.AddCommand(fixCmd)
}

// fixText returns text with every resolvable alias prefix replaced, and the
// candidates that were applied. Offsets refer to the input text.
func fixText(text string, rs *rules.Set) (string, []replace.Candidate, error) {
	st := editor.NewState(text, editor.Cursor(0), rs)
	var found []replace.Candidate
	var changes []editor.Change
	linkmatch.Walk(st.Tree.Cursor(), linkmatch.String(text), func(from, to int, _, _ string) {
		c, ok := replace.Resolve(rs, from, text[from:to])
		if !ok {
			return
		}
		found = append(found, c)
		changes = append(changes, editor.Change{
			From:   c.AliasFrom,
			To:     c.AliasFrom + c.PrefixLength,
			Insert: c.Replacement,
		})
	})
	if len(changes) == 0 {
		return text, nil, nil
	}
	cs, err := editor.NewChangeSet(changes...)
	if err != nil {
		return "", nil, err
	}
	return cs.Apply(text), found, nil
}

func runFix(cmd *cobra.Command, args []string) error {
	rs, _, err := resolveRules()
	if err != nil {
		return handleError(ErrConfigInvalid, err, "Fix .sld.yaml and try again")
	}

	var results []fixResult
	var warnings []Warning
	for _, arg := range args {
		res, err := fixFile(arg, rs)
		if err != nil {
			if len(args) == 1 {
				return handleError(noteErrorCode(err), err, "")
			}
			warnings = append(warnings, Warning{Code: noteErrorCode(err), Message: err.Error(), File: arg})
			if !isJSONOutput() {
				fmt.Fprintln(os.Stderr, ui.Warning(err.Error()))
			}
			continue
		}
		results = append(results, *res)
	}

	if isJSONOutput() {
		if len(warnings) > 0 {
			outputSuccessWithWarnings(results, warnings, &Meta{Count: len(results)})
		} else {
			outputSuccess(results, &Meta{Count: len(results)})
		}
		return nil
	}

	total := 0
	for _, res := range results {
		total += len(res.Replacements)
		for _, r := range res.Replacements {
			fmt.Printf("%s:%d  %s → %s  %s\n", ui.FilePath(res.File), r.Line, r.Prefix, r.Replacement, ui.Muted.Render(r.Alias))
		}
	}
	switch {
	case total == 0:
		fmt.Println(ui.Hint("Nothing to fix"))
	case fixDryRun:
		fmt.Println(ui.Hint("Dry run: " + ui.Count(total, "replacement", "replacements") + " not written"))
	default:
		fmt.Println(ui.Successf("Replaced %s", ui.Count(total, "prefix", "prefixes")))
	}
	if len(warnings) > 0 {
		return fmt.Errorf("%d of %d files could not be fixed", len(warnings), len(args))
	}
	return nil
}

func fixFile(arg string, rs *rules.Set) (*fixResult, error) {
	n, err := readNoteArg(arg)
	if err != nil {
		return nil, err
	}
	fixed, found, err := fixText(n.Content, rs)
	if err != nil {
		return nil, err
	}

	res := &fixResult{
		File:         n.Display,
		Replacements: make([]replacementOutput, 0, len(found)),
		Changed:      fixed != n.Content,
		DryRun:       fixDryRun,
	}
	for _, c := range found {
		res.Replacements = append(res.Replacements, replacementOutput{
			Line:        lineOf(n.Content, c.AliasFrom),
			Offset:      c.AliasFrom,
			Alias:       c.AliasText,
			Prefix:      c.Prefix,
			Replacement: c.Replacement,
		})
	}

	if !res.Changed || fixDryRun {
		return res, nil
	}
	if n.Path == "" {
		res.Text = fixed
		if !isJSONOutput() {
			fmt.Print(fixed)
		}
		return res, nil
	}
	info, err := os.Stat(n.Path)
	if err != nil {
		return nil, err
	}
	if err := atomicfile.WriteFile(n.Path, []byte(fixed), info.Mode().Perm()); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", n.Display, err)
	}
	return res, nil
}
