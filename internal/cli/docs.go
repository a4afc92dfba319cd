package cli

import (
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	builtindocs "github.com/aidanlsb/sld/docs"
	"github.com/aidanlsb/sld/internal/ui"
)

const docsIndexPath = "index.yaml"

var (
	docsFS               fs.FS = builtindocs.FS
	docsStdoutIsTerminal       = func() bool { return isatty.IsTerminal(os.Stdout.Fd()) }
)

type docsTopic struct {
	ID    string `yaml:"id" json:"id"`
	Title string `yaml:"title" json:"title"`
	Path  string `yaml:"path" json:"path"`
}

type docsIndex struct {
	Topics []docsTopic `yaml:"topics"`
}

var docsCmd = &cobra.Command{
	Use:   "docs [topic]",
	Short: "Read the bundled guides",
	Long: `Lists the guides bundled into the sld binary, or prints one of them.

Guides are rendered for the terminal when stdout is a terminal and printed
as plain Markdown otherwise.

Examples:
  sld docs
  sld docs rules
  sld docs editor > editor.md`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDocs,
}

func init() {
	rootCmd.AddCommand(docsCmd)
}

func loadDocsIndex() ([]docsTopic, error) {
	data, err := fs.ReadFile(docsFS, docsIndexPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read docs index: %w", err)
	}
	var idx docsIndex
	if err := yaml.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("failed to parse docs index: %w", err)
	}
	return idx.Topics, nil
}

func runDocs(cmd *cobra.Command, args []string) error {
	topics, err := loadDocsIndex()
	if err != nil {
		return handleError(ErrInternal, err, "Rebuild sld so bundled docs are available")
	}

	if len(args) == 0 {
		if isJSONOutput() {
			outputSuccess(map[string]any{"topics": topics}, &Meta{Count: len(topics)})
			return nil
		}
		fmt.Println(ui.Header("Guides"))
		for _, t := range topics {
			fmt.Printf("  %-8s %s\n", ui.Accent.Render(t.ID), t.Title)
		}
		fmt.Println()
		fmt.Println(ui.Hint("Read one with 'sld docs <topic>'"))
		return nil
	}

	topic, ok := findDocsTopic(topics, args[0])
	if !ok {
		ids := make([]string, 0, len(topics))
		for _, t := range topics {
			ids = append(ids, t.ID)
		}
		return handleErrorMsg(ErrInvalidInput, fmt.Sprintf("unknown topic %q", args[0]), "Available topics: "+strings.Join(ids, ", "))
	}

	content, err := fs.ReadFile(docsFS, topic.Path)
	if err != nil {
		return handleError(ErrInternal, err, "")
	}

	if isJSONOutput() {
		outputSuccess(map[string]any{"topic": topic, "content": string(content)}, nil)
		return nil
	}
	if !docsStdoutIsTerminal() {
		fmt.Print(string(content))
		return nil
	}
	rendered, err := ui.RenderMarkdown(string(content), ui.NewDisplayContext().TermWidth)
	if err != nil {
		return handleError(ErrInternal, err, "")
	}
	fmt.Print(rendered)
	return nil
}

func findDocsTopic(topics []docsTopic, id string) (docsTopic, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, t := range topics {
		if t.ID == id {
			return t, true
		}
	}
	return docsTopic{}, false
}
