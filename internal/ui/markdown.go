package ui

import (
	"strings"

	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
)

// MarkdownRenderMargin is the left margin used for terminal markdown rendering.
const MarkdownRenderMargin = 2

const defaultCodeTheme = "monokai"

var markdownCodeTheme = defaultCodeTheme

// ConfigureMarkdownCodeTheme selects the chroma theme for fenced code.
// Unknown names fall back to the default.
func ConfigureMarkdownCodeTheme(name string) {
	name = strings.ToLower(strings.TrimSpace(name))
	if _, ok := styles.Registry[name]; !ok {
		name = defaultCodeTheme
	}
	markdownCodeTheme = name
}

// RenderMarkdown renders markdown content for terminal display using the
// sld style.
func RenderMarkdown(content string, width int) (string, error) {
	if width <= 0 {
		width = DefaultTermWidth
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(markdownStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}

	rendered, err := r.Render(content)
	if err != nil {
		return "", err
	}

	// glamour adds trailing newlines; normalize to a single trailing newline.
	rendered = strings.TrimRight(rendered, "\n") + "\n"
	return rendered, nil
}

// markdownStyle is glamour's dark style with sld's accent on headings, quieter
// links and the configured chroma theme for fenced code.
func markdownStyle() ansi.StyleConfig {
	style := glamourstyles.DarkStyleConfig
	muted := mdStringPtr("8")
	code := mdStringPtr("252")

	style.Document.Color = nil
	style.Document.Margin = mdUintPtr(MarkdownRenderMargin)
	style.BlockQuote.Color = muted

	style.Heading.Color = nil
	if color, ok := AccentColor(); ok {
		style.Heading.Color = mdStringPtr(color)
	}
	style.H1.StylePrimitive = ansi.StylePrimitive{Prefix: "# ", Underline: mdBoolPtr(true)}
	style.H2.Underline = mdBoolPtr(true)
	style.H6.Color = nil

	style.Link = ansi.StylePrimitive{Color: muted, Underline: mdBoolPtr(true)}
	style.LinkText = ansi.StylePrimitive{Color: muted, Bold: mdBoolPtr(true)}
	style.HorizontalRule = ansi.StylePrimitive{Color: muted, Format: "\n--------\n"}

	style.Code.StylePrimitive = ansi.StylePrimitive{Prefix: "`", Suffix: "`", Color: code}
	style.CodeBlock.Color = code
	style.CodeBlock.Theme = markdownCodeTheme
	// a chroma palette in the style would override Theme
	style.CodeBlock.Chroma = nil

	style.Table.CenterSeparator = mdStringPtr("│")
	style.Table.ColumnSeparator = mdStringPtr("│")
	style.Table.RowSeparator = mdStringPtr("─")
	return style
}

func mdBoolPtr(v bool) *bool { return &v }

func mdStringPtr(v string) *string { return &v }

func mdUintPtr(v uint) *uint { return &v }
