package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/aidanlsb/sld/internal/annotate"
	"github.com/aidanlsb/sld/internal/rules"
)

// ColorMode selects when styled output is produced.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode parses a --color flag value.
func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ColorAuto, ColorAlways, ColorNever:
		return m, nil
	case "":
		return ColorAuto, nil
	default:
		return "", fmt.Errorf("invalid color mode %q (want auto, always or never)", s)
	}
}

// UseColor decides whether output written to f is styled. Auto honours
// NO_COLOR and styles only terminals.
func UseColor(mode ColorMode, f *os.File) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// NewRenderer returns a renderer for w that always emits true colour, or
// never emits escape codes.
func NewRenderer(w io.Writer, color bool) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	if color {
		r.SetColorProfile(termenv.TrueColor)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return r
}

// Backgrounds that link backgrounds are blended over.
var (
	DarkBase  = mustHex("#1e1e2e")
	LightBase = mustHex("#eff1f5")
)

// BaseFor guesses the terminal background behind r.
func BaseFor(r *lipgloss.Renderer) colorful.Color {
	if r.HasDarkBackground() {
		return DarkBase
	}
	return LightBase
}

// LinkStyle builds the style for links of rule. The rule's background is
// blended over base with its alpha; an alpha of 0 counts as opaque. A rule
// without any styling gets the accent colour, underlined.
func LinkStyle(r *lipgloss.Renderer, rule rules.PrefixRule, base colorful.Color) lipgloss.Style {
	st := r.NewStyle()
	if rule.Color == "" && rule.Background == "" && !rule.Underline {
		st = st.Underline(true)
		if accent, ok := AccentColor(); ok {
			st = st.Foreground(lipgloss.Color(accent))
		}
		return st
	}

	if c, ok := normalizeAccentColor(rule.Color); ok {
		st = st.Foreground(lipgloss.Color(c))
	}
	if bg := blendBackground(rule, base); bg != "" {
		st = st.Background(lipgloss.Color(bg))
	}
	if rule.Underline {
		st = st.Underline(true)
	}
	return st
}

func blendBackground(rule rules.PrefixRule, base colorful.Color) string {
	c, ok := normalizeAccentColor(rule.Background)
	if !ok {
		return ""
	}
	// ANSI palette entries cannot be blended
	if !strings.HasPrefix(c, "#") {
		return c
	}
	bg, err := colorful.Hex(c)
	if err != nil {
		return ""
	}
	alpha := rule.BackgroundAlpha
	if alpha == 0 {
		alpha = 1
	}
	return base.BlendRgb(bg, alpha).Clamped().Hex()
}

// AnnotatedOptions configures RenderAnnotated.
type AnnotatedOptions struct {
	Renderer *lipgloss.Renderer
	Base     colorful.Color

	// ShowTypes appends the link type after each link.
	ShowTypes bool
}

// RenderAnnotated returns text with every annotated range styled by the
// rule for its link type.
func RenderAnnotated(text string, set *annotate.Set, rs *rules.Set, opts AnnotatedOptions) string {
	r := opts.Renderer
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	muted := r.NewStyle().Foreground(Muted.GetForeground())
	styles := make(map[string]lipgloss.Style)

	var b strings.Builder
	pos := 0
	for _, a := range set.All() {
		if a.From < pos || a.To > len(text) {
			continue
		}
		b.WriteString(text[pos:a.From])

		st, ok := styles[a.Type()]
		if !ok {
			st = LinkStyle(r, RuleForType(rs, a.Type()), opts.Base)
			styles[a.Type()] = st
		}
		b.WriteString(st.Render(text[a.From:a.To]))
		if opts.ShowTypes {
			b.WriteString(muted.Render(" (" + a.Type() + ")"))
		}
		pos = a.To
	}
	b.WriteString(text[pos:])
	return b.String()
}

// RuleForType returns the first rule with the given link type, or the zero
// rule.
func RuleForType(rs *rules.Set, linkType string) rules.PrefixRule {
	for _, r := range rs.Rules() {
		if r.LinkType == linkType {
			return r
		}
	}
	return rules.PrefixRule{}
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}
