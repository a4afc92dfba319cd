package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidanlsb/sld/internal/annotate"
	"github.com/aidanlsb/sld/internal/linkmatch"
	"github.com/aidanlsb/sld/internal/rules"
	"github.com/aidanlsb/sld/internal/syntax"
)

func annotateText(text string, rs *rules.Set) *annotate.Set {
	return annotate.Build(syntax.Parse(text), linkmatch.String(text), rs, annotate.DefaultTemplate)
}

func TestRenderAnnotatedWithoutColorKeepsText(t *testing.T) {
	rs := rules.Merge(rules.Defaults())
	text := "Met [[Ann|@Ann]] at [[Cafe|>Cafe]].\n"

	var buf bytes.Buffer
	out := RenderAnnotated(text, annotateText(text, rs), rs, AnnotatedOptions{
		Renderer: NewRenderer(&buf, false),
		Base:     DarkBase,
	})
	assert.Equal(t, text, out)
}

func TestRenderAnnotatedShowTypes(t *testing.T) {
	rs := rules.Merge(rules.Defaults())
	text := "Met [[Ann|@Ann]] today"

	var buf bytes.Buffer
	out := RenderAnnotated(text, annotateText(text, rs), rs, AnnotatedOptions{
		Renderer:  NewRenderer(&buf, false),
		ShowTypes: true,
	})
	assert.Equal(t, "Met [[Ann|@Ann]] (person) today", out)
}

func TestRenderAnnotatedWithColorStylesLinks(t *testing.T) {
	rs := rules.Merge([]rules.PrefixRule{{Prefix: "@", Emoji: "👤", LinkType: "person", Color: "#ff0000"}})
	text := "see [[Ann|@Ann]]"

	var buf bytes.Buffer
	out := RenderAnnotated(text, annotateText(text, rs), rs, AnnotatedOptions{
		Renderer: NewRenderer(&buf, true),
		Base:     DarkBase,
	})
	require.True(t, strings.HasPrefix(out, "see "))
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "[[Ann|@Ann]]")
}

func TestLinkStyleBlendsBackground(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, true)
	base := mustHex("#000000")

	st := LinkStyle(r, rules.PrefixRule{Background: "#ffffff", BackgroundAlpha: 0.5}, base)
	assert.Equal(t, lipgloss.Color("#808080"), st.GetBackground())

	opaque := LinkStyle(r, rules.PrefixRule{Background: "#336699"}, base)
	assert.Equal(t, lipgloss.Color("#336699"), opaque.GetBackground())

	ansi := LinkStyle(r, rules.PrefixRule{Background: "24", Underline: true}, base)
	assert.Equal(t, lipgloss.Color("24"), ansi.GetBackground())
	assert.True(t, ansi.GetUnderline())
}

func TestLinkStyleDefaultsToUnderline(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, true)
	st := LinkStyle(r, rules.PrefixRule{Prefix: "@"}, DarkBase)
	assert.True(t, st.GetUnderline())
}

func TestParseColorMode(t *testing.T) {
	for in, want := range map[string]ColorMode{"": ColorAuto, "auto": ColorAuto, "ALWAYS": ColorAlways, "never": ColorNever} {
		got, err := ParseColorMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseColorMode("sometimes")
	assert.Error(t, err)
}

func TestRuleForType(t *testing.T) {
	rs := rules.Merge(rules.Defaults())
	assert.Equal(t, "#", RuleForType(rs, "topic").Prefix)
	assert.Equal(t, rules.PrefixRule{}, RuleForType(rs, "nope"))
}
