package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidanlsb/sld/internal/editor"
	"github.com/aidanlsb/sld/internal/linkmatch"
	"github.com/aidanlsb/sld/internal/rules"
	"github.com/aidanlsb/sld/internal/syntax"
)

type countingSink struct {
	calls []map[string]string
}

func (s *countingSink) Add(_, _ int, attrs map[string]string) {
	s.calls = append(s.calls, attrs)
}

func TestAddMatchFirstRuleWins(t *testing.T) {
	rs := rules.Merge([]rules.PrefixRule{
		{Prefix: "@", Emoji: "👤", LinkType: "person"},
		{Prefix: "x", Emoji: "@", LinkType: "emoji-match"},
		{Prefix: ">", Emoji: "📍", LinkType: "location"},
	})

	tests := []struct {
		alias string
		want  string
	}{
		{"@Foo", "person"},
		{"👤Foo", "person"},
		{">Paris", "location"},
		{"📍Paris", "location"},
		{"xylophone", "emoji-match"},
		{"plain", ""},
	}
	for _, tt := range tests {
		t.Run(tt.alias, func(t *testing.T) {
			sink := &countingSink{}
			ok := AddMatch(rs, Template{}, tt.alias, 0, 5, sink)
			if tt.want == "" {
				assert.False(t, ok)
				assert.Empty(t, sink.calls)
				return
			}
			require.Len(t, sink.calls, 1)
			assert.Equal(t, tt.want, sink.calls[0][TypeAttr])
		})
	}
}

func TestAddMatchNoRuleMakesZeroCalls(t *testing.T) {
	rs := rules.Merge([]rules.PrefixRule{{Prefix: "other", Emoji: "😊"}})
	sink := &countingSink{}
	AddMatch(rs, Template{}, "no-match", 3, 10, sink)
	assert.Empty(t, sink.calls)
}

func TestAddMatchEmptyPrefixMatchesEverything(t *testing.T) {
	// An empty prefix is a catch-all; it is kept on purpose.
	rs := rules.Merge([]rules.PrefixRule{{Prefix: "", Emoji: "", LinkType: "any"}})
	sink := &countingSink{}
	AddMatch(rs, Template{}, "whatever", 0, 1, sink)
	require.Len(t, sink.calls, 1)
	assert.Equal(t, "any", sink.calls[0][TypeAttr])
}

func TestTemplateClassificationWins(t *testing.T) {
	tmpl := Template{
		Class:      "sld-link",
		Attributes: map[string]string{TypeAttr: "stale", "title": "kept"},
	}
	rs := rules.Merge([]rules.PrefixRule{{Prefix: "@", LinkType: "Team Member"}})
	sink := &countingSink{}
	AddMatch(rs, tmpl, "@x", 0, 1, sink)

	require.Len(t, sink.calls, 1)
	attrs := sink.calls[0]
	assert.Equal(t, "Team Member", attrs[TypeAttr])
	assert.Equal(t, "kept", attrs["title"])
	assert.Equal(t, "sld-link sld-link--team-member", attrs[ClassAttr])
	assert.Equal(t, "stale", tmpl.Attributes[TypeAttr], "template must not be modified")
}

func TestBuilderOrder(t *testing.T) {
	b := NewBuilder()
	b.Add(0, 2, nil)
	b.Add(0, 4, nil)
	b.Add(5, 6, nil)
	assert.Panics(t, func() { b.Add(1, 2, nil) })
	assert.Panics(t, func() { NewBuilder().Add(3, 1, nil) })
}

func TestBuild(t *testing.T) {
	src := "Meet [[Ann|@Ann]] at [[Cafe|>Cafe]], see [[X|plain]] and `[[Y|@Y]]`.\n"
	tree := syntax.Parse(src)
	set := Build(tree, linkmatch.String(src), rules.Merge(rules.Defaults()), DefaultTemplate)

	require.Equal(t, 2, set.Len())
	first, second := set.At(0), set.At(1)
	assert.Equal(t, "[[Ann|@Ann]]", src[first.From:first.To])
	assert.Equal(t, "person", first.Type())
	assert.Equal(t, "[[Cafe|>Cafe]]", src[second.From:second.To])
	assert.Equal(t, "location", second.Type())

	assert.Len(t, set.Between(0, first.To), 1)
	assert.Len(t, set.Between(first.To, second.From), 0)
	assert.Len(t, set.Between(0, len(src)), 2)
}

func TestBuildNilTree(t *testing.T) {
	assert.Equal(t, 0, Build(nil, linkmatch.String(""), nil, Template{}).Len())
}

func TestPluginRebuilds(t *testing.T) {
	rs := rules.Merge(rules.Defaults())
	p := NewPlugin(DefaultTemplate)
	var pushed []*Set
	p.OnRebuild = func(s *Set) { pushed = append(pushed, s) }

	v := editor.NewView(editor.NewState("[[A|@A]]", editor.Cursor(0), rs), p.Attach)
	require.Equal(t, 1, p.Annotations().Len())
	assert.Equal(t, 1, p.Builds())

	sel := editor.Cursor(3)
	v.Dispatch(editor.Transaction{Selection: &sel})
	assert.Equal(t, 1, p.Builds(), "selection change must not rebuild")

	v.Dispatch(editor.Transaction{Changes: editor.ChangeSet{{From: 8, To: 8, Insert: " [[B|>B]]"}}})
	assert.Equal(t, 2, p.Builds())
	assert.Equal(t, 2, p.Annotations().Len())

	v.SetViewport(0, 4)
	assert.Equal(t, 3, p.Builds())

	// same contents, new identity
	v.Dispatch(editor.Transaction{Rules: rules.Merge(rules.Defaults()), Selection: &sel})
	assert.Equal(t, 4, p.Builds())

	v.Dispatch(editor.Transaction{Rules: rules.Merge(), Selection: &sel})
	assert.Equal(t, 0, p.Annotations().Len())
	assert.Len(t, pushed, 5)
}
