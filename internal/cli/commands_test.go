package cli

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidanlsb/sld/internal/config"
	"github.com/aidanlsb/sld/internal/index"
	"github.com/aidanlsb/sld/internal/rules"
	"github.com/aidanlsb/sld/internal/testutil"
)

func TestParseRule(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    rules.PrefixRule
		wantErr string
	}{
		{
			name:  "basic",
			value: "prefix=%,emoji=📚,type=book",
			want:  rules.PrefixRule{Prefix: "%", Emoji: "📚", LinkType: "book"},
		},
		{
			name:  "styling and aliases",
			value: "prefix=~, link_type=mood, color=#ff0000, background=#000000, alpha=0.25, underline=true",
			want: rules.PrefixRule{
				Prefix: "~", LinkType: "mood", Color: "#ff0000",
				Background: "#000000", BackgroundAlpha: 0.25, Underline: true,
			},
		},
		{name: "missing equals", value: "prefix", wantErr: "expected key=value"},
		{name: "unknown key", value: "prefix=@,size=2", wantErr: "unknown rule field"},
		{name: "bad alpha", value: "alpha=lots", wantErr: "invalid alpha"},
		{name: "alpha out of range", value: "alpha=2", wantErr: "out of range"},
		{name: "prefix too long", value: "prefix=@@", wantErr: "at most 1 allowed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRule(tt.value)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			// formatRule output parses back to the same rule
			again, err := parseRule(formatRule(got))
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestRuleListFlag(t *testing.T) {
	var l ruleList
	require.NoError(t, l.Set("prefix=%,emoji=📚,type=book"))
	require.NoError(t, l.Set("prefix=~,type=mood"))
	assert.Error(t, l.Set("nonsense"))
	assert.Len(t, l, 2)
	assert.Equal(t, "rule", l.Type())
	assert.Equal(t, "[prefix=%,emoji=📚,type=book prefix=~,emoji=,type=mood]", l.String())
}

func TestFixText(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  string
		count int
	}{
		{
			name:  "replaces every known prefix",
			in:    "Met [[Ada Lovelace|@Ada]] in [[London|>London]].\n",
			want:  "Met [[Ada Lovelace|👤Ada]] in [[London|📍London]].\n",
			count: 2,
		},
		{
			name:  "leaves code spans alone",
			in:    "`[[A|@A]]` and [[B|@B]]",
			want:  "`[[A|@A]]` and [[B|👤B]]",
			count: 1,
		},
		{
			name: "already replaced",
			in:   "[[Ada|👤Ada]]",
			want: "[[Ada|👤Ada]]",
		},
		{
			name: "unknown prefix and plain links",
			in:   "[[Ada|%Ada]] [[Plain]] [[X|x]]",
			want: "[[Ada|%Ada]] [[Plain]] [[X|x]]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found, err := fixText(tt.in, defaultRules())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Len(t, found, tt.count)
		})
	}
}

func TestUpsertAndRemoveRule(t *testing.T) {
	list := []rules.PrefixRule{{Prefix: "@", LinkType: "person"}, {Prefix: ">", LinkType: "place"}}

	list, updated := upsertRule(list, rules.PrefixRule{Prefix: "@", LinkType: "human"})
	assert.True(t, updated)
	assert.Equal(t, "human", list[0].LinkType)

	list, updated = upsertRule(list, rules.PrefixRule{Prefix: "%", LinkType: "book"})
	assert.False(t, updated)
	require.Len(t, list, 3)
	assert.Equal(t, "%", list[2].Prefix)

	list, ok := removeRule(list, ">")
	assert.True(t, ok)
	assert.Equal(t, []string{"@", "%"}, []string{list[0].Prefix, list[1].Prefix})

	_, ok = removeRule(list, "!")
	assert.False(t, ok)
}

func TestAnnotateCommandJSON(t *testing.T) {
	v := testutil.NewTestVault(t).
		WithFile("note.md", "# Day\n\nSaw [[Ada Lovelace|@Ada]] and `[[X|@X]]`.\n").
		Build()
	useVault(t, v.Path)

	env := runJSON(t, func() error { return runAnnotate(annotateCmd, []string{"note.md"}) })
	require.True(t, env.OK)

	var res annotateResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "note.md", res.File)
	require.Len(t, res.Annotations, 1)
	a := res.Annotations[0]
	assert.Equal(t, "[[Ada Lovelace|@Ada]]", a.Text)
	assert.Equal(t, 3, a.Line)
	assert.Equal(t, "person", a.Type)
	assert.Equal(t, "person", a.Attributes["data-sld-type"])
}

func TestAnnotateReadsStdin(t *testing.T) {
	useVault(t, t.TempDir())
	extraRules = ruleList{{Prefix: "%", Emoji: "📚", LinkType: "book"}}

	prev := stdin
	t.Cleanup(func() { stdin = prev })
	stdin = strings.NewReader("[[Dune|%Dune]]")

	env := runJSON(t, func() error { return runAnnotate(annotateCmd, []string{"-"}) })
	var res annotateResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "<stdin>", res.File)
	require.Len(t, res.Annotations, 1)
	assert.Equal(t, "book", res.Annotations[0].Type)
}

func TestAnnotateMissingNote(t *testing.T) {
	useVault(t, t.TempDir())
	env := runJSON(t, func() error { return runAnnotate(annotateCmd, []string{"nope.md"}) })
	assert.False(t, env.OK)
	require.NotNil(t, env.Error)
	assert.Equal(t, ErrFileNotFound, env.Error.Code)
}

func TestFixCommandWritesNote(t *testing.T) {
	v := testutil.NewTestVault(t).
		WithFile("people.md", "[[Ada|@Ada]] met [[Grace|@Grace]]\n").
		Build()
	useVault(t, v.Path)

	prevDry := fixDryRun
	t.Cleanup(func() { fixDryRun = prevDry })

	fixDryRun = true
	env := runJSON(t, func() error { return runFix(fixCmd, []string{"people.md"}) })
	var res []fixResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.Len(t, res, 1)
	assert.True(t, res[0].Changed)
	assert.Len(t, res[0].Replacements, 2)
	assert.Equal(t, "[[Ada|@Ada]] met [[Grace|@Grace]]\n", v.ReadFile("people.md"))

	fixDryRun = false
	runJSON(t, func() error { return runFix(fixCmd, []string{"people.md"}) })
	assert.Equal(t, "[[Ada|👤Ada]] met [[Grace|👤Grace]]\n", v.ReadFile("people.md"))

	env = runJSON(t, func() error { return runFix(fixCmd, []string{"people.md"}) })
	res = nil
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.False(t, res[0].Changed)
}

func TestFixCommandWarnsPerFile(t *testing.T) {
	v := testutil.NewTestVault(t).WithFile("a.md", "[[A|>A]]").Build()
	useVault(t, v.Path)

	env := runJSON(t, func() error { return runFix(fixCmd, []string{"a.md", "missing.md"}) })
	require.True(t, env.OK)
	require.Len(t, env.Warnings, 1)
	assert.Equal(t, ErrFileNotFound, env.Warnings[0].Code)
	assert.Equal(t, "[[A|📍A]]", v.ReadFile("a.md"))
}

func TestRulesAddAndRemove(t *testing.T) {
	v := testutil.NewTestVault(t).Build()
	useVault(t, v.Path)

	prevRule, prevVault := rulesNewRule, rulesVault
	t.Cleanup(func() { rulesNewRule, rulesVault = prevRule, prevVault })

	rulesNewRule = rules.PrefixRule{Prefix: "%", Emoji: "📚", LinkType: "book"}
	rulesVault = false
	captureStdout(t, func() { require.NoError(t, runRulesAdd(rulesAddCmd, nil)) })

	global, err := config.LoadFrom(resolvedConfigPath)
	require.NoError(t, err)
	require.Len(t, global.Rules, 1)
	assert.Equal(t, "book", global.Rules[0].LinkType)

	rulesNewRule = rules.PrefixRule{Prefix: "@", Emoji: "🧑", LinkType: "human"}
	rulesVault = true
	captureStdout(t, func() { require.NoError(t, runRulesAdd(rulesAddCmd, nil)) })
	assert.True(t, v.FileExists(config.VaultConfigFile))

	env := runJSON(t, func() error { return runRulesList(rulesListCmd, nil) })
	var listed rulesListResult
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	assert.Equal(t, []string{config.ContribDefaults, config.ContribGlobal, config.ContribVault}, listed.Contributors)

	byPrefix := map[string]ruleOutput{}
	for _, r := range listed.Rules {
		byPrefix[r.Prefix] = r
	}
	assert.Equal(t, "human", byPrefix["@"].LinkType)
	assert.Equal(t, config.ContribVault, byPrefix["@"].Source)
	assert.Equal(t, config.ContribGlobal, byPrefix["%"].Source)
	assert.Equal(t, config.ContribDefaults, byPrefix[">"].Source)
	assert.Equal(t, "@", listed.Rules[0].Prefix)

	captureStdout(t, func() { require.NoError(t, runRulesRemove(rulesRemoveCmd, []string{"@"})) })
	vc, err := config.LoadVaultConfig(v.Path)
	require.NoError(t, err)
	assert.Empty(t, vc.Rules)

	err = runRulesRemove(rulesRemoveCmd, []string{"@"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no rule with prefix")
}

func TestIndexLinksAndStats(t *testing.T) {
	v := testutil.NewTestVault(t).
		WithFile("a.md", "[[Ada|@Ada]] lives in [[London|>London]]\n").
		WithFile("daily/b.md", "Call [[Ada|@Ada]]\n[[Plain|plain]]\n").
		Build()
	useVault(t, v.Path)

	env := runJSON(t, func() error { return runLinks(linksCmd, nil) })
	assert.False(t, env.OK)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Run 'sld index' first", env.Error.Suggestion)

	env = runJSON(t, func() error { return runIndex(indexCmd, nil) })
	require.True(t, env.OK)
	var res index.ReindexResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 2, res.Indexed)
	assert.Equal(t, 3, res.Links)
	assert.FileExists(t, filepath.Join(v.Path, config.DataDir, "index.db"))

	prevTypes := linksTypes
	t.Cleanup(func() { linksTypes = prevTypes })
	linksTypes = []string{"person"}

	env = runJSON(t, func() error { return runLinks(linksCmd, nil) })
	var links []index.Link
	require.NoError(t, json.Unmarshal(env.Data, &links))
	require.Len(t, links, 2)
	assert.Equal(t, "a.md", links[0].FilePath)
	assert.Equal(t, "daily/b.md", links[1].FilePath)
	assert.Equal(t, "Ada", links[1].Target)

	env = runJSON(t, func() error { return statsCmd.RunE(statsCmd, nil) })
	var stats index.Stats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 2, stats.Files)
	assert.Equal(t, 3, stats.Links)
}

func TestIndexDisabled(t *testing.T) {
	v := testutil.NewTestVault(t).WithVaultYAML("index:\n  enabled: false\n").Build()
	useVault(t, v.Path)

	err := runIndex(indexCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "indexing is disabled")
	assert.False(t, v.FileExists(config.DataDir))
}

func TestInitVault(t *testing.T) {
	dir := t.TempDir()

	res, err := initVault(dir)
	require.NoError(t, err)
	assert.Equal(t, "created", res.VaultConfig)
	assert.Equal(t, "created", res.Gitignore)
	assert.DirExists(t, filepath.Join(dir, config.DataDir))

	vc, err := config.LoadVaultConfig(dir)
	require.NoError(t, err)
	assert.True(t, vc.IndexEnabled())
	assert.True(t, hasVaultMarker(dir))

	res, err = initVault(dir)
	require.NoError(t, err)
	assert.Equal(t, "exists", res.VaultConfig)
	assert.Equal(t, "unchanged", res.Gitignore)
}

func TestEnsureGitignoreAppends(t *testing.T) {
	v := testutil.NewTestVault(t).WithFile(".gitignore", "node_modules/\n").Build()

	status, err := ensureGitignore(filepath.Join(v.Path, ".gitignore"))
	require.NoError(t, err)
	assert.Equal(t, "updated", status)
	assert.Equal(t, "node_modules/\n\n# sld\n.sld/\n", v.ReadFile(".gitignore"))
}
