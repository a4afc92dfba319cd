package cli

import (
	"encoding/json"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundledDocsIndexResolves(t *testing.T) {
	topics, err := loadDocsIndex()
	require.NoError(t, err)
	require.NotEmpty(t, topics)
	for _, topic := range topics {
		_, err := fs.ReadFile(docsFS, topic.Path)
		assert.NoError(t, err, "topic %s", topic.ID)
	}
}

func TestDocsTopicPlainWhenNotTerminal(t *testing.T) {
	prevFS, prevTTY := docsFS, docsStdoutIsTerminal
	t.Cleanup(func() { docsFS, docsStdoutIsTerminal = prevFS, prevTTY })

	docsFS = fstest.MapFS{
		"index.yaml":     {Data: []byte("topics:\n  - id: intro\n    title: Intro\n    path: guide/intro.md\n")},
		"guide/intro.md": {Data: []byte("# Intro\n\nHello.\n")},
	}
	docsStdoutIsTerminal = func() bool { return false }

	out := captureStdout(t, func() {
		require.NoError(t, runDocs(docsCmd, []string{"INTRO"}))
	})
	assert.Equal(t, "# Intro\n\nHello.\n", out)

	env := runJSON(t, func() error { return runDocs(docsCmd, []string{"missing"}) })
	assert.False(t, env.OK)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Available topics: intro", env.Error.Suggestion)

	env = runJSON(t, func() error { return runDocs(docsCmd, nil) })
	var data struct {
		Topics []docsTopic `json:"topics"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, []docsTopic{{ID: "intro", Title: "Intro", Path: "guide/intro.md"}}, data.Topics)
}
