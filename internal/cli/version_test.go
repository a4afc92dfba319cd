package cli

import (
	"encoding/json"
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidanlsb/sld/internal/buildinfo"
	"github.com/aidanlsb/sld/internal/index"
)

func stubBuildInfo(t *testing.T, bi *debug.BuildInfo) {
	t.Helper()
	prev := readBuildInfo
	t.Cleanup(func() { readBuildInfo = prev })
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, bi != nil }
}

func TestCurrentVersionInfoFromBuildInfo(t *testing.T) {
	stubBuildInfo(t, &debug.BuildInfo{
		GoVersion: "go1.23.4",
		Main:      debug.Module{Path: "example.com/fork/sld", Version: "v0.4.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-09-30T08:00:00Z"},
			{Key: "vcs.modified", Value: "TRUE"},
			{Key: "GOOS", Value: "windows"},
			{Key: "GOARCH", Value: "amd64"},
		},
	})

	info := currentVersionInfo()
	assert.Equal(t, versionInfo{
		Version:      "v0.4.0",
		ModulePath:   "example.com/fork/sld",
		Commit:       "abc123",
		CommitTime:   "2026-09-30T08:00:00Z",
		Modified:     true,
		GoVersion:    "go1.23.4",
		Platform:     "windows/amd64",
		IndexVersion: index.CurrentDBVersion,
	}, info)
}

func TestCurrentVersionInfoFallsBackToLdflags(t *testing.T) {
	stubBuildInfo(t, nil)
	prevVersion, prevCommit, prevDate := buildinfo.Version, buildinfo.Commit, buildinfo.Date
	t.Cleanup(func() { buildinfo.Version, buildinfo.Commit, buildinfo.Date = prevVersion, prevCommit, prevDate })

	buildinfo.Version, buildinfo.Commit, buildinfo.Date = "", "", ""
	info := currentVersionInfo()
	assert.Equal(t, "devel", info.Version)
	assert.Equal(t, modulePath, info.ModulePath)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
	assert.Empty(t, info.Commit)

	buildinfo.Version, buildinfo.Commit, buildinfo.Date = "v1.0.0", "f00d", "2026-10-01"
	info = currentVersionInfo()
	assert.Equal(t, "v1.0.0", info.Version)
	assert.Equal(t, "f00d", info.Commit)
	assert.Equal(t, "2026-10-01", info.CommitTime)
}

func TestVersionCommandJSONOutput(t *testing.T) {
	stubBuildInfo(t, &debug.BuildInfo{
		GoVersion: "go1.23.4",
		Main:      debug.Module{Path: modulePath, Version: "(devel)"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "deadbeef"},
			{Key: "GOOS", Value: "darwin"},
			{Key: "GOARCH", Value: "arm64"},
		},
	})
	prevVersion := buildinfo.Version
	t.Cleanup(func() { buildinfo.Version = prevVersion })
	buildinfo.Version = ""

	env := runJSON(t, func() error { return versionCmd.RunE(versionCmd, nil) })
	require.True(t, env.OK)

	var info versionInfo
	require.NoError(t, json.Unmarshal(env.Data, &info))
	assert.Equal(t, "devel", info.Version)
	assert.Equal(t, "deadbeef", info.Commit)
	assert.Equal(t, "darwin/arm64", info.Platform)
	assert.False(t, info.Modified)
}
