package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aidanlsb/sld/internal/config"
	"github.com/aidanlsb/sld/internal/rules"
)

var captureStdoutMu sync.Mutex

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	captureStdoutMu.Lock()
	defer captureStdoutMu.Unlock()

	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	os.Stdout = w

	outputCh := make(chan string, 1)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		_ = r.Close()
		outputCh <- buf.String()
	}()

	fn()

	os.Stdout = orig
	_ = w.Close()
	return <-outputCh
}

// useVault points the command globals at vaultPath with an empty global
// config, restoring them when the test ends.
func useVault(t *testing.T, vaultPath string) {
	t.Helper()
	prevVault, prevCfg, prevCfgPath := resolvedVaultPath, cfg, resolvedConfigPath
	prevJSON, prevRules := jsonOutput, extraRules
	t.Cleanup(func() {
		resolvedVaultPath, cfg, resolvedConfigPath = prevVault, prevCfg, prevCfgPath
		jsonOutput, extraRules = prevJSON, prevRules
	})

	resolvedVaultPath = vaultPath
	cfg = &config.Config{}
	resolvedConfigPath = filepath.Join(t.TempDir(), "config.toml")
	jsonOutput = false
	extraRules = nil
}

type envelope struct {
	OK       bool            `json:"ok"`
	Data     json.RawMessage `json:"data"`
	Error    *ErrorInfo      `json:"error"`
	Warnings []Warning       `json:"warnings"`
	Meta     *Meta           `json:"meta"`
}

// runJSON runs fn with --json set and decodes the envelope.
func runJSON(t *testing.T, fn func() error) envelope {
	t.Helper()
	jsonOutput = true
	defer func() { jsonOutput = false }()

	out := captureStdout(t, func() {
		if err := fn(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
	var env envelope
	if err := json.Unmarshal([]byte(out), &env); err != nil {
		t.Fatalf("expected JSON output, got parse error: %v; out=%s", err, out)
	}
	return env
}

func defaultRules() *rules.Set {
	return rules.Merge(rules.Defaults())
}
