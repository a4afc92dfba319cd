package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aidanlsb/sld/internal/annotate"
	"github.com/aidanlsb/sld/internal/config"
	"github.com/aidanlsb/sld/internal/linkmatch"
	"github.com/aidanlsb/sld/internal/paths"
	"github.com/aidanlsb/sld/internal/rules"
	"github.com/aidanlsb/sld/internal/syntax"
)

// note is a markdown file named on the command line.
type note struct {
	Path    string // absolute path, empty for stdin
	Display string // path as shown to the user
	Content string
}

// stdin can be replaced in tests.
var stdin io.Reader = os.Stdin

// readNoteArg reads a note given as a path relative to the working
// directory, a path relative to the vault, or "-" for stdin.
func readNoteArg(arg string) (*note, error) {
	if arg == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return &note{Display: "<stdin>", Content: string(data)}, nil
	}

	path, err := locateNote(arg)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", arg, err)
	}
	return &note{Path: path, Display: displayPath(path), Content: string(data)}, nil
}

func locateNote(arg string) (string, error) {
	candidates := []string{arg}
	if !filepath.IsAbs(arg) && getVaultPath() != "" {
		candidates = append(candidates, filepath.Join(getVaultPath(), arg))
		if !paths.IsMarkdown(arg) {
			candidates = append(candidates, filepath.Join(getVaultPath(), arg+".md"))
		}
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return filepath.Abs(c)
		}
	}
	return "", fmt.Errorf("note not found: %s: %w", arg, os.ErrNotExist)
}

// displayPath shows paths inside the vault relative to it.
func displayPath(path string) string {
	if vp := getVaultPath(); vp != "" {
		if abs, err := filepath.Abs(vp); err == nil {
			if rel, err := filepath.Rel(abs, path); err == nil && !strings.HasPrefix(rel, "..") {
				return paths.NormalizeRelPath(rel)
			}
		}
	}
	return path
}

func noteErrorCode(err error) string {
	if errors.Is(err, os.ErrNotExist) {
		return ErrFileNotFound
	}
	return ErrFileReadError
}

// annotateText classifies every aliased link in text.
func annotateText(text string, rs *rules.Set) *annotate.Set {
	return annotate.Build(syntax.Parse(text), linkmatch.String(text), rs, annotate.DefaultTemplate)
}

func lineOf(text string, offset int) int {
	return strings.Count(text[:offset], "\n") + 1
}

// hasVaultMarker reports whether dir holds .sld.yaml or the .sld directory.
func hasVaultMarker(dir string) bool {
	for _, marker := range []string{config.VaultConfigFile, config.DataDir} {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}
