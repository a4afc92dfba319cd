// Package vault walks the markdown notes of a vault.
package vault

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/aidanlsb/sld/internal/paths"
)

// WalkResult is one markdown file found by WalkMarkdownFiles.
type WalkResult struct {
	Path         string
	RelativePath string
	Content      string
	FileMtime    int64 // Unix seconds
	Error        error
}

// WalkOptions configures WalkMarkdownFiles.
type WalkOptions struct {
	// Ignore lists extra vault-relative directories to skip.
	Ignore []string
}

// WalkMarkdownFiles calls handler for every .md file under vaultPath. Read
// failures are reported through WalkResult.Error rather than stopping the
// walk; returning an error from handler stops it. Files that resolve outside
// the vault through symlinks are skipped.
func WalkMarkdownFiles(vaultPath string, opts *WalkOptions, handler func(WalkResult) error) error {
	var ignore []string
	if opts != nil {
		ignore = opts.Ignore
	}

	return filepath.WalkDir(vaultPath, func(path string, d fs.DirEntry, err error) error {
		relativePath, _ := filepath.Rel(vaultPath, path)
		relativePath = paths.NormalizeRelPath(relativePath)
		if err != nil {
			return handler(WalkResult{Path: path, RelativePath: relativePath, Error: err})
		}

		if d.IsDir() {
			if paths.SkipDir(relativePath, ignore) {
				return filepath.SkipDir
			}
			return nil
		}
		if !paths.IsMarkdown(path) {
			return nil
		}

		if err := paths.ValidateWithinVault(vaultPath, path); err != nil {
			if errors.Is(err, paths.ErrPathOutsideVault) {
				return nil
			}
			return handler(WalkResult{Path: path, RelativePath: relativePath, Error: err})
		}

		result, err := ReadNote(path)
		result.RelativePath = relativePath
		result.Error = err
		return handler(result)
	})
}

// ReadNote reads one note and its modification time.
func ReadNote(path string) (WalkResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return WalkResult{Path: path}, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return WalkResult{Path: path}, err
	}
	return WalkResult{
		Path:      path,
		Content:   string(content),
		FileMtime: info.ModTime().Unix(),
	}, nil
}

// CollectFiles walks the vault and returns readable notes and failures
// separately.
func CollectFiles(vaultPath string, opts *WalkOptions) ([]WalkResult, []WalkResult, error) {
	var files, failed []WalkResult
	err := WalkMarkdownFiles(vaultPath, opts, func(r WalkResult) error {
		if r.Error != nil {
			failed = append(failed, r)
		} else {
			files = append(files, r)
		}
		return nil
	})
	return files, failed, err
}
