// Package paths keeps vault-relative path handling in one place: normalizing
// relative paths, deciding which directories are skipped, and refusing paths
// that escape the vault.
package paths

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrPathOutsideVault is returned when a path resolves outside the vault.
var ErrPathOutsideVault = errors.New("path is outside the vault")

// alwaysSkipped are directory names never walked or watched.
var alwaysSkipped = map[string]bool{
	".sld":   true,
	".git":   true,
	".trash": true,
}

// NormalizeRelPath converts OS separators to '/', trims leading "./" and
// "/", and collapses repeated separators.
func NormalizeRelPath(p string) string {
	p = filepath.ToSlash(p)
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "/")
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	return p
}

// NormalizeDirRoot returns root with no leading slash and exactly one
// trailing slash, or "" for an empty root.
func NormalizeDirRoot(root string) string {
	root = strings.Trim(filepath.ToSlash(root), "/")
	if root == "" {
		return ""
	}
	return root + "/"
}

// IsMarkdown reports whether path names a markdown note.
func IsMarkdown(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".md")
}

// SkipDir reports whether a directory at vault-relative rel is skipped.
// ignore holds extra vault-relative directory roots from .sld.yaml.
func SkipDir(rel string, ignore []string) bool {
	rel = NormalizeRelPath(rel)
	if rel == "" || rel == "." {
		return false
	}
	for _, part := range strings.Split(rel, "/") {
		if alwaysSkipped[part] {
			return true
		}
	}
	withSlash := rel + "/"
	for _, root := range ignore {
		if r := NormalizeDirRoot(root); r != "" && strings.HasPrefix(withSlash, r) {
			return true
		}
	}
	return false
}

// ValidateWithinVault resolves symlinks and checks that target is inside
// vaultPath.
func ValidateWithinVault(vaultPath, target string) error {
	root, err := filepath.EvalSymlinks(vaultPath)
	if err != nil {
		return err
	}
	resolved, err := filepath.EvalSymlinks(target)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(root, resolved)
	if err != nil {
		return err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ErrPathOutsideVault
	}
	return nil
}
