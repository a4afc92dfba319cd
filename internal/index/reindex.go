package index

import (
	"github.com/aidanlsb/sld/internal/rules"
	"github.com/aidanlsb/sld/internal/vault"
)

// ReindexOptions configures IndexVault.
type ReindexOptions struct {
	IndexOptions
	Ignore []string
	// Full reindexes files whose mtime has not changed.
	Full bool
}

// FileError is a note that could not be indexed.
type FileError struct {
	FilePath string `json:"file_path"`
	Message  string `json:"message"`
}

// ReindexResult summarizes IndexVault.
type ReindexResult struct {
	Indexed int         `json:"indexed"`
	Skipped int         `json:"skipped"`
	Removed []string    `json:"removed,omitempty"`
	Links   int         `json:"links"`
	Errors  []FileError `json:"errors,omitempty"`
}

// IndexVault brings the index up to date with the notes in vaultPath.
func (d *Database) IndexVault(vaultPath string, rs *rules.Set, opts ReindexOptions) (*ReindexResult, error) {
	known, err := d.IndexedFiles()
	if err != nil {
		return nil, err
	}

	res := &ReindexResult{}
	walkErr := vault.WalkMarkdownFiles(vaultPath, &vault.WalkOptions{Ignore: opts.Ignore}, func(r vault.WalkResult) error {
		if r.Error != nil {
			res.Errors = append(res.Errors, FileError{FilePath: r.RelativePath, Message: r.Error.Error()})
			return nil
		}
		if m, ok := known[r.RelativePath]; ok && !opts.Full && m == r.FileMtime {
			res.Skipped++
			return nil
		}
		n, err := d.IndexFile(r.RelativePath, r.Content, r.FileMtime, rs, opts.IndexOptions)
		if err != nil {
			res.Errors = append(res.Errors, FileError{FilePath: r.RelativePath, Message: err.Error()})
			return nil
		}
		res.Indexed++
		res.Links += n
		return nil
	})
	if walkErr != nil {
		return res, walkErr
	}

	removed, err := d.RemoveDeletedFiles(vaultPath)
	res.Removed = removed
	return res, err
}
