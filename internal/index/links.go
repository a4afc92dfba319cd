package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aidanlsb/sld/internal/linkmatch"
	"github.com/aidanlsb/sld/internal/rules"
	"github.com/aidanlsb/sld/internal/sqlutil"
	"github.com/aidanlsb/sld/internal/syntax"
)

// Link is one indexed aliased link.
type Link struct {
	FilePath   string `json:"file_path"`
	Line       int    `json:"line"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Target     string `json:"target"`
	Alias      string `json:"alias"`
	LinkType   string `json:"link_type,omitempty"`
	Prefix     string `json:"prefix,omitempty"`
	Classified bool   `json:"classified"`
}

// IndexOptions controls what IndexFile records.
type IndexOptions struct {
	IncludeUnclassified bool
}

// ExtractLinks finds every aliased link in content and classifies it.
// Unclassified links are returned only when includeUnclassified is set.
func ExtractLinks(filePath, content string, rs *rules.Set, includeUnclassified bool) []Link {
	tree := syntax.Parse(content)
	var out []Link
	linkmatch.Walk(tree.Cursor(), linkmatch.String(content), func(from, to int, target, alias string) {
		link := Link{
			FilePath: filePath,
			Line:     strings.Count(content[:from], "\n") + 1,
			Start:    from,
			End:      to,
			Target:   target,
			Alias:    alias,
		}
		if rule, ok := rs.Classify(alias); ok {
			link.LinkType = rule.LinkType
			link.Prefix = rule.Prefix
			link.Classified = true
		} else if !includeUnclassified {
			return
		}
		out = append(out, link)
	})
	return out
}

// IndexFile replaces everything indexed for filePath with the links found
// in content. It returns the number of links written.
func (d *Database) IndexFile(filePath, content string, fileMtime int64, rs *rules.Set, opts IndexOptions) (int, error) {
	links := ExtractLinks(filePath, content, rs, opts.IncludeUnclassified)

	tx, err := d.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if err := deleteByFilePath(tx, filePath); err != nil {
		return 0, err
	}

	now := time.Now().Unix()
	if fileMtime <= 0 {
		fileMtime = now
	}
	if _, err := tx.Exec(`INSERT INTO files (file_path, file_mtime, indexed_at) VALUES (?, ?, ?)`,
		filePath, fileMtime, now); err != nil {
		return 0, fmt.Errorf("insert file: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO links (file_path, line_number, position_start, position_end, target, alias, link_type, prefix)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, l := range links {
		var linkType, prefix any
		if l.Classified {
			linkType, prefix = l.LinkType, l.Prefix
		}
		if _, err := stmt.Exec(l.FilePath, l.Line, l.Start, l.End, l.Target, l.Alias, linkType, prefix); err != nil {
			return 0, fmt.Errorf("insert link: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(links), nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

var filePathTables = []string{"links", "files"}

func deleteByFilePath(e execer, filePath string) error {
	for _, table := range filePathTables {
		if _, err := e.Exec("DELETE FROM "+table+" WHERE file_path = ?", filePath); err != nil {
			return fmt.Errorf("delete from %s: %w", table, err)
		}
	}
	return nil
}

// RemoveFile drops a file from the index.
func (d *Database) RemoveFile(filePath string) error {
	return deleteByFilePath(d.db, filePath)
}

// RemoveFilesWithPrefix drops every file under a vault-relative directory
// and returns how many were indexed there.
func (d *Database) RemoveFilesWithPrefix(dir string) (int, error) {
	like := strings.TrimSuffix(dir, "/") + "/%"
	var n int
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM files WHERE file_path LIKE ?`, like).Scan(&n); err != nil {
		return 0, err
	}
	for _, table := range filePathTables {
		if _, err := d.db.Exec("DELETE FROM "+table+" WHERE file_path LIKE ?", like); err != nil {
			return 0, fmt.Errorf("delete from %s: %w", table, err)
		}
	}
	return n, nil
}

// FileMtime returns the modification time recorded for filePath.
func (d *Database) FileMtime(filePath string) (int64, error) {
	var mtime int64
	err := d.db.QueryRow(`SELECT file_mtime FROM files WHERE file_path = ?`, filePath).Scan(&mtime)
	if err == sql.ErrNoRows {
		return 0, ErrFileNotIndexed
	}
	return mtime, err
}

// IndexedFiles returns every indexed file with its recorded mtime.
func (d *Database) IndexedFiles() (map[string]int64, error) {
	rows, err := d.db.Query(`SELECT file_path, file_mtime FROM files`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var p string
		var m int64
		if err := rows.Scan(&p, &m); err != nil {
			return nil, err
		}
		out[p] = m
	}
	return out, rows.Err()
}

// RemoveDeletedFiles drops indexed files that no longer exist on disk.
func (d *Database) RemoveDeletedFiles(vaultPath string) ([]string, error) {
	files, err := d.IndexedFiles()
	if err != nil {
		return nil, err
	}
	var removed []string
	for rel := range files {
		if _, err := os.Stat(filepath.Join(vaultPath, filepath.FromSlash(rel))); os.IsNotExist(err) {
			if err := d.RemoveFile(rel); err != nil {
				return removed, err
			}
			removed = append(removed, rel)
		}
	}
	return removed, nil
}

// LinkQuery filters Links. Zero values match everything.
type LinkQuery struct {
	Types        []string
	Target       string
	FilePath     string
	Unclassified bool
	Limit        int
}

// Links returns indexed links ordered by file and position.
func (d *Database) Links(q LinkQuery) ([]Link, error) {
	var where []string
	var args []any
	if len(q.Types) > 0 {
		ph, typeArgs := sqlutil.InClause(q.Types)
		where = append(where, "link_type IN ("+ph+")")
		args = append(args, typeArgs...)
	}
	if q.Unclassified {
		where = append(where, "link_type IS NULL")
	}
	if q.Target != "" {
		where = append(where, "target = ?")
		args = append(args, q.Target)
	}
	if q.FilePath != "" {
		where = append(where, "file_path = ?")
		args = append(args, q.FilePath)
	}

	query := `SELECT file_path, line_number, position_start, position_end, target, alias, link_type, prefix FROM links`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY file_path, position_start"
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.Limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	return sqlutil.ScanRows(rows, scanLink)
}

func scanLink(rows *sql.Rows) (Link, error) {
	var l Link
	var linkType, prefix sql.NullString
	if err := rows.Scan(&l.FilePath, &l.Line, &l.Start, &l.End, &l.Target, &l.Alias, &linkType, &prefix); err != nil {
		return Link{}, err
	}
	l.LinkType = linkType.String
	l.Prefix = prefix.String
	l.Classified = linkType.Valid
	return l, nil
}

// TypeCount is the number of links of one type.
type TypeCount struct {
	LinkType string `json:"link_type"`
	Count    int    `json:"count"`
}

// Stats summarizes the index.
type Stats struct {
	Files        int         `json:"files"`
	Links        int         `json:"links"`
	Unclassified int         `json:"unclassified"`
	ByType       []TypeCount `json:"by_type"`
}

// Stats returns counts over the whole index.
func (d *Database) Stats() (*Stats, error) {
	s := &Stats{}
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM files`).Scan(&s.Files); err != nil {
		return nil, err
	}
	if err := d.db.QueryRow(`SELECT COUNT(*), COUNT(*) - COUNT(link_type) FROM links`).Scan(&s.Links, &s.Unclassified); err != nil {
		return nil, err
	}

	rows, err := d.db.Query(`
		SELECT link_type, COUNT(*) FROM links
		WHERE link_type IS NOT NULL
		GROUP BY link_type
		ORDER BY COUNT(*) DESC, link_type
	`)
	if err != nil {
		return nil, err
	}
	s.ByType, err = sqlutil.ScanRows(rows, func(rows *sql.Rows) (TypeCount, error) {
		var tc TypeCount
		err := rows.Scan(&tc.LinkType, &tc.Count)
		return tc, err
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}
