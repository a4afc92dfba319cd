// Package index keeps a SQLite index of classified links across a vault.
package index

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"

	"github.com/aidanlsb/sld/internal/config"
)

// Database is the SQLite database handle.
type Database struct {
	db *sql.DB
}

var (
	// ErrFileNotIndexed indicates the file has no row in the index.
	ErrFileNotIndexed = errors.New("file not in index")
	// ErrIndexLocked indicates another process is rebuilding the index.
	ErrIndexLocked = errors.New("index is locked for rebuild")
)

// CurrentDBVersion is the current database schema version.
const CurrentDBVersion = 1

// DBPath returns where the index for vaultPath lives.
func DBPath(vaultPath string) string {
	return filepath.Join(vaultPath, config.DataDir, "index.db")
}

// DB returns the underlying sql.DB for ad hoc queries.
func (d *Database) DB() *sql.DB {
	return d.db
}

// Open opens or creates the vault's index.
func Open(vaultPath string) (*Database, error) {
	dbPath := DBPath(vaultPath)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", config.DataDir, err)
	}
	return open(dbPath)
}

// OpenInMemory opens an in-memory database (for testing).
func OpenInMemory() (*Database, error) {
	return open(":memory:")
}

func open(dsn string) (*Database, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection keeps :memory: databases shared and serializes writers
	db.SetMaxOpenConns(1)

	d := &Database{db: db}
	if err := d.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// OpenWithRebuild opens the index, deleting and recreating it when it was
// written by an incompatible version. It reports whether a rebuild happened.
func OpenWithRebuild(vaultPath string) (*Database, bool, error) {
	dbPath := DBPath(vaultPath)

	lock, err := acquireIndexLock(filepath.Dir(dbPath))
	if err != nil {
		return nil, false, err
	}
	defer lock.Release()

	rebuilt := false
	if _, err := os.Stat(dbPath); err == nil {
		if version, err := readVersion(dbPath); err != nil || version != CurrentDBVersion {
			if err := removeDatabaseFiles(dbPath); err != nil {
				return nil, false, err
			}
			rebuilt = true
		}
	}

	db, err := Open(vaultPath)
	return db, rebuilt, err
}

func readVersion(dbPath string) (int, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	var raw string
	if err := db.QueryRow(`SELECT value FROM meta WHERE key = 'version'`).Scan(&raw); err != nil {
		return 0, err
	}
	return strconv.Atoi(raw)
}

func removeDatabaseFiles(dbPath string) error {
	for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", p, err)
		}
	}
	return nil
}

// Close closes the database.
func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) initialize() error {
	schema := `
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = NORMAL;
		PRAGMA temp_store = MEMORY;

		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		-- One row per indexed note
		CREATE TABLE IF NOT EXISTS files (
			file_path TEXT PRIMARY KEY,
			file_mtime INTEGER NOT NULL,
			indexed_at INTEGER NOT NULL
		);

		-- One row per aliased link
		CREATE TABLE IF NOT EXISTS links (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			file_path TEXT NOT NULL,
			line_number INTEGER NOT NULL,
			position_start INTEGER NOT NULL,
			position_end INTEGER NOT NULL,
			target TEXT NOT NULL,
			alias TEXT NOT NULL,
			link_type TEXT,              -- NULL when no rule matched
			prefix TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_links_file ON links(file_path);
		CREATE INDEX IF NOT EXISTS idx_links_type ON links(link_type);
		CREATE INDEX IF NOT EXISTS idx_links_target ON links(target);
	`
	if _, err := d.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize database schema: %w", err)
	}

	_, err := d.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('version', ?)`,
		strconv.Itoa(CurrentDBVersion))
	if err != nil {
		return fmt.Errorf("failed to set database version: %w", err)
	}
	return nil
}
