// Package watcher keeps a vault's link index current by watching its notes
// with fsnotify.
//
// It backs `sld watch`.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/aidanlsb/sld/internal/config"
	"github.com/aidanlsb/sld/internal/index"
	"github.com/aidanlsb/sld/internal/paths"
	"github.com/aidanlsb/sld/internal/rules"
	"github.com/aidanlsb/sld/internal/vault"
)

// RulesFunc returns the rule set to classify with. It is called again after
// the vault config changes.
type RulesFunc func() (*rules.Set, error)

// Watcher monitors a vault directory and reindexes changed notes.
type Watcher struct {
	vaultPath string
	db        *index.Database
	loadRules RulesFunc
	rules     *rules.Set
	opts      index.IndexOptions
	ignore    []string

	debounceDelay time.Duration
	debug         bool

	fsWatcher *fsnotify.Watcher
	pending   map[string]time.Time
	mu        sync.Mutex

	onReindex func(path string, err error)
}

// Config holds configuration options for the Watcher.
type Config struct {
	VaultPath     string
	Database      *index.Database
	Rules         RulesFunc
	IndexOptions  index.IndexOptions
	Ignore        []string
	DebounceDelay time.Duration // Default: 100ms
	Debug         bool
	OnReindex     func(path string, err error) // Optional callback
}

// New creates a new Watcher with the given configuration.
func New(cfg Config) (*Watcher, error) {
	if cfg.VaultPath == "" {
		return nil, fmt.Errorf("vault path is required")
	}
	if cfg.Database == nil {
		return nil, fmt.Errorf("database is required")
	}
	if cfg.Rules == nil {
		return nil, fmt.Errorf("rules are required")
	}
	rs, err := cfg.Rules()
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	debounce := cfg.DebounceDelay
	if debounce == 0 {
		debounce = 100 * time.Millisecond
	}

	return &Watcher{
		vaultPath:     cfg.VaultPath,
		db:            cfg.Database,
		loadRules:     cfg.Rules,
		rules:         rs,
		opts:          cfg.IndexOptions,
		ignore:        cfg.Ignore,
		debounceDelay: debounce,
		debug:         cfg.Debug,
		pending:       make(map[string]time.Time),
		onReindex:     cfg.OnReindex,
	}, nil
}

// Start begins watching the vault for file changes.
// It blocks until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	var err error
	w.fsWatcher, err = fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer w.fsWatcher.Close()

	if err := w.addWatchRecursive(w.vaultPath); err != nil {
		return fmt.Errorf("failed to watch vault: %w", err)
	}

	w.logDebug("Watching vault: %s", w.vaultPath)

	go w.processDebounced(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logDebug("Watcher error: %v", err)
		}
	}
}

// Rules returns the rule set currently used for classification.
func (w *Watcher) Rules() *rules.Set {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rules
}

// ReindexFile reads and indexes a single note. Relative paths are taken
// from the vault root.
func (w *Watcher) ReindexFile(path string) error {
	if !filepath.IsAbs(path) {
		path = filepath.Join(w.vaultPath, path)
	}
	rel, ok := w.relative(path)
	if !ok || !paths.IsMarkdown(path) {
		return nil
	}

	note, err := vault.ReadNote(path)
	if err != nil {
		if os.IsNotExist(err) {
			return w.db.RemoveFile(rel)
		}
		return fmt.Errorf("failed to read file: %w", err)
	}
	if _, err := w.db.IndexFile(rel, note.Content, note.FileMtime, w.Rules(), w.opts); err != nil {
		return fmt.Errorf("failed to index file: %w", err)
	}
	return nil
}

// RemoveFromIndex removes a note, or every note under a removed directory.
func (w *Watcher) RemoveFromIndex(path string) error {
	rel, ok := w.relative(path)
	if !ok {
		return nil
	}
	if !paths.IsMarkdown(rel) {
		_, err := w.db.RemoveFilesWithPrefix(rel)
		return err
	}
	return w.db.RemoveFile(rel)
}

// reloadRules re-reads the rules and reindexes every note with them.
func (w *Watcher) reloadRules() error {
	rs, err := w.loadRules()
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.rules = rs
	w.mu.Unlock()

	_, err = w.db.IndexVault(w.vaultPath, rs, index.ReindexOptions{
		IndexOptions: w.opts,
		Ignore:       w.ignore,
		Full:         true,
	})
	return err
}

// relative returns the vault-relative slash path, or false for paths that
// are outside the vault or in skipped directories.
func (w *Watcher) relative(path string) (string, bool) {
	rel, err := filepath.Rel(w.vaultPath, path)
	if err != nil {
		return "", false
	}
	rel = paths.NormalizeRelPath(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	if paths.SkipDir(filepath.ToSlash(filepath.Dir(rel)), w.ignore) {
		return "", false
	}
	return rel, true
}

func (w *Watcher) isVaultConfig(path string) bool {
	return filepath.Clean(path) == filepath.Join(w.vaultPath, config.VaultConfigFile)
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if w.isVaultConfig(path) {
		if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
			w.logDebug("Vault config changed")
			w.scheduleReindex(path)
		}
		return
	}

	if !paths.IsMarkdown(path) {
		if event.Op&fsnotify.Create != 0 {
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				w.addWatchRecursive(path)
			}
		}
		if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
			if err := w.RemoveFromIndex(path); err != nil {
				w.logDebug("Failed to remove directory from index: %v", err)
			}
		}
		return
	}

	if _, ok := w.relative(path); !ok {
		return
	}

	w.logDebug("Event: %s %s", event.Op, path)

	switch {
	case event.Op&fsnotify.Write != 0, event.Op&fsnotify.Create != 0:
		w.scheduleReindex(path)
	case event.Op&fsnotify.Remove != 0, event.Op&fsnotify.Rename != 0:
		if err := w.RemoveFromIndex(path); err != nil {
			w.logDebug("Failed to remove from index: %v", err)
		}
	}
}

func (w *Watcher) scheduleReindex(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[path] = time.Now()
}

func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processPending(time.Now())
		}
	}
}

// processPending reindexes every file that has been quiet for the debounce
// delay as of now.
func (w *Watcher) processPending(now time.Time) {
	w.mu.Lock()
	var ready []string
	for path, scheduledAt := range w.pending {
		if now.Sub(scheduledAt) >= w.debounceDelay {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range ready {
		var err error
		if w.isVaultConfig(path) {
			err = w.reloadRules()
		} else {
			err = w.ReindexFile(path)
		}
		if w.onReindex != nil {
			w.onReindex(path, err)
		}
		if err != nil {
			w.logDebug("Failed to reindex %s: %v", path, err)
		} else {
			w.logDebug("Reindexed: %s", path)
		}
	}
}

func (w *Watcher) addWatchRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if rel, err := filepath.Rel(w.vaultPath, path); err == nil && paths.SkipDir(rel, w.ignore) {
			return filepath.SkipDir
		}
		if err := w.fsWatcher.Add(path); err != nil {
			w.logDebug("Failed to watch %s: %v", path, err)
		}
		return nil
	})
}

func (w *Watcher) logDebug(format string, args ...any) {
	if w.debug {
		fmt.Fprintf(os.Stderr, "[sld-watch] "+format+"\n", args...)
	}
}
