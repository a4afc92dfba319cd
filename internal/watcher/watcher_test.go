package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/aidanlsb/sld/internal/config"
	"github.com/aidanlsb/sld/internal/index"
	"github.com/aidanlsb/sld/internal/rules"
	"github.com/aidanlsb/sld/internal/testutil"
)

func newTestWatcher(t *testing.T, v *testutil.TestVault) (*Watcher, *index.Database, *[]string) {
	t.Helper()
	db, err := index.OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	var reindexed []string
	w, err := New(Config{
		VaultPath: v.Path,
		Database:  db,
		Rules: func() (*rules.Set, error) {
			vc, err := config.LoadVaultConfig(v.Path)
			if err != nil {
				return nil, err
			}
			return config.Resolve(nil, vc, nil), nil
		},
		DebounceDelay: time.Millisecond,
		OnReindex: func(path string, err error) {
			if err != nil {
				t.Errorf("reindex %s: %v", path, err)
			}
			reindexed = append(reindexed, path)
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w, db, &reindexed
}

func countLinks(t *testing.T, db *index.Database, q index.LinkQuery) int {
	t.Helper()
	links, err := db.Links(q)
	if err != nil {
		t.Fatal(err)
	}
	return len(links)
}

func TestNewRequiresFields(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error without vault path")
	}
	if _, err := New(Config{VaultPath: "/tmp"}); err == nil {
		t.Fatal("expected error without database")
	}
}

func TestWriteEventReindexesAfterDebounce(t *testing.T) {
	v := testutil.NewTestVault(t).WithFile("a.md", "[[ann|@Ann]]").Build()
	w, db, reindexed := newTestWatcher(t, v)

	path := filepath.Join(v.Path, "a.md")
	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Write})
	w.processPending(time.Now().Add(-time.Hour))
	if len(*reindexed) != 0 {
		t.Fatal("file reindexed before debounce delay")
	}

	w.processPending(time.Now().Add(time.Second))
	if len(*reindexed) != 1 {
		t.Fatalf("expected one reindex, got %v", *reindexed)
	}
	if n := countLinks(t, db, index.LinkQuery{Types: []string{"person"}}); n != 1 {
		t.Fatalf("expected 1 person link, got %d", n)
	}
}

func TestRemoveEventDropsFile(t *testing.T) {
	v := testutil.NewTestVault(t).WithFile("notes/a.md", "[[ann|@Ann]]").Build()
	w, db, _ := newTestWatcher(t, v)

	if err := w.ReindexFile("notes/a.md"); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(v.Path, "notes", "a.md")
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Remove})
	if n := countLinks(t, db, index.LinkQuery{}); n != 0 {
		t.Fatalf("expected file removed, %d links left", n)
	}
}

func TestIgnoredPathsSkipped(t *testing.T) {
	v := testutil.NewTestVault(t).WithFile(".sld/x.md", "[[ann|@Ann]]").Build()
	w, db, reindexed := newTestWatcher(t, v)

	w.handleEvent(fsnotify.Event{Name: filepath.Join(v.Path, ".sld", "x.md"), Op: fsnotify.Write})
	w.processPending(time.Now().Add(time.Second))
	if len(*reindexed) != 0 || countLinks(t, db, index.LinkQuery{}) != 0 {
		t.Fatal("ignored file was indexed")
	}
}

func TestVaultConfigChangeReclassifies(t *testing.T) {
	v := testutil.NewTestVault(t).WithFile("a.md", "[[x|>X]]").Build()
	w, db, _ := newTestWatcher(t, v)

	if err := w.ReindexFile("a.md"); err != nil {
		t.Fatal(err)
	}
	if n := countLinks(t, db, index.LinkQuery{Types: []string{"location"}}); n != 1 {
		t.Fatalf("expected location link, got %d", n)
	}

	v.WriteFile(config.VaultConfigFile, "rules:\n  - prefix: \">\"\n    emoji: \"🧭\"\n    link_type: navigation\n")
	w.handleEvent(fsnotify.Event{Name: filepath.Join(v.Path, config.VaultConfigFile), Op: fsnotify.Write})
	w.processPending(time.Now().Add(time.Second))

	if n := countLinks(t, db, index.LinkQuery{Types: []string{"navigation"}}); n != 1 {
		t.Fatalf("expected reclassified link, got %d", n)
	}
	if r, _ := w.Rules().Lookup(">"); r.LinkType != "navigation" {
		t.Fatalf("watcher rules not reloaded: %+v", r)
	}
}
