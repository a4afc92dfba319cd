package vault

import (
	"sort"
	"testing"

	"github.com/aidanlsb/sld/internal/testutil"
)

func TestWalkMarkdownFiles(t *testing.T) {
	v := testutil.NewTestVault(t).
		WithFile("a.md", "[[x|@y]]").
		WithFile("sub/b.md", "b").
		WithFile("sub/c.txt", "not markdown").
		WithFile(".sld/cache.md", "skipped").
		WithFile("archive/old.md", "skipped").
		Build()

	files, failed, err := CollectFiles(v.Path, &WalkOptions{Ignore: []string{"archive"}})
	if err != nil {
		t.Fatalf("CollectFiles: %v", err)
	}
	if len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}

	var rels []string
	for _, f := range files {
		rels = append(rels, f.RelativePath)
		if f.FileMtime == 0 {
			t.Errorf("%s: missing mtime", f.RelativePath)
		}
	}
	sort.Strings(rels)
	want := []string{"a.md", "sub/b.md"}
	if len(rels) != len(want) || rels[0] != want[0] || rels[1] != want[1] {
		t.Fatalf("walked %v, want %v", rels, want)
	}
	for _, f := range files {
		if f.RelativePath == "a.md" && f.Content != "[[x|@y]]" {
			t.Errorf("content = %q", f.Content)
		}
	}
}

func TestReadNoteMissing(t *testing.T) {
	if _, err := ReadNote("/does/not/exist.md"); err == nil {
		t.Fatal("expected error")
	}
}
