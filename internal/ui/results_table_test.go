package ui

import (
	"strings"
	"testing"
)

func TestTruncateWithEllipsis(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a longer string", 10, "a longe..."},
		{"👤👤👤👤👤👤", 7, "👤👤..."},
		{"abcdef", 3, "abc"},
		{"abc", 0, "abc"},
	}
	for _, tt := range tests {
		if got := TruncateWithEllipsis(tt.in, tt.max); got != tt.want {
			t.Errorf("TruncateWithEllipsis(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestResultsTableRender(t *testing.T) {
	tbl := NewResultsTable(NewDisplayContextWithWidth(100), LinksLayout)
	if got := tbl.Render(); got != "" {
		t.Fatalf("expected empty table to render nothing, got %q", got)
	}

	tbl.AddRow("1", "person", "[[Ann|@Ann]]", "daily.md:3")
	tbl.AddRow("2", "place", "[[Cafe|>Cafe]]")
	out := tbl.Render()

	for _, want := range []string{"person", "[[Ann|@Ann]]", "daily.md:3", "[[Cafe|>Cafe]]"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q:\n%s", want, out)
		}
	}
	if tbl.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tbl.Len())
	}
}

func TestResultsTableWidthsRespectBounds(t *testing.T) {
	tbl := NewResultsTable(NewDisplayContextWithWidth(40), LinksLayout)
	widths := tbl.calculateWidths()
	for i, col := range LinksLayout {
		if widths[i] < col.MinWidth {
			t.Errorf("column %s width %d below minimum %d", col.Name, widths[i], col.MinWidth)
		}
		if col.MaxWidth > 0 && widths[i] > col.MaxWidth {
			t.Errorf("column %s width %d above maximum %d", col.Name, widths[i], col.MaxWidth)
		}
	}
}

func TestFormatRowNum(t *testing.T) {
	if got := FormatRowNum(3, 120); got != "  3" {
		t.Fatalf("FormatRowNum(3, 120) = %q", got)
	}
	if got := FormatRowNum(3, 5); got != " 3" {
		t.Fatalf("FormatRowNum(3, 5) = %q", got)
	}
}
