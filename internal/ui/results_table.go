package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rivo/uniseg"
)

// Alignment represents column text alignment.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

// ColumnDef defines a column in a ResultsTable.
type ColumnDef struct {
	Name       string
	WidthRatio float64 // Proportion of the flexible width; 0 means fixed at MinWidth
	MinWidth   int
	MaxWidth   int // 0 = no limit
	Align      Alignment
	Style      lipgloss.Style
}

// ResultsTable renders rows as a borderless table sized to the terminal.
type ResultsTable struct {
	display *DisplayContext
	columns []ColumnDef
	rows    [][]string
	header  bool
}

var (
	// ColNum is the row number column (fixed width, right-aligned, muted).
	ColNum = ColumnDef{Name: "#", MinWidth: 4, Align: AlignRight, Style: Muted}

	// ColType holds a link type.
	ColType = ColumnDef{Name: "type", WidthRatio: 0.15, MinWidth: 8, MaxWidth: 16, Style: Accent}

	// ColLink holds the link source text.
	ColLink = ColumnDef{Name: "link", WidthRatio: 0.55, MinWidth: 24, MaxWidth: 80}

	// ColFile is the file:line location column.
	ColFile = ColumnDef{Name: "file", WidthRatio: 0.30, MinWidth: 12, MaxWidth: 50, Style: Muted}

	// ColCount is a right-aligned number.
	ColCount = ColumnDef{Name: "count", MinWidth: 7, Align: AlignRight}
)

var (
	// LinksLayout is used by `sld links` and `sld annotate`: [num, type, link, file]
	LinksLayout = []ColumnDef{ColNum, ColType, ColLink, ColFile}

	// StatsLayout is used by `sld stats`: [type, count]
	StatsLayout = []ColumnDef{ColType, ColCount}
)

// NewResultsTable creates a table with the given display context and column layout.
func NewResultsTable(display *DisplayContext, columns []ColumnDef) *ResultsTable {
	return &ResultsTable{display: display, columns: columns}
}

// WithHeader prints column names above the rows.
func (t *ResultsTable) WithHeader() *ResultsTable {
	t.header = true
	return t
}

// AddRow adds a row; missing cells are left blank and long ones truncated.
func (t *ResultsTable) AddRow(cells ...string) {
	row := make([]string, len(t.columns))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Len returns the number of rows.
func (t *ResultsTable) Len() int { return len(t.rows) }

// calculateWidths gives fixed columns their MinWidth and splits the rest of
// the terminal by ratio, within each column's bounds.
func (t *ResultsTable) calculateWidths() []int {
	const columnPadding = 2
	const leftMargin = 2

	widths := make([]int, len(t.columns))
	var totalRatio float64
	fixed := 0
	for i, col := range t.columns {
		if col.WidthRatio == 0 {
			widths[i] = col.MinWidth
			fixed += col.MinWidth
			continue
		}
		totalRatio += col.WidthRatio
	}

	available := t.display.AvailableWidth(fixed + leftMargin + (len(t.columns)-1)*columnPadding)
	for i, col := range t.columns {
		if col.WidthRatio == 0 {
			continue
		}
		w := int(float64(available) * col.WidthRatio / totalRatio)
		w = max(w, col.MinWidth)
		if col.MaxWidth > 0 {
			w = min(w, col.MaxWidth)
		}
		widths[i] = w
	}
	return widths
}

// Render generates the table output as a string.
func (t *ResultsTable) Render() string {
	if len(t.rows) == 0 {
		return ""
	}

	widths := t.calculateWidths()
	rows := make([][]string, len(t.rows))
	for i, row := range t.rows {
		rows[i] = make([]string, len(row))
		for j, cell := range row {
			rows[i][j] = TruncateWithEllipsis(cell, widths[j])
		}
	}

	tbl := table.New().
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(t.header).
		BorderColumn(false).
		BorderRow(false).
		BorderStyle(Muted).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col >= len(t.columns) {
				return lipgloss.NewStyle()
			}
			def := t.columns[col]
			style := def.Style
			if row == table.HeaderRow {
				style = Bold
			}
			style = style.Width(widths[col])
			if def.Align == AlignRight {
				style = style.Align(lipgloss.Right)
			}
			if col < len(t.columns)-1 {
				style = style.PaddingRight(2)
			}
			return style
		}).
		Rows(rows...)

	if t.header {
		names := make([]string, len(t.columns))
		for i, col := range t.columns {
			names[i] = col.Name
		}
		tbl = tbl.Headers(names...)
	}
	return tbl.Render()
}

// TruncateWithEllipsis shortens s to at most maxLen terminal cells, ending
// it with "...". Grapheme clusters are never split.
func TruncateWithEllipsis(s string, maxLen int) string {
	if maxLen <= 0 || uniseg.StringWidth(s) <= maxLen {
		return s
	}
	limit := maxLen - 3
	if limit <= 0 {
		limit = maxLen
	}

	width := 0
	out := make([]byte, 0, len(s))
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		w := g.Width()
		if width+w > limit {
			break
		}
		width += w
		out = append(out, g.Str()...)
	}
	if limit == maxLen {
		return string(out)
	}
	return string(out) + "..."
}

// FormatRowNum formats a row number with consistent width.
func FormatRowNum(num, maxNum int) string {
	width := max(len(fmt.Sprint(maxNum)), 2)
	return fmt.Sprintf("%*d", width, num)
}
