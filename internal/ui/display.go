package ui

import (
	"os"

	"github.com/charmbracelet/x/term"
)

// DefaultTermWidth is used when the output is not a terminal or its size
// cannot be read.
const DefaultTermWidth = 120

// DisplayContext describes where tables and rendered notes are written.
type DisplayContext struct {
	TermWidth int
	IsTTY     bool
}

// NewDisplayContext describes stdout.
func NewDisplayContext() *DisplayContext {
	return NewDisplayContextFor(os.Stdout)
}

// NewDisplayContextFor describes f.
func NewDisplayContextFor(f *os.File) *DisplayContext {
	d := &DisplayContext{TermWidth: DefaultTermWidth}
	if f == nil {
		return d
	}
	d.IsTTY = term.IsTerminal(f.Fd())
	if !d.IsTTY {
		return d
	}
	if w, _, err := term.GetSize(f.Fd()); err == nil && w > 0 {
		d.TermWidth = w
	}
	return d
}

// NewDisplayContextWithWidth is a terminal of the given width, for tests.
func NewDisplayContextWithWidth(width int) *DisplayContext {
	return &DisplayContext{TermWidth: width, IsTTY: true}
}

// AvailableWidth is the width left after used cells, never negative.
func (d *DisplayContext) AvailableWidth(used int) int {
	return max(d.TermWidth-used, 0)
}
