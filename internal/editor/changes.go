package editor

import (
	"fmt"
	"sort"
	"strings"
)

// Change replaces [From, To) of the start document with Insert.
type Change struct {
	From   int    `json:"from"`
	To     int    `json:"to"`
	Insert string `json:"insert"`
}

// ChangeSet is a list of changes that all address the start document. They
// are kept sorted and must not overlap.
type ChangeSet []Change

// NewChangeSet sorts changes and rejects overlaps or inverted ranges.
func NewChangeSet(changes ...Change) (ChangeSet, error) {
	cs := make(ChangeSet, len(changes))
	copy(cs, changes)
	sort.SliceStable(cs, func(i, j int) bool { return cs[i].From < cs[j].From })
	for i, c := range cs {
		if c.From < 0 || c.To < c.From {
			return nil, fmt.Errorf("invalid change range [%d, %d)", c.From, c.To)
		}
		if i > 0 && cs[i-1].To > c.From {
			return nil, fmt.Errorf("overlapping changes at %d", c.From)
		}
	}
	return cs, nil
}

// Empty reports whether the set leaves the document untouched.
func (cs ChangeSet) Empty() bool {
	for _, c := range cs {
		if c.From != c.To || c.Insert != "" {
			return false
		}
	}
	return true
}

// Apply returns doc with every change applied.
func (cs ChangeSet) Apply(doc string) string {
	var sb strings.Builder
	pos := 0
	for _, c := range cs {
		from, to := clamp(c.From, len(doc)), clamp(c.To, len(doc))
		if from < pos {
			from = pos
		}
		sb.WriteString(doc[pos:from])
		sb.WriteString(c.Insert)
		pos = max(to, from)
	}
	sb.WriteString(doc[pos:])
	return sb.String()
}

// MapPos maps a start-document position into the changed document. assoc
// picks the side when pos sits exactly at an insertion point: negative stays
// before the inserted text, otherwise the position moves after it. Positions
// inside a replaced range collapse to its edge.
func (cs ChangeSet) MapPos(pos, assoc int) int {
	delta := 0
	for _, c := range cs {
		if c.From > pos {
			break
		}
		grow := len(c.Insert) - (c.To - c.From)
		switch {
		case pos > c.To:
			delta += grow
		case pos == c.From && c.From == c.To:
			if assoc < 0 {
				return pos + delta
			}
			delta += grow
		case pos == c.From && assoc < 0:
			return pos + delta
		default:
			// inside or at the end of a replaced range
			return c.From + delta + len(c.Insert)
		}
	}
	return pos + delta
}
