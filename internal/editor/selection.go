package editor

// Range is one selection range. Anchor stays put while Head moves.
type Range struct {
	Anchor int `json:"anchor"`
	Head   int `json:"head"`
}

func (r Range) From() int   { return min(r.Anchor, r.Head) }
func (r Range) To() int     { return max(r.Anchor, r.Head) }
func (r Range) Empty() bool { return r.Anchor == r.Head }

// Selection is a set of ranges with one main range.
type Selection struct {
	Ranges []Range `json:"ranges"`
	Main   int     `json:"main"`
}

// Cursor returns a selection holding a single collapsed caret.
func Cursor(pos int) Selection {
	return Selection{Ranges: []Range{{Anchor: pos, Head: pos}}}
}

// Single returns a selection holding one range.
func Single(anchor, head int) Selection {
	return Selection{Ranges: []Range{{Anchor: anchor, Head: head}}}
}

// MainRange returns the main range, or an empty range at 0 for an empty
// selection.
func (s Selection) MainRange() Range {
	if s.Main < 0 || s.Main >= len(s.Ranges) {
		return Range{}
	}
	return s.Ranges[s.Main]
}

// IsSingleCaret reports whether the selection is exactly one collapsed range.
func (s Selection) IsSingleCaret() bool {
	return len(s.Ranges) == 1 && s.Ranges[0].Empty()
}

// Equal compares two selections range by range.
func (s Selection) Equal(o Selection) bool {
	if s.Main != o.Main || len(s.Ranges) != len(o.Ranges) {
		return false
	}
	for i := range s.Ranges {
		if s.Ranges[i] != o.Ranges[i] {
			return false
		}
	}
	return true
}

// Map moves every range through a change set.
func (s Selection) Map(cs ChangeSet) Selection {
	out := Selection{Ranges: make([]Range, len(s.Ranges)), Main: s.Main}
	for i, r := range s.Ranges {
		out.Ranges[i] = Range{
			Anchor: cs.MapPos(r.Anchor, 1),
			Head:   cs.MapPos(r.Head, 1),
		}
	}
	return out
}

func (s Selection) clamp(n int) Selection {
	out := Selection{Ranges: make([]Range, len(s.Ranges)), Main: s.Main}
	for i, r := range s.Ranges {
		out.Ranges[i] = Range{Anchor: clamp(r.Anchor, n), Head: clamp(r.Head, n)}
	}
	if len(out.Ranges) == 0 {
		out = Cursor(0)
	}
	return out
}
