// Package editor is a small single-threaded editor host: immutable document
// states, transactions that move between them, and a view that notifies
// plugins of every update and runs deferred work on later turns.
package editor

// Text is an immutable document snapshot. Offsets are byte offsets.
type Text struct {
	s string
}

func NewText(s string) Text { return Text{s: s} }

func (t Text) Len() int       { return len(t.s) }
func (t Text) String() string { return t.s }

// Slice returns the text in [from, to), clamped to the document.
func (t Text) Slice(from, to int) string {
	from, to = clamp(from, len(t.s)), clamp(to, len(t.s))
	if from >= to {
		return ""
	}
	return t.s[from:to]
}

func clamp(pos, n int) int {
	if pos < 0 {
		return 0
	}
	if pos > n {
		return n
	}
	return pos
}
