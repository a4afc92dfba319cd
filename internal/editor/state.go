package editor

import (
	"strings"

	"github.com/aidanlsb/sld/internal/rules"
	"github.com/aidanlsb/sld/internal/syntax"
)

// User event tags. Tags are dot-separated and matched by prefix, so
// "input.type" is also an "input" event.
const (
	EventInput  = "input"
	EventType   = "input.type"
	EventPaste  = "input.paste"
	EventDelete = "delete"
	EventSelect = "select"
)

// Transaction describes one step from a state to the next. Nil Selection
// maps the old selection through Changes; nil Rules keeps the current set.
type Transaction struct {
	Changes   ChangeSet
	Selection *Selection
	UserEvent string
	Rules     *rules.Set
}

// IsUserEvent reports whether the transaction carries event or one of its
// sub-events.
func (tr Transaction) IsUserEvent(event string) bool {
	if tr.UserEvent == "" || event == "" {
		return false
	}
	return tr.UserEvent == event || strings.HasPrefix(tr.UserEvent, event+".")
}

// DocChanged reports whether the transaction edits the document.
func (tr Transaction) DocChanged() bool { return !tr.Changes.Empty() }

// State is an immutable editor state. Tree is always the parse of Doc.
type State struct {
	Doc       Text
	Selection Selection
	Tree      *syntax.Tree
	Rules     *rules.Set
}

// NewState parses doc and returns a state with the given selection.
func NewState(doc string, sel Selection, rs *rules.Set) *State {
	return &State{
		Doc:       NewText(doc),
		Selection: sel.clamp(len(doc)),
		Tree:      syntax.Parse(doc),
		Rules:     rs,
	}
}

// Apply returns the state after tr. The tree is reparsed only when the
// document changed.
func (s *State) Apply(tr Transaction) *State {
	next := *s
	if tr.DocChanged() {
		text := tr.Changes.Apply(s.Doc.String())
		next.Doc = NewText(text)
		next.Tree = syntax.Parse(text)
	}
	if tr.Selection != nil {
		next.Selection = tr.Selection.clamp(next.Doc.Len())
	} else if tr.DocChanged() {
		next.Selection = s.Selection.Map(tr.Changes).clamp(next.Doc.Len())
	}
	if tr.Rules != nil {
		next.Rules = tr.Rules
	}
	return &next
}

// Update is what plugins see after one dispatch or viewport move.
type Update struct {
	View            *View
	StartState      *State
	State           *State
	Transactions    []Transaction
	DocChanged      bool
	SelectionSet    bool
	ViewportChanged bool
}

// MapPos maps a position in StartState's document through every
// transaction of the update.
func (u *Update) MapPos(pos, assoc int) int {
	for _, tr := range u.Transactions {
		pos = tr.Changes.MapPos(pos, assoc)
	}
	return pos
}

// IsUserEvent reports whether any transaction carries event.
func (u *Update) IsUserEvent(event string) bool {
	for _, tr := range u.Transactions {
		if tr.IsUserEvent(event) {
			return true
		}
	}
	return false
}
