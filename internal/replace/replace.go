// Package replace swaps the trigger prefix of a link alias for its rule's
// emoji once the caret completes or leaves the link.
//
// The plugin is either idle or has mutations scheduled. Detection runs inside
// the update notification; the edit itself is deferred to a later turn
// because a view cannot be dispatched to while it is notifying.
package replace

import (
	"strings"

	"github.com/aidanlsb/sld/internal/editor"
	"github.com/aidanlsb/sld/internal/rules"
	"github.com/aidanlsb/sld/internal/wikilink"
)

// UserEvent tags the replacement transaction. It is an input sub-event so
// consumers treat it as user input, and the completion detector ignores it.
const UserEvent = "input.alias"

// Scheduler runs a function on a later turn.
type Scheduler interface {
	Defer(fn func())
}

// Dispatcher applies transactions to the document.
type Dispatcher interface {
	Dispatch(trs ...editor.Transaction)
}

// Candidate is one replacement worked out from a link.
type Candidate struct {
	AliasText    string
	AliasFrom    int
	PrefixLength int
	Prefix       string
	Replacement  string
}

// Trigger names the detector that produced a candidate.
type Trigger string

const (
	TriggerCompletion Trigger = "completion"
	TriggerExit       Trigger = "exit"
)

// Plugin watches updates and schedules alias replacements.
type Plugin struct {
	view       *editor.View
	scheduler  Scheduler
	dispatcher Dispatcher
	pending    int
	destroyed  bool
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithScheduler defers work somewhere other than the view's queue.
func WithScheduler(s Scheduler) Option {
	return func(p *Plugin) { p.scheduler = s }
}

// WithDispatcher sends replacements somewhere other than the view, for
// example to a remote editor that echoes the change back.
func WithDispatcher(d Dispatcher) Option {
	return func(p *Plugin) { p.dispatcher = d }
}

func New(opts ...Option) *Plugin {
	p := &Plugin{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Attach is the editor.PluginSpec for p.
func (p *Plugin) Attach(v *editor.View) editor.Plugin {
	p.view = v
	if p.scheduler == nil {
		p.scheduler = v
	}
	if p.dispatcher == nil {
		p.dispatcher = v
	}
	return p
}

// Pending returns the number of scheduled mutations that have not run yet.
// Zero means idle.
func (p *Plugin) Pending() int { return p.pending }

func (p *Plugin) Destroy() { p.destroyed = true }

func (p *Plugin) Update(u *editor.Update) {
	if from, link, ok := completedLink(u); ok {
		p.process(u.State, TriggerCompletion, from, link)
		return
	}
	if from, link, ok := exitedLink(u); ok {
		p.process(u.State, TriggerExit, from, link)
	}
}

// completedLink fires when typed input leaves a single caret right after a
// closing pair. It returns the link text from the nearest opener to the caret.
func completedLink(u *editor.Update) (int, string, bool) {
	if !u.DocChanged || !u.IsUserEvent(editor.EventInput) || u.IsUserEvent(UserEvent) {
		return 0, "", false
	}
	sel := u.State.Selection
	if !sel.IsSingleCaret() {
		return 0, "", false
	}
	pos := sel.MainRange().Head
	doc := u.State.Doc.String()
	if pos < len(wikilink.Close) || doc[pos-len(wikilink.Close):pos] != wikilink.Close {
		return 0, "", false
	}

	opener := strings.LastIndex(doc[:pos], wikilink.Open)
	if opener < 0 {
		return 0, "", false
	}
	link := doc[opener:pos]
	if !strings.HasSuffix(link, wikilink.Close) {
		return 0, "", false
	}
	if strings.Contains(link[1:len(link)-1], wikilink.Open) {
		return 0, "", false
	}
	return opener, link, true
}

// exitedLink fires when a single caret moves out of the link that enclosed
// its previous position. The previous position is mapped through the
// update's changes before the link is looked up in the new document.
func exitedLink(u *editor.Update) (int, string, bool) {
	prev, cur := u.StartState.Selection, u.State.Selection
	if !prev.IsSingleCaret() || !cur.IsSingleCaret() {
		return 0, "", false
	}
	oldPos, newPos := prev.MainRange().Head, cur.MainRange().Head
	if oldPos == newPos {
		return 0, "", false
	}

	doc := u.State.Doc.String()
	from, to, ok := enclosingLink(doc, u.MapPos(oldPos, -1))
	if !ok {
		return 0, "", false
	}
	if newPos > from && newPos < to {
		return 0, "", false
	}
	return from, doc[from:to], true
}

// enclosingLink finds the link around pos: the nearest opener before pos
// with no closer between them, and the first closer after it.
func enclosingLink(doc string, pos int) (int, int, bool) {
	if pos < 0 || pos > len(doc) {
		return 0, 0, false
	}
	opener := strings.LastIndex(doc[:pos], wikilink.Open)
	if opener < 0 || strings.Contains(doc[opener:pos], wikilink.Close) {
		return 0, 0, false
	}
	search := max(pos-1, opener+len(wikilink.Open))
	if search > len(doc) {
		return 0, 0, false
	}
	closer := strings.Index(doc[search:], wikilink.Close)
	if closer < 0 {
		return 0, 0, false
	}
	return opener, search + closer + len(wikilink.Close), true
}

// Resolve works out the replacement for a link starting at linkFrom. It
// reports false when the link has no alias, no rule prefix starts the alias,
// the rule has no emoji, or the alias already starts with the emoji.
func Resolve(rs *rules.Set, linkFrom int, link string) (Candidate, bool) {
	pipe := strings.IndexByte(link, wikilink.Pipe)
	if pipe < 0 || !strings.HasSuffix(link, wikilink.Close) || pipe+1 > len(link)-len(wikilink.Close) {
		return Candidate{}, false
	}
	alias := link[pipe+1 : len(link)-len(wikilink.Close)]
	if alias == "" {
		return Candidate{}, false
	}
	rule, ok := rs.ByPrefix(alias)
	if !ok || rule.Emoji == "" {
		return Candidate{}, false
	}
	if strings.HasPrefix(alias, rule.Emoji) {
		return Candidate{}, false
	}
	return Candidate{
		AliasText:    alias,
		AliasFrom:    linkFrom + pipe + 1,
		PrefixLength: len(rule.Prefix),
		Prefix:       rule.Prefix,
		Replacement:  rule.Emoji,
	}, true
}

func (p *Plugin) process(st *editor.State, trigger Trigger, linkFrom int, link string) {
	c, ok := Resolve(st.Rules, linkFrom, link)
	if !ok {
		return
	}
	p.pending++
	p.debugf("replace: %s scheduled %q -> %q at %d", trigger, c.Prefix, c.Replacement, c.AliasFrom)
	p.scheduler.Defer(func() { p.apply(c) })
}

// apply runs on a later turn. The candidate is dropped if the prefix is no
// longer where it was found.
func (p *Plugin) apply(c Candidate) {
	p.pending--
	if p.destroyed || p.view == nil {
		return
	}
	st := p.view.State()
	if st.Doc.Slice(c.AliasFrom, c.AliasFrom+c.PrefixLength) != c.Prefix ||
		strings.HasPrefix(st.Doc.Slice(c.AliasFrom, st.Doc.Len()), c.Replacement) {
		p.debugf("replace: dropped stale candidate at %d", c.AliasFrom)
		return
	}
	p.dispatcher.Dispatch(Transaction(st, c))
}

// Transaction builds the edit for c against st: one replaced range, the
// current selection mapped through it, tagged as alias input.
func Transaction(st *editor.State, c Candidate) editor.Transaction {
	changes := editor.ChangeSet{{
		From:   c.AliasFrom,
		To:     c.AliasFrom + c.PrefixLength,
		Insert: c.Replacement,
	}}
	sel := st.Selection.Map(changes)
	return editor.Transaction{
		Changes:   changes,
		Selection: &sel,
		UserEvent: UserEvent,
	}
}

func (p *Plugin) debugf(format string, args ...any) {
	if p.view != nil {
		p.view.Debugf(format, args...)
	}
}
