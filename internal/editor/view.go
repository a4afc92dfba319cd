package editor

import "fmt"

// Plugin is a per-view component notified after every update.
type Plugin interface {
	Update(u *Update)
	Destroy()
}

// PluginSpec creates a plugin for a view. It runs once, when the view is
// constructed, and may read v.State() for its initial input.
type PluginSpec func(v *View) Plugin

// View owns the current state and its plugins. It is not safe for concurrent
// use; hosts serialize every call onto one goroutine.
type View struct {
	state    *State
	plugins  []Plugin
	viewport Range
	queue    []func()
	updating bool

	// Logf receives debug tracing from plugins. May be nil.
	Logf func(format string, args ...any)
}

// NewView creates a view on state and attaches the plugins in order.
func NewView(state *State, specs ...PluginSpec) *View {
	v := &View{
		state:    state,
		viewport: Range{Anchor: 0, Head: state.Doc.Len()},
	}
	for _, spec := range specs {
		v.plugins = append(v.plugins, spec(v))
	}
	return v
}

func (v *View) State() *State { return v.state }

// Viewport returns the visible range as [From(), To()).
func (v *View) Viewport() Range { return v.viewport }

// Dispatch applies the transactions in order and notifies every plugin once.
// Dispatching while plugins are handling an update is a programming error
// and panics; use Defer to act on a later turn.
func (v *View) Dispatch(trs ...Transaction) {
	if v.updating {
		panic("editor: Dispatch called during an update")
	}
	if len(trs) == 0 {
		return
	}

	u := &Update{View: v, StartState: v.state, Transactions: trs}
	st := v.state
	for _, tr := range trs {
		if tr.DocChanged() {
			u.DocChanged = true
		}
		if tr.Selection != nil {
			u.SelectionSet = true
		}
		st = st.Apply(tr)
	}
	if u.DocChanged {
		v.viewport = Range{
			Anchor: u.MapPos(v.viewport.Anchor, -1),
			Head:   u.MapPos(v.viewport.Head, 1),
		}
	}
	v.state = st
	u.State = st
	v.notify(u)
}

// SetViewport moves the visible range and notifies plugins if it changed.
func (v *View) SetViewport(from, to int) {
	if v.updating {
		panic("editor: SetViewport called during an update")
	}
	n := v.state.Doc.Len()
	next := Range{Anchor: clamp(from, n), Head: clamp(to, n)}
	if next == v.viewport {
		return
	}
	v.viewport = next
	v.notify(&Update{View: v, StartState: v.state, State: v.state, ViewportChanged: true})
}

func (v *View) notify(u *Update) {
	v.updating = true
	defer func() { v.updating = false }()
	for _, p := range v.plugins {
		p.Update(u)
	}
}

// Defer queues fn to run on a later turn, after the current update returns.
func (v *View) Defer(fn func()) {
	v.queue = append(v.queue, fn)
}

// Pending returns the number of queued tasks.
func (v *View) Pending() int { return len(v.queue) }

// Flush runs one turn: every task queued before the call, in order. Tasks
// queued while flushing wait for the next turn. It returns the number of
// tasks run.
func (v *View) Flush() int {
	batch := v.queue
	v.queue = nil
	for _, fn := range batch {
		fn()
	}
	return len(batch)
}

// Drain runs turns until the queue is empty. It gives up after maxTurns to
// stop plugins that keep rescheduling themselves.
func (v *View) Drain() error {
	const maxTurns = 64
	for i := 0; i < maxTurns; i++ {
		if v.Flush() == 0 {
			return nil
		}
	}
	return fmt.Errorf("editor: deferred queue still busy after %d turns", maxTurns)
}

// Destroy detaches every plugin and drops queued work.
func (v *View) Destroy() {
	for _, p := range v.plugins {
		p.Destroy()
	}
	v.plugins = nil
	v.queue = nil
}

// Debugf forwards to Logf when set.
func (v *View) Debugf(format string, args ...any) {
	if v.Logf != nil {
		v.Logf(format, args...)
	}
}
