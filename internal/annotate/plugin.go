package annotate

import (
	"github.com/aidanlsb/sld/internal/editor"
	"github.com/aidanlsb/sld/internal/rules"
)

// Plugin keeps an annotation set current for one view. It rebuilds when the
// document changes, the viewport moves, or the rule set is replaced.
type Plugin struct {
	tmpl  Template
	set   *Set
	rules *rules.Set
	view  *editor.View

	// OnRebuild, when set, is called with every new set.
	OnRebuild func(*Set)

	builds int
}

func NewPlugin(tmpl Template) *Plugin {
	return &Plugin{tmpl: tmpl, set: Empty}
}

// Attach is the editor.PluginSpec for p.
func (p *Plugin) Attach(v *editor.View) editor.Plugin {
	p.view = v
	p.rebuild(v.State())
	return p
}

func (p *Plugin) Update(u *editor.Update) {
	if u.DocChanged || u.ViewportChanged || u.State.Rules != p.rules {
		p.rebuild(u.State)
	}
}

func (p *Plugin) Destroy() {
	p.set = Empty
	p.view = nil
}

// Annotations returns the current set.
func (p *Plugin) Annotations() *Set { return p.set }

// Builds counts rebuilds since Attach.
func (p *Plugin) Builds() int { return p.builds }

func (p *Plugin) rebuild(st *editor.State) {
	p.rules = st.Rules
	p.set = Build(st.Tree, st.Doc, st.Rules, p.tmpl)
	p.builds++
	if p.view != nil {
		p.view.Debugf("annotate: rebuilt %d annotations", p.set.Len())
	}
	if p.OnRebuild != nil {
		p.OnRebuild(p.set)
	}
}
