// Package annotate classifies aliased links against a rule set and builds
// the position-ordered annotation set a renderer styles them with.
package annotate

import (
	"fmt"
	"sort"

	"github.com/gosimple/slug"

	"github.com/aidanlsb/sld/internal/linkmatch"
	"github.com/aidanlsb/sld/internal/rules"
	"github.com/aidanlsb/sld/internal/syntax"
)

// TypeAttr is the classification attribute every annotation carries.
const TypeAttr = "data-sld-type"

// ClassAttr holds the CSS classes derived from Template.Class.
const ClassAttr = "class"

// Annotation styles the range [From, To).
type Annotation struct {
	From       int               `json:"from"`
	To         int               `json:"to"`
	Attributes map[string]string `json:"attributes"`
}

// Type returns the classification of the annotation.
func (a Annotation) Type() string { return a.Attributes[TypeAttr] }

// Sink accepts annotations in document order.
type Sink interface {
	Add(from, to int, attrs map[string]string)
}

// Builder collects annotations for a Set. Ranges must arrive in
// non-decreasing From order; anything else is a bug in the caller and
// panics.
type Builder struct {
	items []Annotation
}

func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) Add(from, to int, attrs map[string]string) {
	if from > to {
		panic(fmt.Sprintf("annotate: inverted range [%d, %d)", from, to))
	}
	if n := len(b.items); n > 0 && b.items[n-1].From > from {
		panic(fmt.Sprintf("annotate: range at %d added after range at %d", from, b.items[n-1].From))
	}
	b.items = append(b.items, Annotation{From: from, To: to, Attributes: attrs})
}

// Finish returns the collected set. The builder must not be reused.
func (b *Builder) Finish() *Set {
	s := &Set{items: b.items}
	b.items = nil
	return s
}

// Set is an immutable, position-ordered list of annotations.
type Set struct {
	items []Annotation
}

// Empty is the set with no annotations.
var Empty = &Set{}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

func (s *Set) At(i int) Annotation { return s.items[i] }

// All returns a copy of every annotation.
func (s *Set) All() []Annotation {
	if s == nil {
		return nil
	}
	out := make([]Annotation, len(s.items))
	copy(out, s.items)
	return out
}

// Between returns the annotations that overlap [from, to).
func (s *Set) Between(from, to int) []Annotation {
	if s == nil {
		return nil
	}
	// items are sorted by From, so everything from i on starts at or after to
	i := sort.Search(len(s.items), func(i int) bool { return s.items[i].From >= to })
	var out []Annotation
	for _, a := range s.items[:i] {
		if a.To > from || (a.From == a.To && a.From >= from) {
			out = append(out, a)
		}
	}
	return out
}

// Template is the base every annotation starts from.
type Template struct {
	// Class, when set, is written to the class attribute together with a
	// per-type modifier: "sld-link sld-link--person".
	Class      string
	Attributes map[string]string
}

// DefaultTemplate is the template the CLI and LSP use.
var DefaultTemplate = Template{Class: "sld-link"}

func (t Template) attributes(linkType string) map[string]string {
	attrs := make(map[string]string, len(t.Attributes)+2)
	for k, v := range t.Attributes {
		attrs[k] = v
	}
	if t.Class != "" {
		class := t.Class
		if s := slug.Make(linkType); s != "" {
			class += " " + t.Class + "--" + s
		}
		attrs[ClassAttr] = class
	}
	attrs[TypeAttr] = linkType
	return attrs
}

// AddMatch classifies alias and, when a rule matches, adds one annotation
// for [from, to) to sink. Only the first matching rule is used. Unmatched
// aliases add nothing.
func AddMatch(rs *rules.Set, tmpl Template, alias string, from, to int, sink Sink) bool {
	rule, ok := rs.Classify(alias)
	if !ok {
		return false
	}
	sink.Add(from, to, tmpl.attributes(rule.LinkType))
	return true
}

// Build walks the whole tree and returns the annotation set for doc.
func Build(tree *syntax.Tree, doc linkmatch.Source, rs *rules.Set, tmpl Template) *Set {
	if tree == nil || tree.Root == nil {
		return Empty
	}
	b := NewBuilder()
	linkmatch.Walk(tree.Cursor(), doc, func(from, to int, _, alias string) {
		AddMatch(rs, tmpl, alias, from, to, b)
	})
	return b.Finish()
}
