// Package linkmatch recognizes aliased links in a syntax tree and walks a
// document reporting each one.
package linkmatch

import (
	"strings"

	"github.com/aidanlsb/sld/internal/syntax"
	"github.com/aidanlsb/sld/internal/wikilink"
)

// role identifies one node of the link sequence by two name fragments.
type role struct {
	family string
	part   string
}

// sequence is the sibling run produced for [[target|alias]].
var sequence = [...]role{
	{"formatting-link", "formatting-link-start"},
	{"hmd-internal-link", "link-has-alias"},
	{"hmd-internal-link", "link-alias-pipe"},
	{"hmd-internal-link", "link-alias"},
	{"formatting-link", "formatting-link-end"},
}

func (r role) matches(name string) bool {
	var family, part bool
	for _, frag := range strings.Split(name, syntax.NameSeparator) {
		switch frag {
		case r.family:
			family = true
		case r.part:
			part = true
		}
	}
	return family && part
}

// Match tests whether the node under c starts an aliased link. On success it
// returns a new cursor on the end marker; c itself is never moved.
func Match(c syntax.Cursor) syntax.Cursor {
	probe := c.Clone()
	for i, r := range sequence {
		if i > 0 && !probe.NextSibling() {
			return nil
		}
		if !r.matches(probe.Name()) {
			return nil
		}
	}
	return probe
}

// Source is the document text a tree was parsed from.
type Source interface {
	Slice(from, to int) string
}

// String adapts a plain string to Source.
type String string

func (s String) Slice(from, to int) string { return string(s)[from:to] }

// Func receives one matched link. [from, to) spans the whole literal.
type Func func(from, to int, target, alias string)

// Walk visits the node under c, its descendants and its following siblings
// in pre-order, calling fn for every aliased link. The document is only read.
func Walk(c syntax.Cursor, doc Source, fn Func) {
	walk(c.Clone(), doc, fn)
}

func walk(c syntax.Cursor, doc Source, fn Func) {
	for {
		if end := Match(c); end != nil {
			from, to := c.From(), end.To()
			target, alias := wikilink.Parse(doc.Slice(from, to))
			fn(from, to, target, alias)
		}
		if c.FirstChild() {
			walk(c, doc, fn)
			c.Parent()
		}
		if !c.NextSibling() {
			return
		}
	}
}
