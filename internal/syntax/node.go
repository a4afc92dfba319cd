// Package syntax holds the parse tree the link matcher runs on: nodes with
// compound type names, a stack-based builder, a cursor, and a markdown parser
// that produces HyperMD-style link tokens.
package syntax

import (
	"fmt"
	"strings"
)

// NameSeparator joins the fragments of a compound node name.
const NameSeparator = "_"

// Node is one node of the tree. Name is a compound type name such as
// "formatting-link_formatting-link-start"; [From, To) is a byte range into
// the document.
type Node struct {
	Name     string  `json:"name"`
	From     int     `json:"from"`
	To       int     `json:"to"`
	Children []*Node `json:"children,omitempty"`
	Parent   *Node   `json:"-"`

	index int // position in Parent.Children
}

// Fragments splits the node name into its type tokens.
func (n *Node) Fragments() []string {
	return strings.Split(n.Name, NameSeparator)
}

// Text returns the slice of source covered by the node.
func (n *Node) Text(source string) string {
	if n.From < 0 || n.To > len(source) || n.From > n.To {
		return "<out of bounds>"
	}
	return source[n.From:n.To]
}

// FirstChild returns the first child or nil.
func (n *Node) FirstChild() *Node {
	if len(n.Children) > 0 {
		return n.Children[0]
	}
	return nil
}

// NextSibling returns the following sibling or nil.
func (n *Node) NextSibling() *Node {
	if n.Parent == nil || n.index+1 >= len(n.Parent.Children) {
		return nil
	}
	return n.Parent.Children[n.index+1]
}

// Tree is a parsed snapshot of a document.
type Tree struct {
	Root *Node
	Text string
}

// Cursor returns a cursor positioned at the root.
func (t *Tree) Cursor() *TreeCursor {
	return &TreeCursor{node: t.Root}
}

// String pretty-prints the tree for debugging.
func (t *Tree) String() string {
	var sb strings.Builder
	if t.Root != nil {
		printNode(&sb, t.Root, t.Text, 0)
	}
	return sb.String()
}

func printNode(sb *strings.Builder, n *Node, source string, depth int) {
	fmt.Fprintf(sb, "%s%s [%d..%d]", strings.Repeat("  ", depth), n.Name, n.From, n.To)
	if len(n.Children) == 0 {
		txt := n.Text(source)
		if len(txt) > 30 {
			txt = txt[:27] + "..."
		}
		fmt.Fprintf(sb, " %q", txt)
	}
	sb.WriteString("\n")
	for _, c := range n.Children {
		printNode(sb, c, source, depth+1)
	}
}
