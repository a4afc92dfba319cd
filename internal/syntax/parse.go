package syntax

import (
	"sort"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gtext "github.com/yuin/goldmark/text"

	"github.com/aidanlsb/sld/internal/wikilink"
)

// Parse builds a tree for text. Block structure comes from goldmark; inside
// paragraphs and headings every wikilink is emitted as a run of sibling link
// tokens. Links inside code blocks and inline code are not tokenized.
func Parse(text string) *Tree {
	src := []byte(text)
	doc := goldmark.New().Parser().Parse(gtext.NewReader(src))

	p := &treeParser{src: src, text: text, b: NewBuilder()}
	p.b.StartNode(NameDocument, 0)
	for c := doc.FirstChild(); c != nil; c = c.NextSibling() {
		p.block(c)
	}
	p.b.FinishNodeAt(len(text))

	return &Tree{Root: p.b.Finish(), Text: text}
}

type treeParser struct {
	src  []byte
	text string
	b    *Builder
}

type span struct {
	from, to int
}

func (s span) valid() bool { return s.from >= 0 && s.to >= s.from }

func (p *treeParser) block(n ast.Node) {
	if n.Type() != ast.TypeBlock {
		return
	}
	sp := p.blockSpan(n)
	if !sp.valid() {
		return
	}

	switch node := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		p.leaf(NameParagraph, n, sp)
	case *ast.Heading:
		p.leaf(HeadingName(node.Level), n, sp)
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		p.b.Token(NameCodeBlock, sp.from, sp.to)
	case *ast.HTMLBlock:
		p.b.Token(NameHTMLBlock, sp.from, sp.to)
	case *ast.List:
		p.container(NameList, n, sp)
	case *ast.ListItem:
		p.container(NameListItem, n, sp)
	case *ast.Blockquote:
		p.container(NameQuote, n, sp)
	default:
		if n.HasChildren() && n.FirstChild().Type() == ast.TypeBlock {
			p.container(NameBlock, n, sp)
			return
		}
		p.b.Token(NameBlock, sp.from, sp.to)
	}
}

func (p *treeParser) container(name string, n ast.Node, sp span) {
	p.b.StartNode(name, sp.from)
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		p.block(c)
	}
	p.b.FinishNodeAt(sp.to)
}

// blockSpan returns the byte range of a block: its own lines for leaf blocks,
// the union of its children for containers.
func (p *treeParser) blockSpan(n ast.Node) span {
	if lines := n.Lines(); lines != nil && lines.Len() > 0 {
		return span{lines.At(0).Start, lines.At(lines.Len() - 1).Stop}
	}
	out := span{-1, -1}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Type() != ast.TypeBlock {
			continue
		}
		cs := p.blockSpan(c)
		if !cs.valid() {
			continue
		}
		if out.from < 0 || cs.from < out.from {
			out.from = cs.from
		}
		if cs.to > out.to {
			out.to = cs.to
		}
	}
	return out
}

type inlineToken struct {
	name     string
	from, to int
}

func (p *treeParser) leaf(name string, n ast.Node, sp span) {
	code := p.codeSpans(n)

	var toks []inlineToken
	for _, c := range code {
		toks = append(toks, inlineToken{NameInlineCode, c.from, c.to})
	}

	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		line := p.text[seg.Start:seg.Stop]
		for _, lt := range wikilink.FindAll(line) {
			abs := span{seg.Start + lt.Start, seg.Start + lt.End}
			if overlapsAny(abs, code) {
				continue
			}
			toks = append(toks, linkTokens(seg.Start, lt)...)
		}
	}

	sort.SliceStable(toks, func(i, j int) bool { return toks[i].from < toks[j].from })

	p.b.StartNode(name, sp.from)
	for _, t := range toks {
		p.b.Token(t.name, t.from, t.to)
	}
	p.b.FinishNodeAt(sp.to)
}

func linkTokens(base int, lt wikilink.Token) []inlineToken {
	open := inlineToken{NameLinkStart, base + lt.Start, base + lt.Start + len(wikilink.Open)}
	end := inlineToken{NameLinkEnd, base + lt.End - len(wikilink.Close), base + lt.End}
	if !lt.HasAlias() {
		return []inlineToken{open, {NameInternalLink, base + lt.TargetStart, base + lt.TargetEnd}, end}
	}
	out := []inlineToken{
		open,
		{NameLinkHasAlias, base + lt.TargetStart, base + lt.TargetEnd},
		{NameLinkAliasPipe, base + lt.PipeAt, base + lt.PipeAt + 1},
	}
	if lt.AliasEnd > lt.AliasStart {
		out = append(out, inlineToken{NameLinkAlias, base + lt.AliasStart, base + lt.AliasEnd})
	}
	return append(out, end)
}

// codeSpans returns the ranges of inline code inside a leaf block, including
// the surrounding backticks.
func (p *treeParser) codeSpans(n ast.Node) []span {
	var out []span
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		cs, ok := node.(*ast.CodeSpan)
		if !ok {
			return ast.WalkContinue, nil
		}
		sp := span{-1, -1}
		for c := cs.FirstChild(); c != nil; c = c.NextSibling() {
			t, ok := c.(*ast.Text)
			if !ok {
				continue
			}
			if sp.from < 0 || t.Segment.Start < sp.from {
				sp.from = t.Segment.Start
			}
			if t.Segment.Stop > sp.to {
				sp.to = t.Segment.Stop
			}
		}
		if sp.valid() {
			for sp.from > 0 && p.src[sp.from-1] == '`' {
				sp.from--
			}
			for sp.to < len(p.src) && p.src[sp.to] == '`' {
				sp.to++
			}
			out = append(out, sp)
		}
		return ast.WalkSkipChildren, nil
	})
	return out
}

func overlapsAny(s span, list []span) bool {
	for _, o := range list {
		if s.from < o.to && o.from < s.to {
			return true
		}
	}
	return false
}
