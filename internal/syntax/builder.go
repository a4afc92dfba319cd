package syntax

// Builder constructs a tree from nested StartNode/FinishNode calls and leaf
// tokens. Children must be added in document order.
type Builder struct {
	stack []*partialNode
	roots []*Node
}

type partialNode struct {
	name     string
	from     int
	children []*Node
}

func NewBuilder() *Builder {
	return &Builder{
		stack: make([]*partialNode, 0, 16),
		roots: make([]*Node, 0, 1),
	}
}

// StartNode opens an internal node.
func (b *Builder) StartNode(name string, from int) {
	b.stack = append(b.stack, &partialNode{
		name:     name,
		from:     from,
		children: make([]*Node, 0, 4),
	})
}

// Token adds a leaf node.
func (b *Builder) Token(name string, from, to int) {
	b.addNode(&Node{Name: name, From: from, To: to})
}

// FinishNode closes the open node, ending it at its last child.
func (b *Builder) FinishNode() {
	b.finish(-1)
}

// FinishNodeAt closes the open node with an explicit end offset.
func (b *Builder) FinishNodeAt(to int) {
	b.finish(to)
}

func (b *Builder) finish(to int) {
	if len(b.stack) == 0 {
		panic("syntax builder: FinishNode called with empty stack")
	}

	idx := len(b.stack) - 1
	partial := b.stack[idx]
	b.stack = b.stack[:idx]

	if to < 0 {
		to = partial.from
		if len(partial.children) > 0 {
			to = partial.children[len(partial.children)-1].To
		}
	}

	node := &Node{
		Name:     partial.name,
		From:     partial.from,
		To:       to,
		Children: partial.children,
	}
	for i, child := range node.Children {
		child.Parent = node
		child.index = i
	}
	b.addNode(node)
}

func (b *Builder) addNode(n *Node) {
	if len(b.stack) > 0 {
		parent := b.stack[len(b.stack)-1]
		if k := len(parent.children); k > 0 && parent.children[k-1].From > n.From {
			panic("syntax builder: node added out of document order")
		}
		parent.children = append(parent.children, n)
	} else {
		b.roots = append(b.roots, n)
	}
}

// Finish returns the root. Several top-level nodes are wrapped in a Document.
func (b *Builder) Finish() *Node {
	if len(b.stack) > 0 {
		panic("syntax builder: stack not empty at Finish")
	}
	if len(b.roots) == 0 {
		return nil
	}
	if len(b.roots) == 1 {
		return b.roots[0]
	}

	root := &Node{
		Name:     NameDocument,
		From:     b.roots[0].From,
		To:       b.roots[len(b.roots)-1].To,
		Children: b.roots,
	}
	for i, child := range root.Children {
		child.Parent = root
		child.index = i
	}
	return root
}
