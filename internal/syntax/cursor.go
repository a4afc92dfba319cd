package syntax

// Cursor walks a tree. Movement methods report whether the cursor moved; on
// false the cursor stays where it was. Clone returns an independent cursor at
// the same node.
type Cursor interface {
	Name() string
	From() int
	To() int
	FirstChild() bool
	NextSibling() bool
	Parent() bool
	Clone() Cursor
}

// TreeCursor is the Cursor over a *Tree.
type TreeCursor struct {
	node *Node
}

// NewCursor returns a cursor at n.
func NewCursor(n *Node) *TreeCursor {
	return &TreeCursor{node: n}
}

// Node returns the node under the cursor.
func (c *TreeCursor) Node() *Node {
	return c.current()
}

func (c *TreeCursor) current() *Node {
	if c.node == nil {
		panic("syntax: cursor has no node")
	}
	return c.node
}

func (c *TreeCursor) Name() string { return c.current().Name }
func (c *TreeCursor) From() int    { return c.current().From }
func (c *TreeCursor) To() int      { return c.current().To }

func (c *TreeCursor) FirstChild() bool {
	if child := c.current().FirstChild(); child != nil {
		c.node = child
		return true
	}
	return false
}

func (c *TreeCursor) NextSibling() bool {
	if next := c.current().NextSibling(); next != nil {
		c.node = next
		return true
	}
	return false
}

func (c *TreeCursor) Parent() bool {
	if p := c.current().Parent; p != nil {
		c.node = p
		return true
	}
	return false
}

func (c *TreeCursor) Clone() Cursor {
	return &TreeCursor{node: c.node}
}
