// Package cursor is the Cursor & Navigation component:
// a tagged location within the tree, plus tree-mode and text-mode
// traversal over a store.Store. Exactly one Cursor exists per
// document.
package cursor

import "github.com/synless-editor/synless/store"

// Kind discriminates the three cursor variants.
type Kind int

const (
	// TreeOn means the cursor sits on a specific node.
	TreeOn Kind = iota
	// TreeBefore means the cursor sits before a given index of a
	// Listy node's children -- the only non-node position, needed for
	// insertion into empty lists.
	TreeBefore
	// TextAt means the cursor sits inside a Texty node's text at a
	// character offset.
	TextAt
)

// Cursor is the tagged cursor location.
type Cursor struct {
	Kind Kind

	// Node is populated for TreeOn and TextAt.
	Node store.NodeID
	// Parent and Index are populated for TreeBefore: the cursor sits
	// before Index in Parent's Listy children.
	Parent store.NodeID
	Index  int
	// CharIndex is populated for TextAt.
	CharIndex int
}

// On returns a TreeOn cursor at node.
func On(node store.NodeID) Cursor {
	return Cursor{Kind: TreeOn, Node: node}
}

// Before returns a TreeBefore cursor at the given index of parent's list.
func Before(parent store.NodeID, index int) Cursor {
	return Cursor{Kind: TreeBefore, Parent: parent, Index: index}
}

// InText returns a TextAt cursor inside node's text at charIndex.
func InText(node store.NodeID, charIndex int) Cursor {
	return Cursor{Kind: TextAt, Node: node, CharIndex: charIndex}
}

// Equal reports whether two cursors denote the same location.
func (c Cursor) Equal(other Cursor) bool {
	return c == other
}
