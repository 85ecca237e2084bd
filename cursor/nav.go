package cursor

import (
	"github.com/synless-editor/synless/lang"
	"github.com/synless-editor/synless/store"
	"github.com/synless-editor/synless/synerr"
)

// isLeaf reports whether id has no navigable children: a Texty node,
// an empty Listy node, a Fixed node with zero slots, or a Hole.
func isLeaf(s *store.Store, id store.NodeID) bool {
	v, ok := s.Get(id)
	if !ok {
		return true
	}
	if v.IsHole {
		return true
	}
	children, ok := s.Children(id)
	if !ok {
		return true // Texty
	}
	return len(children) == 0
}

func siblingsOf(s *store.Store, node store.NodeID) (siblings []store.NodeID, index int, ok bool) {
	pl, hasParent := s.ParentOf(node)
	if !hasParent {
		return nil, 0, false
	}
	siblings, ok = s.Children(pl.Parent)
	if !ok {
		return nil, 0, false
	}
	return siblings, pl.Slot, true
}

// Next moves to the next sibling of a TreeOn cursor, or onto the
// element at a TreeBefore cursor's index.
func Next(s *store.Store, c Cursor) (Cursor, error) {
	switch c.Kind {
	case TreeOn:
		siblings, idx, ok := siblingsOf(s, c.Node)
		if !ok || idx+1 >= len(siblings) {
			return Cursor{}, synerr.Wrapf(synerr.Navigation, "no next sibling")
		}
		return On(siblings[idx+1]), nil
	case TreeBefore:
		children, ok := s.Children(c.Parent)
		if !ok || c.Index >= len(children) {
			return Cursor{}, synerr.Wrapf(synerr.Navigation, "no element at cursor position")
		}
		return On(children[c.Index]), nil
	default:
		return Cursor{}, synerr.Wrapf(synerr.Navigation, "next is not legal in text mode")
	}
}

// Prev moves to the previous sibling of a TreeOn cursor, or -- for a
// TreeBefore cursor at index 0 -- up onto the list node itself.
func Prev(s *store.Store, c Cursor) (Cursor, error) {
	switch c.Kind {
	case TreeOn:
		siblings, idx, ok := siblingsOf(s, c.Node)
		if !ok || idx == 0 {
			return Cursor{}, synerr.Wrapf(synerr.Navigation, "no previous sibling")
		}
		return On(siblings[idx-1]), nil
	case TreeBefore:
		if c.Index > 0 {
			children, ok := s.Children(c.Parent)
			if !ok || c.Index-1 >= len(children) {
				return Cursor{}, synerr.Wrapf(synerr.Navigation, "no element at cursor position")
			}
			return On(children[c.Index-1]), nil
		}
		return On(c.Parent), nil
	default:
		return Cursor{}, synerr.Wrapf(synerr.Navigation, "prev is not legal in text mode")
	}
}

// First moves to the first sibling sharing the cursor's current parent.
func First(s *store.Store, c Cursor) (Cursor, error) {
	switch c.Kind {
	case TreeOn:
		siblings, _, ok := siblingsOf(s, c.Node)
		if !ok || len(siblings) == 0 {
			return Cursor{}, synerr.Wrapf(synerr.Navigation, "no siblings")
		}
		return On(siblings[0]), nil
	case TreeBefore:
		return Before(c.Parent, 0), nil
	default:
		return Cursor{}, synerr.Wrapf(synerr.Navigation, "first is not legal in text mode")
	}
}

// Last moves to the last sibling sharing the cursor's current parent.
func Last(s *store.Store, c Cursor) (Cursor, error) {
	switch c.Kind {
	case TreeOn:
		siblings, _, ok := siblingsOf(s, c.Node)
		if !ok || len(siblings) == 0 {
			return Cursor{}, synerr.Wrapf(synerr.Navigation, "no siblings")
		}
		return On(siblings[len(siblings)-1]), nil
	case TreeBefore:
		return Before(c.Parent, 0), nil
	default:
		return Cursor{}, synerr.Wrapf(synerr.Navigation, "last is not legal in text mode")
	}
}

// Parent moves up onto the cursor's containing node.
func Parent(s *store.Store, c Cursor) (Cursor, error) {
	switch c.Kind {
	case TreeOn:
		pl, has := s.ParentOf(c.Node)
		if !has {
			return Cursor{}, synerr.Wrapf(synerr.Navigation, "already at the root")
		}
		return On(pl.Parent), nil
	case TreeBefore:
		return On(c.Parent), nil
	default:
		return Cursor{}, synerr.Wrapf(synerr.Navigation, "parent is not legal in text mode")
	}
}

// FirstChild descends into node's first child, or a TreeBefore
// position if node is an empty Listy node.
func FirstChild(s *store.Store, node store.NodeID) (Cursor, error) {
	v, ok := s.Get(node)
	if !ok {
		return Cursor{}, synerr.Wrapf(synerr.Navigation, "node does not resolve")
	}
	if v.IsHole {
		return Cursor{}, synerr.Wrapf(synerr.Navigation, "cannot navigate into a hole")
	}
	switch v.ArityKind {
	case lang.Fixed:
		children, _ := s.Children(node)
		if len(children) == 0 {
			return Cursor{}, synerr.Wrapf(synerr.Navigation, "no children")
		}
		return On(children[0]), nil
	case lang.Listy:
		children, _ := s.Children(node)
		if len(children) == 0 {
			return Before(node, 0), nil
		}
		return On(children[0]), nil
	default: // Texty
		return Cursor{}, synerr.Wrapf(synerr.Navigation, "texty nodes have no children; use enter_text")
	}
}

// LastChild descends into node's last child, or a TreeBefore position
// if node is an empty Listy node.
func LastChild(s *store.Store, node store.NodeID) (Cursor, error) {
	v, ok := s.Get(node)
	if !ok {
		return Cursor{}, synerr.Wrapf(synerr.Navigation, "node does not resolve")
	}
	if v.IsHole {
		return Cursor{}, synerr.Wrapf(synerr.Navigation, "cannot navigate into a hole")
	}
	switch v.ArityKind {
	case lang.Fixed:
		children, _ := s.Children(node)
		if len(children) == 0 {
			return Cursor{}, synerr.Wrapf(synerr.Navigation, "no children")
		}
		return On(children[len(children)-1]), nil
	case lang.Listy:
		children, _ := s.Children(node)
		if len(children) == 0 {
			return Before(node, 0), nil
		}
		return On(children[len(children)-1]), nil
	default:
		return Cursor{}, synerr.Wrapf(synerr.Navigation, "texty nodes have no children; use enter_text")
	}
}

// flatten returns every node reachable from root in pre-order.
func flatten(s *store.Store, root store.NodeID) []store.NodeID {
	var out []store.NodeID
	s.ForEachDescendant(root, func(id store.NodeID) bool {
		out = append(out, id)
		return true
	})
	return out
}

func anchorNode(c Cursor) store.NodeID {
	if c.Kind == TreeBefore {
		return c.Parent
	}
	return c.Node
}

// NextLeaf moves to the next leaf in root's pre-order traversal after
// the cursor's current position.
func NextLeaf(s *store.Store, root store.NodeID, c Cursor) (Cursor, error) {
	order := flatten(s, root)
	anchor := anchorNode(c)
	pos := indexOf(order, anchor)
	for i := pos + 1; i >= 0 && i < len(order); i++ {
		if isLeaf(s, order[i]) {
			return On(order[i]), nil
		}
	}
	return Cursor{}, synerr.Wrapf(synerr.Navigation, "no next leaf")
}

// PrevLeaf moves to the previous leaf in root's pre-order traversal
// before the cursor's current position.
func PrevLeaf(s *store.Store, root store.NodeID, c Cursor) (Cursor, error) {
	order := flatten(s, root)
	anchor := anchorNode(c)
	pos := indexOf(order, anchor)
	for i := pos - 1; i >= 0; i-- {
		if isLeaf(s, order[i]) {
			return On(order[i]), nil
		}
	}
	return Cursor{}, synerr.Wrapf(synerr.Navigation, "no previous leaf")
}

func indexOf(order []store.NodeID, id store.NodeID) int {
	for i, n := range order {
		if n == id {
			return i
		}
	}
	return -1
}

// EnterText moves from TreeOn(node) where node is Texty to
// TextAt(node, len(text)).
func EnterText(s *store.Store, c Cursor) (Cursor, error) {
	if c.Kind != TreeOn {
		return Cursor{}, synerr.Wrapf(synerr.Navigation, "enter_text requires a tree cursor")
	}
	text, ok := s.Text(c.Node)
	if !ok {
		return Cursor{}, synerr.Wrapf(synerr.Navigation, "node is not texty")
	}
	return InText(c.Node, len([]rune(text))), nil
}

// ExitText moves from TextAt(node, _) back to TreeOn(node).
func ExitText(c Cursor) (Cursor, error) {
	if c.Kind != TextAt {
		return Cursor{}, synerr.Wrapf(synerr.Navigation, "exit_text requires a text cursor")
	}
	return On(c.Node), nil
}

// TextLeft moves the text cursor one character left.
func TextLeft(s *store.Store, c Cursor) (Cursor, error) {
	if c.Kind != TextAt {
		return Cursor{}, synerr.Wrapf(synerr.Navigation, "text_left requires a text cursor")
	}
	if c.CharIndex == 0 {
		return Cursor{}, synerr.Wrapf(synerr.Navigation, "already at start of text")
	}
	return InText(c.Node, c.CharIndex-1), nil
}

// TextRight moves the text cursor one character right.
func TextRight(s *store.Store, c Cursor) (Cursor, error) {
	if c.Kind != TextAt {
		return Cursor{}, synerr.Wrapf(synerr.Navigation, "text_right requires a text cursor")
	}
	text, ok := s.Text(c.Node)
	if !ok {
		return Cursor{}, synerr.Wrapf(synerr.Navigation, "node is not texty")
	}
	if c.CharIndex >= len([]rune(text)) {
		return Cursor{}, synerr.Wrapf(synerr.Navigation, "already at end of text")
	}
	return InText(c.Node, c.CharIndex+1), nil
}
