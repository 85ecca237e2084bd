// Package editlog is the Edit Log: reversible primitive
// edits grouped into undo groups, with undo/redo semantics and
// GC of fully-discarded groups. Each primitive type below follows a
// one-struct-per-kind shape, with every kind implementing a shared
// interface, here specialized to "an edit that knows its own inverse"
// instead of "a tree node that knows how to be walked".
package editlog

import (
	"fmt"

	"github.com/synless-editor/synless/cursor"
	"github.com/synless-editor/synless/store"
)

// Host is what a primitive needs in order to apply itself: the node
// store plus cursor/bookmark access. document.Document implements
// Host; editlog does not import document to avoid a cycle, taking a
// caller-supplied Host instead of importing its callers.
type Host interface {
	Store() *store.Store
	Cursor() cursor.Cursor
	SetCursorRaw(cursor.Cursor)
	BookmarkRaw(ch rune) (store.NodeID, bool)
	SetBookmarkRaw(ch rune, id store.NodeID, present bool)
}

// Primitive is a single reversible edit.
type Primitive interface {
	// Apply performs the edit against h, returning an error if it is
	// no longer valid to apply (e.g. a slot was already filled).
	Apply(h Host) error
	// Invert returns the primitive that undoes this one, built from
	// state captured in Apply (e.g. the replaced-out node id).
	Invert() Primitive
	// Introduced returns the node, if any, that this primitive newly
	// attaches into the tree -- the one a dropped redo-branch must
	// free.
	Introduced() (store.NodeID, bool)
	// Removed returns the node, if any, that this primitive detaches
	// from the tree -- the one a rolled-off-the-tail group must free.
	Removed() (store.NodeID, bool)
}

// AttachAt attaches Child into Parent's slot/index.
type AttachAt struct {
	Parent store.NodeID
	Slot   int
	Child  store.NodeID
}

func (p *AttachAt) Apply(h Host) error { return h.Store().Attach(p.Parent, p.Slot, p.Child) }
func (p *AttachAt) Invert() Primitive {
	return &DetachFrom{Parent: p.Parent, Slot: p.Slot, expectChild: p.Child}
}
func (p *AttachAt) Introduced() (store.NodeID, bool) { return p.Child, true }
func (p *AttachAt) Removed() (store.NodeID, bool)    { return store.NodeID{}, false }

// DetachFrom detaches the child at Parent's slot/index. Child is
// filled in by Apply so Invert can reattach the same node.
type DetachFrom struct {
	Parent      store.NodeID
	Slot        int
	expectChild store.NodeID // if valid, set by the corresponding AttachAt.Invert
	Child       store.NodeID // populated by Apply
}

func (p *DetachFrom) Apply(h Host) error {
	child, err := h.Store().Detach(p.Parent, p.Slot)
	if err != nil {
		return err
	}
	if p.expectChild.Valid() && child != p.expectChild {
		return fmt.Errorf("detach: expected child %s, got %s", p.expectChild, child)
	}
	p.Child = child
	return nil
}
func (p *DetachFrom) Invert() Primitive {
	return &AttachAt{Parent: p.Parent, Slot: p.Slot, Child: p.Child}
}
func (p *DetachFrom) Introduced() (store.NodeID, bool) { return store.NodeID{}, false }
func (p *DetachFrom) Removed() (store.NodeID, bool)    { return p.Child, p.Child.Valid() }

// ReplaceAt atomically swaps the child at Parent's Fixed slot for New,
// recording the replaced-out Old for inversion.
type ReplaceAt struct {
	Parent store.NodeID
	Slot   int
	New    store.NodeID
	Old    store.NodeID // populated by Apply
}

func (p *ReplaceAt) Apply(h Host) error {
	old, err := h.Store().Replace(p.Parent, p.Slot, p.New)
	if err != nil {
		return err
	}
	p.Old = old
	return nil
}
func (p *ReplaceAt) Invert() Primitive {
	return &ReplaceAt{Parent: p.Parent, Slot: p.Slot, New: p.Old, Old: p.New}
}
func (p *ReplaceAt) Introduced() (store.NodeID, bool) { return p.New, p.New.Valid() }
func (p *ReplaceAt) Removed() (store.NodeID, bool)    { return p.Old, p.Old.Valid() }

// InsertListItem inserts Child at Index of Parent's list.
type InsertListItem struct {
	Parent store.NodeID
	Index  int
	Child  store.NodeID
}

func (p *InsertListItem) Apply(h Host) error { return h.Store().Attach(p.Parent, p.Index, p.Child) }
func (p *InsertListItem) Invert() Primitive {
	return &RemoveListItem{Parent: p.Parent, Index: p.Index, expectChild: p.Child}
}
func (p *InsertListItem) Introduced() (store.NodeID, bool) { return p.Child, true }
func (p *InsertListItem) Removed() (store.NodeID, bool)    { return store.NodeID{}, false }

// RemoveListItem removes the element at Index of Parent's list.
type RemoveListItem struct {
	Parent      store.NodeID
	Index       int
	expectChild store.NodeID
	Child       store.NodeID // populated by Apply
}

func (p *RemoveListItem) Apply(h Host) error {
	child, err := h.Store().Detach(p.Parent, p.Index)
	if err != nil {
		return err
	}
	if p.expectChild.Valid() && child != p.expectChild {
		return fmt.Errorf("remove list item: expected child %s, got %s", p.expectChild, child)
	}
	p.Child = child
	return nil
}
func (p *RemoveListItem) Invert() Primitive {
	return &InsertListItem{Parent: p.Parent, Index: p.Index, Child: p.Child}
}
func (p *RemoveListItem) Introduced() (store.NodeID, bool) { return store.NodeID{}, false }
func (p *RemoveListItem) Removed() (store.NodeID, bool)    { return p.Child, p.Child.Valid() }

// SetText overwrites Node's text from OldText to NewText.
type SetText struct {
	Node    store.NodeID
	OldText string
	NewText string
}

func (p *SetText) Apply(h Host) error {
	old, ok := h.Store().SetText(p.Node, p.NewText)
	if !ok {
		return fmt.Errorf("set text: %s is not texty", p.Node)
	}
	p.OldText = old
	return nil
}
func (p *SetText) Invert() Primitive {
	return &SetText{Node: p.Node, OldText: p.NewText, NewText: p.OldText}
}
func (p *SetText) Introduced() (store.NodeID, bool) { return store.NodeID{}, false }
func (p *SetText) Removed() (store.NodeID, bool)    { return store.NodeID{}, false }

// MoveTextCursor moves Node's stored text-cursor offset from OldOffset to NewOffset.
type MoveTextCursor struct {
	Node      store.NodeID
	OldOffset int
	NewOffset int
}

func (p *MoveTextCursor) Apply(h Host) error {
	old, ok := h.Store().SetTextCursor(p.Node, p.NewOffset)
	if !ok {
		return fmt.Errorf("move text cursor: %s is not texty", p.Node)
	}
	p.OldOffset = old
	return nil
}
func (p *MoveTextCursor) Invert() Primitive {
	return &MoveTextCursor{Node: p.Node, OldOffset: p.NewOffset, NewOffset: p.OldOffset}
}
func (p *MoveTextCursor) Introduced() (store.NodeID, bool) { return store.NodeID{}, false }
func (p *MoveTextCursor) Removed() (store.NodeID, bool)    { return store.NodeID{}, false }

// MoveCursor moves the document cursor from Old to New.
type MoveCursor struct {
	Old, New cursor.Cursor
}

func (p *MoveCursor) Apply(h Host) error {
	h.SetCursorRaw(p.New)
	return nil
}
func (p *MoveCursor) Invert() Primitive                { return &MoveCursor{Old: p.New, New: p.Old} }
func (p *MoveCursor) Introduced() (store.NodeID, bool) { return store.NodeID{}, false }
func (p *MoveCursor) Removed() (store.NodeID, bool)    { return store.NodeID{}, false }

// SetBookmark associates Char with a node id, recording the previous
// association (if any) for inversion.
type SetBookmark struct {
	Char       rune
	Old        store.NodeID
	OldPresent bool
	New        store.NodeID
	NewPresent bool
}

func (p *SetBookmark) Apply(h Host) error {
	h.SetBookmarkRaw(p.Char, p.New, p.NewPresent)
	return nil
}
func (p *SetBookmark) Invert() Primitive {
	return &SetBookmark{Char: p.Char, Old: p.New, OldPresent: p.NewPresent, New: p.Old, NewPresent: p.OldPresent}
}
func (p *SetBookmark) Introduced() (store.NodeID, bool) { return store.NodeID{}, false }
func (p *SetBookmark) Removed() (store.NodeID, bool)    { return store.NodeID{}, false }
