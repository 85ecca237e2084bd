// Package edit is the Editing Commands component:
// high-level operations expressed as sequences of editlog primitives,
// each wrapped in its own undo group. Every command validates grammar
// acceptance against the language registry before attaching anything,
// failing with synerr.Grammar and leaving the document untouched
// rather than committing a partial edit.
package edit

import (
	"github.com/synless-editor/synless/cursor"
	"github.com/synless-editor/synless/document"
	"github.com/synless-editor/synless/editlog"
	"github.com/synless-editor/synless/lang"
	"github.com/synless-editor/synless/store"
	"github.com/synless-editor/synless/synerr"
)

// slotContext describes the slot a cursor's node currently occupies,
// resolved once per command so Insert/Backspace/Cut/Paste/PasteSwap
// can share the same lookup.
type slotContext struct {
	parent     store.NodeID
	slot       int
	isListy    bool
	parentLang string
	slotSort   string
}

func resolveSlot(d *document.Document, node store.NodeID) (slotContext, error) {
	pl, ok := d.Store().ParentOf(node)
	if !ok {
		return slotContext{}, synerr.Wrapf(synerr.Navigation, "node has no parent slot")
	}
	parentView, ok := d.Store().Get(pl.Parent)
	if !ok {
		return slotContext{}, synerr.Wrapf(synerr.Navigation, "parent does not resolve")
	}
	sort, ok := d.Registry.SlotSort(parentView.Lang, parentView.Construct, pl.Slot)
	if !ok {
		return slotContext{}, synerr.Wrapf(synerr.Navigation, "parent slot has no declared sort")
	}
	return slotContext{
		parent:     pl.Parent,
		slot:       pl.Slot,
		isListy:    parentView.ArityKind == lang.Listy,
		parentLang: parentView.Lang,
		slotSort:   sort,
	}, nil
}

func accepts(d *document.Document, langName, slotSort, construct string) bool {
	return d.Registry.Accepts(langName, "", slotSort, construct)
}

// Insert places construct C at the cursor: if the
// cursor is on a Hole, C replaces it; if the cursor is on a non-Hole
// element of a Listy slot, C is inserted immediately after it; if the
// cursor is TreeBefore(parent,0), C is inserted at index 0. The cursor
// lands on the newly inserted node itself.
func Insert(d *document.Document, construct *lang.Construct) error {
	c := d.Cursor()
	switch c.Kind {
	case cursor.TreeOn:
		v, ok := d.Store().Get(c.Node)
		if !ok {
			return synerr.Wrapf(synerr.Navigation, "cursor node does not resolve")
		}
		ctx, err := resolveSlot(d, c.Node)
		if err != nil {
			return err
		}
		if !accepts(d, ctx.parentLang, ctx.slotSort, construct.Name) {
			return synerr.Wrapf(synerr.Grammar, "%q is not accepted in sort %q", construct.Name, ctx.slotSort)
		}
		if ctx.isListy {
			return insertAfterListElement(d, ctx, construct)
		}
		if v.IsHole {
			return insertReplacingHole(d, ctx, construct, c.Node)
		}
		return synerr.Wrapf(synerr.Grammar, "cannot insert over a non-hole Fixed slot; use backspace first")
	case cursor.TreeBefore:
		parentView, ok := d.Store().Get(c.Parent)
		if !ok {
			return synerr.Wrapf(synerr.Navigation, "list parent does not resolve")
		}
		sort, ok := d.Registry.SlotSort(parentView.Lang, parentView.Construct, 0)
		if !ok {
			return synerr.Wrapf(synerr.Navigation, "list parent has no declared element sort")
		}
		if !accepts(d, parentView.Lang, sort, construct.Name) {
			return synerr.Wrapf(synerr.Grammar, "%q is not accepted in sort %q", construct.Name, sort)
		}
		ctx := slotContext{parent: c.Parent, slot: c.Index, isListy: true, parentLang: parentView.Lang, slotSort: sort}
		return insertIntoListAt(d, ctx, construct, c.Index)
	default:
		return synerr.Wrapf(synerr.Navigation, "insert is not legal in text mode")
	}
}

func makeNode(d *document.Document, construct *lang.Construct) store.NodeID {
	return d.Store().Make(d.Meta.Language, construct.Name, construct.Arity)
}

func insertReplacingHole(d *document.Document, ctx slotContext, construct *lang.Construct, oldHole store.NodeID) error {
	d.BeginGroup()
	newNode := makeNode(d, construct)
	if err := d.Record(&editlog.ReplaceAt{Parent: ctx.parent, Slot: ctx.slot, New: newNode}); err != nil {
		d.Store().Free(newNode)
		d.AbortGroup()
		return err
	}
	moveCursorTo(d, cursor.On(newNode))
	d.CommitGroup()
	return nil
}

func insertAfterListElement(d *document.Document, ctx slotContext, construct *lang.Construct) error {
	return insertIntoListAt(d, ctx, construct, ctx.slot+1)
}

func insertIntoListAt(d *document.Document, ctx slotContext, construct *lang.Construct, index int) error {
	d.BeginGroup()
	newNode := makeNode(d, construct)
	if err := d.Record(&editlog.InsertListItem{Parent: ctx.parent, Index: index, Child: newNode}); err != nil {
		d.Store().Free(newNode)
		d.AbortGroup()
		return err
	}
	moveCursorTo(d, cursor.On(newNode))
	d.CommitGroup()
	return nil
}

func moveCursorTo(d *document.Document, to cursor.Cursor) {
	from := d.Cursor()
	if from.Equal(to) {
		return
	}
	_ = d.Record(&editlog.MoveCursor{Old: from, New: to})
}

// Backspace: on a Fixed slot, replaces the node
// with a Hole; on a Listy slot, removes the element and moves the
// cursor to what took its place (or TreeBefore(parent,0) if the list
// becomes empty). The detached subtree stays only in the edit log's
// inverse payload -- it is not copied to the cut register.
func Backspace(d *document.Document) error {
	c := d.Cursor()
	if c.Kind != cursor.TreeOn {
		return synerr.Wrapf(synerr.Navigation, "backspace requires a tree cursor on a node")
	}
	ctx, err := resolveSlot(d, c.Node)
	if err != nil {
		return err
	}
	d.BeginGroup()
	if ctx.isListy {
		if err := removeListElement(d, ctx); err != nil {
			d.AbortGroup()
			return err
		}
	} else {
		hole := d.Store().MakeHole(ctx.parentLang)
		if err := d.Record(&editlog.ReplaceAt{Parent: ctx.parent, Slot: ctx.slot, New: hole}); err != nil {
			d.Store().Free(hole)
			d.AbortGroup()
			return err
		}
		moveCursorTo(d, cursor.On(hole))
	}
	d.CommitGroup()
	return nil
}

// Delete is an alias for Backspace.
func Delete(d *document.Document) error { return Backspace(d) }

func removeListElement(d *document.Document, ctx slotContext) error {
	if err := d.Record(&editlog.RemoveListItem{Parent: ctx.parent, Index: ctx.slot}); err != nil {
		return err
	}
	children, _ := d.Store().Children(ctx.parent)
	switch {
	case len(children) == 0:
		moveCursorTo(d, cursor.Before(ctx.parent, 0))
	case ctx.slot < len(children):
		moveCursorTo(d, cursor.On(children[ctx.slot]))
	default:
		moveCursorTo(d, cursor.On(children[len(children)-1]))
	}
	return nil
}

// Cut removes the subtree at the cursor (like Backspace) and pushes it
// onto the cut register. A Hole-over-Hole cut is a no-op.
func Cut(d *document.Document) error {
	c := d.Cursor()
	if c.Kind != cursor.TreeOn {
		return synerr.Wrapf(synerr.Navigation, "cut requires a tree cursor on a node")
	}
	v, ok := d.Store().Get(c.Node)
	if !ok {
		return synerr.Wrapf(synerr.Navigation, "cursor node does not resolve")
	}
	ctx, err := resolveSlot(d, c.Node)
	if err != nil {
		return err
	}
	if v.IsHole && !ctx.isListy {
		return nil // hole-over-hole cut: nothing to do
	}
	d.BeginGroup()
	var removed store.NodeID
	if ctx.isListy {
		if err := d.Record(&editlog.RemoveListItem{Parent: ctx.parent, Index: ctx.slot}); err != nil {
			d.AbortGroup()
			return err
		}
		rec := mustLastPrimitive(d)
		removed = rec.(*editlog.RemoveListItem).Child
		children, _ := d.Store().Children(ctx.parent)
		switch {
		case len(children) == 0:
			moveCursorTo(d, cursor.Before(ctx.parent, 0))
		case ctx.slot < len(children):
			moveCursorTo(d, cursor.On(children[ctx.slot]))
		default:
			moveCursorTo(d, cursor.On(children[len(children)-1]))
		}
	} else {
		hole := d.Store().MakeHole(ctx.parentLang)
		if err := d.Record(&editlog.ReplaceAt{Parent: ctx.parent, Slot: ctx.slot, New: hole}); err != nil {
			d.Store().Free(hole)
			d.AbortGroup()
			return err
		}
		rec := mustLastPrimitive(d)
		removed = rec.(*editlog.ReplaceAt).Old
		moveCursorTo(d, cursor.On(hole))
	}
	if err := d.Record(&editlog.InsertListItem{Parent: d.CutRegister(), Index: 0, Child: removed}); err != nil {
		d.AbortGroup()
		return err
	}
	d.CommitGroup()
	return nil
}

// mustLastPrimitive returns the most recently recorded primitive of
// the in-progress group, for commands that need to read back a field
// Apply populated (e.g. the detached child id) before recording a
// follow-up primitive that depends on it.
func mustLastPrimitive(d *document.Document) editlog.Primitive {
	return d.Log.LastRecorded()
}

// Copy clones the subtree at the cursor into the cut register with
// freshly allocated node-ids, leaving the original tree
// untouched.
func Copy(d *document.Document) error {
	c := d.Cursor()
	if c.Kind != cursor.TreeOn {
		return synerr.Wrapf(synerr.Navigation, "copy requires a tree cursor on a node")
	}
	d.BeginGroup()
	clone := document.CloneTree(d.Store(), c.Node)
	if err := d.Record(&editlog.InsertListItem{Parent: d.CutRegister(), Index: 0, Child: clone}); err != nil {
		d.Store().Free(clone)
		d.AbortGroup()
		return err
	}
	d.CommitGroup()
	return nil
}

// peekCutTop returns the top of the cut register without popping it.
func peekCutTop(d *document.Document) (store.NodeID, bool) {
	children, _ := d.Store().Children(d.CutRegister())
	if len(children) == 0 {
		return store.NodeID{}, false
	}
	return children[0], true
}

// Paste pops the cut register and attaches it at the cursor following
// Insert's rules. A grammar rejection leaves the
// register unchanged.
func Paste(d *document.Document) error {
	top, ok := peekCutTop(d)
	if !ok {
		return synerr.Wrapf(synerr.NotFound, "cut register is empty")
	}
	topView, ok := d.Store().Get(top)
	if !ok {
		return synerr.Wrapf(synerr.NotFound, "cut register top does not resolve")
	}

	c := d.Cursor()
	var ctx slotContext
	var err error
	var listIndex int
	var listTarget store.NodeID
	switch c.Kind {
	case cursor.TreeOn:
		ctx, err = resolveSlot(d, c.Node)
		if err != nil {
			return err
		}
		if !accepts(d, ctx.parentLang, ctx.slotSort, topView.Construct) {
			return synerr.Wrapf(synerr.Grammar, "%q is not accepted in sort %q", topView.Construct, ctx.slotSort)
		}
		if ctx.isListy {
			listTarget, listIndex = ctx.parent, ctx.slot+1
		} else if v, ok := d.Store().Get(c.Node); !ok || !v.IsHole {
			return synerr.Wrapf(synerr.Grammar, "cannot paste over a non-hole Fixed slot; use backspace first")
		}
	case cursor.TreeBefore:
		parentView, ok := d.Store().Get(c.Parent)
		if !ok {
			return synerr.Wrapf(synerr.Navigation, "list parent does not resolve")
		}
		sort, ok := d.Registry.SlotSort(parentView.Lang, parentView.Construct, 0)
		if !ok {
			return synerr.Wrapf(synerr.Navigation, "list parent has no declared element sort")
		}
		if !accepts(d, parentView.Lang, sort, topView.Construct) {
			return synerr.Wrapf(synerr.Grammar, "%q is not accepted in sort %q", topView.Construct, sort)
		}
		listTarget, listIndex = c.Parent, c.Index
		ctx = slotContext{parent: c.Parent, slot: c.Index, isListy: true}
	default:
		return synerr.Wrapf(synerr.Navigation, "paste is not legal in text mode")
	}

	d.BeginGroup()
	if err := d.Record(&editlog.RemoveListItem{Parent: d.CutRegister(), Index: 0}); err != nil {
		d.AbortGroup()
		return err
	}
	if ctx.isListy {
		if err := d.Record(&editlog.InsertListItem{Parent: listTarget, Index: listIndex, Child: top}); err != nil {
			d.AbortGroup()
			return err
		}
	} else {
		if err := d.Record(&editlog.ReplaceAt{Parent: ctx.parent, Slot: ctx.slot, New: top}); err != nil {
			d.AbortGroup()
			return err
		}
	}
	moveCursorTo(d, cursor.On(top))
	d.CommitGroup()
	return nil
}

// PasteSwap atomically swaps the node at the cursor with the top of
// the cut register, subject to sort acceptance on both ends. Applying it twice is the identity.
func PasteSwap(d *document.Document) error {
	c := d.Cursor()
	if c.Kind != cursor.TreeOn {
		return synerr.Wrapf(synerr.Navigation, "paste_swap requires a tree cursor on a node")
	}
	top, ok := peekCutTop(d)
	if !ok {
		return synerr.Wrapf(synerr.NotFound, "cut register is empty")
	}
	topView, ok := d.Store().Get(top)
	if !ok {
		return synerr.Wrapf(synerr.NotFound, "cut register top does not resolve")
	}
	if _, ok := d.Store().Get(c.Node); !ok {
		return synerr.Wrapf(synerr.Navigation, "cursor node does not resolve")
	}
	ctx, err := resolveSlot(d, c.Node)
	if err != nil {
		return err
	}
	if ctx.isListy {
		return synerr.Wrapf(synerr.Grammar, "paste_swap requires a Fixed slot")
	}
	if !accepts(d, ctx.parentLang, ctx.slotSort, topView.Construct) {
		return synerr.Wrapf(synerr.Grammar, "%q is not accepted in sort %q", topView.Construct, ctx.slotSort)
	}

	d.BeginGroup()
	if err := d.Record(&editlog.RemoveListItem{Parent: d.CutRegister(), Index: 0}); err != nil {
		d.AbortGroup()
		return err
	}
	if err := d.Record(&editlog.ReplaceAt{Parent: ctx.parent, Slot: ctx.slot, New: top}); err != nil {
		d.AbortGroup()
		return err
	}
	rec := mustLastPrimitive(d)
	old := rec.(*editlog.ReplaceAt).Old
	if err := d.Record(&editlog.InsertListItem{Parent: d.CutRegister(), Index: 0, Child: old}); err != nil {
		d.AbortGroup()
		return err
	}
	moveCursorTo(d, cursor.On(top))
	d.CommitGroup()
	return nil
}

// Undo undoes the most recent committed group.
func Undo(d *document.Document) error { return d.Undo() }

// Redo reapplies the next undone group.
func Redo(d *document.Document) error { return d.Redo() }

// SaveBookmark stores the current cursor's node under ch.
func SaveBookmark(d *document.Document, ch rune) error {
	if d.Cursor().Kind != cursor.TreeOn {
		return synerr.Wrapf(synerr.Navigation, "save_bookmark requires a tree cursor on a node")
	}
	old, hadOld := d.BookmarkRaw(ch)
	d.BeginGroup()
	err := d.Record(&editlog.SetBookmark{Char: ch, Old: old, OldPresent: hadOld, New: d.Cursor().Node, NewPresent: true})
	if err != nil {
		d.AbortGroup()
		return err
	}
	d.CommitGroup()
	return nil
}

// GotoBookmark moves the cursor onto the bookmarked node, or fails
// with synerr.NotFound if it no longer resolves.
func GotoBookmark(d *document.Document, ch rune) error {
	node, ok := d.BookmarkRaw(ch)
	if !ok {
		return synerr.Wrapf(synerr.NotFound, "no live bookmark %q", ch)
	}
	d.BeginGroup()
	moveCursorTo(d, cursor.On(node))
	d.CommitGroup()
	return nil
}

// Unwrap replaces the node at cursor with its own first non-Hole
// child, splicing the child up into the parent slot; it fails with
// synerr.Grammar if the node has no non-Hole child. This is a distinct operation alongside the default
// Backspace-to-Hole rule, for promoting a child past a wrapper without
// retyping it.
func Unwrap(d *document.Document) error {
	c := d.Cursor()
	if c.Kind != cursor.TreeOn {
		return synerr.Wrapf(synerr.Navigation, "unwrap requires a tree cursor on a node")
	}
	v, ok := d.Store().Get(c.Node)
	if !ok {
		return synerr.Wrapf(synerr.Navigation, "cursor node does not resolve")
	}
	if v.IsHole {
		return synerr.Wrapf(synerr.Grammar, "cannot unwrap a hole")
	}
	children, _ := d.Store().Children(c.Node)
	var promote store.NodeID
	for _, ch := range children {
		if chv, ok := d.Store().Get(ch); ok && !chv.IsHole {
			promote = ch
			break
		}
	}
	ctx, err := resolveSlot(d, c.Node)
	if err != nil {
		return err
	}
	if !promote.Valid() {
		return synerr.Wrapf(synerr.Grammar, "%q has no non-hole child to unwrap", v.Construct)
	}
	promoteView, _ := d.Store().Get(promote)
	if !accepts(d, ctx.parentLang, ctx.slotSort, promoteView.Construct) {
		return synerr.Wrapf(synerr.Grammar, "%q does not satisfy sort %q of the outer slot", promoteView.Construct, ctx.slotSort)
	}

	d.BeginGroup()
	childSlotIdx := -1
	for i, ch := range children {
		if ch == promote {
			childSlotIdx = i
			break
		}
	}
	hole := d.Store().MakeHole(ctx.parentLang)
	if err := d.Record(&editlog.ReplaceAt{Parent: c.Node, Slot: childSlotIdx, New: hole}); err != nil {
		d.Store().Free(hole)
		d.AbortGroup()
		return err
	}
	if ctx.isListy {
		if err := d.Record(&editlog.RemoveListItem{Parent: ctx.parent, Index: ctx.slot}); err != nil {
			d.AbortGroup()
			return err
		}
		removed := mustLastPrimitive(d).(*editlog.RemoveListItem).Child
		d.Store().Free(removed)
		if err := d.Record(&editlog.InsertListItem{Parent: ctx.parent, Index: ctx.slot, Child: promote}); err != nil {
			d.AbortGroup()
			return err
		}
	} else {
		if err := d.Record(&editlog.ReplaceAt{Parent: ctx.parent, Slot: ctx.slot, New: promote}); err != nil {
			d.AbortGroup()
			return err
		}
		old := mustLastPrimitive(d).(*editlog.ReplaceAt).Old
		d.Store().Free(old)
	}
	moveCursorTo(d, cursor.On(promote))
	d.CommitGroup()
	return nil
}
