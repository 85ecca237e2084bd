// Package document is the Document component: it
// wraps a Node Store with a root, cursor, bookmarks, a cut register,
// search state, and an edit log, and is the editlog.Host every
// primitive applies against.
package document

import (
	"github.com/synless-editor/synless/cursor"
	"github.com/synless-editor/synless/editlog"
	"github.com/synless-editor/synless/lang"
	"github.com/synless-editor/synless/search"
	"github.com/synless-editor/synless/store"
	"github.com/synless-editor/synless/synerr"
)

// Metadata is the document's file-level bookkeeping.
type Metadata struct {
	Path     string
	Language string
	Name     string
	Modified bool
}

// cutRegisterName is the sole register the editing commands drive.
// "Clipboard" and "cut register" are treated as two names for one
// stack rather than two independent registers; see DESIGN.md for the
// full resolution.
const cutRegisterName = "cut"

// Document is the editing runtime's central object.
type Document struct {
	Meta     Metadata
	Registry *lang.Registry
	store    *store.Store
	root     store.NodeID

	cur       cursor.Cursor
	bookmarks map[rune]store.NodeID

	// cutRegister is a hidden Listy container node (never reachable
	// from root) whose children are the cut-register stack, top at
	// index 0. Representing the register as an ordinary Listy node
	// lets Cut/Copy/Paste reuse the InsertListItem/RemoveListItem
	// primitives verbatim, so register mutation is automatically
	// undo/redo-capable like every other edit.
	cutRegister store.NodeID

	Search search.State

	Log *editlog.Log

	// LastAbortErr is the combined rollback error from the most recent
	// AbortGroup, if any primitive's inverse failed to apply. Commands
	// still discard the group either way; this is diagnostic only, for
	// the engine's error log.
	LastAbortErr error
}

// New creates a document of the given language, rooted at a fresh
// instance of the language's designated root construct, with its one
// Fixed slot defaulted to a Hole.
func New(registry *lang.Registry, meta Metadata) (*Document, error) {
	l := registry.Language(meta.Language)
	if l == nil {
		return nil, synerr.Wrapf(synerr.NotFound, "unknown language %q", meta.Language)
	}
	root := l.Constructs[l.RootConstruct]
	s := store.New()
	rootID := s.Make(meta.Language, root.Name, root.Arity)
	cutReg := s.Make(meta.Language, "", lang.ListyArity("*"))

	d := &Document{
		Meta:        meta,
		Registry:    registry,
		store:       s,
		root:        rootID,
		cur:         cursor.On(rootID),
		bookmarks:   make(map[rune]store.NodeID),
		cutRegister: cutReg,
		Log:         editlog.New(s, editlog.DefaultMaxGroups),
	}
	return d, nil
}

// FromParsedTree wraps an already-built store/root pair -- as produced
// by a languages/<name> loader -- in a fresh Document, skipping New's
// default Hole-rooted construction.
func FromParsedTree(registry *lang.Registry, meta Metadata, s *store.Store, root store.NodeID) *Document {
	cutReg := s.Make(meta.Language, "", lang.ListyArity("*"))
	return &Document{
		Meta:        meta,
		Registry:    registry,
		store:       s,
		root:        root,
		cur:         cursor.On(root),
		bookmarks:   make(map[rune]store.NodeID),
		cutRegister: cutReg,
		Log:         editlog.New(s, editlog.DefaultMaxGroups),
	}
}

// Store returns the underlying Node Store.
func (d *Document) Store() *store.Store { return d.store }

// Root returns the document's root node id.
func (d *Document) Root() store.NodeID { return d.root }

// Cursor returns the current cursor location.
func (d *Document) Cursor() cursor.Cursor { return d.cur }

// SetCursorRaw sets the cursor without going through the edit log.
// Only editlog primitives (MoveCursor) and Document's own
// group-management helpers should call this directly.
func (d *Document) SetCursorRaw(c cursor.Cursor) { d.cur = c }

// BookmarkRaw returns the node a bookmark character currently names,
// pruning it first if it no longer resolves.
func (d *Document) BookmarkRaw(ch rune) (store.NodeID, bool) {
	id, ok := d.bookmarks[ch]
	if !ok {
		return store.NodeID{}, false
	}
	if _, live := d.store.Get(id); !live {
		delete(d.bookmarks, ch)
		return store.NodeID{}, false
	}
	return id, true
}

// SetBookmarkRaw sets or clears a bookmark without going through the
// edit log; only the SetBookmark primitive should call this directly.
func (d *Document) SetBookmarkRaw(ch rune, id store.NodeID, present bool) {
	if present {
		d.bookmarks[ch] = id
	} else {
		delete(d.bookmarks, ch)
	}
}

// CutRegister returns the hidden container node backing the cut
// register/clipboard, for callers (package edit, package search) that
// need to read or mutate its stack via ordinary list primitives.
func (d *Document) CutRegister() store.NodeID { return d.cutRegister }

// BeginGroup / CommitGroup / AbortGroup delegate to the edit log,
// supplying the current cursor as the group's pre-state snapshot.

// BeginGroup starts (or flatly joins) an undo group.
func (d *Document) BeginGroup() { d.Log.BeginGroup(d.cur) }

// CommitGroup closes the outermost begin/commit pair and marks the
// document modified if anything was recorded.
func (d *Document) CommitGroup() {
	d.Log.CommitGroup(d)
	if d.Log.CanUndo() {
		d.Meta.Modified = true
	}
}

// AbortGroup rolls back the in-progress group, recording any rollback
// failure to LastAbortErr rather than returning it -- callers already
// committed to abandoning the group and have no recovery action to
// take differently based on the error.
func (d *Document) AbortGroup() { d.LastAbortErr = d.Log.AbortGroup(d) }

// Record applies and logs a single primitive within the current group.
func (d *Document) Record(p editlog.Primitive) error {
	return d.Log.Record(d, p)
}

// Undo undoes the topmost committed group.
func (d *Document) Undo() error {
	if err := d.Log.Undo(d); err != nil {
		return err
	}
	d.Meta.Modified = true
	return nil
}

// Redo reapplies the next undone group.
func (d *Document) Redo() error {
	if err := d.Log.Redo(d); err != nil {
		return err
	}
	d.Meta.Modified = true
	return nil
}

// CloneTree deep-copies the subtree rooted at id into freshly
// allocated node ids sharing no identity with the original. The clone is a detached root owned by the
// caller.
func CloneTree(s *store.Store, id store.NodeID) store.NodeID {
	v, ok := s.Get(id)
	if !ok {
		return store.NodeID{}
	}
	if v.IsHole {
		return s.MakeHole(v.Lang)
	}
	switch v.ArityKind {
	case lang.Fixed:
		children, _ := s.Children(id)
		clone := s.Make(v.Lang, v.Construct, lang.FixedArity(make([]string, len(children))...))
		for i, c := range children {
			// detach the placeholder hole Make created, attach the real clone
			old, _ := s.Detach(clone, i)
			s.Free(old)
			childClone := CloneTree(s, c)
			_ = s.Attach(clone, i, childClone)
		}
		return clone
	case lang.Listy:
		children, _ := s.Children(id)
		clone := s.Make(v.Lang, v.Construct, lang.ListyArity("*"))
		for i, c := range children {
			childClone := CloneTree(s, c)
			_ = s.Attach(clone, i, childClone)
		}
		return clone
	default: // Texty
		text, _ := s.Text(id)
		clone := s.Make(v.Lang, v.Construct, lang.TextyArity())
		s.SetText(clone, text)
		return clone
	}
}
