// Package store is the Node Store: an arena of nodes
// keyed by generation-stable ids, owning parent/child links and text
// payloads. It is deliberately grammar-agnostic -- the caller (package
// document/editlog) decides whether a mutation is well-typed before
// asking the store to perform it. The arena-with-generation design is
// grounded on the "nodeStore" arena pattern the corpus uses for
// content-addressed trie nodes (iotaledger trie.go's nodeStore/
// nodeStoreBuffered), adapted here to an in-memory, mutable,
// parent-linked tree instead of a persistent, content-addressed one.
package store

import (
	"fmt"

	"github.com/synless-editor/synless/lang"
)

// NodeID identifies a node in a Store. It stays valid until the slot
// it names is freed and its generation bumped, at which point a stale
// NodeID becomes distinguishable from the slot's current occupant.
type NodeID struct {
	index uint32
	gen   uint32
}

// Valid reports whether id is anything but the zero value. It does
// not, by itself, mean the id currently resolves to a live node in any
// particular Store -- use Store.Get for that.
func (id NodeID) Valid() bool {
	return id.index != 0
}

// String renders a NodeID for logs and test failures.
func (id NodeID) String() string {
	if !id.Valid() {
		return "<nil-node>"
	}
	return fmt.Sprintf("#%d.%d", id.index, id.gen)
}

// ParentLink records a node's parent and the slot (Fixed index, or
// list position) it occupies there.
type ParentLink struct {
	Parent NodeID
	Slot   int
}

// payload's kind mirrors lang.ArityKind so the store need not import the
// registry to know how to default-initialize a payload; the caller
// supplies a lang.Arity explicitly in Make.
type payload struct {
	kind lang.ArityKind
	// fixed holds exactly len(kind==Fixed slot count) entries for Fixed nodes.
	fixed []NodeID
	// listy holds the ordered children for Listy nodes.
	listy []NodeID
	// text and cursor hold the payload for Texty nodes.
	text   string
	cursor int
}

type slot struct {
	gen      uint32
	occupied bool

	lang      string
	construct string
	isHole    bool
	parent    ParentLink
	hasParent bool
	payload   payload
}

// Store is the arena described above.
type Store struct {
	slots []slot
	free  []uint32
}

// New returns an empty Store. Index 0 is permanently reserved as the
// invalid NodeID so the zero value of NodeID never aliases a real node.
func New() *Store {
	return &Store{slots: make([]slot, 1)}
}

func (s *Store) alloc() uint32 {
	if n := len(s.free); n > 0 {
		idx := s.free[n-1]
		s.free = s.free[:n-1]
		return idx
	}
	s.slots = append(s.slots, slot{})
	return uint32(len(s.slots) - 1)
}

func (s *Store) resolve(id NodeID) (*slot, bool) {
	if !id.Valid() || int(id.index) >= len(s.slots) {
		return nil, false
	}
	sl := &s.slots[id.index]
	if !sl.occupied || sl.gen != id.gen {
		return nil, false
	}
	return sl, true
}

// Make allocates a node of the given language/construct with default
// children for the given arity: Fixed slots are each filled with a
// fresh Hole, Listy starts empty, Texty starts as the empty string.
func (s *Store) Make(language, construct string, arity lang.Arity) NodeID {
	id := s.allocSlot(language, construct, false)
	sl, _ := s.resolve(id)
	switch arity.Kind {
	case lang.Fixed:
		sl.payload = payload{kind: lang.Fixed, fixed: make([]NodeID, len(arity.Slots))}
		for i := range arity.Slots {
			hole := s.MakeHole(language)
			s.slots[hole.index].parent = ParentLink{Parent: id, Slot: i}
			s.slots[hole.index].hasParent = true
			sl.payload.fixed[i] = hole
		}
	case lang.Listy:
		sl.payload = payload{kind: lang.Listy}
	case lang.Texty:
		sl.payload = payload{kind: lang.Texty}
	}
	return id
}

// MakeHole allocates a Hole node: a typed placeholder that satisfies
// any sort and cannot be navigated into.
func (s *Store) MakeHole(language string) NodeID {
	return s.allocSlot(language, "", true)
}

func (s *Store) allocSlot(language, construct string, isHole bool) NodeID {
	idx := s.alloc()
	gen := s.slots[idx].gen
	s.slots[idx] = slot{
		gen:       gen,
		occupied:  true,
		lang:      language,
		construct: construct,
		isHole:    isHole,
	}
	return NodeID{index: idx, gen: gen}
}

// View is a read-only snapshot of a node's identity and shape.
type View struct {
	ID        NodeID
	Lang      string
	Construct string
	IsHole    bool
	Parent    ParentLink
	HasParent bool
	ArityKind lang.ArityKind
}

// Get returns a View of id, and false if id does not resolve to a live node.
func (s *Store) Get(id NodeID) (View, bool) {
	sl, ok := s.resolve(id)
	if !ok {
		return View{}, false
	}
	return View{
		ID:        id,
		Lang:      sl.lang,
		Construct: sl.construct,
		IsHole:    sl.isHole,
		Parent:    sl.parent,
		HasParent: sl.hasParent,
		ArityKind: sl.payload.kind,
	}, true
}

// ParentOf returns id's parent link, and false if id is a root (no
// parent) or does not resolve.
func (s *Store) ParentOf(id NodeID) (ParentLink, bool) {
	sl, ok := s.resolve(id)
	if !ok || !sl.hasParent {
		return ParentLink{}, false
	}
	return sl.parent, true
}

// Children returns id's children in order: Fixed slot contents (which
// may individually be Holes) or Listy elements. It returns nil, false
// for Texty nodes or ids that do not resolve.
func (s *Store) Children(id NodeID) ([]NodeID, bool) {
	sl, ok := s.resolve(id)
	if !ok {
		return nil, false
	}
	switch sl.payload.kind {
	case lang.Fixed:
		out := make([]NodeID, len(sl.payload.fixed))
		copy(out, sl.payload.fixed)
		return out, true
	case lang.Listy:
		out := make([]NodeID, len(sl.payload.listy))
		copy(out, sl.payload.listy)
		return out, true
	default:
		return nil, false
	}
}

// Text returns a Texty node's text, and false otherwise.
func (s *Store) Text(id NodeID) (string, bool) {
	sl, ok := s.resolve(id)
	if !ok || sl.payload.kind != lang.Texty {
		return "", false
	}
	return sl.payload.text, true
}

// SetText overwrites a Texty node's text, returning the previous text
// so callers can build the primitive's inverse.
func (s *Store) SetText(id NodeID, text string) (old string, ok bool) {
	sl, ok := s.resolve(id)
	if !ok || sl.payload.kind != lang.Texty {
		return "", false
	}
	old = sl.payload.text
	sl.payload.text = text
	return old, true
}

// TextCursor returns a Texty node's stored text-cursor offset.
func (s *Store) TextCursor(id NodeID) (int, bool) {
	sl, ok := s.resolve(id)
	if !ok || sl.payload.kind != lang.Texty {
		return 0, false
	}
	return sl.payload.cursor, true
}

// SetTextCursor overwrites a Texty node's text-cursor offset, returning the previous one.
func (s *Store) SetTextCursor(id NodeID, offset int) (old int, ok bool) {
	sl, ok := s.resolve(id)
	if !ok || sl.payload.kind != lang.Texty {
		return 0, false
	}
	old = sl.payload.cursor
	sl.payload.cursor = offset
	return old, true
}

// Attach links child into parent's Fixed slot index or appends/inserts
// into a Listy parent at position slot, and records child's parent
// link. It errors if child already has a parent, or if parent/child do not resolve, or the slot
// is out of range for a Fixed parent.
func (s *Store) Attach(parent NodeID, slotIdx int, child NodeID) error {
	pSl, ok := s.resolve(parent)
	if !ok {
		return fmt.Errorf("attach: parent %s does not resolve", parent)
	}
	cSl, ok := s.resolve(child)
	if !ok {
		return fmt.Errorf("attach: child %s does not resolve", child)
	}
	if cSl.hasParent {
		return fmt.Errorf("attach: child %s already has a parent", child)
	}
	switch pSl.payload.kind {
	case lang.Fixed:
		if slotIdx < 0 || slotIdx >= len(pSl.payload.fixed) {
			return fmt.Errorf("attach: slot %d out of range for %s", slotIdx, parent)
		}
		if pSl.payload.fixed[slotIdx].Valid() {
			return fmt.Errorf("attach: slot %d of %s is already occupied", slotIdx, parent)
		}
		pSl.payload.fixed[slotIdx] = child
	case lang.Listy:
		if slotIdx < 0 || slotIdx > len(pSl.payload.listy) {
			return fmt.Errorf("attach: index %d out of range for %s", slotIdx, parent)
		}
		pSl.payload.listy = append(pSl.payload.listy, NodeID{})
		copy(pSl.payload.listy[slotIdx+1:], pSl.payload.listy[slotIdx:])
		pSl.payload.listy[slotIdx] = child
	default:
		return fmt.Errorf("attach: parent %s is not a container", parent)
	}
	cSl.parent = ParentLink{Parent: parent, Slot: slotIdx}
	cSl.hasParent = true
	return nil
}

// Detach removes and returns the child at parent's slot/index. For a
// Fixed parent the slot becomes transiently empty (an invalid NodeID)
// until the caller attaches a replacement; callers must not leave a
// group committed with an empty Fixed slot. It
// does not free the detached subtree -- it becomes a detached root
// owned by the caller.
func (s *Store) Detach(parent NodeID, slotIdx int) (NodeID, error) {
	pSl, ok := s.resolve(parent)
	if !ok {
		return NodeID{}, fmt.Errorf("detach: parent %s does not resolve", parent)
	}
	var child NodeID
	switch pSl.payload.kind {
	case lang.Fixed:
		if slotIdx < 0 || slotIdx >= len(pSl.payload.fixed) {
			return NodeID{}, fmt.Errorf("detach: slot %d out of range for %s", slotIdx, parent)
		}
		child = pSl.payload.fixed[slotIdx]
		pSl.payload.fixed[slotIdx] = NodeID{}
	case lang.Listy:
		if slotIdx < 0 || slotIdx >= len(pSl.payload.listy) {
			return NodeID{}, fmt.Errorf("detach: index %d out of range for %s", slotIdx, parent)
		}
		child = pSl.payload.listy[slotIdx]
		pSl.payload.listy = append(pSl.payload.listy[:slotIdx], pSl.payload.listy[slotIdx+1:]...)
	default:
		return NodeID{}, fmt.Errorf("detach: parent %s is not a container", parent)
	}
	if cSl, ok := s.resolve(child); ok {
		cSl.hasParent = false
		cSl.parent = ParentLink{}
	}
	return child, nil
}

// Replace atomically swaps the child at parent's Fixed slot for new,
// returning the old child.
func (s *Store) Replace(parent NodeID, slotIdx int, newChild NodeID) (old NodeID, err error) {
	pSl, ok := s.resolve(parent)
	if !ok {
		return NodeID{}, fmt.Errorf("replace: parent %s does not resolve", parent)
	}
	if pSl.payload.kind != lang.Fixed {
		return NodeID{}, fmt.Errorf("replace: parent %s is not Fixed", parent)
	}
	if slotIdx < 0 || slotIdx >= len(pSl.payload.fixed) {
		return NodeID{}, fmt.Errorf("replace: slot %d out of range for %s", slotIdx, parent)
	}
	newSl, ok := s.resolve(newChild)
	if !ok {
		return NodeID{}, fmt.Errorf("replace: new child %s does not resolve", newChild)
	}
	if newSl.hasParent {
		return NodeID{}, fmt.Errorf("replace: new child %s already has a parent", newChild)
	}
	old = pSl.payload.fixed[slotIdx]
	if oldSl, ok := s.resolve(old); ok {
		oldSl.hasParent = false
		oldSl.parent = ParentLink{}
	}
	pSl.payload.fixed[slotIdx] = newChild
	newSl.parent = ParentLink{Parent: parent, Slot: slotIdx}
	newSl.hasParent = true
	return old, nil
}

// Free releases id and every descendant reachable only through id back
// to the arena, bumping each freed slot's generation so stale NodeIDs
// become unresolvable. Free must only be called on a detached root.
func (s *Store) Free(id NodeID) {
	sl, ok := s.resolve(id)
	if !ok {
		return
	}
	switch sl.payload.kind {
	case lang.Fixed:
		for _, c := range sl.payload.fixed {
			if c.Valid() {
				s.Free(c)
			}
		}
	case lang.Listy:
		for _, c := range sl.payload.listy {
			s.Free(c)
		}
	}
	idx := id.index
	s.slots[idx] = slot{gen: s.slots[idx].gen + 1}
	s.free = append(s.free, idx)
}

// ForEachDescendant visits id and every node reachable from it,
// parents before children, stopping early if visit returns false.
func (s *Store) ForEachDescendant(id NodeID, visit func(NodeID) bool) {
	if !visit(id) {
		return
	}
	children, ok := s.Children(id)
	if !ok {
		return
	}
	for _, c := range children {
		if c.Valid() {
			s.ForEachDescendant(c, visit)
		}
	}
}
