package editlog

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/synless-editor/synless/cursor"
	"github.com/synless-editor/synless/store"
	"github.com/synless-editor/synless/synerr"
)

// Group is an ordered sequence of primitives committed as one atomic,
// invertible unit, plus the cursor
// snapshot from just before the group began.
type Group struct {
	Primitives []Primitive
	PreCursor  cursor.Cursor
}

// DefaultMaxGroups bounds the log's tail so it stays a doubly-ended
// sequence without unbounded growth.
const DefaultMaxGroups = 1000

// Log is the Edit Log: committed groups up to Pos are
// "applied"; groups from Pos onward (if any) are the redo branch.
type Log struct {
	store     *store.Store
	maxGroups int

	groups []*Group
	pos    int

	inProgress *Group
	depth      int
}

// New returns an empty Log bounded to maxGroups committed groups,
// operating on the given store for GC of discarded groups' subtrees.
func New(s *store.Store, maxGroups int) *Log {
	if maxGroups <= 0 {
		maxGroups = DefaultMaxGroups
	}
	return &Log{store: s, maxGroups: maxGroups}
}

// BeginGroup starts (or, if already inside one, flatly joins) an undo
// group.
func (l *Log) BeginGroup(preCursor cursor.Cursor) {
	if l.depth == 0 {
		l.inProgress = &Group{PreCursor: preCursor}
	}
	l.depth++
}

// Record applies a primitive against h and appends it to the
// in-progress group. If apply fails, the caller should roll back via
// AbortGroup; Record itself does not roll back so that a command can
// decide whether a given failure is fatal to the whole group.
func (l *Log) Record(h Host, p Primitive) error {
	if l.inProgress == nil {
		return fmt.Errorf("editlog: no group in progress")
	}
	if err := p.Apply(h); err != nil {
		return err
	}
	l.inProgress.Primitives = append(l.inProgress.Primitives, p)
	return nil
}

// CommitGroup closes the outermost begin/commit pair. If the group has
// no primitives, nothing is pushed to the log (an empty group is not
// recorded). Dropped redo-branch groups (if any existed above pos) are
// freed here, following the node lifecycle.
func (l *Log) CommitGroup(h Host) {
	if l.depth == 0 {
		return
	}
	l.depth--
	if l.depth > 0 {
		return
	}
	g := l.inProgress
	l.inProgress = nil
	if g == nil || len(g.Primitives) == 0 {
		return
	}
	l.dropRedoBranch()
	l.groups = append(l.groups, g)
	l.pos++
	l.trimTail()
}

// AbortGroup rolls back every primitive recorded so far in the
// in-progress group (applying each one's inverse in reverse order),
// restores the pre-group cursor, and discards the group without
// recording it. The primitives already succeeded once going forward,
// so a rollback failure does not stop the remaining inversions --
// every failure is collected and returned together via multierr
// rather than only the first.
func (l *Log) AbortGroup(h Host) error {
	g := l.inProgress
	l.inProgress = nil
	l.depth = 0
	if g == nil {
		return nil
	}
	return l.rollback(h, g)
}

func (l *Log) rollback(h Host, g *Group) error {
	var err error
	for i := len(g.Primitives) - 1; i >= 0; i-- {
		if ierr := g.Primitives[i].Invert().Apply(h); ierr != nil {
			err = multierr.Append(err, ierr)
		}
	}
	h.SetCursorRaw(g.PreCursor)
	for _, p := range g.Primitives {
		if id, ok := p.Introduced(); ok {
			l.store.Free(id)
		}
	}
	return err
}

// dropRedoBranch discards every group above pos (the redo branch made
// stale by a new commit), freeing each discarded group's introduced
// nodes -- they can never be redone again.
func (l *Log) dropRedoBranch() {
	for i := l.pos; i < len(l.groups); i++ {
		for _, p := range l.groups[i].Primitives {
			if id, ok := p.Introduced(); ok {
				l.store.Free(id)
			}
		}
	}
	l.groups = l.groups[:l.pos]
}

// trimTail rolls the oldest committed group off the bounded tail,
// freeing its removed nodes -- undo can never reach back far enough to
// need them again.
func (l *Log) trimTail() {
	for len(l.groups) > l.maxGroups {
		oldest := l.groups[0]
		for _, p := range oldest.Primitives {
			if id, ok := p.Removed(); ok {
				l.store.Free(id)
			}
		}
		l.groups = l.groups[1:]
		l.pos--
	}
}

// Undo applies the inverse of the topmost committed group, in reverse
// primitive order, and moves the cursor to that group's pre-state
// cursor. It returns synerr.NotFound if there is nothing to undo.
func (l *Log) Undo(h Host) error {
	if l.pos == 0 {
		return synerr.Wrapf(synerr.NotFound, "nothing to undo")
	}
	g := l.groups[l.pos-1]
	for i := len(g.Primitives) - 1; i >= 0; i-- {
		if err := g.Primitives[i].Invert().Apply(h); err != nil {
			return fmt.Errorf("editlog: undo failed: %w", err)
		}
	}
	h.SetCursorRaw(g.PreCursor)
	l.pos--
	return nil
}

// Redo reapplies the next group above the current undo pointer. It
// returns synerr.NotFound if there is nothing to redo.
func (l *Log) Redo(h Host) error {
	if l.pos >= len(l.groups) {
		return synerr.Wrapf(synerr.NotFound, "nothing to redo")
	}
	g := l.groups[l.pos]
	for _, p := range g.Primitives {
		if err := p.Apply(h); err != nil {
			return fmt.Errorf("editlog: redo failed: %w", err)
		}
	}
	l.pos++
	return nil
}

// LastRecorded returns the most recently recorded primitive of the
// in-progress group, for commands that must read a field Apply
// populated (e.g. a detached child id) before recording a follow-up
// primitive depending on it. Panics if no group is in progress or
// nothing has been recorded yet -- a caller bug, not a runtime error.
func (l *Log) LastRecorded() Primitive {
	if l.inProgress == nil || len(l.inProgress.Primitives) == 0 {
		panic("editlog: LastRecorded called with no primitive recorded in the current group")
	}
	return l.inProgress.Primitives[len(l.inProgress.Primitives)-1]
}

// CanUndo reports whether Undo would succeed.
func (l *Log) CanUndo() bool { return l.pos > 0 }

// CanRedo reports whether Redo would succeed.
func (l *Log) CanRedo() bool { return l.pos < len(l.groups) }

// Depth returns the current begin/commit nesting depth, for tests.
func (l *Log) Depth() int { return l.depth }
