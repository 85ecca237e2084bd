package store_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/synless-editor/synless/lang"
	"github.com/synless-editor/synless/store"
)

func TestMakeFixedFillsHoles(t *testing.T) {
	s := store.New()
	root := s.Make("t", "Pair", lang.FixedArity("a", "b"))
	children, ok := s.Children(root)
	require.True(t, ok)
	require.Len(t, children, 2)
	for _, c := range children {
		v, ok := s.Get(c)
		require.True(t, ok)
		require.True(t, v.IsHole)
	}
}

func TestMakeListyStartsEmpty(t *testing.T) {
	s := store.New()
	root := s.Make("t", "List", lang.ListyArity("item"))
	children, ok := s.Children(root)
	require.True(t, ok)
	require.Empty(t, children)
}

func TestAttachListyInsertsAtIndex(t *testing.T) {
	s := store.New()
	root := s.Make("t", "List", lang.ListyArity("item"))
	a := s.MakeHole("t")
	b := s.MakeHole("t")
	c := s.MakeHole("t")
	require.NoError(t, s.Attach(root, 0, a))
	require.NoError(t, s.Attach(root, 1, b))
	require.NoError(t, s.Attach(root, 1, c))

	children, ok := s.Children(root)
	require.True(t, ok)
	require.Equal(t, []store.NodeID{a, c, b}, children)
}

func TestAttachRejectsAlreadyParented(t *testing.T) {
	s := store.New()
	root := s.Make("t", "List", lang.ListyArity("item"))
	other := s.Make("t", "List", lang.ListyArity("item"))
	child := s.MakeHole("t")
	require.NoError(t, s.Attach(root, 0, child))
	require.Error(t, s.Attach(other, 0, child))
}

func TestReplaceSwapsFixedSlotAndDetachesOld(t *testing.T) {
	s := store.New()
	root := s.Make("t", "Pair", lang.FixedArity("a", "b"))
	children, _ := s.Children(root)
	oldFirst := children[0]
	fresh := s.MakeHole("t")

	old, err := s.Replace(root, 0, fresh)
	require.NoError(t, err)
	require.Equal(t, oldFirst, old)

	_, hasParent := s.ParentOf(old)
	require.False(t, hasParent)

	newChildren, _ := s.Children(root)
	require.Equal(t, fresh, newChildren[0])
}

func TestDetachLeavesFixedSlotEmpty(t *testing.T) {
	s := store.New()
	root := s.Make("t", "Pair", lang.FixedArity("a", "b"))
	children, _ := s.Children(root)

	detached, err := s.Detach(root, 0)
	require.NoError(t, err)
	require.Equal(t, children[0], detached)

	again, ok := s.Children(root)
	require.True(t, ok)
	require.False(t, again[0].Valid())
}

func TestTextRoundTrip(t *testing.T) {
	s := store.New()
	n := s.Make("t", "Str", lang.TextyArity())
	old, ok := s.SetText(n, "hello")
	require.True(t, ok)
	require.Equal(t, "", old)

	text, ok := s.Text(n)
	require.True(t, ok)
	require.Equal(t, "hello", text)
}

func TestFreeInvalidatesGeneration(t *testing.T) {
	s := store.New()
	n := s.MakeHole("t")
	s.Free(n)
	_, ok := s.Get(n)
	require.False(t, ok)
}

func TestForEachDescendantVisitsWholeSubtree(t *testing.T) {
	s := store.New()
	root := s.Make("t", "List", lang.ListyArity("item"))
	a := s.MakeHole("t")
	b := s.MakeHole("t")
	require.NoError(t, s.Attach(root, 0, a))
	require.NoError(t, s.Attach(root, 1, b))

	var visited []store.NodeID
	s.ForEachDescendant(root, func(id store.NodeID) bool {
		visited = append(visited, id)
		return true
	})
	require.ElementsMatch(t, []store.NodeID{root, a, b}, visited)
}
