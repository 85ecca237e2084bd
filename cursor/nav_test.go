package cursor_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/synless-editor/synless/cursor"
	"github.com/synless-editor/synless/lang"
	"github.com/synless-editor/synless/store"
)

func buildFixedTree(t *testing.T) (*store.Store, store.NodeID, []store.NodeID) {
	t.Helper()
	s := store.New()
	root := s.Make("t", "Pair", lang.FixedArity("a", "b"))
	children, _ := s.Children(root)
	return s, root, children
}

func TestNextPrevSiblings(t *testing.T) {
	s, _, children := buildFixedTree(t)
	c := cursor.On(children[0])

	next, err := cursor.Next(s, c)
	require.NoError(t, err)
	require.Equal(t, children[1], next.Node)

	_, err = cursor.Next(s, next)
	require.Error(t, err)

	prev, err := cursor.Prev(s, next)
	require.NoError(t, err)
	require.Equal(t, children[0], prev.Node)

	_, err = cursor.Prev(s, prev)
	require.Error(t, err)
}

func TestFirstChildOnEmptyListyGivesBeforePosition(t *testing.T) {
	s := store.New()
	root := s.Make("t", "List", lang.ListyArity("item"))

	c, err := cursor.FirstChild(s, root)
	require.NoError(t, err)
	require.Equal(t, cursor.TreeBefore, c.Kind)
	require.Equal(t, root, c.Parent)
	require.Equal(t, 0, c.Index)
}

func TestFirstChildLastChildOnFixed(t *testing.T) {
	s, root, children := buildFixedTree(t)

	first, err := cursor.FirstChild(s, root)
	require.NoError(t, err)
	require.Equal(t, children[0], first.Node)

	last, err := cursor.LastChild(s, root)
	require.NoError(t, err)
	require.Equal(t, children[1], last.Node)
}

func TestParentFromTreeBefore(t *testing.T) {
	s := store.New()
	root := s.Make("t", "List", lang.ListyArity("item"))
	before := cursor.Before(root, 0)

	p, err := cursor.Parent(s, before)
	require.NoError(t, err)
	require.Equal(t, root, p.Node)
}

func TestParentFromRootErrors(t *testing.T) {
	s, root, _ := buildFixedTree(t)
	_, err := cursor.Parent(s, cursor.On(root))
	require.Error(t, err)
}

func TestNextLeafPrevLeafWalkPreOrder(t *testing.T) {
	s := store.New()
	root := s.Make("t", "List", lang.ListyArity("item"))
	a := s.Make("t", "Leaf", lang.TextyArity())
	b := s.Make("t", "Leaf", lang.TextyArity())
	require.NoError(t, s.Attach(root, 0, a))
	require.NoError(t, s.Attach(root, 1, b))

	next, err := cursor.NextLeaf(s, root, cursor.On(root))
	require.NoError(t, err)
	require.Equal(t, a, next.Node)

	next, err = cursor.NextLeaf(s, root, next)
	require.NoError(t, err)
	require.Equal(t, b, next.Node)

	_, err = cursor.NextLeaf(s, root, next)
	require.Error(t, err)

	prev, err := cursor.PrevLeaf(s, root, cursor.On(b))
	require.NoError(t, err)
	require.Equal(t, a, prev.Node)
}

func TestEnterExitText(t *testing.T) {
	s := store.New()
	n := s.Make("t", "Leaf", lang.TextyArity())
	s.SetText(n, "hi")

	inText, err := cursor.EnterText(s, cursor.On(n))
	require.NoError(t, err)
	require.Equal(t, cursor.TextAt, inText.Kind)
	require.Equal(t, 2, inText.CharIndex)

	back, err := cursor.ExitText(inText)
	require.NoError(t, err)
	require.Equal(t, cursor.On(n), back)
}

func TestTextLeftRightBounds(t *testing.T) {
	s := store.New()
	n := s.Make("t", "Leaf", lang.TextyArity())
	s.SetText(n, "ab")
	c := cursor.InText(n, 0)

	_, err := cursor.TextLeft(s, c)
	require.Error(t, err)

	right, err := cursor.TextRight(s, c)
	require.NoError(t, err)
	require.Equal(t, 1, right.CharIndex)

	right, err = cursor.TextRight(s, right)
	require.NoError(t, err)
	require.Equal(t, 2, right.CharIndex)

	_, err = cursor.TextRight(s, right)
	require.Error(t, err)
}
