package search_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/synless-editor/synless/cursor"
	"github.com/synless-editor/synless/lang"
	"github.com/synless-editor/synless/search"
	"github.com/synless-editor/synless/store"
)

// buildTree makes a List root with three Leaf text children:
// "apple", "banana", "cherry".
func buildTree(t *testing.T) (*store.Store, store.NodeID, []store.NodeID) {
	t.Helper()
	s := store.New()
	root := s.Make("t", "List", lang.ListyArity("leaf"))
	texts := []string{"apple", "banana", "cherry"}
	ids := make([]store.NodeID, len(texts))
	for i, txt := range texts {
		n := s.Make("t", "Leaf", lang.TextyArity())
		s.SetText(n, txt)
		require.NoError(t, s.Attach(root, i, n))
		ids[i] = n
	}
	return s, root, ids
}

func TestSubstringSearchFindsNextMatch(t *testing.T) {
	s, root, ids := buildTree(t)
	var st search.State
	st.SetQuery(search.NewSubstringQuery("an"))

	c, err := st.Next(s, root, cursor.On(root))
	require.NoError(t, err)
	require.Equal(t, ids[1], c.Node) // "banana"

	_, err = st.Next(s, root, c)
	require.Error(t, err) // "cherry" does not contain "an"
}

func TestRegexSearchMatchesPattern(t *testing.T) {
	s, root, ids := buildTree(t)
	q, err := search.NewRegexQuery("^ch")
	require.NoError(t, err)
	var st search.State
	st.SetQuery(q)

	c, err := st.Next(s, root, cursor.On(root))
	require.NoError(t, err)
	require.Equal(t, ids[2], c.Node)
}

func TestRegexSearchRejectsInvalidPattern(t *testing.T) {
	_, err := search.NewRegexQuery("(")
	require.Error(t, err)
}

func TestConstructSearchMatchesByName(t *testing.T) {
	s, root, ids := buildTree(t)
	var st search.State
	st.SetQuery(search.NewConstructQuery("Leaf"))

	c, err := st.Next(s, root, cursor.On(root))
	require.NoError(t, err)
	require.Equal(t, ids[0], c.Node)
}

func TestSearchPrevWalksBackward(t *testing.T) {
	s, root, ids := buildTree(t)
	var st search.State
	st.SetQuery(search.NewConstructQuery("Leaf"))

	c, err := st.Prev(s, root, cursor.On(ids[2]))
	require.NoError(t, err)
	require.Equal(t, ids[1], c.Node)
}

func TestSearchNoActiveQuery(t *testing.T) {
	s, root, _ := buildTree(t)
	var st search.State
	_, err := st.Next(s, root, cursor.On(root))
	require.Error(t, err)
}

func TestSearchNoMatchReturnsNotFound(t *testing.T) {
	s, root, ids := buildTree(t)
	var st search.State
	st.SetQuery(search.NewSubstringQuery("zzz"))

	_, err := st.Next(s, root, cursor.On(ids[0]))
	require.Error(t, err)
}

func TestStructuralSearchMatchesEqualSubtree(t *testing.T) {
	s := store.New()
	root := s.Make("t", "List", lang.ListyArity("leaf"))
	a := s.Make("t", "Leaf", lang.TextyArity())
	s.SetText(a, "same")
	require.NoError(t, s.Attach(root, 0, a))
	b := s.Make("t", "Leaf", lang.TextyArity())
	s.SetText(b, "same")
	require.NoError(t, s.Attach(root, 1, b))
	c := s.Make("t", "Leaf", lang.TextyArity())
	s.SetText(c, "different")
	require.NoError(t, s.Attach(root, 2, c))

	var st search.State
	st.SetQuery(search.NewStructuralQuery(a))

	found, err := st.Next(s, root, cursor.On(a))
	require.NoError(t, err)
	require.Equal(t, b, found.Node)
}
