package lang_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/synless-editor/synless/lang"
)

func buildTestLanguage(t *testing.T) *lang.Language {
	t.Helper()
	b := lang.NewBuilder("test", ".t")
	require.NoError(t, b.Sort(&lang.Sort{Name: "expr", Members: []string{"Num", "Add"}}))
	require.NoError(t, b.Construct(&lang.Construct{
		Name: "Num", Sort: "expr", Arity: lang.TextyArity(),
		Notations: map[string]any{"display": "num"},
	}))
	require.NoError(t, b.Construct(&lang.Construct{
		Name: "Add", Sort: "expr", Arity: lang.FixedArity("expr", "expr"), QuickKey: 'a',
		Notations: map[string]any{"display": "add"},
	}))
	b.Root("Add").DefaultNotations("display", "")
	return b.Build()
}

func TestRegistryAddAndAccepts(t *testing.T) {
	r := lang.NewRegistry()
	require.NoError(t, r.Add(buildTestLanguage(t)))

	require.True(t, r.Accepts("test", "Add", "expr", "Num"))
	require.True(t, r.Accepts("test", "Add", "expr", "Add"))
	require.False(t, r.Accepts("test", "Add", "expr", "Missing"))
}

func TestRegistryAddRejectsDuplicateName(t *testing.T) {
	r := lang.NewRegistry()
	require.NoError(t, r.Add(buildTestLanguage(t)))
	require.Error(t, r.Add(buildTestLanguage(t)))
}

func TestRegistryAddRejectsUndeclaredSort(t *testing.T) {
	b := lang.NewBuilder("bad")
	require.NoError(t, b.Construct(&lang.Construct{
		Name: "Root", Arity: lang.FixedArity("missing"),
	}))
	b.Root("Root")

	r := lang.NewRegistry()
	require.Error(t, r.Add(b.Build()))
}

func TestRegistryAddRejectsBadRootArity(t *testing.T) {
	b := lang.NewBuilder("bad")
	require.NoError(t, b.Construct(&lang.Construct{
		Name: "Root", Arity: lang.ListyArity("x"),
	}))
	require.NoError(t, b.Sort(&lang.Sort{Name: "x", Members: []string{"Root"}}))
	b.Root("Root")

	r := lang.NewRegistry()
	require.Error(t, r.Add(b.Build()))
}

func TestQuickKeyLookup(t *testing.T) {
	r := lang.NewRegistry()
	require.NoError(t, r.Add(buildTestLanguage(t)))

	c, ok := r.QuickKey("test", 'a')
	require.True(t, ok)
	require.Equal(t, "Add", c.Name)

	_, ok = r.QuickKey("test", 'z')
	require.False(t, ok)
}

func TestSlotSort(t *testing.T) {
	r := lang.NewRegistry()
	require.NoError(t, r.Add(buildTestLanguage(t)))

	sort, ok := r.SlotSort("test", "Add", 0)
	require.True(t, ok)
	require.Equal(t, "expr", sort)

	_, ok = r.SlotSort("test", "Add", 5)
	require.False(t, ok)
}

func TestNotationLookup(t *testing.T) {
	r := lang.NewRegistry()
	require.NoError(t, r.Add(buildTestLanguage(t)))

	n, ok := r.Notation("test", "display", "Num")
	require.True(t, ok)
	require.Equal(t, "num", n)

	_, ok = r.Notation("test", "missing-set", "Num")
	require.False(t, ok)
}

func TestSortInclusionIsTransitive(t *testing.T) {
	b := lang.NewBuilder("nested")
	require.NoError(t, b.Sort(&lang.Sort{Name: "leaf", Members: []string{"Atom"}}))
	require.NoError(t, b.Sort(&lang.Sort{Name: "expr", Members: []string{"leaf", "Compound"}}))
	require.NoError(t, b.Construct(&lang.Construct{Name: "Atom", Sort: "leaf", Arity: lang.TextyArity(),
		Notations: map[string]any{"display": "atom"}}))
	require.NoError(t, b.Construct(&lang.Construct{Name: "Compound", Sort: "expr", Arity: lang.FixedArity("expr"),
		Notations: map[string]any{"display": "compound"}}))
	b.Root("Compound").DefaultNotations("display", "")

	r := lang.NewRegistry()
	require.NoError(t, r.Add(b.Build()))

	require.True(t, r.Accepts("nested", "Compound", "expr", "Atom"))
}
