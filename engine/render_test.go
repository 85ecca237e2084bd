package engine_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/synless-editor/synless/cursor"
	"github.com/synless-editor/synless/engine"
	"github.com/synless-editor/synless/lang"
	"github.com/synless-editor/synless/notation"
	"github.com/synless-editor/synless/store"
)

const renderLang = "rendertest"

func buildRenderRegistry(t *testing.T) *lang.Registry {
	t.Helper()
	b := lang.NewBuilder(renderLang)
	require.NoError(t, b.Sort(&lang.Sort{Name: "root", Members: []string{"Root"}}))
	require.NoError(t, b.Sort(&lang.Sort{Name: "item", Members: []string{"Leaf", "List"}}))

	require.NoError(t, b.Construct(&lang.Construct{
		Name: "Root", Sort: "root", Arity: lang.FixedArity("item"),
		Notations: map[string]any{"display": &notation.Child{Index: 0}},
	}))
	require.NoError(t, b.Construct(&lang.Construct{
		Name: "Leaf", Sort: "item", Arity: lang.TextyArity(),
		Notations: map[string]any{"display": &notation.Text{}},
	}))
	require.NoError(t, b.Construct(&lang.Construct{
		Name: "List", Sort: "item", Arity: lang.ListyArity("item"),
		Notations: map[string]any{
			"display": &notation.Fold{
				First: &notation.Child{Index: 0},
				Join: &notation.Concat{
					A: &notation.RefExpr{Which: notation.Left},
					B: &notation.Concat{
						A: &notation.Literal{Str: ","},
						B: &notation.RefExpr{Which: notation.Right},
					},
				},
			},
		},
	}))
	b.Root("Root").DefaultNotations("display", "")

	r := lang.NewRegistry()
	require.NoError(t, r.Add(b.Build()))
	return r
}

func makeLeaf(s *store.Store, text string) store.NodeID {
	n := s.Make(renderLang, "Leaf", lang.TextyArity())
	s.SetText(n, text)
	return n
}

func TestRenderChildAndTextNotations(t *testing.T) {
	reg := buildRenderRegistry(t)
	s := store.New()
	leaf := makeLeaf(s, "hello")
	root := s.Make(renderLang, "Root", lang.FixedArity("item"))
	_, err := s.Replace(root, 0, leaf)
	require.NoError(t, err)

	lines, err := engine.PlainPrinter{}.Render(reg, s, root, "display", cursor.On(root), 80)
	require.NoError(t, err)
	require.Equal(t, []string{"hello"}, lines)
}

func TestRenderHoleRendersPlaceholder(t *testing.T) {
	reg := buildRenderRegistry(t)
	s := store.New()
	root := s.Make(renderLang, "Root", lang.FixedArity("item"))

	lines, err := engine.PlainPrinter{}.Render(reg, s, root, "display", cursor.On(root), 80)
	require.NoError(t, err)
	require.Equal(t, []string{"<>"}, lines)
}

func TestRenderFoldJoinsWithSeparator(t *testing.T) {
	reg := buildRenderRegistry(t)
	s := store.New()
	list := s.Make(renderLang, "List", lang.ListyArity("item"))
	require.NoError(t, s.Attach(list, 0, makeLeaf(s, "a")))
	require.NoError(t, s.Attach(list, 1, makeLeaf(s, "b")))
	require.NoError(t, s.Attach(list, 2, makeLeaf(s, "c")))
	root := s.Make(renderLang, "Root", lang.FixedArity("item"))
	_, err := s.Replace(root, 0, list)
	require.NoError(t, err)

	lines, err := engine.PlainPrinter{}.Render(reg, s, root, "display", cursor.On(root), 80)
	require.NoError(t, err)
	require.Equal(t, []string{"a,b,c"}, lines)
}

func TestRenderFoldOnEmptyListErrorsWhenFirstNeedsAChild(t *testing.T) {
	reg := buildRenderRegistry(t)
	s := store.New()
	// An empty List has no children, and Fold evaluates First even for
	// an empty list, so First (Child{0}) has nothing to resolve against
	// and Render reports an error instead of a rendering.
	list := s.Make(renderLang, "List", lang.ListyArity("item"))
	root := s.Make(renderLang, "Root", lang.FixedArity("item"))
	_, err := s.Replace(root, 0, list)
	require.NoError(t, err)

	_, err = engine.PlainPrinter{}.Render(reg, s, root, "display", cursor.On(root), 80)
	require.Error(t, err) // List{} has no child 0 for First to resolve
}

func TestRenderFoldSingleElementSkipsJoin(t *testing.T) {
	reg := buildRenderRegistry(t)
	s := store.New()
	list := s.Make(renderLang, "List", lang.ListyArity("item"))
	require.NoError(t, s.Attach(list, 0, makeLeaf(s, "only")))
	root := s.Make(renderLang, "Root", lang.FixedArity("item"))
	_, err := s.Replace(root, 0, list)
	require.NoError(t, err)

	lines, err := engine.PlainPrinter{}.Render(reg, s, root, "display", cursor.On(root), 80)
	require.NoError(t, err)
	require.Equal(t, []string{"only"}, lines)
}

func TestRenderChoicePicksFlatBranchWhenItFits(t *testing.T) {
	reg := lang.NewRegistry()
	b := lang.NewBuilder(renderLang + "choice")
	require.NoError(t, b.Sort(&lang.Sort{Name: "root", Members: []string{"Root"}}))
	require.NoError(t, b.Construct(&lang.Construct{
		Name: "Root", Sort: "root", Arity: lang.FixedArity("x") /* unused */,
		Notations: map[string]any{
			"display": &notation.Choice{
				A: &notation.Literal{Str: "short"},
				B: &notation.Literal{Str: "fallback"},
			},
		},
	}))
	require.NoError(t, b.Sort(&lang.Sort{Name: "x", Members: []string{"Root"}}))
	b.Root("Root").DefaultNotations("display", "")
	require.NoError(t, reg.Add(b.Build()))

	s := store.New()
	root := s.Make(renderLang+"choice", "Root", lang.FixedArity("x"))

	lines, err := engine.PlainPrinter{}.Render(reg, s, root, "display", cursor.On(root), 80)
	require.NoError(t, err)
	require.Equal(t, []string{"short"}, lines)
}
