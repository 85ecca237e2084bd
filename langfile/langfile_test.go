package langfile_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/synless-editor/synless/langfile"
	"github.com/synless-editor/synless/notation"
)

const minimalSyn = `
name: mini
extensions: [".mini"]
root: Root
display: display
sorts:
  expr:
    - Num
constructs:
  Root:
    sort: expr
    arity:
      kind: fixed
      slots: [expr]
    notations:
      display:
        child: 0
  Num:
    sort: expr
    quick_key: "n"
    arity:
      kind: texty
    notations:
      display:
        text: {}
`

func TestParseMinimalLanguage(t *testing.T) {
	l, err := langfile.Parse([]byte(minimalSyn))
	require.NoError(t, err)
	require.Equal(t, "mini", l.Name)
	require.Equal(t, "Root", l.RootConstruct)
	require.Contains(t, l.Constructs, "Num")

	num := l.Constructs["Num"]
	require.Equal(t, 'n', num.QuickKey)
	_, ok := num.Notations["display"].(notation.Expr)
	require.True(t, ok)
}

func TestParseRejectsMissingName(t *testing.T) {
	_, err := langfile.Parse([]byte("root: Root\n"))
	require.Error(t, err)
}

func TestParseRejectsMissingRoot(t *testing.T) {
	_, err := langfile.Parse([]byte("name: x\n"))
	require.Error(t, err)
}

func TestParseAggregatesMultipleErrors(t *testing.T) {
	const bad = `
name: bad
root: Root
sorts:
  s1:
    - Missing1
constructs:
  Root:
    arity:
      kind: unknown
  Items:
    arity:
      kind: listy
`
	_, err := langfile.Parse([]byte(bad))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown arity kind")
	require.Contains(t, err.Error(), "listy arity missing element_sort")
}

func TestDecodeFoldAndRefExpr(t *testing.T) {
	const withFold = `
name: listy
root: Root
sorts:
  item:
    - Leaf
  items:
    - List
constructs:
  Root:
    sort: item
    arity:
      kind: fixed
      slots: [items]
    notations:
      display:
        child: 0
  List:
    sort: items
    arity:
      kind: listy
      element_sort: item
    notations:
      display:
        fold:
          first:
            child: 0
          join:
            concat:
              - ref: left
              - literal: ", "
              - ref: right
  Leaf:
    sort: item
    arity:
      kind: texty
    notations:
      display:
        text: {}
`
	l, err := langfile.Parse([]byte(withFold))
	require.NoError(t, err)
	list := l.Constructs["List"]
	fold, ok := list.Notations["display"].(*notation.Fold)
	require.True(t, ok)
	_, ok = fold.First.(*notation.Child)
	require.True(t, ok)
	concat, ok := fold.Join.(*notation.Concat)
	require.True(t, ok)
	ref, ok := concat.A.(*notation.RefExpr)
	require.True(t, ok)
	require.Equal(t, notation.Left, ref.Which)
}
