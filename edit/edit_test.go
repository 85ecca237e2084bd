package edit_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/synless-editor/synless/cursor"
	"github.com/synless-editor/synless/document"
	"github.com/synless-editor/synless/edit"
	"github.com/synless-editor/synless/lang"
)

const testLang = "edittest"

func buildRegistry(t *testing.T) *lang.Registry {
	t.Helper()
	b := lang.NewBuilder(testLang)
	require.NoError(t, b.Sort(&lang.Sort{Name: "root", Members: []string{"Root"}}))
	require.NoError(t, b.Sort(&lang.Sort{Name: "item", Members: []string{"Leaf", "List"}}))
	require.NoError(t, b.Construct(&lang.Construct{
		Name: "Root", Sort: "root", Arity: lang.FixedArity("item"),
		Notations: map[string]any{"display": "root"},
	}))
	require.NoError(t, b.Construct(&lang.Construct{
		Name: "Leaf", Sort: "item", Arity: lang.TextyArity(), QuickKey: 'l',
		Notations: map[string]any{"display": "leaf"},
	}))
	require.NoError(t, b.Construct(&lang.Construct{
		Name: "List", Sort: "item", Arity: lang.ListyArity("item"), QuickKey: 's',
		Notations: map[string]any{"display": "list"},
	}))
	b.Root("Root").DefaultNotations("display", "")

	r := lang.NewRegistry()
	require.NoError(t, r.Add(b.Build()))
	return r
}

func newTestDoc(t *testing.T) *document.Document {
	t.Helper()
	r := buildRegistry(t)
	d, err := document.New(r, document.Metadata{Language: testLang})
	require.NoError(t, err)
	c, err := cursor.FirstChild(d.Store(), d.Root())
	require.NoError(t, err)
	d.SetCursorRaw(c)
	return d
}

func leafConstruct(d *document.Document) *lang.Construct {
	return d.Registry.Constructs(testLang)["Leaf"]
}

func listConstruct(d *document.Document) *lang.Construct {
	return d.Registry.Constructs(testLang)["List"]
}

func TestInsertReplacesHoleAndCursorLandsOnNewNode(t *testing.T) {
	d := newTestDoc(t)
	require.NoError(t, edit.Insert(d, leafConstruct(d)))

	c := d.Cursor()
	require.Equal(t, cursor.TreeOn, c.Kind)
	v, ok := d.Store().Get(c.Node)
	require.True(t, ok)
	require.Equal(t, "Leaf", v.Construct)
	require.False(t, v.IsHole)
}

func TestBackspaceOnFixedSlotRestoresHole(t *testing.T) {
	d := newTestDoc(t)
	require.NoError(t, edit.Insert(d, leafConstruct(d)))
	require.NoError(t, edit.Backspace(d))

	v, ok := d.Store().Get(d.Cursor().Node)
	require.True(t, ok)
	require.True(t, v.IsHole)
}

func TestUndoRedoRoundTrip(t *testing.T) {
	d := newTestDoc(t)
	require.NoError(t, edit.Insert(d, leafConstruct(d)))
	afterInsert := d.Cursor().Node
	v, _ := d.Store().Get(afterInsert)
	require.Equal(t, "Leaf", v.Construct)

	require.NoError(t, d.Undo())
	v, _ = d.Store().Get(d.Cursor().Node)
	require.True(t, v.IsHole)

	require.NoError(t, d.Redo())
	v, _ = d.Store().Get(d.Cursor().Node)
	require.Equal(t, "Leaf", v.Construct)
}

func TestCutThenPasteRestoresSubtree(t *testing.T) {
	d := newTestDoc(t)
	require.NoError(t, edit.Insert(d, leafConstruct(d)))

	require.NoError(t, edit.Cut(d))
	v, ok := d.Store().Get(d.Cursor().Node)
	require.True(t, ok)
	require.True(t, v.IsHole)

	require.NoError(t, edit.Paste(d))
	v, ok = d.Store().Get(d.Cursor().Node)
	require.True(t, ok)
	require.Equal(t, "Leaf", v.Construct)
}

func TestCopyLeavesOriginalInPlace(t *testing.T) {
	d := newTestDoc(t)
	require.NoError(t, edit.Insert(d, leafConstruct(d)))
	before := d.Cursor().Node

	require.NoError(t, edit.Copy(d))
	after, ok := d.Store().Get(before)
	require.True(t, ok)
	require.Equal(t, "Leaf", after.Construct)
}

func TestInsertIntoListAppendsAndRemoveShrinks(t *testing.T) {
	d := newTestDoc(t)
	require.NoError(t, edit.Insert(d, listConstruct(d)))
	listNode := d.Cursor().Node

	before := cursor.Before(listNode, 0)
	d.SetCursorRaw(before)
	require.NoError(t, edit.Insert(d, leafConstruct(d)))
	require.NoError(t, edit.Insert(d, leafConstruct(d)))

	children, ok := d.Store().Children(listNode)
	require.True(t, ok)
	require.Len(t, children, 2)

	d.SetCursorRaw(cursor.On(children[0]))
	require.NoError(t, edit.Backspace(d))
	children, ok = d.Store().Children(listNode)
	require.True(t, ok)
	require.Len(t, children, 1)
}

func TestSaveAndGotoBookmark(t *testing.T) {
	d := newTestDoc(t)
	require.NoError(t, edit.Insert(d, leafConstruct(d)))
	target := d.Cursor().Node

	require.NoError(t, edit.SaveBookmark(d, 'a'))

	c, err := cursor.Parent(d.Store(), d.Cursor())
	require.NoError(t, err)
	d.SetCursorRaw(c)

	require.NoError(t, edit.GotoBookmark(d, 'a'))
	require.Equal(t, target, d.Cursor().Node)
}
