package jsonlang_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/synless-editor/synless/lang"
	"github.com/synless-editor/synless/languages/jsonlang"
	"github.com/synless-editor/synless/store"
)

func TestLanguageValidates(t *testing.T) {
	r := lang.NewRegistry()
	require.NoError(t, r.Add(jsonlang.Language()))
}

func TestNewEmptyRootIsHoleRooted(t *testing.T) {
	s := store.New()
	root := jsonlang.NewEmptyRoot(s)

	children, ok := s.Children(root)
	require.True(t, ok)
	require.Len(t, children, 1)

	view, ok := s.Get(children[0])
	require.True(t, ok)
	require.True(t, view.IsHole)
}

func TestBuildObjectWithMixedValueTypes(t *testing.T) {
	s := store.New()
	root := jsonlang.NewEmptyRoot(s)

	obj := jsonlang.NewObject(s)
	namePair, err := jsonlang.NewPair(s, "name", jsonlang.NewString(s, "widget"))
	require.NoError(t, err)
	require.NoError(t, s.Attach(obj, 0, namePair))

	arr := jsonlang.NewArray(s)
	require.NoError(t, s.Attach(arr, 0, jsonlang.NewNumber(s, "1")))
	require.NoError(t, s.Attach(arr, 1, jsonlang.NewNumber(s, "2")))
	tagsPair, err := jsonlang.NewPair(s, "tags", arr)
	require.NoError(t, err)
	require.NoError(t, s.Attach(obj, 1, tagsPair))

	activePair, err := jsonlang.NewPair(s, "active", jsonlang.NewBool(s, true))
	require.NoError(t, err)
	require.NoError(t, s.Attach(obj, 2, activePair))

	notesPair, err := jsonlang.NewPair(s, "notes", jsonlang.NewNull(s))
	require.NoError(t, err)
	require.NoError(t, s.Attach(obj, 3, notesPair))

	_, err = s.Replace(root, 0, obj)
	require.NoError(t, err)

	pairs, ok := s.Children(obj)
	require.True(t, ok)
	require.Len(t, pairs, 4)

	nameChildren, ok := s.Children(pairs[0])
	require.True(t, ok)
	keyText, _ := s.Text(nameChildren[0])
	require.Equal(t, "name", keyText)
	valView, ok := s.Get(nameChildren[1])
	require.True(t, ok)
	require.Equal(t, "String", valView.Construct)

	tagsChildren, ok := s.Children(pairs[1])
	require.True(t, ok)
	arrItems, ok := s.Children(tagsChildren[1])
	require.True(t, ok)
	require.Len(t, arrItems, 2)

	notesChildren, ok := s.Children(pairs[3])
	require.True(t, ok)
	nullView, ok := s.Get(notesChildren[1])
	require.True(t, ok)
	require.Equal(t, "Null", nullView.Construct)
}
