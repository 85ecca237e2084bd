package keymap_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/synless-editor/synless/keymap"
)

func TestKeymapBindAndLookup(t *testing.T) {
	km := keymap.NewKeymap()
	key := keymap.KeySpec{Code: 'j'}
	km.Bind(key, keymap.Binding{Label: "next", Program: keymap.Program{IsBuiltin: true, BuiltinID: "tree_nav_next"}})

	b, ok := km.Lookup(key)
	require.True(t, ok)
	require.Equal(t, "next", b.Label)

	_, ok = km.Lookup(keymap.KeySpec{Code: 'k'})
	require.False(t, ok)
}

func TestStackResolveModeTopLayerWins(t *testing.T) {
	s := keymap.NewStack()
	key := keymap.KeySpec{Code: 'x'}

	base := keymap.NewLayer("base")
	baseKm := keymap.NewKeymap()
	baseKm.Bind(key, keymap.Binding{Label: "base-binding"})
	base.AddModeKeymap(keymap.Tree, baseKm)
	s.Push(base)

	top := keymap.NewLayer("top")
	topKm := keymap.NewKeymap()
	topKm.Bind(key, keymap.Binding{Label: "top-binding"})
	top.AddModeKeymap(keymap.Tree, topKm)
	s.Push(top)

	b, ok := s.ResolveMode(keymap.Tree, key)
	require.True(t, ok)
	require.Equal(t, "top-binding", b.Label)
}

func TestStackResolveModeFallsThroughWhenTopLayerLacksKey(t *testing.T) {
	s := keymap.NewStack()
	key := keymap.KeySpec{Code: 'x'}

	base := keymap.NewLayer("base")
	baseKm := keymap.NewKeymap()
	baseKm.Bind(key, keymap.Binding{Label: "base-binding"})
	base.AddModeKeymap(keymap.Tree, baseKm)
	s.Push(base)

	top := keymap.NewLayer("top")
	top.AddModeKeymap(keymap.Tree, keymap.NewKeymap())
	s.Push(top)

	b, ok := s.ResolveMode(keymap.Tree, key)
	require.True(t, ok)
	require.Equal(t, "base-binding", b.Label)
}

func TestMenuFilteredCandidatesBySubstring(t *testing.T) {
	km := keymap.NewKeymap()
	km.AddRegularCandidate(keymap.Candidate{Name: "apple", Payload: 1})
	km.AddRegularCandidate(keymap.Candidate{Name: "banana", Payload: 2})
	km.AddRegularCandidate(keymap.Candidate{Name: "grape", Payload: 3})

	m := keymap.NewMenu("open", km)
	m.SetKindCandidate(true)
	m.Append('a')
	m.Append('p')

	filtered := m.FilteredCandidates()
	require.Len(t, filtered, 2)
	names := []string{filtered[0].Name, filtered[1].Name}
	require.ElementsMatch(t, []string{"apple", "grape"}, names)
}

func TestMenuConfirmCandidateReturnsPayload(t *testing.T) {
	km := keymap.NewKeymap()
	km.AddRegularCandidate(keymap.Candidate{Name: "only", Payload: "chosen"})

	m := keymap.NewMenu("open", km)
	m.SetKindCandidate(true)

	payload, err := m.Confirm()
	require.NoError(t, err)
	require.Equal(t, "chosen", payload)
}

func TestMenuConfirmInputStringReturnsInput(t *testing.T) {
	m := keymap.NewMenu("save-as", keymap.NewKeymap())
	m.SetKindInputString()
	m.Append('a')
	m.Append('.')
	m.Append('t')
	m.Backspace()
	m.Append('m')

	payload, err := m.Confirm()
	require.NoError(t, err)
	require.Equal(t, "a.m", payload)
}

func TestMenuSelectionBounds(t *testing.T) {
	km := keymap.NewKeymap()
	km.AddRegularCandidate(keymap.Candidate{Name: "a"})
	km.AddRegularCandidate(keymap.Candidate{Name: "b"})
	m := keymap.NewMenu("m", km)
	m.SetKindCandidate(false)

	require.Error(t, m.SelectionUp())
	require.NoError(t, m.SelectionDown())
	require.Error(t, m.SelectionDown())
	require.NoError(t, m.SelectionUp())
}
