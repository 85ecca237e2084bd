// Package jsonlang is a small bundled language with no text loader: a
// JSON-shaped construct grammar (Object/Array/String/Number/Bool/Null)
// declared entirely through lang.Builder, the same ad hoc
// registry-construction pattern every language-loader package's own
// tests use to stand up a minimal grammar. It exists for scenario
// tests and interactive exploration that want a small, familiar tree
// shape without parsing any external source format -- the parserless
// case the other languages/<name> loaders are not.
package jsonlang

import (
	"github.com/synless-editor/synless/lang"
	"github.com/synless-editor/synless/notation"
	"github.com/synless-editor/synless/store"
)

const LanguageName = "json"

// Language returns the jsonlang grammar: a one-slot Root over a
// "value" sort (Object/Array/String/Number/Bool/Null), with Object
// modeled as a Listy sequence of Pair(Key,value) constructs the same
// way languages/yamldoc models Mapping/Pair.
func Language() *lang.Language {
	b := lang.NewBuilder(LanguageName, ".json")
	b.Sort(&lang.Sort{Name: "value", Members: []string{"Object", "Array", "String", "Number", "Bool", "Null"}})
	b.Sort(&lang.Sort{Name: "pair", Members: []string{"Pair"}})
	b.Sort(&lang.Sort{Name: "key", Members: []string{"Key"}})

	b.Construct(&lang.Construct{
		Name:  "Root",
		Arity: lang.FixedArity("value"),
		Notations: map[string]any{
			"display": &notation.Child{Index: 0},
		},
	})
	b.Construct(&lang.Construct{
		Name: "Object", Sort: "value", Arity: lang.ListyArity("pair"), QuickKey: 'o',
		Notations: map[string]any{"display": &notation.Fold{
			First: &notation.Concat{A: &notation.Literal{Str: "{"}, B: &notation.Child{Index: 0}},
			Join: &notation.Concat{
				A: &notation.RefExpr{Which: notation.Left},
				B: &notation.Concat{A: &notation.Literal{Str: ", "}, B: &notation.RefExpr{Which: notation.Right}},
			},
		}},
	})
	b.Construct(&lang.Construct{
		Name: "Pair", Sort: "pair", Arity: lang.FixedArity("key", "value"),
		Notations: map[string]any{"display": &notation.Concat{
			A: &notation.Child{Index: 0},
			B: &notation.Concat{A: &notation.Literal{Str: ": "}, B: &notation.Child{Index: 1}},
		}},
	})
	b.Construct(&lang.Construct{Name: "Key", Sort: "key", Arity: lang.TextyArity(),
		Notations: map[string]any{"display": &notation.Concat{
			A: &notation.Literal{Str: "\""}, B: &notation.Concat{A: &notation.Text{}, B: &notation.Literal{Str: "\""}},
		}}})
	b.Construct(&lang.Construct{
		Name: "Array", Sort: "value", Arity: lang.ListyArity("value"), QuickKey: 'a',
		Notations: map[string]any{"display": &notation.Fold{
			First: &notation.Concat{A: &notation.Literal{Str: "["}, B: &notation.Child{Index: 0}},
			Join: &notation.Concat{
				A: &notation.RefExpr{Which: notation.Left},
				B: &notation.Concat{A: &notation.Literal{Str: ", "}, B: &notation.RefExpr{Which: notation.Right}},
			},
		}},
	})
	b.Construct(&lang.Construct{Name: "String", Sort: "value", Arity: lang.TextyArity(), QuickKey: 's',
		Notations: map[string]any{"display": &notation.Concat{
			A: &notation.Literal{Str: "\""}, B: &notation.Concat{A: &notation.Text{}, B: &notation.Literal{Str: "\""}},
		}}})
	b.Construct(&lang.Construct{Name: "Number", Sort: "value", Arity: lang.TextyArity(), QuickKey: 'n',
		Notations: map[string]any{"display": &notation.Text{}}})
	b.Construct(&lang.Construct{Name: "Bool", Sort: "value", Arity: lang.TextyArity(), QuickKey: 'b',
		Notations: map[string]any{"display": &notation.Text{}}})
	b.Construct(&lang.Construct{Name: "Null", Sort: "value", Arity: lang.TextyArity(),
		Notations: map[string]any{"display": &notation.Literal{Str: "null"}}})

	b.Root("Root").DefaultNotations("display", "")
	return b.Build()
}

// NewEmptyRoot builds a fresh jsonlang document rooted at a Root node
// whose one slot is a Hole, the same construction scenario tests and
// document.New use for any other language.
func NewEmptyRoot(s *store.Store) store.NodeID {
	return s.Make(LanguageName, "Root", lang.FixedArity("value"))
}

// NewString makes a detached String leaf carrying the given text.
func NewString(s *store.Store, text string) store.NodeID {
	n := s.Make(LanguageName, "String", lang.TextyArity())
	s.SetText(n, text)
	return n
}

// NewNumber makes a detached Number leaf carrying the given literal text.
func NewNumber(s *store.Store, literal string) store.NodeID {
	n := s.Make(LanguageName, "Number", lang.TextyArity())
	s.SetText(n, literal)
	return n
}

// NewBool makes a detached Bool leaf carrying "true" or "false".
func NewBool(s *store.Store, v bool) store.NodeID {
	n := s.Make(LanguageName, "Bool", lang.TextyArity())
	if v {
		s.SetText(n, "true")
	} else {
		s.SetText(n, "false")
	}
	return n
}

// NewNull makes a detached Null leaf.
func NewNull(s *store.Store) store.NodeID {
	return s.Make(LanguageName, "Null", lang.TextyArity())
}

// NewArray makes a detached, empty Array list node.
func NewArray(s *store.Store) store.NodeID {
	return s.Make(LanguageName, "Array", lang.ListyArity("value"))
}

// NewObject makes a detached, empty Object list node.
func NewObject(s *store.Store) store.NodeID {
	return s.Make(LanguageName, "Object", lang.ListyArity("pair"))
}

// NewPair makes a detached Pair(Key,value) node for the given key and
// value, attaching the value as its second slot.
func NewPair(s *store.Store, key string, value store.NodeID) (store.NodeID, error) {
	pair := s.Make(LanguageName, "Pair", lang.FixedArity("key", "value"))
	k := s.Make(LanguageName, "Key", lang.TextyArity())
	s.SetText(k, key)
	if _, err := s.Replace(pair, 0, k); err != nil {
		return store.NodeID{}, err
	}
	if _, err := s.Replace(pair, 1, value); err != nil {
		return store.NodeID{}, err
	}
	return pair, nil
}
