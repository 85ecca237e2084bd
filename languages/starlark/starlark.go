// Package starlark is a bundled text-to-tree loader for Starlark
// (.star) files. It parses real Starlark text with
// go.starlark.net/syntax -- the same library the teacher used to diff
// two Starlark ASTs for equivalence, stripping position info and
// docstrings first -- and walks the resulting *syntax.File into a
// construct tree instead of comparing two of them.
package starlark

import (
	"fmt"
	"os"

	"go.starlark.net/syntax"

	"github.com/synless-editor/synless/lang"
	"github.com/synless-editor/synless/notation"
	"github.com/synless-editor/synless/store"
	"github.com/synless-editor/synless/synerr"
)

const LanguageName = "starlark"

// Language returns the starlark grammar: a one-slot Root over a
// StarlarkFile(Listy "stmt") body of Def(Fixed: name,body)/
// Assign(Texty)/LoadStmt(Texty)/OtherStmt(Texty) constructs. A Def's
// body is itself a StarlarkFile-shaped "stmt" list, so nested function
// bodies are real navigable structure, not flattened text.
func Language() *lang.Language {
	b := lang.NewBuilder(LanguageName, ".star", ".bzl")
	b.Sort(&lang.Sort{Name: "file", Members: []string{"StarlarkFile"}})
	b.Sort(&lang.Sort{Name: "stmt", Members: []string{"Def", "Assign", "LoadStmt", "OtherStmt"}})
	b.Sort(&lang.Sort{Name: "name", Members: []string{"DeclName"}})

	b.Construct(&lang.Construct{
		Name: "Root", Arity: lang.FixedArity("file"),
		Notations: map[string]any{"display": &notation.Child{Index: 0}},
	})
	b.Construct(&lang.Construct{
		Name: "StarlarkFile", Sort: "file", Arity: lang.ListyArity("stmt"), QuickKey: 'f',
		Notations: map[string]any{"display": &notation.Fold{
			First: &notation.Child{Index: 0},
			Join: &notation.Concat{A: &notation.RefExpr{Which: notation.Left},
				B: &notation.Concat{A: &notation.Newline{}, B: &notation.RefExpr{Which: notation.Right}}},
		}},
	})
	b.Construct(&lang.Construct{
		Name: "Def", Sort: "stmt", Arity: lang.FixedArity("name", "file"), QuickKey: 'd',
		Notations: map[string]any{"display": &notation.Concat{
			A: &notation.Literal{Str: "def "},
			B: &notation.Concat{A: &notation.Child{Index: 0}, B: &notation.Child{Index: 1}},
		}},
	})
	b.Construct(&lang.Construct{Name: "DeclName", Sort: "name", Arity: lang.TextyArity(),
		Notations: map[string]any{"display": &notation.Text{}}})
	b.Construct(&lang.Construct{Name: "Assign", Sort: "stmt", Arity: lang.TextyArity(),
		Notations: map[string]any{"display": &notation.Text{}}})
	b.Construct(&lang.Construct{Name: "LoadStmt", Sort: "stmt", Arity: lang.TextyArity(),
		Notations: map[string]any{"display": &notation.Text{}}})
	b.Construct(&lang.Construct{Name: "OtherStmt", Sort: "stmt", Arity: lang.TextyArity(),
		Notations: map[string]any{"display": &notation.Text{}}})

	b.Root("Root").DefaultNotations("display", "display")
	return b.Build()
}

// Load parses a Starlark file into a construct tree: a Root whose one
// child is a StarlarkFile listing one stmt child per top-level statement. def statements
// recurse into their own nested StarlarkFile body; assignments, load
// statements, and anything else are kept as formatted source text.
func Load(path string) (*store.Store, store.NodeID, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, store.NodeID{}, synerr.Wrap(synerr.IO, err)
	}
	file, err := syntax.Parse(path, data, 0)
	if err != nil {
		return nil, store.NodeID{}, synerr.Wrapf(synerr.Parse, "starlark file: %v", err)
	}

	s := store.New()
	root := s.Make(LanguageName, "Root", lang.FixedArity("file"))
	body := stmtListNode(s, file.Stmts)
	if _, err := s.Replace(root, 0, body); err != nil {
		return nil, store.NodeID{}, err
	}
	return s, root, nil
}

func stmtListNode(s *store.Store, stmts []syntax.Stmt) store.NodeID {
	list := s.Make(LanguageName, "StarlarkFile", lang.ListyArity("stmt"))
	for i, stmt := range stmts {
		node := stmtNode(s, stmt)
		_ = s.Attach(list, i, node)
	}
	return list
}

func stmtNode(s *store.Store, stmt syntax.Stmt) store.NodeID {
	switch st := stmt.(type) {
	case *syntax.DefStmt:
		def := s.Make(LanguageName, "Def", lang.FixedArity("name", "file"))
		name := s.Make(LanguageName, "DeclName", lang.TextyArity())
		s.SetText(name, st.Name.Name)
		_, _ = s.Replace(def, 0, name)
		_, _ = s.Replace(def, 1, stmtListNode(s, st.Body))
		return def
	case *syntax.LoadStmt:
		n := s.Make(LanguageName, "LoadStmt", lang.TextyArity())
		s.SetText(n, fmt.Sprintf("load(%q, ...)", st.Module.Value))
		return n
	case *syntax.AssignStmt:
		n := s.Make(LanguageName, "Assign", lang.TextyArity())
		s.SetText(n, fmt.Sprintf("%v %s %v", st.LHS, st.Op, st.RHS))
		return n
	default:
		n := s.Make(LanguageName, "OtherStmt", lang.TextyArity())
		s.SetText(n, fmt.Sprintf("%T", stmt))
		return n
	}
}
