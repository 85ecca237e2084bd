// Package bazel is a bundled text-to-tree loader for Bazel BUILD files.
// It parses BUILD/BUILD.bazel text with
// github.com/bazelbuild/buildtools/build -- the same library the
// teacher used to walk rule call expressions looking for dependency
// changes -- and rebuilds each top-level statement as a construct tree
// instead of diffing two of them.
package bazel

import (
	"os"

	"github.com/bazelbuild/buildtools/build"

	"github.com/synless-editor/synless/lang"
	"github.com/synless-editor/synless/notation"
	"github.com/synless-editor/synless/store"
	"github.com/synless-editor/synless/synerr"
)

const LanguageName = "bazel"

func Language() *lang.Language {
	b := lang.NewBuilder(LanguageName, ".bazel", ".bzl")
	b.Sort(&lang.Sort{Name: "file", Members: []string{"BuildFile"}})
	b.Sort(&lang.Sort{Name: "stmt", Members: []string{"Rule", "LoadStmt", "OtherStmt"}})
	b.Sort(&lang.Sort{Name: "attr", Members: []string{"Attr"}})

	// Root is the language's one-slot Fixed root; the actual
	// BuildFile statement list lives one level down since a Listy
	// construct cannot itself be the root.
	b.Construct(&lang.Construct{
		Name:  "Root",
		Arity: lang.FixedArity("file"),
		Notations: map[string]any{
			"display": &notation.Child{Index: 0},
		},
	})
	b.Construct(&lang.Construct{
		Name: "BuildFile", Sort: "file", Arity: lang.ListyArity("stmt"), QuickKey: 'b',
		Notations: map[string]any{"display": &notation.Fold{
			First: &notation.Child{Index: 0},
			Join: &notation.Concat{
				A: &notation.RefExpr{Which: notation.Left},
				B: &notation.Concat{A: &notation.Newline{}, B: &notation.RefExpr{Which: notation.Right}},
			},
		}},
	})
	b.Construct(&lang.Construct{
		Name: "Rule", Sort: "stmt", Arity: lang.FixedArity("kind", "attr"),
		Notations: map[string]any{"display": &notation.Concat{
			A: &notation.Child{Index: 0},
			B: &notation.Concat{A: &notation.Literal{Str: "("}, B: &notation.Child{Index: 1}},
		}},
	})
	b.Construct(&lang.Construct{Name: "RuleKind", Sort: "kind", Arity: lang.TextyArity(),
		Notations: map[string]any{"display": &notation.Text{}}})
	b.Sort(&lang.Sort{Name: "kind", Members: []string{"RuleKind"}})
	b.Construct(&lang.Construct{Name: "Attr", Sort: "attr", Arity: lang.TextyArity(),
		Notations: map[string]any{"display": &notation.Text{}}})
	b.Construct(&lang.Construct{Name: "LoadStmt", Sort: "stmt", Arity: lang.TextyArity(),
		Notations: map[string]any{"display": &notation.Text{}}})
	b.Construct(&lang.Construct{Name: "OtherStmt", Sort: "stmt", Arity: lang.TextyArity(),
		Notations: map[string]any{"display": &notation.Text{}}})

	b.Root("Root").DefaultNotations("display", "display")
	return b.Build()
}

// Load parses a BUILD file into a construct tree: a Root whose one
// child is a BuildFile listing one stmt child per top-level expression. A call expression
// that looks like a rule invocation (Ident(...)) becomes a Rule with
// its keyword arguments flattened into Attr leaves; anything else
// (load statements, comment blocks, bare expressions) is kept as
// source text, since this loader's purpose is round-trippable
// navigation, not full rule-semantics modeling.
func Load(path string) (*store.Store, store.NodeID, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, store.NodeID{}, synerr.Wrap(synerr.IO, err)
	}
	f, err := build.Parse(path, data)
	if err != nil {
		return nil, store.NodeID{}, synerr.Wrapf(synerr.Parse, "bazel file: %v", err)
	}

	s := store.New()
	root := s.Make(LanguageName, "Root", lang.FixedArity("file"))
	body := s.Make(LanguageName, "BuildFile", lang.ListyArity("stmt"))
	for i, stmt := range f.Stmt {
		node := statementNode(s, stmt)
		if err := s.Attach(body, i, node); err != nil {
			return nil, store.NodeID{}, err
		}
	}
	if _, err := s.Replace(root, 0, body); err != nil {
		return nil, store.NodeID{}, err
	}
	return s, root, nil
}

func statementNode(s *store.Store, stmt build.Expr) store.NodeID {
	if load, ok := stmt.(*build.LoadStmt); ok {
		n := s.Make(LanguageName, "LoadStmt", lang.TextyArity())
		s.SetText(n, build.FormatString(load))
		return n
	}
	call, ok := stmt.(*build.CallExpr)
	if !ok {
		n := s.Make(LanguageName, "OtherStmt", lang.TextyArity())
		s.SetText(n, build.FormatString(stmt))
		return n
	}
	ident, ok := call.X.(*build.Ident)
	if !ok {
		n := s.Make(LanguageName, "OtherStmt", lang.TextyArity())
		s.SetText(n, build.FormatString(stmt))
		return n
	}

	rule := s.Make(LanguageName, "Rule", lang.FixedArity("kind", "attr"))
	kind := s.Make(LanguageName, "RuleKind", lang.TextyArity())
	s.SetText(kind, ident.Name)
	_, _ = s.Replace(rule, 0, kind)

	attrs := s.Make(LanguageName, "", lang.ListyArity("attr"))
	for i, arg := range call.List {
		attr := s.Make(LanguageName, "Attr", lang.TextyArity())
		s.SetText(attr, build.FormatString(arg))
		_ = s.Attach(attrs, i, attr)
	}
	_, _ = s.Replace(rule, 1, attrs)
	return rule
}
