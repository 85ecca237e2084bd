// Package gomod is a bundled text-to-tree loader for go.mod files. It
// parses real go.mod text with golang.org/x/mod/modfile -- the same
// library the teacher used to compare go.mod ASTs for equivalence --
// and rebuilds the parsed modfile.File as a construct tree instead of
// diffing two of them.
package gomod

import (
	"fmt"
	"os"

	"golang.org/x/mod/modfile"

	"github.com/synless-editor/synless/lang"
	"github.com/synless-editor/synless/notation"
	"github.com/synless-editor/synless/store"
	"github.com/synless-editor/synless/synerr"
)

// LanguageName is the registry key this loader's grammar is added
// under.
const LanguageName = "gomod"

// Language returns the gomod grammar: a one-slot Root over a GoModFile
// body holding a Module line, an optional Go line, and three listy
// sections for Require/Exclude/Replace directives.
func Language() *lang.Language {
	b := lang.NewBuilder(LanguageName, ".mod")

	b.Sort(&lang.Sort{Name: "requireList", Members: []string{"Require"}})
	b.Sort(&lang.Sort{Name: "excludeList", Members: []string{"Exclude"}})
	b.Sort(&lang.Sort{Name: "replaceList", Members: []string{"Replace"}})
	b.Sort(&lang.Sort{Name: "file", Members: []string{"GoModFile"}})

	// Root is the language's one-slot Fixed root, wrapping the
	// five-slot GoModFile body -- the root construct itself must stay
	// Fixed with exactly one slot, so the actual file contents live one
	// level down.
	b.Construct(&lang.Construct{
		Name:  "Root",
		Arity: lang.FixedArity("file"),
		Notations: map[string]any{
			"display": &notation.Child{Index: 0},
		},
	})
	b.Construct(&lang.Construct{
		Name:     "GoModFile",
		Sort:     "file",
		Arity:    lang.FixedArity("module", "go", "requireList", "excludeList", "replaceList"),
		QuickKey: 'g',
		Notations: map[string]any{
			"display": fold5(),
		},
	})
	b.Construct(&lang.Construct{
		Name:  "Module",
		Sort:  "module",
		Arity: lang.TextyArity(),
		Notations: map[string]any{
			"display": &notation.Concat{A: &notation.Literal{Str: "module "}, B: &notation.Text{}},
		},
	})
	b.Sort(&lang.Sort{Name: "module", Members: []string{"Module"}})
	b.Construct(&lang.Construct{
		Name:  "GoVersion",
		Sort:  "go",
		Arity: lang.TextyArity(),
		Notations: map[string]any{
			"display": &notation.Concat{A: &notation.Literal{Str: "go "}, B: &notation.Text{}},
		},
	})
	b.Sort(&lang.Sort{Name: "go", Members: []string{"GoVersion"}})
	b.Construct(&lang.Construct{
		Name:  "Require",
		Sort:  "requireList",
		Arity: lang.TextyArity(),
		Notations: map[string]any{
			"display": &notation.Concat{A: &notation.Literal{Str: "require "}, B: &notation.Text{}},
		},
	})
	b.Construct(&lang.Construct{
		Name:  "Exclude",
		Sort:  "excludeList",
		Arity: lang.TextyArity(),
		Notations: map[string]any{
			"display": &notation.Concat{A: &notation.Literal{Str: "exclude "}, B: &notation.Text{}},
		},
	})
	b.Construct(&lang.Construct{
		Name:  "Replace",
		Sort:  "replaceList",
		Arity: lang.TextyArity(),
		Notations: map[string]any{
			"display": &notation.Concat{A: &notation.Literal{Str: "replace "}, B: &notation.Text{}},
		},
	})

	b.Root("Root").DefaultNotations("display", "display")
	return b.Build()
}

func fold5() notation.Expr {
	return &notation.Concat{
		A: &notation.Child{Index: 0},
		B: &notation.Concat{
			A: &notation.Newline{},
			B: &notation.Concat{
				A: &notation.Child{Index: 1},
				B: &notation.Concat{
					A: &notation.Newline{},
					B: &notation.Concat{
						A: &notation.Child{Index: 2},
						B: &notation.Concat{
							A: &notation.Child{Index: 3},
							B: &notation.Child{Index: 4},
						},
					},
				},
			},
		},
	}
}

// Load parses path's go.mod text into a fresh store rooted at a Root
// node whose one child is the GoModFile node.
func Load(path string) (*store.Store, store.NodeID, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, store.NodeID{}, synerr.Wrap(synerr.IO, err)
	}
	f, err := modfile.Parse(path, data, nil)
	if err != nil {
		return nil, store.NodeID{}, synerr.Wrapf(synerr.Parse, "go.mod: %v", err)
	}

	s := store.New()
	root := s.Make(LanguageName, "Root", lang.FixedArity("file"))
	body := s.Make(LanguageName, "GoModFile", lang.FixedArity("module", "go", "requireList", "excludeList", "replaceList"))
	if _, err := s.Replace(root, 0, body); err != nil {
		return nil, store.NodeID{}, err
	}

	moduleNode := s.Make(LanguageName, "Module", lang.TextyArity())
	modPath := ""
	if f.Module != nil {
		modPath = f.Module.Mod.Path
	}
	s.SetText(moduleNode, modPath)
	if _, err := s.Replace(body, 0, moduleNode); err != nil {
		return nil, store.NodeID{}, err
	}

	if f.Go != nil {
		goNode := s.Make(LanguageName, "GoVersion", lang.TextyArity())
		s.SetText(goNode, f.Go.Version)
		if _, err := s.Replace(body, 1, goNode); err != nil {
			return nil, store.NodeID{}, err
		}
	}

	reqList := s.Make(LanguageName, "", lang.ListyArity("requireList"))
	for i, r := range f.Require {
		n := s.Make(LanguageName, "Require", lang.TextyArity())
		s.SetText(n, fmt.Sprintf("%s %s", r.Mod.Path, r.Mod.Version))
		if err := s.Attach(reqList, i, n); err != nil {
			return nil, store.NodeID{}, err
		}
	}
	if _, err := s.Replace(body, 2, reqList); err != nil {
		return nil, store.NodeID{}, err
	}

	exList := s.Make(LanguageName, "", lang.ListyArity("excludeList"))
	for i, x := range f.Exclude {
		n := s.Make(LanguageName, "Exclude", lang.TextyArity())
		s.SetText(n, fmt.Sprintf("%s %s", x.Mod.Path, x.Mod.Version))
		if err := s.Attach(exList, i, n); err != nil {
			return nil, store.NodeID{}, err
		}
	}
	if _, err := s.Replace(body, 3, exList); err != nil {
		return nil, store.NodeID{}, err
	}

	repList := s.Make(LanguageName, "", lang.ListyArity("replaceList"))
	for i, rp := range f.Replace {
		n := s.Make(LanguageName, "Replace", lang.TextyArity())
		s.SetText(n, fmt.Sprintf("%s => %s %s", rp.Old.Path, rp.New.Path, rp.New.Version))
		if err := s.Attach(repList, i, n); err != nil {
			return nil, store.NodeID{}, err
		}
	}
	if _, err := s.Replace(body, 4, repList); err != nil {
		return nil, store.NodeID{}, err
	}

	return s, root, nil
}
