// Package yamldoc is a bundled text-to-tree loader for plain YAML
// documents. It parses YAML text with gopkg.in/yaml.v3's yaml.Node
// tree -- the same low-level tree the teacher normalized and
// re-marshaled to compare two YAML ASTs for equivalence -- and walks
// it directly into a construct tree instead of diffing two of them.
package yamldoc

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/synless-editor/synless/lang"
	"github.com/synless-editor/synless/notation"
	"github.com/synless-editor/synless/store"
	"github.com/synless-editor/synless/synerr"
)

const LanguageName = "yamldoc"

func Language() *lang.Language {
	b := lang.NewBuilder(LanguageName, ".yaml", ".yml")
	b.Sort(&lang.Sort{Name: "node", Members: []string{"Mapping", "Sequence", "Scalar"}})

	// Root is the language's one-slot Fixed root: a YAML document's
	// top-level value can be any node kind (mapping, sequence, or bare
	// scalar), so the root wraps whichever one was actually parsed.
	b.Construct(&lang.Construct{
		Name:  "Root",
		Arity: lang.FixedArity("node"),
		Notations: map[string]any{
			"display": &notation.Child{Index: 0},
		},
	})
	b.Construct(&lang.Construct{
		Name: "Mapping", Sort: "node", Arity: lang.ListyArity("pair"), QuickKey: 'm',
		Notations: map[string]any{"display": &notation.Fold{
			First: &notation.Child{Index: 0},
			Join: &notation.Concat{
				A: &notation.RefExpr{Which: notation.Left},
				B: &notation.Concat{A: &notation.Newline{}, B: &notation.RefExpr{Which: notation.Right}},
			},
		}},
	})
	b.Sort(&lang.Sort{Name: "pair", Members: []string{"Pair"}})
	b.Construct(&lang.Construct{
		Name: "Pair", Sort: "pair", Arity: lang.FixedArity("node", "node"),
		Notations: map[string]any{"display": &notation.Concat{
			A: &notation.Child{Index: 0},
			B: &notation.Concat{A: &notation.Literal{Str: ": "}, B: &notation.Child{Index: 1}},
		}},
	})
	b.Construct(&lang.Construct{
		Name: "Sequence", Sort: "node", Arity: lang.ListyArity("node"),
		Notations: map[string]any{"display": &notation.Fold{
			First: &notation.Concat{A: &notation.Literal{Str: "- "}, B: &notation.Child{Index: 0}},
			Join: &notation.Concat{
				A: &notation.RefExpr{Which: notation.Left},
				B: &notation.Concat{
					A: &notation.Newline{},
					B: &notation.Concat{A: &notation.Literal{Str: "- "}, B: &notation.RefExpr{Which: notation.Right}},
				},
			},
		}},
	})
	b.Construct(&lang.Construct{Name: "Scalar", Sort: "node", Arity: lang.TextyArity(),
		Notations: map[string]any{"display": &notation.Text{}}})

	b.Root("Root").DefaultNotations("display", "")
	return b.Build()
}

// Load parses a YAML document and walks its root yaml.Node into a
// construct tree. Mapping/Sequence nodes become Mapping/Sequence
// constructs; scalars and aliases (resolved to their anchor's value)
// become Scalar leaves carrying the node's string value.
func Load(path string) (*store.Store, store.NodeID, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, store.NodeID{}, synerr.Wrap(synerr.IO, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, store.NodeID{}, synerr.Wrapf(synerr.Parse, "yaml document: %v", err)
	}
	if len(doc.Content) == 0 {
		return nil, store.NodeID{}, synerr.Wrapf(synerr.Parse, "yaml document: empty")
	}

	s := store.New()
	body, err := buildNode(s, doc.Content[0])
	if err != nil {
		return nil, store.NodeID{}, err
	}
	root := s.Make(LanguageName, "Root", lang.FixedArity("node"))
	if _, err := s.Replace(root, 0, body); err != nil {
		return nil, store.NodeID{}, err
	}
	return s, root, nil
}

func buildNode(s *store.Store, n *yaml.Node) (store.NodeID, error) {
	switch n.Kind {
	case yaml.MappingNode:
		mapping := s.Make(LanguageName, "Mapping", lang.ListyArity("pair"))
		for i := 0; i+1 < len(n.Content); i += 2 {
			pair := s.Make(LanguageName, "Pair", lang.FixedArity("node", "node"))
			key, err := buildNode(s, n.Content[i])
			if err != nil {
				return store.NodeID{}, err
			}
			val, err := buildNode(s, n.Content[i+1])
			if err != nil {
				return store.NodeID{}, err
			}
			if _, err := s.Replace(pair, 0, key); err != nil {
				return store.NodeID{}, err
			}
			if _, err := s.Replace(pair, 1, val); err != nil {
				return store.NodeID{}, err
			}
			if err := s.Attach(mapping, i/2, pair); err != nil {
				return store.NodeID{}, err
			}
		}
		return mapping, nil
	case yaml.SequenceNode:
		seq := s.Make(LanguageName, "Sequence", lang.ListyArity("node"))
		for i, c := range n.Content {
			child, err := buildNode(s, c)
			if err != nil {
				return store.NodeID{}, err
			}
			if err := s.Attach(seq, i, child); err != nil {
				return store.NodeID{}, err
			}
		}
		return seq, nil
	case yaml.AliasNode:
		return buildNode(s, n.Alias)
	default: // ScalarNode
		scalar := s.Make(LanguageName, "Scalar", lang.TextyArity())
		s.SetText(scalar, n.Value)
		return scalar, nil
	}
}
