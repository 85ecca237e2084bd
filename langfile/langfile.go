// Package langfile loads a bundled language's grammar and notations
// from a ".syn" YAML document into a lang.Language, via gopkg.in/
// yaml.v3 and the lang.Builder API. Grammar and display are data, not
// code, for every language that doesn't already get one for free from
// a languages/<name> loader's own AST shape.
package langfile

import (
	"fmt"
	"os"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/synless-editor/synless/lang"
	"github.com/synless-editor/synless/notation"
	"github.com/synless-editor/synless/synerr"
)

// file is the top-level shape of a .syn document.
type file struct {
	Name       string                 `yaml:"name"`
	Extensions []string               `yaml:"extensions"`
	Root       string                 `yaml:"root"`
	Display    string                 `yaml:"display"`
	Source     string                 `yaml:"source,omitempty"`
	Sorts      map[string][]string    `yaml:"sorts"`
	Constructs map[string]constructDef `yaml:"constructs"`
}

type constructDef struct {
	Sort      string              `yaml:"sort"`
	QuickKey  string              `yaml:"quick_key,omitempty"`
	Arity     arityDef            `yaml:"arity"`
	Notations map[string]yaml.Node `yaml:"notations"`
}

type arityDef struct {
	Kind        string   `yaml:"kind"` // "fixed", "listy", "texty"
	Slots       []string `yaml:"slots,omitempty"`
	ElementSort string   `yaml:"element_sort,omitempty"`
}

// Load reads and parses path into a registered-ready lang.Language. It
// does not call Registry.Add itself -- the caller decides whether to
// register it (and under what precedence against a same-named
// language) the way engine.Engine's LoadLanguage does.
func Load(path string) (*lang.Language, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, synerr.Wrap(synerr.IO, err)
	}
	return Parse(raw)
}

// Parse decodes the bytes of a .syn document into a lang.Language.
func Parse(raw []byte) (*lang.Language, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, synerr.Wrapf(synerr.Parse, "invalid language file: %v", err)
	}
	if f.Name == "" {
		return nil, synerr.Wrapf(synerr.Parse, "language file missing name")
	}
	if f.Root == "" {
		return nil, synerr.Wrapf(synerr.Parse, "language %q missing root construct", f.Name)
	}

	b := lang.NewBuilder(f.Name, f.Extensions...)
	var errs error
	for name, members := range f.Sorts {
		errs = multierr.Append(errs, b.Sort(&lang.Sort{Name: name, Members: members}))
	}
	for name, cd := range f.Constructs {
		c, err := buildConstruct(name, cd)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		errs = multierr.Append(errs, b.Construct(c))
	}
	if errs != nil {
		return nil, synerr.Wrap(synerr.Parse, errs)
	}
	b.Root(f.Root).DefaultNotations(f.Display, f.Source)
	return b.Build(), nil
}

func buildConstruct(name string, cd constructDef) (*lang.Construct, error) {
	var arity lang.Arity
	switch cd.Arity.Kind {
	case "fixed":
		arity = lang.FixedArity(cd.Arity.Slots...)
	case "listy":
		if cd.Arity.ElementSort == "" {
			return nil, synerr.Wrapf(synerr.Parse, "construct %q: listy arity missing element_sort", name)
		}
		arity = lang.ListyArity(cd.Arity.ElementSort)
	case "texty":
		arity = lang.TextyArity()
	default:
		return nil, synerr.Wrapf(synerr.Parse, "construct %q: unknown arity kind %q", name, cd.Arity.Kind)
	}

	var quickKey rune
	if cd.QuickKey != "" {
		r := []rune(cd.QuickKey)
		if len(r) != 1 {
			return nil, synerr.Wrapf(synerr.Parse, "construct %q: quick_key must be a single character", name)
		}
		quickKey = r[0]
	}

	notations := make(map[string]any, len(cd.Notations))
	for set, node := range cd.Notations {
		n := node
		expr, err := decodeExpr(&n)
		if err != nil {
			return nil, fmt.Errorf("construct %q notation %q: %w", name, set, err)
		}
		notations[set] = expr
	}

	return &lang.Construct{
		Name:      name,
		Sort:      cd.Sort,
		Arity:     arity,
		QuickKey:  quickKey,
		Notations: notations,
	}, nil
}

// decodeExpr decodes one notation.Expr from a YAML mapping node with
// exactly one recognized key naming the expression kind.
func decodeExpr(n *yaml.Node) (notation.Expr, error) {
	if n.Kind == yaml.ScalarNode {
		return &notation.Literal{Str: n.Value}, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, synerr.Wrapf(synerr.Parse, "notation node must be a scalar or mapping")
	}
	m := mapOf(n)

	if v, ok := m["literal"]; ok {
		return &notation.Literal{Str: v.Value}, nil
	}
	if _, ok := m["text"]; ok {
		return &notation.Text{}, nil
	}
	if v, ok := m["child"]; ok {
		var idx int
		if err := v.Decode(&idx); err != nil {
			return nil, synerr.Wrapf(synerr.Parse, "child index: %v", err)
		}
		return &notation.Child{Index: idx}, nil
	}
	if v, ok := m["ref"]; ok {
		switch v.Value {
		case "left":
			return &notation.RefExpr{Which: notation.Left}, nil
		case "right":
			return &notation.RefExpr{Which: notation.Right}, nil
		default:
			return nil, synerr.Wrapf(synerr.Parse, "ref must be 'left' or 'right', got %q", v.Value)
		}
	}
	if v, ok := m["concat"]; ok {
		return decodeSeqAsConcat(v)
	}
	if v, ok := m["choice"]; ok {
		items := v.Content
		if len(items) != 2 {
			return nil, synerr.Wrapf(synerr.Parse, "choice must have exactly 2 elements")
		}
		a, err := decodeExpr(items[0])
		if err != nil {
			return nil, err
		}
		bExpr, err := decodeExpr(items[1])
		if err != nil {
			return nil, err
		}
		return &notation.Choice{A: a, B: bExpr}, nil
	}
	if v, ok := m["indent"]; ok {
		im := mapOf(v)
		body, err := decodeExprField(im, "body")
		if err != nil {
			return nil, err
		}
		prefix, _ := im["prefix"]
		marker, _ := im["marker"]
		return &notation.Indent{
			Prefix: scalarOrEmpty(prefix),
			Marker: scalarOrEmpty(marker),
			Body:   body,
		}, nil
	}
	if _, ok := m["newline"]; ok {
		return &notation.Newline{}, nil
	}
	if v, ok := m["flat"]; ok {
		inner, err := decodeExpr(v)
		if err != nil {
			return nil, err
		}
		return &notation.Flat{E: inner}, nil
	}
	if v, ok := m["fold"]; ok {
		fm := mapOf(v)
		first, err := decodeExprField(fm, "first")
		if err != nil {
			return nil, err
		}
		join, err := decodeExprField(fm, "join")
		if err != nil {
			return nil, err
		}
		return &notation.Fold{First: first, Join: join}, nil
	}
	if v, ok := m["count"]; ok {
		cm := mapOf(v)
		zero, err := decodeExprField(cm, "zero")
		if err != nil {
			return nil, err
		}
		one, err := decodeExprField(cm, "one")
		if err != nil {
			return nil, err
		}
		many, err := decodeExprField(cm, "many")
		if err != nil {
			return nil, err
		}
		return &notation.Count{Zero: zero, One: one, Many: many}, nil
	}
	if v, ok := m["check"]; ok {
		return decodeCheck(v)
	}
	if v, ok := m["style"]; ok {
		return decodeStyle(v)
	}
	return nil, synerr.Wrapf(synerr.Parse, "notation mapping has no recognized key")
}

func decodeCheck(v *yaml.Node) (notation.Expr, error) {
	cm := mapOf(v)
	then, err := decodeExprField(cm, "then")
	if err != nil {
		return nil, err
	}
	elseExpr, err := decodeExprField(cm, "else")
	if err != nil {
		return nil, err
	}
	predStr := scalarOrEmpty(cm["pred"])
	var pred notation.Predicate
	switch predStr {
	case "is_empty_text", "":
		pred = notation.IsEmptyText
	default:
		return nil, synerr.Wrapf(synerr.Parse, "unknown check predicate %q", predStr)
	}
	var locus notation.Locus
	if lc, ok := cm["locus_child"]; ok {
		var idx int
		if err := lc.Decode(&idx); err != nil {
			return nil, synerr.Wrapf(synerr.Parse, "locus_child: %v", err)
		}
		locus = notation.Locus{ChildIndex: idx, HasChild: true}
	}
	return &notation.Check{Pred: pred, Locus: locus, Then: then, Else: elseExpr}, nil
}

func decodeStyle(v *yaml.Node) (notation.Expr, error) {
	sm := mapOf(v)
	body, err := decodeExprField(sm, "body")
	if err != nil {
		return nil, err
	}
	var props notation.Props
	if bold, ok := sm["bold"]; ok {
		_ = bold.Decode(&props.Bold)
	}
	if fg, ok := sm["fg"]; ok {
		color, err := decodeColor(fg.Value)
		if err != nil {
			return nil, err
		}
		props.FgColor, props.HasFg = color, true
	}
	if bg, ok := sm["bg"]; ok {
		color, err := decodeColor(bg.Value)
		if err != nil {
			return nil, err
		}
		props.BgColor, props.HasBg = color, true
	}
	return &notation.Style{Props: props, E: body}, nil
}

func decodeColor(name string) (notation.Color, error) {
	switch name {
	case "base":
		return notation.ColorBase, nil
	case "shade1":
		return notation.ColorShade1, nil
	case "shade2":
		return notation.ColorShade2, nil
	case "shade3":
		return notation.ColorShade3, nil
	case "accent1":
		return notation.ColorAccent1, nil
	case "accent2":
		return notation.ColorAccent2, nil
	case "error":
		return notation.ColorError, nil
	default:
		return notation.ColorNone, synerr.Wrapf(synerr.Parse, "unknown color %q", name)
	}
}

func decodeSeqAsConcat(v *yaml.Node) (notation.Expr, error) {
	if v.Kind != yaml.SequenceNode || len(v.Content) == 0 {
		return nil, synerr.Wrapf(synerr.Parse, "concat must be a non-empty sequence")
	}
	exprs := make([]notation.Expr, len(v.Content))
	for i, item := range v.Content {
		e, err := decodeExpr(item)
		if err != nil {
			return nil, err
		}
		exprs[i] = e
	}
	acc := exprs[len(exprs)-1]
	for i := len(exprs) - 2; i >= 0; i-- {
		acc = &notation.Concat{A: exprs[i], B: acc}
	}
	return acc, nil
}

func decodeExprField(m map[string]*yaml.Node, key string) (notation.Expr, error) {
	v, ok := m[key]
	if !ok {
		return nil, synerr.Wrapf(synerr.Parse, "missing required field %q", key)
	}
	return decodeExpr(v)
}

func mapOf(n *yaml.Node) map[string]*yaml.Node {
	out := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		out[n.Content[i].Value] = n.Content[i+1]
	}
	return out
}

func scalarOrEmpty(n *yaml.Node) string {
	if n == nil {
		return ""
	}
	return n.Value
}
