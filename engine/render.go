package engine

import (
	"strings"

	"github.com/synless-editor/synless/cursor"
	"github.com/synless-editor/synless/lang"
	"github.com/synless-editor/synless/notation"
	"github.com/synless-editor/synless/store"
	"github.com/synless-editor/synless/synerr"
)

// PrettyPrinter lays notation.Expr trees out against a fixed width and
// returns the rendered lines. The engine core stores notations as
// opaque per-construct values and never walks them itself -- that
// walk is this collaborator's job, the same split document/editlog
// draws between deciding an edit is legal and applying it.
type PrettyPrinter interface {
	Render(reg *lang.Registry, s *store.Store, root store.NodeID, notationSet string, cur cursor.Cursor, width int) ([]string, error)
}

// PlainPrinter is a width-aware, no-color PrettyPrinter: Choice picks
// its first branch if the flattened rendering fits width, else its
// second; Style is stripped to its wrapped expression. It has no
// terminal dependency, matching the engine core's own avoidance of any
// frontend assumption.
type PlainPrinter struct{}

// block is one node's rendering: a list of lines plus the width of its
// longest line, so an enclosing Concat/Indent can decide whether a
// Choice's flat branch still fits.
type block struct {
	lines []string
	width int
}

func singleLine(s string) block {
	return block{lines: []string{s}, width: len([]rune(s))}
}

func (b block) join(other block) block {
	if len(b.lines) == 0 {
		return other
	}
	if len(other.lines) == 0 {
		return b
	}
	out := make([]string, 0, len(b.lines)+len(other.lines)-1)
	out = append(out, b.lines[:len(b.lines)-1]...)
	merged := b.lines[len(b.lines)-1] + other.lines[0]
	out = append(out, merged)
	out = append(out, other.lines[1:]...)
	w := maxWidth(out)
	return block{lines: out, width: w}
}

func maxWidth(lines []string) int {
	w := 0
	for _, l := range lines {
		if n := len([]rune(l)); n > w {
			w = n
		}
	}
	return w
}

func indentBlock(b block, prefix, marker string) block {
	out := make([]string, len(b.lines))
	for i, l := range b.lines {
		p := prefix
		if i == 0 && marker != "" {
			p = marker
		}
		out[i] = p + l
	}
	return block{lines: out, width: maxWidth(out)}
}

func flatten(b block) block {
	return singleLine(strings.Join(b.lines, ""))
}

// evalCtx carries the current node and registry through an Expr walk;
// Fold's Join expression additionally carries the accumulator/element
// pair that RefExpr resolves against.
type evalCtx struct {
	reg         *lang.Registry
	s           *store.Store
	lang        string
	notationSet string
	width       int

	node store.NodeID

	inFold    bool
	foldLeft  block
	foldRight block
}

// Render implements PrettyPrinter.
func (PlainPrinter) Render(reg *lang.Registry, s *store.Store, root store.NodeID, notationSet string, cur cursor.Cursor, width int) ([]string, error) {
	ctx := &evalCtx{reg: reg, s: s, notationSet: notationSet, width: width}
	b, err := ctx.renderNode(root, width)
	if err != nil {
		return nil, err
	}
	return b.lines, nil
}

func (c *evalCtx) renderNode(node store.NodeID, width int) (block, error) {
	v, ok := c.s.Get(node)
	if !ok {
		return block{}, synerr.Wrapf(synerr.Navigation, "node does not resolve")
	}
	if v.IsHole {
		return singleLine("<>"), nil
	}
	expr, ok := c.reg.Notation(v.Lang, c.notationSet, v.Construct)
	if !ok {
		return singleLine(v.Construct), nil
	}
	e, ok := expr.(notation.Expr)
	if !ok {
		return block{}, synerr.Wrapf(synerr.Grammar, "construct %q has no notation.Expr under set %q", v.Construct, c.notationSet)
	}
	child := &evalCtx{reg: c.reg, s: c.s, lang: v.Lang, notationSet: c.notationSet, width: width, node: node}
	return child.eval(e, width)
}

func (c *evalCtx) eval(e notation.Expr, width int) (block, error) {
	switch ex := e.(type) {
	case *notation.Literal:
		return singleLine(ex.Str), nil

	case *notation.Text:
		text, ok := c.s.Text(c.node)
		if !ok {
			return block{}, synerr.Wrapf(synerr.Grammar, "Text notation used on a non-texty node")
		}
		return singleLine(text), nil

	case *notation.Child:
		children, ok := c.s.Children(c.node)
		if !ok || ex.Index < 0 || ex.Index >= len(children) {
			return block{}, synerr.Wrapf(synerr.Grammar, "notation Child index %d out of range", ex.Index)
		}
		return c.renderNode(children[ex.Index], width)
	case *notation.RefExpr:
		if !c.inFold {
			return block{}, synerr.Wrapf(synerr.Grammar, "RefExpr used outside a Fold join")
		}
		if ex.Which == notation.Left {
			return c.foldLeft, nil
		}
		return c.foldRight, nil

	case *notation.Concat:
		a, err := c.eval(ex.A, width)
		if err != nil {
			return block{}, err
		}
		b, err := c.eval(ex.B, width-a.width)
		if err != nil {
			return block{}, err
		}
		return a.join(b), nil

	case *notation.Choice:
		a, err := c.eval(ex.A, width)
		if err != nil {
			return block{}, err
		}
		if len(a.lines) == 1 && a.width <= width {
			return a, nil
		}
		return c.eval(ex.B, width)

	case *notation.Indent:
		body, err := c.eval(ex.Body, width-len([]rune(ex.Prefix)))
		if err != nil {
			return block{}, err
		}
		return indentBlock(body, ex.Prefix, ex.Marker), nil

	case *notation.Newline:
		return block{lines: []string{"", ""}}, nil

	case *notation.Flat:
		body, err := c.eval(ex.E, width)
		if err != nil {
			return block{}, err
		}
		return flatten(body), nil

	case *notation.Fold:
		return c.evalFold(ex, width)

	case *notation.Count:
		children, _ := c.s.Children(c.node)
		switch len(children) {
		case 0:
			return c.eval(ex.Zero, width)
		case 1:
			return c.eval(ex.One, width)
		default:
			return c.eval(ex.Many, width)
		}

	case *notation.Check:
		ok, err := c.checkPredicate(ex.Pred, ex.Locus)
		if err != nil {
			return block{}, err
		}
		if ok {
			return c.eval(ex.Then, width)
		}
		return c.eval(ex.Else, width)

	case *notation.Style:
		return c.eval(ex.E, width)

	default:
		return block{}, synerr.Wrapf(synerr.Grammar, "unknown notation expression %T", e)
	}
}

func (c *evalCtx) checkPredicate(pred notation.Predicate, locus notation.Locus) (bool, error) {
	target := c.node
	if locus.HasChild {
		children, ok := c.s.Children(c.node)
		if !ok || locus.ChildIndex < 0 || locus.ChildIndex >= len(children) {
			return false, synerr.Wrapf(synerr.Grammar, "Check locus child index %d out of range", locus.ChildIndex)
		}
		target = children[locus.ChildIndex]
	}
	switch pred {
	case notation.IsEmptyText:
		text, ok := c.s.Text(target)
		return ok && text == "", nil
	default:
		return false, synerr.Wrapf(synerr.Grammar, "unknown notation predicate %d", pred)
	}
}

// evalFold renders a Listy node's elements: First is evaluated in the
// listy node's own context (e.g. Child{0} picks the first element),
// covering the empty-list case too; Join is then repeated once per
// remaining element with Left bound to the running accumulator and
// Right to that element's own rendering.
func (c *evalCtx) evalFold(f *notation.Fold, width int) (block, error) {
	children, ok := c.s.Children(c.node)
	if !ok {
		return block{}, synerr.Wrapf(synerr.Grammar, "Fold used on a non-listy node")
	}
	acc, err := c.eval(f.First, width)
	if err != nil {
		return block{}, err
	}
	if len(children) == 0 {
		return acc, nil
	}
	for _, ch := range children[1:] {
		right, err := c.renderNode(ch, width)
		if err != nil {
			return block{}, err
		}
		joinCtx := &evalCtx{
			reg: c.reg, s: c.s, lang: c.lang, notationSet: c.notationSet, width: width,
			node: c.node, inFold: true, foldLeft: acc, foldRight: right,
		}
		acc, err = joinCtx.eval(f.Join, width)
		if err != nil {
			return block{}, err
		}
	}
	return acc, nil
}
