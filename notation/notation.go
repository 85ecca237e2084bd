// Package notation is the declarative notation-expression tree
// describing how a construct is pretty-printed. The core stores these
// verbatim (as a lang.Construct's per-notation-set opaque value) and
// delegates layout to the pretty-printer collaborator; this package
// only defines the expression shape, the way an AST package defines a
// tree of nodes without itself doing anything with them beyond
// storage and traversal.
package notation

// Expr is the interface every notation expression node implements.
type Expr interface {
	expr()
}

// Literal renders a fixed string.
type Literal struct {
	Str string
}

func (*Literal) expr() {}

// Text renders the Texty node's own text payload.
type Text struct{}

func (*Text) expr() {}

// Ref picks out which side of a Fold a sub-expression refers to.
type Ref int

const (
	// Left refers to the already-folded accumulator.
	Left Ref = iota
	// Right refers to the next element being folded in.
	Right
)

// Child renders the i-th child of the current node.
type Child struct {
	Index int
}

func (*Child) expr() {}

// Concat renders A followed by B.
type Concat struct {
	A, B Expr
}

func (*Concat) expr() {}

// Choice renders A if it fits the layout width budget, else B. The
// core never evaluates widths itself -- that's the pretty-printer
// collaborator's job -- it only stores the pair.
type Choice struct {
	A, B Expr
}

func (*Choice) expr() {}

// Indent renders Body indented by Prefix, optionally preceded by a
// Marker on the first line (e.g. a bullet or a brace).
type Indent struct {
	Prefix string
	Marker string // optional; empty means none
	Body   Expr
}

func (*Indent) expr() {}

// Newline renders a single line break.
type Newline struct{}

func (*Newline) expr() {}

// Flat forces E to render without line breaks.
type Flat struct {
	E Expr
}

func (*Flat) expr() {}

// Fold renders a Listy node's elements by starting from First and
// repeatedly combining with Join, referencing the accumulator as Left
// and the next element as Right.
type Fold struct {
	First Expr
	Join  Expr
}

func (*Fold) expr() {}

// RefExpr appears only inside a Fold's Join expression, selecting
// which side of the fold -- the accumulator (Left) or the element
// being folded in (Right) -- to render at this position.
type RefExpr struct {
	Which Ref
}

func (*RefExpr) expr() {}

// Count renders differently depending on how many elements a Listy
// node has: exactly zero, exactly one, or more than one.
type Count struct {
	Zero Expr
	One  Expr
	Many Expr
}

func (*Count) expr() {}

// Predicate is a condition a Check expression tests.
type Predicate int

const (
	// IsEmptyText holds when the current Texty node's text is empty.
	IsEmptyText Predicate = iota
)

// Locus names the node a Check's predicate is evaluated against. An
// empty Locus means the current node.
type Locus struct {
	ChildIndex int
	HasChild   bool
}

// Check renders Then if Pred holds at Locus, else Else.
type Check struct {
	Pred  Predicate
	Locus Locus
	Then  Expr
	Else  Expr
}

func (*Check) expr() {}

// Color is an enumerated palette of shade tokens, not a raw RGB
// triple -- the palette is owned by the frontend collaborator, the
// core only names a slot in it.
type Color int

const (
	// ColorNone means no color override.
	ColorNone Color = iota
	ColorBase
	ColorShade1
	ColorShade2
	ColorShade3
	ColorAccent1
	ColorAccent2
	ColorError
)

// StyleToken marks a span boundary or focus point within a styled run.
type StyleToken int

const (
	// Open marks the start of a styled span.
	Open StyleToken = iota
	// Close marks the end of a styled span.
	Close
	// FocusMark marks where the cursor focus ring should render.
	FocusMark
)

// Props is the style properties attached by a Style expression.
type Props struct {
	FgColor  Color
	HasFg    bool
	BgColor  Color
	HasBg    bool
	Bold     bool
	Priority int
}

// Style wraps E with rendering properties.
type Style struct {
	Props Props
	E     Expr
}

func (*Style) expr() {}
