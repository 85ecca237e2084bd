// Package lang is the Language Registry: it holds
// construct/sort grammars and named notation sets, and answers
// whether a construct may appear in a given slot. The generic
// construct/sort tree shape generalizes a one-package-per-format
// pattern common in this codebase's analyzer sub-packages (each
// owning one format's grammar) into a single Registry that holds many
// Language grammars side by side.
package lang

import "fmt"

// ArityKind discriminates how a construct's children are shaped.
type ArityKind int

const (
	// Fixed constructs have a fixed-length, ordered sequence of
	// child slots, each with its own permitted sort. A slot may hold
	// a Hole.
	Fixed ArityKind = iota
	// Listy constructs have an ordered, variable-length sequence of
	// children all drawn from a single sort. Lists have no holes.
	Listy
	// Texty constructs hold a text string instead of children.
	Texty
)

// Arity describes a construct's child shape.
type Arity struct {
	Kind ArityKind
	// Slots holds one sort name per child slot, valid only when
	// Kind == Fixed.
	Slots []string
	// ElementSort is the sort shared by every list element, valid
	// only when Kind == Listy.
	ElementSort string
}

// FixedArity builds a Fixed arity with the given per-slot sorts.
func FixedArity(slotSorts ...string) Arity {
	return Arity{Kind: Fixed, Slots: slotSorts}
}

// ListyArity builds a Listy arity over the given element sort.
func ListyArity(elementSort string) Arity {
	return Arity{Kind: Listy, ElementSort: elementSort}
}

// TextyArity builds a Texty arity.
func TextyArity() Arity {
	return Arity{Kind: Texty}
}

// NumSlots returns the number of Fixed child slots, or 0 for Listy/Texty.
func (a Arity) NumSlots() int {
	if a.Kind != Fixed {
		return 0
	}
	return len(a.Slots)
}

// Construct is a declared node kind.
type Construct struct {
	// Name is the construct's unique name within its language.
	Name string
	// Sort is the construct's own declared sort: the name used to
	// check whether this construct satisfies a slot's required sort.
	Sort string
	// Arity is the construct's child shape.
	Arity Arity
	// QuickKey is an optional single-character quick-insert key
	//. Zero value means none.
	QuickKey rune
	// Notations maps a notation-set name to an opaque notation value
	// for this construct. The core never interprets these; it only
	// stores and hands them to the pretty-printer collaborator.
	Notations map[string]any
}

// Sort is a named set of permitted construct names.
// Members may name a construct directly, or name another sort, in
// which case that sort's own members are included transitively --
// precomputed once at load time into a sort-inclusion table.
type Sort struct {
	Name    string
	Members []string
}

// NotationSet is a named collection of per-construct notations
//. The Registry does not interpret notation
// contents (see package notation); it only tracks which set is the
// default display/source set for a language.
type NotationSet struct {
	Name string
}

// Language is a name, file-extension list, construct/sort grammar,
// root construct, and notation sets.
type Language struct {
	Name            string
	FileExtensions  []string
	Constructs      map[string]*Construct
	Sorts           map[string]*Sort
	RootConstruct   string
	DefaultDisplay  string
	DefaultSource   string // optional; "" means none declared
	NotationSetList []string
}

// validate checks the error conditions for a single language
// definition: duplicate construct name (impossible given the map key,
// checked at construction time instead), undeclared sort reference,
// missing notation for a declared construct under the default set,
// and root-construct arity != Fixed([one sort]).
func (l *Language) validate() error {
	for _, c := range l.Constructs {
		if c.Arity.Kind == Fixed {
			for _, s := range c.Arity.Slots {
				if _, ok := l.Sorts[s]; !ok {
					return fmt.Errorf("language %q: construct %q references undeclared sort %q", l.Name, c.Name, s)
				}
			}
		}
		if c.Arity.Kind == Listy {
			if _, ok := l.Sorts[c.Arity.ElementSort]; !ok {
				return fmt.Errorf("language %q: construct %q references undeclared sort %q", l.Name, c.Name, c.Arity.ElementSort)
			}
		}
		if c.Sort != "" {
			if _, ok := l.Sorts[c.Sort]; !ok {
				return fmt.Errorf("language %q: construct %q declares undeclared sort %q", l.Name, c.Name, c.Sort)
			}
		}
	}
	for _, s := range l.Sorts {
		for _, m := range s.Members {
			_, isConstruct := l.Constructs[m]
			_, isSort := l.Sorts[m]
			if !isConstruct && !isSort {
				return fmt.Errorf("language %q: sort %q references undeclared member %q", l.Name, s.Name, m)
			}
		}
	}
	if l.DefaultDisplay != "" {
		for _, c := range l.Constructs {
			if _, ok := c.Notations[l.DefaultDisplay]; !ok {
				return fmt.Errorf("language %q: construct %q missing notation for default display set %q", l.Name, c.Name, l.DefaultDisplay)
			}
		}
	}
	root, ok := l.Constructs[l.RootConstruct]
	if !ok {
		return fmt.Errorf("language %q: root construct %q not declared", l.Name, l.RootConstruct)
	}
	if root.Arity.Kind != Fixed || len(root.Arity.Slots) != 1 {
		return fmt.Errorf("language %q: root construct %q must have Fixed arity with exactly one slot", l.Name, l.RootConstruct)
	}
	return nil
}
