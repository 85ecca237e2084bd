package lang

import "fmt"

// Registry holds every loaded Language and answers acceptance queries
// in O(1) using a per-language slot-sort x construct table computed
// once at load time.
type Registry struct {
	languages map[string]*Language
	// accept[lang][sort][construct] is true if construct may fill a
	// slot whose sort is sort, precomputed by closure over sort
	// membership and sort-inclusion.
	accept map[string]map[string]map[string]bool
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		languages: make(map[string]*Language),
		accept:    make(map[string]map[string]map[string]bool),
	}
}

// Add validates and registers a Language, computing its acceptance
// table. It returns an error for any declared-language error condition.
func (r *Registry) Add(l *Language) error {
	if _, exists := r.languages[l.Name]; exists {
		return fmt.Errorf("language %q already registered", l.Name)
	}
	if err := l.validate(); err != nil {
		return err
	}
	r.languages[l.Name] = l
	r.accept[l.Name] = buildAcceptTable(l)
	return nil
}

// buildAcceptTable computes, for every declared sort, the closure of
// construct names reachable via direct membership or transitive
// sort-inclusion.
func buildAcceptTable(l *Language) map[string]map[string]bool {
	closure := make(map[string]map[string]bool, len(l.Sorts))
	for name := range l.Sorts {
		seen := make(map[string]bool)
		constructs := make(map[string]bool)
		var visit func(string)
		visit = func(sortName string) {
			if seen[sortName] {
				return
			}
			seen[sortName] = true
			s, ok := l.Sorts[sortName]
			if !ok {
				return
			}
			for _, m := range s.Members {
				if _, isConstruct := l.Constructs[m]; isConstruct {
					constructs[m] = true
					continue
				}
				visit(m)
			}
		}
		visit(name)
		closure[name] = constructs
	}
	return closure
}

// Languages returns every registered language's name.
func (r *Registry) Languages() []string {
	out := make([]string, 0, len(r.languages))
	for name := range r.languages {
		out = append(out, name)
	}
	return out
}

// Language returns the registered language by name, or nil if absent.
func (r *Registry) Language(name string) *Language {
	return r.languages[name]
}

// Constructs returns the named language's constructs, or nil.
func (r *Registry) Constructs(langName string) map[string]*Construct {
	l := r.languages[langName]
	if l == nil {
		return nil
	}
	return l.Constructs
}

// Sorts returns the named language's sorts, or nil.
func (r *Registry) Sorts(langName string) map[string]*Sort {
	l := r.languages[langName]
	if l == nil {
		return nil
	}
	return l.Sorts
}

// Accepts reports whether candidateConstruct may fill a slot of the
// given sort in the named language. parentConstruct and slot are
// accepted for signature symmetry and future per-slot overrides, but
// the current grammar model checks sort membership only, not
// parent/slot identity.
func (r *Registry) Accepts(langName, parentConstruct string, slotSort string, candidateConstruct string) bool {
	table, ok := r.accept[langName]
	if !ok {
		return false
	}
	members, ok := table[slotSort]
	if !ok {
		return false
	}
	return members[candidateConstruct]
}

// SlotSort returns the sort required by the given Fixed slot index of
// construct, or the element sort if construct is Listy and slot is
// ignored (pass 0). ok is false if construct is unknown, Texty, or the
// slot index is out of range.
func (r *Registry) SlotSort(langName, constructName string, slot int) (sort string, ok bool) {
	l := r.languages[langName]
	if l == nil {
		return "", false
	}
	c, ok := l.Constructs[constructName]
	if !ok {
		return "", false
	}
	switch c.Arity.Kind {
	case Fixed:
		if slot < 0 || slot >= len(c.Arity.Slots) {
			return "", false
		}
		return c.Arity.Slots[slot], true
	case Listy:
		return c.Arity.ElementSort, true
	default:
		return "", false
	}
}

// Notation returns the opaque notation value for construct under the
// named notation set, and whether it was present.
func (r *Registry) Notation(langName, notationSet, constructName string) (any, bool) {
	l := r.languages[langName]
	if l == nil {
		return nil, false
	}
	c, ok := l.Constructs[constructName]
	if !ok {
		return nil, false
	}
	n, ok := c.Notations[notationSet]
	return n, ok
}

// QuickKey returns the construct registered under the given
// quick-insert key for a language, and whether one was found.
func (r *Registry) QuickKey(langName string, key rune) (*Construct, bool) {
	l := r.languages[langName]
	if l == nil {
		return nil, false
	}
	for _, c := range l.Constructs {
		if c.QuickKey == key {
			return c, true
		}
	}
	return nil, false
}

// Builder incrementally assembles a Language before registration,
// rejecting duplicate construct or sort names as they are added.
type Builder struct {
	lang *Language
}

// NewBuilder starts building a language with the given name and file extensions.
func NewBuilder(name string, fileExtensions ...string) *Builder {
	return &Builder{lang: &Language{
		Name:           name,
		FileExtensions: fileExtensions,
		Constructs:     make(map[string]*Construct),
		Sorts:          make(map[string]*Sort),
	}}
}

// Construct registers a construct, erroring on a duplicate name.
func (b *Builder) Construct(c *Construct) error {
	if _, exists := b.lang.Constructs[c.Name]; exists {
		return fmt.Errorf("language %q: duplicate construct name %q", b.lang.Name, c.Name)
	}
	b.lang.Constructs[c.Name] = c
	return nil
}

// Sort registers a sort, erroring on a duplicate name.
func (b *Builder) Sort(s *Sort) error {
	if _, exists := b.lang.Sorts[s.Name]; exists {
		return fmt.Errorf("language %q: duplicate sort name %q", b.lang.Name, s.Name)
	}
	b.lang.Sorts[s.Name] = s
	return nil
}

// Root sets the designated root construct.
func (b *Builder) Root(constructName string) *Builder {
	b.lang.RootConstruct = constructName
	return b
}

// DefaultNotations sets the default display and (optionally) default
// source notation set names.
func (b *Builder) DefaultNotations(display, source string) *Builder {
	b.lang.DefaultDisplay = display
	b.lang.DefaultSource = source
	return b
}

// Build returns the assembled Language without registering it; pass
// it to Registry.Add for validation and registration.
func (b *Builder) Build() *Language {
	return b.lang
}
