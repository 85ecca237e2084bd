// Package keymap is the Keymap, Layers, and Menus component: modal
// binding tables resolved by a top-down layer stack, plus the three
// menu kinds (Candidate, InputString, Char). The layer-stack "first
// match wins" lookup generalizes a dispatch-table pattern common in
// this codebase: pick the first handler in a stack that claims the
// current input, here applied to "pick the first layer that binds
// this key for the current mode".
package keymap

import "github.com/synless-editor/synless/synerr"

// KeySpec is a modifier+code key event.
type KeySpec struct {
	Ctrl  bool
	Alt   bool
	Shift bool
	Code  rune
}

// Program is what a Binding runs: either a built-in command id or an
// opaque handle into the scripting host.
type Program struct {
	BuiltinID string
	Callback  any // opaque scripting-host handle; core never interprets it
	IsBuiltin bool
}

// Binding pairs a human label with a Program.
type Binding struct {
	Label   string
	Program Program
}

// Candidate is one entry of a candidate menu: a name plus an opaque
// payload the scripting host attaches meaning to.
type Candidate struct {
	Name    string
	Payload any
}

// SpecialCandidate is a candidate with its own dedicated key binding,
// shown alongside the filtered regular candidates.
type SpecialCandidate struct {
	Candidate
	Key KeySpec
}

// CustomCandidateFunc consumes the current input string and returns a
// candidate it synthesizes on the fly, or ok=false if none applies.
type CustomCandidateFunc func(input string) (Candidate, bool)

// Keymap is a mapping from KeySpec to Binding, plus the extra
// candidate-mode bookkeeping a Candidate menu needs.
type Keymap struct {
	bindings map[KeySpec]Binding

	RegularCandidates []Candidate
	SpecialCandidates []SpecialCandidate
	CustomCandidate   CustomCandidateFunc
}

// NewKeymap returns an empty keymap.
func NewKeymap() *Keymap {
	return &Keymap{bindings: make(map[KeySpec]Binding)}
}

// Bind registers (or overwrites) a key's binding.
func (k *Keymap) Bind(key KeySpec, b Binding) {
	k.bindings[key] = b
}

// Lookup returns the binding for key, if any.
func (k *Keymap) Lookup(key KeySpec) (Binding, bool) {
	b, ok := k.bindings[key]
	return b, ok
}

// AddRegularCandidate appends a candidate shown by the filter.
func (k *Keymap) AddRegularCandidate(c Candidate) {
	k.RegularCandidates = append(k.RegularCandidates, c)
}

// BindSpecialCandidate registers a dedicated-key candidate.
func (k *Keymap) BindSpecialCandidate(key KeySpec, c Candidate) {
	k.SpecialCandidates = append(k.SpecialCandidates, SpecialCandidate{Candidate: c, Key: key})
}

// Mode discriminates the dispatch modes: tree cursor, text cursor, or an open menu.
type Mode int

const (
	Tree Mode = iota
	Text
	Menu
)

// Layer is {mode -> keymap, menu_name -> keymap}.
type Layer struct {
	Name        string
	ModeKeymaps map[Mode]*Keymap
	MenuKeymaps map[string]*Keymap
}

// NewLayer returns an empty, named layer.
func NewLayer(name string) *Layer {
	return &Layer{
		Name:        name,
		ModeKeymaps: make(map[Mode]*Keymap),
		MenuKeymaps: make(map[string]*Keymap),
	}
}

// AddModeKeymap installs km as the layer's keymap for mode.
func (l *Layer) AddModeKeymap(mode Mode, km *Keymap) { l.ModeKeymaps[mode] = km }

// AddMenuKeymap installs km as the layer's keymap for the named menu.
func (l *Layer) AddMenuKeymap(menuName string, km *Keymap) { l.MenuKeymaps[menuName] = km }

// Stack is the ordered layer stack; lookup walks top-down, first
// match wins. The top of the stack is the last
// element, matching a conventional push/pop-at-the-end slice stack.
type Stack struct {
	layers []*Layer
}

// NewStack returns an empty layer stack.
func NewStack() *Stack { return &Stack{} }

// Push adds a layer to the top of the stack.
func (s *Stack) Push(l *Layer) { s.layers = append(s.layers, l) }

// Pop removes and returns the top layer, or nil if empty.
func (s *Stack) Pop() *Layer {
	if len(s.layers) == 0 {
		return nil
	}
	l := s.layers[len(s.layers)-1]
	s.layers = s.layers[:len(s.layers)-1]
	return l
}

// ResolveMode walks the stack top-down for the given mode's keymap
// and returns the first binding found for key.
func (s *Stack) ResolveMode(mode Mode, key KeySpec) (Binding, bool) {
	for i := len(s.layers) - 1; i >= 0; i-- {
		km, ok := s.layers[i].ModeKeymaps[mode]
		if !ok {
			continue
		}
		if b, found := km.Lookup(key); found {
			return b, true
		}
	}
	return Binding{}, false
}

// ResolveMenu walks the stack top-down for the named menu's keymap
// and returns the first binding found for key.
func (s *Stack) ResolveMenu(menuName string, key KeySpec) (Binding, bool) {
	for i := len(s.layers) - 1; i >= 0; i-- {
		km, ok := s.layers[i].MenuKeymaps[menuName]
		if !ok {
			continue
		}
		if b, found := km.Lookup(key); found {
			return b, true
		}
	}
	return Binding{}, false
}

// MenuKind discriminates the three menu shapes.
type MenuKind int

const (
	KindCandidate MenuKind = iota
	KindInputString
	KindChar
)

// Menu holds selection and input state for one open menu.
type Menu struct {
	Name       string
	Kind       MenuKind
	SelectFirst bool // only meaningful for KindCandidate

	Keymap *Keymap

	Input     string
	Selection int // index into the filtered candidate list
}

// NewMenu returns a closed-state menu named name, bound to km.
func NewMenu(name string, km *Keymap) *Menu {
	return &Menu{Name: name, Keymap: km}
}

// SetKindCandidate switches the menu to Candidate mode.
func (m *Menu) SetKindCandidate(selectFirst bool) {
	m.Kind = KindCandidate
	m.SelectFirst = selectFirst
	if selectFirst {
		m.Selection = 0
	}
}

// SetKindInputString switches the menu to InputString mode.
func (m *Menu) SetKindInputString() { m.Kind = KindInputString }

// SetKindChar switches the menu to Char mode.
func (m *Menu) SetKindChar() { m.Kind = KindChar }

// FilteredCandidates returns the regular candidates whose name
// contains the current input as a (naive, case-sensitive) substring,
// the filtering behavior Candidate menus use.
func (m *Menu) FilteredCandidates() []Candidate {
	if m.Keymap == nil {
		return nil
	}
	if m.Input == "" {
		return m.Keymap.RegularCandidates
	}
	var out []Candidate
	for _, c := range m.Keymap.RegularCandidates {
		if containsSubstring(c.Name, m.Input) {
			out = append(out, c)
		}
	}
	return out
}

func containsSubstring(haystack, needle string) bool {
	hr, nr := []rune(haystack), []rune(needle)
	if len(nr) > len(hr) {
		return false
	}
	for i := 0; i+len(nr) <= len(hr); i++ {
		match := true
		for j := range nr {
			if hr[i+j] != nr[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// SelectionUp moves the selection index up within the filtered candidates.
func (m *Menu) SelectionUp() error {
	if m.Selection == 0 {
		return synerr.Wrapf(synerr.Navigation, "already at the top of the menu")
	}
	m.Selection--
	return nil
}

// SelectionDown moves the selection index down within the filtered candidates.
func (m *Menu) SelectionDown() error {
	n := len(m.FilteredCandidates())
	if n == 0 || m.Selection >= n-1 {
		return synerr.Wrapf(synerr.Navigation, "already at the bottom of the menu")
	}
	m.Selection++
	return nil
}

// Backspace removes the last rune of the input, updating the filter.
func (m *Menu) Backspace() {
	r := []rune(m.Input)
	if len(r) == 0 {
		return
	}
	m.Input = string(r[:len(r)-1])
	if m.SelectFirst {
		m.Selection = 0
	}
}

// Append adds ch to the input, updating the filter.
func (m *Menu) Append(ch rune) {
	m.Input += string(ch)
	if m.SelectFirst {
		m.Selection = 0
	}
}

// Confirm returns the chosen candidate's payload, for Candidate menus,
// the raw input string, for InputString menus, or the first input rune,
// for Char menus.
func (m *Menu) Confirm() (any, error) {
	switch m.Kind {
	case KindCandidate:
		filtered := m.FilteredCandidates()
		if m.Selection < 0 || m.Selection >= len(filtered) {
			return nil, synerr.Wrapf(synerr.NotFound, "no candidate selected")
		}
		return filtered[m.Selection].Payload, nil
	case KindInputString:
		return m.Input, nil
	case KindChar:
		r := []rune(m.Input)
		if len(r) == 0 {
			return nil, synerr.Wrapf(synerr.NotFound, "no character entered")
		}
		return r[0], nil
	default:
		return nil, synerr.Wrapf(synerr.NotFound, "unknown menu kind")
	}
}
