// Package engine is the Engine Loop: it owns every open Document, the
// keymap layer stack, the menu/keymap/layer handle tables the
// scripting surface addresses by integer, the scripting Machine, and
// the event log, and drives the render -> read key -> resolve ->
// execute -> log cycle. It implements script.Host, the same
// Host-interface trick editlog uses to reach document.Document
// without an import cycle, here one level up: script calls a builtin,
// the builtin calls engine.Engine, engine.Engine calls document/edit/
// search/lang.
package engine

import (
	"errors"

	"go.starlark.net/starlark"

	"github.com/synless-editor/synless/cursor"
	"github.com/synless-editor/synless/document"
	"github.com/synless-editor/synless/eventlog"
	"github.com/synless-editor/synless/keymap"
	"github.com/synless-editor/synless/lang"
	"github.com/synless-editor/synless/script"
	"github.com/synless-editor/synless/store"
	"github.com/synless-editor/synless/synerr"
)

// Loader parses a source file's text into a tree rooted in a fresh
// store -- the bundled languages/<name> front doors. None of these is
// reachable from the core mutation path; OpenDoc consults one only
// when the target path's extension names a registered language.
type Loader func(path string) (*store.Store, store.NodeID, error)

// Frontend is the terminal collaborator: it delivers key events and
// accepts a rendered grid. Out of scope per the document engine's own
// boundary; the engine only calls through this interface.
type Frontend interface {
	ReadKey() (keymap.KeySpec, error)
	Display(grid []string) error
}

// Engine is the Engine Loop.
type Engine struct {
	Registry *lang.Registry
	Events   *eventlog.Log

	Frontend Frontend
	Printer  PrettyPrinter

	loaders map[string]Loader

	docs       map[string]*document.Document
	order      []string
	activePath string

	stack *keymap.Stack

	keymaps map[int]*keymap.Keymap
	menus   map[int]*keymap.Menu
	layers  map[int]*keymap.Layer
	nextH   int

	menuStack []int

	machine    *script.Machine
	parkedMenu string

	builtins map[string]func(*Engine) error

	quit     bool
	ExitCode int
}

// New returns an Engine with no open documents and an empty layer
// stack; the caller's init script populates layers/keymaps/menus via
// the scripting surface before the first RunLoop iteration.
func New(registry *lang.Registry, fe Frontend, pp PrettyPrinter) *Engine {
	e := &Engine{
		Registry: registry,
		Events:   eventlog.New(0),
		Frontend: fe,
		Printer:  pp,
		loaders:  make(map[string]Loader),
		docs:     make(map[string]*document.Document),
		stack:    keymap.NewStack(),
		keymaps:  make(map[int]*keymap.Keymap),
		menus:    make(map[int]*keymap.Menu),
		layers:   make(map[int]*keymap.Layer),
	}
	e.machine = script.NewMachine(e)
	e.builtins = e.buildBuiltins()
	return e
}

// Machine returns the scripting engine so the CLI can load an init
// script and invoke its top-level callbacks.
func (e *Engine) Machine() *script.Machine { return e.machine }

// RegisterLoader installs the text-to-tree front door for a bundled
// language, consulted by OpenDoc when a path's extension resolves to
// that language.
func (e *Engine) RegisterLoader(language string, l Loader) { e.loaders[language] = l }

func (e *Engine) active() (*document.Document, error) {
	d, ok := e.docs[e.activePath]
	if !ok {
		return nil, synerr.Wrapf(synerr.NotFound, "no active document")
	}
	return d, nil
}

func (e *Engine) allocHandle() int {
	e.nextH++
	return e.nextH
}

// currentMode is Menu if a menu is open, else Text if the active
// document's cursor is in text mode, else Tree.
func (e *Engine) currentMode() keymap.Mode {
	if _, ok := e.activeMenu(); ok {
		return keymap.Menu
	}
	if d, err := e.active(); err == nil && d.Cursor().Kind == cursor.TextAt {
		return keymap.Text
	}
	return keymap.Tree
}

func (e *Engine) activeMenu() (*keymap.Menu, bool) {
	if len(e.menuStack) == 0 {
		return nil, false
	}
	m, ok := e.menus[e.menuStack[len(e.menuStack)-1]]
	return m, ok
}

// Dispatch resolves one key event against the current mode and runs
// the binding it resolves to, per spec.md §4.7's dispatch rule.
func (e *Engine) Dispatch(key keymap.KeySpec) error {
	mode := e.currentMode()
	if mode == keymap.Menu {
		return e.dispatchMenu(key)
	}
	if b, ok := e.stack.ResolveMode(mode, key); ok {
		return e.run(b.Program)
	}
	if mode == keymap.Text && isPrintable(key) {
		return e.TextEdInsertChar(string(key.Code))
	}
	e.Events.Debugf("unhandled key in %s mode", modeName(mode))
	return nil
}

func (e *Engine) dispatchMenu(key keymap.KeySpec) error {
	m, ok := e.activeMenu()
	if !ok {
		return synerr.Wrapf(synerr.NotFound, "no open menu")
	}
	if b, ok := e.stack.ResolveMenu(m.Name, key); ok {
		return e.run(b.Program)
	}
	if key == keyEscape {
		return e.Escape()
	}
	if m.Keymap != nil {
		for _, sc := range m.Keymap.SpecialCandidates {
			if sc.Key == key {
				return e.confirmMenu(sc.Candidate.Payload)
			}
		}
	}
	switch {
	case key == keyBackspace:
		m.Backspace()
		return nil
	case key == keyEnter:
		payload, err := m.Confirm()
		if err != nil {
			return err
		}
		return e.confirmMenu(payload)
	case isPrintable(key):
		switch m.Kind {
		case keymap.KindChar:
			m.Append(key.Code)
			payload, err := m.Confirm()
			if err != nil {
				return err
			}
			return e.confirmMenu(payload)
		default:
			m.Append(key.Code)
			return nil
		}
	}
	e.Events.Debugf("unhandled key in menu %q", m.Name)
	return nil
}

// confirmMenu closes the innermost menu and, if a script is parked on
// it via block(), resumes that call with the chosen payload.
func (e *Engine) confirmMenu(payload any) error {
	e.CloseMenu()
	if e.parkedMenu == "" {
		return nil
	}
	return e.resumeScript(toStarlark(payload))
}

func (e *Engine) resumeScript(v starlark.Value) error {
	e.parkedMenu = ""
	return e.handleOutcome(e.machine.Resume(v))
}

func (e *Engine) handleOutcome(out script.Outcome) error {
	if !out.Done {
		e.parkedMenu = out.Menu
		return nil
	}
	return out.Err
}

func (e *Engine) run(p keymap.Program) error {
	if p.IsBuiltin {
		fn, ok := e.builtins[p.BuiltinID]
		if !ok {
			return synerr.Wrapf(synerr.Script, "unknown builtin %q", p.BuiltinID)
		}
		return fn(e)
	}
	fn, ok := p.Callback.(*starlark.Function)
	if !ok {
		return synerr.Wrapf(synerr.Script, "binding %q has no runnable callback", p.Label)
	}
	return e.handleOutcome(e.machine.Invoke(fn))
}

func modeName(m keymap.Mode) string {
	switch m {
	case keymap.Tree:
		return "tree"
	case keymap.Text:
		return "text"
	case keymap.Menu:
		return "menu"
	default:
		return "unknown"
	}
}

// RunLoop drives render -> read key -> resolve -> execute -> log until
// a builtin sets quit (via the quit or abort commands) or the frontend
// stops delivering keys.
func (e *Engine) RunLoop() int {
	for !e.quit {
		if err := e.renderActive(); err != nil {
			e.Events.Errorf("render: %v", err)
		}
		key, err := e.Frontend.ReadKey()
		if err != nil {
			e.Events.Errorf("read key: %v", err)
			return e.ExitCode
		}
		if err := e.Dispatch(key); err != nil {
			e.handleDispatchErr(err)
		}
	}
	return e.ExitCode
}

func (e *Engine) handleDispatchErr(err error) {
	switch {
	case errors.Is(err, synerr.Abort):
		e.quit = true
		e.ExitCode = 1
	case errors.Is(err, synerr.Escape):
		e.Events.Debugf("%v", err)
	default:
		e.Events.Errorf("%v", err)
	}
}

func (e *Engine) renderActive() error {
	d, err := e.active()
	if err != nil || e.Frontend == nil || e.Printer == nil {
		return nil
	}
	notationSet := d.Registry.Language(d.Meta.Language).DefaultDisplay
	grid, err := e.Printer.Render(e.Registry, d.Store(), d.Root(), notationSet, d.Cursor(), 80)
	if err != nil {
		return err
	}
	return e.Frontend.Display(grid)
}
