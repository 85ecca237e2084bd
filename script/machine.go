package script

import (
	"go.starlark.net/starlark"

	"github.com/synless-editor/synless/synerr"
)

// blockRequest is what the block() builtin sends to whichever
// goroutine is waiting on Machine.pending: the menu a script wants to
// block on, and the channel it will read the chosen payload from.
type blockRequest struct {
	menu   string
	resume chan starlark.Value
}

// callResult is what a finished (non-blocked) script invocation sends
// back on Machine.done.
type callResult struct {
	value starlark.Value
	err   error
}

// Outcome reports what happened after Invoke or Resume returns:
// either the call ran to completion (Done true), or it parked inside
// block() (Done false, Menu names which menu it is waiting on).
type Outcome struct {
	Done  bool
	Value starlark.Value
	Err   error
	Menu  string
}

// Machine is one script execution context: a starlark.Thread, its
// predeclared globals (including every Host-backed builtin), and the
// single in-flight block() (suspension occurs at exactly one point).
// This goroutine-plus-channel handshake is the idiomatic Go way to
// implement a single-threaded cooperative suspension model; no
// concurrency library appears anywhere in this corpus, so the standard
// library's goroutines and channels are the only available precedent.
type Machine struct {
	thread  *starlark.Thread
	globals starlark.StringDict
	host    Host

	pending chan blockRequest
	done    chan callResult
	// openBlock is non-nil exactly when a call is parked in block(),
	// between Invoke/Resume returning Outcome{Done:false} and the
	// matching Resume.
	openBlock *blockRequest
}

// NewMachine returns a Machine whose builtins all forward to host.
func NewMachine(host Host) *Machine {
	m := &Machine{
		host:    host,
		pending: make(chan blockRequest),
		done:    make(chan callResult, 1),
	}
	m.thread = &starlark.Thread{
		Name: "synless",
		Load: nil,
	}
	m.globals = registerBuiltins(m, host)
	return m
}

// LoadInit executes the init script's top-level statements (layer and
// keymap setup, callback definitions), returning its module-level
// globals for later lookup by name.
func (m *Machine) LoadInit(filename string, src []byte) (starlark.StringDict, error) {
	globals, err := starlark.ExecFile(m.thread, filename, src, m.globals)
	if err != nil {
		return nil, synerr.Wrapf(synerr.Script, "init script failed: %v", err)
	}
	return globals, nil
}

// block is the builtin backing the block() primitive. It
// parks the calling goroutine on a fresh resume channel until Resume
// delivers a value (or nil, for an escape-cancelled menu).
func (m *Machine) block(menuName string) (starlark.Value, error) {
	resume := make(chan starlark.Value)
	m.pending <- blockRequest{menu: menuName, resume: resume}
	v := <-resume
	if v == nil {
		return nil, synerr.Wrapf(synerr.Escape, "menu %q was cancelled", menuName)
	}
	return v, nil
}

// Invoke calls fn (a callback handle bound to a key) with args on its
// own goroutine and returns as soon as the call either finishes or
// parks in block() -- it does not wait for a parked call to resume.
func (m *Machine) Invoke(fn *starlark.Function, args ...starlark.Value) Outcome {
	go func() {
		v, err := starlark.Call(m.thread, fn, starlark.Tuple(args), nil)
		m.done <- callResult{value: v, err: err}
	}()
	return m.await()
}

// Resume delivers value to the currently parked block() call (or nil
// to signal an escape/cancel) and waits for the call to finish or
// park again.
func (m *Machine) Resume(value starlark.Value) Outcome {
	if m.openBlock == nil {
		return Outcome{Done: true, Err: synerr.Wrapf(synerr.Escape, "no script is waiting on a menu")}
	}
	ch := m.openBlock.resume
	m.openBlock = nil
	ch <- value
	return m.await()
}

func (m *Machine) await() Outcome {
	select {
	case req := <-m.pending:
		m.openBlock = &req
		return Outcome{Done: false, Menu: req.menu}
	case res := <-m.done:
		return Outcome{Done: true, Value: res.value, Err: res.err}
	}
}

// Global looks up a module-level script value by name (e.g. a
// callback function bound to a key by new_keymap/bind_key).
func (m *Machine) Global(globals starlark.StringDict, name string) (starlark.Value, bool) {
	v, ok := globals[name]
	return v, ok
}
