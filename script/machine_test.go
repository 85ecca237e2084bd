package script_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"

	"github.com/synless-editor/synless/script"
)

// fakeHost is a minimal script.Host that records calls instead of
// driving a real engine, the same recording-fake approach editlog's
// tests use for its own Host interface.
type fakeHost struct {
	navCalls   []string
	lastLog    string
	lastDebug  string
	menus      int
	keymaps    int
	layers     int
	unsaved    bool
	currentDir string
}

func newFakeHost() *fakeHost { return &fakeHost{currentDir: "/work"} }

func (h *fakeHost) OpenDoc(string) error              { return nil }
func (h *fakeHost) NewDoc(string) error                { return nil }
func (h *fakeHost) SaveDoc() error                     { return nil }
func (h *fakeHost) SaveDocAs(string) error              { return nil }
func (h *fakeHost) CloseDoc() error                     { return nil }
func (h *fakeHost) ForceCloseVisibleDoc() error         { return nil }
func (h *fakeHost) SwitchToDoc(string) error            { return nil }
func (h *fakeHost) HasUnsavedChanges() bool             { return h.unsaved }
func (h *fakeHost) DocSwitchingCandidates() []string    { return nil }

func (h *fakeHost) CurrentDir() string                      { return h.currentDir }
func (h *fakeHost) CanonicalizePath(p string) (string, error) { return p, nil }
func (h *fakeHost) JoinPath(a, b string) string              { return a + "/" + b }
func (h *fakeHost) PathFileName(p string) string             { return p }
func (h *fakeHost) ListFilesAndDirs(string) (files, dirs []string, err error) {
	return nil, nil, nil
}

func (h *fakeHost) TreeNavNext() error       { h.navCalls = append(h.navCalls, "next"); return nil }
func (h *fakeHost) TreeNavPrev() error       { h.navCalls = append(h.navCalls, "prev"); return nil }
func (h *fakeHost) TreeNavFirst() error      { return nil }
func (h *fakeHost) TreeNavLast() error       { return nil }
func (h *fakeHost) TreeNavParent() error     { return nil }
func (h *fakeHost) TreeNavFirstChild() error { return nil }
func (h *fakeHost) TreeNavLastChild() error  { return nil }
func (h *fakeHost) TreeNavNextLeaf() error   { return nil }
func (h *fakeHost) TreeNavPrevLeaf() error   { return nil }

func (h *fakeHost) TreeEdInsert(string) error { return nil }
func (h *fakeHost) TreeEdBackspace() error    { return nil }
func (h *fakeHost) TreeEdDelete() error       { return nil }
func (h *fakeHost) TreeEdUnwrap() error       { return nil }

func (h *fakeHost) TextNavEnter() error          { return nil }
func (h *fakeHost) TextNavExit() error           { return nil }
func (h *fakeHost) TextNavLeft() error           { return nil }
func (h *fakeHost) TextNavRight() error          { return nil }
func (h *fakeHost) TextEdInsertChar(string) error { return nil }
func (h *fakeHost) TextEdDeleteBackward() error   { return nil }

func (h *fakeHost) Copy() error      { return nil }
func (h *fakeHost) Cut() error       { return nil }
func (h *fakeHost) Paste() error     { return nil }
func (h *fakeHost) PasteSwap() error { return nil }

func (h *fakeHost) SearchForSubstring(string) error { return nil }
func (h *fakeHost) SearchForRegex(string) error     { return nil }
func (h *fakeHost) SearchForConstruct(string) error { return nil }
func (h *fakeHost) SearchForNodeAtCursor() error    { return nil }
func (h *fakeHost) SearchNext() error               { return nil }
func (h *fakeHost) SearchPrev() error                { return nil }
func (h *fakeHost) SearchHighlightOff()              {}

func (h *fakeHost) SaveBookmark(string) error { return nil }
func (h *fakeHost) GotoBookmark(string) error { return nil }

func (h *fakeHost) LoadLanguage(string) error       { return nil }
func (h *fakeHost) GetLanguage() string             { return "json" }
func (h *fakeHost) LanguageConstructs() []string    { return []string{"Root"} }
func (h *fakeHost) ConstructName(token string) string { return token }
func (h *fakeHost) ConstructKey(token string) string  { return token }

func (h *fakeHost) MakeMenu(string) int {
	h.menus++
	return h.menus
}
func (h *fakeHost) SetMenuKeymap(int, int) error             { return nil }
func (h *fakeHost) SetMenuKindToCandidate(int, bool) error   { return nil }
func (h *fakeHost) SetMenuKindToInputString(int) error       { return nil }
func (h *fakeHost) OpenMenu(int) error                       { return nil }
func (h *fakeHost) CloseMenu()                               {}
func (h *fakeHost) MenuSelectionUp() error                   { return nil }
func (h *fakeHost) MenuSelectionDown() error                 { return nil }
func (h *fakeHost) MenuSelectionBackspace()                  {}

func (h *fakeHost) NewKeymap() int {
	h.keymaps++
	return h.keymaps
}
func (h *fakeHost) BindKey(int, script.KeyLiteral, string, string) error { return nil }
func (h *fakeHost) BindKeyForRegularCandidate(int, string, starlark.Value) error {
	return nil
}
func (h *fakeHost) BindKeyForSpecialCandidate(int, script.KeyLiteral, string, starlark.Value) error {
	return nil
}
func (h *fakeHost) BindKeyForCustomCandidate(int, *starlark.Function) error { return nil }
func (h *fakeHost) AddRegularCandidate(int, string, starlark.Value) error   { return nil }

func (h *fakeHost) NewLayer(string) int {
	h.layers++
	return h.layers
}
func (h *fakeHost) AddModeKeymap(int, string, int) error { return nil }
func (h *fakeHost) AddMenuKeymap(int, string, int) error { return nil }
func (h *fakeHost) RegisterLayer(int) error              { return nil }
func (h *fakeHost) AddGlobalLayer(int) error             { return nil }

func (h *fakeHost) Escape() error { return nil }
func (h *fakeHost) Abort() error  { return nil }
func (h *fakeHost) Quit() error   { return nil }

func (h *fakeHost) LogError(msg string) { h.lastLog = msg }
func (h *fakeHost) LogDebug(msg string) { h.lastDebug = msg }
func (h *fakeHost) ClearLastLog()       {}

var _ script.Host = (*fakeHost)(nil)

func TestLoadInitRunsTopLevelStatementsAndDefinesGlobals(t *testing.T) {
	h := newFakeHost()
	m := script.NewMachine(h)

	src := `
log_debug("starting up")

def on_key():
    tree_nav_next()
    return 42
`
	globals, err := m.LoadInit("init.star", []byte(src))
	require.NoError(t, err)
	require.Equal(t, "starting up", h.lastDebug)

	fn, ok := m.Global(globals, "on_key")
	require.True(t, ok)
	require.IsType(t, &starlark.Function{}, fn)
}

func TestLoadInitWrapsSyntaxErrorAsScriptError(t *testing.T) {
	h := newFakeHost()
	m := script.NewMachine(h)

	_, err := m.LoadInit("init.star", []byte("def broken(:\n"))
	require.Error(t, err)
}

func TestInvokeRunsToCompletionWithoutBlocking(t *testing.T) {
	h := newFakeHost()
	m := script.NewMachine(h)

	globals, err := m.LoadInit("init.star", []byte(`
def on_key():
    tree_nav_next()
    tree_nav_prev()
    return 42
`))
	require.NoError(t, err)

	fn, ok := m.Global(globals, "on_key")
	require.True(t, ok)

	outcome := m.Invoke(fn.(*starlark.Function))
	require.True(t, outcome.Done)
	require.NoError(t, outcome.Err)
	require.Equal(t, starlark.MakeInt(42), outcome.Value)
	require.Equal(t, []string{"next", "prev"}, h.navCalls)
}

func TestInvokeParksOnBlockAndResumeDeliversValue(t *testing.T) {
	h := newFakeHost()
	m := script.NewMachine(h)

	globals, err := m.LoadInit("init.star", []byte(`
def on_key():
    picked = block("choose_file")
    return picked
`))
	require.NoError(t, err)

	fn, ok := m.Global(globals, "on_key")
	require.True(t, ok)

	outcome := m.Invoke(fn.(*starlark.Function))
	require.False(t, outcome.Done)
	require.Equal(t, "choose_file", outcome.Menu)

	outcome = m.Resume(starlark.String("doc.mod"))
	require.True(t, outcome.Done)
	require.NoError(t, outcome.Err)
	require.Equal(t, starlark.String("doc.mod"), outcome.Value)
}

func TestResumeWithNilValueSurfacesEscapeError(t *testing.T) {
	h := newFakeHost()
	m := script.NewMachine(h)

	globals, err := m.LoadInit("init.star", []byte(`
def on_key():
    return block("choose_file")
`))
	require.NoError(t, err)

	fn, _ := m.Global(globals, "on_key")
	outcome := m.Invoke(fn.(*starlark.Function))
	require.False(t, outcome.Done)

	outcome = m.Resume(nil)
	require.True(t, outcome.Done)
	require.Error(t, outcome.Err)
}

func TestResumeWithoutAnOpenBlockReportsEscapeError(t *testing.T) {
	h := newFakeHost()
	m := script.NewMachine(h)

	outcome := m.Resume(starlark.String("anything"))
	require.True(t, outcome.Done)
	require.Error(t, outcome.Err)
}

func TestBuiltinErrorPropagatesAsInvokeOutcomeError(t *testing.T) {
	h := newFakeHost()
	m := script.NewMachine(h)

	globals, err := m.LoadInit("init.star", []byte(`
def on_key():
    canonicalize_path(1)
`))
	require.NoError(t, err)

	fn, _ := m.Global(globals, "on_key")
	outcome := m.Invoke(fn.(*starlark.Function))
	require.True(t, outcome.Done)
	require.Error(t, outcome.Err)
}

func TestMenuAndKeymapBuiltinsReturnIncrementingHandles(t *testing.T) {
	h := newFakeHost()
	m := script.NewMachine(h)

	globals, err := m.LoadInit("init.star", []byte(`
km1 = new_keymap()
km2 = new_keymap()
menu1 = make_menu("files")
layer1 = new_layer("normal")
`))
	require.NoError(t, err)

	for name, want := range map[string]int64{"km1": 1, "km2": 2, "menu1": 1, "layer1": 1} {
		v, ok := m.Global(globals, name)
		require.True(t, ok, name)
		i, ok := v.(starlark.Int)
		require.True(t, ok, fmt.Sprintf("global %s is not an int", name))
		got, ok := i.Int64()
		require.True(t, ok)
		require.Equal(t, want, got, fmt.Sprintf("global %s", name))
	}
	require.Equal(t, 2, h.keymaps)
	require.Equal(t, 1, h.menus)
	require.Equal(t, 1, h.layers)
}
