package engine

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.starlark.net/starlark"

	"github.com/synless-editor/synless/cursor"
	"github.com/synless-editor/synless/document"
	"github.com/synless-editor/synless/edit"
	"github.com/synless-editor/synless/editlog"
	"github.com/synless-editor/synless/keymap"
	"github.com/synless-editor/synless/lang"
	"github.com/synless-editor/synless/langfile"
	"github.com/synless-editor/synless/script"
	"github.com/synless-editor/synless/search"
	"github.com/synless-editor/synless/store"
	"github.com/synless-editor/synless/synerr"
)

var _ script.Host = (*Engine)(nil)

// --- Document lifecycle ---

func (e *Engine) languageForPath(path string) (*lang.Language, bool) {
	ext := filepath.Ext(path)
	for _, name := range e.Registry.Languages() {
		l := e.Registry.Language(name)
		for _, fe := range l.FileExtensions {
			if fe == ext || "."+fe == ext {
				return l, true
			}
		}
	}
	return nil, false
}

func (e *Engine) openBlank(path string, l *lang.Language) error {
	d, err := document.New(e.Registry, document.Metadata{Path: path, Language: l.Name, Name: filepath.Base(path)})
	if err != nil {
		return err
	}
	e.docs[path] = d
	e.order = append(e.order, path)
	e.activePath = path
	return nil
}

// OpenDoc opens path, parsing it with the registered loader for the
// language its extension names, if one is registered; otherwise opens
// a blank document of that language. Languages with no loader are the
// parserless case spec.md §1 allows.
func (e *Engine) OpenDoc(path string) error {
	if _, ok := e.docs[path]; ok {
		e.activePath = path
		return nil
	}
	l, ok := e.languageForPath(path)
	if !ok {
		return synerr.Wrapf(synerr.NotFound, "no registered language for %q", path)
	}
	loader, hasLoader := e.loaders[l.Name]
	if !hasLoader {
		return e.openBlank(path, l)
	}
	s, root, err := loader(path)
	if err != nil {
		return synerr.Wrap(synerr.IO, err)
	}
	meta := document.Metadata{Path: path, Language: l.Name, Name: filepath.Base(path)}
	e.docs[path] = document.FromParsedTree(e.Registry, meta, s, root)
	e.order = append(e.order, path)
	e.activePath = path
	return nil
}

// NewDoc creates a blank document of the language inferred from
// path's extension and makes it active.
func (e *Engine) NewDoc(path string) error {
	l, ok := e.languageForPath(path)
	if !ok {
		return synerr.Wrapf(synerr.NotFound, "no registered language for %q", path)
	}
	return e.openBlank(path, l)
}

// SaveDoc writes the active document's default-source (or default-
// display, absent one) notation rendering to its path -- the engine
// core never defines a tree-to-text serializer of its own (persistence
// format stability is a named non-goal); this is the simplest faithful
// stand-in, grounded on the same PrettyPrinter collaborator the
// render step already uses.
func (e *Engine) SaveDoc() error {
	d, err := e.active()
	if err != nil {
		return err
	}
	return e.saveTo(d, d.Meta.Path)
}

func (e *Engine) SaveDocAs(path string) error {
	d, err := e.active()
	if err != nil {
		return err
	}
	if err := e.saveTo(d, path); err != nil {
		return err
	}
	delete(e.docs, d.Meta.Path)
	d.Meta.Path = path
	e.docs[path] = d
	e.activePath = path
	return nil
}

func (e *Engine) saveTo(d *document.Document, path string) error {
	if e.Printer == nil {
		return synerr.Wrapf(synerr.IO, "no pretty-printer configured to render %q", path)
	}
	l := e.Registry.Language(d.Meta.Language)
	notationSet := l.DefaultSource
	if notationSet == "" {
		notationSet = l.DefaultDisplay
	}
	lines, err := e.Printer.Render(e.Registry, d.Store(), d.Root(), notationSet, d.Cursor(), 1<<30)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return synerr.Wrap(synerr.IO, err)
	}
	d.Meta.Modified = false
	return nil
}

func (e *Engine) CloseDoc() error {
	d, err := e.active()
	if err != nil {
		return err
	}
	if d.Meta.Modified {
		return synerr.Wrapf(synerr.IO, "document %q has unsaved changes", d.Meta.Path)
	}
	return e.forceClose(d.Meta.Path)
}

func (e *Engine) ForceCloseVisibleDoc() error {
	d, err := e.active()
	if err != nil {
		return err
	}
	return e.forceClose(d.Meta.Path)
}

func (e *Engine) forceClose(path string) error {
	delete(e.docs, path)
	for i, p := range e.order {
		if p == path {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	if e.activePath == path {
		e.activePath = ""
		if len(e.order) > 0 {
			e.activePath = e.order[len(e.order)-1]
		}
	}
	return nil
}

func (e *Engine) SwitchToDoc(path string) error {
	if _, ok := e.docs[path]; !ok {
		return synerr.Wrapf(synerr.NotFound, "document %q is not open", path)
	}
	e.activePath = path
	return nil
}

func (e *Engine) HasUnsavedChanges() bool {
	for _, d := range e.docs {
		if d.Meta.Modified {
			return true
		}
	}
	return false
}

func (e *Engine) DocSwitchingCandidates() []string {
	out := make([]string, 0, len(e.order))
	for _, p := range e.order {
		if p != e.activePath {
			out = append(out, p)
		}
	}
	return out
}

// --- Path utilities ---

func (e *Engine) CurrentDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return wd
}

func (e *Engine) CanonicalizePath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", synerr.Wrap(synerr.IO, err)
	}
	return abs, nil
}

func (e *Engine) JoinPath(a, b string) string { return filepath.Join(a, b) }

func (e *Engine) PathFileName(p string) string { return filepath.Base(p) }

func (e *Engine) ListFilesAndDirs(p string) (files, dirs []string, err error) {
	entries, readErr := os.ReadDir(p)
	if readErr != nil {
		return nil, nil, synerr.Wrap(synerr.IO, readErr)
	}
	for _, ent := range entries {
		if ent.IsDir() {
			dirs = append(dirs, ent.Name())
		} else {
			files = append(files, ent.Name())
		}
	}
	sort.Strings(files)
	sort.Strings(dirs)
	return files, dirs, nil
}

// --- Tree navigation ---

func (e *Engine) navigate(f func(*document.Document) (cursor.Cursor, error)) error {
	d, err := e.active()
	if err != nil {
		return err
	}
	c, err := f(d)
	if err != nil {
		return err
	}
	d.SetCursorRaw(c)
	return nil
}

func (e *Engine) anchor(d *document.Document) store.NodeID {
	c := d.Cursor()
	if c.Kind == cursor.TreeBefore {
		return c.Parent
	}
	return c.Node
}

func (e *Engine) TreeNavNext() error {
	return e.navigate(func(d *document.Document) (cursor.Cursor, error) { return cursor.Next(d.Store(), d.Cursor()) })
}
func (e *Engine) TreeNavPrev() error {
	return e.navigate(func(d *document.Document) (cursor.Cursor, error) { return cursor.Prev(d.Store(), d.Cursor()) })
}
func (e *Engine) TreeNavFirst() error {
	return e.navigate(func(d *document.Document) (cursor.Cursor, error) { return cursor.First(d.Store(), d.Cursor()) })
}
func (e *Engine) TreeNavLast() error {
	return e.navigate(func(d *document.Document) (cursor.Cursor, error) { return cursor.Last(d.Store(), d.Cursor()) })
}
func (e *Engine) TreeNavParent() error {
	return e.navigate(func(d *document.Document) (cursor.Cursor, error) { return cursor.Parent(d.Store(), d.Cursor()) })
}
func (e *Engine) TreeNavFirstChild() error {
	return e.navigate(func(d *document.Document) (cursor.Cursor, error) {
		return cursor.FirstChild(d.Store(), e.anchor(d))
	})
}
func (e *Engine) TreeNavLastChild() error {
	return e.navigate(func(d *document.Document) (cursor.Cursor, error) {
		return cursor.LastChild(d.Store(), e.anchor(d))
	})
}
func (e *Engine) TreeNavNextLeaf() error {
	return e.navigate(func(d *document.Document) (cursor.Cursor, error) {
		return cursor.NextLeaf(d.Store(), d.Root(), d.Cursor())
	})
}
func (e *Engine) TreeNavPrevLeaf() error {
	return e.navigate(func(d *document.Document) (cursor.Cursor, error) {
		return cursor.PrevLeaf(d.Store(), d.Root(), d.Cursor())
	})
}

// --- Tree editing ---

func (e *Engine) TreeEdInsert(constructName string) error {
	d, err := e.active()
	if err != nil {
		return err
	}
	c, ok := e.Registry.Constructs(d.Meta.Language)[constructName]
	if !ok {
		return synerr.Wrapf(synerr.Grammar, "unknown construct %q", constructName)
	}
	return edit.Insert(d, c)
}

func (e *Engine) TreeEdBackspace() error {
	d, err := e.active()
	if err != nil {
		return err
	}
	return edit.Backspace(d)
}

func (e *Engine) TreeEdDelete() error {
	d, err := e.active()
	if err != nil {
		return err
	}
	return edit.Delete(d)
}

func (e *Engine) TreeEdUnwrap() error {
	d, err := e.active()
	if err != nil {
		return err
	}
	return edit.Unwrap(d)
}

// --- Text navigation and editing ---

func (e *Engine) TextNavEnter() error {
	return e.navigate(func(d *document.Document) (cursor.Cursor, error) { return cursor.EnterText(d.Store(), d.Cursor()) })
}
func (e *Engine) TextNavExit() error {
	return e.navigate(func(d *document.Document) (cursor.Cursor, error) { return cursor.ExitText(d.Cursor()) })
}
func (e *Engine) TextNavLeft() error {
	return e.navigate(func(d *document.Document) (cursor.Cursor, error) { return cursor.TextLeft(d.Store(), d.Cursor()) })
}
func (e *Engine) TextNavRight() error {
	return e.navigate(func(d *document.Document) (cursor.Cursor, error) { return cursor.TextRight(d.Store(), d.Cursor()) })
}

func (e *Engine) TextEdInsertChar(ch string) error {
	d, err := e.active()
	if err != nil {
		return err
	}
	c := d.Cursor()
	if c.Kind != cursor.TextAt {
		return synerr.Wrapf(synerr.Navigation, "text_ed_insert_char requires a text cursor")
	}
	text, ok := d.Store().Text(c.Node)
	if !ok {
		return synerr.Wrapf(synerr.Navigation, "cursor node is not texty")
	}
	r := []rune(text)
	idx := c.CharIndex
	if idx < 0 || idx > len(r) {
		idx = len(r)
	}
	newText := string(r[:idx]) + ch + string(r[idx:])
	d.BeginGroup()
	if err := d.Record(&editlog.SetText{Node: c.Node, NewText: newText}); err != nil {
		d.AbortGroup()
		return err
	}
	d.SetCursorRaw(cursor.InText(c.Node, idx+len([]rune(ch))))
	d.CommitGroup()
	return nil
}

func (e *Engine) TextEdDeleteBackward() error {
	d, err := e.active()
	if err != nil {
		return err
	}
	c := d.Cursor()
	if c.Kind != cursor.TextAt {
		return synerr.Wrapf(synerr.Navigation, "text_ed_delete_backward requires a text cursor")
	}
	if c.CharIndex == 0 {
		return synerr.Wrapf(synerr.Navigation, "already at start of text")
	}
	text, ok := d.Store().Text(c.Node)
	if !ok {
		return synerr.Wrapf(synerr.Navigation, "cursor node is not texty")
	}
	r := []rune(text)
	newText := string(r[:c.CharIndex-1]) + string(r[c.CharIndex:])
	d.BeginGroup()
	if err := d.Record(&editlog.SetText{Node: c.Node, NewText: newText}); err != nil {
		d.AbortGroup()
		return err
	}
	d.SetCursorRaw(cursor.InText(c.Node, c.CharIndex-1))
	d.CommitGroup()
	return nil
}

// --- Clipboard ---

func (e *Engine) Copy() error {
	d, err := e.active()
	if err != nil {
		return err
	}
	return edit.Copy(d)
}
func (e *Engine) Cut() error {
	d, err := e.active()
	if err != nil {
		return err
	}
	return edit.Cut(d)
}
func (e *Engine) Paste() error {
	d, err := e.active()
	if err != nil {
		return err
	}
	return edit.Paste(d)
}
func (e *Engine) PasteSwap() error {
	d, err := e.active()
	if err != nil {
		return err
	}
	return edit.PasteSwap(d)
}

// --- Search ---

func (e *Engine) SearchForSubstring(s string) error {
	d, err := e.active()
	if err != nil {
		return err
	}
	d.Search.SetQuery(search.NewSubstringQuery(s))
	return nil
}

func (e *Engine) SearchForRegex(pattern string) error {
	d, err := e.active()
	if err != nil {
		return err
	}
	q, err := search.NewRegexQuery(pattern)
	if err != nil {
		return err
	}
	d.Search.SetQuery(q)
	return nil
}

func (e *Engine) SearchForConstruct(name string) error {
	d, err := e.active()
	if err != nil {
		return err
	}
	d.Search.SetQuery(search.NewConstructQuery(name))
	return nil
}

func (e *Engine) SearchForNodeAtCursor() error {
	d, err := e.active()
	if err != nil {
		return err
	}
	c := d.Cursor()
	if c.Kind != cursor.TreeOn {
		return synerr.Wrapf(synerr.Navigation, "search_for_node_at_cursor requires a tree cursor")
	}
	d.Search.SetQuery(search.NewStructuralQuery(c.Node))
	return nil
}

func (e *Engine) SearchNext() error {
	d, err := e.active()
	if err != nil {
		return err
	}
	c, err := d.Search.Next(d.Store(), d.Root(), d.Cursor())
	if err != nil {
		return err
	}
	d.SetCursorRaw(c)
	return nil
}

func (e *Engine) SearchPrev() error {
	d, err := e.active()
	if err != nil {
		return err
	}
	c, err := d.Search.Prev(d.Store(), d.Root(), d.Cursor())
	if err != nil {
		return err
	}
	d.SetCursorRaw(c)
	return nil
}

func (e *Engine) SearchHighlightOff() {
	if d, err := e.active(); err == nil {
		d.Search.ClearHighlight()
	}
}

// --- Bookmarks ---

func runeOf(s string) (rune, error) {
	r := []rune(s)
	if len(r) != 1 {
		return 0, synerr.Wrapf(synerr.Parse, "bookmark name must be a single character, got %q", s)
	}
	return r[0], nil
}

func (e *Engine) SaveBookmark(ch string) error {
	d, err := e.active()
	if err != nil {
		return err
	}
	r, err := runeOf(ch)
	if err != nil {
		return err
	}
	return edit.SaveBookmark(d, r)
}

func (e *Engine) GotoBookmark(ch string) error {
	d, err := e.active()
	if err != nil {
		return err
	}
	r, err := runeOf(ch)
	if err != nil {
		return err
	}
	return edit.GotoBookmark(d, r)
}

// --- Language registry ---

func (e *Engine) LoadLanguage(path string) error {
	l, err := langfile.Load(path)
	if err != nil {
		return err
	}
	return e.Registry.Add(l)
}

func (e *Engine) GetLanguage() string {
	d, err := e.active()
	if err != nil {
		return ""
	}
	return d.Meta.Language
}

func (e *Engine) LanguageConstructs() []string {
	d, err := e.active()
	if err != nil {
		return nil
	}
	constructs := e.Registry.Constructs(d.Meta.Language)
	out := make([]string, 0, len(constructs))
	for name := range constructs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (e *Engine) ConstructName(token string) string {
	d, err := e.active()
	if err != nil {
		return ""
	}
	if _, ok := e.Registry.Constructs(d.Meta.Language)[token]; ok {
		return token
	}
	return ""
}

func (e *Engine) ConstructKey(token string) string {
	d, err := e.active()
	if err != nil {
		return ""
	}
	c, ok := e.Registry.Constructs(d.Meta.Language)[token]
	if !ok || c.QuickKey == 0 {
		return ""
	}
	return string(c.QuickKey)
}

// --- Menu lifecycle ---

func (e *Engine) MakeMenu(name string) int {
	h := e.allocHandle()
	e.menus[h] = keymap.NewMenu(name, nil)
	return h
}

func (e *Engine) SetMenuKeymap(menu, km int) error {
	m, ok := e.menus[menu]
	if !ok {
		return synerr.Wrapf(synerr.NotFound, "unknown menu handle %d", menu)
	}
	k, ok := e.keymaps[km]
	if !ok {
		return synerr.Wrapf(synerr.NotFound, "unknown keymap handle %d", km)
	}
	m.Keymap = k
	return nil
}

func (e *Engine) SetMenuKindToCandidate(menu int, selectFirst bool) error {
	m, ok := e.menus[menu]
	if !ok {
		return synerr.Wrapf(synerr.NotFound, "unknown menu handle %d", menu)
	}
	m.SetKindCandidate(selectFirst)
	return nil
}

func (e *Engine) SetMenuKindToInputString(menu int) error {
	m, ok := e.menus[menu]
	if !ok {
		return synerr.Wrapf(synerr.NotFound, "unknown menu handle %d", menu)
	}
	m.SetKindInputString()
	return nil
}

func (e *Engine) OpenMenu(menu int) error {
	if _, ok := e.menus[menu]; !ok {
		return synerr.Wrapf(synerr.NotFound, "unknown menu handle %d", menu)
	}
	e.menuStack = append(e.menuStack, menu)
	return nil
}

func (e *Engine) CloseMenu() {
	if len(e.menuStack) == 0 {
		return
	}
	e.menuStack = e.menuStack[:len(e.menuStack)-1]
}

func (e *Engine) MenuSelectionUp() error {
	m, ok := e.activeMenu()
	if !ok {
		return synerr.Wrapf(synerr.NotFound, "no open menu")
	}
	return m.SelectionUp()
}

func (e *Engine) MenuSelectionDown() error {
	m, ok := e.activeMenu()
	if !ok {
		return synerr.Wrapf(synerr.NotFound, "no open menu")
	}
	return m.SelectionDown()
}

func (e *Engine) MenuSelectionBackspace() {
	if m, ok := e.activeMenu(); ok {
		m.Backspace()
	}
}

// --- Keymap builders ---

func (e *Engine) NewKeymap() int {
	h := e.allocHandle()
	e.keymaps[h] = keymap.NewKeymap()
	return h
}

func (e *Engine) BindKey(km int, key script.KeyLiteral, label, builtinID string) error {
	k, ok := e.keymaps[km]
	if !ok {
		return synerr.Wrapf(synerr.NotFound, "unknown keymap handle %d", km)
	}
	spec, err := BuildKeySpec(key)
	if err != nil {
		return err
	}
	k.Bind(spec, keymap.Binding{Label: label, Program: keymap.Program{BuiltinID: builtinID, IsBuiltin: true}})
	return nil
}

func (e *Engine) BindKeyForRegularCandidate(km int, name string, payload starlark.Value) error {
	k, ok := e.keymaps[km]
	if !ok {
		return synerr.Wrapf(synerr.NotFound, "unknown keymap handle %d", km)
	}
	k.AddRegularCandidate(keymap.Candidate{Name: name, Payload: payload})
	return nil
}

func (e *Engine) BindKeyForSpecialCandidate(km int, key script.KeyLiteral, name string, payload starlark.Value) error {
	k, ok := e.keymaps[km]
	if !ok {
		return synerr.Wrapf(synerr.NotFound, "unknown keymap handle %d", km)
	}
	spec, err := BuildKeySpec(key)
	if err != nil {
		return err
	}
	k.BindSpecialCandidate(spec, keymap.Candidate{Name: name, Payload: payload})
	return nil
}

func (e *Engine) BindKeyForCustomCandidate(km int, fn *starlark.Function) error {
	k, ok := e.keymaps[km]
	if !ok {
		return synerr.Wrapf(synerr.NotFound, "unknown keymap handle %d", km)
	}
	machine := e.machine
	k.CustomCandidate = func(input string) (keymap.Candidate, bool) {
		out := machine.Invoke(fn, starlark.String(input))
		if !out.Done || out.Err != nil || out.Value == nil || out.Value == starlark.None {
			return keymap.Candidate{}, false
		}
		return keymap.Candidate{Name: input, Payload: out.Value}, true
	}
	return nil
}

func (e *Engine) AddRegularCandidate(km int, name string, payload starlark.Value) error {
	return e.BindKeyForRegularCandidate(km, name, payload)
}

// --- Layer lifecycle ---

func (e *Engine) NewLayer(name string) int {
	h := e.allocHandle()
	e.layers[h] = keymap.NewLayer(name)
	return h
}

func parseMode(mode string) (keymap.Mode, error) {
	switch mode {
	case "tree":
		return keymap.Tree, nil
	case "text":
		return keymap.Text, nil
	default:
		return 0, synerr.Wrapf(synerr.Parse, "unknown mode %q", mode)
	}
}

func (e *Engine) AddModeKeymap(layer int, mode string, km int) error {
	l, ok := e.layers[layer]
	if !ok {
		return synerr.Wrapf(synerr.NotFound, "unknown layer handle %d", layer)
	}
	m, err := parseMode(mode)
	if err != nil {
		return err
	}
	k, ok := e.keymaps[km]
	if !ok {
		return synerr.Wrapf(synerr.NotFound, "unknown keymap handle %d", km)
	}
	l.AddModeKeymap(m, k)
	return nil
}

func (e *Engine) AddMenuKeymap(layer int, menuName string, km int) error {
	l, ok := e.layers[layer]
	if !ok {
		return synerr.Wrapf(synerr.NotFound, "unknown layer handle %d", layer)
	}
	k, ok := e.keymaps[km]
	if !ok {
		return synerr.Wrapf(synerr.NotFound, "unknown keymap handle %d", km)
	}
	l.AddMenuKeymap(menuName, k)
	return nil
}

func (e *Engine) RegisterLayer(layer int) error {
	if _, ok := e.layers[layer]; !ok {
		return synerr.Wrapf(synerr.NotFound, "unknown layer handle %d", layer)
	}
	return nil
}

func (e *Engine) AddGlobalLayer(layer int) error {
	l, ok := e.layers[layer]
	if !ok {
		return synerr.Wrapf(synerr.NotFound, "unknown layer handle %d", layer)
	}
	e.stack.Push(l)
	return nil
}

// --- Control ---

func (e *Engine) Escape() error {
	if len(e.menuStack) > 0 {
		e.CloseMenu()
		if e.parkedMenu != "" {
			return e.resumeScript(nil)
		}
		return nil
	}
	return synerr.Wrapf(synerr.Escape, "nothing to escape")
}

func (e *Engine) Abort() error {
	e.quit = true
	e.ExitCode = 1
	return synerr.Wrapf(synerr.Abort, "abort requested")
}

func (e *Engine) Quit() error {
	e.quit = true
	return nil
}

// --- Logging ---

func (e *Engine) LogError(msg string) { e.Events.Errorf("%s", msg) }
func (e *Engine) LogDebug(msg string) { e.Events.Debugf("%s", msg) }
func (e *Engine) ClearLastLog()       { e.Events.ClearLast() }

// toStarlark adapts a keymap.Candidate payload (already a
// starlark.Value for Candidate menus) or a raw Go value (InputString
// returns string, Char returns rune) into the value a parked block()
// call resumes with.
func toStarlark(v any) starlark.Value {
	switch val := v.(type) {
	case nil:
		return nil
	case starlark.Value:
		return val
	case string:
		return starlark.String(val)
	case rune:
		return starlark.String(string(val))
	default:
		return starlark.None
	}
}
