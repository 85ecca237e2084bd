// Package script is the scripting-host binding: it exposes the engine's operations to a go.starlark.net
// program as builtins, and implements the one-suspension-point
// concurrency contract: a script may request a menu result via
// block(), which releases control back to the engine loop until the
// user confirms. script never mutates the document
// itself; every builtin forwards to a Host, which engine.Engine
// implements -- the same Host-interface trick editlog uses to reach
// document.Document without an import cycle.
package script

import "go.starlark.net/starlark"

// Host is everything a script can do, covering the scripting surface
// one-for-one. engine.Engine implements Host.
type Host interface {
	// Document lifecycle.
	OpenDoc(path string) error
	NewDoc(path string) error
	SaveDoc() error
	SaveDocAs(path string) error
	CloseDoc() error
	ForceCloseVisibleDoc() error
	SwitchToDoc(path string) error
	HasUnsavedChanges() bool
	DocSwitchingCandidates() []string

	// Path utilities.
	CurrentDir() string
	CanonicalizePath(p string) (string, error)
	JoinPath(a, b string) string
	PathFileName(p string) string
	ListFilesAndDirs(p string) (files, dirs []string, err error)

	// Tree navigation.
	TreeNavNext() error
	TreeNavPrev() error
	TreeNavFirst() error
	TreeNavLast() error
	TreeNavParent() error
	TreeNavFirstChild() error
	TreeNavLastChild() error
	TreeNavNextLeaf() error
	TreeNavPrevLeaf() error

	// Tree editing.
	TreeEdInsert(constructName string) error
	TreeEdBackspace() error
	TreeEdDelete() error
	TreeEdUnwrap() error

	// Text navigation and editing.
	TextNavEnter() error
	TextNavExit() error
	TextNavLeft() error
	TextNavRight() error
	TextEdInsertChar(ch string) error
	TextEdDeleteBackward() error

	// Clipboard.
	Copy() error
	Cut() error
	Paste() error
	PasteSwap() error

	// Search.
	SearchForSubstring(s string) error
	SearchForRegex(pattern string) error
	SearchForConstruct(name string) error
	SearchForNodeAtCursor() error
	SearchNext() error
	SearchPrev() error
	SearchHighlightOff()

	// Bookmarks.
	SaveBookmark(ch string) error
	GotoBookmark(ch string) error

	// Language registry.
	LoadLanguage(path string) error
	GetLanguage() string
	LanguageConstructs() []string
	ConstructName(token string) string
	ConstructKey(token string) string

	// Menu lifecycle. Menus, keymaps, and layers are addressed by
	// opaque integer handles.
	MakeMenu(name string) int
	SetMenuKeymap(menu, km int) error
	SetMenuKindToCandidate(menu int, selectFirst bool) error
	SetMenuKindToInputString(menu int) error
	OpenMenu(menu int) error
	CloseMenu()
	MenuSelectionUp() error
	MenuSelectionDown() error
	MenuSelectionBackspace()

	// Keymap builders.
	NewKeymap() int
	BindKey(km int, key KeyLiteral, label, builtinID string) error
	BindKeyForRegularCandidate(km int, name string, payload starlark.Value) error
	BindKeyForSpecialCandidate(km int, key KeyLiteral, name string, payload starlark.Value) error
	BindKeyForCustomCandidate(km int, fn *starlark.Function) error
	AddRegularCandidate(km int, name string, payload starlark.Value) error

	// Layer lifecycle.
	NewLayer(name string) int
	AddModeKeymap(layer int, mode string, km int) error
	AddMenuKeymap(layer int, menuName string, km int) error
	RegisterLayer(layer int) error
	AddGlobalLayer(layer int) error

	// Control.
	Escape() error
	Abort() error
	Quit() error

	// Logging.
	LogError(msg string)
	LogDebug(msg string)
	ClearLastLog()
}

// KeyLiteral is the string encoding a script uses for a key spec, e.g.
// "C-x" or "i"; engine.BuildKeySpec parses it into a keymap.KeySpec.
type KeyLiteral string
