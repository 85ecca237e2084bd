// Package synerr defines the error categories that the document engine
// surfaces to scripts and logs (editing, navigation, lookup, I/O,
// parsing, scripting, and control-flow failures). Callers attach a
// sentinel to a detail error with Wrap or Wrapf and recover the
// category with errors.Is rather than matching on strings.
package synerr

import (
	"errors"
	"fmt"
)

// Category sentinels. Each one is returned (wrapped with context) by
// the component that detects the failure, and compared against with
// errors.Is by callers that need to dispatch on category -- the
// engine loop, the scripting surface, and the CLI's exit-code logic.
var (
	// Grammar is returned when an edit would place a construct in a
	// slot whose sort does not accept it.
	Grammar = errors.New("grammar error")
	// Navigation is returned when the cursor cannot move in the
	// requested direction from its current position.
	Navigation = errors.New("navigation error")
	// NotFound is returned when a bookmark, search query, or path
	// lookup fails to resolve.
	NotFound = errors.New("not found")
	// IO is returned for file read/write failures.
	IO = errors.New("io error")
	// Parse is returned when a language file or a bundled text loader
	// fails to parse its input.
	Parse = errors.New("parse error")
	// Script is returned when a scripting-host callback raises an
	// error that has no more specific category.
	Script = errors.New("script error")
	// Abort is returned when the user requests process termination.
	Abort = errors.New("abort")
	// Escape is returned when a menu or multi-step operation is
	// cancelled.
	Escape = errors.New("escape")
)

// Wrap attaches a category to a more specific error without losing
// either: errors.Is(Wrap(synerr.Grammar, err), synerr.Grammar) and
// errors.Is(Wrap(synerr.Grammar, err), err) both hold.
func Wrap(category error, detail error) error {
	if detail == nil {
		return category
	}
	return &wrapped{category: category, detail: detail}
}

// Wrapf is Wrap with a formatted detail message.
func Wrapf(category error, format string, args ...any) error {
	return Wrap(category, fmt.Errorf(format, args...))
}

type wrapped struct {
	category error
	detail   error
}

func (w *wrapped) Error() string {
	return w.category.Error() + ": " + w.detail.Error()
}

func (w *wrapped) Unwrap() []error {
	return []error{w.category, w.detail}
}

// byCategory maps the well-known script-raised error names -- a script
// raising an error whose name matches one of these is treated as
// raising the typed equivalent -- onto the category sentinels above.
var byCategory = map[string]error{
	"GrammarError":    Grammar,
	"NavigationError": Navigation,
	"NotFound":        NotFound,
	"IoError":         IO,
	"ParseError":      Parse,
	"ScriptError":     Script,
	"Abort":           Abort,
	"Escape":          Escape,
}

// FromName returns the category sentinel named by a script, or nil if
// the name does not match a known category.
func FromName(name string) error {
	return byCategory[name]
}
