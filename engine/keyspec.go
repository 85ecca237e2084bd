package engine

import (
	"strings"

	"github.com/synless-editor/synless/keymap"
	"github.com/synless-editor/synless/script"
	"github.com/synless-editor/synless/synerr"
)

// named key literals with no single-rune encoding.
const (
	runeEnter     = '\r'
	runeEscape    = '\x1b'
	runeBackspace = '\x7f'
	runeTab       = '\t'
	runeSpace     = ' '
)

var namedKeys = map[string]rune{
	"enter":     runeEnter,
	"return":    runeEnter,
	"esc":       runeEscape,
	"escape":    runeEscape,
	"backspace": runeBackspace,
	"tab":       runeTab,
	"space":     runeSpace,
}

// BuildKeySpec parses a script's key literal -- "i", "C-x", "M-S-a",
// "enter" -- into a keymap.KeySpec. Modifiers are hyphen-separated
// prefixes ("C-", "M-", "S-") before a final code, which is either one
// of namedKeys or a single rune.
func BuildKeySpec(lit script.KeyLiteral) (keymap.KeySpec, error) {
	parts := strings.Split(string(lit), "-")
	if len(parts) == 0 || parts[len(parts)-1] == "" {
		return keymap.KeySpec{}, synerr.Wrapf(synerr.Parse, "empty key literal")
	}
	var spec keymap.KeySpec
	for _, mod := range parts[:len(parts)-1] {
		switch mod {
		case "C":
			spec.Ctrl = true
		case "M":
			spec.Alt = true
		case "S":
			spec.Shift = true
		default:
			return keymap.KeySpec{}, synerr.Wrapf(synerr.Parse, "unknown key modifier %q", mod)
		}
	}
	code := parts[len(parts)-1]
	if r, ok := namedKeys[code]; ok {
		spec.Code = r
		return spec, nil
	}
	runes := []rune(code)
	if len(runes) != 1 {
		return keymap.KeySpec{}, synerr.Wrapf(synerr.Parse, "key literal %q is not a single character or named key", lit)
	}
	spec.Code = runes[0]
	return spec, nil
}

// isPrintable reports whether key, used unmatched, should be treated
// as ordinary typed input rather than ignored.
func isPrintable(key keymap.KeySpec) bool {
	if key.Ctrl || key.Alt {
		return false
	}
	switch key.Code {
	case runeEnter, runeEscape, runeBackspace, 0:
		return false
	}
	return key.Code >= 0x20
}

var keyEnter = keymap.KeySpec{Code: runeEnter}
var keyEscape = keymap.KeySpec{Code: runeEscape}
var keyBackspace = keymap.KeySpec{Code: runeBackspace}
