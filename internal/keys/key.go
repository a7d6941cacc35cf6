// Package keys defines the symbolic identifiers for the host keys that
// lou-keys presses and releases.
package keys

import (
	"fmt"
	"strings"
	"unicode"
)

// Name identifies a key that has no printable character of its own.
type Name uint8

const (
	Shift Name = iota + 1
	Ctrl
	Alt
	Space
)

var names = map[Name]string{
	Shift: "shift",
	Ctrl:  "ctrl",
	Alt:   "alt",
	Space: "space",
}

func (n Name) String() string {
	if s, ok := names[n]; ok {
		return s
	}
	return fmt.Sprintf("name(%d)", uint8(n))
}

// Key is either a character key or a named key. The zero Key is invalid.
// Keys are comparable and can be used as map keys.
type Key struct {
	char rune
	name Name
}

// Char returns the key that types r. Letters are folded to lower case so
// 'A' and 'a' are the same physical key.
func Char(r rune) Key {
	return Key{char: unicode.ToLower(r)}
}

// Named returns the key for n.
func Named(n Name) Key {
	return Key{name: n}
}

// IsValid reports whether k refers to a key at all.
func (k Key) IsValid() bool {
	return k.char != 0 || k.name != 0
}

// Rune returns the character of a character key.
func (k Key) Rune() (rune, bool) {
	return k.char, k.char != 0
}

// Name returns the name of a named key.
func (k Key) Name() (Name, bool) {
	return k.name, k.name != 0
}

// IsModifier reports whether k qualifies other keys rather than typing
// anything itself.
func (k Key) IsModifier() bool {
	switch k.name {
	case Shift, Ctrl, Alt:
		return true
	}
	return false
}

func (k Key) String() string {
	switch {
	case k.name != 0:
		return k.name.String()
	case k.char != 0:
		return string(k.char)
	}
	return "<none>"
}

// Parse resolves a key from its textual form: a single character, or one
// of the names shift, ctrl, alt, space.
func Parse(s string) (Key, error) {
	lower := strings.ToLower(s)
	for n, name := range names {
		if lower == name {
			return Named(n), nil
		}
	}
	r := []rune(s)
	if len(r) == 1 && unicode.IsPrint(r[0]) && !unicode.IsSpace(r[0]) {
		return Char(r[0]), nil
	}
	return Key{}, fmt.Errorf("unknown key %q", s)
}

// MustParse is like Parse but panics on error. Used for the compiled-in
// layout rows.
func MustParse(s string) Key {
	k, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return k
}
