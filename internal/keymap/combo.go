package keymap

import (
	"slices"
	"strings"

	"github.com/chase3718/lou-keys/internal/keys"
)

// Combo is a main key plus the modifiers that qualify it. The modifiers are
// held only while the main key goes down; the main key stays down for as
// long as the note sounds.
type Combo struct {
	mods []keys.Key
	main keys.Key
}

// NewCombo returns the combo that presses mods in order, then main.
func NewCombo(main keys.Key, mods ...keys.Key) Combo {
	return Combo{mods: slices.Clone(mods), main: main}
}

// Main returns the key held for the note's duration.
func (c Combo) Main() keys.Key { return c.main }

// Modifiers returns a copy of the transient modifiers in press order.
func (c Combo) Modifiers() []keys.Key { return slices.Clone(c.mods) }

// Keys returns the full sequence, modifiers first and main key last.
func (c Combo) Keys() []keys.Key {
	return append(slices.Clone(c.mods), c.main)
}

// Equal reports whether both combos press the same keys in the same order.
func (c Combo) Equal(o Combo) bool {
	return c.main == o.main && slices.Equal(c.mods, o.mods)
}

func (c Combo) String() string {
	parts := make([]string, 0, len(c.mods)+1)
	for _, k := range c.Keys() {
		parts = append(parts, k.String())
	}
	return strings.Join(parts, "+")
}
