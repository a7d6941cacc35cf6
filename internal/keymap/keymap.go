// Package keymap builds the compiled-in tables that map MIDI notes to host
// key combinations for each supported target surface.
package keymap

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/chase3718/lou-keys/internal/keys"
)

// ErrUnknownLayout is returned by Build and ParseLayout for a selector that
// names no layout.
var ErrUnknownLayout = errors.New("unknown layout")

// Layout selects one of the compiled-in tables.
type Layout string

const (
	// Sequential walks one row of keys chromatically, sharing each white
	// note's key with the sharp above it via shift. Fits 55-key surfaces.
	Sequential Layout = "sequential"
	// TwoTier covers all 88 piano keys with a bare/shift home band and a
	// ctrl band for the extreme octaves.
	TwoTier Layout = "two-tier"
)

var layoutAliases = map[string]Layout{
	"sequential": Sequential,
	"55":         Sequential,
	"two-tier":   TwoTier,
	"twotier":    TwoTier,
	"88":         TwoTier,
}

// Layouts lists every layout Build accepts.
func Layouts() []Layout {
	return []Layout{Sequential, TwoTier}
}

// ParseLayout resolves a layout name or alias.
func ParseLayout(s string) (Layout, error) {
	if l, ok := layoutAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return l, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLayout, s)
}

// Table is an immutable note to combo mapping.
type Table struct {
	layout Layout
	combos map[Note]Combo
}

// Build constructs the table for l.
func Build(l Layout) (*Table, error) {
	b := newBuilder(l)
	switch l {
	case Sequential:
		buildSequential(b)
	case TwoTier:
		buildTwoTier(b)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayout, string(l))
	}
	return b.table(), nil
}

// NewTable builds a table from an explicit mapping. The map is copied.
func NewTable(l Layout, combos map[Note]Combo) *Table {
	b := newBuilder(l)
	for n, c := range combos {
		b.set(n, c)
	}
	return b.table()
}

// Layout returns the layout the table was built for.
func (t *Table) Layout() Layout { return t.layout }

// Lookup returns the combo for n. Unmapped notes report false.
func (t *Table) Lookup(n Note) (Combo, bool) {
	c, ok := t.combos[n]
	return c, ok
}

// Len returns the number of mapped notes.
func (t *Table) Len() int { return len(t.combos) }

// Notes returns the mapped notes in ascending order.
func (t *Table) Notes() []Note {
	out := make([]Note, 0, len(t.combos))
	for n := range t.combos {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// UsedKeys returns every distinct key any combo in the table presses, in no
// particular order.
func (t *Table) UsedKeys() []keys.Key {
	seen := make(map[keys.Key]bool)
	var out []keys.Key
	for _, c := range t.combos {
		for _, k := range c.Keys() {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	return out
}

type builder struct {
	layout Layout
	combos map[Note]Combo
}

func newBuilder(l Layout) *builder {
	return &builder{layout: l, combos: make(map[Note]Combo)}
}

func (b *builder) set(n Note, c Combo) {
	if n > MaxNote || !c.main.IsValid() {
		return
	}
	b.combos[n] = c
}

func (b *builder) table() *Table {
	return &Table{layout: b.layout, combos: b.combos}
}

// keyRow turns a string of characters into character keys. Rows are
// compiled in, so a character Parse rejects is a programming error.
func keyRow(s string) []keys.Key {
	out := make([]keys.Key, 0, len(s))
	for _, r := range s {
		out = append(out, keys.MustParse(string(r)))
	}
	return out
}
