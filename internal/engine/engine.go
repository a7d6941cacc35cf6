// Package engine turns note and sustain events into key presses and
// releases, arbitrating which sounding note owns each held key.
package engine

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/chase3718/lou-keys/internal/keymap"
	"github.com/chase3718/lou-keys/internal/keys"
)

const (
	// SustainController is the MIDI controller number of the sustain pedal.
	SustainController = 64
	// SustainThreshold is the lowest controller value that counts as pedal down.
	SustainThreshold = 64
)

// ErrSustainKeyConflict is returned by CheckSustainKey for a key the
// sustain pedal cannot hold.
var ErrSustainKeyConflict = errors.New("sustain key conflicts with layout")

// Actuator presses and releases keys on the host.
type Actuator interface {
	Press(k keys.Key) error
	Release(k keys.Key) error
}

// Engine tracks which note owns each held main key. It is not safe for
// concurrent use; feed it from a single goroutine.
type Engine struct {
	table      *keymap.Table
	act        Actuator
	logger     *slog.Logger
	sustainKey keys.Key

	held    map[keys.Key]bool
	owner   map[keys.Key]keymap.Note
	noteKey map[keymap.Note]keys.Key
	sustain bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithSustainKey sets the key held while the sustain pedal is down.
// Defaults to space. A key rejected by CheckSustainKey is ignored.
func WithSustainKey(k keys.Key) Option {
	return func(e *Engine) {
		if k.IsValid() {
			e.sustainKey = k
		}
	}
}

// New returns an engine that plays table through act.
func New(table *keymap.Table, act Actuator, opts ...Option) *Engine {
	e := &Engine{
		table:      table,
		act:        act,
		logger:     slog.Default(),
		sustainKey: keys.Named(keys.Space),
		held:       make(map[keys.Key]bool),
		owner:      make(map[keys.Key]keymap.Note),
		noteKey:    make(map[keymap.Note]keys.Key),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := CheckSustainKey(table, e.sustainKey); err != nil {
		e.logger.Warn("engine: sustain key rejected, using space", "err", err)
		e.sustainKey = keys.Named(keys.Space)
	}
	return e
}

// CheckSustainKey reports whether k can serve as the sustain key for
// table. Modifiers and keys the table presses would be lifted under a
// sounding note.
func CheckSustainKey(table *keymap.Table, k keys.Key) error {
	if k.IsModifier() {
		return fmt.Errorf("%w: %s is a modifier", ErrSustainKeyConflict, k)
	}
	if slices.Contains(table.UsedKeys(), k) {
		return fmt.Errorf("%w: %s is used by layout %s", ErrSustainKeyConflict, k, table.Layout())
	}
	return nil
}

// NoteOn handles a note-on event. A zero velocity is a note-off.
func (e *Engine) NoteOn(note keymap.Note, velocity uint8) {
	if velocity == 0 {
		e.NoteOff(note)
		return
	}

	combo, ok := e.table.Lookup(note)
	if !ok {
		e.logger.Debug("engine: unmapped note ignored", "pitch", note.String(), "midi_pitch", int(note))
		return
	}
	main := combo.Main()

	if e.held[main] {
		if prev := e.owner[main]; prev != note {
			e.logger.Info("engine: key preempted",
				"key", main.String(),
				"from", prev.String(),
				"to", note.String(),
			)
			e.release(main)
			delete(e.held, main)
		}
	}

	mods := combo.Modifiers()
	for _, m := range mods {
		e.press(m)
	}

	e.press(main)
	e.held[main] = true
	e.owner[main] = note
	e.noteKey[note] = main

	for i := len(mods) - 1; i >= 0; i-- {
		e.release(mods[i])
	}

	e.logger.Debug("engine: note on",
		"pitch", note.String(),
		"midi_pitch", int(note),
		"velocity", velocity,
		"combo", combo.String(),
		"held_keys", len(e.held),
	)
}

// NoteOff handles a note-off event. Notes that are not sounding are ignored.
func (e *Engine) NoteOff(note keymap.Note) {
	main, ok := e.noteKey[note]
	if !ok {
		e.logger.Debug("engine: note off for inactive note ignored", "pitch", note.String(), "midi_pitch", int(note))
		return
	}

	if owner, owned := e.owner[main]; owned && owner == note {
		e.release(main)
		delete(e.held, main)
		delete(e.owner, main)
	} else {
		e.logger.Debug("engine: key owned by a later note, not released",
			"pitch", note.String(),
			"key", main.String(),
		)
	}

	delete(e.noteKey, note)

	e.logger.Debug("engine: note off", "pitch", note.String(), "midi_pitch", int(note), "held_keys", len(e.held))
}

// ControlChange handles a control-change event. Only the sustain pedal is
// acted on, and only when it crosses the threshold.
func (e *Engine) ControlChange(controller, value uint8) {
	if controller != SustainController {
		return
	}
	switch down := value >= SustainThreshold; {
	case down && !e.sustain:
		e.press(e.sustainKey)
		e.sustain = true
		e.logger.Debug("engine: sustain on", "value", value)
	case !down && e.sustain:
		e.release(e.sustainKey)
		e.sustain = false
		e.logger.Debug("engine: sustain off", "value", value)
	}
}

// ReleaseAll lifts every held key and the sustain key and forgets all
// sounding notes. The engine stays usable afterwards.
func (e *Engine) ReleaseAll() {
	held := e.Held()
	for _, k := range held {
		e.release(k)
	}
	if e.sustain {
		e.release(e.sustainKey)
		e.sustain = false
	}
	clear(e.held)
	clear(e.owner)
	clear(e.noteKey)

	if len(held) > 0 {
		e.logger.Info("engine: released all keys", "count", len(held))
	}
}

// Held returns the main keys currently down, sorted by name.
func (e *Engine) Held() []keys.Key {
	out := make([]keys.Key, 0, len(e.held))
	for k := range e.held {
		out = append(out, k)
	}
	slices.SortFunc(out, func(a, b keys.Key) int {
		return cmp.Compare(a.String(), b.String())
	})
	return out
}

// Owner returns the note currently holding k down.
func (e *Engine) Owner(k keys.Key) (keymap.Note, bool) {
	if !e.held[k] {
		return 0, false
	}
	n, ok := e.owner[k]
	return n, ok
}

// Active reports whether note is sounding.
func (e *Engine) Active(note keymap.Note) bool {
	_, ok := e.noteKey[note]
	return ok
}

// Sustained reports whether the sustain key is down.
func (e *Engine) Sustained() bool { return e.sustain }

func (e *Engine) press(k keys.Key) {
	if err := e.act.Press(k); err != nil {
		e.logger.Warn("engine: key press failed", "key", k.String(), "err", err)
	}
}

func (e *Engine) release(k keys.Key) {
	if err := e.act.Release(k); err != nil {
		e.logger.Warn("engine: key release failed", "key", k.String(), "err", err)
	}
}
