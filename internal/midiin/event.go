// Package midiin finds a MIDI keyboard, keeps a connection to it across
// hot-plugs and decodes its messages into note and controller events.
package midiin

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
)

// Kind is the type of a decoded event.
type Kind uint8

const (
	NoteOn Kind = iota + 1
	NoteOff
	ControlChange
)

func (k Kind) String() string {
	switch k {
	case NoteOn:
		return "note_on"
	case NoteOff:
		return "note_off"
	case ControlChange:
		return "control_change"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Event is a channel message the key engine cares about.
type Event struct {
	Kind    Kind
	Channel uint8 // 0-15

	Note     uint8 // NoteOn, NoteOff
	Velocity uint8 // NoteOn

	Controller uint8 // ControlChange
	Value      uint8 // ControlChange
}

// Decode converts msg into an Event. A note-on with zero velocity decodes as
// NoteOff. Messages of any other type report false.
func Decode(msg midi.Message) (Event, bool) {
	var ch, a, b uint8
	switch {
	case msg.GetNoteStart(&ch, &a, &b):
		return Event{Kind: NoteOn, Channel: ch, Note: a, Velocity: b}, true
	case msg.GetNoteEnd(&ch, &a):
		return Event{Kind: NoteOff, Channel: ch, Note: a}, true
	case msg.GetControlChange(&ch, &a, &b):
		return Event{Kind: ControlChange, Channel: ch, Controller: a, Value: b}, true
	}
	return Event{}, false
}
