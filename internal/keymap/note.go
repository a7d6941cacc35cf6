package keymap

import (
	"fmt"
	"strconv"
	"strings"
)

// Note is a MIDI note number, 0-127.
type Note uint8

// MaxNote is the highest valid MIDI note number.
const MaxNote Note = 127

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// String returns the scientific pitch name, e.g. 60 -> "C4", 21 -> "A0".
func (n Note) String() string {
	return fmt.Sprintf("%s%d", noteNames[int(n)%12], int(n)/12-1)
}

// IsBlack reports whether n is a sharp (C#, D#, F#, G#, A#).
func (n Note) IsBlack() bool {
	return strings.HasSuffix(noteNames[int(n)%12], "#")
}

// ParseNote parses a scientific pitch name such as "C4", "A#0" or "C-1".
func ParseNote(s string) (Note, error) {
	for pc := len(noteNames) - 1; pc >= 0; pc-- {
		name := noteNames[pc]
		rest, ok := strings.CutPrefix(s, name)
		if !ok {
			continue
		}
		// "C#4" also matches the "C" prefix; only accept a numeric remainder.
		octave, err := strconv.Atoi(rest)
		if err != nil {
			continue
		}
		v := (octave+1)*12 + pc
		if v < 0 || v > int(MaxNote) {
			return 0, fmt.Errorf("note %q out of MIDI range", s)
		}
		return Note(v), nil
	}
	return 0, fmt.Errorf("invalid note name %q", s)
}

func mustNote(s string) Note {
	n, err := ParseNote(s)
	if err != nil {
		panic(err)
	}
	return n
}
