package actuator

import "github.com/chase3718/lou-keys/internal/keys"

// USB HID keyboard usage ids (HID Usage Tables, page 0x07).
const (
	hidA     = 0x04
	hid1     = 0x1E
	hid0     = 0x27
	hidSpace = 0x2C

	hidLeftCtrl  = 0xE0
	hidLeftShift = 0xE1
	hidLeftAlt   = 0xE2
)

var hidPunct = map[rune]byte{
	'-':  0x2D,
	'=':  0x2E,
	'[':  0x2F,
	']':  0x30,
	'\\': 0x31,
	';':  0x33,
	'\'': 0x34,
	'`':  0x35,
	',':  0x36,
	'.':  0x37,
	'/':  0x38,
}

var hidNamed = map[keys.Name]byte{
	keys.Shift: hidLeftShift,
	keys.Ctrl:  hidLeftCtrl,
	keys.Alt:   hidLeftAlt,
	keys.Space: hidSpace,
}

// hidUsage returns the usage id that the bridge reports for k.
func hidUsage(k keys.Key) (byte, bool) {
	if n, ok := k.Name(); ok {
		u, ok := hidNamed[n]
		return u, ok
	}
	r, ok := k.Rune()
	if !ok {
		return 0, false
	}
	switch {
	case r >= 'a' && r <= 'z':
		return hidA + byte(r-'a'), true
	case r >= '1' && r <= '9':
		return hid1 + byte(r-'1'), true
	case r == '0':
		return hid0, true
	}
	u, ok := hidPunct[r]
	return u, ok
}
