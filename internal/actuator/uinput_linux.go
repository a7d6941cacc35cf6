//go:build linux

package actuator

import (
	"fmt"
	"log/slog"

	"github.com/holoplot/go-evdev"

	"github.com/chase3718/lou-keys/internal/keys"
)

const (
	evKeyRelease = 0
	evKeyPress   = 1
)

var evdevDigits = [10]evdev.EvCode{
	evdev.KEY_0, evdev.KEY_1, evdev.KEY_2, evdev.KEY_3, evdev.KEY_4,
	evdev.KEY_5, evdev.KEY_6, evdev.KEY_7, evdev.KEY_8, evdev.KEY_9,
}

var evdevLetters = [26]evdev.EvCode{
	evdev.KEY_A, evdev.KEY_B, evdev.KEY_C, evdev.KEY_D, evdev.KEY_E, evdev.KEY_F,
	evdev.KEY_G, evdev.KEY_H, evdev.KEY_I, evdev.KEY_J, evdev.KEY_K, evdev.KEY_L,
	evdev.KEY_M, evdev.KEY_N, evdev.KEY_O, evdev.KEY_P, evdev.KEY_Q, evdev.KEY_R,
	evdev.KEY_S, evdev.KEY_T, evdev.KEY_U, evdev.KEY_V, evdev.KEY_W, evdev.KEY_X,
	evdev.KEY_Y, evdev.KEY_Z,
}

var evdevPunct = map[rune]evdev.EvCode{
	'-':  evdev.KEY_MINUS,
	'=':  evdev.KEY_EQUAL,
	'[':  evdev.KEY_LEFTBRACE,
	']':  evdev.KEY_RIGHTBRACE,
	'\\': evdev.KEY_BACKSLASH,
	';':  evdev.KEY_SEMICOLON,
	'\'': evdev.KEY_APOSTROPHE,
	'`':  evdev.KEY_GRAVE,
	',':  evdev.KEY_COMMA,
	'.':  evdev.KEY_DOT,
	'/':  evdev.KEY_SLASH,
}

var evdevNamed = map[keys.Name]evdev.EvCode{
	keys.Shift: evdev.KEY_LEFTSHIFT,
	keys.Ctrl:  evdev.KEY_LEFTCTRL,
	keys.Alt:   evdev.KEY_LEFTALT,
	keys.Space: evdev.KEY_SPACE,
}

// evdevCode returns the Linux input event code for k.
func evdevCode(k keys.Key) (evdev.EvCode, bool) {
	if n, ok := k.Name(); ok {
		c, ok := evdevNamed[n]
		return c, ok
	}
	r, ok := k.Rune()
	if !ok {
		return 0, false
	}
	switch {
	case r >= 'a' && r <= 'z':
		return evdevLetters[r-'a'], true
	case r >= '0' && r <= '9':
		return evdevDigits[r-'0'], true
	}
	c, ok := evdevPunct[r]
	return c, ok
}

// evdevCapabilities lists every key code the virtual keyboard advertises.
func evdevCapabilities() []evdev.EvCode {
	out := make([]evdev.EvCode, 0, len(evdevDigits)+len(evdevLetters)+len(evdevPunct)+len(evdevNamed))
	out = append(out, evdevDigits[:]...)
	out = append(out, evdevLetters[:]...)
	for _, c := range evdevPunct {
		out = append(out, c)
	}
	for _, c := range evdevNamed {
		out = append(out, c)
	}
	return out
}

// Uinput is a virtual keyboard created through /dev/uinput. Keystrokes it
// emits are indistinguishable from a physical keyboard to the focused
// application.
type Uinput struct {
	dev    *evdev.InputDevice
	name   string
	logger *slog.Logger
}

// OpenUinput creates the virtual keyboard. The process needs write access
// to /dev/uinput.
func OpenUinput(name string, logger *slog.Logger) (*Uinput, error) {
	id := evdev.InputID{
		BusType: 0x03, // BUS_USB
		Vendor:  0x1209,
		Product: 0x88a1,
		Version: 1,
	}
	dev, err := evdev.CreateDevice(name, id, map[evdev.EvType][]evdev.EvCode{
		evdev.EV_KEY: evdevCapabilities(),
	})
	if err != nil {
		return nil, fmt.Errorf("create uinput device %q: %w", name, err)
	}
	logger.Info("uinput: virtual keyboard created", "name", name)
	return &Uinput{dev: dev, name: name, logger: logger}, nil
}

func (u *Uinput) Press(k keys.Key) error   { return u.emit(k, evKeyPress) }
func (u *Uinput) Release(k keys.Key) error { return u.emit(k, evKeyRelease) }

// Close destroys the virtual keyboard. The kernel releases any key it still
// reports as down.
func (u *Uinput) Close() error {
	u.logger.Info("uinput: removing virtual keyboard", "name", u.name)
	if err := u.dev.Close(); err != nil {
		return fmt.Errorf("close uinput device: %w", err)
	}
	return nil
}

func (u *Uinput) emit(k keys.Key, value int32) error {
	code, ok := evdevCode(k)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedKey, k)
	}
	if err := u.dev.WriteOne(&evdev.InputEvent{Type: evdev.EV_KEY, Code: code, Value: value}); err != nil {
		return fmt.Errorf("uinput write %s: %w", k, err)
	}
	if err := u.dev.WriteOne(&evdev.InputEvent{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT}); err != nil {
		return fmt.Errorf("uinput sync: %w", err)
	}
	u.logger.Debug("uinput: key event", "key", k.String(), "code", int(code), "value", value)
	return nil
}
