//go:build !linux

package actuator

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/chase3718/lou-keys/internal/keys"
)

// Uinput is only available on Linux.
type Uinput struct{}

// OpenUinput always fails outside Linux.
func OpenUinput(name string, logger *slog.Logger) (*Uinput, error) {
	return nil, fmt.Errorf("%w: uinput on %s", ErrUnsupportedBackend, runtime.GOOS)
}

func (u *Uinput) Press(k keys.Key) error   { return ErrUnsupportedBackend }
func (u *Uinput) Release(k keys.Key) error { return ErrUnsupportedBackend }
func (u *Uinput) Close() error             { return nil }
