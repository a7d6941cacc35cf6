// Package actuator presses and releases keys on the host: through a Linux
// uinput virtual keyboard, a serial USB-HID bridge, or a log-only dry run.
package actuator

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"

	"github.com/chase3718/lou-keys/internal/keys"
)

var (
	// ErrUnsupportedKey is returned when a backend has no code for a key.
	ErrUnsupportedKey = errors.New("key not supported by backend")
	// ErrUnsupportedBackend is returned for a backend that is unknown or
	// not available on this platform.
	ErrUnsupportedBackend = errors.New("unsupported backend")
)

// Backend is a key actuator that holds a device open.
type Backend interface {
	Press(k keys.Key) error
	Release(k keys.Key) error
	io.Closer
}

// Kind names a backend.
type Kind string

const (
	KindUinput Kind = "uinput"
	KindSerial Kind = "serial"
	KindLog    Kind = "log"
)

// Kinds lists every backend name Open accepts.
func Kinds() []Kind {
	return []Kind{KindUinput, KindSerial, KindLog}
}

// DefaultKind is uinput on Linux and the log backend elsewhere.
func DefaultKind() Kind {
	if runtime.GOOS == "linux" {
		return KindUinput
	}
	return KindLog
}

// ParseKind resolves a backend name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedBackend, s)
}

// Options carries the settings of every backend; each reads only its own.
type Options struct {
	DeviceName string // uinput
	SerialPort string // serial
	Baud       int    // serial
	Logger     *slog.Logger
}

// Open creates the backend of the given kind.
func Open(kind Kind, opts Options) (Backend, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	switch kind {
	case KindUinput:
		name := opts.DeviceName
		if name == "" {
			name = "lou-keys virtual keyboard"
		}
		u, err := OpenUinput(name, opts.Logger)
		if err != nil {
			return nil, err
		}
		return u, nil
	case KindSerial:
		s, err := OpenSerial(opts.SerialPort, opts.Baud, opts.Logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case KindLog:
		return NewLog(opts.Logger), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, string(kind))
}

// Log is a dry-run backend that only logs key transitions.
type Log struct {
	logger *slog.Logger
}

// NewLog returns a Log backend writing to logger.
func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Press(k keys.Key) error {
	l.logger.Info("actuator: press", "key", k.String())
	return nil
}

func (l *Log) Release(k keys.Key) error {
	l.logger.Info("actuator: release", "key", k.String())
	return nil
}

func (l *Log) Close() error { return nil }
