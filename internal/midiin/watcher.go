package midiin

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// ErrNoInputs is returned by ListInputs when the driver reports no inputs.
var ErrNoInputs = errors.New("no MIDI inputs found")

// DefaultPreferred are picked ahead of other inputs when no device is named.
var DefaultPreferred = []string{"Keystation", "Launchkey", "Novation", "Roland", "Yamaha", "Casio"}

// DefaultExcluded are virtual/system ports that are never auto-connected.
var DefaultExcluded = []string{"Midi Through", "Through Port", "Dummy"}

const (
	defaultRescanInterval = time.Second
	eventQueueSize        = 256
)

// Watcher monitors available MIDI inputs and keeps a connection to the
// selected device, reconnecting after it is unplugged and plugged back in.
//
// Decoded events arrive on Events. A value on Disconnects means the device
// was lost and anything still sounding should be released.
type Watcher struct {
	mu           sync.Mutex
	drv          drivers.Driver
	logger       *slog.Logger
	device       string
	preferred    []string
	excluded     []string
	rescan       time.Duration
	inPort       drivers.In
	stopFn       func()
	connected    bool
	selectedName string
	lastRescanAt time.Time

	events      chan Event
	disconnects chan string
	done        chan struct{}
	closeOnce   sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDevice restricts the watcher to inputs whose name matches device,
// exactly or as a case-insensitive substring.
func WithDevice(device string) Option {
	return func(w *Watcher) { w.device = strings.TrimSpace(device) }
}

// WithPreferred replaces DefaultPreferred.
func WithPreferred(patterns []string) Option {
	return func(w *Watcher) { w.preferred = patterns }
}

// WithExcluded replaces DefaultExcluded.
func WithExcluded(patterns []string) Option {
	return func(w *Watcher) { w.excluded = patterns }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithRescanInterval sets how often Tick enumerates inputs.
func WithRescanInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.rescan = d
		}
	}
}

// NewWatcher creates a watcher on drv. The watcher owns drv and closes it
// in Close.
func NewWatcher(drv drivers.Driver, opts ...Option) *Watcher {
	w := &Watcher{
		drv:         drv,
		logger:      slog.Default(),
		preferred:   DefaultPreferred,
		excluded:    DefaultExcluded,
		rescan:      defaultRescanInterval,
		events:      make(chan Event, eventQueueSize),
		disconnects: make(chan string, 1),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Events returns the stream of decoded events from the connected device.
func (w *Watcher) Events() <-chan Event { return w.events }

// Disconnects delivers the name of a device each time the connection is lost.
func (w *Watcher) Disconnects() <-chan string { return w.disconnects }

// Connected returns the name of the connected input, if any.
func (w *Watcher) Connected() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selectedName, w.connected
}

// Close shuts down the active MIDI connection and the driver.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		defer w.mu.Unlock()
		w.closeConn()
		err = w.drv.Close()
	})
	return err
}

// Tick scans for devices, connects to the best candidate and detects
// disappearance. Call it on a regular interval; scans closer together than
// the rescan interval are skipped.
func (w *Watcher) Tick() {
	w.mu.Lock()
	defer w.mu.Unlock()

	select {
	case <-w.done:
		return
	default:
	}

	now := time.Now()
	if !w.lastRescanAt.IsZero() && now.Sub(w.lastRescanAt) < w.rescan {
		return
	}
	w.lastRescanAt = now

	inputs := w.listInputs()

	if w.connected {
		for _, n := range inputs {
			if n == w.selectedName {
				return
			}
		}
		lost := w.selectedName
		w.logger.Warn("midi: device disappeared", "device", lost)
		w.closeConn()
		w.lastRescanAt = time.Time{}
		w.notifyDisconnect(lost)
		return
	}

	if len(inputs) == 0 {
		return
	}
	cand, ok := pickInput(inputs, w.device, w.preferred)
	if !ok {
		w.logger.Debug("midi: no matching input", "wanted", w.device, "available", strings.Join(inputs, ", "))
		return
	}
	if err := w.openByName(cand); err != nil {
		w.logger.Error("midi: connect failed", "device", cand, "err", err)
	}
}

// ListInputs returns the names of every input drv reports.
func ListInputs(drv drivers.Driver) ([]string, error) {
	ins, err := drv.Ins()
	if err != nil {
		return nil, fmt.Errorf("list MIDI inputs: %w", err)
	}
	if len(ins) == 0 {
		return nil, ErrNoInputs
	}
	names := make([]string, 0, len(ins))
	for _, in := range ins {
		names = append(names, in.String())
	}
	return names, nil
}

// -------------------- internal --------------------

func (w *Watcher) listInputs() []string {
	ins, err := w.drv.Ins()
	if err != nil {
		w.logger.Error("midi: list inputs failed", "err", err)
		return nil
	}
	all := make([]string, 0, len(ins))
	for _, in := range ins {
		all = append(all, in.String())
	}
	names := filterInputs(all, w.excluded)
	w.logger.Debug("midi: inputs found", "count", len(names), "devices", strings.Join(names, ", "))
	return names
}

func (w *Watcher) closeConn() {
	if w.stopFn != nil {
		w.stopFn()
		w.stopFn = nil
	}
	if w.inPort != nil {
		_ = w.inPort.Close()
		w.inPort = nil
	}
	if w.connected {
		w.logger.Info("midi: connection closed", "device", w.selectedName)
	}
	w.connected = false
	w.selectedName = ""
}

func (w *Watcher) openByName(name string) error {
	ins, err := w.drv.Ins()
	if err != nil {
		return err
	}
	var found drivers.In
	for _, in := range ins {
		if in.String() == name {
			found = in
			break
		}
	}
	if found == nil {
		return fmt.Errorf("input %q not found", name)
	}
	if err := found.Open(); err != nil {
		return fmt.Errorf("open %q: %w", name, err)
	}

	stop, err := midi.ListenTo(found, func(msg midi.Message, _ int32) {
		ev, ok := Decode(msg)
		if !ok {
			w.logger.Debug("midi: unhandled message", "msg", msg.String())
			return
		}
		w.deliver(ev)
	}, midi.HandleError(func(listenErr error) {
		w.logger.Warn("midi: listener error", "device", name, "err", listenErr)
		// The listener goroutine must not stop itself, so tear down from a
		// fresh goroutine under the mutex.
		go func() {
			w.mu.Lock()
			defer w.mu.Unlock()
			if w.connected && w.selectedName == name {
				w.closeConn()
				w.lastRescanAt = time.Time{}
				w.notifyDisconnect(name)
			}
		}()
	}))
	if err != nil {
		_ = found.Close()
		return fmt.Errorf("listen %q: %w", name, err)
	}

	w.inPort = found
	w.stopFn = stop
	w.connected = true
	w.selectedName = name
	w.logger.Info("midi: connected", "device", name)
	return nil
}

func (w *Watcher) deliver(ev Event) {
	select {
	case <-w.done:
	case w.events <- ev:
	default:
		w.logger.Warn("midi: event queue full, dropping event", "kind", ev.Kind.String(), "note", ev.Note)
	}
}

func (w *Watcher) notifyDisconnect(name string) {
	select {
	case w.disconnects <- name:
	default:
		// A disconnect is already pending; one release pass covers both.
	}
}

// -------------------- selection --------------------

func filterInputs(names, excluded []string) []string {
	var out []string
	for _, name := range names {
		skip := false
		for _, pat := range excluded {
			if containsCI(name, pat) {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, name)
		}
	}
	return out
}

// pickInput chooses the input to connect to. A named device must match
// exactly or by substring. Otherwise the first input matching a preferred
// pattern wins, falling back to the first input listed.
func pickInput(inputs []string, device string, preferred []string) (string, bool) {
	if len(inputs) == 0 {
		return "", false
	}
	if device != "" {
		for _, name := range inputs {
			if name == device {
				return name, true
			}
		}
		for _, name := range inputs {
			if containsCI(name, device) {
				return name, true
			}
		}
		return "", false
	}
	for _, pat := range preferred {
		for _, name := range inputs {
			if containsCI(name, pat) {
				return name, true
			}
		}
	}
	return inputs[0], true
}

func containsCI(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
