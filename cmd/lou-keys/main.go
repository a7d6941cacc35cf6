// Command lou-keys turns a MIDI keyboard into a computer keyboard: every
// note presses a key combination on the host, with at most one note owning
// any physical key at a time.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/chase3718/lou-keys/internal/actuator"
	"github.com/chase3718/lou-keys/internal/engine"
	"github.com/chase3718/lou-keys/internal/keymap"
	"github.com/chase3718/lou-keys/internal/keys"
	"github.com/chase3718/lou-keys/internal/logging"
	"github.com/chase3718/lou-keys/internal/midiin"
)

const tickInterval = 250 * time.Millisecond

// logger is the package-wide structured logger. Safe to use before
// initLogger is called; defaults to slog.Default().
var logger = slog.Default()

type config struct {
	layout     string
	backend    string
	device     string
	prefer     string
	exclude    string
	rescan     time.Duration
	sustainKey string
	uinput     string
	serialDev  string
	baud       int
	list       bool
	debug      bool
	logFormat  string
}

func parseFlags(args []string) (config, error) {
	var cfg config
	fs := flag.NewFlagSet("lou-keys", flag.ContinueOnError)
	fs.StringVar(&cfg.layout, "layout", string(keymap.TwoTier), "note layout: sequential (55) or two-tier (88)")
	fs.StringVar(&cfg.backend, "backend", string(actuator.DefaultKind()), "key backend: uinput, serial or log")
	fs.StringVar(&cfg.device, "device", "", "MIDI input to use (substring match); default picks a known keyboard")
	fs.StringVar(&cfg.prefer, "prefer", strings.Join(midiin.DefaultPreferred, ","), "comma-separated name patterns tried first when -device is empty")
	fs.StringVar(&cfg.exclude, "exclude", strings.Join(midiin.DefaultExcluded, ","), "comma-separated name patterns never connected to")
	fs.DurationVar(&cfg.rescan, "rescan", time.Second, "how often to look for MIDI inputs")
	fs.StringVar(&cfg.sustainKey, "sustain-key", "space", "key held while the sustain pedal is down")
	fs.StringVar(&cfg.uinput, "uinput-name", "lou-keys virtual keyboard", "name of the uinput virtual keyboard")
	fs.StringVar(&cfg.serialDev, "serial", "/dev/ttyACM0", "serial port of the HID bridge")
	fs.IntVar(&cfg.baud, "baud", 115200, "serial baud rate")
	fs.BoolVar(&cfg.list, "list", false, "list MIDI inputs and serial ports, then exit")
	fs.BoolVar(&cfg.debug, "debug", false, "enable debug logging (adds source location)")
	fs.StringVar(&cfg.logFormat, "log-format", string(logging.FormatText), "log output: text or zap")
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}
	return cfg, nil
}

// splitList parses a comma-separated flag value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// initLogger configures the shared logger and installs it as the slog
// default.
func initLogger(format logging.Format, debug bool) {
	logger = logging.Init(os.Stderr, format, debug)
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}
	format, err := logging.ParseFormat(cfg.logFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	initLogger(format, cfg.debug)

	if cfg.list {
		if err := list(os.Stdout); err != nil {
			logger.Error("list failed", "err", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("lou-keys stopped", "err", err)
		os.Exit(1)
	}
}

// engineOptions resolves the engine settings carried by cfg.
func engineOptions(cfg config, table *keymap.Table) ([]engine.Option, error) {
	sustain, err := keys.Parse(cfg.sustainKey)
	if err != nil {
		return nil, fmt.Errorf("sustain key: %w", err)
	}
	if err := engine.CheckSustainKey(table, sustain); err != nil {
		return nil, err
	}
	return []engine.Option{engine.WithLogger(logger), engine.WithSustainKey(sustain)}, nil
}

func run(ctx context.Context, cfg config) error {
	layout, err := keymap.ParseLayout(cfg.layout)
	if err != nil {
		return err
	}
	table, err := keymap.Build(layout)
	if err != nil {
		return fmt.Errorf("build key table: %w", err)
	}
	engOpts, err := engineOptions(cfg, table)
	if err != nil {
		return err
	}
	kind, err := actuator.ParseKind(cfg.backend)
	if err != nil {
		return err
	}

	logger.Info("lou-keys starting",
		"layout", layout,
		"notes", table.Len(),
		"backend", kind,
		"device", cfg.device,
		"sustain_key", cfg.sustainKey,
		"debug", cfg.debug,
	)

	drv, err := rtmididrv.New()
	if err != nil {
		return fmt.Errorf("init MIDI driver: %w", err)
	}
	watcher := midiin.NewWatcher(drv,
		midiin.WithDevice(cfg.device),
		midiin.WithPreferred(splitList(cfg.prefer)),
		midiin.WithExcluded(splitList(cfg.exclude)),
		midiin.WithRescanInterval(cfg.rescan),
		midiin.WithLogger(logger),
	)
	defer watcher.Close()

	act, err := actuator.Open(kind, actuator.Options{
		DeviceName: cfg.uinput,
		SerialPort: cfg.serialDev,
		Baud:       cfg.baud,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("open %s backend: %w", kind, err)
	}

	logger.Info("running - waiting for MIDI device")
	return play(ctx, watcher, table, act, engOpts...)
}

// play drives an engine on act from src until ctx is done. Every key is
// released before act is closed, also when the loop panics.
func play(ctx context.Context, src source, table *keymap.Table, act actuator.Backend, opts ...engine.Option) error {
	defer func() {
		if err := act.Close(); err != nil {
			logger.Warn("closing backend", "err", err)
		}
	}()
	eng := engine.New(table, act, opts...)
	defer eng.ReleaseAll()

	return loop(ctx, src, eng)
}

// source is the part of midiin.Watcher the event loop consumes.
type source interface {
	Events() <-chan midiin.Event
	Disconnects() <-chan string
	Connected() (string, bool)
	Tick()
}

func loop(ctx context.Context, src source, eng *engine.Engine) error {
	var device string
	tick := func() {
		src.Tick()
		name, ok := src.Connected()
		switch {
		case ok && name != device:
			logger.Info("playing", "device", name)
		case !ok && device != "":
			logger.Info("waiting for MIDI device")
		}
		device = name
	}
	tick()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return nil
		case ev := <-src.Events():
			dispatch(eng, ev)
		case name := <-src.Disconnects():
			// Events queued before the device vanished come first, or a
			// note-on could land after the release and stick.
			drain(src, eng)
			logger.Warn("midi: disconnect - releasing all keys", "device", name)
			eng.ReleaseAll()
		case <-ticker.C:
			tick()
		}
	}
}

// drain dispatches the events already queued on src without waiting.
func drain(src source, eng *engine.Engine) {
	for {
		select {
		case ev := <-src.Events():
			dispatch(eng, ev)
		default:
			return
		}
	}
}

func dispatch(eng *engine.Engine, ev midiin.Event) {
	switch ev.Kind {
	case midiin.NoteOn:
		eng.NoteOn(keymap.Note(ev.Note), ev.Velocity)
	case midiin.NoteOff:
		eng.NoteOff(keymap.Note(ev.Note))
	case midiin.ControlChange:
		eng.ControlChange(ev.Controller, ev.Value)
	}
}

// list prints the MIDI inputs and serial ports the backends could use.
func list(w io.Writer) error {
	drv, err := rtmididrv.New()
	if err != nil {
		return fmt.Errorf("init MIDI driver: %w", err)
	}
	defer drv.Close()

	fmt.Fprintln(w, "MIDI inputs:")
	ins, err := midiin.ListInputs(drv)
	switch {
	case errors.Is(err, midiin.ErrNoInputs):
		fmt.Fprintln(w, "  (none)")
	case err != nil:
		return err
	}
	for _, name := range ins {
		fmt.Fprintf(w, "  %s\n", name)
	}

	fmt.Fprintln(w, "Serial ports:")
	ports, err := actuator.SerialPorts()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, p := range ports {
		fmt.Fprintf(w, "  %s\n", p)
	}
	return nil
}
