package actuator

import (
	"fmt"
	"io"
	"log/slog"

	"go.bug.st/serial"

	"github.com/chase3718/lou-keys/internal/keys"
)

// Serial drives a USB-HID bridge microcontroller (for example a Pro Micro
// presenting itself as a keyboard) over a serial link, one frame per key
// transition.
type Serial struct {
	port   io.WriteCloser
	name   string
	seq    byte
	logger *slog.Logger
}

// OpenSerial opens the named serial device at the given baud rate.
func OpenSerial(name string, baud int, logger *slog.Logger) (*Serial, error) {
	mode := &serial.Mode{BaudRate: baud}
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial %s at %d baud: %w", name, baud, err)
	}
	logger.Info("serial: port opened", "device", name, "baud", baud)
	return newSerial(p, name, logger), nil
}

func newSerial(port io.WriteCloser, name string, logger *slog.Logger) *Serial {
	return &Serial{port: port, name: name, logger: logger}
}

// SerialPorts lists the serial devices present on the system.
func SerialPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}
	return ports, nil
}

func (s *Serial) Press(k keys.Key) error   { return s.sendKey(CmdKeyDown, k) }
func (s *Serial) Release(k keys.Key) error { return s.sendKey(CmdKeyUp, k) }

// Close tells the bridge to drop every key it still holds, then closes the
// port.
func (s *Serial) Close() error {
	err := s.send(Frame{Cmd: CmdReleaseAll})
	if err != nil {
		s.logger.Warn("serial: release-all failed", "err", err)
	}
	s.logger.Info("serial: closing port", "device", s.name)
	if cerr := s.port.Close(); cerr != nil {
		return fmt.Errorf("close serial %s: %w", s.name, cerr)
	}
	return nil
}

func (s *Serial) sendKey(cmd byte, k keys.Key) error {
	usage, ok := hidUsage(k)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedKey, k)
	}
	return s.send(Frame{Cmd: cmd, Usage: usage})
}

func (s *Serial) send(f Frame) error {
	f.Seq = s.seq
	s.seq++
	data := f.Encode()
	n, err := s.port.Write(data)
	if err != nil {
		return fmt.Errorf("serial write: %w", err)
	}
	s.logger.Debug("serial: frame sent", "bytes", n, "cmd", f.Cmd, "usage", f.Usage, "seq", f.Seq)
	return nil
}
