package actuator

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chase3718/lou-keys/internal/keymap"
	"github.com/chase3718/lou-keys/internal/keys"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakePort records writes and whether it was closed.
type fakePort struct {
	bytes.Buffer
	closed   bool
	writeErr error
}

func (p *fakePort) Write(b []byte) (int, error) {
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	return p.Buffer.Write(b)
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func TestFrameEncode(t *testing.T) {
	f := Frame{Cmd: CmdKeyDown, Usage: 0x04, Seq: 7}
	got := f.Encode()

	length := byte(3)
	cks := length ^ CmdKeyDown ^ 0x04 ^ 7
	assert.Equal(t, []byte{SOF0, SOF1, length, CmdKeyDown, 0x04, 7, cks}, got)
}

func TestHIDUsage(t *testing.T) {
	tests := []struct {
		key  keys.Key
		want byte
	}{
		{keys.Char('a'), 0x04},
		{keys.Char('z'), 0x1D},
		{keys.Char('1'), 0x1E},
		{keys.Char('9'), 0x26},
		{keys.Char('0'), 0x27},
		{keys.Char('/'), 0x38},
		{keys.Named(keys.Space), 0x2C},
		{keys.Named(keys.Ctrl), 0xE0},
		{keys.Named(keys.Shift), 0xE1},
		{keys.Named(keys.Alt), 0xE2},
	}
	for _, tt := range tests {
		got, ok := hidUsage(tt.key)
		require.True(t, ok, tt.key.String())
		assert.Equal(t, tt.want, got, tt.key.String())
	}

	_, ok := hidUsage(keys.Char('é'))
	assert.False(t, ok)
	_, ok = hidUsage(keys.Key{})
	assert.False(t, ok)
}

func TestHIDUsage_CoversEveryLayout(t *testing.T) {
	for _, l := range keymap.Layouts() {
		tbl, err := keymap.Build(l)
		require.NoError(t, err)
		for _, k := range append(tbl.UsedKeys(), keys.Named(keys.Space)) {
			_, ok := hidUsage(k)
			assert.True(t, ok, "layout %s: no usage id for %s", l, k)
		}
	}
}

func TestSerial_KeyFrames(t *testing.T) {
	port := &fakePort{}
	s := newSerial(port, "test", quietLogger())

	require.NoError(t, s.Press(keys.Named(keys.Shift)))
	require.NoError(t, s.Release(keys.Char('b')))

	want := append(
		(&Frame{Cmd: CmdKeyDown, Usage: 0xE1, Seq: 0}).Encode(),
		(&Frame{Cmd: CmdKeyUp, Usage: 0x05, Seq: 1}).Encode()...,
	)
	assert.Equal(t, want, port.Bytes())
}

func TestSerial_UnsupportedKey(t *testing.T) {
	port := &fakePort{}
	s := newSerial(port, "test", quietLogger())

	err := s.Press(keys.Char('ß'))
	assert.ErrorIs(t, err, ErrUnsupportedKey)
	assert.Zero(t, port.Len())
}

func TestSerial_CloseReleasesAll(t *testing.T) {
	port := &fakePort{}
	s := newSerial(port, "test", quietLogger())

	require.NoError(t, s.Close())
	assert.True(t, port.closed)
	assert.Equal(t, (&Frame{Cmd: CmdReleaseAll}).Encode(), port.Bytes())
}

func TestSerial_WriteError(t *testing.T) {
	port := &fakePort{writeErr: errors.New("unplugged")}
	s := newSerial(port, "test", quietLogger())

	assert.Error(t, s.Press(keys.Char('a')))
	// Close still closes the port even if the release-all frame fails.
	require.NoError(t, s.Close())
	assert.True(t, port.closed)
}

func TestLogBackend(t *testing.T) {
	var buf bytes.Buffer
	l := NewLog(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, l.Press(keys.Char('q')))
	require.NoError(t, l.Release(keys.Named(keys.Shift)))
	require.NoError(t, l.Close())

	out := buf.String()
	assert.Contains(t, out, `msg="actuator: press" key=q`)
	assert.Contains(t, out, `msg="actuator: release" key=shift`)
}

func TestOpen_Log(t *testing.T) {
	b, err := Open(KindLog, Options{Logger: quietLogger()})
	require.NoError(t, err)
	assert.IsType(t, &Log{}, b)
}

func TestOpen_Unknown(t *testing.T) {
	_, err := Open("bluetooth", Options{})
	assert.ErrorIs(t, err, ErrUnsupportedBackend)
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(" " + string(k) + " ")
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	got, err := ParseKind("SERIAL")
	require.NoError(t, err)
	assert.Equal(t, KindSerial, got)

	_, err = ParseKind("xdotool")
	assert.ErrorIs(t, err, ErrUnsupportedBackend)
}
