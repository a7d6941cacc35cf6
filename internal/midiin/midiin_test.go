package midiin

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		msg  midi.Message
		want Event
		ok   bool
	}{
		{
			name: "note on",
			msg:  midi.NoteOn(0, 60, 100),
			want: Event{Kind: NoteOn, Channel: 0, Note: 60, Velocity: 100},
			ok:   true,
		},
		{
			name: "note on zero velocity",
			msg:  midi.NoteOn(2, 61, 0),
			want: Event{Kind: NoteOff, Channel: 2, Note: 61},
			ok:   true,
		},
		{
			name: "note off",
			msg:  midi.NoteOff(15, 21),
			want: Event{Kind: NoteOff, Channel: 15, Note: 21},
			ok:   true,
		},
		{
			name: "sustain",
			msg:  midi.ControlChange(0, 64, 127),
			want: Event{Kind: ControlChange, Channel: 0, Controller: 64, Value: 127},
			ok:   true,
		},
		{
			name: "program change ignored",
			msg:  midi.ProgramChange(0, 5),
			ok:   false,
		},
		{
			name: "pitch bend ignored",
			msg:  midi.Pitchbend(0, 100),
			ok:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Decode(tt.msg)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "note_on", NoteOn.String())
	assert.Equal(t, "note_off", NoteOff.String())
	assert.Equal(t, "control_change", ControlChange.String())
	assert.Equal(t, "kind(9)", Kind(9).String())
}

func TestFilterInputs(t *testing.T) {
	in := []string{"Midi Through:Midi Through Port-0 14:0", "Keystation 88 MK3", "Dummy MIDI", "USB Piano"}
	assert.Equal(t, []string{"Keystation 88 MK3", "USB Piano"}, filterInputs(in, DefaultExcluded))
	assert.Equal(t, in, filterInputs(in, nil))
}

func TestPickInput(t *testing.T) {
	inputs := []string{"USB Piano", "Launchkey 49 MIDI", "Keystation 61"}

	tests := []struct {
		name      string
		device    string
		preferred []string
		want      string
		ok        bool
	}{
		{"preferred order wins over list order", "", []string{"Keystation", "Launchkey"}, "Keystation 61", true},
		{"falls back to first listed", "", []string{"Yamaha"}, "USB Piano", true},
		{"no preferences", "", nil, "USB Piano", true},
		{"exact device", "Launchkey 49 MIDI", nil, "Launchkey 49 MIDI", true},
		{"device substring case-insensitive", "usb", DefaultPreferred, "USB Piano", true},
		{"named device missing", "Nord", DefaultPreferred, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pickInput(inputs, tt.device, tt.preferred)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := pickInput(nil, "", DefaultPreferred)
	assert.False(t, ok)
}

// emptyDriver reports no ports, or a listing error.
type emptyDriver struct {
	insErr error
	scans  int
	closed bool
}

func (d *emptyDriver) Ins() ([]drivers.In, error) {
	d.scans++
	return nil, d.insErr
}
func (d *emptyDriver) Outs() ([]drivers.Out, error) { return nil, nil }
func (d *emptyDriver) String() string               { return "empty" }
func (d *emptyDriver) Close() error {
	d.closed = true
	return nil
}

func TestNewWatcher_Options(t *testing.T) {
	w := NewWatcher(&emptyDriver{},
		WithDevice("  Nord "),
		WithPreferred([]string{"Kawai"}),
		WithExcluded([]string{"Loopback"}),
		WithRescanInterval(5*time.Second),
		WithRescanInterval(0),
	)
	assert.Equal(t, "Nord", w.device)
	assert.Equal(t, []string{"Kawai"}, w.preferred)
	assert.Equal(t, []string{"Loopback"}, w.excluded)
	assert.Equal(t, 5*time.Second, w.rescan)

	w = NewWatcher(&emptyDriver{})
	assert.Equal(t, DefaultPreferred, w.preferred)
	assert.Equal(t, DefaultExcluded, w.excluded)
	assert.Equal(t, defaultRescanInterval, w.rescan)
}

func TestWatcher_TickWithoutInputs(t *testing.T) {
	drv := &emptyDriver{}
	w := NewWatcher(drv,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithRescanInterval(time.Hour),
	)

	w.Tick()
	w.Tick() // inside the rescan interval
	assert.Equal(t, 1, drv.scans)

	name, ok := w.Connected()
	assert.False(t, ok)
	assert.Empty(t, name)

	require.NoError(t, w.Close())
	assert.True(t, drv.closed)
	w.Tick() // closed watchers do not scan
	assert.Equal(t, 1, drv.scans)
}

func TestListInputs(t *testing.T) {
	_, err := ListInputs(&emptyDriver{})
	assert.ErrorIs(t, err, ErrNoInputs)

	boom := errors.New("alsa gone")
	_, err = ListInputs(&emptyDriver{insErr: boom})
	assert.ErrorIs(t, err, boom)
}
