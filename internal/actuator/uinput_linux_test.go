//go:build linux

package actuator

import (
	"testing"

	"github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chase3718/lou-keys/internal/keymap"
	"github.com/chase3718/lou-keys/internal/keys"
)

func TestEvdevCode(t *testing.T) {
	tests := []struct {
		key  keys.Key
		want evdev.EvCode
	}{
		{keys.Char('a'), evdev.KEY_A},
		{keys.Char('m'), evdev.KEY_M},
		{keys.Char('1'), evdev.KEY_1},
		{keys.Char('0'), evdev.KEY_0},
		{keys.Char('.'), evdev.KEY_DOT},
		{keys.Named(keys.Shift), evdev.KEY_LEFTSHIFT},
		{keys.Named(keys.Ctrl), evdev.KEY_LEFTCTRL},
		{keys.Named(keys.Space), evdev.KEY_SPACE},
	}
	for _, tt := range tests {
		got, ok := evdevCode(tt.key)
		require.True(t, ok, tt.key.String())
		assert.Equal(t, tt.want, got, tt.key.String())
	}

	_, ok := evdevCode(keys.Char('ü'))
	assert.False(t, ok)
}

func TestEvdevCode_CoversEveryLayout(t *testing.T) {
	caps := map[evdev.EvCode]bool{}
	for _, c := range evdevCapabilities() {
		caps[c] = true
	}
	for _, l := range keymap.Layouts() {
		tbl, err := keymap.Build(l)
		require.NoError(t, err)
		for _, k := range append(tbl.UsedKeys(), keys.Named(keys.Space)) {
			c, ok := evdevCode(k)
			require.True(t, ok, "layout %s: no evdev code for %s", l, k)
			assert.True(t, caps[c], "layout %s: %s not advertised", l, k)
		}
	}
}
