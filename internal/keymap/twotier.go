package keymap

import "github.com/chase3718/lou-keys/internal/keys"

var (
	whitePitches = []string{"C", "D", "E", "F", "G", "A", "B"}
	sharpPitches = []string{"C#", "D#", "F#", "G#", "A#"}
)

// homeBands gives, per octave, the keys for the seven white notes and the
// keys the five sharps reuse under shift. Each sharp borrows the key of the
// white note just below it.
var homeBands = []struct {
	octave       int
	white, sharp string
}{
	{2, "1234567", "12456"},
	{3, "890qwer", "89qwe"},
	{4, "tyuiopa", "tyiop"},
	{5, "sdfghjk", "sdghj"},
	{6, "lzxcvbn", "lzcvb"},
}

// ctrlRuns are chromatic runs played with ctrl held, covering the notes
// below and above the home band.
var ctrlRuns = []struct {
	from string
	row  string
}{
	{"A0", "123"},
	{"C1", "4567890qwert"},
	{"C#7", "yuiopasdfghj"},
	{"D8", "k"},
}

func buildTwoTier(b *builder) {
	shift := keys.Named(keys.Shift)
	ctrl := keys.Named(keys.Ctrl)

	for _, band := range homeBands {
		for i, k := range keyRow(band.white) {
			b.set(pitch(whitePitches[i], band.octave), NewCombo(k))
		}
		for i, k := range keyRow(band.sharp) {
			b.set(pitch(sharpPitches[i], band.octave), NewCombo(k, shift))
		}
	}

	b.set(mustNote("C7"), NewCombo(keys.Char('m')))

	for _, run := range ctrlRuns {
		n := mustNote(run.from)
		for _, k := range keyRow(run.row) {
			b.set(n, NewCombo(k, ctrl))
			n++
		}
	}
}

func pitch(name string, octave int) Note {
	return Note((octave+1)*12 + indexOf(name))
}

func indexOf(name string) int {
	for i, n := range noteNames {
		if n == name {
			return i
		}
	}
	panic("keymap: unknown pitch class " + name)
}
