package keymap

import "github.com/chase3718/lou-keys/internal/keys"

// sequentialRow is walked left to right, one key per white note.
const sequentialRow = "1234567890qwertyuiopasdfghjklzxcvbnm"

// sequentialRoot is C2, the lowest key of a 55-key surface's playable range.
const sequentialRoot Note = 36

func buildSequential(b *builder) {
	shift := keys.Named(keys.Shift)
	n := sequentialRoot
	for _, k := range keyRow(sequentialRow) {
		b.set(n, NewCombo(k))
		// A white note with a sharp above it lends its key to that sharp.
		if sharp := n + 1; sharp <= MaxNote && sharp.IsBlack() {
			b.set(sharp, NewCombo(k, shift))
			n += 2
			continue
		}
		n++
	}
}
