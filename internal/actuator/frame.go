package actuator

const (
	SOF0 = 0xAA
	SOF1 = 0x55

	CmdKeyDown    = 0x20
	CmdKeyUp      = 0x21
	CmdReleaseAll = 0x22
)

// Frame is one key command for the HID bridge firmware.
type Frame struct {
	Cmd   byte
	Usage byte // USB HID usage id, 0 for CmdReleaseAll
	Seq   byte
}

// Encode builds the on-wire representation:
//
//	[SOF0][SOF1][LEN][CMD][usage][seq][CKS]
//
// LEN counts CMD plus payload; CKS is the XOR of LEN, CMD and the payload.
func (f *Frame) Encode() []byte {
	payload := []byte{f.Usage, f.Seq}

	length := byte(len(payload) + 1) // +1 for CMD byte
	cks := length ^ f.Cmd
	for _, b := range payload {
		cks ^= b
	}

	out := []byte{SOF0, SOF1, length, f.Cmd}
	out = append(out, payload...)
	out = append(out, cks)
	return out
}
