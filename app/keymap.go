package app

import (
	"tock/hal"
	"tock/kernel"
)

// HID keyboard usage IDs.
const (
	hidA         = 0x04
	hid1         = 0x1e
	hid0         = 0x27
	hidEnter     = 0x28
	hidEscape    = 0x29
	hidBackspace = 0x2a
	hidTab       = 0x2b
	hidSpace     = 0x2c
	hidRight     = 0x4f
	hidLeft      = 0x50
	hidDown      = 0x51
	hidUp        = 0x52

	modLeftShift = 0x02
)

// keyPushMessage converts a key press into the MsgKeyPush a boot keyboard
// driver would report. Releases and unmappable keys yield false.
func keyPushMessage(ev hal.KeyEvent) (kernel.Message, bool) {
	if !ev.Press {
		return kernel.Message{}, false
	}
	mod, code, ascii := hidUsage(ev)
	if code == 0 && ascii == 0 {
		return kernel.Message{}, false
	}
	return kernel.KeyPushMessage(mod, code, ascii), true
}

func hidUsage(ev hal.KeyEvent) (mod, code, ascii uint8) {
	switch ev.Code {
	case hal.KeyEnter:
		return 0, hidEnter, '\n'
	case hal.KeyEscape:
		return 0, hidEscape, 0x1b
	case hal.KeyBackspace:
		return 0, hidBackspace, '\b'
	case hal.KeyTab:
		return 0, hidTab, '\t'
	case hal.KeyRight:
		return 0, hidRight, 0
	case hal.KeyLeft:
		return 0, hidLeft, 0
	case hal.KeyDown:
		return 0, hidDown, 0
	case hal.KeyUp:
		return 0, hidUp, 0
	}

	r := ev.Rune
	switch {
	case r >= 'a' && r <= 'z':
		return 0, hidA + uint8(r-'a'), uint8(r)
	case r >= 'A' && r <= 'Z':
		return modLeftShift, hidA + uint8(r-'A'), uint8(r)
	case r >= '1' && r <= '9':
		return 0, hid1 + uint8(r-'1'), uint8(r)
	case r == '0':
		return 0, hid0, '0'
	case r == ' ':
		return 0, hidSpace, ' '
	case r == '\n' || r == '\r':
		return 0, hidEnter, '\n'
	case r == '\b' || r == 0x7f:
		return 0, hidBackspace, '\b'
	case r > 0 && r < 0x80:
		return 0, 0, uint8(r)
	}
	return 0, 0, 0
}
