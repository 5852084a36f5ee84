package app

import (
	"testing"

	"tock/hal"
	"tock/kernel"
)

func TestKeyPushMessage(t *testing.T) {
	cases := []struct {
		ev        hal.KeyEvent
		mod, code uint8
		ascii     uint8
	}{
		{hal.KeyEvent{Press: true, Rune: 'a'}, 0, 0x04, 'a'},
		{hal.KeyEvent{Press: true, Rune: 'S'}, 0x02, 0x16, 'S'},
		{hal.KeyEvent{Press: true, Rune: '0'}, 0, 0x27, '0'},
		{hal.KeyEvent{Press: true, Code: hal.KeyEnter, Rune: '\n'}, 0, 0x28, '\n'},
		{hal.KeyEvent{Press: true, Code: hal.KeyUp}, 0, 0x52, 0},
		{hal.KeyEvent{Press: true, Rune: '?'}, 0, 0, '?'},
	}
	for _, c := range cases {
		msg, ok := keyPushMessage(c.ev)
		if !ok {
			t.Fatalf("keyPushMessage(%+v) ok = false", c.ev)
		}
		want := kernel.KeyboardArg{Modifier: c.mod, Keycode: c.code, ASCII: c.ascii}
		if msg.Type != kernel.MsgKeyPush || msg.Keyboard != want {
			t.Fatalf("keyPushMessage(%+v) = %+v, want %+v", c.ev, msg.Keyboard, want)
		}
	}
}

func TestKeyPushMessageSkips(t *testing.T) {
	if _, ok := keyPushMessage(hal.KeyEvent{Press: false, Rune: 'a'}); ok {
		t.Fatalf("release ok = true, want skipped")
	}
	if _, ok := keyPushMessage(hal.KeyEvent{Press: true, Rune: 'é'}); ok {
		t.Fatalf("non-ASCII rune ok = true, want skipped")
	}
}
