//go:build !tinygo && cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

var hostSpecialKeys = []struct {
	key  ebiten.Key
	code KeyCode
	r    rune
}{
	{ebiten.KeyArrowUp, KeyUp, 0},
	{ebiten.KeyArrowDown, KeyDown, 0},
	{ebiten.KeyArrowLeft, KeyLeft, 0},
	{ebiten.KeyArrowRight, KeyRight, 0},
	{ebiten.KeyEnter, KeyEnter, '\n'},
	{ebiten.KeyEscape, KeyEscape, 0x1b},
	{ebiten.KeyBackspace, KeyBackspace, '\b'},
	{ebiten.KeyTab, KeyTab, '\t'},
}

// poll samples the window's keyboard once per frame, like the controller
// filling its event ring between interrupts.
func (k *hostKeyboard) poll() {
	for _, r := range ebiten.AppendInputChars(nil) {
		k.push(KeyEvent{Press: true, Rune: r})
	}

	for _, sk := range hostSpecialKeys {
		if inpututil.IsKeyJustPressed(sk.key) {
			k.push(KeyEvent{Code: sk.code, Press: true, Rune: sk.r})
		}
		if inpututil.IsKeyJustReleased(sk.key) {
			k.push(KeyEvent{Code: sk.code, Press: false})
		}
	}
}
