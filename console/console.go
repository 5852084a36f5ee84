// Package console is the kernel's text terminal: a tinyterm VT100 emulator
// drawn into a rectangle of the framebuffer.
package console

import (
	"image"
	"sync"

	"tock/hal"

	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"
)

const (
	fontHeight = 10
	fontOffset = 6

	cursorOn  = "_\x1b[D"
	cursorOff = " \x1b[D"
	rubout    = "\x1b[D \x1b[D"
)

// Console is safe for concurrent use. Output is drawn into the back buffer
// immediately and published by Flush.
type Console struct {
	mu     sync.Mutex
	d      *regionDisplay
	t      *tinyterm.Terminal
	cursor bool
	dirty  bool
}

// New returns a console occupying area of fb, cleared to black.
func New(fb hal.Framebuffer, area image.Rectangle) *Console {
	c := &Console{d: newRegionDisplay(fb, area)}
	c.reset()
	return c
}

func (c *Console) reset() {
	c.t = tinyterm.NewTerminal(c.d)
	c.t.Configure(&tinyterm.Config{
		Font:              &proggy.TinySZ8pt7b,
		FontHeight:        fontHeight,
		FontOffset:        fontOffset,
		UseSoftwareScroll: true,
	})
	w, h := c.d.Size()
	_ = c.d.FillRectangle(0, 0, w, h, black)
	c.cursor = false
	c.dirty = true
}

// Write implements io.Writer.
func (c *Console) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hideCursorLocked()
	n, err := c.t.Write(p)
	c.dirty = true
	return n, err
}

// PutKey echoes one typed character. Backspace erases the previous cell.
func (c *Console) PutKey(ch byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hideCursorLocked()
	switch ch {
	case '\b', 0x7f:
		_, _ = c.t.Write([]byte(rubout))
	case '\r', '\n':
		_, _ = c.t.Write([]byte{'\n'})
	default:
		_, _ = c.t.Write([]byte{ch})
	}
	c.dirty = true
}

// BlinkCursor toggles the cursor cell and reports whether it is now shown.
func (c *Console) BlinkCursor() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cursor {
		c.hideCursorLocked()
	} else {
		_, _ = c.t.Write([]byte(cursorOn))
		c.cursor = true
	}
	c.dirty = true
	return c.cursor
}

// Clear blanks the console and homes the cursor.
func (c *Console) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

// Flush presents the framebuffer if anything was drawn since the last flush.
func (c *Console) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dirty {
		return nil
	}
	c.dirty = false
	return c.d.Display()
}

func (c *Console) hideCursorLocked() {
	if c.cursor {
		_, _ = c.t.Write([]byte(cursorOff))
		c.cursor = false
	}
}
