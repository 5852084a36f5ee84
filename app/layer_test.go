package app

import (
	"image"
	"image/color"
	"testing"

	"tock/hal"
	"tock/kernel"
)

type testFramebuffer struct {
	w, h     int
	buf      []byte
	presents int
}

func newTestFramebuffer(w, h int) *testFramebuffer {
	return &testFramebuffer{w: w, h: h, buf: make([]byte, w*h*2)}
}

func (f *testFramebuffer) Width() int              { return f.w }
func (f *testFramebuffer) Height() int             { return f.h }
func (f *testFramebuffer) Format() hal.PixelFormat { return hal.PixelFormatRGB565 }
func (f *testFramebuffer) StrideBytes() int        { return f.w * 2 }
func (f *testFramebuffer) Buffer() []byte          { return f.buf }
func (f *testFramebuffer) ClearRGB(r, g, b uint8)  {}
func (f *testFramebuffer) Present() error          { f.presents++; return nil }

func (f *testFramebuffer) pixel(x, y int) uint16 {
	off := y*f.w*2 + x*2
	return uint16(f.buf[off]) | uint16(f.buf[off+1])<<8
}

var (
	testBG  = color.RGBA{B: 255, A: 255}
	testWin = color.RGBA{R: 255, A: 255}
)

func TestLayerManagerComposites(t *testing.T) {
	fb := newTestFramebuffer(40, 30)
	m := newLayerManager(fb, image.Rect(0, 0, 40, 20), testBG)
	win := newWindow(10, 5)
	win.fill(testWin)
	m.newLayer(7, win, image.Pt(2, 3))

	m.drawAll()

	bg, red := hal.RGB565(0, 0, 255), hal.RGB565(255, 0, 0)
	if got := fb.pixel(2, 3); got != red {
		t.Fatalf("pixel in window = %#x, want %#x", got, red)
	}
	if got := fb.pixel(12, 3); got != bg {
		t.Fatalf("pixel right of window = %#x, want %#x", got, bg)
	}
	if got := fb.pixel(0, 25); got != 0 {
		t.Fatalf("pixel below desktop = %#x, want untouched", got)
	}
	if fb.presents != 1 {
		t.Fatalf("presents = %d, want 1", fb.presents)
	}
}

func TestLayerManagerMove(t *testing.T) {
	fb := newTestFramebuffer(40, 30)
	m := newLayerManager(fb, image.Rect(0, 0, 40, 20), testBG)
	win := newWindow(4, 4)
	win.fill(testWin)
	m.newLayer(1, win, image.Pt(0, 0))
	m.drawAll()

	if err := m.apply(kernel.LayerArg{LayerID: 1, Op: kernel.LayerMoveRelative, Area: kernel.Rect{X: 10, Y: 2}}); err != nil {
		t.Fatalf("apply(move relative) err = %v", err)
	}

	bg, red := hal.RGB565(0, 0, 255), hal.RGB565(255, 0, 0)
	if got := fb.pixel(0, 0); got != bg {
		t.Fatalf("old position = %#x, want background", got)
	}
	if got := fb.pixel(10, 2); got != red {
		t.Fatalf("new position = %#x, want window", got)
	}

	if err := m.apply(kernel.LayerArg{LayerID: 1, Op: kernel.LayerMove, Area: kernel.Rect{X: 30, Y: 10}}); err != nil {
		t.Fatalf("apply(move) err = %v", err)
	}
	if got := fb.pixel(33, 13); got != red {
		t.Fatalf("moved window = %#x, want window", got)
	}
}

func TestLayerManagerUnknownLayer(t *testing.T) {
	m := newLayerManager(newTestFramebuffer(8, 8), image.Rect(0, 0, 8, 8), testBG)
	if err := m.apply(kernel.LayerArg{LayerID: 3, Op: kernel.LayerDraw}); err == nil {
		t.Fatalf("apply(unknown layer) err = nil, want error")
	}
}
