package app

import (
	"fmt"
	"image"
	"image/color"

	"tock/hal"
	"tock/kernel"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// window is an off-screen RGB565 pixel buffer a task draws into.
type window struct {
	w, h int
	pix  []uint16
}

func newWindow(w, h int) *window {
	return &window{w: w, h: h, pix: make([]uint16, w*h)}
}

func (w *window) Size() (x, y int16) { return int16(w.w), int16(w.h) }

func (w *window) SetPixel(x, y int16, c color.RGBA) {
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= w.w || iy < 0 || iy >= w.h {
		return
	}
	w.pix[iy*w.w+ix] = hal.RGB565(c.R, c.G, c.B)
}

func (w *window) Display() error { return nil }

func (w *window) fill(c color.RGBA) {
	p := hal.RGB565(c.R, c.G, c.B)
	for i := range w.pix {
		w.pix[i] = p
	}
}

// drawText draws s with its baseline at y.
func (w *window) drawText(x, y int16, s string, c color.RGBA) {
	tinyfont.WriteLine(w, &proggy.TinySZ8pt7b, x, y, s, c)
}

type layer struct {
	id  uint32
	pos image.Point
	win *window
}

func (l *layer) bounds() image.Rectangle {
	return image.Rect(0, 0, l.win.w, l.win.h).Add(l.pos)
}

// layerManager composites windows onto the desktop part of the framebuffer,
// bottom layer first.
type layerManager struct {
	fb      hal.Framebuffer
	desktop image.Rectangle
	bg      uint16
	layers  []*layer
}

func newLayerManager(fb hal.Framebuffer, desktop image.Rectangle, bg color.RGBA) *layerManager {
	return &layerManager{fb: fb, desktop: desktop, bg: hal.RGB565(bg.R, bg.G, bg.B)}
}

func (m *layerManager) newLayer(id uint32, win *window, pos image.Point) *layer {
	l := &layer{id: id, pos: pos, win: win}
	m.layers = append(m.layers, l)
	return l
}

func (m *layerManager) layer(id uint32) *layer {
	for _, l := range m.layers {
		if l.id == id {
			return l
		}
	}
	return nil
}

// apply carries out one compositor request.
func (m *layerManager) apply(arg kernel.LayerArg) error {
	l := m.layer(arg.LayerID)
	if l == nil {
		return fmt.Errorf("no layer %d", arg.LayerID)
	}

	switch arg.Op {
	case kernel.LayerMove, kernel.LayerMoveRelative:
		old := l.bounds()
		if arg.Op == kernel.LayerMove {
			l.pos = image.Pt(arg.Area.X, arg.Area.Y)
		} else {
			l.pos = l.pos.Add(image.Pt(arg.Area.X, arg.Area.Y))
		}
		m.draw(old.Union(l.bounds()))
	case kernel.LayerDraw:
		m.draw(l.bounds())
	case kernel.LayerDrawArea:
		a := arg.Area
		m.draw(image.Rect(a.X, a.Y, a.X+a.W, a.Y+a.H).Add(l.pos).Intersect(l.bounds()))
	default:
		return fmt.Errorf("unknown layer operation %d", arg.Op)
	}
	return nil
}

func (m *layerManager) drawAll() { m.draw(m.desktop) }

// draw recomposes area of the desktop and presents the framebuffer.
func (m *layerManager) draw(area image.Rectangle) {
	area = area.Intersect(m.desktop)
	if area.Empty() || m.fb.Format() != hal.PixelFormatRGB565 {
		return
	}
	buf := m.fb.Buffer()
	stride := m.fb.StrideBytes()
	put := func(x, y int, p uint16) {
		off := y*stride + x*2
		buf[off] = byte(p)
		buf[off+1] = byte(p >> 8)
	}

	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			put(x, y, m.bg)
		}
	}
	for _, l := range m.layers {
		r := l.bounds().Intersect(area)
		for y := r.Min.Y; y < r.Max.Y; y++ {
			row := (y - l.pos.Y) * l.win.w
			for x := r.Min.X; x < r.Max.X; x++ {
				put(x, y, l.win.pix[row+x-l.pos.X])
			}
		}
	}
	_ = m.fb.Present()
}
