package console

import (
	"image"
	"image/color"

	"tock/hal"

	"tinygo.org/x/drivers"
)

// regionDisplay is a drivers.Displayer over one rectangle of a framebuffer.
// Coordinates are relative to the rectangle's origin and clipped to it.
type regionDisplay struct {
	fb   hal.Framebuffer
	area image.Rectangle
}

func newRegionDisplay(fb hal.Framebuffer, area image.Rectangle) *regionDisplay {
	bounds := image.Rect(0, 0, fb.Width(), fb.Height())
	return &regionDisplay{fb: fb, area: area.Intersect(bounds)}
}

func (d *regionDisplay) Size() (x, y int16) {
	return int16(d.area.Dx()), int16(d.area.Dy())
}

func (d *regionDisplay) SetPixel(x, y int16, c color.RGBA) {
	if d.fb.Format() != hal.PixelFormatRGB565 {
		return
	}
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= d.area.Dx() || iy < 0 || iy >= d.area.Dy() {
		return
	}
	buf := d.fb.Buffer()
	off := (d.area.Min.Y+iy)*d.fb.StrideBytes() + (d.area.Min.X+ix)*2
	if off < 0 || off+1 >= len(buf) {
		return
	}
	pixel := hal.RGB565(c.R, c.G, c.B)
	buf[off] = byte(pixel)
	buf[off+1] = byte(pixel >> 8)
}

func (d *regionDisplay) Display() error {
	return d.fb.Present()
}

// ScrollUp moves the region's rows up by lines and clears the rows exposed
// at the bottom.
func (d *regionDisplay) ScrollUp(lines int16, bg color.RGBA) error {
	if d.fb.Format() != hal.PixelFormatRGB565 || lines <= 0 {
		return nil
	}
	w, h := d.area.Dx(), d.area.Dy()
	n := int(lines)
	if n >= h {
		return d.FillRectangle(0, 0, int16(w), int16(h), bg)
	}

	buf := d.fb.Buffer()
	stride := d.fb.StrideBytes()
	x0 := d.area.Min.X * 2
	rowBytes := w * 2
	for row := 0; row < h-n; row++ {
		dst := (d.area.Min.Y+row)*stride + x0
		src := (d.area.Min.Y+row+n)*stride + x0
		if src+rowBytes > len(buf) {
			break
		}
		copy(buf[dst:dst+rowBytes], buf[src:src+rowBytes])
	}
	return d.FillRectangle(0, int16(h-n), int16(w), int16(n), bg)
}

func (d *regionDisplay) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	if d.fb.Format() != hal.PixelFormatRGB565 {
		return nil
	}
	r := image.Rect(int(x), int(y), int(x)+int(width), int(y)+int(height)).
		Add(d.area.Min).
		Intersect(d.area)
	if r.Empty() {
		return nil
	}

	pixel := hal.RGB565(c.R, c.G, c.B)
	lo, hi := byte(pixel), byte(pixel>>8)
	buf := d.fb.Buffer()
	stride := d.fb.StrideBytes()
	for py := r.Min.Y; py < r.Max.Y; py++ {
		row := py * stride
		for px := r.Min.X; px < r.Max.X; px++ {
			off := row + px*2
			if off+1 >= len(buf) {
				continue
			}
			buf[off] = lo
			buf[off+1] = hi
		}
	}
	return nil
}

func (d *regionDisplay) SetScroll(line int16) {}

func (d *regionDisplay) SetRotation(rotation drivers.Rotation) error {
	return nil
}

var black = color.RGBA{A: 255}
