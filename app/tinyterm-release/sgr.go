// SGR attribute, color and palette definitions from upstream
// github.com/tinygo-org/tinyterm, which tinyterm.go in this copy refers to.

package tinyterm

import "image/color"

// SGR parameter values understood by selectGraphicRendition.
const (
	SGRReset = 0
	SGRBold  = 1

	SGRFgBlack   = 30
	SGRFgRed     = 31
	SGRFgGreen   = 32
	SGRFgYellow  = 33
	SGRFgBlue    = 34
	SGRFgMagenta = 35
	SGRFgCyan    = 36
	SGRFgWhite   = 37

	SGRSetFgColor     = 38
	SGRDefaultFgColor = 39

	SGRBgBlack   = 40
	SGRBgRed     = 41
	SGRBgGreen   = 42
	SGRBgYellow  = 43
	SGRBgBlue    = 44
	SGRBgMagenta = 45
	SGRBgCyan    = 46
	SGRBgWhite   = 47

	SGRSetBgColor     = 48
	SGRDefaultBgColor = 49
)

// Color is an index into the 256-color terminal palette.
type Color uint8

const (
	ColorBlack Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
)

var basePalette = [16]color.RGBA{
	{0, 0, 0, 255},
	{205, 0, 0, 255},
	{0, 205, 0, 255},
	{205, 205, 0, 255},
	{0, 0, 238, 255},
	{205, 0, 205, 255},
	{0, 205, 205, 255},
	{229, 229, 229, 255},
	{127, 127, 127, 255},
	{255, 0, 0, 255},
	{0, 255, 0, 255},
	{255, 255, 0, 255},
	{92, 92, 255, 255},
	{255, 0, 255, 255},
	{0, 255, 255, 255},
	{255, 255, 255, 255},
}

// RGBA resolves c through the xterm 256-color palette.
func (c Color) RGBA() color.RGBA {
	switch {
	case c < 16:
		return basePalette[c]
	case c < 232:
		i := int(c) - 16
		level := func(v int) uint8 {
			if v == 0 {
				return 0
			}
			return uint8(55 + v*40)
		}
		return color.RGBA{level(i / 36), level(i / 6 % 6), level(i % 6), 255}
	default:
		g := uint8(8 + (int(c)-232)*10)
		return color.RGBA{g, g, g, 255}
	}
}

type sgrAttrs struct {
	attrs byte
	fgcol color.RGBA
	bgcol color.RGBA
}

func (a *sgrAttrs) reset() {
	a.attrs = 0
	a.fgcol = ColorWhite.RGBA()
	a.bgcol = ColorBlack.RGBA()
}

func (a *sgrAttrs) setFG(c Color) { a.fgcol = c.RGBA() }

func (a *sgrAttrs) setBG(c Color) { a.bgcol = c.RGBA() }
