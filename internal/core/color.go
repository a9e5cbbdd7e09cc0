package core

import "fmt"

// RGBA is a non-premultiplied 8-bit color.
type RGBA struct {
	R, G, B, A uint8
}

// Hex returns the color as "#rrggbb", ignoring alpha.
func (c RGBA) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Over composites c over an opaque background and returns an opaque color.
func (c RGBA) Over(bg RGBA) RGBA {
	if c.A == 255 {
		return c
	}
	a := uint32(c.A)
	mix := func(fg, bg uint8) uint8 {
		return uint8((uint32(fg)*a + uint32(bg)*(255-a)) / 255)
	}
	return RGBA{R: mix(c.R, bg.R), G: mix(c.G, bg.G), B: mix(c.B, bg.B), A: 255}
}

// Black is the opaque background used under transparent pixels.
var Black = RGBA{A: 255}
