package engine

import (
	"image"
	"image/color"

	"github.com/dop251/goja"
	"golang.org/x/image/draw"
)

// Surface is a drawable RGBA image exposed to scripts. Its buffer property is
// an ArrayBuffer sharing memory with the image, so a script can hand it
// straight to the frame attribute.
type Surface struct {
	img *image.NRGBA
}

// NewSurface allocates a transparent surface of the given size.
func NewSurface(w, h int) *Surface {
	return &Surface{img: image.NewNRGBA(image.Rect(0, 0, w, h))}
}

// Pix returns the backing pixel buffer.
func (s *Surface) Pix() []byte {
	return s.img.Pix
}

// Fill paints the whole surface.
func (s *Surface) Fill(c color.NRGBA) {
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// FillRect paints a rectangle, clipped to the surface.
func (s *Surface) FillRect(x, y, w, h int, c color.NRGBA) {
	r := image.Rect(x, y, x+w, y+h).Intersect(s.img.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(s.img, r, image.NewUniform(c), image.Point{}, draw.Over)
}

// FillCircle paints a filled circle, clipped to the surface.
func (s *Surface) FillCircle(cx, cy, radius int, c color.NRGBA) {
	r := image.Rect(cx-radius, cy-radius, cx+radius+1, cy+radius+1).Intersect(s.img.Bounds())
	rr := radius * radius
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= rr {
				s.img.SetNRGBA(x, y, c)
			}
		}
	}
}

// SetPixel sets one pixel. Out-of-bounds coordinates are ignored.
func (s *Surface) SetPixel(x, y int, c color.NRGBA) {
	s.img.SetNRGBA(x, y, c)
}

// installSurfaces registers createSurface(width, height) in the global scope.
func (rt *Runtime) installSurfaces() {
	//nolint:errcheck // Globals on a fresh runtime
	rt.vm.Set("createSurface", func(call goja.FunctionCall) goja.Value {
		w := int(call.Argument(0).ToInteger())
		h := int(call.Argument(1).ToInteger())
		if w <= 0 || h <= 0 {
			panic(rt.vm.NewTypeError("createSurface: width and height must be positive"))
		}
		return rt.surfaceObject(NewSurface(w, h))
	})
}

func (rt *Runtime) surfaceObject(s *Surface) *goja.Object {
	vm := rt.vm
	obj := vm.NewObject()
	set := func(name string, v interface{}) {
		//nolint:errcheck // Properties on a fresh object
		obj.Set(name, v)
	}

	set("width", s.img.Rect.Dx())
	set("height", s.img.Rect.Dy())
	set("buffer", vm.NewArrayBuffer(s.img.Pix))
	set("fill", func(call goja.FunctionCall) goja.Value {
		s.Fill(colorArgs(call, 0))
		return obj
	})
	set("fillRect", func(call goja.FunctionCall) goja.Value {
		s.FillRect(intArg(call, 0), intArg(call, 1), intArg(call, 2), intArg(call, 3), colorArgs(call, 4))
		return obj
	})
	set("fillCircle", func(call goja.FunctionCall) goja.Value {
		s.FillCircle(intArg(call, 0), intArg(call, 1), intArg(call, 2), colorArgs(call, 3))
		return obj
	})
	set("setPixel", func(call goja.FunctionCall) goja.Value {
		s.SetPixel(intArg(call, 0), intArg(call, 1), colorArgs(call, 2))
		return obj
	})
	return obj
}

func intArg(call goja.FunctionCall, i int) int {
	return int(call.Argument(i).ToInteger())
}

// colorArgs reads r, g, b and an optional alpha starting at argument i.
func colorArgs(call goja.FunctionCall, i int) color.NRGBA {
	channel := func(j int, def int64) uint8 {
		v := call.Argument(j)
		if goja.IsUndefined(v) {
			return uint8(def)
		}
		n := v.ToInteger()
		if n < 0 {
			n = 0
		}
		if n > 255 {
			n = 255
		}
		return uint8(n)
	}
	return color.NRGBA{
		R: channel(i, 0),
		G: channel(i+1, 0),
		B: channel(i+2, 0),
		A: channel(i+3, 255),
	}
}
