// Package core provides the fundamental types shared by the engine, the
// viewport presenter and the terminal UI. It has no external dependencies so
// that frame and state handling stays pure and testable.
package core

import (
	"errors"
	"fmt"
	"image"
)

// BytesPerPixel is the stride of one RGBA pixel in a frame buffer.
const BytesPerPixel = 4

// DefaultFrameSize is the frame size used when a script does not declare one.
var DefaultFrameSize = Size{W: 1280, H: 720}

// ErrFrameSize is returned when a pixel buffer does not match its frame size.
var ErrFrameSize = errors.New("frame buffer size mismatch")

// Size is a width and height in pixels.
type Size struct {
	W int `yaml:"width" toml:"width"`
	H int `yaml:"height" toml:"height"`
}

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool {
	return s.W > 0 && s.H > 0
}

// Aspect returns width/height. Invalid sizes have an aspect of 0.
func (s Size) Aspect() float64 {
	if !s.Valid() {
		return 0
	}
	return float64(s.W) / float64(s.H)
}

// Bytes returns the length of an RGBA buffer of this size.
func (s Size) Bytes() int {
	return s.W * s.H * BytesPerPixel
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.W, s.H)
}

// Frame is one rendered step of a running script: an immutable,
// non-premultiplied RGBA buffer in row-major order.
type Frame struct {
	size Size
	pix  []byte
}

// NewFrame copies pix into a new frame. The buffer must hold exactly
// size.Bytes() bytes.
func NewFrame(size Size, pix []byte) (*Frame, error) {
	if !size.Valid() {
		return nil, fmt.Errorf("%w: invalid size %s", ErrFrameSize, size)
	}
	if len(pix) != size.Bytes() {
		return nil, fmt.Errorf("%w: got %d bytes, want %d for %s", ErrFrameSize, len(pix), size.Bytes(), size)
	}
	owned := make([]byte, len(pix))
	copy(owned, pix)
	return &Frame{size: size, pix: owned}, nil
}

// Size returns the frame dimensions.
func (f *Frame) Size() Size {
	return f.size
}

// At returns the color of the pixel at (x, y).
// Out-of-bounds coordinates return a transparent color.
func (f *Frame) At(x, y int) RGBA {
	if x < 0 || y < 0 || x >= f.size.W || y >= f.size.H {
		return RGBA{}
	}
	i := (y*f.size.W + x) * BytesPerPixel
	return RGBA{R: f.pix[i], G: f.pix[i+1], B: f.pix[i+2], A: f.pix[i+3]}
}

// Image returns a read-only image view of the frame. Callers must not write
// to the returned image.
func (f *Frame) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    f.pix,
		Stride: f.size.W * BytesPerPixel,
		Rect:   image.Rect(0, 0, f.size.W, f.size.H),
	}
}
