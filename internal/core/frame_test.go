package core

import (
	"errors"
	"testing"
)

func TestNewFrameValidatesLength(t *testing.T) {
	size := Size{W: 2, H: 2}

	tests := []struct {
		name    string
		size    Size
		pix     []byte
		wantErr bool
	}{
		{"exact", size, make([]byte, 16), false},
		{"short", size, make([]byte, 15), true},
		{"long", size, make([]byte, 17), true},
		{"zero size", Size{}, nil, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewFrame(tc.size, tc.pix)
			if tc.wantErr {
				if !errors.Is(err, ErrFrameSize) {
					t.Errorf("NewFrame() error = %v, expected ErrFrameSize", err)
				}
				return
			}
			if err != nil {
				t.Errorf("NewFrame() unexpected error: %v", err)
			}
		})
	}
}

func TestNewFrameCopiesBuffer(t *testing.T) {
	pix := []byte{1, 2, 3, 4}
	f, err := NewFrame(Size{W: 1, H: 1}, pix)
	if err != nil {
		t.Fatalf("NewFrame() failed: %v", err)
	}

	pix[0] = 99
	if got := f.At(0, 0); got.R != 1 {
		t.Errorf("Frame should own its pixels, R = %d after caller mutation", got.R)
	}
}

func TestFrameAt(t *testing.T) {
	pix := []byte{
		10, 20, 30, 255, 40, 50, 60, 128,
	}
	f, err := NewFrame(Size{W: 2, H: 1}, pix)
	if err != nil {
		t.Fatalf("NewFrame() failed: %v", err)
	}

	if got, want := f.At(1, 0), (RGBA{R: 40, G: 50, B: 60, A: 128}); got != want {
		t.Errorf("At(1, 0) = %+v, expected %+v", got, want)
	}
	if got := f.At(5, 5); got != (RGBA{}) {
		t.Errorf("Out of bounds At should be transparent, got %+v", got)
	}
	if b := f.Image().Bounds(); b.Dx() != 2 || b.Dy() != 1 {
		t.Errorf("Image bounds = %v, expected 2x1", b)
	}
}

func TestSizeAspect(t *testing.T) {
	if got := DefaultFrameSize.Aspect(); got != 16.0/9.0 {
		t.Errorf("Aspect() = %f, expected 16/9", got)
	}
	if got := (Size{}).Aspect(); got != 0 {
		t.Errorf("Aspect() of zero size = %f, expected 0", got)
	}
	if got := DefaultFrameSize.Bytes(); got != 1280*720*4 {
		t.Errorf("Bytes() = %d, expected %d", got, 1280*720*4)
	}
}

func TestRGBAOver(t *testing.T) {
	opaque := RGBA{R: 1, G: 2, B: 3, A: 255}
	if got := opaque.Over(Black); got != opaque {
		t.Errorf("Opaque Over() = %+v, expected unchanged", got)
	}

	transparent := RGBA{R: 255, G: 255, B: 255, A: 0}
	if got := transparent.Over(Black); got != Black {
		t.Errorf("Transparent Over(Black) = %+v, expected black", got)
	}

	if got := (RGBA{R: 255, G: 16, B: 1, A: 255}).Hex(); got != "#ff1001" {
		t.Errorf("Hex() = %q, expected #ff1001", got)
	}
}
