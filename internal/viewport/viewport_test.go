package viewport

import (
	"bytes"
	"errors"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/vovakirdan/redengine/internal/core"
	"github.com/vovakirdan/redengine/internal/engine"
)

func TestFitAspect(t *testing.T) {
	size := core.Size{W: 1280, H: 720}

	tests := []struct {
		name         string
		availW       float64
		availH       float64
		wantW, wantH float64
	}{
		{"square panel", 800, 800, 800, 450},
		{"wide enough", 400, 300, 400, 225},
		{"tall narrow panel", 100, 400, 100, 56.25},
		{"height bound", 1000, 90, 160, 90},
		{"empty panel", 0, 100, 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, h := FitAspect(size, tc.availW, tc.availH)
			if math.Abs(w-tc.wantW) > 1e-9 || math.Abs(h-tc.wantH) > 1e-9 {
				t.Errorf("FitAspect(%v, %v) = (%v, %v), expected (%v, %v)",
					tc.availW, tc.availH, w, h, tc.wantW, tc.wantH)
			}
			if w > tc.availW || h > tc.availH {
				t.Errorf("FitAspect exceeded the available area: (%v, %v)", w, h)
			}
		})
	}
}

func publish(t *testing.T, slot *engine.Slot, size core.Size, c core.RGBA) {
	t.Helper()
	pix := bytes.Repeat([]byte{c.R, c.G, c.B, c.A}, size.W*size.H)
	f, err := core.NewFrame(size, pix)
	if err != nil {
		t.Fatalf("NewFrame() failed: %v", err)
	}
	slot.Publish(f)
}

func TestPresenterPlaceholderWhenStopped(t *testing.T) {
	slot := engine.NewSlot()
	size := core.Size{W: 16, H: 9}
	publish(t, slot, size, core.RGBA{R: 255, A: 255})

	p := NewPresenter(slot)
	running := core.GameState{Running: true, Size: size}
	p.Tick(running, 32, 9)
	tex := p.Texture()
	if tex == nil {
		t.Fatal("texture should exist after a running tick")
	}

	view := p.Tick(core.GameState{Size: size}, 32, 9)
	if !view.Placeholder {
		t.Error("stopped state should show the placeholder")
	}
	if p.Texture() != tex {
		t.Error("placeholder tick should leave the texture untouched")
	}

	screen := core.NewScreen(40, 9)
	view.Render(screen)
	if !strings.Contains(screen.String(), Placeholder) {
		t.Errorf("placeholder render should contain %q:\n%s", Placeholder, screen.String())
	}
}

func TestPresenterTextureLifecycle(t *testing.T) {
	slot := engine.NewSlot()
	size := core.Size{W: 16, H: 9}
	state := core.GameState{Running: true, Size: size}
	p := NewPresenter(slot)

	// Running but nothing published yet.
	if view := p.Tick(state, 32, 9); view.Texture != nil {
		t.Error("no texture expected before the first frame")
	}

	publish(t, slot, size, core.RGBA{R: 255, A: 255})
	view := p.Tick(state, 32, 9)
	tex := view.Texture
	if tex == nil {
		t.Fatal("first frame should create the texture")
	}
	// 32x18 pixel area fits 16:9 as 32x18, i.e. 32 cols by 9 rows.
	if tex.Cols() != 32 || tex.Rows() != 9 {
		t.Errorf("texture = %dx%d cells, expected 32x9", tex.Cols(), tex.Rows())
	}
	if got := tex.Image().NRGBAAt(5, 5).R; got < 250 {
		t.Errorf("texture pixel R = %d, expected 255", got)
	}

	publish(t, slot, size, core.RGBA{G: 255, A: 255})
	if p.Tick(state, 32, 9).Texture != tex {
		t.Error("same display size should update the texture in place")
	}
	if got := tex.Image().NRGBAAt(5, 5).G; got < 250 {
		t.Errorf("updated texture pixel G = %d, expected 255", got)
	}

	if p.Tick(state, 16, 9).Texture == tex {
		t.Error("a new display size should reallocate the texture")
	}

	p.Forget()
	if p.Texture() != nil {
		t.Error("Forget should discard the texture")
	}
}

func TestPresenterDropsStaleTextureOnNewSession(t *testing.T) {
	slot := engine.NewSlot()
	size := core.Size{W: 16, H: 9}
	state := core.GameState{Running: true, Size: size}
	p := NewPresenter(slot)

	publish(t, slot, size, core.RGBA{R: 255, A: 255})
	if p.Tick(state, 32, 9).Texture == nil {
		t.Fatal("first frame should create the texture")
	}

	// A session that ended on its own never triggers Forget; the next
	// Start only clears the slot.
	slot.Clear()
	view := p.Tick(state, 32, 9)
	if view.Texture != nil || p.Texture() != nil {
		t.Error("a cleared source should drop the previous session's texture")
	}

	screen := core.NewScreen(40, 9)
	view.Render(screen)
	if !strings.Contains(screen.String(), "waiting for first frame") {
		t.Errorf("render before the first frame should say so:\n%s", screen.String())
	}
}

func TestViewRenderCentersTexture(t *testing.T) {
	slot := engine.NewSlot()
	size := core.Size{W: 2, H: 2}
	publish(t, slot, size, core.RGBA{B: 200, A: 255})

	p := NewPresenter(slot)
	view := p.Tick(core.GameState{Running: true, Size: size}, 10, 2)

	screen := core.NewScreen(10, 2)
	view.Render(screen)

	// A 10x4 pixel area fits a square as 4x4 pixels: 4 cols, 2 rows, offset 3.
	if c := screen.GetCell(3, 0); c.Rune != core.HalfBlock || c.FG.B < 195 || c.BG.B < 195 {
		t.Errorf("GetCell(3, 0) = %+v, expected a blue half block", c)
	}
	if c := screen.GetCell(0, 0); c.Rune != ' ' {
		t.Errorf("GetCell(0, 0) = %+v, expected blank margin", c)
	}
}

func TestSnapshot(t *testing.T) {
	slot := engine.NewSlot()
	p := NewPresenter(slot)

	var buf bytes.Buffer
	if err := p.Snapshot(&buf); !errors.Is(err, ErrNoFrame) {
		t.Errorf("Snapshot() before any frame error = %v, expected ErrNoFrame", err)
	}

	size := core.Size{W: 3, H: 2}
	publish(t, slot, size, core.RGBA{R: 1, G: 2, B: 3, A: 255})
	if err := p.Snapshot(&buf); err != nil {
		t.Fatalf("Snapshot() failed: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode() failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Errorf("snapshot bounds = %v, expected 3x2", b)
	}
}
