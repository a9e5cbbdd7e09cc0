// Package viewport turns published frames into something a terminal panel
// can show: it fits the frame into the available area, keeps a scaled
// texture of the latest frame, and renders it as half-block cells.
package viewport

import (
	"errors"
	"image"
	"image/png"
	"io"
	"sync"

	"golang.org/x/image/draw"

	"github.com/vovakirdan/redengine/internal/core"
)

// Placeholder is shown while no script is running.
const Placeholder = "no image available"

// ErrNoFrame is returned by Snapshot when nothing has been published yet.
var ErrNoFrame = errors.New("viewport: no frame available")

// FrameSource is the read side of the frame slot.
type FrameSource interface {
	ReadSeq() (*core.Frame, uint64)
}

// FitAspect returns the largest width and height with the frame's aspect
// ratio that fit inside the available area.
func FitAspect(size core.Size, availW, availH float64) (float64, float64) {
	aspect := size.Aspect()
	if aspect == 0 || availW <= 0 || availH <= 0 {
		return 0, 0
	}
	if availW/aspect <= availH {
		return availW, availW / aspect
	}
	return availH * aspect, availH
}

// Texture is a frame scaled to display size. A terminal cell shows two
// vertically stacked pixels, so the image is Cols wide and 2*Rows tall.
type Texture struct {
	img *image.NRGBA
	seq uint64
}

// Cols returns the texture width in cells.
func (t *Texture) Cols() int {
	return t.img.Rect.Dx()
}

// Rows returns the texture height in cells.
func (t *Texture) Rows() int {
	return t.img.Rect.Dy() / 2
}

// Image returns the scaled pixels.
func (t *Texture) Image() *image.NRGBA {
	return t.img
}

func (t *Texture) upload(f *core.Frame, seq uint64) {
	src := f.Image()
	draw.ApproxBiLinear.Scale(t.img, t.img.Bounds(), src, src.Bounds(), draw.Src, nil)
	t.seq = seq
}

// View is what the presenter decided to show for one repaint.
type View struct {
	Placeholder bool
	Fit         [2]float64 // fitted size in half-block pixels
	Texture     *Texture   // nil until the first frame arrives
}

// Render draws the view centered in dst.
func (v View) Render(dst *core.Screen) {
	dst.Clear()
	area := core.NewRect(0, 0, dst.Width(), dst.Height())

	if v.Placeholder || v.Texture == nil {
		text := Placeholder
		if !v.Placeholder {
			text = "waiting for first frame"
		}
		box := area.Centered(min(len(text)+4, area.W), min(3, area.H))
		dst.DrawBox(box)
		dst.DrawTextCentered(box.Y+box.H/2, text)
		return
	}

	tex := v.Texture
	r := area.Centered(tex.Cols(), tex.Rows())
	for cy := 0; cy < tex.Rows(); cy++ {
		for cx := 0; cx < tex.Cols(); cx++ {
			top := pixel(tex.img, cx, 2*cy)
			bottom := pixel(tex.img, cx, 2*cy+1)
			dst.SetPixels(r.X+cx, r.Y+cy, top, bottom)
		}
	}
}

func pixel(img *image.NRGBA, x, y int) core.RGBA {
	c := img.NRGBAAt(x, y)
	return core.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}.Over(core.Black)
}

// Presenter reads the frame source once per repaint and keeps the texture
// up to date. It is safe for concurrent use.
type Presenter struct {
	src FrameSource

	mu  sync.Mutex
	tex *Texture
}

// NewPresenter creates a presenter over a frame source.
func NewPresenter(src FrameSource) *Presenter {
	return &Presenter{src: src}
}

// Tick computes the view for a panel of cols×rows cells.
// While the game is not running it returns the placeholder and leaves the
// texture untouched.
func (p *Presenter) Tick(state core.GameState, cols, rows int) View {
	if !state.Running {
		return View{Placeholder: true}
	}

	w, h := FitAspect(state.Size, float64(cols), float64(rows*2))
	view := View{Fit: [2]float64{w, h}}

	frame, seq := p.src.ReadSeq()

	p.mu.Lock()
	defer p.mu.Unlock()

	if frame == nil {
		// A new session cleared the source; the old image is stale.
		p.tex = nil
		return view
	}

	texW, texH := int(w), int(h)/2*2
	if texW > 0 && texH > 0 {
		p.ensure(texW, texH)
		if p.tex.seq != seq {
			p.tex.upload(frame, seq)
		}
	}
	view.Texture = p.tex
	return view
}

// ensure creates the texture on first use and reallocates it only when the
// display size changes; otherwise it is updated in place.
func (p *Presenter) ensure(w, h int) {
	if p.tex != nil && p.tex.img.Rect.Dx() == w && p.tex.img.Rect.Dy() == h {
		return
	}
	p.tex = &Texture{img: image.NewNRGBA(image.Rect(0, 0, w, h))}
}

// Forget discards the cached texture.
func (p *Presenter) Forget() {
	p.mu.Lock()
	p.tex = nil
	p.mu.Unlock()
}

// Texture returns the cached texture, or nil.
func (p *Presenter) Texture() *Texture {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tex
}

// Snapshot writes the latest published frame as PNG at full resolution.
func (p *Presenter) Snapshot(w io.Writer) error {
	frame, _ := p.src.ReadSeq()
	if frame == nil {
		return ErrNoFrame
	}
	return png.Encode(w, frame.Image())
}
