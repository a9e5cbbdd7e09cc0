package registry

import (
	_ "embed"
)

//go:embed templates/bounce.js
var bounceJS []byte

//go:embed templates/gradient.js
var gradientJS []byte

//go:embed templates/static.js
var staticJS []byte

func init() {
	Register(Template{
		ID:          "bounce",
		Title:       "Bounce",
		Description: "white square orbiting the frame centre until stopped",
		Source:      bounceJS,
	})
	Register(Template{
		ID:          "gradient",
		Title:       "Gradient",
		Description: "scrolling colour sweep drawn pixel by pixel",
		Source:      gradientJS,
	})
	Register(Template{
		ID:          "static",
		Title:       "Static",
		Description: "300 frames of grey noise, then exits",
		Source:      staticJS,
	})
}
