package oled

import (
	"image/color"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

var ink = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// Splash shows title and a second line of detail centered on the panel.
func (r *Renderer) Splash(title, detail string) error {
	font := &proggy.TinySZ8pt7b
	r.frame.Clear()
	lineHeight := int16(font.GetYAdvance())
	y := (Height-2*lineHeight)/2 + lineHeight - 2
	for _, s := range []string{title, detail} {
		if s != "" {
			_, w := tinyfont.LineWidth(font, s)
			x := (Width - int16(w)) / 2
			if x < 0 {
				x = 0
			}
			tinyfont.WriteLine(r, font, x, y, s, ink)
		}
		y += lineHeight
	}
	return r.Display()
}
