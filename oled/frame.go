// Package oled draws the sound level onto a 128x64 monochrome panel.
package oled

const (
	Width  = 128
	Height = 64
	Pages  = Height / 8
)

// Frame is an off-screen copy of the panel in SSD1306 page layout: pixel
// (x, y) is bit y%8 of byte (y/8)*Width + x.
type Frame [Width * Pages]byte

// Clear switches every pixel off.
func (f *Frame) Clear() {
	for i := range f {
		f[i] = 0
	}
}

// Set switches a pixel on or off. Coordinates outside the panel are ignored.
func (f *Frame) Set(x, y int, on bool) {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return
	}
	i := (y/8)*Width + x
	if on {
		f[i] |= 1 << (y % 8)
	} else {
		f[i] &^= 1 << (y % 8)
	}
}

// Pixel reports whether a pixel is on.
func (f *Frame) Pixel(x, y int) bool {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return false
	}
	return f[(y/8)*Width+x]&(1<<(y%8)) != 0
}

// Fill switches on the pixels in columns [x0, x1) of rows [y0, y1).
func (f *Frame) Fill(x0, y0, x1, y1 int) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			f.Set(x, y, true)
		}
	}
}

// Lit counts the pixels that are on.
func (f *Frame) Lit() int {
	n := 0
	for _, b := range f {
		for ; b != 0; b &= b - 1 {
			n++
		}
	}
	return n
}
