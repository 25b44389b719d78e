// Package ledmatrix shows the sound level as a color-coded pattern on the
// 5x5 WS2812 matrix.
package ledmatrix

import (
	"errors"
	"fmt"
	"image/color"

	"soundmeter/hal"
	"soundmeter/meter"
)

const (
	Size  = 5
	Count = Size * Size
)

var (
	Green  = color.RGBA{G: 255, A: 255}
	Yellow = color.RGBA{R: 255, G: 255, A: 255}
	Red    = color.RGBA{R: 255, A: 255}
)

// Grid is the color of every LED in strip order.
type Grid [Count]color.RGBA

type pattern struct {
	leds  []int
	color color.RGBA
}

// patterns grow outwards from the center LED (index 12).
var patterns = [...]pattern{
	1: {[]int{12}, Green},
	2: {[]int{12, 7, 17}, Green},
	3: {[]int{12, 7, 17, 2, 22}, Yellow},
	4: {[]int{12, 7, 17, 2, 22, 5, 19, 20, 21, 23, 24}, Red},
}

// Pattern fills g with the LEDs lit for level. Levels 0 and past 4 leave
// the grid dark.
func Pattern(level meter.Level, g *Grid) {
	*g = Grid{}
	if level == 0 || level >= meter.Level(len(patterns)) {
		return
	}
	p := patterns[level]
	for _, i := range p.leds {
		g[i] = p.color
	}
}

// Position maps a strip index to its (x, y) cell, y counted from the top
// row. The strip snakes up from the bottom-right corner.
func Position(i int) (x, y int) {
	k := Count - 1 - i
	y = k / Size
	x = k % Size
	if y%2 == 1 {
		x = Size - 1 - x
	}
	return x, y
}

// Indicator drives the matrix from a borrowed grid.
type Indicator struct {
	strip hal.LEDStrip
	grid  *Grid
}

// NewIndicator initializes strip for the whole matrix. Patterns are built in
// grid, which the caller keeps owning.
func NewIndicator(strip hal.LEDStrip, grid *Grid) (*Indicator, error) {
	if strip == nil {
		return nil, errors.New("ledmatrix: no strip")
	}
	if grid == nil {
		return nil, errors.New("ledmatrix: no grid")
	}
	if err := strip.Init(Count); err != nil {
		return nil, fmt.Errorf("ledmatrix: init strip: %w", err)
	}
	return &Indicator{strip: strip, grid: grid}, nil
}

// Grid is the last pattern sent to the strip.
func (d *Indicator) Grid() Grid { return *d.grid }

// Indicate clears the matrix, lights the pattern for level and commits it.
func (d *Indicator) Indicate(level meter.Level) error {
	Pattern(level, d.grid)
	d.strip.Clear()
	for i, c := range d.grid {
		if c.A != 0 {
			d.strip.Set(i, c.R, c.G, c.B)
		}
	}
	if err := d.strip.Commit(); err != nil {
		return fmt.Errorf("ledmatrix: commit: %w", err)
	}
	return nil
}
