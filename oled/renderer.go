package oled

import (
	"errors"
	"fmt"
	"image/color"

	"tinygo.org/x/drivers"

	"soundmeter/hal"
	"soundmeter/meter"
)

const (
	// BarTop is the first pixel row of the level bar; it runs to the bottom.
	BarTop = 54
	// barClamp is the first width treated as off-scale.
	barClamp = 144
	// barOffScale replaces any width at or past barClamp.
	barOffScale = 100
)

// BarWidth is the nominal bar length for a level: level*128/8, with
// off-scale widths of 144 and above pinned to 100.
func BarWidth(level meter.Level) int {
	w := uint64(level) * Width / 8
	if w >= barClamp {
		return barOffScale
	}
	return int(w)
}

// LitColumns is the number of columns the bar lights: 90% of BarWidth,
// rounded down, never past the panel edge.
func LitColumns(level meter.Level) int {
	n := BarWidth(level) * 9 / 10
	if n > Width {
		n = Width
	}
	return n
}

// Renderer draws into a borrowed frame and pushes it to a panel. It is also
// a drivers.Displayer, so text can be drawn onto the frame.
type Renderer struct {
	panel  hal.Panel
	region hal.Region
	frame  *Frame
}

var _ drivers.Displayer = (*Renderer)(nil)

// NewRenderer initializes panel and returns a renderer covering the whole
// panel. Every draw goes through frame, which the caller keeps owning.
func NewRenderer(panel hal.Panel, frame *Frame) (*Renderer, error) {
	if panel == nil {
		return nil, errors.New("oled: no panel")
	}
	if frame == nil {
		return nil, errors.New("oled: no frame")
	}
	if err := panel.Init(); err != nil {
		return nil, fmt.Errorf("oled: init panel: %w", err)
	}
	r := &Renderer{
		panel:  panel,
		region: hal.Region{EndColumn: Width - 1, EndPage: Pages - 1},
		frame:  frame,
	}
	if err := panel.SetRegion(r.region); err != nil {
		return nil, fmt.Errorf("oled: set region: %w", err)
	}
	return r, nil
}

// Frame is the off-screen buffer the renderer draws into.
func (r *Renderer) Frame() *Frame { return r.frame }

// Render redraws the bar for level and pushes the frame.
func (r *Renderer) Render(level meter.Level) error {
	r.frame.Clear()
	r.frame.Fill(0, BarTop, LitColumns(level), Height)
	return r.Display()
}

// Clear blanks the panel.
func (r *Renderer) Clear() error {
	r.frame.Clear()
	return r.Display()
}

func (r *Renderer) Size() (x, y int16) { return Width, Height }

// SetPixel lights the pixel for any non-black color.
func (r *Renderer) SetPixel(x, y int16, c color.RGBA) {
	r.frame.Set(int(x), int(y), c.R|c.G|c.B != 0)
}

// Display writes the frame through the panel's region.
func (r *Renderer) Display() error {
	if err := r.panel.WriteRegion(r.frame[:]); err != nil {
		return fmt.Errorf("oled: write frame: %w", err)
	}
	return nil
}
