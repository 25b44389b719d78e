//go:build !tinygo && cgo

package hal

import (
	"context"
	"errors"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// WindowConfig controls the desktop preview.
type WindowConfig struct {
	Title string
	Scale int
	// Cell places LED i on the 5x5 grid.
	Cell func(i int) (x, y int)
}

const (
	windowPad  = 4
	ledPitch   = 14
	ledGridDim = 5
)

var (
	oledInk   = color.RGBA{R: 0x9F, G: 0xDF, B: 0xFF, A: 0xFF}
	oledPaper = color.RGBA{A: 0xFF}
	ledOff    = color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xFF}
)

// RunWindow opens a desktop window mirroring the panel and the LED matrix of
// h. It blocks until the window closes or ctx is done.
func RunWindow(ctx context.Context, h HAL, cfg WindowConfig) error {
	p, ok := h.(previewer)
	if !ok {
		return errors.New("window: board has no preview")
	}
	if cfg.Scale <= 0 {
		cfg.Scale = 3
	}
	if cfg.Title == "" {
		cfg.Title = "Sound meter"
	}

	g := &hostGame{p: p, cell: cfg.Cell, done: ctx.Done()}
	w, ht := g.Layout(0, 0)
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(w*cfg.Scale, ht*cfg.Scale)
	ebiten.SetTPS(30)
	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

type hostGame struct {
	p    previewer
	cell func(i int) (x, y int)
	done <-chan struct{}

	gddram  []byte
	leds    []color.RGBA
	img     *image.RGBA
	oledImg *ebiten.Image
}

func (g *hostGame) Update() error {
	select {
	case <-g.done:
		return ebiten.Termination
	default:
		return nil
	}
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	if g.img == nil {
		g.img = image.NewRGBA(image.Rect(0, 0, OLEDWidth, OLEDHeight))
		g.gddram = make([]byte, OLEDWidth*OLEDHeight/8)
		g.oledImg = ebiten.NewImage(OLEDWidth, OLEDHeight)
	}

	on := g.p.previewOLED(g.gddram)
	for y := 0; y < OLEDHeight; y++ {
		for x := 0; x < OLEDWidth; x++ {
			c := oledPaper
			if on && g.gddram[(y/8)*OLEDWidth+x]&(1<<(y%8)) != 0 {
				c = oledInk
			}
			g.img.SetRGBA(x, y, c)
		}
	}
	g.oledImg.WritePixels(g.img.Pix)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(windowPad, windowPad)
	screen.DrawImage(g.oledImg, op)

	g.leds = g.p.previewLEDs(g.leds)
	originX := float32(OLEDWidth+2*windowPad-ledGridDim*ledPitch) / 2
	originY := float32(OLEDHeight + 2*windowPad)
	for i, c := range g.leds {
		x, y := i%ledGridDim, i/ledGridDim
		if g.cell != nil {
			x, y = g.cell(i)
		}
		if c.R == 0 && c.G == 0 && c.B == 0 {
			c = ledOff
		}
		cx := originX + float32(x*ledPitch) + ledPitch/2
		cy := originY + float32(y*ledPitch) + ledPitch/2
		vector.DrawFilledCircle(screen, cx, cy, ledPitch/2-2, c, true)
	}
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return OLEDWidth + 2*windowPad, OLEDHeight + 3*windowPad + ledGridDim*ledPitch
}
