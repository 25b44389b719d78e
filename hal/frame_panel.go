package hal

import (
	"errors"
	"fmt"
)

var errPanelNotReady = errors.New("ssd1306: write before Init")

// frameDevice is a display driver that keeps a whole-panel frame buffer and
// flushes it in one transaction, as tinygo.org/x/drivers/ssd1306 does.
type frameDevice interface {
	SetBuffer(buf []byte) error
	Display() error
}

// framePanel adapts a frameDevice to Panel. The driver always flushes its
// whole buffer, so the full panel is the only addressable region.
type framePanel struct {
	dev       frameDevice
	configure func()
	width     int
	height    int
	ready     bool
}

func newFramePanel(dev frameDevice, configure func(), width, height int) *framePanel {
	return &framePanel{dev: dev, configure: configure, width: width, height: height}
}

func (p *framePanel) full() Region {
	return Region{EndColumn: uint8(p.width - 1), EndPage: uint8(p.height/8 - 1)}
}

func (p *framePanel) Init() error {
	if p.dev == nil || p.configure == nil {
		return ErrNotImplemented
	}
	p.configure()
	p.ready = true
	return nil
}

func (p *framePanel) SetRegion(r Region) error {
	if r != p.full() {
		return fmt.Errorf("ssd1306: region %+v is not the full %dx%d panel", r, p.width, p.height)
	}
	return nil
}

func (p *framePanel) WriteRegion(buf []byte) error {
	if !p.ready {
		return errPanelNotReady
	}
	if n := p.full().BufferLength(); len(buf) != n {
		return fmt.Errorf("ssd1306: %d bytes for region of %d: %w", len(buf), n, ErrRegionLength)
	}
	if err := p.dev.SetBuffer(buf); err != nil {
		return fmt.Errorf("ssd1306: %v: %w", err, ErrRegionLength)
	}
	if err := p.dev.Display(); err != nil {
		return fmt.Errorf("ssd1306: display: %w", err)
	}
	return nil
}
