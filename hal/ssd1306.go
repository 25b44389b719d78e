//go:build !tinygo

package hal

import (
	"fmt"
)

const (
	ssd1306CtrlCommand = 0x80 // Co=1, D/C#=0: one command byte follows.
	ssd1306CtrlData    = 0x40 // Co=0, D/C#=1: data stream follows.

	ssd1306ColumnAddr = 0x21
	ssd1306PageAddr   = 0x22
)

// SSD1306 drives a 128xN SSD1306 OLED controller over I2C using paged,
// horizontally addressed GDDRAM writes.
type SSD1306 struct {
	bus    I2C
	addr   uint16
	width  int
	height int
	region Region

	txBuf []byte
}

// NewSSD1306 returns a driver for the controller at addr. The panel is not
// touched until Init.
func NewSSD1306(bus I2C, addr uint16, width, height int) *SSD1306 {
	return &SSD1306{
		bus:    bus,
		addr:   addr,
		width:  width,
		height: height,
		region: Region{EndColumn: uint8(width - 1), EndPage: uint8(height/8 - 1)},
	}
}

// Width is the panel width in pixels.
func (d *SSD1306) Width() int { return d.width }

// Height is the panel height in pixels.
func (d *SSD1306) Height() int { return d.height }

// Pages is the number of 8-pixel rows.
func (d *SSD1306) Pages() int { return d.height / 8 }

// FullRegion covers every column and page of the panel.
func (d *SSD1306) FullRegion() Region {
	return Region{EndColumn: uint8(d.width - 1), EndPage: uint8(d.Pages() - 1)}
}

func (d *SSD1306) Init() error {
	if d.bus == nil {
		return ErrNotImplemented
	}
	if d.width <= 0 || d.width > 128 || d.height <= 0 || d.height > 64 || d.height%8 != 0 {
		return fmt.Errorf("ssd1306: unsupported geometry %dx%d", d.width, d.height)
	}

	comPins := byte(0x12)
	if d.width == 128 && d.height == 32 {
		comPins = 0x02
	}

	mux := byte(d.height - 1)
	seq := [][]byte{
		{0xAE},          // DISPLAYOFF
		{0x20, 0x00},    // MEMORYMODE: horizontal
		{0x40},          // SETSTARTLINE 0
		{0xA1},          // SEGREMAP: column 127 -> SEG0
		{0xA8, mux},     // SETMULTIPLEX
		{0xC8},          // COMSCANDEC
		{0xD3, 0x00},    // SETDISPLAYOFFSET
		{0xDA, comPins}, // SETCOMPINS
		{0xD5, 0x80},    // SETDISPLAYCLOCKDIV
		{0xD9, 0xF1},    // SETPRECHARGE
		{0xDB, 0x30},    // SETVCOMDETECT
		{0x81, 0xFF},    // SETCONTRAST
		{0xA4},          // DISPLAYALLON_RESUME
		{0xA6},          // NORMALDISPLAY
		{0x8D, 0x14},    // CHARGEPUMP on
		{0x2E},          // DEACTIVATE_SCROLL
		{0xAF},          // DISPLAYON
	}
	for _, c := range seq {
		if err := d.cmd(c...); err != nil {
			return fmt.Errorf("ssd1306: init 0x%02X: %w", c[0], err)
		}
	}
	return nil
}

func (d *SSD1306) SetRegion(r Region) error {
	if int(r.EndColumn) >= d.width || int(r.EndPage) >= d.Pages() || r.BufferLength() == 0 {
		return fmt.Errorf("ssd1306: region %+v outside %dx%d", r, d.width, d.height)
	}
	d.region = r
	return nil
}

func (d *SSD1306) WriteRegion(buf []byte) error {
	if d.bus == nil {
		return ErrNotImplemented
	}
	if len(buf) != d.region.BufferLength() {
		return fmt.Errorf("ssd1306: %d bytes for region of %d: %w", len(buf), d.region.BufferLength(), ErrRegionLength)
	}

	if err := d.cmd(ssd1306ColumnAddr, d.region.StartColumn, d.region.EndColumn); err != nil {
		return fmt.Errorf("ssd1306: column address: %w", err)
	}
	if err := d.cmd(ssd1306PageAddr, d.region.StartPage, d.region.EndPage); err != nil {
		return fmt.Errorf("ssd1306: page address: %w", err)
	}

	if cap(d.txBuf) < len(buf)+1 {
		d.txBuf = make([]byte, 0, len(buf)+1)
	}
	tx := append(d.txBuf[:0], ssd1306CtrlData)
	tx = append(tx, buf...)
	if err := d.bus.Tx(d.addr, tx, nil); err != nil {
		return fmt.Errorf("ssd1306: write data: %w", err)
	}
	return nil
}

// cmd sends each byte as its own control+command pair.
func (d *SSD1306) cmd(cmd ...byte) error {
	var pair [2]byte
	for _, c := range cmd {
		pair[0] = ssd1306CtrlCommand
		pair[1] = c
		if err := d.bus.Tx(d.addr, pair[:], nil); err != nil {
			return err
		}
	}
	return nil
}
