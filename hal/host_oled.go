//go:build !tinygo

package hal

import (
	"fmt"
	"sync"
)

// simSSD1306Bus is an I2C bus with a single SSD1306 attached. It decodes the
// command stream and keeps the controller's GDDRAM, so the real driver runs
// unmodified against it.
type simSSD1306Bus struct {
	mu     sync.Mutex
	addr   uint16
	width  int
	pages  int
	gddram []byte
	on     bool

	col, page        int
	colStart, colEnd int
	pgStart, pgEnd   int

	// pending is the command waiting for its argument bytes.
	pending []byte
	want    int

	frames uint64
}

func newSimSSD1306Bus(addr uint16, width, height int) *simSSD1306Bus {
	pages := height / 8
	return &simSSD1306Bus{
		addr:   addr,
		width:  width,
		pages:  pages,
		gddram: make([]byte, width*pages),
		colEnd: width - 1,
		pgEnd:  pages - 1,
	}
}

func (b *simSSD1306Bus) Tx(addr uint16, w, r []byte) error {
	if addr != b.addr {
		return fmt.Errorf("i2c: no device at 0x%02X", addr)
	}
	if len(r) > 0 {
		return ErrNotImplemented
	}
	if len(w) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch w[0] {
	case 0x80, 0x00:
		for _, c := range w[1:] {
			b.command(c)
		}
	case 0x40:
		for _, d := range w[1:] {
			b.data(d)
		}
		b.frames++
	default:
		return fmt.Errorf("ssd1306: bad control byte 0x%02X", w[0])
	}
	return nil
}

func (b *simSSD1306Bus) command(c byte) {
	if b.want > 0 {
		b.pending = append(b.pending, c)
		b.want--
		if b.want == 0 {
			b.apply(b.pending)
			b.pending = b.pending[:0]
		}
		return
	}

	switch c {
	case 0x21, 0x22:
		b.want = 2
	case 0x20, 0xA8, 0xD3, 0xDA, 0xD5, 0xD9, 0xDB, 0x81, 0x8D:
		b.want = 1
	case 0xAE:
		b.on = false
		return
	case 0xAF:
		b.on = true
		return
	default:
		return
	}
	b.pending = append(b.pending[:0], c)
}

func (b *simSSD1306Bus) apply(cmd []byte) {
	switch cmd[0] {
	case 0x21:
		b.colStart, b.colEnd = int(cmd[1]), int(cmd[2])
		b.col = b.colStart
	case 0x22:
		b.pgStart, b.pgEnd = int(cmd[1]), int(cmd[2])
		b.page = b.pgStart
	}
}

// data stores one GDDRAM byte and advances in horizontal addressing mode.
func (b *simSSD1306Bus) data(d byte) {
	if b.col < b.width && b.page < b.pages {
		b.gddram[b.page*b.width+b.col] = d
	}
	b.col++
	if b.col > b.colEnd {
		b.col = b.colStart
		b.page++
		if b.page > b.pgEnd {
			b.page = b.pgStart
		}
	}
}

// Pixel reports whether the pixel at (x, y) is lit.
func (b *simSSD1306Bus) Pixel(x, y int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if x < 0 || x >= b.width || y < 0 || y >= b.pages*8 {
		return false
	}
	return b.gddram[(y/8)*b.width+x]&(1<<(y%8)) != 0
}

// snapshot copies GDDRAM into dst and reports whether the display is on.
func (b *simSSD1306Bus) snapshot(dst []byte) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	copy(dst, b.gddram)
	return b.on
}
