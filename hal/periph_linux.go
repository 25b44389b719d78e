//go:build !tinygo && linux

package hal

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"
)

type periphHAL struct {
	logger  Logger
	adc     *mcp3008ADC
	dma     *softDMA
	leds    *nrzStrip
	panel   *SSD1306
	closers []func() error
}

// NewPeriph opens the buses named in cfg. Close releases them.
func NewPeriph(cfg PeriphConfig, logger Logger) (HAL, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "periph: init host")
	}

	h := &periphHAL{logger: logger, dma: newSoftDMA()}
	fail := func(err error) (HAL, error) {
		h.Close()
		return nil, err
	}

	bus, err := i2creg.Open(cfg.I2C)
	if err != nil {
		return fail(errors.Wrapf(err, "periph: open i2c %q", cfg.I2C))
	}
	h.closers = append(h.closers, bus.Close)
	if err := bus.SetSpeed(I2CFrequency * physic.Hertz); err != nil {
		logger.WriteLineString("periph: i2c speed not set: " + err.Error())
	}
	h.panel = NewSSD1306(i2cBus{bus}, OLEDAddress, OLEDWidth, OLEDHeight)

	adcPort, err := spireg.Open(cfg.ADCSPI)
	if err != nil {
		return fail(errors.Wrapf(err, "periph: open adc spi %q", cfg.ADCSPI))
	}
	h.closers = append(h.closers, adcPort.Close)
	conn, err := adcPort.Connect(1*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return fail(errors.Wrap(err, "periph: connect mcp3008"))
	}
	h.adc = &mcp3008ADC{conn: conn}

	ledPort, err := spireg.Open(cfg.LEDSPI)
	if err != nil {
		return fail(errors.Wrapf(err, "periph: open led spi %q", cfg.LEDSPI))
	}
	h.closers = append(h.closers, ledPort.Close)
	dev, err := nrzled.NewSPI(ledPort, &nrzled.Opts{
		NumPixels: LEDCount,
		Channels:  3,
		Freq:      2500 * physic.KiloHertz,
	})
	if err != nil {
		return fail(errors.Wrap(err, "periph: open nrzled"))
	}
	h.closers = append(h.closers, dev.Halt)
	h.leds = &nrzStrip{dev: dev}
	return h, nil
}

func (h *periphHAL) Logger() Logger { return h.logger }
func (h *periphHAL) Mic() ADC       { return h.adc }
func (h *periphHAL) DMA() DMA       { return h.dma }
func (h *periphHAL) LEDs() LEDStrip { return h.leds }
func (h *periphHAL) Panel() Panel   { return h.panel }

// Close releases the buses in reverse order of opening.
func (h *periphHAL) Close() error {
	var first error
	for i := len(h.closers) - 1; i >= 0; i-- {
		if err := h.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	h.closers = nil
	return first
}

// i2cBus narrows a periph bus to the transaction primitive.
type i2cBus struct {
	bus i2c.Bus
}

func (b i2cBus) Tx(addr uint16, w, r []byte) error { return b.bus.Tx(addr, w, r) }

// mcp3008ADC converts on demand: every FIFO pop is one SPI conversion, scaled
// from 10 to 12 bits.
type mcp3008ADC struct {
	mu      sync.Mutex
	conn    spi.Conn
	channel uint8
	running bool
	tx, rx  [3]byte
}

func (a *mcp3008ADC) Configure(cfg ADCConfig) error {
	if cfg.Channel > 7 {
		return fmt.Errorf("adc: invalid channel %d", cfg.Channel)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.channel = cfg.Channel
	return nil
}

func (a *mcp3008ADC) Start() {
	a.mu.Lock()
	a.running = true
	a.mu.Unlock()
}

func (a *mcp3008ADC) Stop() {
	a.mu.Lock()
	a.running = false
	a.mu.Unlock()
}

func (a *mcp3008ADC) Drain() {}

func (a *mcp3008ADC) FIFO() Port { return mcp3008Port{a} }

func (a *mcp3008ADC) convert() (uint32, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.running {
		return 0, false
	}
	a.tx = [3]byte{1, byte((8 + a.channel) << 4), 0}
	if err := a.conn.Tx(a.tx[:], a.rx[:]); err != nil {
		return 0, false
	}
	v := (uint32(a.rx[1])<<8 | uint32(a.rx[2])) & 0x3FF
	return v << 2, true
}

type mcp3008Port struct {
	a *mcp3008ADC
}

func (p mcp3008Port) Addr() uintptr { return 0 }

func (p mcp3008Port) Pop() (uint32, bool) { return p.a.convert() }

// nrzStrip buffers RGB triplets for the periph nrzled encoder.
type nrzStrip struct {
	dev *nrzled.Dev
	buf []byte
}

func (s *nrzStrip) Init(count int) error {
	if count <= 0 || count > LEDCount {
		return fmt.Errorf("leds: invalid count %d", count)
	}
	s.buf = make([]byte, 3*count)
	return nil
}

func (s *nrzStrip) Clear() {
	for i := range s.buf {
		s.buf[i] = 0
	}
}

func (s *nrzStrip) Set(i int, r, g, b uint8) {
	if i < 0 || 3*i+2 >= len(s.buf) {
		return
	}
	s.buf[3*i], s.buf[3*i+1], s.buf[3*i+2] = r, g, b
}

func (s *nrzStrip) Commit() error {
	_, err := s.dev.Write(s.buf)
	return err
}
