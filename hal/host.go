//go:build !tinygo

package hal

import (
	"image/color"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type hostHAL struct {
	logger Logger
	adc    *simADC
	dma    *softDMA
	leds   *simStrip
	bus    *simSSD1306Bus
	panel  *SSD1306
}

// New returns a simulated board fed by a quiet 440 Hz tone.
func New() HAL {
	return NewSim(NewSine(440, 0.05, SimSampleRate), NewConsoleLogger(zerolog.InfoLevel))
}

// NewSim returns a simulated board whose microphone converts samples from
// src. A nil logger discards every line.
func NewSim(src Source, logger Logger) HAL {
	if logger == nil {
		logger = NewLogger(zerolog.Nop())
	}
	bus := newSimSSD1306Bus(OLEDAddress, OLEDWidth, OLEDHeight)
	return &hostHAL{
		logger: logger,
		adc:    newSimADC(src),
		dma:    newSoftDMA(),
		leds:   &simStrip{},
		bus:    bus,
		panel:  NewSSD1306(bus, OLEDAddress, OLEDWidth, OLEDHeight),
	}
}

func (h *hostHAL) Logger() Logger { return h.logger }
func (h *hostHAL) Mic() ADC       { return h.adc }
func (h *hostHAL) DMA() DMA       { return h.dma }
func (h *hostHAL) LEDs() LEDStrip { return h.leds }
func (h *hostHAL) Panel() Panel   { return h.panel }

func (h *hostHAL) Stall(v bool)            { h.adc.setStalled(v) }
func (h *hostHAL) OLEDOn() bool            { return h.bus.snapshot(nil) }
func (h *hostHAL) OLEDPixel(x, y int) bool { return h.bus.Pixel(x, y) }

func (h *hostHAL) previewOLED(dst []byte) bool { return h.bus.snapshot(dst) }

func (h *hostHAL) previewLEDs(dst []color.RGBA) []color.RGBA { return h.leds.snapshot(dst) }

type previewer interface {
	previewOLED(dst []byte) bool
	previewLEDs(dst []color.RGBA) []color.RGBA
}

// Simulator exposes the simulated board's inspection hooks.
type Simulator interface {
	HAL
	// Stall freezes the microphone converter so transfers never complete.
	Stall(v bool)
	// OLEDOn reports whether the panel has been switched on.
	OLEDOn() bool
	// OLEDPixel reads back the controller's GDDRAM.
	OLEDPixel(x, y int) bool
}

var _ Simulator = (*hostHAL)(nil)

type hostLogger struct {
	log zerolog.Logger
}

// NewLogger adapts a zerolog logger to the line-based Logger.
func NewLogger(l zerolog.Logger) Logger {
	return &hostLogger{log: l}
}

// NewConsoleLogger logs human-readable lines to stderr.
func NewConsoleLogger(level zerolog.Level) Logger {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return NewLogger(zerolog.New(out).Level(level).With().Timestamp().Logger())
}

func (l *hostLogger) WriteLineString(s string) {
	l.log.Info().Msg(s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.log.Info().Msg(string(b))
}

// Zerolog exposes the underlying structured logger.
func (l *hostLogger) Zerolog() *zerolog.Logger { return &l.log }
