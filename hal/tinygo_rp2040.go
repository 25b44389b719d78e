//go:build tinygo && rp2040

package hal

import (
	"image/color"
	"machine"
	"runtime/interrupt"

	"tinygo.org/x/drivers/ssd1306"
	"tinygo.org/x/drivers/ws2812"
)

type tinyGoHAL struct {
	logger *serialLogger
	adc    *rpADC
	dma    *rpDMA
	leds   *wsStrip
	panel  *framePanel
}

// New returns the BitDogLab (RP2040) HAL implementation.
//
// Logs go to the USB CDC console. The OLED sits on I2C1 (GP14 SDA, GP15 SCL).
func New() HAL {
	machine.InitADC()
	machine.ADC{Pin: machine.ADC2}.Configure(machine.ADCConfig{})

	i2c := machine.I2C1
	i2c.Configure(machine.I2CConfig{
		Frequency: I2CFrequency,
		SDA:       machine.GP14,
		SCL:       machine.GP15,
	})

	oled := ssd1306.NewI2C(i2c)
	configure := func() {
		oled.Configure(ssd1306.Config{
			Width:     OLEDWidth,
			Height:    OLEDHeight,
			Address:   OLEDAddress,
			ResetCol:  ssd1306.ResetValue{0, OLEDWidth - 1},
			ResetPage: ssd1306.ResetValue{0, OLEDHeight/8 - 1},
		})
	}

	ledPin := machine.GP7
	ledPin.Configure(machine.PinConfig{Mode: machine.PinOutput})

	return &tinyGoHAL{
		logger: &serialLogger{out: machine.Serial},
		adc:    newRPADC(),
		dma:    newRPDMA(),
		leds:   &wsStrip{dev: ws2812.New(ledPin)},
		panel:  newFramePanel(&oled, configure, OLEDWidth, OLEDHeight),
	}
}

func (h *tinyGoHAL) Logger() Logger { return h.logger }
func (h *tinyGoHAL) Mic() ADC       { return h.adc }
func (h *tinyGoHAL) DMA() DMA       { return h.dma }
func (h *tinyGoHAL) LEDs() LEDStrip { return h.leds }
func (h *tinyGoHAL) Panel() Panel   { return h.panel }

type wsStrip struct {
	dev ws2812.Device
	buf []color.RGBA
}

func (s *wsStrip) Init(count int) error {
	if count <= 0 {
		return ErrNotImplemented
	}
	s.buf = make([]color.RGBA, count)
	return nil
}

func (s *wsStrip) Clear() {
	for i := range s.buf {
		s.buf[i] = color.RGBA{}
	}
}

func (s *wsStrip) Set(i int, r, g, b uint8) {
	if i < 0 || i >= len(s.buf) {
		return
	}
	s.buf[i] = color.RGBA{R: r, G: g, B: b, A: 0xFF}
}

func (s *wsStrip) Commit() error {
	var err error
	critical(func() { err = s.dev.WriteColors(s.buf) })
	return err
}

// critical runs f with interrupts masked so the WS2812 bit timing holds.
func critical(f func()) {
	state := interrupt.Disable()
	f()
	interrupt.Restore(state)
}
