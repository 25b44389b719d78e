// Package app runs the sound meter: sample, estimate, quantize and show.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"soundmeter/hal"
	"soundmeter/internal/buildinfo"
	"soundmeter/ledmatrix"
	"soundmeter/meter"
	"soundmeter/oled"
	"soundmeter/telemetry"
)

// Meter owns every buffer of the loop and the devices it draws on. It is
// not safe for concurrent use.
type Meter struct {
	cfg     Config
	log     hal.Logger
	sampler *meter.Sampler
	display *oled.Renderer
	leds    *ledmatrix.Indicator

	samples meter.Samples
	frame   oled.Frame
	grid    ledmatrix.Grid
	seq     uint64
	line    []byte
	last    telemetry.Record
	stalls  uint64
}

// New builds a meter on h. Devices are initialized here; nothing is drawn
// until Start.
func New(h hal.HAL, cfg Config) (*Meter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	m := &Meter{
		cfg:  cfg,
		log:  h.Logger(),
		line: make([]byte, 0, 80),
	}
	var err error
	if m.sampler, err = meter.NewSampler(h.Mic(), h.DMA(), cfg.ADC); err != nil {
		return nil, err
	}
	if m.display, err = oled.NewRenderer(h.Panel(), &m.frame); err != nil {
		return nil, err
	}
	if m.leds, err = ledmatrix.NewIndicator(h.LEDs(), &m.grid); err != nil {
		return nil, err
	}
	return m, nil
}

// Start shows the boot screen, blanks the outputs and runs one warm-up
// acquisition whose result is discarded.
func (m *Meter) Start(ctx context.Context) error {
	if m.cfg.Splash > 0 {
		if err := m.display.Splash("Sound meter", buildinfo.Short()); err != nil {
			m.logf("splash: %v", err)
		}
		if err := sleep(ctx, m.cfg.Splash); err != nil {
			return err
		}
	}
	if err := m.display.Clear(); err != nil {
		m.logf("clear display: %v", err)
	}
	if err := m.leds.Indicate(0); err != nil {
		m.logf("clear leds: %v", err)
	}
	if err := m.sampler.Acquire(&m.samples, m.cfg.Timeout); err != nil {
		m.logf("warm-up: %v", err)
	}
	return nil
}

// Step runs one acquisition and updates both outputs. A stalled
// acquisition leaves the outputs untouched.
func (m *Meter) Step() (telemetry.Record, error) {
	if err := m.sampler.Acquire(&m.samples, m.cfg.Timeout); err != nil {
		if errors.Is(err, meter.ErrStalled) {
			m.stalls++
		}
		return telemetry.Record{}, err
	}

	rms := meter.Power(m.samples[:])
	mag := meter.Magnitude(rms)
	level := meter.Quantize(mag)

	m.seq++
	rec := telemetry.Record{
		Seq:       m.seq,
		RMS:       rms,
		Magnitude: mag,
		Level:     level,
		Bar:       oled.BarWidth(level),
	}
	m.last = rec

	var errs []error
	if err := m.display.Render(level); err != nil {
		errs = append(errs, err)
	}
	if err := m.leds.Indicate(level); err != nil {
		errs = append(errs, err)
	}
	if m.cfg.Telemetry && m.log != nil {
		m.line = rec.AppendText(m.line[:0])
		m.log.WriteLineBytes(m.line)
	}
	return rec, errors.Join(errs...)
}

// Run starts the meter and loops until ctx is done. Cycle errors are logged
// and the loop carries on.
func (m *Meter) Run(ctx context.Context) error {
	defer func() {
		if v := recover(); v != nil {
			m.reportPanic(v)
			panic(v)
		}
	}()

	if err := m.Start(ctx); err != nil {
		return err
	}
	for {
		if err := sleep(ctx, m.cfg.Period); err != nil {
			return err
		}
		if _, err := m.Step(); err != nil {
			m.logf("cycle %d: %v", m.seq+1, err)
		}
	}
}

// Last is the record of the latest completed cycle.
func (m *Meter) Last() telemetry.Record { return m.last }

// Stalls counts acquisitions that timed out.
func (m *Meter) Stalls() uint64 { return m.stalls }

// Samples exposes the buffer of the latest acquisition.
func (m *Meter) Samples() *meter.Samples { return &m.samples }

// Frame exposes the frame last pushed to the panel.
func (m *Meter) Frame() *oled.Frame { return &m.frame }

// Grid exposes the LED colors last committed to the strip.
func (m *Meter) Grid() *ledmatrix.Grid { return &m.grid }

func (m *Meter) logf(format string, args ...any) {
	if m.log == nil {
		return
	}
	m.log.WriteLineString(fmt.Sprintf(format, args...))
}

func sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
