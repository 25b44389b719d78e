package app

import (
	"errors"
	"fmt"
	"time"

	"soundmeter/hal"
)

// Config is the meter loop setup.
type Config struct {
	// Period is the pause before every acquisition.
	Period time.Duration
	// Timeout bounds each acquisition. Zero waits forever.
	Timeout time.Duration
	// ADC selects the microphone input.
	ADC hal.ADCConfig
	// Splash is how long the boot screen stays up. Zero skips it.
	Splash time.Duration
	// Telemetry logs one record per cycle.
	Telemetry bool
}

// DefaultConfig is the board's wiring and cadence.
func DefaultConfig() Config {
	return Config{
		Period:  10 * time.Millisecond,
		Timeout: 100 * time.Millisecond,
		ADC: hal.ADCConfig{
			Channel:   hal.MicChannel,
			ClockDiv:  hal.MicClockDiv,
			Threshold: 1,
		},
		Splash:    time.Second,
		Telemetry: true,
	}
}

// Validate reports settings the loop cannot run with.
func (c Config) Validate() error {
	if c.Period < 0 {
		return fmt.Errorf("negative period %s", c.Period)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("negative timeout %s", c.Timeout)
	}
	if c.Splash < 0 {
		return fmt.Errorf("negative splash %s", c.Splash)
	}
	if c.ADC.Threshold == 0 {
		return errors.New("adc fifo threshold must be at least 1")
	}
	return nil
}
