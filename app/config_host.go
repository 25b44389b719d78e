//go:build !tinygo

package app

import (
	"encoding"
	"io"
	"os"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"

	"soundmeter/hal"
)

// Board names accepted in the host configuration.
const (
	BoardSim    = "sim"
	BoardPeriph = "periph"
)

// FileConfig is the host configuration file.
type FileConfig struct {
	// Board is "sim" for the simulated board or "periph" for a Linux SBC.
	Board string `toml:"board"`
	// Verbose enables debug logging.
	Verbose bool `toml:"verbose"`

	Meter    MeterFileConfig    `toml:"meter"`
	Source   hal.SourceConfig   `toml:"source"`
	Window   WindowFileConfig   `toml:"window"`
	Headless HeadlessFileConfig `toml:"headless"`
	Periph   hal.PeriphConfig   `toml:"periph"`
}

// MeterFileConfig overrides the loop cadence. Zero durations keep the
// defaults.
type MeterFileConfig struct {
	Period  TOMLDuration `toml:"period"`
	Timeout TOMLDuration `toml:"timeout"`
	// WaitForever disables the acquisition timeout.
	WaitForever bool         `toml:"wait_forever"`
	Splash      TOMLDuration `toml:"splash"`
	NoSplash    bool         `toml:"no_splash"`
	// Quiet turns off the per-cycle telemetry line.
	Quiet bool `toml:"quiet"`
}

// WindowFileConfig controls the preview window.
type WindowFileConfig struct {
	Scale int `toml:"scale"`
}

// HeadlessFileConfig controls windowless runs. The periph board always runs
// headless.
type HeadlessFileConfig struct {
	Enabled  bool         `toml:"enabled"`
	Duration TOMLDuration `toml:"duration"`
	Dump     bool         `toml:"dump"`
}

// DefaultFileConfig runs the simulated board in a window.
func DefaultFileConfig() FileConfig {
	return FileConfig{
		Board: BoardSim,
		Source: hal.SourceConfig{
			Kind:      "sine",
			Frequency: 440,
			Amplitude: 0.05,
		},
		Window: WindowFileConfig{Scale: 3},
	}
}

// fillDefaults restores defaults for settings left empty by the file.
func (c *FileConfig) fillDefaults() {
	d := DefaultFileConfig()
	if c.Board == "" {
		c.Board = d.Board
	}
	if c.Window.Scale == 0 {
		c.Window.Scale = d.Window.Scale
	}
	if (c.Source.Kind == "" || c.Source.Kind == "sine") && c.Source.Amplitude == 0 {
		c.Source.Amplitude = d.Source.Amplitude
	}
}

// Validate validates the configuration.
func (c *FileConfig) Validate() error {
	switch c.Board {
	case BoardSim, BoardPeriph:
	default:
		return errors.Errorf("unknown board %q", c.Board)
	}
	if c.Window.Scale < 0 {
		return errors.Errorf("invalid window scale %d", c.Window.Scale)
	}
	if c.Headless.Duration < 0 {
		return errors.Errorf("invalid headless duration %s", time.Duration(c.Headless.Duration))
	}
	_, err := c.MeterConfig()
	return err
}

// MeterConfig applies the [meter] overrides to DefaultConfig.
func (c *FileConfig) MeterConfig() (Config, error) {
	cfg := DefaultConfig()
	m := c.Meter
	if m.Period != 0 {
		cfg.Period = time.Duration(m.Period)
	}
	if m.Timeout != 0 {
		cfg.Timeout = time.Duration(m.Timeout)
	}
	if m.WaitForever {
		cfg.Timeout = 0
	}
	if m.Splash != 0 {
		cfg.Splash = time.Duration(m.Splash)
	}
	if m.NoSplash {
		cfg.Splash = 0
	}
	cfg.Telemetry = !m.Quiet
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(err, "meter")
	}
	return cfg, nil
}

// ParseConfig parses a configuration from a reader on top of
// DefaultFileConfig.
func ParseConfig(r io.Reader) (*FileConfig, error) {
	cfg := DefaultFileConfig()
	if err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &cfg, nil
}

// LoadConfig reads path. A missing file yields DefaultFileConfig.
func LoadConfig(path string) (*FileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultFileConfig()
			return &cfg, nil
		}
		return nil, errors.Wrap(err, "failed to open config file")
	}
	defer f.Close()

	return ParseConfig(f)
}

// TOMLDuration is a duration that can be parsed from TOML.
type TOMLDuration time.Duration

var (
	_ encoding.TextUnmarshaler = (*TOMLDuration)(nil)
	_ encoding.TextMarshaler   = (*TOMLDuration)(nil)
)

func (d *TOMLDuration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = TOMLDuration(duration)
	return nil
}

func (d TOMLDuration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}
