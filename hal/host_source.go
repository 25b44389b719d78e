//go:build !tinygo

package hal

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
)

// SimSampleRate is the simulated conversion rate: 48 MHz ADC clock, 1+96
// cycles per conversion.
const SimSampleRate = 48_000_000.0 / 97.0

// Mid-scale code and volts-per-code of a microphone biased at 1.65 V on a
// 3.3 V, 12-bit converter.
const (
	micBiasCode  = 2048
	codesPerVolt = 4096 / 3.3
)

// SourceConfig selects the signal that feeds the simulated microphone.
type SourceConfig struct {
	// Kind is one of "sine", "noise", "constant", "wav" or "mic".
	Kind string `toml:"kind"`
	// Frequency of the sine tone in Hz.
	Frequency float64 `toml:"frequency"`
	// Amplitude is the peak deviation from the bias point, in volts.
	Amplitude float64 `toml:"amplitude"`
	// Code is the raw converter output of the constant source.
	Code uint16 `toml:"code"`
	// Seed seeds the noise source.
	Seed int64 `toml:"seed"`
	// Path is the recording replayed by the wav source.
	Path string `toml:"path"`
}

// NewSource builds the Source described by cfg.
func NewSource(cfg SourceConfig) (Source, error) {
	switch strings.ToLower(cfg.Kind) {
	case "", "sine":
		return NewSine(cfg.Frequency, cfg.Amplitude, SimSampleRate), nil
	case "noise":
		return NewNoise(cfg.Amplitude, cfg.Seed), nil
	case "constant":
		return Constant(cfg.Code), nil
	case "wav":
		w, err := OpenWAV(cfg.Path, SimSampleRate)
		if err != nil {
			return nil, err
		}
		return w, nil
	case "mic":
		return NewMicSource()
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
	}
}

// Constant always converts to the same code.
type Constant uint16

func (c Constant) Next() uint16 { return uint16(c) }

// Sine is a tone riding on the microphone bias.
type Sine struct {
	mu    sync.Mutex
	phase float64
	step  float64
	amp   float64
}

func NewSine(freq, amplitude, rate float64) *Sine {
	if freq <= 0 {
		freq = 440
	}
	if rate <= 0 {
		rate = SimSampleRate
	}
	return &Sine{step: 2 * math.Pi * freq / rate, amp: amplitude}
}

func (s *Sine) Next() uint16 {
	s.mu.Lock()
	v := s.amp * math.Sin(s.phase)
	s.phase = math.Mod(s.phase+s.step, 2*math.Pi)
	s.mu.Unlock()
	return voltsToCode(v)
}

// Noise is uniform white noise around the bias point.
type Noise struct {
	mu  sync.Mutex
	rng *rand.Rand
	amp float64
}

func NewNoise(amplitude float64, seed int64) *Noise {
	return &Noise{rng: rand.New(rand.NewSource(seed)), amp: amplitude}
}

func (n *Noise) Next() uint16 {
	n.mu.Lock()
	v := n.amp * (2*n.rng.Float64() - 1)
	n.mu.Unlock()
	return voltsToCode(v)
}

// voltsToCode converts a deviation from the 1.65 V bias into a clamped code.
func voltsToCode(v float64) uint16 {
	c := math.Round(micBiasCode + v*codesPerVolt)
	if c < 0 {
		return 0
	}
	if c > adcMaxCode {
		return adcMaxCode
	}
	return uint16(c)
}
