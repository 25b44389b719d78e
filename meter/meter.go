// Package meter turns a buffer of microphone conversions into a discrete
// sound intensity level.
package meter

import "math"

// SampleCount is the number of conversions per measurement.
const SampleCount = 200

// Samples holds one measurement of raw 12-bit ADC codes.
type Samples [SampleCount]uint16

// Level is a quantized sound intensity. Rendering expects 0 to 4 but the
// quantizer does not clamp.
type Level uint

// MaxLevel is where Quantize saturates.
const MaxLevel Level = 4096

const (
	// VRef is the converter reference voltage.
	VRef = 3.3
	// FullScale is the number of codes of the 12-bit converter.
	FullScale = 4096
	// Bias is the microphone's DC operating point, in volts.
	Bias = 1.65

	// Step is the quantizer threshold in volts.
	Step = VRef / 5.5 / 25
)

// Power returns the root mean square of the raw codes. It returns 0 for an
// empty slice.
func Power(samples []uint16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// Magnitude converts an RMS code to twice its distance in volts from the
// microphone bias.
func Magnitude(rms float64) float64 {
	return 2 * math.Abs(rms*VRef/FullScale-Bias)
}

// Quantize counts how many whole steps fit in v while the remainder stays
// strictly positive, so an exact multiple k*Step yields k-1. NaN and
// non-positive input give 0; anything past MaxLevel steps gives MaxLevel.
func Quantize(v float64) Level {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v > float64(MaxLevel+1)*Step {
		return MaxLevel
	}

	var n Level
	for {
		v -= Step
		if !(v > 0) {
			return n
		}
		n++
	}
}
