// Package telemetry formats one console line per meter cycle and parses it
// back on the host.
package telemetry

import (
	"errors"
	"strconv"
	"strings"

	"soundmeter/meter"
)

// Prefix starts every telemetry line.
const Prefix = "meter"

// Bits of the keys Parse requires.
const (
	keySeq = 1 << iota
	keyRMS
	keyMag
	keyLevel
	keyBar

	allKeys = keySeq | keyRMS | keyMag | keyLevel | keyBar
)

// ErrNotTelemetry is returned by Parse for lines that are not meter records.
var ErrNotTelemetry = errors.New("not a telemetry line")

// Record is the outcome of one meter cycle.
type Record struct {
	Seq       uint64
	RMS       float64
	Magnitude float64
	Level     meter.Level
	Bar       int
}

// AppendText appends the line form of r, without a newline, to b.
func (r Record) AppendText(b []byte) []byte {
	b = append(b, Prefix...)
	b = append(b, " seq="...)
	b = strconv.AppendUint(b, r.Seq, 10)
	b = append(b, " rms="...)
	b = strconv.AppendFloat(b, r.RMS, 'f', 2, 64)
	b = append(b, " mag="...)
	b = strconv.AppendFloat(b, r.Magnitude, 'f', 4, 64)
	b = append(b, " level="...)
	b = strconv.AppendUint(b, uint64(r.Level), 10)
	b = append(b, " bar="...)
	b = strconv.AppendInt(b, int64(r.Bar), 10)
	return b
}

func (r Record) String() string {
	return string(r.AppendText(make([]byte, 0, 64)))
}

// Parse reads a line produced by AppendText. Unknown keys are ignored so
// newer firmware stays readable.
func Parse(line string) (Record, error) {
	line = strings.TrimSpace(line)
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != Prefix {
		return Record{}, ErrNotTelemetry
	}

	var r Record
	var seen uint8
	for _, f := range fields[1:] {
		k, v, ok := strings.Cut(f, "=")
		if !ok {
			return Record{}, &FieldError{Field: f, Err: ErrNotTelemetry}
		}
		var err error
		var key uint8
		switch k {
		case "seq":
			key = keySeq
			r.Seq, err = strconv.ParseUint(v, 10, 64)
		case "rms":
			key = keyRMS
			r.RMS, err = strconv.ParseFloat(v, 64)
		case "mag":
			key = keyMag
			r.Magnitude, err = strconv.ParseFloat(v, 64)
		case "level":
			key = keyLevel
			var l uint64
			l, err = strconv.ParseUint(v, 10, 32)
			r.Level = meter.Level(l)
		case "bar":
			key = keyBar
			r.Bar, err = strconv.Atoi(v)
		default:
			continue
		}
		if err != nil {
			return Record{}, &FieldError{Field: k, Err: err}
		}
		seen |= key
	}
	if seen != allKeys {
		return Record{}, ErrNotTelemetry
	}
	return r, nil
}

// FieldError reports a malformed key=value pair.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string { return "telemetry: field " + e.Field + ": " + e.Err.Error() }
func (e *FieldError) Unwrap() error { return e.Err }
