package telemetry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordString(t *testing.T) {
	r := Record{Seq: 12, RMS: 2110, Magnitude: 0.09990234375, Level: 4, Bar: 64}
	assert.Equal(t, "meter seq=12 rms=2110.00 mag=0.0999 level=4 bar=64", r.String())
}

func TestParse(t *testing.T) {
	r, err := Parse("meter seq=7 rms=4095.00 mag=3.2984 level=137 bar=100\r\n")
	require.NoError(t, err)
	assert.Equal(t, Record{Seq: 7, RMS: 4095, Magnitude: 3.2984, Level: 137, Bar: 100}, r)

	r, err = Parse("meter seq=1 rms=1.00 mag=0.0000 level=0 bar=0 extra=yes")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), r.Seq)
}

func TestParseRejects(t *testing.T) {
	for _, line := range []string{
		"",
		"hello world",
		"meter",
		"meter seq=1 rms=2",
		"metered seq=1 rms=1 mag=1 level=1 bar=1",
		"meter seq=1 seq=2 seq=3 seq=4 seq=5",
		"meter seq=1 rms=1 mag=1 level=1 level=2",
	} {
		_, err := Parse(line)
		assert.ErrorIs(t, err, ErrNotTelemetry, "%q", line)
	}

	_, err := Parse("meter seq=x rms=1 mag=1 level=1 bar=1")
	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "seq", fe.Field)

	_, err = Parse("meter seq=1 rms")
	assert.ErrorIs(t, err, ErrNotTelemetry)
}

func TestRoundTrip(t *testing.T) {
	in := Record{Seq: 99, RMS: 1234.5, Magnitude: 1.2345, Level: 51, Bar: 100}
	out, err := Parse(in.String())
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
