//go:build !tinygo

package hal

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(zerolog.New(&buf))
	l.WriteLineString("meter seq=1")
	l.WriteLineBytes([]byte("cycle 2: stalled"))

	out := buf.String()
	assert.Contains(t, out, `"message":"meter seq=1"`)
	assert.Contains(t, out, `"message":"cycle 2: stalled"`)
	assert.Equal(t, 2, strings.Count(out, `"level":"info"`))
}

func TestSimBoardLEDs(t *testing.T) {
	h := NewSim(Constant(0), nil).(*hostHAL)
	require.NoError(t, h.LEDs().Init(LEDCount))
	h.LEDs().Set(12, 0, 255, 0)
	h.LEDs().Set(99, 1, 1, 1)
	assert.Len(t, h.previewLEDs(nil), LEDCount)
	assert.Zero(t, h.previewLEDs(nil)[12].G, "nothing shown before commit")

	require.NoError(t, h.LEDs().Commit())
	shown := h.previewLEDs(nil)
	assert.Equal(t, uint8(255), shown[12].G)

	h.LEDs().Clear()
	require.NoError(t, h.LEDs().Commit())
	assert.Zero(t, h.previewLEDs(nil)[12].G)
}

func TestRunHeadlessStopsAfterDuration(t *testing.T) {
	h := NewSim(Constant(0), nil)
	require.NoError(t, h.Panel().Init())

	var dump bytes.Buffer
	start := time.Now()
	err := RunHeadless(context.Background(), h, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}, HeadlessConfig{Duration: 20 * time.Millisecond, Dump: &dump})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	rows := strings.Split(strings.TrimSuffix(dump.String(), "\n"), "\n")
	require.Len(t, rows, OLEDHeight)
	assert.Equal(t, strings.Repeat(".", OLEDWidth), rows[0])
}

func TestRunHeadlessPassesLoopErrors(t *testing.T) {
	boom := errors.New("boom")
	err := RunHeadless(context.Background(), NewSim(Constant(0), nil), func(context.Context) error {
		return boom
	}, HeadlessConfig{})
	assert.ErrorIs(t, err, boom)

	err = RunHeadless(context.Background(), NewSim(Constant(0), nil), nil, HeadlessConfig{Duration: -1})
	assert.Error(t, err)
}

func TestDumpPanelShowsLitPixels(t *testing.T) {
	h := NewSim(Constant(0), nil)
	p := h.Panel()
	require.NoError(t, p.Init())
	buf := make([]byte, OLEDWidth*OLEDHeight/8)
	buf[7*OLEDWidth] = 0x80
	require.NoError(t, p.WriteRegion(buf))

	var out bytes.Buffer
	require.NoError(t, DumpPanel(&out, h))
	rows := strings.Split(out.String(), "\n")
	assert.Equal(t, byte('#'), rows[63][0])
	assert.Equal(t, byte('.'), rows[63][1])
}
