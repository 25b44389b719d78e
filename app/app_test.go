//go:build !tinygo

package app

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundmeter/hal"
	"soundmeter/ledmatrix"
	"soundmeter/meter"
	"soundmeter/oled"
	"soundmeter/telemetry"
)

type memLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *memLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, s)
}

func (l *memLogger) WriteLineBytes(b []byte) { l.WriteLineString(string(b)) }

func (l *memLogger) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Period = time.Millisecond
	cfg.Timeout = time.Second
	cfg.Splash = 0
	return cfg
}

func newTestMeter(t *testing.T, code uint16) (*Meter, hal.Simulator, *memLogger) {
	t.Helper()
	log := &memLogger{}
	h := hal.NewSim(hal.Constant(code), log).(hal.Simulator)
	m, err := New(h, testConfig())
	require.NoError(t, err)
	require.NoError(t, m.Start(context.Background()))
	return m, h, log
}

func litColumns(h hal.Simulator, y int) int {
	n := 0
	for x := 0; x < 128; x++ {
		if h.OLEDPixel(x, y) {
			n++
		}
	}
	return n
}

func TestStepQuietRoom(t *testing.T) {
	m, h, _ := newTestMeter(t, 2110)

	rec, err := m.Step()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), rec.Seq)
	assert.InDelta(t, 2110, rec.RMS, 1e-9)
	assert.InDelta(t, 0.0999, rec.Magnitude, 1e-4)
	assert.Equal(t, meter.Level(4), rec.Level)
	assert.Equal(t, 64, rec.Bar)

	assert.Equal(t, 57, litColumns(h, 63))
	assert.Equal(t, 57, litColumns(h, 54))
	assert.Equal(t, 0, litColumns(h, 53))
}

func TestStepDrawsIntoMeterBuffers(t *testing.T) {
	m, _, _ := newTestMeter(t, 2110)
	frame, grid := m.Frame(), m.Grid()

	_, err := m.Step()
	require.NoError(t, err)
	assert.Same(t, frame, m.Frame())
	assert.Same(t, grid, m.Grid())
	assert.Equal(t, 57*(oled.Height-oled.BarTop), frame.Lit())
	assert.Equal(t, ledmatrix.Red, grid[12])
}

func TestStepFullScale(t *testing.T) {
	m, h, _ := newTestMeter(t, 4095)

	rec, err := m.Step()
	require.NoError(t, err)
	assert.Equal(t, meter.Level(137), rec.Level)
	assert.Equal(t, 100, rec.Bar)
	assert.Equal(t, 90, litColumns(h, 60))
}

func TestStepLogsTelemetry(t *testing.T) {
	m, _, log := newTestMeter(t, 2110)
	_, err := m.Step()
	require.NoError(t, err)

	lines := log.snapshot()
	require.NotEmpty(t, lines)
	rec, err := telemetry.Parse(lines[len(lines)-1])
	require.NoError(t, err)
	last := m.Last()
	assert.Equal(t, last.Seq, rec.Seq)
	assert.Equal(t, last.Level, rec.Level)
	assert.Equal(t, last.Bar, rec.Bar)
	assert.InDelta(t, last.RMS, rec.RMS, 0.005)
	assert.InDelta(t, last.Magnitude, rec.Magnitude, 0.00005)
}

func TestStepStalledKeepsOutputs(t *testing.T) {
	m, h, _ := newTestMeter(t, 2110)
	m.cfg.Timeout = 5 * time.Millisecond

	_, err := m.Step()
	require.NoError(t, err)

	h.Stall(true)
	_, err = m.Step()
	assert.ErrorIs(t, err, meter.ErrStalled)
	assert.Equal(t, uint64(1), m.Stalls())
	assert.Equal(t, 57, litColumns(h, 63), "previous bar stays up")

	h.Stall(false)
	rec, err := m.Step()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), rec.Seq)
}

func TestStartClearsDisplay(t *testing.T) {
	log := &memLogger{}
	h := hal.NewSim(hal.Constant(2048), log).(hal.Simulator)
	cfg := testConfig()
	cfg.Splash = time.Millisecond
	m, err := New(h, cfg)
	require.NoError(t, err)
	require.NoError(t, m.Start(context.Background()))

	assert.True(t, h.OLEDOn())
	for y := 0; y < 64; y++ {
		require.Equal(t, 0, litColumns(h, y), "row %d", y)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	log := &memLogger{}
	h := hal.NewSim(hal.Constant(2110), log)
	m, err := New(h, testConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err = m.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Greater(t, m.Last().Seq, uint64(0))

	var records int
	for _, l := range log.snapshot() {
		if strings.HasPrefix(l, telemetry.Prefix+" ") {
			records++
		}
	}
	assert.Equal(t, int(m.Last().Seq), records)
}

func TestRunLogsStallsAndContinues(t *testing.T) {
	log := &memLogger{}
	h := hal.NewSim(hal.Constant(2110), log).(hal.Simulator)
	cfg := testConfig()
	cfg.Timeout = 2 * time.Millisecond
	cfg.Telemetry = false
	m, err := New(h, cfg)
	require.NoError(t, err)
	h.Stall(true)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, m.Run(ctx), context.DeadlineExceeded)
	assert.Greater(t, m.Stalls(), uint64(0))

	var stalled bool
	for _, l := range log.snapshot() {
		if strings.Contains(l, meter.ErrStalled.Error()) {
			stalled = true
		}
	}
	assert.True(t, stalled)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	c := DefaultConfig()
	c.Period = -1
	assert.Error(t, c.Validate())

	c = DefaultConfig()
	c.ADC.Threshold = 0
	assert.Error(t, c.Validate())

	_, err := New(hal.NewSim(hal.Constant(0), nil), c)
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 8))
	assert.Equal(t, "abcd~", truncate("abcdefgh", 5))
}
