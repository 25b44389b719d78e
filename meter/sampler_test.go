package meter

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundmeter/hal"
)

// fakeBoard records the order of ADC and DMA calls and completes transfers
// synchronously from a fixed code.
type fakeBoard struct {
	calls []string

	cfg       hal.ADCConfig
	transfer  hal.Transfer
	code      uint16
	stall     bool
	remaining int
	waitErr   error
}

type fakePort struct{}

func (fakePort) Addr() uintptr       { return 0x4004c00c }
func (fakePort) Pop() (uint32, bool) { return 0, false }

func (f *fakeBoard) Configure(cfg hal.ADCConfig) error {
	f.calls = append(f.calls, "adc.configure")
	f.cfg = cfg
	return nil
}
func (f *fakeBoard) Start()         { f.calls = append(f.calls, "adc.start") }
func (f *fakeBoard) Stop()          { f.calls = append(f.calls, "adc.stop") }
func (f *fakeBoard) Drain()         { f.calls = append(f.calls, "adc.drain") }
func (f *fakeBoard) FIFO() hal.Port { return fakePort{} }

type fakeDMA struct{ *fakeBoard }

func (d fakeDMA) Configure(t hal.Transfer) error {
	d.calls = append(d.calls, "dma.configure")
	d.transfer = t
	d.remaining = t.Count
	return t.Validate()
}

func (d fakeDMA) Start() error {
	d.calls = append(d.calls, "dma.start")
	return nil
}

func (d fakeDMA) Wait(timeout time.Duration) error {
	d.calls = append(d.calls, "dma.wait")
	if d.waitErr != nil {
		return d.waitErr
	}
	if d.stall {
		d.remaining = d.transfer.Count - 3
		return hal.ErrTimeout
	}
	for i := 0; i < d.transfer.Count; i++ {
		d.transfer.Dst[i] = d.code
	}
	d.remaining = 0
	return nil
}

func (d fakeDMA) Abort()         { d.calls = append(d.calls, "dma.abort") }
func (d fakeDMA) Remaining() int { return d.remaining }

func newFakeSampler(t *testing.T, f *fakeBoard) *Sampler {
	t.Helper()
	s, err := NewSampler(f, fakeDMA{f}, hal.ADCConfig{Channel: hal.MicChannel, ClockDiv: hal.MicClockDiv, Threshold: 1})
	require.NoError(t, err)
	f.calls = nil
	return s
}

func TestAcquireSequence(t *testing.T) {
	f := &fakeBoard{code: 2110}
	s := newFakeSampler(t, f)

	var buf Samples
	require.NoError(t, s.Acquire(&buf, 50*time.Millisecond))

	assert.Equal(t, []string{
		"adc.stop", "adc.drain",
		"dma.configure", "dma.start",
		"adc.start", "dma.wait", "adc.stop",
	}, f.calls)
	assert.Equal(t, SampleCount, f.transfer.Count)
	assert.Equal(t, hal.Size16, f.transfer.Size)
	assert.False(t, f.transfer.IncrRead)
	assert.True(t, f.transfer.IncrWrite)
	assert.Equal(t, hal.DREQADC, f.transfer.DREQ)
	assert.Equal(t, *fill(2110), buf)
}

func TestAcquireStalled(t *testing.T) {
	f := &fakeBoard{stall: true}
	s := newFakeSampler(t, f)

	var buf Samples
	err := s.Acquire(&buf, time.Millisecond)
	require.ErrorIs(t, err, ErrStalled)
	assert.True(t, strings.Contains(err.Error(), "3 of 200"), err.Error())
	assert.Equal(t, []string{
		"adc.stop", "adc.drain",
		"dma.configure", "dma.start",
		"adc.start", "dma.wait", "adc.stop",
		"dma.abort", "adc.drain",
	}, f.calls)
}

func TestAcquireOtherWaitError(t *testing.T) {
	boom := errors.New("bus fault")
	f := &fakeBoard{waitErr: boom}
	s := newFakeSampler(t, f)

	var buf Samples
	err := s.Acquire(&buf, time.Millisecond)
	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, ErrStalled))
}

func TestNewSamplerConfiguresADC(t *testing.T) {
	f := &fakeBoard{}
	_, err := NewSampler(f, fakeDMA{f}, hal.ADCConfig{Channel: 2, ClockDiv: 96, Threshold: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"adc.stop", "adc.configure"}, f.calls)
	assert.Equal(t, uint8(2), f.cfg.Channel)
	assert.Equal(t, float32(96), f.cfg.ClockDiv)

	_, err = NewSampler(nil, nil, hal.ADCConfig{})
	assert.Error(t, err)
}
