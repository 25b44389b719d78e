//go:build !tinygo && cgo

package hal

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
)

const (
	micSampleRate = 48000
	micRingSize   = 8192
)

// micSource captures the default input device and feeds its PCM stream to
// the simulated converter, scaled to 12-bit codes around the bias point.
type micSource struct {
	mu   sync.Mutex
	ring []int16
	r, n int

	ctx *malgo.AllocatedContext
	dev *malgo.Device
}

// NewMicSource opens the default capture device.
func NewMicSource() (Source, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("mic: init context: %w", err)
	}

	m := &micSource{ring: make([]int16, micRingSize), ctx: ctx}

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatS16
	cfg.Capture.Channels = 1
	cfg.SampleRate = micSampleRate
	cfg.Alsa.NoMMap = 1

	dev, err := malgo.InitDevice(ctx.Context, cfg, malgo.DeviceCallbacks{
		Data: func(_, input []byte, frames uint32) {
			m.push(input)
		},
	})
	if err != nil {
		_ = ctx.Uninit()
		ctx.Free()
		return nil, fmt.Errorf("mic: init device: %w", err)
	}
	if err := dev.Start(); err != nil {
		dev.Uninit()
		_ = ctx.Uninit()
		ctx.Free()
		return nil, fmt.Errorf("mic: start: %w", err)
	}
	m.dev = dev
	return m, nil
}

func (m *micSource) push(pcm []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i+1 < len(pcm); i += 2 {
		s := int16(binary.LittleEndian.Uint16(pcm[i:]))
		w := (m.r + m.n) % len(m.ring)
		m.ring[w] = s
		if m.n < len(m.ring) {
			m.n++
		} else {
			m.r = (m.r + 1) % len(m.ring)
		}
	}
}

// Next returns the oldest captured sample, or the bias code when the capture
// stream has not caught up with the converter.
func (m *micSource) Next() uint16 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.n == 0 {
		return micBiasCode
	}
	s := m.ring[m.r]
	m.r = (m.r + 1) % len(m.ring)
	m.n--
	return uint16(int32(micBiasCode) + int32(s)/16)
}

// Close stops the capture device.
func (m *micSource) Close() error {
	if m.dev != nil {
		m.dev.Uninit()
		m.dev = nil
	}
	if m.ctx != nil {
		err := m.ctx.Uninit()
		m.ctx.Free()
		m.ctx = nil
		return err
	}
	return nil
}
