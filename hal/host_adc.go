//go:build !tinygo

package hal

import (
	"fmt"
	"sync"
)

// adcMaxCode is the largest 12-bit conversion result.
const adcMaxCode = 4095

// fifoDepth matches the RP2040 ADC FIFO.
const fifoDepth = 4

// Source produces raw 12-bit converter codes, one per conversion.
type Source interface {
	Next() uint16
}

// simADC is a converter whose conversions are produced on demand by a Source.
// A conversion in flight when Stop is called lands in the FIFO, so callers
// that skip Drain observe stale samples like on hardware.
type simADC struct {
	mu      sync.Mutex
	src     Source
	cfg     ADCConfig
	running bool
	stalled bool
	fifo    []uint16
}

func newSimADC(src Source) *simADC {
	return &simADC{src: src, fifo: make([]uint16, 0, fifoDepth)}
}

func (a *simADC) Configure(cfg ADCConfig) error {
	if cfg.Channel > 4 {
		return fmt.Errorf("adc: invalid channel %d", cfg.Channel)
	}
	if cfg.Threshold == 0 || cfg.Threshold > fifoDepth {
		return fmt.Errorf("adc: invalid FIFO threshold %d", cfg.Threshold)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cfg = cfg
	return nil
}

func (a *simADC) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.running = true
}

func (a *simADC) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running && !a.stalled && len(a.fifo) < fifoDepth {
		a.fifo = append(a.fifo, a.src.Next())
	}
	a.running = false
}

func (a *simADC) Drain() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fifo = a.fifo[:0]
}

func (a *simADC) FIFO() Port { return simFIFO{a: a} }

// setStalled freezes the converter: no conversion completes while set.
func (a *simADC) setStalled(v bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stalled = v
}

func (a *simADC) pop() (uint32, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.fifo) > 0 {
		v := a.fifo[0]
		a.fifo = append(a.fifo[:0], a.fifo[1:]...)
		return uint32(v), true
	}
	if !a.running || a.stalled {
		return 0, false
	}
	v := a.src.Next()
	if v > adcMaxCode {
		v = adcMaxCode
	}
	return uint32(v), true
}

type simFIFO struct {
	a *simADC
}

func (f simFIFO) Addr() uintptr { return 0x4004c00c }

func (f simFIFO) Pop() (uint32, bool) { return f.a.pop() }
