package meter

import (
	"errors"
	"fmt"
	"time"

	"soundmeter/hal"
)

// ErrStalled is returned by Acquire when the transfer did not complete in
// time. The sampler is ready for another attempt.
var ErrStalled = errors.New("acquisition stalled")

// Sampler fills a Samples buffer from the ADC FIFO with a paced one-shot
// DMA transfer.
type Sampler struct {
	adc hal.ADC
	dma hal.DMA
}

// NewSampler configures adc and returns a sampler that owns it together
// with dma.
func NewSampler(adc hal.ADC, dma hal.DMA, cfg hal.ADCConfig) (*Sampler, error) {
	if adc == nil || dma == nil {
		return nil, errors.New("meter: sampler needs an ADC and a DMA channel")
	}
	adc.Stop()
	if err := adc.Configure(cfg); err != nil {
		return nil, fmt.Errorf("meter: configure adc: %w", err)
	}
	return &Sampler{adc: adc, dma: dma}, nil
}

// Acquire overwrites buf with fresh conversions. It blocks until every
// sample has landed or timeout expires; a zero timeout waits forever.
func (s *Sampler) Acquire(buf *Samples, timeout time.Duration) error {
	// Samples queued since the last run are stale.
	s.adc.Stop()
	s.adc.Drain()

	err := s.dma.Configure(hal.Transfer{
		Src:       s.adc.FIFO(),
		Dst:       buf[:],
		Count:     len(buf),
		Size:      hal.Size16,
		IncrRead:  false,
		IncrWrite: true,
		DREQ:      hal.DREQADC,
	})
	if err != nil {
		return fmt.Errorf("meter: configure transfer: %w", err)
	}
	if err := s.dma.Start(); err != nil {
		return fmt.Errorf("meter: start transfer: %w", err)
	}

	s.adc.Start()
	err = s.dma.Wait(timeout)
	s.adc.Stop()
	if err == nil {
		return nil
	}

	got := len(buf) - s.dma.Remaining()
	s.dma.Abort()
	s.adc.Drain()
	if errors.Is(err, hal.ErrTimeout) {
		return fmt.Errorf("%w: %d of %d samples after %s", ErrStalled, got, len(buf), timeout)
	}
	return fmt.Errorf("meter: wait transfer: %w", err)
}
