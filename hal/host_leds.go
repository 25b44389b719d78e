//go:build !tinygo

package hal

import (
	"fmt"
	"image/color"
	"sync"
)

// simStrip is a WS2812 chain that only exists in memory. Committed colors are
// what the preview window shows.
type simStrip struct {
	mu      sync.Mutex
	pending []color.RGBA
	shown   []color.RGBA
	commits uint64
}

func (s *simStrip) Init(count int) error {
	if count <= 0 {
		return fmt.Errorf("leds: invalid count %d", count)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = make([]color.RGBA, count)
	s.shown = make([]color.RGBA, count)
	return nil
}

func (s *simStrip) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.pending {
		s.pending[i] = color.RGBA{}
	}
}

func (s *simStrip) Set(i int, r, g, b uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.pending) {
		return
	}
	s.pending[i] = color.RGBA{R: r, G: g, B: b, A: 0xFF}
}

func (s *simStrip) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return fmt.Errorf("leds: %w", ErrNotImplemented)
	}
	copy(s.shown, s.pending)
	s.commits++
	return nil
}

// snapshot copies the committed colors into dst and returns it.
func (s *simStrip) snapshot(dst []color.RGBA) []color.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(dst[:0], s.shown...)
}
