//go:build !tinygo

package hal

import (
	"runtime"
	"sync"
	"time"
)

// softDMA emulates a paced one-shot DMA channel with a goroutine that pops
// words from the source port as they become ready.
type softDMA struct {
	mu        sync.Mutex
	t         Transfer
	ok        bool
	remaining int

	running bool
	abort   chan struct{}
	done    chan struct{}

	// idle is how long the engine backs off when the source has no data.
	idle time.Duration
}

func newSoftDMA() *softDMA {
	return &softDMA{idle: 20 * time.Microsecond}
}

func (d *softDMA) Configure(t Transfer) error {
	if err := t.Validate(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return ErrBusy
	}
	d.t = t
	d.ok = true
	d.remaining = t.Count
	return nil
}

func (d *softDMA) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.ok {
		return ErrNotConfigured
	}
	if d.running {
		return ErrBusy
	}
	d.running = true
	d.remaining = d.t.Count
	d.abort = make(chan struct{})
	d.done = make(chan struct{})
	go d.run(d.t, d.abort, d.done)
	return nil
}

func (d *softDMA) run(t Transfer, abort <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer func() {
		d.mu.Lock()
		d.running = false
		d.mu.Unlock()
	}()

	idx := 0
	for n := 0; n < t.Count; {
		select {
		case <-abort:
			return
		default:
		}

		v, ok := t.Src.Pop()
		if !ok {
			if t.DREQ == DREQForce {
				runtime.Gosched()
			} else {
				time.Sleep(d.idle)
			}
			continue
		}

		t.Dst[idx] = uint16(v)
		if t.IncrWrite {
			idx++
		}
		n++

		d.mu.Lock()
		d.remaining = t.Count - n
		d.mu.Unlock()
	}
}

func (d *softDMA) Wait(timeout time.Duration) error {
	d.mu.Lock()
	done := d.done
	d.mu.Unlock()
	if done == nil {
		return nil
	}

	if timeout <= 0 {
		<-done
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-timer.C:
		return ErrTimeout
	}
}

func (d *softDMA) Abort() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	abort, done := d.abort, d.done
	d.mu.Unlock()

	select {
	case <-abort:
	default:
		close(abort)
	}
	<-done
}

func (d *softDMA) Remaining() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.remaining
}
