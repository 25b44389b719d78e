//go:build tinygo && rp2040

package hal

import (
	"runtime/volatile"
	"time"
	"unsafe"
)

type dmaChannelRegs struct {
	READ_ADDR   volatile.Register32
	WRITE_ADDR  volatile.Register32
	TRANS_COUNT volatile.Register32
	CTRL_TRIG   volatile.Register32
	AL1_CTRL    volatile.Register32
	_           [11]volatile.Register32
}

const (
	dmaBase        = 0x50000000
	dmaChanAbort   = dmaBase + 0x444
	dmaMeterChan   = 11
	dmaCtrlEn      = 1 << 0
	dmaSizePos     = 2
	dmaIncrRead    = 1 << 4
	dmaIncrWrite   = 1 << 5
	dmaChainToPos  = 11
	dmaTreqSelPos  = 15
	dmaCtrlBusy    = 1 << 24
	dmaPollBackoff = 50 * time.Microsecond
)

var (
	dmaChannels = (*[12]dmaChannelRegs)(unsafe.Pointer(uintptr(dmaBase)))
	dmaAbortReg = (*volatile.Register32)(unsafe.Pointer(uintptr(dmaChanAbort)))
)

// rpDMA owns one hardware channel of the RP2040 DMA block.
type rpDMA struct {
	ch  *dmaChannelRegs
	idx uint32
	t   Transfer
	ok  bool
}

func newRPDMA() *rpDMA {
	return &rpDMA{ch: &dmaChannels[dmaMeterChan], idx: dmaMeterChan}
}

func (d *rpDMA) Configure(t Transfer) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if d.ch.CTRL_TRIG.HasBits(dmaCtrlBusy) {
		return ErrBusy
	}
	d.t = t
	d.ok = true
	return nil
}

func (d *rpDMA) ctrl() uint32 {
	c := uint32(dmaCtrlEn) |
		uint32(d.t.Size)<<dmaSizePos |
		d.idx<<dmaChainToPos |
		uint32(d.t.DREQ)<<dmaTreqSelPos
	if d.t.IncrRead {
		c |= dmaIncrRead
	}
	if d.t.IncrWrite {
		c |= dmaIncrWrite
	}
	return c
}

func (d *rpDMA) Start() error {
	if !d.ok {
		return ErrNotConfigured
	}
	d.ch.READ_ADDR.Set(uint32(d.t.Src.Addr()))
	d.ch.WRITE_ADDR.Set(uint32(uintptr(unsafe.Pointer(&d.t.Dst[0]))))
	d.ch.TRANS_COUNT.Set(uint32(d.t.Count))
	d.ch.CTRL_TRIG.Set(d.ctrl())
	return nil
}

func (d *rpDMA) Wait(timeout time.Duration) error {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	for d.ch.CTRL_TRIG.HasBits(dmaCtrlBusy) {
		if timeout > 0 && time.Now().After(deadline) {
			return ErrTimeout
		}
		time.Sleep(dmaPollBackoff)
	}
	return nil
}

func (d *rpDMA) Abort() {
	dmaAbortReg.Set(1 << d.idx)
	for dmaAbortReg.HasBits(1 << d.idx) {
	}
}

func (d *rpDMA) Remaining() int {
	return int(d.ch.TRANS_COUNT.Get())
}
