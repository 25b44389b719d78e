//go:build tinygo && rp2040

package hal

import (
	"fmt"
	"runtime/volatile"
	"unsafe"
)

type adcRegs struct {
	CS     volatile.Register32
	RESULT volatile.Register32
	FCS    volatile.Register32
	FIFO   volatile.Register32
	DIV    volatile.Register32
}

const (
	adcBase = 0x4004c000

	adcCSEn        = 1 << 0
	adcCSStartMany = 1 << 3
	adcCSReady     = 1 << 8
	adcCSAinselPos = 12
	adcCSAinselMsk = 0x7 << adcCSAinselPos

	adcFCSEn        = 1 << 0
	adcFCSDreqEn    = 1 << 3
	adcFCSEmpty     = 1 << 8
	adcFCSUnder     = 1 << 10
	adcFCSOver      = 1 << 11
	adcFCSThreshPos = 24
	adcFCSThreshMsk = 0xf << adcFCSThreshPos

	adcDivIntPos = 8
	adcDivIntMsk = 0xffff << adcDivIntPos
	adcDivFrcMsk = 0xff
)

var adcHW = (*adcRegs)(unsafe.Pointer(uintptr(adcBase)))

// rpADC drives the RP2040 converter in free-running mode feeding its FIFO.
type rpADC struct {
	regs *adcRegs
}

func newRPADC() *rpADC { return &rpADC{regs: adcHW} }

func (a *rpADC) Configure(cfg ADCConfig) error {
	if cfg.Channel > 4 {
		return fmt.Errorf("adc: invalid channel %d", cfg.Channel)
	}
	if cfg.Threshold == 0 || cfg.Threshold > 4 {
		return fmt.Errorf("adc: invalid fifo threshold %d", cfg.Threshold)
	}
	if cfg.ClockDiv < 0 || cfg.ClockDiv >= 65536 {
		return fmt.Errorf("adc: invalid clock divider %v", cfg.ClockDiv)
	}

	r := a.regs
	r.CS.ClearBits(adcCSStartMany)
	r.CS.ReplaceBits(uint32(cfg.Channel)<<adcCSAinselPos, adcCSAinselMsk, 0)

	whole := uint32(cfg.ClockDiv)
	frac := uint32((cfg.ClockDiv - float32(whole)) * 256)
	r.DIV.Set(whole<<adcDivIntPos | frac&adcDivFrcMsk)

	// Full 12-bit results, DREQ at threshold, sticky errors cleared.
	fcs := uint32(adcFCSEn|adcFCSDreqEn) | uint32(cfg.Threshold)<<adcFCSThreshPos
	r.FCS.Set(fcs)
	r.FCS.SetBits(adcFCSUnder | adcFCSOver)
	r.CS.SetBits(adcCSEn)
	return nil
}

func (a *rpADC) Start() { a.regs.CS.SetBits(adcCSStartMany) }
func (a *rpADC) Stop()  { a.regs.CS.ClearBits(adcCSStartMany) }

func (a *rpADC) Drain() {
	if a.regs.CS.HasBits(adcCSEn) {
		for !a.regs.CS.HasBits(adcCSReady) {
		}
	}
	for !a.regs.FCS.HasBits(adcFCSEmpty) {
		_ = a.regs.FIFO.Get()
	}
}

func (a *rpADC) FIFO() Port { return rpADCFIFO{regs: a.regs} }

type rpADCFIFO struct {
	regs *adcRegs
}

func (f rpADCFIFO) Addr() uintptr { return uintptr(unsafe.Pointer(&f.regs.FIFO)) }

func (f rpADCFIFO) Pop() (uint32, bool) {
	if f.regs.FCS.HasBits(adcFCSEmpty) {
		return 0, false
	}
	return f.regs.FIFO.Get() & 0xfff, true
}
