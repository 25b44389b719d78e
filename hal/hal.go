package hal

import (
	"errors"
	"time"
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

var (
	ErrNotImplemented = errors.New("not implemented")

	ErrBusy          = errors.New("dma: channel busy")
	ErrNotConfigured = errors.New("dma: channel not configured")

	// ErrTimeout is returned by DMA.Wait when the transfer did not finish in time.
	ErrTimeout = errors.New("transfer timed out")

	// ErrRegionLength is returned by Panel.WriteRegion when the buffer does not
	// cover the addressable region exactly.
	ErrRegionLength = errors.New("buffer does not match region length")
)

// ADCConfig selects the converter input and its FIFO/DREQ behavior.
type ADCConfig struct {
	// Channel is the analog mux input (0-3 on RP2040, 4 is the temperature sensor).
	Channel uint8
	// ClockDiv adds ClockDiv cycles between conversions (0 = back-to-back).
	ClockDiv float32
	// Threshold is the FIFO level that raises the DMA request.
	Threshold uint8
}

// Port is a peripheral data register a transfer engine reads from.
type Port interface {
	// Addr is the bus address of the register.
	Addr() uintptr
	// Pop reads one word. ok is false when no data is ready yet.
	Pop() (v uint32, ok bool)
}

// ADC is a free-running analog-to-digital converter with a sample FIFO.
type ADC interface {
	Configure(cfg ADCConfig) error
	// Start begins free-running conversion into the FIFO.
	Start()
	// Stop halts conversion. A conversion in flight still lands in the FIFO.
	Stop()
	// Drain waits for the converter to go idle and discards every queued sample.
	Drain()
	// FIFO is the data-ready register.
	FIFO() Port
}

// DataSize is the width of each transferred word.
type DataSize uint8

const (
	Size8 DataSize = iota
	Size16
	Size32
)

// DREQ is a transfer pacing signal.
type DREQ uint8

const (
	// DREQADC paces a transfer on the ADC FIFO threshold (RP2040 DREQ 36).
	DREQADC DREQ = 36
	// DREQForce runs the transfer unpaced.
	DREQForce DREQ = 0x3f
)

// Transfer describes a one-shot transfer from a peripheral register into memory.
type Transfer struct {
	Src       Port
	Dst       []uint16
	Count     int
	Size      DataSize
	IncrRead  bool
	IncrWrite bool
	DREQ      DREQ
}

// Validate reports whether the destination can hold the whole transfer.
func (t Transfer) Validate() error {
	if t.Src == nil {
		return errors.New("dma: transfer has no source")
	}
	if t.Size != Size16 {
		return ErrNotImplemented
	}
	if t.Count <= 0 {
		return errors.New("dma: transfer count must be positive")
	}
	if len(t.Dst) == 0 || (t.IncrWrite && len(t.Dst) < t.Count) {
		return errors.New("dma: destination shorter than transfer count")
	}
	return nil
}

// DMA is a single claimed transfer channel.
type DMA interface {
	Configure(t Transfer) error
	Start() error
	// Wait blocks until the transfer completes. A zero timeout waits forever.
	Wait(timeout time.Duration) error
	// Abort cancels an in-flight transfer. It is a no-op when the channel is idle.
	Abort()
	// Remaining is the number of words not yet transferred.
	Remaining() int
}

// LEDStrip is an addressable RGB LED chain.
type LEDStrip interface {
	Init(count int) error
	Clear()
	Set(i int, r, g, b uint8)
	// Commit pushes the pending colors to the LEDs.
	Commit() error
}

// Region is the addressable window of a paged monochrome panel. Bounds are
// inclusive, as sent to the controller.
type Region struct {
	StartColumn uint8
	EndColumn   uint8
	StartPage   uint8
	EndPage     uint8
}

// BufferLength is the number of bytes a write to the region must carry.
func (r Region) BufferLength() int {
	if r.EndColumn < r.StartColumn || r.EndPage < r.StartPage {
		return 0
	}
	return (int(r.EndColumn-r.StartColumn) + 1) * (int(r.EndPage-r.StartPage) + 1)
}

// Panel is a monochrome bitmap display addressed in 8-pixel pages.
type Panel interface {
	Init() error
	SetRegion(r Region) error
	// WriteRegion transmits raw page data for the current region.
	WriteRegion(buf []byte) error
}

// I2C is the bus transaction primitive (satisfied by *machine.I2C and periph i2c.Bus).
type I2C interface {
	Tx(addr uint16, w, r []byte) error
}

// HAL provides the only contact point between the meter and the board.
type HAL interface {
	Logger() Logger
	Mic() ADC
	DMA() DMA
	LEDs() LEDStrip
	Panel() Panel
}
