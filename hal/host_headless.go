//go:build !tinygo

package hal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	// Duration stops the run after the given time. Zero runs until ctx is done.
	Duration time.Duration
	// Dump receives an ASCII picture of the panel when the run ends.
	Dump io.Writer
}

// RunHeadless runs loop without opening a window.
func RunHeadless(ctx context.Context, h HAL, loop func(context.Context) error, cfg HeadlessConfig) error {
	if cfg.Duration < 0 {
		return fmt.Errorf("invalid headless duration: %s", cfg.Duration)
	}
	if cfg.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Duration)
		defer cancel()
	}

	err := loop(ctx)
	if errors.Is(err, context.DeadlineExceeded) && cfg.Duration > 0 {
		err = nil
	}
	if cfg.Dump != nil {
		if derr := DumpPanel(cfg.Dump, h); derr != nil && err == nil {
			err = derr
		}
	}
	return err
}

// DumpPanel writes the simulated panel contents as rows of '#' and '.'.
func DumpPanel(w io.Writer, h HAL) error {
	p, ok := h.(previewer)
	if !ok {
		return errors.New("dump: board has no preview")
	}
	gddram := make([]byte, OLEDWidth*OLEDHeight/8)
	on := p.previewOLED(gddram)
	line := make([]byte, OLEDWidth+1)
	line[OLEDWidth] = '\n'
	for y := 0; y < OLEDHeight; y++ {
		for x := 0; x < OLEDWidth; x++ {
			line[x] = '.'
			if on && gddram[(y/8)*OLEDWidth+x]&(1<<(y%8)) != 0 {
				line[x] = '#'
			}
		}
		if _, err := w.Write(line); err != nil {
			return err
		}
	}
	return nil
}
