//go:build !tinygo && !cgo

package hal

import (
	"context"
	"errors"
)

// WindowConfig controls the desktop preview.
type WindowConfig struct {
	Title string
	Scale int
	Cell  func(i int) (x, y int)
}

func RunWindow(_ context.Context, _ HAL, _ WindowConfig) error {
	return errors.New("window mode requires cgo (build/run with CGO_ENABLED=1)")
}
