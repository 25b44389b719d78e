//go:build !tinygo && !cgo

package hal

import "errors"

func NewMicSource() (Source, error) {
	return nil, errors.New("mic source requires cgo (build/run with CGO_ENABLED=1)")
}
