//go:build !tinygo && !linux

package hal

import "errors"

func NewPeriph(_ PeriphConfig, _ Logger) (HAL, error) {
	return nil, errors.New("periph board requires linux")
}
