//go:build tinygo && rp2040

package main

import (
	"context"

	"soundmeter/app"
	"soundmeter/hal"
	"soundmeter/internal/buildinfo"
)

func main() {
	h := hal.New()
	h.Logger().WriteLineString(buildinfo.Line())
	m, err := app.New(h, app.DefaultConfig())
	if err != nil {
		h.Logger().WriteLineString("soundmeter: " + err.Error())
		select {}
	}
	_ = m.Run(context.Background())
}
