//go:build !tinygo

package oled

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundmeter/hal"
)

func TestRenderThroughSimulatedController(t *testing.T) {
	h := hal.NewSim(hal.Constant(0), nil).(hal.Simulator)
	r, err := NewRenderer(h.Panel(), &Frame{})
	require.NoError(t, err)
	require.NoError(t, r.Render(4))

	assert.True(t, h.OLEDOn())
	assert.True(t, h.OLEDPixel(0, 54))
	assert.True(t, h.OLEDPixel(56, 63))
	assert.False(t, h.OLEDPixel(57, 63))
	assert.False(t, h.OLEDPixel(0, 53))
}
