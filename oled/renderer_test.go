package oled

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundmeter/hal"
	"soundmeter/meter"
)

type fakePanel struct {
	inits   int
	region  hal.Region
	writes  [][]byte
	initErr error
}

func (p *fakePanel) Init() error {
	p.inits++
	return p.initErr
}

func (p *fakePanel) SetRegion(r hal.Region) error {
	p.region = r
	return nil
}

func (p *fakePanel) WriteRegion(buf []byte) error {
	if len(buf) != p.region.BufferLength() {
		return hal.ErrRegionLength
	}
	p.writes = append(p.writes, append([]byte(nil), buf...))
	return nil
}

func (p *fakePanel) last() *Frame {
	var f Frame
	copy(f[:], p.writes[len(p.writes)-1])
	return &f
}

func TestBarWidth(t *testing.T) {
	cases := []struct {
		level meter.Level
		bar   int
		lit   int
	}{
		{0, 0, 0},
		{1, 16, 14},
		{2, 32, 28},
		{3, 48, 43},
		{4, 64, 57},
		{8, 128, 115},
		{9, 100, 90},
		{137, 100, 90},
		{meter.MaxLevel, 100, 90},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.bar, BarWidth(tc.level), "BarWidth(%d)", tc.level)
		assert.Equal(t, tc.lit, LitColumns(tc.level), "LitColumns(%d)", tc.level)
	}
}

func TestNewRendererSelectsFullRegion(t *testing.T) {
	p := &fakePanel{}
	_, err := NewRenderer(p, &Frame{})
	require.NoError(t, err)
	assert.Equal(t, 1, p.inits)
	assert.Equal(t, hal.Region{StartColumn: 0, EndColumn: 127, StartPage: 0, EndPage: 7}, p.region)
	assert.Equal(t, len(Frame{}), p.region.BufferLength())

	_, err = NewRenderer(&fakePanel{initErr: errors.New("nack")}, &Frame{})
	assert.Error(t, err)
	_, err = NewRenderer(nil, &Frame{})
	assert.Error(t, err)
	_, err = NewRenderer(&fakePanel{}, nil)
	assert.Error(t, err)
}

func TestRenderDrawsIntoCallerFrame(t *testing.T) {
	var f Frame
	r, err := NewRenderer(&fakePanel{}, &f)
	require.NoError(t, err)
	assert.Same(t, &f, r.Frame())

	require.NoError(t, r.Render(4))
	assert.Equal(t, 57*(Height-BarTop), f.Lit())
	assert.True(t, f.Pixel(56, BarTop))
	assert.False(t, f.Pixel(57, BarTop))
}

func TestRenderLightsBottomRows(t *testing.T) {
	p := &fakePanel{}
	r, err := NewRenderer(p, &Frame{})
	require.NoError(t, err)

	require.NoError(t, r.Render(4))
	f := p.last()
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			want := y >= BarTop && x < 57
			if f.Pixel(x, y) != want {
				t.Fatalf("pixel (%d, %d) = %v, want %v", x, y, f.Pixel(x, y), want)
			}
		}
	}
	assert.Equal(t, 57*(Height-BarTop), f.Lit())
}

func TestRenderClearsPreviousBar(t *testing.T) {
	p := &fakePanel{}
	r, err := NewRenderer(p, &Frame{})
	require.NoError(t, err)

	require.NoError(t, r.Render(137))
	assert.Equal(t, 90*10, p.last().Lit())

	require.NoError(t, r.Render(0))
	assert.Equal(t, 0, p.last().Lit())
	assert.Len(t, p.writes, 2)
}

func TestRenderBarIsMonotone(t *testing.T) {
	prev := 0
	for l := meter.Level(0); l <= 8; l++ {
		n := LitColumns(l)
		assert.GreaterOrEqual(t, n, prev, "level %d", l)
		prev = n
	}
}

func TestSplashDrawsText(t *testing.T) {
	p := &fakePanel{}
	r, err := NewRenderer(p, &Frame{})
	require.NoError(t, err)

	require.NoError(t, r.Splash("Sound meter", "v1"))
	f := p.last()
	assert.Greater(t, f.Lit(), 20)
	for x := 0; x < Width; x++ {
		assert.False(t, f.Pixel(x, Height-1), "bottom row stays dark")
	}

	require.NoError(t, r.Clear())
	assert.Equal(t, 0, p.last().Lit())
}

func TestFrameLayout(t *testing.T) {
	var f Frame
	f.Set(3, 10, true)
	assert.Equal(t, byte(1<<2), f[1*Width+3])
	f.Set(127, 63, true)
	assert.Equal(t, byte(0x80), f[len(f)-1])
	f.Set(-1, 0, true)
	f.Set(0, 64, true)
	assert.Equal(t, 2, f.Lit())
	f.Set(3, 10, false)
	assert.False(t, f.Pixel(3, 10))
}
