//go:build !tinygo

package app

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(`
board = "sim"
verbose = true

[meter]
period = "20ms"
timeout = "250ms"
quiet = true

[source]
kind = "constant"
code = 2110

[window]
scale = 2

[headless]
enabled = true
duration = "2s"
dump = true
`))
	require.NoError(t, err)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "constant", cfg.Source.Kind)
	assert.Equal(t, uint16(2110), cfg.Source.Code)
	assert.Equal(t, 2, cfg.Window.Scale)
	assert.True(t, cfg.Headless.Enabled)
	assert.Equal(t, 2*time.Second, time.Duration(cfg.Headless.Duration))

	mc, err := cfg.MeterConfig()
	require.NoError(t, err)
	assert.Equal(t, 20*time.Millisecond, mc.Period)
	assert.Equal(t, 250*time.Millisecond, mc.Timeout)
	assert.False(t, mc.Telemetry)
	assert.Equal(t, time.Second, mc.Splash)
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader("verbose = false\n"))
	require.NoError(t, err)
	assert.Equal(t, BoardSim, cfg.Board)
	assert.Equal(t, 3, cfg.Window.Scale)
	assert.Equal(t, 0.05, cfg.Source.Amplitude)
	assert.False(t, cfg.Headless.Enabled)
}

func TestParseConfigWaitForever(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader("[meter]\nwait_forever = true\nno_splash = true\n"))
	require.NoError(t, err)
	mc, err := cfg.MeterConfig()
	require.NoError(t, err)
	assert.Zero(t, mc.Timeout)
	assert.Zero(t, mc.Splash)
	assert.Equal(t, 10*time.Millisecond, mc.Period)
}

func TestParseConfigRejects(t *testing.T) {
	_, err := ParseConfig(strings.NewReader(`board = "arduino"`))
	assert.Error(t, err)

	_, err = ParseConfig(strings.NewReader("[meter]\nperiod = \"soon\"\n"))
	assert.Error(t, err)

	_, err = ParseConfig(strings.NewReader("[meter]\nperiod = \"-1s\"\n"))
	assert.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultFileConfig(), *cfg)
}
