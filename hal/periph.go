//go:build !tinygo

package hal

// PeriphConfig names the Linux buses of a Raspberry Pi wired like the board:
// an MCP3008 converter for the microphone, a WS2812 chain on SPI MOSI and the
// SSD1306 on I2C. Empty names pick the first bus of each kind.
type PeriphConfig struct {
	I2C    string `toml:"i2c"`
	ADCSPI string `toml:"adc_spi"`
	LEDSPI string `toml:"led_spi"`
}
