package hal

// Board topology of the BitDogLab-style Pico carrier.
const (
	// MicChannel is the ADC input of the electret microphone (GPIO28).
	MicChannel = 2
	// MicClockDiv spaces conversions at 1+96 ADC clock cycles.
	MicClockDiv = 96

	// LEDCount is the number of WS2812 LEDs in the 5x5 matrix on GPIO7.
	LEDCount = 25

	OLEDWidth   = 128
	OLEDHeight  = 64
	OLEDAddress = 0x3C

	// I2CFrequency is the OLED bus clock (I2C1 on GPIO14/GPIO15).
	I2CFrequency = 400_000
)
