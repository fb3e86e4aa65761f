package sx127x

import (
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"
)

// Config is the SX127x-specific wire configuration, following the same
// yaml/env/env-default convention as lora/sx126x.Config — grounded on
// libs/sx126x.Config's tagging style, adapted to the pins an SX127x board
// actually exposes (single DIO0 for RxDone/TxDone, no busy line).
type Config struct {
	Enable  bool  `yaml:"enable" env:"SX127X_ENABLE" env-default:"false"`
	Pins    *Pins `yaml:"pins"`
	PaBoost bool  `yaml:"pa_boost" env:"SX127X_PA_BOOST" env-default:"true"`
	Sync    uint8 `yaml:"sync" env:"SX127X_SYNC" env-default:"0x12"`
}

type Pins struct {
	Reset string `yaml:"reset" env:"SX127X_GPIO_RESET" env-default:"GPIO17"`
	DIO0  string `yaml:"dio0" env:"SX127X_GPIO_DIO0" env-default:"GPIO4"`
}

type pinsDirection struct {
	reset gpio.PinOut
	dio0  gpio.PinIn
}

// Device is the register-level SX127x handle; Driver (in driver.go) adapts
// it to lora.ChipDriver.
type Device struct {
	SPI    spi.Conn
	Config *Config
	mode   uint8
	gpio   *pinsDirection
}
