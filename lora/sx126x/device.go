package sx126x

import (
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"
)

// Config is the SX126x-specific wire configuration, adapted from
// libs/sx126x.Config: the FSK-only fields and the channel-queue sizing
// fields are gone (this driver is LoRa-only and poll-driven, not
// queue-driven), everything else keeps the same yaml/env/env-default
// tagging convention.
type Config struct {
	Enable          bool     `yaml:"enable" env:"SX126X_ENABLE" env-default:"false"`
	Type            string   `yaml:"type" env:"SX126X_TYPE" env-default:"1262"`
	DCDC            bool     `yaml:"dc_dc" env:"SX126X_DC_DC" env-default:"false"`
	StandbyMode     string   `yaml:"standby_mode" env:"SX126X_STANDBY_MODE" env-default:"rc"`
	SleepMode       string   `yaml:"sleep_mode" env:"SX126X_SLEEP_MODE" env-default:"cold_start"`
	FrequencyRange  []uint16 `yaml:"frequency_range" env:"SX126X_FREQ_RANGE" env-default:"863,870" env-separator:","`
	DIO2AsRfSwitch  bool     `yaml:"dio2_as_rf_switch" env:"SX126X_DIO2_AS_RF_SWITCH" env-default:"true"`
	RxBufferAddress uint8    `yaml:"rx_buffer_address" env:"SX126X_RX_BUFFER_ADDRESS" env-default:"128"`
	TxBufferAddress uint8    `yaml:"tx_buffer_address" env:"SX126X_TX_BUFFER_ADDRESS" env-default:"0"`
	Pins            *Pins    `yaml:"pins"`
}

type Pins struct {
	Reset string `yaml:"reset" env:"SX126X_GPIO_RESET" env-default:"GPIO18"`
	Busy  string `yaml:"busy" env:"SX126X_GPIO_BUSY" env-default:"GPIO20"`
	DIO   string `yaml:"dio" env:"SX126X_GPIO_DIO" env-default:"GPIO16"`
	TxEn  string `yaml:"tx_enable" env:"SX126X_GPIO_TX_EN" env-default:"GPIO6"`
	RxEn  string `yaml:"rx_enable" env:"SX126X_GPIO_RX_EN"`
	CS    string `yaml:"cs" env:"SX126X_GPIO_CS"`
}

type pinsDirection struct {
	reset gpio.PinOut
	busy  gpio.PinIn
	dio   gpio.PinIn
	txEn  gpio.PinOut
	rxEn  gpio.PinOut
	cs    gpio.PinOut
}

type ModemStatus struct {
	Command  CommandStatus
	ChipMode StatusMode
}

type BufferStatus struct {
	RXPayloadLength uint8
	RXStartPointer  uint8
}

type PacketStatus struct {
	SignalStrength         int8
	SNRRatio               float32
	DenoisedSignalStrength int8
}

type Status struct {
	Modem  ModemStatus
	Buffer BufferStatus
	Packet PacketStatus
	Error  DeviceError
}

// Device is the register-level SX126x handle. It owns the SPI connection
// and GPIO lines and exposes the datasheet command set; Driver (in
// driver.go) adapts it to lora.ChipDriver.
type Device struct {
	SPI    spi.Conn
	Config *Config
	Status Status
	gpio   *pinsDirection
}
