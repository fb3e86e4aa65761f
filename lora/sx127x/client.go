package sx127x

import (
	"fmt"
	"log/slog"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpioreg"
	"periph.io/x/conn/v3/spi"
)

// New constructs a Device over conn, resolving the GPIO pins named in cfg
// and putting the chip to sleep. Grounded on tve-devices/sx1276.New, minus
// its sync-byte handshake loop and interrupt self-test: this driver is
// polled by a lora.Modem rather than running its own worker goroutine, so
// there is no interrupt path to self-test at construction time.
func New(conn spi.Conn, cfg *Config) (*Device, error) {
	log := slog.With("func", "New()", "params", "(spi.Conn, *Config)", "return", "(*Device, error)", "package", "sx127x")
	log.Info("SX127x device constructor")

	if cfg == nil {
		return nil, fmt.Errorf("sx127x: config is nil")
	}
	if !cfg.Enable {
		return nil, fmt.Errorf("sx127x: device disabled in config")
	}
	if conn == nil {
		return nil, fmt.Errorf("sx127x: spi connection is nil")
	}
	if cfg.Pins == nil {
		return nil, fmt.Errorf("sx127x: pins not configured")
	}

	reset := gpioreg.ByName(cfg.Pins.Reset)
	dio0 := gpioreg.ByName(cfg.Pins.DIO0)
	if reset == nil || dio0 == nil {
		return nil, fmt.Errorf("sx127x: required GPIO pin not found (reset/dio0)")
	}
	if err := reset.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("sx127x: failed to set reset pin direction: %w", err)
	}
	if err := dio0.In(gpio.PullDown, gpio.RisingEdge); err != nil {
		return nil, fmt.Errorf("sx127x: failed to set dio0 pin direction: %w", err)
	}

	d := &Device{SPI: conn, Config: cfg, mode: 0xFF, gpio: &pinsDirection{reset: reset, dio0: dio0}}

	if err := d.HardReset(); err != nil {
		return nil, err
	}
	if err := d.setMode(ModeSleep); err != nil {
		return nil, fmt.Errorf("sx127x: failed to enter sleep: %w", err)
	}

	version, err := d.readReg(RegVersion)
	if err != nil {
		return nil, fmt.Errorf("sx127x: failed to read chip version: %w", err)
	}
	log.Info("SX127x chip detected", "version", version)

	if err := d.writeReg(RegFifoTxBase, 0x00); err != nil {
		return nil, err
	}
	if err := d.writeReg(RegFifoRxBase, 0x00); err != nil {
		return nil, err
	}
	if err := d.writeReg(RegSync, cfg.Sync); err != nil {
		return nil, err
	}

	return d, nil
}

// HardReset pulses the chip's reset line low then high.
func (d *Device) HardReset() error {
	if err := d.gpio.reset.Out(gpio.Low); err != nil {
		return fmt.Errorf("sx127x: reset low: %w", err)
	}
	if err := d.gpio.reset.Out(gpio.High); err != nil {
		return fmt.Errorf("sx127x: reset high: %w", err)
	}
	return nil
}

func (d *Device) Close() error {
	return d.setMode(ModeSleep)
}
