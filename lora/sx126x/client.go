package sx126x

import (
	"fmt"
	"log/slog"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpioreg"
	"periph.io/x/conn/v3/spi"
)

// New constructs a Device over conn, resolving the GPIO pins named in cfg.
// Grounded on libs/sx126x/client.go's New, minus its TX/RX queue setup
// (this driver is poll-driven, not channel-driven).
func New(conn spi.Conn, cfg *Config) (*Device, error) {
	log := slog.With("func", "New()", "params", "(spi.Conn, *Config)", "return", "(*Device, error)", "package", "sx126x")
	log.Info("SX126x device constructor")

	if cfg == nil {
		return nil, fmt.Errorf("sx126x: config is nil")
	}
	if !cfg.Enable {
		return nil, fmt.Errorf("sx126x: device disabled in config")
	}
	if conn == nil {
		return nil, fmt.Errorf("sx126x: spi connection is nil")
	}
	if cfg.Pins == nil {
		return nil, fmt.Errorf("sx126x: pins not configured")
	}

	reset := gpioreg.ByName(cfg.Pins.Reset)
	busy := gpioreg.ByName(cfg.Pins.Busy)
	dio := gpioreg.ByName(cfg.Pins.DIO)
	txEn := gpioreg.ByName(cfg.Pins.TxEn)
	cs := gpioreg.ByName(cfg.Pins.CS)
	if reset == nil || busy == nil || dio == nil {
		return nil, fmt.Errorf("sx126x: required GPIO pin not found (reset/busy/dio)")
	}

	if err := reset.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("sx126x: failed to set reset pin direction: %w", err)
	}
	if err := busy.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("sx126x: failed to set busy pin direction: %w", err)
	}
	if err := dio.In(gpio.PullDown, gpio.RisingEdge); err != nil {
		return nil, fmt.Errorf("sx126x: failed to set dio pin direction: %w", err)
	}

	pins := &pinsDirection{reset: reset, busy: busy, dio: dio, cs: cs}
	if txEn != nil {
		if err := txEn.Out(gpio.Low); err != nil {
			return nil, fmt.Errorf("sx126x: failed to set tx_en pin direction: %w", err)
		}
		pins.txEn = txEn
	}
	if cs != nil {
		if err := cs.Out(gpio.High); err != nil {
			return nil, fmt.Errorf("sx126x: failed to set cs pin direction: %w", err)
		}
	}

	return &Device{SPI: conn, Config: cfg, gpio: pins}, nil
}

// Close puts the device to sleep and releases the TX-enable line.
func (d *Device) Close(mode SleepConfig) error {
	log := slog.With("func", "Device.Close()", "params", "(SleepConfig)", "return", "(error)", "lib", "sx126x")
	if err := d.SetSleep(mode); err != nil {
		return err
	}
	if d.gpio.txEn != nil {
		if err := d.gpio.txEn.Out(gpio.Low); err != nil {
			return fmt.Errorf("sx126x: failed to release tx_en pin: %w", err)
		}
	}
	log.Info("SX126x device closed")
	return nil
}
