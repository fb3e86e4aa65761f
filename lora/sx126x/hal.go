package sx126x

import (
	"fmt"
	"log/slog"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// BusyCheck polls the busy pin until it reads low or timeout fires.
// Grounded verbatim on libs/sx126x/hal.go's BusyCheck, the corpus's own
// SX126x busy-wait idiom.
func (d *Device) BusyCheck(timeout <-chan time.Time, sleep ...time.Duration) error {
	log := slog.With("func", "Device.BusyCheck()", "params", "(<-chan time.Time, ...time.Duration)", "return", "(error)", "lib", "sx126x")

	interval := 10 * time.Millisecond
	if len(sleep) > 0 {
		interval = sleep[0]
	}

	for {
		select {
		case <-timeout:
			return fmt.Errorf("sx126x: busy check timed out")
		default:
			if d.gpio.busy.Read() == gpio.Low {
				log.Debug("SX126x modem ready")
				return nil
			}
			time.Sleep(interval)
		}
	}
}

// HardReset pulses the reset pin and waits for the chip to come out of
// busy.
func (d *Device) HardReset(timeout ...<-chan time.Time) error {
	log := slog.With("func", "Device.HardReset()", "params", "(-)", "return", "(error)", "lib", "sx126x")

	if err := d.gpio.reset.Out(gpio.Low); err != nil {
		return fmt.Errorf("sx126x: failed to set reset pin low: %w", err)
	}
	time.Sleep(1 * time.Millisecond)
	if err := d.gpio.reset.Out(gpio.High); err != nil {
		return fmt.Errorf("sx126x: failed to set reset pin high: %w", err)
	}

	wait := time.After(5 * time.Second)
	if len(timeout) > 0 {
		wait = timeout[0]
	}
	if err := d.BusyCheck(wait); err != nil {
		return fmt.Errorf("sx126x: hard reset failed: %w", err)
	}

	log.Info("SX126x modem hard reset")
	return nil
}

// Write performs a busy-gated SPI transaction with CS asserted around it.
func (d *Device) Write(w, r []uint8, timeout ...<-chan time.Time) error {
	wait := time.After(1 * time.Second)
	if len(timeout) > 0 {
		wait = timeout[0]
	}
	if err := d.BusyCheck(wait); err != nil {
		return fmt.Errorf("sx126x: modem busy: %w", err)
	}

	if d.gpio.cs != nil {
		if err := d.gpio.cs.Out(gpio.Low); err != nil {
			return fmt.Errorf("sx126x: failed to assert cs: %w", err)
		}
		defer d.gpio.cs.Out(gpio.High)
	}

	if err := d.SPI.Tx(w, r); err != nil {
		return fmt.Errorf("sx126x: spi transaction failed: %w", err)
	}
	return nil
}

func (d *Device) WriteRegister(address uint16, data []uint8) (uint8, error) {
	commands := append([]uint8{uint8(CmdWriteRegister), uint8(address >> 8), uint8(address)}, data...)
	status := make([]uint8, len(commands))
	if err := d.SPI.Tx(commands, status); err != nil {
		return 0, fmt.Errorf("sx126x: write register %#x failed: %w", address, err)
	}
	return status[0], nil
}

func (d *Device) ReadRegister(address uint16, data []uint8) (uint8, error) {
	commands := append([]uint8{uint8(CmdReadRegister), uint8(address >> 8), uint8(address), 0x00}, data...)
	status := make([]uint8, len(commands))
	if err := d.SPI.Tx(commands, status); err != nil {
		return 0, fmt.Errorf("sx126x: read register %#x failed: %w", address, err)
	}
	copy(data, status[4:])
	return status[0], nil
}

func (d *Device) WriteBuffer(offset uint8, data []uint8) (uint8, error) {
	commands := append([]uint8{uint8(CmdWriteBuffer), offset}, data...)
	status := make([]uint8, len(commands))
	if err := d.SPI.Tx(commands, status); err != nil {
		return 0, fmt.Errorf("sx126x: write buffer failed: %w", err)
	}
	return status[0], nil
}

func (d *Device) ReadBuffer(offset uint8, data []uint8) (uint8, error) {
	commands := append([]uint8{uint8(CmdReadBuffer), offset, 0x00}, data...)
	status := make([]uint8, len(commands))
	if err := d.SPI.Tx(commands, status); err != nil {
		return 0, fmt.Errorf("sx126x: read buffer failed: %w", err)
	}
	copy(data, status[3:])
	return status[0], nil
}

// OptionsPa is a functional option over a PA configuration command,
// grounded on libs/sx126x/hal.go's PA config builder pattern.
type OptionsPa func(*configPa)

type configPa struct {
	paDutyCycle uint8
	hpMax       uint8
	deviceSel   PaConfigDeviceSel
	paLut       uint8
}

func (d *Device) PaConfig(paDutyCycle, hpMax uint8, deviceSel PaConfigDeviceSel) OptionsPa {
	return func(c *configPa) {
		c.paDutyCycle = paDutyCycle
		c.hpMax = hpMax
		c.deviceSel = deviceSel
		c.paLut = 0x01
	}
}

// loraBandwidth maps a bandwidth in Hz to the datasheet-coded byte value,
// grounded on libs/sx126x/hal.go's loraBandwidth lookup.
func loraBandwidth(bandwidthHz uint32) (uint8, bool) {
	switch bandwidthHz {
	case 7800:
		return uint8(LoRaBW_7_8), true
	case 10400:
		return uint8(LoRaBW_10_4), true
	case 15600:
		return uint8(LoRaBW_15_6), true
	case 20800:
		return uint8(LoRaBW_20_8), true
	case 31250:
		return uint8(LoRaBW_31_25), true
	case 41700:
		return uint8(LoRaBW_41_7), true
	case 62500:
		return uint8(LoRaBW_62_5), true
	case 125000:
		return uint8(LoRaBW_125), true
	case 250000:
		return uint8(LoRaBW_250), true
	case 500000:
		return uint8(LoRaBW_500), true
	default:
		return 0, false
	}
}

func loraCodingRate(codingRate uint8) (uint8, bool) {
	switch codingRate {
	case 5:
		return uint8(LoRaCR_4_5), true
	case 6:
		return uint8(LoRaCR_4_6), true
	case 7:
		return uint8(LoRaCR_4_7), true
	case 8:
		return uint8(LoRaCR_4_8), true
	default:
		return 0, false
	}
}

// WaitForIRQ blocks until the DIO line edges or timeout elapses, reporting
// whether an edge was observed. Nothing in this module calls it or connects
// it to a lora.Modem; fakes used in tests bypass it entirely.
func (d *Device) WaitForIRQ(timeout time.Duration) bool {
	return d.gpio.dio.WaitForEdge(timeout)
}
