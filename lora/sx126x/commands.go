package sx126x

import (
	"encoding/binary"
	"fmt"
	"log/slog"
)

// Command methods transcribed from the SX126x datasheet's command set,
// trimmed to the LoRa-only subset needed here. Grounded on
// libs/sx126x/commands.go's method shapes and slog/fmt.Errorf idiom; the
// nested Config.LoRa/Config.FSK struct shape that file references does not
// match any Config actually defined in the pack, so command parameters are
// taken as explicit arguments here instead of pulled from a modem-mode
// sub-struct.

func (d *Device) SetSleep(mode SleepConfig) error {
	return d.Write([]uint8{uint8(CmdSetSleep), uint8(mode)}, make([]uint8, 2))
}

func (d *Device) SetStandby(mode StandbyMode) error {
	return d.Write([]uint8{uint8(CmdSetStandby), uint8(mode)}, make([]uint8, 2))
}

func (d *Device) SetTx(timeout TxRxTimeout) error {
	buf := []uint8{uint8(CmdSetTx), uint8(timeout >> 16), uint8(timeout >> 8), uint8(timeout)}
	return d.Write(buf, make([]uint8, len(buf)))
}

func (d *Device) SetRx(timeout TxRxTimeout) error {
	buf := []uint8{uint8(CmdSetRx), uint8(timeout >> 16), uint8(timeout >> 8), uint8(timeout)}
	return d.Write(buf, make([]uint8, len(buf)))
}

func (d *Device) SetRegulatorMode(mode RegulatorMode) error {
	return d.Write([]uint8{uint8(CmdSetRegulatorMode), uint8(mode)}, make([]uint8, 2))
}

func (d *Device) Calibrate(param CalibrationParam) error {
	return d.Write([]uint8{uint8(CmdCalibrate), uint8(param)}, make([]uint8, 2))
}

func (d *Device) CalibrateImage(freq1, freq2 CalibrationImageFreq) error {
	return d.Write([]uint8{uint8(CmdCalibrateImage), uint8(freq1), uint8(freq2)}, make([]uint8, 3))
}

func (d *Device) SetPaConfig(opts ...OptionsPa) error {
	c := &configPa{}
	for _, opt := range opts {
		opt(c)
	}
	buf := []uint8{uint8(CmdSetPaConfig), c.paDutyCycle, c.hpMax, uint8(c.deviceSel), c.paLut}
	return d.Write(buf, make([]uint8, len(buf)))
}

func (d *Device) SetDioIrqParams(irqMask, dio1Mask, dio2Mask, dio3Mask IrqMask) error {
	buf := make([]uint8, 9)
	buf[0] = uint8(CmdSetDioIrqParams)
	binary.BigEndian.PutUint16(buf[1:3], uint16(irqMask))
	binary.BigEndian.PutUint16(buf[3:5], uint16(dio1Mask))
	binary.BigEndian.PutUint16(buf[5:7], uint16(dio2Mask))
	binary.BigEndian.PutUint16(buf[7:9], uint16(dio3Mask))
	return d.Write(buf, make([]uint8, len(buf)))
}

func (d *Device) GetIrqStatus() (IrqMask, error) {
	w := []uint8{uint8(CmdGetIrqStatus), 0x00, 0x00, 0x00}
	r := make([]uint8, len(w))
	if err := d.Write(w, r); err != nil {
		return 0, err
	}
	return IrqMask(binary.BigEndian.Uint16(r[2:4])), nil
}

func (d *Device) ClearIrqStatus(mask IrqMask) error {
	buf := []uint8{uint8(CmdClearIrqStatus), uint8(mask >> 8), uint8(mask)}
	return d.Write(buf, make([]uint8, len(buf)))
}

func (d *Device) SetDio2AsRfSwitchCtrl(enable bool) error {
	v := uint8(0)
	if enable {
		v = 1
	}
	return d.Write([]uint8{uint8(CmdSetDio2AsRfSwitchCtrl), v}, make([]uint8, 2))
}

func (d *Device) SetDio3AsTcxoCtrl(voltage TcxoVoltage, delay uint32) error {
	buf := []uint8{uint8(CmdSetDio3AsTcxoCtrl), uint8(voltage), uint8(delay >> 16), uint8(delay >> 8), uint8(delay)}
	return d.Write(buf, make([]uint8, len(buf)))
}

// SetRfFrequency programs the carrier frequency, converting from Hz using
// the datasheet's Fxtal/2^25 step.
func (d *Device) SetRfFrequency(freqHz uint64) error {
	raw := uint32(freqHz * RfFrequencyNom / RfFrequencyXtal)
	buf := []uint8{uint8(CmdSetRfFrequency), uint8(raw >> 24), uint8(raw >> 16), uint8(raw >> 8), uint8(raw)}
	return d.Write(buf, make([]uint8, len(buf)))
}

func (d *Device) SetPacketType(t PacketType) error {
	return d.Write([]uint8{uint8(CmdSetPacketType), uint8(t)}, make([]uint8, 2))
}

func (d *Device) SetTxParams(powerDbm int8, ramp RampTime) error {
	return d.Write([]uint8{uint8(CmdSetTxParams), uint8(powerDbm), uint8(ramp)}, make([]uint8, 3))
}

// SetModulationParams programs SF/BW/CR/LDRO for LoRa. bandwidthHz and
// codingRate are validated against the datasheet's supported set before
// being packed.
func (d *Device) SetModulationParams(sf uint8, bandwidthHz uint32, codingRate uint8, ldro LoRaLowDataRateOptimize) error {
	log := slog.With("func", "Device.SetModulationParams()", "lib", "sx126x")

	bw, ok := loraBandwidth(bandwidthHz)
	if !ok {
		return fmt.Errorf("sx126x: unsupported bandwidth %dHz", bandwidthHz)
	}
	cr, ok := loraCodingRate(codingRate)
	if !ok {
		return fmt.Errorf("sx126x: unsupported coding rate 4/%d", codingRate)
	}

	log.Debug("set modulation params", "sf", sf, "bw_hz", bandwidthHz, "cr", codingRate, "ldro", ldro)
	buf := []uint8{uint8(CmdSetModulationParams), sf, bw, cr, uint8(ldro), 0x00, 0x00, 0x00}
	return d.Write(buf, make([]uint8, len(buf)))
}

// SetPacketParams programs preamble length, header mode, payload length,
// CRC mode and IQ inversion for LoRa.
func (d *Device) SetPacketParams(preambleLen uint16, header LoRaHeaderType, payloadLen uint8, crc LoRaCrcMode, iq LoRaIQMode) error {
	buf := []uint8{
		uint8(CmdSetPacketParams),
		uint8(preambleLen >> 8), uint8(preambleLen),
		uint8(header),
		payloadLen,
		uint8(crc),
		uint8(iq),
		0x00, 0x00, 0x00,
	}
	return d.Write(buf, make([]uint8, len(buf)))
}

func (d *Device) SetBufferBaseAddress(txBase, rxBase uint8) error {
	return d.Write([]uint8{uint8(CmdSetBufferBaseAddress), txBase, rxBase}, make([]uint8, 3))
}

func (d *Device) SetLoRaSymbNumTimeout(symbNum uint8) error {
	return d.Write([]uint8{uint8(CmdSetSymbNumTimeout), symbNum}, make([]uint8, 2))
}

func (d *Device) GetStatus() (ModemStatus, error) {
	w := []uint8{uint8(CmdGetStatus), 0x00}
	r := make([]uint8, len(w))
	if err := d.Write(w, r); err != nil {
		return ModemStatus{}, err
	}
	raw := r[1]
	return ModemStatus{
		Command:  CommandStatus(raw & 0x0E),
		ChipMode: StatusMode(raw & 0x70),
	}, nil
}

func (d *Device) GetRxBufferStatus() (BufferStatus, error) {
	w := []uint8{uint8(CmdGetBufferStatus), 0x00, 0x00, 0x00}
	r := make([]uint8, len(w))
	if err := d.Write(w, r); err != nil {
		return BufferStatus{}, err
	}
	return BufferStatus{RXPayloadLength: r[2], RXStartPointer: r[3]}, nil
}

func (d *Device) GetPacketStatus() (PacketStatus, error) {
	w := []uint8{uint8(CmdGetPacketStatus), 0x00, 0x00, 0x00, 0x00}
	r := make([]uint8, len(w))
	if err := d.Write(w, r); err != nil {
		return PacketStatus{}, err
	}
	return PacketStatus{
		SignalStrength:         -int8(r[2]) / 2,
		SNRRatio:               float32(int8(r[3])) / 4,
		DenoisedSignalStrength: -int8(r[4]) / 2,
	}, nil
}

func (d *Device) GetDeviceErrors() (DeviceError, error) {
	w := []uint8{uint8(CmdGetDeviceErrors), 0x00, 0x00, 0x00}
	r := make([]uint8, len(w))
	if err := d.Write(w, r); err != nil {
		return 0, err
	}
	return DeviceError(binary.BigEndian.Uint16(r[2:4])), nil
}

func (d *Device) ClearDeviceErrors() error {
	return d.Write([]uint8{uint8(CmdClearDeviceErrors), 0x00, 0x00}, make([]uint8, 3))
}
