package sx127x

import (
	"fmt"
	"log/slog"

	"github.com/Regeneric/go_radio_storage_cores/lora"
)

// Driver adapts a Device to lora.ChipDriver. Grounded on
// tve-devices/sx1276.Radio's SetFrequency/SetConfig/SetPower/send/
// intrReceive, restructured from its goroutine-and-channel worker into the
// poll-driven shape lora.Modem expects (GetIrqFlags/IsIdle are called from
// the modem core's own loop instead of from an interrupt goroutine).
type Driver struct {
	dev *Device
	cfg lora.ChipConfig
}

func NewDriver(dev *Device) *Driver {
	return &Driver{dev: dev}
}

var _ lora.ChipDriver = (*Driver)(nil)

func (d *Driver) Standby() error {
	return d.dev.setMode(ModeStandby)
}

func (d *Driver) Sleep() error {
	return d.dev.setMode(ModeSleep)
}

// Configure writes RegModemConf1/2/3, the carrier frequency, preamble
// length, sync word and output power. Grounded on Radio.SetConfig and
// Radio.SetFrequency/SetPower, generalized from the fixed Configs lookup
// table those use to an arbitrary (sf, bw, cr) triple.
func (d *Driver) Configure(cfg lora.ChipConfig) error {
	log := slog.With("func", "Driver.Configure()", "lib", "sx127x")
	d.cfg = cfg

	if err := d.dev.setMode(ModeStandby); err != nil {
		return fmt.Errorf("sx127x: configure standby: %w", err)
	}

	bw, ok := bandwidthCode(cfg.BandwidthHz)
	if !ok {
		return fmt.Errorf("sx127x: unsupported bandwidth %dHz", cfg.BandwidthHz)
	}
	cr, ok := codingRateCode(cfg.CodingRate)
	if !ok {
		return fmt.Errorf("sx127x: unsupported coding rate 4/%d", cfg.CodingRate)
	}
	headerBit := uint8(0)
	if cfg.ImplicitHeader {
		headerBit = 0x01
	}
	if err := d.dev.writeReg(RegModemConf1, bw|cr|headerBit); err != nil {
		return fmt.Errorf("sx127x: set modem conf1: %w", err)
	}

	crcBit := uint8(0)
	if cfg.CrcEnabled {
		crcBit = 0x04
	}
	if err := d.dev.writeReg(RegModemConf2, (cfg.SpreadingFactor<<4)|crcBit); err != nil {
		return fmt.Errorf("sx127x: set modem conf2: %w", err)
	}

	ldroBit := uint8(0)
	if getLdrEnForConfigure(cfg.SpreadingFactor, cfg.BandwidthHz) {
		ldroBit = 0x08
	}
	if err := d.dev.writeReg(RegModemConf3, ldroBit|0x04); err != nil { // 0x04 = LNA AGC on
		return fmt.Errorf("sx127x: set modem conf3: %w", err)
	}

	if err := d.dev.writeReg(RegPreamble, uint8(cfg.PreambleLen>>8), uint8(cfg.PreambleLen)); err != nil {
		return fmt.Errorf("sx127x: set preamble length: %w", err)
	}
	if err := d.dev.writeReg(RegSync, uint8(cfg.SyncWord)); err != nil {
		return fmt.Errorf("sx127x: set sync word: %w", err)
	}

	iqBit, err := d.dev.readReg(RegInvertIQ)
	if err != nil {
		return fmt.Errorf("sx127x: read invert-iq: %w", err)
	}
	iqBit &^= 0x40
	if cfg.InvertIqRx || cfg.InvertIqTx {
		iqBit |= 0x40
	}
	if err := d.dev.writeReg(RegInvertIQ, iqBit); err != nil {
		return fmt.Errorf("sx127x: set invert-iq: %w", err)
	}

	if err := d.setFrequency(cfg.FreqHz); err != nil {
		return err
	}
	if err := d.setPower(cfg.OutputPowerDbm); err != nil {
		return err
	}

	log.Info("SX127x radio configured", "freq_hz", cfg.FreqHz, "sf", cfg.SpreadingFactor, "bw_hz", cfg.BandwidthHz)
	return nil
}

// setFrequency programs the carrier, grounded on Radio.SetFrequency's
// 32MHz-crystal, 2^19-step formula.
func (d *Driver) setFrequency(freqHz uint64) error {
	frf := (freqHz << 2) / (32_000_000 >> 11)
	return d.dev.writeReg(RegFrfMsb, uint8(frf>>10), uint8(frf>>2), uint8(frf<<6))
}

// setPower configures the PA, grounded on Radio.SetPower. This driver only
// supports the RFM9x boost-PA wiring (PaBoost=true); the low-power RFO path
// is out of scope since every example board this is grounded on wires only
// PA_BOOST.
func (d *Driver) setPower(dBm int8) error {
	if dBm < 2 {
		dBm = 2
	}
	if dBm > 20 {
		dBm = 20
	}
	if dBm > 17 {
		if err := d.dev.writeReg(RegPaDac, 0x07); err != nil {
			return err
		}
		return d.dev.writeReg(RegPaConfig, 0xf0+uint8(dBm)-5)
	}
	if err := d.dev.writeReg(RegPaConfig, 0xf0+uint8(dBm)-2); err != nil {
		return err
	}
	return d.dev.writeReg(RegPaDac, 0x04)
}

func (d *Driver) PrepareSend(payload []byte) error {
	if len(payload) == 0 || len(payload) > 255 {
		return fmt.Errorf("sx127x: payload length %d out of range", len(payload))
	}
	if err := d.dev.setMode(ModeStandby); err != nil {
		return err
	}
	if err := d.dev.writeReg(RegFifoPtr, 0x00); err != nil {
		return err
	}
	if err := d.dev.writeReg(RegFifo, payload...); err != nil {
		return err
	}
	return d.dev.writeReg(RegPayLength, uint8(len(payload)))
}

func (d *Driver) StartSend() (bool, error) {
	if err := d.dev.writeReg(RegIrqFlags, 0xff); err != nil {
		return false, err
	}
	if err := d.dev.setMode(ModeTx); err != nil {
		return false, err
	}
	return true, nil
}

func (d *Driver) StartRecv(continuous bool, timeoutMs int64, rxLength int) (bool, error) {
	if err := d.dev.writeReg(RegIrqFlags, 0xff); err != nil {
		return false, err
	}
	mode := uint8(ModeRxCont)
	if !continuous {
		mode = ModeRxSingle
		symbTimeout := msToSymbTimeout(timeoutMs, d.cfg.SpreadingFactor, d.cfg.BandwidthHz)
		if err := d.dev.writeReg(RegSymbTimeout, symbTimeout); err != nil {
			return false, err
		}
	}
	if err := d.dev.setMode(mode); err != nil {
		return false, err
	}
	return true, nil
}

func (d *Driver) GetIrqFlags() (lora.IrqFlags, error) {
	raw, err := d.dev.readReg(RegIrqFlags)
	if err != nil {
		return 0, fmt.Errorf("sx127x: read irq flags: %w", err)
	}
	return toLoraFlags(raw), nil
}

func (d *Driver) ClearIrq(flags lora.IrqFlags) error {
	return d.dev.writeReg(RegIrqFlags, toRegFlags(flags))
}

func (d *Driver) RxFlagsSuccess(flags lora.IrqFlags) bool {
	return flags.Has(lora.IrqRxComplete) && !flags.Has(lora.IrqCrcError) && !flags.Has(lora.IrqHeaderError)
}

func (d *Driver) ReadPacket(rxLength int) (*lora.RxPacket, error) {
	length, err := d.dev.readReg(RegRxBytes)
	if err != nil {
		return nil, fmt.Errorf("sx127x: read rx length: %w", err)
	}
	ptr, err := d.dev.readReg(RegFifoRxCurr)
	if err != nil {
		return nil, fmt.Errorf("sx127x: read rx fifo pointer: %w", err)
	}
	if err := d.dev.writeReg(RegFifoPtr, ptr); err != nil {
		return nil, err
	}
	payload, err := d.dev.readFifo(int(length))
	if err != nil {
		return nil, err
	}

	snrRaw, err := d.dev.readReg(RegPktSnr)
	if err != nil {
		return nil, err
	}
	rssiRaw, err := d.dev.readReg(RegPktRssi)
	if err != nil {
		return nil, err
	}
	snr := float32(int8(snrRaw)) / 4
	rssi := -164 + int(rssiRaw) + int(rssiRaw)>>4
	if snr < 0 {
		rssi += int(snr)
	}

	return &lora.RxPacket{Payload: payload, Snr: snr, Rssi: int8(rssi), ValidCrc: true}, nil
}

// IsIdle reports whether the modem is clear to start TX/RX, grounded on
// Radio.receiving's MODEM_CLEAR status-register check.
func (d *Driver) IsIdle() (bool, error) {
	st, err := d.dev.readReg(RegModemStat)
	if err != nil {
		return false, err
	}
	return st&modemStatClear != 0, nil
}

// SymbolOffsets is always the zero pair for SX127x: its datasheet carries
// no SF5/SF6 correction (and indeed the chip does not support those
// spreading factors in explicit-header mode).
func (d *Driver) SymbolOffsets(sf uint8) lora.SymbolOffsets {
	return lora.SymbolOffsets{}
}

func getLdrEnForConfigure(sf uint8, bwHz uint32) bool {
	tSymUs := (uint64(1) << sf) * 1_000_000 / uint64(bwHz)
	return tSymUs >= 16000
}

func msToSymbTimeout(ms int64, sf uint8, bwHz uint32) uint8 {
	if ms <= 0 || bwHz == 0 {
		return 0xFF
	}
	tSymUs := (uint64(1) << sf) * 1_000_000 / uint64(bwHz)
	symbols := uint64(ms)*1000/tSymUs + 1
	if symbols > 0xFF {
		symbols = 0xFF
	}
	return uint8(symbols)
}

func toLoraFlags(raw uint8) lora.IrqFlags {
	var f lora.IrqFlags
	if raw&IrqTxDone != 0 {
		f |= lora.IrqTxComplete
	}
	if raw&IrqRxDone != 0 {
		f |= lora.IrqRxComplete
	}
	if raw&IrqCrcErr != 0 {
		f |= lora.IrqCrcError
	}
	if raw&IrqRxTimeout != 0 {
		f |= lora.IrqTimeout
	}
	return f
}

func toRegFlags(f lora.IrqFlags) uint8 {
	var raw uint8
	if f.Has(lora.IrqTxComplete) {
		raw |= IrqTxDone
	}
	if f.Has(lora.IrqRxComplete) {
		raw |= IrqRxDone
	}
	if f.Has(lora.IrqCrcError) {
		raw |= IrqCrcErr
	}
	if f.Has(lora.IrqTimeout) {
		raw |= IrqRxTimeout
	}
	return raw
}
