package sx126x

import (
	"fmt"
	"log/slog"

	"github.com/Regeneric/go_radio_storage_cores/lora"
)

// Driver adapts a Device to lora.ChipDriver. Grounded on
// apps/wbs/internal/lora/lora.go's bring-up sequencing for the Configure
// method, and on libs/sx126x/commands.go+hal.go for the individual register
// operations it composes.
type Driver struct {
	dev *Device
	cfg lora.ChipConfig
}

// NewDriver wraps dev, giving it the lora.ChipDriver shape the modem core
// expects.
func NewDriver(dev *Device) *Driver {
	return &Driver{dev: dev}
}

var _ lora.ChipDriver = (*Driver)(nil)

func (d *Driver) Standby() error {
	mode := StandbyRc
	if d.dev.Config.StandbyMode == "xosc" {
		mode = StandbyXosc
	}
	return d.dev.SetStandby(mode)
}

func (d *Driver) Sleep() error {
	mode := SleepColdStart
	if d.dev.Config.SleepMode == "warm_start" {
		mode = SleepWarmStart
	}
	return d.dev.SetSleep(mode)
}

// Configure applies cfg to the chip, following apps/wbs/internal/lora.go's
// bring-up order: standby, regulator, TCXO/DIO2, calibration, packet type,
// RF frequency, PA/TX params, buffer base addresses, modulation and packet
// params, sync word, DIO IRQ mask.
func (d *Driver) Configure(cfg lora.ChipConfig) error {
	log := slog.With("func", "Driver.Configure()", "lib", "sx126x")
	d.cfg = cfg

	if err := d.dev.SetStandby(StandbyRc); err != nil {
		return fmt.Errorf("sx126x: configure standby: %w", err)
	}

	regulator := RegulatorLdo
	if d.dev.Config.DCDC {
		regulator = RegulatorDcDc
	}
	if err := d.dev.SetRegulatorMode(regulator); err != nil {
		return fmt.Errorf("sx126x: configure regulator: %w", err)
	}

	if cfg.TcxoMillivolts > 0 {
		voltage, ok := tcxoVoltageFor(cfg.TcxoMillivolts)
		if !ok {
			return fmt.Errorf("sx126x: unsupported tcxo voltage %dmV", cfg.TcxoMillivolts)
		}
		if err := d.dev.SetDio3AsTcxoCtrl(voltage, 320); err != nil {
			return fmt.Errorf("sx126x: configure tcxo: %w", err)
		}
	}
	if err := d.dev.SetDio2AsRfSwitchCtrl(cfg.Dio2RfSwitch); err != nil {
		return fmt.Errorf("sx126x: configure dio2 rf switch: %w", err)
	}

	if err := d.dev.Calibrate(CalibAll); err != nil {
		return fmt.Errorf("sx126x: calibrate: %w", err)
	}
	if cfg.AutoImageCal {
		freq1, freq2 := calibrationImageFor(cfg.FreqHz)
		if err := d.dev.CalibrateImage(freq1, freq2); err != nil {
			return fmt.Errorf("sx126x: calibrate image: %w", err)
		}
	}

	if err := d.dev.SetPacketType(PacketTypeLoRa); err != nil {
		return fmt.Errorf("sx126x: set packet type: %w", err)
	}
	if err := d.dev.SetRfFrequency(cfg.FreqHz); err != nil {
		return fmt.Errorf("sx126x: set rf frequency: %w", err)
	}

	deviceSel := TxPowerSX1262
	if d.dev.Config.Type == "1261" {
		deviceSel = TxPowerSX1261
	}
	if err := d.dev.SetPaConfig(d.dev.PaConfig(0x04, 0x07, deviceSel)); err != nil {
		return fmt.Errorf("sx126x: set pa config: %w", err)
	}
	if err := d.dev.SetTxParams(cfg.OutputPowerDbm, rampTimeFor(cfg.PaRampUs)); err != nil {
		return fmt.Errorf("sx126x: set tx params: %w", err)
	}

	if err := d.dev.SetBufferBaseAddress(d.dev.Config.TxBufferAddress, d.dev.Config.RxBufferAddress); err != nil {
		return fmt.Errorf("sx126x: set buffer base address: %w", err)
	}

	ldro := LDROOff
	if getLdrEnForConfigure(cfg.SpreadingFactor, cfg.BandwidthHz) {
		ldro = LDROOn
	}
	if err := d.dev.SetModulationParams(cfg.SpreadingFactor, cfg.BandwidthHz, cfg.CodingRate, ldro); err != nil {
		return fmt.Errorf("sx126x: set modulation params: %w", err)
	}

	header := HeaderExplicit
	if cfg.ImplicitHeader {
		header = HeaderImplicit
	}
	crc := CrcOff
	if cfg.CrcEnabled {
		crc = CrcOn
	}
	iq := IqStandard
	if cfg.InvertIqRx || cfg.InvertIqTx {
		iq = IqInverted
	}
	if err := d.dev.SetPacketParams(cfg.PreambleLen, header, 0xFF, crc, iq); err != nil {
		return fmt.Errorf("sx126x: set packet params: %w", err)
	}

	syncMsb := uint8(cfg.SyncWord >> 8)
	syncLsb := uint8(cfg.SyncWord)
	if _, err := d.dev.WriteRegister(uint16(RegLoraSyncWordMsb), []uint8{syncMsb, syncLsb}); err != nil {
		return fmt.Errorf("sx126x: set sync word: %w", err)
	}

	rxGainReg := RxGainRegPowerSaving
	if cfg.RxBoost {
		rxGainReg = RxGainRegBoosted
	}
	if _, err := d.dev.WriteRegister(uint16(RegRxGain), []uint8{rxGainReg}); err != nil {
		return fmt.Errorf("sx126x: set rx gain: %w", err)
	}

	if err := d.dev.SetDioIrqParams(IrqAll, IrqAll, IrqNone, IrqNone); err != nil {
		return fmt.Errorf("sx126x: set dio irq params: %w", err)
	}

	log.Info("SX126x radio configured", "freq_hz", cfg.FreqHz, "sf", cfg.SpreadingFactor, "bw_hz", cfg.BandwidthHz)
	return nil
}

func (d *Driver) PrepareSend(payload []byte) error {
	if len(payload) == 0 || len(payload) > 255 {
		return fmt.Errorf("sx126x: payload length %d out of range", len(payload))
	}
	if _, err := d.dev.WriteBuffer(d.dev.Config.TxBufferAddress, payload); err != nil {
		return fmt.Errorf("sx126x: write tx buffer: %w", err)
	}

	header := HeaderExplicit
	if d.cfg.ImplicitHeader {
		header = HeaderImplicit
	}
	crc := CrcOff
	if d.cfg.CrcEnabled {
		crc = CrcOn
	}
	iq := IqStandard
	if d.cfg.InvertIqTx {
		iq = IqInverted
	}
	if err := d.dev.SetPacketParams(d.cfg.PreambleLen, header, uint8(len(payload)), crc, iq); err != nil {
		return fmt.Errorf("sx126x: set tx packet params: %w", err)
	}
	return nil
}

func (d *Driver) StartSend() (bool, error) {
	if err := d.dev.ClearIrqStatus(IrqAll); err != nil {
		return false, fmt.Errorf("sx126x: clear irq before send: %w", err)
	}
	if err := d.dev.SetTx(TxSingle); err != nil {
		return false, fmt.Errorf("sx126x: set tx: %w", err)
	}
	return true, nil
}

func (d *Driver) StartRecv(continuous bool, timeoutMs int64, rxLength int) (bool, error) {
	iq := IqStandard
	if d.cfg.InvertIqRx {
		iq = IqInverted
	}
	header := HeaderExplicit
	if d.cfg.ImplicitHeader {
		header = HeaderImplicit
	}
	crc := CrcOff
	if d.cfg.CrcEnabled {
		crc = CrcOn
	}
	payloadLen := uint8(0xFF)
	if d.cfg.ImplicitHeader && rxLength > 0 && rxLength <= 255 {
		payloadLen = uint8(rxLength)
	}
	if err := d.dev.SetPacketParams(d.cfg.PreambleLen, header, payloadLen, crc, iq); err != nil {
		return false, fmt.Errorf("sx126x: set rx packet params: %w", err)
	}
	if err := d.dev.ClearIrqStatus(IrqAll); err != nil {
		return false, fmt.Errorf("sx126x: clear irq before recv: %w", err)
	}

	timeout := TxRxTimeout(RxContinuous)
	if !continuous {
		timeout = TxRxTimeout(msToRtcSteps(timeoutMs))
	}
	if err := d.dev.SetRx(timeout); err != nil {
		return false, fmt.Errorf("sx126x: set rx: %w", err)
	}
	return true, nil
}

func (d *Driver) GetIrqFlags() (lora.IrqFlags, error) {
	raw, err := d.dev.GetIrqStatus()
	if err != nil {
		return 0, fmt.Errorf("sx126x: get irq status: %w", err)
	}
	return toLoraFlags(raw), nil
}

func (d *Driver) ClearIrq(flags lora.IrqFlags) error {
	return d.dev.ClearIrqStatus(toIrqMask(flags))
}

func (d *Driver) RxFlagsSuccess(flags lora.IrqFlags) bool {
	return flags.Has(lora.IrqRxComplete) && !flags.Has(lora.IrqCrcError) && !flags.Has(lora.IrqHeaderError)
}

func (d *Driver) ReadPacket(rxLength int) (*lora.RxPacket, error) {
	buf, err := d.dev.GetRxBufferStatus()
	if err != nil {
		return nil, fmt.Errorf("sx126x: get rx buffer status: %w", err)
	}
	payload := make([]byte, buf.RXPayloadLength)
	if _, err := d.dev.ReadBuffer(buf.RXStartPointer, payload); err != nil {
		return nil, fmt.Errorf("sx126x: read rx buffer: %w", err)
	}
	status, err := d.dev.GetPacketStatus()
	if err != nil {
		return nil, fmt.Errorf("sx126x: get packet status: %w", err)
	}
	return &lora.RxPacket{
		Payload:  payload,
		Snr:      status.SNRRatio,
		Rssi:     status.SignalStrength,
		ValidCrc: true,
	}, nil
}

func (d *Driver) IsIdle() (bool, error) {
	status, err := d.dev.GetStatus()
	if err != nil {
		return false, fmt.Errorf("sx126x: get status: %w", err)
	}
	switch status.ChipMode {
	case StatusModeStdbyRc, StatusModeStdbyXosc:
		return true, nil
	default:
		return false, nil
	}
}

// SymbolOffsets implements the SX126x datasheet's documented SF5/SF6 time-
// on-air correction: every other spreading factor uses (0, 0).
func (d *Driver) SymbolOffsets(sf uint8) lora.SymbolOffsets {
	if sf <= 6 {
		return lora.NewSymbolOffsets(2, -8)
	}
	return lora.SymbolOffsets{}
}

func getLdrEnForConfigure(sf uint8, bwHz uint32) bool {
	tSymUs := (uint64(1) << sf) * 1_000_000 / uint64(bwHz)
	return tSymUs >= 16000
}

func msToRtcSteps(ms int64) uint32 {
	if ms < 0 {
		ms = 0
	}
	return uint32(ms) * 64
}

func tcxoVoltageFor(millivolts uint16) (TcxoVoltage, bool) {
	switch millivolts {
	case 1600:
		return Dio3Output1_6, true
	case 1700:
		return Dio3Output1_7, true
	case 1800:
		return Dio3Output1_8, true
	case 2200:
		return Dio3Output2_2, true
	case 2400:
		return Dio3Output2_4, true
	case 2700:
		return Dio3Output2_7, true
	case 3000:
		return Dio3Output3_0, true
	case 3300:
		return Dio3Output3_3, true
	default:
		return 0, false
	}
}

// calibrationImageFor returns the datasheet-recommended image calibration
// frequency pair bracketing freqHz.
func calibrationImageFor(freqHz uint64) (CalibrationImageFreq, CalibrationImageFreq) {
	mhz := freqHz / 1_000_000
	switch {
	case mhz >= 902:
		return CalImg902, CalImg928
	case mhz >= 863:
		return CalImg863, CalImg870
	case mhz >= 779:
		return CalImg779, CalImg787
	case mhz >= 470:
		return CalImg470, CalImg510
	case mhz >= 430:
		return CalImg430, CalImg440
	default:
		return CalImg863, CalImg870
	}
}

func toLoraFlags(raw IrqMask) lora.IrqFlags {
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
	if raw&IrqHeaderErr != 0 {
		f |= lora.IrqHeaderError
	}
	if raw&IrqTimeout != 0 {
		f |= lora.IrqTimeout
	}
	return f
}

func toIrqMask(f lora.IrqFlags) IrqMask {
	var m IrqMask
	if f.Has(lora.IrqTxComplete) {
		m |= IrqTxDone
	}
	if f.Has(lora.IrqRxComplete) {
		m |= IrqRxDone
	}
	if f.Has(lora.IrqCrcError) {
		m |= IrqCrcErr
	}
	if f.Has(lora.IrqHeaderError) {
		m |= IrqHeaderErr
	}
	if f.Has(lora.IrqTimeout) {
		m |= IrqTimeout
	}
	return m
}
