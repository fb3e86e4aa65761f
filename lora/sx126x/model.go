package sx126x

// Register/OpCode/enum tables transcribed from the SX126x datasheet command
// set, trimmed to the LoRa-only subset this driver drives (no FSK/GFSK
// modulation, no CAD) — grounded on libs/sx126x/model.go in the pack, the
// corpus's own SX126x register driver.

//go:generate stringer -type=Register
type Register uint16

const (
	RegIqPolaritySetup  Register = 0x0736
	RegLoraSyncWordMsb  Register = 0x0740
	RegTxModulation     Register = 0x0889
	RegRxGain           Register = 0x08AC
	RegTxClampConfig    Register = 0x08D8
	RegOcpConfiguration Register = 0x08E7
	RegRtcControl       Register = 0x0902
	RegXtaTrim          Register = 0x0911
	RegXtbTrim          Register = 0x0912
	RegEventMask        Register = 0x0944
)

//go:generate stringer -type=OpCode
type OpCode uint8

const (
	CmdSetSleep              OpCode = 0x84
	CmdSetStandby            OpCode = 0x80
	CmdSetTx                 OpCode = 0x83
	CmdSetRx                 OpCode = 0x82
	CmdSetRegulatorMode      OpCode = 0x96
	CmdCalibrate             OpCode = 0x89
	CmdCalibrateImage        OpCode = 0x98
	CmdSetPaConfig           OpCode = 0x95
	CmdWriteRegister         OpCode = 0x0D
	CmdReadRegister          OpCode = 0x1D
	CmdWriteBuffer           OpCode = 0x0E
	CmdReadBuffer            OpCode = 0x1E
	CmdGetBufferStatus       OpCode = 0x13
	CmdSetDioIrqParams       OpCode = 0x08
	CmdGetIrqStatus          OpCode = 0x12
	CmdClearIrqStatus        OpCode = 0x02
	CmdSetDio2AsRfSwitchCtrl OpCode = 0x9D
	CmdSetDio3AsTcxoCtrl     OpCode = 0x97
	CmdSetRfFrequency        OpCode = 0x86
	CmdSetPacketType         OpCode = 0x8A
	CmdSetTxParams           OpCode = 0x8E
	CmdSetModulationParams   OpCode = 0x8B
	CmdSetPacketParams       OpCode = 0x8C
	CmdGetStatus             OpCode = 0xC0
	CmdGetDeviceErrors       OpCode = 0x17
	CmdClearDeviceErrors     OpCode = 0x07
	CmdSetBufferBaseAddress  OpCode = 0x8F
	CmdSetSymbNumTimeout     OpCode = 0xA0
	CmdGetPacketStatus       OpCode = 0x14
	CmdGetPacketRssi         OpCode = 0x15
)

//go:generate stringer -type=SleepConfig
type SleepConfig uint8

const (
	SleepColdStart SleepConfig = 0x00
	SleepWarmStart SleepConfig = 0x04
)

//go:generate stringer -type=StandbyMode
type StandbyMode uint8

const (
	StandbyRc   StandbyMode = 0x00
	StandbyXosc StandbyMode = 0x01
)

//go:generate stringer -type=RegulatorMode
type RegulatorMode uint8

const (
	RegulatorLdo  RegulatorMode = 0x00
	RegulatorDcDc RegulatorMode = 0x01
)

//go:generate stringer -type=TxRxTimeout
type TxRxTimeout uint32

const (
	TxSingle     TxRxTimeout = 0x000000
	RxContinuous TxRxTimeout = 0xFFFFFF
)

//go:generate stringer -type=CalibrationImageFreq
type CalibrationImageFreq uint8

const (
	CalImg430 CalibrationImageFreq = 0x6B
	CalImg440 CalibrationImageFreq = 0x6F
	CalImg470 CalibrationImageFreq = 0x75
	CalImg510 CalibrationImageFreq = 0x81
	CalImg779 CalibrationImageFreq = 0xC1
	CalImg787 CalibrationImageFreq = 0xC5
	CalImg863 CalibrationImageFreq = 0xD7
	CalImg870 CalibrationImageFreq = 0xDB
	CalImg902 CalibrationImageFreq = 0xE1
	CalImg928 CalibrationImageFreq = 0xE9
)

//go:generate stringer -type=CalibrationParam
type CalibrationParam uint8

const (
	CalibAll CalibrationParam = 0x3F
)

const (
	RfFrequencyXtal = 32000000
	RfFrequencyNom  = 33554432
)

//go:generate stringer -type=PaConfigDeviceSel
type PaConfigDeviceSel uint8

const (
	TxPowerSX1261 PaConfigDeviceSel = 0x01
	TxPowerSX1262 PaConfigDeviceSel = 0x00
)

const (
	TxMaxPowerSX1261 int8 = 15
	TxMinPowerSX1261 int8 = -17
	TxMaxPowerSX1262 int8 = 22
	TxMinPowerSX1262 int8 = -9
)

//go:generate stringer -type=RampTime
type RampTime uint8

const (
	PaRamp10u   RampTime = 0x00
	PaRamp20u   RampTime = 0x01
	PaRamp40u   RampTime = 0x02
	PaRamp80u   RampTime = 0x03
	PaRamp200u  RampTime = 0x04
	PaRamp800u  RampTime = 0x05
	PaRamp1700u RampTime = 0x06
	PaRamp3400u RampTime = 0x07
)

// RampTimeUs maps every supported ramp setting to its microsecond value, in
// ascending order, for lora.ModemConfig's pa_ramp_us round-up-or-fail
// resolution.
var RampTimeUs = []uint32{10, 20, 40, 80, 200, 800, 1700, 3400}

func rampTimeFor(us uint32) RampTime {
	switch {
	case us <= 10:
		return PaRamp10u
	case us <= 20:
		return PaRamp20u
	case us <= 40:
		return PaRamp40u
	case us <= 80:
		return PaRamp80u
	case us <= 200:
		return PaRamp200u
	case us <= 800:
		return PaRamp800u
	case us <= 1700:
		return PaRamp1700u
	default:
		return PaRamp3400u
	}
}

//go:generate stringer -type=IrqMask
type IrqMask uint16

const (
	IrqTxDone           IrqMask = 0x0001
	IrqRxDone           IrqMask = 0x0002
	IrqPreambleDetected IrqMask = 0x0004
	IrqSyncWordValid    IrqMask = 0x0008
	IrqHeaderValid      IrqMask = 0x0010
	IrqHeaderErr        IrqMask = 0x0020
	IrqCrcErr           IrqMask = 0x0040
	IrqTimeout          IrqMask = 0x0200
	IrqAll              IrqMask = 0x03FF
	IrqNone             IrqMask = 0x0000
)

//go:generate stringer -type=TcxoVoltage
type TcxoVoltage uint8

const (
	Dio3Output1_6 TcxoVoltage = 0x00
	Dio3Output1_7 TcxoVoltage = 0x01
	Dio3Output1_8 TcxoVoltage = 0x02
	Dio3Output2_2 TcxoVoltage = 0x03
	Dio3Output2_4 TcxoVoltage = 0x04
	Dio3Output2_7 TcxoVoltage = 0x05
	Dio3Output3_0 TcxoVoltage = 0x06
	Dio3Output3_3 TcxoVoltage = 0x07
)

//go:generate stringer -type=PacketType
type PacketType uint8

const (
	PacketTypeLoRa PacketType = 0x01
)

//go:generate stringer -type=LoRaBandwidth
type LoRaBandwidth uint8

const (
	LoRaBW_7_8   LoRaBandwidth = 0x00
	LoRaBW_10_4  LoRaBandwidth = 0x08
	LoRaBW_15_6  LoRaBandwidth = 0x01
	LoRaBW_20_8  LoRaBandwidth = 0x09
	LoRaBW_31_25 LoRaBandwidth = 0x02
	LoRaBW_41_7  LoRaBandwidth = 0x0A
	LoRaBW_62_5  LoRaBandwidth = 0x03
	LoRaBW_125   LoRaBandwidth = 0x04
	LoRaBW_250   LoRaBandwidth = 0x05
	LoRaBW_500   LoRaBandwidth = 0x06
)

//go:generate stringer -type=LoRaCodingRate
type LoRaCodingRate uint8

const (
	LoRaCR_4_5 LoRaCodingRate = 0x01
	LoRaCR_4_6 LoRaCodingRate = 0x02
	LoRaCR_4_7 LoRaCodingRate = 0x03
	LoRaCR_4_8 LoRaCodingRate = 0x04
)

//go:generate stringer -type=LoRaLowDataRateOptimize
type LoRaLowDataRateOptimize uint8

const (
	LDROOff LoRaLowDataRateOptimize = 0x00
	LDROOn  LoRaLowDataRateOptimize = 0x01
)

//go:generate stringer -type=LoRaHeaderType
type LoRaHeaderType uint8

const (
	HeaderExplicit LoRaHeaderType = 0x00
	HeaderImplicit LoRaHeaderType = 0x01
)

//go:generate stringer -type=LoRaCrcMode
type LoRaCrcMode uint8

const (
	CrcOff LoRaCrcMode = 0x00
	CrcOn  LoRaCrcMode = 0x01
)

//go:generate stringer -type=LoRaIQMode
type LoRaIQMode uint8

const (
	IqStandard LoRaIQMode = 0x00
	IqInverted LoRaIQMode = 0x01
)

//go:generate stringer -type=StatusMode
type StatusMode uint8

const (
	StatusModeStdbyRc   StatusMode = 0x20
	StatusModeStdbyXosc StatusMode = 0x30
	StatusModeFs        StatusMode = 0x40
	StatusModeRx        StatusMode = 0x50
	StatusModeTx        StatusMode = 0x60
)

//go:generate stringer -type=CommandStatus
type CommandStatus uint8

const (
	StatusDataAvailable CommandStatus = 0x04
	StatusCmdTimeout    CommandStatus = 0x06
	StatusCmdError      CommandStatus = 0x08
	StatusCmdFailed     CommandStatus = 0x0A
	StatusCmdTxDone     CommandStatus = 0x0C
)

//go:generate stringer -type=DeviceError
type DeviceError uint16

const (
	ErrRC64KCalib DeviceError = 0x0001
	ErrRC13MCalib DeviceError = 0x0002
	ErrPllCalib   DeviceError = 0x0004
	ErrAdcCalib   DeviceError = 0x0008
	ErrImgCalib   DeviceError = 0x0010
	ErrXoscStart  DeviceError = 0x0020
	ErrPllLock    DeviceError = 0x0040
	ErrPaRamp     DeviceError = 0x0100
)

func (e DeviceError) Has(flag DeviceError) bool { return e&flag != 0 }

const (
	LoraSyncWordPublic  uint16 = 0x3444
	LoraSyncWordPrivate uint16 = 0x1424
)

//go:generate stringer -type=RxGain
type RxGain uint8

const (
	RxGainPowerSaving RxGain = 0x00
	RxGainBoosted     RxGain = 0x01

	RxGainRegPowerSaving uint8 = 0x94
	RxGainRegBoosted     uint8 = 0x96
)
