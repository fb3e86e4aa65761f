package sx127x

// Register and mode constants transcribed from the SX1276/77/78/79 register
// map, grounded on tve-devices/sx1276/registers.go — the corpus's own
// SX127x driver.

const (
	RegFifo        = 0x00
	RegOpMode      = 0x01
	RegFrfMsb      = 0x06
	RegPaConfig    = 0x09
	RegOcp         = 0x0B
	RegLna         = 0x0C
	RegFifoPtr     = 0x0D
	RegFifoTxBase  = 0x0E
	RegFifoRxBase  = 0x0F
	RegFifoRxCurr  = 0x10
	RegIrqMask     = 0x11
	RegIrqFlags    = 0x12
	RegRxBytes     = 0x13
	RegModemStat   = 0x18
	RegPktSnr      = 0x19
	RegPktRssi     = 0x1A
	RegCurrRssi    = 0x1B
	RegHopChan     = 0x1C
	RegModemConf1  = 0x1D
	RegModemConf2  = 0x1E
	RegSymbTimeout = 0x1F
	RegPreamble    = 0x21
	RegPayLength   = 0x22
	RegPayMax      = 0x23
	RegFifoRxLast  = 0x25
	RegModemConf3  = 0x26
	RegPpmCorr     = 0x27
	RegFei         = 0x28
	RegDetectOpt   = 0x31
	RegInvertIQ    = 0x33
	RegDetectThr   = 0x37
	RegSync        = 0x39
	RegDioMapping1 = 0x40
	RegDioMapping2 = 0x41
	RegVersion     = 0x42
	RegTcxo        = 0x4B
	RegPaDac       = 0x4D
)

const (
	ModeSleep = iota
	ModeStandby
	ModeFsTx
	ModeTx
	ModeFsRx
	ModeRxCont
	ModeRxSingle
	ModeCad
)

const (
	IrqRxTimeout = 1 << 7
	IrqRxDone    = 1 << 6
	IrqCrcErr    = 1 << 5
	IrqValidHdr  = 1 << 4
	IrqTxDone    = 1 << 3
	IrqCadDone   = 1 << 2
	IrqFhssChg   = 1 << 1
	IrqCadDetect = 1 << 0
)

const modemStatClear = 1 << 4

// bandwidthCode maps a bandwidth in Hz to RegModemConf1's upper nibble,
// transcribed from the SX127x datasheet's bandwidth table.
func bandwidthCode(bwHz uint32) (uint8, bool) {
	switch bwHz {
	case 7800:
		return 0x00, true
	case 10400:
		return 0x10, true
	case 15600:
		return 0x20, true
	case 20800:
		return 0x30, true
	case 31250:
		return 0x40, true
	case 41700:
		return 0x50, true
	case 62500:
		return 0x60, true
	case 125000:
		return 0x70, true
	case 250000:
		return 0x80, true
	case 500000:
		return 0x90, true
	default:
		return 0, false
	}
}

// codingRateCode maps a 4/x coding rate denominator to RegModemConf1's
// coding-rate field.
func codingRateCode(cr uint8) (uint8, bool) {
	if cr < 5 || cr > 8 {
		return 0, false
	}
	return (cr - 4) << 1, true
}
