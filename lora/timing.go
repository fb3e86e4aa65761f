package lora

// Time-on-air calculator, grounded on BaseModem._get_t_sym_us/_get_ldr_en/
// get_n_symbols_x4/get_time_on_air_us in the original lora.modem module.
// All of this is integer arithmetic deliberately: the driver core that
// consumes it runs on hardware with no FPU, and the ×4-scaled symbol count
// keeps the rounding rules exact without floating point.

// getTSymUs returns the symbol period in microseconds for the given
// spreading factor and bandwidth in Hz.
func getTSymUs(sf uint8, bwHz uint32) uint32 {
	return uint32((uint64(1) << sf) * 1_000_000 / uint64(bwHz))
}

// getLdrEn reports whether low data rate optimization should be forced on
// for the given symbol period, per the 16ms LoRaWAN-derived threshold.
func getLdrEn(tSymUs uint32) bool {
	return tSymUs >= 16000
}

// SymbolOffsets is the (s_o, b_o) pair a ChipDriver contributes to the
// time-on-air formula: s_o biases the preamble symbol count, b_o biases the
// payload bit count. SX126x at SF5/SF6 needs a nonzero offset; every other
// known chip/SF combination is (0, 0).
type SymbolOffsets struct {
	so int
	bo int
}

// NewSymbolOffsets constructs a SymbolOffsets pair for chip drivers outside
// this package (e.g. sx126x's SF5/SF6 correction).
func NewSymbolOffsets(so, bo int) SymbolOffsets {
	return SymbolOffsets{so: so, bo: bo}
}

// getNSymbolsX4 returns 4x the number of symbols needed to transmit
// payloadLen bytes under the given configuration, matching
// BaseModem.get_n_symbols_x4 exactly (including its integer-division
// rounding).
func getNSymbolsX4(payloadLen int, sf uint8, crCodingRate uint8, crcEnabled, implicitHeader, ldro bool, off SymbolOffsets, preambleLen uint16) int {
	headerBits := 20
	if implicitHeader {
		headerBits = 0
	}
	crcBits := 0
	if crcEnabled {
		crcBits = 16
	}

	bits := 8*payloadLen + crcBits - 4*int(sf) + 8 + off.bo + headerBits
	if bits < 0 {
		bits = 0
	}

	ldrShift := 0
	if ldro {
		ldrShift = 2
	}
	bps := (int(sf) - ldrShift) * 4

	nPayloadSymbols := (bits + bps - 1) / bps
	return 17 + 4*(int(preambleLen)+off.so+8+nPayloadSymbols*int(crCodingRate))
}

// GetTimeOnAirUs returns the time-on-air in microseconds for a payload of
// payloadLen bytes under cfg, as resolved against chip symbol offsets off.
func getTimeOnAirUs(payloadLen int, sf uint8, bwHz uint32, codingRate uint8, crcEnabled, implicitHeader, ldro bool, off SymbolOffsets, preambleLen uint16) uint32 {
	tSym := getTSymUs(sf, bwHz)
	nx4 := getNSymbolsX4(payloadLen, sf, codingRate, crcEnabled, implicitHeader, ldro, off, preambleLen)
	return uint32(uint64(tSym) * uint64(nx4) / 4)
}
