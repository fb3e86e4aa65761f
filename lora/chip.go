package lora

// IrqFlags is a chip-agnostic bitmask of raised interrupt conditions. Each
// ChipDriver translates its own register-level IRQ bits into this set.
type IrqFlags uint16

const (
	IrqRxComplete IrqFlags = 1 << iota
	IrqTxComplete
	IrqCrcError
	IrqHeaderError
	IrqTimeout
)

// Has reports whether flag is set in f.
func (f IrqFlags) Has(flag IrqFlags) bool {
	return f&flag != 0
}

// ChipDriver is the minimal operation set the modem state core needs from a
// radio chip, narrowed from the much broader register-level command surface
// a real chip driver exposes (see apps/wbs/internal/lora.Transceiver in the
// pack for the full SX126x command set this is distilled from).
type ChipDriver interface {
	// Standby puts the chip into its lowest always-ready power state.
	Standby() error
	// Sleep puts the chip into its lowest power state; state is lost
	// unless the chip supports a retention mode.
	Sleep() error
	// Configure applies the resolved radio parameters to the chip.
	Configure(cfg ChipConfig) error

	// PrepareSend loads payload into the chip's TX buffer without
	// starting transmission.
	PrepareSend(payload []byte) error
	// StartSend begins transmission of a previously prepared payload and
	// reports whether completion will be signalled via IRQ.
	StartSend() (willIrq bool, err error)

	// StartRecv arms the receiver. continuous and timeoutMs are mutually
	// exclusive; continuous wins if both are set.
	StartRecv(continuous bool, timeoutMs int64, rxLength int) (willIrq bool, err error)

	// GetIrqFlags returns the currently raised interrupt flags without
	// clearing them.
	GetIrqFlags() (IrqFlags, error)
	// ClearIrq clears exactly the given flags.
	ClearIrq(flags IrqFlags) error

	// RxFlagsSuccess reports whether the given (already-masked) RX flags
	// indicate a successfully received packet.
	RxFlagsSuccess(flags IrqFlags) bool
	// ReadPacket drains the chip's RX buffer into a packet, decorating it
	// with the chip-reported SNR/RSSI.
	ReadPacket(rxLength int) (*RxPacket, error)

	// IsIdle reports whether the chip is in a state where TX/RX can be
	// started (not busy processing a prior command).
	IsIdle() (bool, error)

	// SymbolOffsets returns the (s_o, b_o) time-on-air bias pair for the
	// given spreading factor.
	SymbolOffsets(sf uint8) SymbolOffsets
}

// ChipConfig is the resolved, chip-agnostic set of radio parameters a
// ChipDriver.Configure call applies. ModemConfig.Resolve produces this from
// user-facing string/numeric fields (e.g. bw "125"/"250"/"500" or a raw Hz
// value).
type ChipConfig struct {
	FreqHz         uint64
	SpreadingFactor uint8
	BandwidthHz    uint32
	CodingRate     uint8
	PreambleLen    uint16
	OutputPowerDbm int8
	PaRampUs       uint32
	ImplicitHeader bool
	CrcEnabled     bool
	InvertIqRx     bool
	InvertIqTx     bool
	SyncWord       uint16
	AutoImageCal   bool
	TcxoMillivolts uint16
	Dio2RfSwitch   bool
	RxBoost        bool
}
