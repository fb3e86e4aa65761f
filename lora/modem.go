package lora

import (
	"log/slog"
	"sync/atomic"
)

type rxKind uint8

const (
	rxOff rxKind = iota
	rxContinuous
	rxUntil
)

type rxState struct {
	kind     rxKind
	deadline int64
}

// Modem is the chip-agnostic LoRa driver core: it owns TX/RX arbitration,
// deadline bookkeeping and IRQ-driven completion detection on top of a
// ChipDriver. Every method here is grounded on the corresponding method of
// BaseModem in the original lora.modem module.
type Modem struct {
	chip    ChipDriver
	antenna AntennaSwitch
	clock   Clock
	cfg     ChipConfig

	rx           rxState
	rxLength     int
	tx           bool
	crcErrors    int
	rxCrcError   bool
	irqCallback  func()

	// lastIrqMs and lastIrqSet are the only state an interrupt handler
	// ever touches; atomics give the foreground loop a happens-before
	// guarantee on IRQ writes without a mutex, per the single-shared-field
	// concurrency model.
	lastIrqMs  int64
	lastIrqSet atomic.Bool

	log *slog.Logger
}

// NewModem constructs a Modem over chip, optionally wired to an antenna
// switch. clock may be nil, in which case a system clock is used.
func NewModem(chip ChipDriver, antenna AntennaSwitch, clock Clock) *Modem {
	if clock == nil {
		clock = newSystemClock()
	}
	return &Modem{
		chip:    chip,
		antenna: antenna,
		clock:   clock,
		log:     slog.With("package", "lora"),
	}
}

// Configure applies an already-resolved cfg (see ModemConfig.Resolve) to the
// chip and records it for time-on-air calculations, grounded on
// apps/wbs/internal/lora.Setup's bring-up sequencing.
func (m *Modem) Configure(cfg ChipConfig) error {
	log := m.log.With("func", "Modem.Configure()")
	if err := m.chip.Configure(cfg); err != nil {
		log.Error("chip configuration rejected", "err", err)
		return err
	}
	m.cfg = cfg
	log.Info("modem configured", "sf", cfg.SpreadingFactor, "bw_hz", cfg.BandwidthHz)
	return nil
}

// Standby idles both RX and TX and triggers the soft ISR, grounded on
// BaseModem.standby.
func (m *Modem) Standby() error {
	if err := m.chip.Standby(); err != nil {
		return err
	}
	m.rx = rxState{}
	m.tx = false
	m.lastIrqSet.Store(false)
	if err := antennaIdle(m.antenna); err != nil {
		return err
	}
	m.radioISR()
	return nil
}

// Sleep puts the chip to sleep; state is not assumed retained.
func (m *Modem) Sleep() error {
	return m.chip.Sleep()
}

// SetIrqCallback registers a callback invoked from radioISR (the software
// side of an interrupt: it runs on whichever goroutine observes the IRQ,
// never allocates, and must not block).
func (m *Modem) SetIrqCallback(cb func()) {
	m.irqCallback = cb
}

// radioISR records the IRQ timestamp and fires the registered callback. It
// is safe to call from any goroutine and performs no allocation.
func (m *Modem) radioISR() {
	m.lastIrqMs = m.clock.NowMs()
	m.lastIrqSet.Store(true)
	if m.irqCallback != nil {
		m.irqCallback()
	}
}

// IrqTriggered reports whether an IRQ has been observed since the last
// Standby/StartRecv/StartSend reset.
func (m *Modem) IrqTriggered() bool {
	return m.lastIrqSet.Load()
}

func (m *Modem) getLastIrqMs() int64 {
	if m.lastIrqSet.Load() {
		return m.lastIrqMs
	}
	return m.clock.NowMs()
}

// GetTimeOnAirUs returns the time-on-air in microseconds for a payload of
// the given length under the modem's current configuration.
func (m *Modem) GetTimeOnAirUs(payloadLen int) uint32 {
	off := m.chip.SymbolOffsets(m.cfg.SpreadingFactor)
	return getTimeOnAirUs(payloadLen, m.cfg.SpreadingFactor, m.cfg.BandwidthHz, m.cfg.CodingRate, m.cfg.CrcEnabled, m.cfg.ImplicitHeader, getLdrEn(getTSymUs(m.cfg.SpreadingFactor, m.cfg.BandwidthHz)), off, m.cfg.PreambleLen)
}

// StartRecv arms the receiver, grounded on BaseModem.start_recv. Antenna RX
// is only armed if the modem is not currently transmitting.
func (m *Modem) StartRecv(continuous bool, timeoutMs int64, rxLength int) error {
	if continuous && timeoutMs > 0 {
		return &InvalidArgumentError{Reason: "continuous and timeout_ms are mutually exclusive"}
	}

	m.lastIrqSet.Store(false)
	now := m.clock.NowMs()
	if continuous {
		m.rx = rxState{kind: rxContinuous}
	} else if timeoutMs > 0 {
		m.rx = rxState{kind: rxUntil, deadline: now + timeoutMs}
	} else {
		m.rx = rxState{kind: rxContinuous}
	}
	m.rxLength = rxLength

	willIrq, err := m.chip.StartRecv(continuous, timeoutMs, rxLength)
	if err != nil {
		return err
	}
	_ = willIrq
	if !m.tx {
		return antennaRx(m.antenna)
	}
	return nil
}

func (m *Modem) endRecv() error {
	m.rx = rxState{}
	return antennaIdle(m.antenna)
}

// PollRecv checks for a completed receive without blocking. It always
// returns one of: (nil, false, nil) meaning idle/off, (nil, true, nil)
// meaning still busy, or (packet, false, nil) meaning a packet (or a
// CRC-failed packet, surfaced with ValidCrc=false) is ready. Grounded on
// BaseModem.poll_recv.
func (m *Modem) PollRecv(out *RxPacket) (*RxPacket, bool, error) {
	if m.rx.kind == rxOff {
		return nil, false, nil
	}
	if m.tx {
		return nil, true, nil
	}

	flags, err := m.chip.GetIrqFlags()
	if err != nil {
		return nil, false, err
	}
	rxFlags := flags & IrqRxComplete
	var packet *RxPacket
	if rxFlags != 0 {
		if err := m.chip.ClearIrq(rxFlags); err != nil {
			return nil, false, err
		}
		success := m.chip.RxFlagsSuccess(flags)
		if !success {
			m.crcErrors++
		}
		if success || m.rxCrcError {
			p, err := m.chip.ReadPacket(m.rxLength)
			if err != nil {
				return nil, false, err
			}
			if out != nil && p != nil {
				*out = *p
				packet = out
			} else {
				packet = p
			}
		}
		if m.rx.kind != rxContinuous {
			if err := m.endRecv(); err != nil {
				return nil, false, err
			}
		}
	}

	busy, err := m.checkRecv()
	if err != nil {
		return nil, false, err
	}
	if packet != nil {
		return packet, false, nil
	}
	return nil, busy, nil
}

// checkRecv resumes an interrupted receive and enforces deadlines, grounded
// on BaseModem._check_recv. A deadline that has already passed by the time
// this runs ends the receive and fires the soft ISR to unblock any waiter;
// a still-live deadline is restored verbatim after re-arming, so repeated
// calls never let the effective deadline creep forward.
func (m *Modem) checkRecv() (bool, error) {
	if m.rx.kind == rxOff {
		return false, nil
	}
	idle, err := m.chip.IsIdle()
	if err != nil {
		return false, err
	}
	if !idle {
		return true, nil
	}

	if m.rx.kind == rxUntil {
		timeoutMs := m.rx.deadline - m.clock.NowMs()
		if timeoutMs <= 0 {
			if err := m.endRecv(); err != nil {
				return false, err
			}
			m.radioISR()
			return false, nil
		}
		saved := m.rx
		if err := m.StartRecv(false, timeoutMs, m.rxLength); err != nil {
			return false, err
		}
		m.rx = saved
		return false, nil
	}

	saved := m.rx
	if err := m.StartRecv(true, 0, m.rxLength); err != nil {
		return false, err
	}
	m.rx = saved
	return false, nil
}

// PrepareSend loads payload into the chip's TX buffer.
func (m *Modem) PrepareSend(payload []byte) error {
	return m.chip.PrepareSend(payload)
}

// StartSend begins transmission, arming the antenna switch for TX and
// marking RX as blocked until the send completes.
func (m *Modem) StartSend() (bool, error) {
	if err := antennaTx(m.antenna); err != nil {
		return false, err
	}
	m.tx = true
	m.lastIrqSet.Store(false)
	willIrq, err := m.chip.StartSend()
	if err != nil {
		m.tx = false
		return false, err
	}
	return willIrq, nil
}

// PollSend checks for a completed transmission without blocking. Grounded
// on BaseModem.poll_send: the completion timestamp is returned exactly
// once, exactly when the TX-complete IRQ is first observed; every call
// thereafter (tx is now false) reports idle.
func (m *Modem) PollSend() (ticksMs int64, busy bool, done bool, err error) {
	if !m.tx {
		return 0, false, false, nil
	}

	ts := m.getLastIrqMs()
	flags, ferr := m.chip.GetIrqFlags()
	if ferr != nil {
		return 0, false, false, ferr
	}
	if !flags.Has(IrqTxComplete) {
		return 0, true, false, nil
	}

	if err := m.chip.ClearIrq(IrqTxComplete); err != nil {
		return 0, false, false, err
	}
	m.tx = false
	if err := antennaIdle(m.antenna); err != nil {
		return 0, false, false, err
	}
	if _, err := m.checkRecv(); err != nil {
		return 0, false, false, err
	}
	return ts, false, true, nil
}

// SyncWait busy-waits for an IRQ up to 100 idle iterations when willIrq is
// set, else sleeps one millisecond; grounded on BaseModem._sync_wait's
// bounded tolerance for a lost interrupt.
func (m *Modem) SyncWait(willIrq bool) {
	if willIrq {
		for i := 0; i < 100; i++ {
			if m.IrqTriggered() {
				return
			}
		}
		return
	}
	sleepMs(1)
}

// Send transmits payload synchronously, optionally delaying until txAtMs
// (a clock-relative deadline in milliseconds), and blocks until the send
// completes. Grounded on BaseModem.send.
func (m *Modem) Send(payload []byte, txAtMs int64) (int64, error) {
	if err := m.PrepareSend(payload); err != nil {
		return 0, err
	}
	if txAtMs > 0 {
		for m.clock.NowMs() < txAtMs {
			sleepMs(1)
		}
	}
	willIrq, err := m.StartSend()
	if err != nil {
		return 0, err
	}
	sleepMs(int(m.GetTimeOnAirUs(len(payload)) / 1000))

	for {
		ts, busy, done, err := m.PollSend()
		if err != nil {
			return 0, err
		}
		if done {
			return ts, nil
		}
		if !busy {
			return 0, nil
		}
		m.SyncWait(willIrq)
	}
}

// Recv receives synchronously, blocking until a packet arrives or the
// timeout elapses. Grounded on BaseModem.recv.
func (m *Modem) Recv(timeoutMs int64, rxLength int, out *RxPacket) (*RxPacket, error) {
	if err := m.StartRecv(timeoutMs <= 0, timeoutMs, rxLength); err != nil {
		return nil, err
	}
	for {
		m.SyncWait(true)
		packet, busy, err := m.PollRecv(out)
		if err != nil {
			return nil, err
		}
		if packet != nil {
			return packet, nil
		}
		if !busy {
			return nil, nil
		}
	}
}
