package msc

import (
	"context"
	"log/slog"
)

// State is the bulk-only transport state, grounded on MSCInterface's
// implicit cbw/data/csw cycle, made explicit here as a
// (state, event) -> (state, []Emit) transition.
type State int

const (
	StateCmd State = iota
	StateData
	StateStatus
	StateStatusSent
	StateNeedReset
)

func (s State) String() string {
	switch s {
	case StateCmd:
		return "CMD"
	case StateData:
		return "DATA"
	case StateStatus:
		return "STATUS"
	case StateStatusSent:
		return "STATUS_SENT"
	case StateNeedReset:
		return "NEED_RESET"
	default:
		return "UNKNOWN"
	}
}

// EmitKind tags what a transition asks the caller to do on the wire.
type EmitKind int

const (
	EmitNone EmitKind = iota
	EmitStallIn
	EmitStallOut
	EmitData
	EmitCSW
)

// Emit is one action the transport wants performed against the USB
// endpoints, returned from HandleCBW/ContinueData/Reset instead of the
// original's direct ustream writes, so the caller supplies the actual
// endpoint I/O.
type Emit struct {
	Kind EmitKind
	Data []byte
}

// Transport is the CBW/DATA/CSW bulk-only state machine, grounded on
// MSCInterface.handle_cbw/validate_cbw/transfer_data/send_csw.
// It owns no endpoints itself: HandleCBW and ContinueData return the Emits
// the caller must perform, keeping the state machine testable without a
// USB stack.
type Transport struct {
	dispatcher *Dispatcher
	lun        uint8
	maxBlocks  uint32

	state   State
	tag     uint32
	residue uint32
	cont    *ReadContinuation

	log *slog.Logger
}

// NewTransport builds a Transport bound to a single LUN, grounded on
// StorageDevice's single-LUN assumption.
func NewTransport(dispatcher *Dispatcher, lun uint8, maxBlocks uint32) *Transport {
	if maxBlocks == 0 {
		maxBlocks = 1
	}
	return &Transport{
		dispatcher: dispatcher,
		lun:        lun,
		maxBlocks:  maxBlocks,
		state:      StateCmd,
		log:        slog.With("package", "msc", "func", "Transport"),
	}
}

// State reports the transport's current state.
func (t *Transport) State() State { return t.state }

// HandleCBW processes one 31-byte Command Block Wrapper, grounded on
// MSCInterface.handle_cbw. It must only be called while State() == StateCmd.
// In StateNeedReset every CBW is answered with stalls until Reset. In any
// other state a well-formed CBW is a phase error: the transport drops any
// pending continuation, moves to StateStatus and returns a PHASE_ERROR CSW
// together with *PhaseError; a malformed one still stalls and enters
// StateNeedReset.
func (t *Transport) HandleCBW(buf []byte) ([]Emit, error) {
	if t.state == StateNeedReset {
		return []Emit{{Kind: EmitStallIn}, {Kind: EmitStallOut}}, &PhaseError{}
	}
	if t.state != StateCmd {
		cbw, err := ParseCBW(buf)
		if err != nil {
			t.state = StateNeedReset
			return []Emit{{Kind: EmitStallIn}, {Kind: EmitStallOut}}, err
		}
		t.cont = nil
		t.tag = cbw.Tag
		t.residue = cbw.DataTransferLength
		t.state = StateStatus
		csw := &CSW{Signature: CswSignature, Tag: t.tag, DataResidue: t.residue, Status: StatusPhaseError}
		return []Emit{{Kind: EmitCSW, Data: csw.Bytes()}}, &PhaseError{}
	}

	cbw, err := ParseCBW(buf)
	if err != nil {
		t.state = StateNeedReset
		return []Emit{{Kind: EmitStallIn}, {Kind: EmitStallOut}}, err
	}

	t.tag = cbw.Tag
	t.residue = cbw.DataTransferLength

	if !t.cbwMeaningful(cbw) {
		t.state = StateStatus
		return t.statusEmits(StatusFailed), nil
	}

	if !t.dispatcher.Validate(cbw.CB[:cbw.CBLength]) {
		return t.failStatus(), nil
	}

	resp, cont, err := t.dispatcher.Dispatch(cbw.CB[:cbw.CBLength], t.maxBlocks)
	if err != nil {
		return t.failStatus(), nil
	}

	// MSCInterface.handle_cbw's "Wrong size" check (msc.py:308-312): a
	// handler response longer than dCBWDataTransferLength fails the command.
	// Unlike the original, which drops the response entirely, this caps the
	// emitted data at DataTransferLength so the host still receives
	// min(data_len, dCBWDataTransferLength) bytes before the FAILED CSW.
	overLength := uint32(len(resp)) > cbw.DataTransferLength
	if overLength {
		resp = resp[:cbw.DataTransferLength]
		cont = nil
	}

	if len(resp) == 0 && cont == nil {
		t.state = StateStatus
		status := StatusPassed
		if overLength {
			status = StatusFailed
		}
		return t.statusEmits(status), nil
	}

	t.cont = cont
	t.residue -= uint32(len(resp))
	emits := []Emit{{Kind: EmitData, Data: resp}}
	if !overLength {
		t.state = StateData
		return emits, nil
	}

	t.state = StateStatus
	csw := &CSW{Signature: CswSignature, Tag: t.tag, DataResidue: t.residue, Status: StatusFailed}
	return append(emits, Emit{Kind: EmitCSW, Data: csw.Bytes()}), nil
}

// cbwMeaningful applies MSCInterface.validate_cbw's second check: LUN in
// range, CB length in [1,16], and LUN matches the bound LUN. Failing this
// check reports FAILED without stalling, unlike a Valid-check failure.
func (t *Transport) cbwMeaningful(cbw *CBW) bool {
	if cbw.LUN > 15 {
		return false
	}
	if cbw.CBLength < 1 || cbw.CBLength > 16 {
		return false
	}
	if uint8(cbw.LUN) != t.lun {
		return false
	}
	return true
}

func (t *Transport) failStatus() []Emit {
	t.state = StateStatus
	return t.statusEmits(StatusFailed)
}

// statusEmits builds the Emits for a CSW-only transition, grounded on
// send_csw's padding branch (msc.py:413-420): when the DATA phase moved no
// bytes but the host still expects t.residue of them, the device cannot
// signal the shortfall with a STALL mid-transfer, so it first pads the IN
// endpoint with t.residue zero bytes before the CSW. dCSWDataResidue still
// reports the full shortfall even though the padding bytes went out.
func (t *Transport) statusEmits(status CSWStatus) []Emit {
	csw := &CSW{Signature: CswSignature, Tag: t.tag, DataResidue: t.residue, Status: status}
	if t.residue == 0 {
		return []Emit{{Kind: EmitCSW, Data: csw.Bytes()}}
	}
	return []Emit{
		{Kind: EmitData, Data: make([]byte, t.residue)},
		{Kind: EmitCSW, Data: csw.Bytes()},
	}
}

// ContinueData drives one further DATA-phase chunk for a long READ_10,
// grounded on MSCInterface.proc_transfer_data's repeated scheduling of
// transfer_data until the requested length is exhausted. Callers invoke
// this after each DATA-phase IN transfer completes, and only while
// State() == StateData. With no continuation pending (the response fit in
// one chunk) it moves straight to StateStatus and returns the PASSED CSW;
// otherwise it emits the next chunk, and once the continuation is exhausted
// the transport moves to StateStatus and returns the CSW alongside it.
func (t *Transport) ContinueData() ([]Emit, error) {
	if t.state != StateData {
		t.state = StateNeedReset
		return []Emit{{Kind: EmitStallIn}, {Kind: EmitStallOut}}, &PhaseError{}
	}
	if t.cont == nil {
		t.state = StateStatus
		csw := &CSW{Signature: CswSignature, Tag: t.tag, DataResidue: t.residue, Status: StatusPassed}
		return []Emit{{Kind: EmitCSW, Data: csw.Bytes()}}, nil
	}

	chunk, err := t.cont.Next(t.maxBlocks)
	if err != nil {
		t.cont = nil
		t.state = StateStatus
		// Data already went out in earlier chunks this DATA phase, so unlike
		// statusEmits's CSW-only paths no padding IN transfer is needed here.
		csw := &CSW{Signature: CswSignature, Tag: t.tag, DataResidue: t.residue, Status: StatusFailed}
		return []Emit{{Kind: EmitCSW, Data: csw.Bytes()}}, nil
	}
	t.residue -= uint32(len(chunk))

	if t.cont.Done() {
		t.cont = nil
		t.state = StateStatus
		csw := &CSW{Signature: CswSignature, Tag: t.tag, DataResidue: t.residue, Status: StatusPassed}
		return []Emit{
			{Kind: EmitData, Data: chunk},
			{Kind: EmitCSW, Data: csw.Bytes()},
		}, nil
	}

	return []Emit{{Kind: EmitData, Data: chunk}}, nil
}

// CSWSent acknowledges that the caller has put the CSW on the wire,
// matching MSCInterface.send_csw_callback's return to the CMD state.
func (t *Transport) CSWSent() {
	t.state = StateCmd
	t.tag = 0
	t.residue = 0
}

// Reset handles the class-specific Bulk-Only Mass Storage Reset request,
// grounded on MSCInterface.reset: it returns the transport to StateCmd from
// any state, including StateNeedReset, and resets the dispatcher's sense
// state to NoSense.
func (t *Transport) Reset() {
	t.dispatcher.sense = NoSense
	t.state = StateCmd
	t.cont = nil
	t.tag = 0
	t.residue = 0
}

// GetMaxLUN answers the class-specific GET_MAX_LUN request. This
// implementation is single-LUN, so it always reports 0.
func (t *Transport) GetMaxLUN() uint8 { return 0 }

// cbwRequest is one enqueued CBW buffer for AsyncTransport's cooperative
// loop to process.
type cbwRequest struct {
	buf    []byte
	result chan cbwResult
}

type cbwResult struct {
	emits []Emit
	err   error
}

// AsyncTransport is a cooperative, single-goroutine façade over Transport,
// mirroring AsyncModem: one goroutine owns the state machine, callers submit
// raw CBW buffers over a channel and get the resulting Emits back the same
// way.
type AsyncTransport struct {
	transport *Transport
	cbwCh     chan cbwRequest
	log       *slog.Logger
}

// NewAsyncTransport wraps transport for cooperative use.
func NewAsyncTransport(transport *Transport) *AsyncTransport {
	return &AsyncTransport{
		transport: transport,
		cbwCh:     make(chan cbwRequest, 4),
		log:       slog.With("package", "msc", "func", "AsyncTransport"),
	}
}

// Submit enqueues a CBW buffer for processing and blocks until Run has
// produced the resulting Emits or ctx is done.
func (a *AsyncTransport) Submit(ctx context.Context, buf []byte) ([]Emit, error) {
	req := cbwRequest{buf: buf, result: make(chan cbwResult, 1)}
	select {
	case a.cbwCh <- req:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case res := <-req.result:
		return res.emits, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Run drains submitted CBWs against the state machine until ctx is
// cancelled. This is the single goroutine that ever touches the
// Transport, matching AsyncModem's ownership discipline.
func (a *AsyncTransport) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case req := <-a.cbwCh:
			emits, err := a.transport.HandleCBW(req.buf)
			if err != nil {
				a.log.Warn("cbw rejected", "err", err, "state", a.transport.State())
			}
			req.result <- cbwResult{emits: emits, err: err}
		}
	}
}
