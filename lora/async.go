package lora

import (
	"context"
	"log/slog"
)

// sendRequest is an enqueued transmit request for the cooperative driver
// loop to service.
type sendRequest struct {
	payload []byte
	txAtMs  int64
	result  chan error
}

// AsyncModem is a cooperative, single-goroutine façade over Modem, filling
// the gap left by apps/wbs/internal/lora.Node.Run (an empty stub in the
// teacher) with an explicit poll loop: one goroutine owns the chip, callers
// submit work over channels and get results back the same way.
type AsyncModem struct {
	modem *Modem

	sendCh chan sendRequest
	rxCh   chan RxPacket

	continuousRx bool
	rxLength     int

	log *slog.Logger
}

// NewAsyncModem wraps modem for cooperative use. rxLength is the buffer
// size used for every continuous-mode receive.
func NewAsyncModem(modem *Modem, rxLength int) *AsyncModem {
	return &AsyncModem{
		modem:        modem,
		sendCh:       make(chan sendRequest, 4),
		rxCh:         make(chan RxPacket, 4),
		continuousRx: true,
		rxLength:     rxLength,
		log:          slog.With("package", "lora", "func", "AsyncModem"),
	}
}

// Received returns the channel packets are published on while Run is
// active.
func (a *AsyncModem) Received() <-chan RxPacket {
	return a.rxCh
}

// Send enqueues payload for transmission and blocks until it has either
// been sent or ctx is done.
func (a *AsyncModem) Send(ctx context.Context, payload []byte) error {
	req := sendRequest{payload: payload, result: make(chan error, 1)}
	select {
	case a.sendCh <- req:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drives the modem cooperatively until ctx is cancelled: it arms a
// continuous receive, and on every iteration polls for completed receives,
// drains one queued send if the chip is not already busy sending, and polls
// any in-flight send to completion. This is the single goroutine that ever
// touches the chip, so no locking is required beyond the IRQ-safe atomic
// fields Modem already keeps.
func (a *AsyncModem) Run(ctx context.Context) error {
	if a.continuousRx {
		if err := a.modem.StartRecv(true, 0, a.rxLength); err != nil {
			return err
		}
	}

	var inFlight *sendRequest
	var inFlightWillIrq bool

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if inFlight == nil {
			select {
			case req := <-a.sendCh:
				if err := a.modem.PrepareSend(req.payload); err != nil {
					req.result <- err
					continue
				}
				willIrq, err := a.modem.StartSend()
				if err != nil {
					req.result <- err
					continue
				}
				r := req
				inFlight = &r
				inFlightWillIrq = willIrq
			default:
			}
		}

		if inFlight != nil {
			_, busy, done, err := a.modem.PollSend()
			if err != nil {
				inFlight.result <- err
				inFlight = nil
			} else if done {
				inFlight.result <- nil
				inFlight = nil
			} else if !busy {
				inFlight.result <- nil
				inFlight = nil
			}
		}

		var packet RxPacket
		p, _, err := a.modem.PollRecv(&packet)
		if err != nil {
			a.log.Warn("poll recv failed", "err", err)
		} else if p != nil {
			select {
			case a.rxCh <- *p:
			default:
				a.log.Warn("receive queue full, dropping packet")
			}
		}

		if inFlight != nil {
			a.modem.SyncWait(inFlightWillIrq)
		} else {
			a.modem.SyncWait(true)
		}
	}
}
