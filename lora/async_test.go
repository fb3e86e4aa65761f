package lora

import (
	"context"
	"testing"
	"time"
)

func TestAsyncModemSendCompletes(t *testing.T) {
	chip := &fakeChip{idle: true}
	m := NewModem(chip, nil, &fakeClock{})
	am := NewAsyncModem(m, 0xFF)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = am.Run(ctx)
	}()

	// Flip the TX-complete flag shortly after Send is submitted so the
	// Run loop's next PollSend observes it.
	go func() {
		time.Sleep(5 * time.Millisecond)
		chip.irqFlags |= IrqTxComplete
	}()

	if err := am.Send(ctx, []byte{1, 2, 3}); err != nil {
		t.Fatalf("Send: %v", err)
	}
}

func TestAsyncModemDeliversPacket(t *testing.T) {
	chip := &fakeChip{
		idle:      true,
		rxSuccess: true,
		rxPacket:  &RxPacket{Payload: []byte{9, 9}, ValidCrc: true},
	}
	m := NewModem(chip, nil, &fakeClock{})
	am := NewAsyncModem(m, 0xFF)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = am.Run(ctx)
	}()

	go func() {
		time.Sleep(5 * time.Millisecond)
		chip.irqFlags |= IrqRxComplete
	}()

	select {
	case p := <-am.Received():
		if len(p.Payload) != 2 {
			t.Fatalf("unexpected payload %v", p.Payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for received packet")
	}
}
