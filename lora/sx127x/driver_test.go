package sx127x

import (
	"testing"

	"github.com/Regeneric/go_radio_storage_cores/lora"
)

func TestSymbolOffsetsAlwaysZero(t *testing.T) {
	d := &Driver{}
	for _, sf := range []uint8{5, 6, 7, 8, 9, 10, 11, 12} {
		if got := d.SymbolOffsets(sf); got != (lora.SymbolOffsets{}) {
			t.Fatalf("SF%d offsets = %+v, want zero", sf, got)
		}
	}
}

func TestBandwidthCodeKnownAndUnknown(t *testing.T) {
	if code, ok := bandwidthCode(125000); !ok || code != 0x70 {
		t.Fatalf("125000Hz: got (%#x,%v), want (0x70,true)", code, ok)
	}
	if _, ok := bandwidthCode(123456); ok {
		t.Fatalf("expected unsupported bandwidth to fail lookup")
	}
}

func TestCodingRateCodeRange(t *testing.T) {
	for cr := uint8(5); cr <= 8; cr++ {
		if _, ok := codingRateCode(cr); !ok {
			t.Fatalf("coding rate 4/%d should be supported", cr)
		}
	}
	if _, ok := codingRateCode(4); ok {
		t.Fatalf("coding rate 4/4 should be unsupported")
	}
	if _, ok := codingRateCode(9); ok {
		t.Fatalf("coding rate 4/9 should be unsupported")
	}
}

func TestIrqFlagRoundTrip(t *testing.T) {
	raw := uint8(IrqTxDone | IrqCrcErr | IrqRxTimeout)
	flags := toLoraFlags(raw)
	if !flags.Has(lora.IrqTxComplete) || !flags.Has(lora.IrqCrcError) || !flags.Has(lora.IrqTimeout) {
		t.Fatalf("expected tx-complete, crc-error and timeout flags, got %v", flags)
	}
	back := toRegFlags(flags)
	if back&IrqTxDone == 0 || back&IrqCrcErr == 0 || back&IrqRxTimeout == 0 {
		t.Fatalf("round trip lost bits: raw=%#x back=%#x", raw, back)
	}
	if back&IrqRxDone != 0 {
		t.Fatalf("round trip gained bits: back=%#x", back)
	}
}

func TestMsToSymbTimeoutClamps(t *testing.T) {
	if got := msToSymbTimeout(0, 7, 125000); got != 0xFF {
		t.Fatalf("zero timeout: got %#x, want 0xFF", got)
	}
	if got := msToSymbTimeout(100, 7, 125000); got == 0 {
		t.Fatalf("100ms at SF7/125kHz: expected a nonzero symbol count")
	}
}
