package sx126x

import (
	"testing"

	"github.com/Regeneric/go_radio_storage_cores/lora"
)

func TestSymbolOffsetsLowSFCorrection(t *testing.T) {
	d := &Driver{}

	low := d.SymbolOffsets(5)
	high := d.SymbolOffsets(7)
	if low == high {
		t.Fatalf("expected SF5 offsets to differ from SF7, both got %+v", low)
	}

	for _, sf := range []uint8{5, 6} {
		if got := d.SymbolOffsets(sf); got != low {
			t.Fatalf("SF%d offsets = %+v, want %+v", sf, got, low)
		}
	}
	for _, sf := range []uint8{7, 8, 9, 10, 11, 12} {
		if got := d.SymbolOffsets(sf); got != high {
			t.Fatalf("SF%d offsets = %+v, want the zero offset %+v", sf, got, high)
		}
	}
}

func TestIrqFlagRoundTrip(t *testing.T) {
	raw := IrqTxDone | IrqCrcErr | IrqTimeout
	flags := toLoraFlags(raw)

	if !flags.Has(lora.IrqTxComplete) || !flags.Has(lora.IrqCrcError) || !flags.Has(lora.IrqTimeout) {
		t.Fatalf("expected tx-complete, crc-error and timeout flags, got %v", flags)
	}
	back := toIrqMask(flags)
	if back&IrqTxDone == 0 || back&IrqCrcErr == 0 || back&IrqTimeout == 0 {
		t.Fatalf("round trip lost bits: raw=%v back=%v", raw, back)
	}
	if back&IrqRxDone != 0 || back&IrqHeaderErr != 0 {
		t.Fatalf("round trip gained bits: back=%v", back)
	}
}

func TestMsToRtcSteps(t *testing.T) {
	if got := msToRtcSteps(-5); got != 0 {
		t.Fatalf("negative ms: got %d, want 0", got)
	}
	if got := msToRtcSteps(1000); got != 64000 {
		t.Fatalf("1000ms: got %d, want 64000", got)
	}
}

func TestCalibrationImageForBands(t *testing.T) {
	f1, f2 := calibrationImageFor(868_000_000)
	if f1 != CalImg863 || f2 != CalImg870 {
		t.Fatalf("868MHz band: got (%v,%v), want (CalImg863, CalImg870)", f1, f2)
	}
	f1, f2 = calibrationImageFor(915_000_000)
	if f1 != CalImg902 || f2 != CalImg928 {
		t.Fatalf("915MHz band: got (%v,%v), want (CalImg902, CalImg928)", f1, f2)
	}
}

func TestTcxoVoltageForKnownAndUnknown(t *testing.T) {
	if v, ok := tcxoVoltageFor(1800); !ok || v != Dio3Output1_8 {
		t.Fatalf("1800mV: got (%v,%v), want (Dio3Output1_8, true)", v, ok)
	}
	if _, ok := tcxoVoltageFor(5000); ok {
		t.Fatalf("5000mV: expected unsupported, got ok")
	}
}
