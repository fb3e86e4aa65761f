package lora

import "testing"

func TestGetTimeOnAirUs_SF8BW125(t *testing.T) {
	off := SymbolOffsets{so: 0, bo: 0}
	got := getTimeOnAirUs(16, 8, 125000, 5, true, false, false, off, 12)
	if got != 100864 {
		t.Fatalf("time on air = %d, want 100864", got)
	}
}

func TestGetNSymbolsX4_SX126xSF5(t *testing.T) {
	off := SymbolOffsets{so: 2, bo: -8}
	got := getNSymbolsX4(1, 5, 8, true, false, false, off, 12)
	if got != 169 {
		t.Fatalf("n_symbols_x4 = %d, want 169", got)
	}
}

func TestTimeOnAirIncreasesWithPayload(t *testing.T) {
	off := SymbolOffsets{}
	prev := getTimeOnAirUs(1, 7, 125000, 5, true, false, false, off, 8)
	for n := 2; n <= 64; n++ {
		cur := getTimeOnAirUs(n, 7, 125000, 5, true, false, false, off, 8)
		if cur < prev {
			t.Fatalf("time on air decreased at payload len %d: %d < %d", n, cur, prev)
		}
		prev = cur
	}
}

func TestGetLdrEnThreshold(t *testing.T) {
	if getLdrEn(getTSymUs(7, 125000)) {
		t.Fatalf("SF7/125kHz should not require LDRO")
	}
	if !getLdrEn(getTSymUs(12, 125000)) {
		t.Fatalf("SF12/125kHz should require LDRO")
	}
}
