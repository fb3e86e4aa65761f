package lora

import "testing"

func TestResolveBandwidthNamed(t *testing.T) {
	cases := map[string]uint32{"125": 125000, "250": 250000, "500": 500000, "62500": 62500}
	for in, want := range cases {
		c := ModemConfig{Bandwidth: in}
		got, err := c.resolveBandwidthHz()
		if err != nil {
			t.Fatalf("resolveBandwidthHz(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("resolveBandwidthHz(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestResolveBandwidthInvalid(t *testing.T) {
	c := ModemConfig{Bandwidth: "not-a-number"}
	if _, err := c.resolveBandwidthHz(); err == nil {
		t.Fatalf("expected error for invalid bandwidth")
	}
}

func TestResolvePaRampRoundsUp(t *testing.T) {
	supported := []uint32{10, 20, 40, 80, 200, 800, 1700, 3400}
	got, err := resolvePaRampUs(50, supported)
	if err != nil {
		t.Fatalf("resolvePaRampUs: %v", err)
	}
	if got != 80 {
		t.Fatalf("resolvePaRampUs(50) = %d, want 80", got)
	}
}

func TestResolvePaRampFailsAboveMax(t *testing.T) {
	supported := []uint32{10, 20, 40}
	if _, err := resolvePaRampUs(1000, supported); err == nil {
		t.Fatalf("expected ConfigError for unreachable ramp")
	} else if ce, ok := err.(*ConfigError); !ok || ce.Field != "pa_ramp_us" {
		t.Fatalf("expected ConfigError{pa_ramp_us}, got %v", err)
	}
}

func TestResolveRejectsBadSF(t *testing.T) {
	c := ModemConfig{Bandwidth: "125", SpreadingFactor: 14, CodingRate: 5}
	if _, err := c.Resolve([]uint32{10}); err == nil {
		t.Fatalf("expected ConfigError for out-of-range SF")
	}
}
