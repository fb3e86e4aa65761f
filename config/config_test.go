package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFallsBackToEnvWhenFileMissing(t *testing.T) {
	t.Setenv("LORA_SF", "9")
	t.Setenv("MSC_VENDOR", "TESTVEND ")

	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LoRa.SpreadingFactor != 9 {
		t.Fatalf("SpreadingFactor = %d, want 9", cfg.LoRa.SpreadingFactor)
	}
	if cfg.Storage.Vendor != "TESTVEND " {
		t.Fatalf("Vendor = %q, want %q", cfg.Storage.Vendor, "TESTVEND ")
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "lora:\n  sf: 11\nstorage:\n  vendor: \"FILEVEND \"\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LoRa.SpreadingFactor != 11 {
		t.Fatalf("SpreadingFactor = %d, want 11", cfg.LoRa.SpreadingFactor)
	}
	if cfg.Storage.Vendor != "FILEVEND " {
		t.Fatalf("Vendor = %q, want %q", cfg.Storage.Vendor, "FILEVEND ")
	}
}

func TestLoadAppliesBudgetDivisorDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.BudgetDivisor != 10 {
		t.Fatalf("BudgetDivisor = %d, want 10", cfg.Storage.BudgetDivisor)
	}
}
