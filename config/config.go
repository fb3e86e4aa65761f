// Package config loads the top-level configuration for a combined LoRa
// modem / USB mass-storage deployment, using a file-or-environment loading
// convention.
package config

import (
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/Regeneric/go_radio_storage_cores/lora"
	"github.com/Regeneric/go_radio_storage_cores/msc"
)

// Config is the root configuration, grounded on
// apps/wbs/internal/config.Config's shape with the sensor/bus sections
// dropped and the LoRa/MSC sections kept.
type Config struct {
	LoRa    lora.ModemConfig  `yaml:"lora"`
	Storage msc.StorageConfig `yaml:"storage"`
}

// Load reads cfg from path if it exists, falling back to environment
// variables otherwise. Grounded on apps/wbs/internal/config.LoadConfig,
// with creasty/defaults applied first so fields tagged `default:"..."`
// (not reachable through cleanenv's own env-default/yaml path, such as
// lora.ModemConfig.AntennaSettleMs and msc.StorageConfig.BudgetDivisor)
// still get populated before the file/env pass overwrites what it finds.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("config: set defaults: %w", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("config: file not found and failed to read env: %w", err)
		}
		return cfg, nil
	}

	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", path, err)
	}
	return cfg, nil
}
