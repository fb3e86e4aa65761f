package lora

import (
	"strconv"
	"strings"
)

// ModemConfig is the user-facing, chip-agnostic radio configuration,
// following the yaml/env/env-default tagging convention libs/sx126x.Config
// uses, extended with a string-or-Hz bandwidth field.
type ModemConfig struct {
	FreqKhz         uint64 `yaml:"freq_khz" env:"LORA_FREQ_KHZ" env-default:"868000"`
	SpreadingFactor uint8  `yaml:"sf" env:"LORA_SF" env-default:"7"`
	Bandwidth       string `yaml:"bw" env:"LORA_BW" env-default:"125"`
	CodingRate      uint8  `yaml:"coding_rate" env:"LORA_CR" env-default:"5"`
	PreambleLen     uint16 `yaml:"preamble_len" env:"LORA_PREAMBLE_LEN" env-default:"12"`
	OutputPowerDbm  int8   `yaml:"output_power" env:"LORA_OUTPUT_POWER" env-default:"14"`
	PaRampUs        uint32 `yaml:"pa_ramp_us" env:"LORA_PA_RAMP_US" env-default:"40"`
	ImplicitHeader  bool   `yaml:"implicit_header" env:"LORA_IMPLICIT_HEADER" env-default:"false"`
	CrcEn           bool   `yaml:"crc_en" env:"LORA_CRC_EN" env-default:"true"`
	InvertIqRx      bool   `yaml:"invert_iq_rx" env:"LORA_INVERT_IQ_RX" env-default:"false"`
	InvertIqTx      bool   `yaml:"invert_iq_tx" env:"LORA_INVERT_IQ_TX" env-default:"false"`
	SyncWord        uint16 `yaml:"syncword" env:"LORA_SYNCWORD" env-default:"0x1424"`
	AutoImageCal    bool   `yaml:"auto_image_cal" env:"LORA_AUTO_IMAGE_CAL" env-default:"true"`
	TcxoMillivolts  uint16 `yaml:"tcxo_millivolts" env:"LORA_TCXO_MILLIVOLTS" env-default:"0"`
	Dio2RfSwitch    bool   `yaml:"dio2_rf_sw" env:"LORA_DIO2_RF_SW" env-default:"true"`
	RxBoost         bool   `yaml:"rx_boost" env:"LORA_RX_BOOST" env-default:"false"`
	AntennaSettleMs uint32 `yaml:"antenna_settle_ms" default:"1"`
}

// resolveBandwidthHz parses the Bandwidth field, which accepts either a
// named kHz preset ("125", "250", "500") or a raw Hz integer.
func (c *ModemConfig) resolveBandwidthHz() (uint32, error) {
	switch strings.TrimSpace(c.Bandwidth) {
	case "125":
		return 125000, nil
	case "250":
		return 250000, nil
	case "500":
		return 500000, nil
	case "":
		return 0, &ConfigError{Field: "bw"}
	}
	hz, err := strconv.ParseUint(c.Bandwidth, 10, 32)
	if err != nil {
		return 0, &ConfigError{Field: "bw"}
	}
	return uint32(hz), nil
}

// resolvePaRampUs picks the smallest value in supported that is >= want,
// grounded on BaseModem._get_pa_ramp_val: round up to the nearest supported
// ramp, fail with ConfigError("pa_ramp_us") if none is large enough.
func resolvePaRampUs(want uint32, supported []uint32) (uint32, error) {
	best := uint32(0)
	found := false
	for _, r := range supported {
		if r >= want && (!found || r < best) {
			best = r
			found = true
		}
	}
	if !found {
		return 0, &ConfigError{Field: "pa_ramp_us"}
	}
	return best, nil
}

// Resolve converts the user-facing config into a ChipConfig, validating the
// bandwidth field and rounding the PA ramp against the driver's supported
// set.
func (c *ModemConfig) Resolve(supportedRamps []uint32) (ChipConfig, error) {
	bwHz, err := c.resolveBandwidthHz()
	if err != nil {
		return ChipConfig{}, err
	}
	ramp, err := resolvePaRampUs(c.PaRampUs, supportedRamps)
	if err != nil {
		return ChipConfig{}, err
	}
	if c.SpreadingFactor < 5 || c.SpreadingFactor > 12 {
		return ChipConfig{}, &ConfigError{Field: "sf"}
	}
	if c.CodingRate < 5 || c.CodingRate > 8 {
		return ChipConfig{}, &ConfigError{Field: "coding_rate"}
	}

	return ChipConfig{
		FreqHz:          c.FreqKhz * 1000,
		SpreadingFactor: c.SpreadingFactor,
		BandwidthHz:     bwHz,
		CodingRate:      c.CodingRate,
		PreambleLen:     c.PreambleLen,
		OutputPowerDbm:  c.OutputPowerDbm,
		PaRampUs:        ramp,
		ImplicitHeader:  c.ImplicitHeader,
		CrcEnabled:      c.CrcEn,
		InvertIqRx:      c.InvertIqRx,
		InvertIqTx:      c.InvertIqTx,
		SyncWord:        c.SyncWord,
		AutoImageCal:    c.AutoImageCal,
		TcxoMillivolts:  c.TcxoMillivolts,
		Dio2RfSwitch:    c.Dio2RfSwitch,
		RxBoost:         c.RxBoost,
	}, nil
}

