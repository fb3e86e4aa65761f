package lora

import (
	"errors"
	"fmt"
)

// ConfigError reports a configuration field that could not be resolved
// against a chip's supported range, mirroring ConfigError(ValueError) in
// the original lora.modem module.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("lora: invalid config field %q", e.Field)
}

// ErrBusy is the sentinel error for "the chip is mid-transmit or
// mid-receive". Modem's own poll operations report that condition through
// their busy return value and do not return ErrBusy.
var ErrBusy = errors.New("lora: busy")

// InvalidArgumentError reports a caller-supplied argument combination that
// the original rejects with a bare ValueError, such as
// BaseModem.start_recv's continuous/timeout_ms mutual exclusivity check.
type InvalidArgumentError struct {
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("lora: invalid argument: %s", e.Reason)
}
