package sx127x

import "fmt"

// writeReg writes one or more registers starting at addr, relying on the
// chip's auto-increment (except for RegFifo, where that is undesirable).
// Grounded on tve-devices/sx1276/sx1276.go's writeReg/readReg.
func (d *Device) writeReg(addr uint8, data ...uint8) error {
	w := make([]uint8, len(data)+1)
	r := make([]uint8, len(data)+1)
	w[0] = addr | 0x80
	copy(w[1:], data)
	if err := d.SPI.Tx(w, r); err != nil {
		return fmt.Errorf("sx127x: write register %#x: %w", addr, err)
	}
	return nil
}

func (d *Device) readReg(addr uint8) (uint8, error) {
	w := []uint8{addr & 0x7f, 0}
	r := make([]uint8, 2)
	if err := d.SPI.Tx(w, r); err != nil {
		return 0, fmt.Errorf("sx127x: read register %#x: %w", addr, err)
	}
	return r[1], nil
}

func (d *Device) readFifo(length int) ([]byte, error) {
	w := make([]uint8, length+1)
	r := make([]uint8, length+1)
	w[0] = RegFifo
	if err := d.SPI.Tx(w, r); err != nil {
		return nil, fmt.Errorf("sx127x: read fifo: %w", err)
	}
	out := make([]byte, length)
	copy(out, r[1:])
	return out, nil
}

// setMode changes the chip's operating mode and the DIO0 interrupt source
// to match, grounded on Radio.setMode.
func (d *Device) setMode(mode uint8) error {
	mode &= 0x07
	if d.mode == mode {
		return nil
	}

	var dioMap uint8
	switch mode {
	case ModeTx:
		dioMap = 0x40 // TxDone
	case ModeRxCont, ModeRxSingle:
		dioMap = 0x00 // RxDone
	default:
		dioMap = 0xc0 // no interrupt while switching
	}
	if err := d.writeReg(RegDioMapping1, dioMap); err != nil {
		return err
	}
	if err := d.writeReg(RegOpMode, mode+0x88); err != nil {
		return err
	}
	d.mode = mode
	return nil
}
