package msc

import (
	"encoding/binary"
)

// SenseState is the SCSI sense-key projection, grounded on
// StorageDevice.NO_SENSE/MEDIUM_NOT_PRESENT/INVALID_COMMAND.
type SenseState int

const (
	NoSense SenseState = iota
	MediumNotPresent
	InvalidCommand
)

// senseKCQ maps a SenseState to its (key, ASC, ASCQ) triple for
// REQUEST_SENSE, transcribed from the original's sense_values table.
var senseKCQ = map[SenseState][3]uint8{
	NoSense:          {0x00, 0x00, 0x00},
	MediumNotPresent: {0x02, 0x3A, 0x00},
	InvalidCommand:   {0x05, 0x20, 0x00},
}

const (
	opTestUnitReady      = 0x00
	opRequestSense       = 0x03
	opInquiry            = 0x12
	opModeSelect6        = 0x15
	opModeSense6         = 0x1A
	opStartStopUnit      = 0x1B
	opPreventAllowRemove = 0x1E
	opReadFormatCapacity = 0x23
	opReadCapacity10     = 0x25
	opRead10             = 0x28
	opWrite10            = 0x2A
	opModeSense10        = 0x5A
)

// ReadContinuation is an explicit long-operation record in place of a
// closure: READ_10 against a range too large for the
// current memory budget returns the first chunk plus one of these: the
// transport re-invokes Next on each subsequent DATA-phase completion until
// RemainingBlocks reaches zero.
type ReadContinuation struct {
	storage         *Storage
	NextLBA         uint32
	RemainingBlocks uint32
	blockSize       uint32
}

// Done reports whether the continuation has no more blocks to deliver.
func (c *ReadContinuation) Done() bool { return c.RemainingBlocks == 0 }

// Next reads up to maxBlocks more blocks and advances the continuation.
func (c *ReadContinuation) Next(maxBlocks uint32) ([]byte, error) {
	if maxBlocks == 0 {
		maxBlocks = 1
	}
	n := c.RemainingBlocks
	if n > maxBlocks {
		n = maxBlocks
	}
	buf := make([]byte, uint64(n)*uint64(c.blockSize))
	if err := c.storage.ReadBlocks(c.NextLBA, buf); err != nil {
		return nil, err
	}
	c.NextLBA += n
	c.RemainingBlocks -= n
	return buf, nil
}

// Dispatcher is the opcode-keyed SCSI handler table, grounded on
// StorageDevice's scsi_commands dict and validate_cmd/handle_cmd pair.
type Dispatcher struct {
	storage *Storage
	cfg     StorageConfig
	sense   SenseState
}

func NewDispatcher(storage *Storage, cfg StorageConfig) *Dispatcher {
	return &Dispatcher{storage: storage, cfg: cfg, sense: NoSense}
}

// Validate reports whether cmd's opcode is known and has a handler,
// grounded on StorageDevice.validate_cmd. Every opcode other than
// REQUEST_SENSE resets sense to NoSense before the caller dispatches.
func (d *Dispatcher) Validate(cmd []byte) bool {
	if len(cmd) == 0 {
		d.sense = InvalidCommand
		return false
	}
	if _, ok := opcodeNames[cmd[0]]; !ok {
		d.sense = InvalidCommand
		return false
	}
	if !hasHandler(cmd[0]) {
		d.sense = InvalidCommand
		return false
	}
	if cmd[0] != opRequestSense {
		d.sense = NoSense
	}
	return true
}

// Dispatch runs cmd's handler, returning its response bytes and, for
// READ_10 reads that exceed maxBlocks worth of the first chunk, a
// continuation for the transport to drive further. Handler errors are
// normalized to *StorageError(FAILED), matching StorageDevice.handle_cmd's
// blanket except clause.
func (d *Dispatcher) Dispatch(cmd []byte, maxBlocks uint32) ([]byte, *ReadContinuation, error) {
	switch cmd[0] {
	case opTestUnitReady:
		return d.handleTestUnitReady()
	case opRequestSense:
		return d.handleRequestSense(), nil, nil
	case opInquiry:
		return d.handleInquiry(cmd)
	case opModeSense6:
		return d.handleModeSense6(), nil, nil
	case opModeSense10:
		return d.handleModeSense10(), nil, nil
	case opReadFormatCapacity:
		return d.handleReadFormatCapacity(), nil, nil
	case opReadCapacity10:
		return d.handleReadCapacity10()
	case opRead10:
		return d.handleRead10(cmd, maxBlocks)
	default:
		return nil, nil, newStorageError(StatusFailed, "msc: unimplemented opcode %#x", cmd[0])
	}
}

var opcodeNames = map[uint8]string{
	opTestUnitReady:      "TEST_UNIT_READY",
	opRequestSense:       "REQUEST_SENSE",
	opInquiry:            "INQUIRY",
	opModeSelect6:        "MODE_SELECT_6",
	opModeSense6:         "MODE_SENSE_6",
	opStartStopUnit:      "START_STOP_UNIT",
	opPreventAllowRemove: "PREVENT_ALLOW_MEDIUM_REMOVAL",
	opReadFormatCapacity: "READ_FORMAT_CAPACITY",
	opReadCapacity10:     "READ_CAPACITY_10",
	opRead10:             "READ_10",
	opWrite10:            "WRITE_10",
	opModeSense10:        "MODE_SENSE_10",
}

// hasHandler reports whether opcode has an implemented handler; opcodes
// named but unimplemented (WRITE_10, START_STOP_UNIT, MODE_SELECT_6,
// PREVENT_ALLOW_MEDIUM_REMOVAL) are listed by name only.
func hasHandler(opcode uint8) bool {
	switch opcode {
	case opTestUnitReady, opRequestSense, opInquiry, opModeSense6, opModeSense10,
		opReadFormatCapacity, opReadCapacity10, opRead10:
		return true
	default:
		return false
	}
}

func (d *Dispatcher) handleTestUnitReady() ([]byte, *ReadContinuation, error) {
	if !d.storage.Present() {
		d.sense = MediumNotPresent
		return nil, nil, newStorageError(StatusFailed, "msc: no filesystem")
	}
	d.sense = NoSense
	return nil, nil, nil
}

func (d *Dispatcher) handleRequestSense() []byte {
	kcq := senseKCQ[d.sense]
	buf := make([]byte, 18)
	buf[0] = 0x70
	buf[2] = kcq[0]
	buf[7] = 9
	buf[12] = kcq[1]
	buf[13] = kcq[2]
	return buf
}

func (d *Dispatcher) handleInquiry(cmd []byte) ([]byte, *ReadContinuation, error) {
	if len(cmd) < 5 {
		return nil, nil, newStorageError(StatusFailed, "msc: inquiry cdb too short")
	}
	evpd := cmd[1] & 0x01
	pageCode := cmd[2]

	if evpd == 0 {
		buf := make([]byte, 36)
		buf[0] = 0x00
		buf[1] = 0x80
		buf[2] = 0x00
		buf[3] = 0x02
		buf[4] = 32
		copyPadded(buf[8:16], d.cfg.Vendor)
		copyPadded(buf[16:32], d.cfg.Product)
		copyPadded(buf[32:36], d.cfg.Revision)
		return buf, nil, nil
	}

	if pageCode == 0x80 {
		buf := make([]byte, 14)
		buf[0] = 0x00
		buf[1] = 0x80
		buf[2] = 0x00
		buf[3] = 0x0A
		return buf, nil, nil
	}

	d.sense = InvalidCommand
	return nil, nil, newStorageError(StatusFailed, "msc: evpd page %#x not implemented", pageCode)
}

func copyPadded(dst []byte, s string) {
	for i := range dst {
		dst[i] = ' '
	}
	copy(dst, s)
}

func (d *Dispatcher) handleModeSense6() []byte {
	return []byte{3, 0x00, 0x80, 0x00}
}

func (d *Dispatcher) handleModeSense10() []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint16(buf[0:2], 6)
	buf[2] = 0x00
	buf[3] = 0x80
	return buf
}

func (d *Dispatcher) handleReadFormatCapacity() []byte {
	descriptorType := uint8(3)
	blockNum := uint32(0)
	if d.storage.Present() {
		descriptorType = 2
		blockNum = d.storage.BlockCount()
	}
	buf := make([]byte, 12)
	buf[3] = 8
	binary.BigEndian.PutUint32(buf[4:8], blockNum)
	buf[8] = descriptorType
	binary.BigEndian.PutUint16(buf[10:12], uint16(d.storage.BlockSize()))
	return buf
}

func (d *Dispatcher) handleReadCapacity10() ([]byte, *ReadContinuation, error) {
	if !d.storage.Present() {
		d.sense = MediumNotPresent
		return nil, nil, newStorageError(StatusFailed, "msc: no filesystem")
	}
	maxLBA := d.storage.BlockCount() - 1
	buf := make([]byte, 8)
	binary.BigEndian.PutUint32(buf[0:4], maxLBA)
	binary.BigEndian.PutUint32(buf[4:8], d.storage.BlockSize())
	return buf, nil, nil
}

func (d *Dispatcher) handleRead10(cmd []byte, maxBlocks uint32) ([]byte, *ReadContinuation, error) {
	if len(cmd) < 10 {
		return nil, nil, newStorageError(StatusFailed, "msc: read10 cdb too short")
	}
	lba := binary.BigEndian.Uint32(cmd[2:6])
	lengthBlocks := binary.BigEndian.Uint16(cmd[7:9])

	if !d.storage.Present() {
		d.sense = MediumNotPresent
		return nil, nil, newStorageError(StatusFailed, "msc: no filesystem")
	}

	blockSize := d.storage.BlockSize()
	total := uint32(lengthBlocks)
	if maxBlocks == 0 || total <= maxBlocks {
		buf := make([]byte, uint64(total)*uint64(blockSize))
		if err := d.storage.ReadBlocks(lba, buf); err != nil {
			return nil, nil, newStorageError(StatusFailed, "msc: read10: %w", err)
		}
		return buf, nil, nil
	}

	cont := &ReadContinuation{storage: d.storage, NextLBA: lba, RemainingBlocks: total, blockSize: blockSize}
	first, err := cont.Next(maxBlocks)
	if err != nil {
		return nil, nil, newStorageError(StatusFailed, "msc: read10: %w", err)
	}
	return first, cont, nil
}
