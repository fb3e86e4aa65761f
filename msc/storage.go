package msc

import "fmt"

// BlockSize is the fixed SCSI block size this implementation reports,
// matching StorageDevice.block_size in the original.
const BlockSize = 512

// BlockBackend is a block-oriented backing-store shape: an object that can
// report its geometry and read blocks directly, as opposed to exposing one
// contiguous byte image.
type BlockBackend interface {
	BlockCount() uint32
	BlockSize() uint32
	ReadBlocks(lba uint32, buf []byte) error
}

// StorageConfig carries the SCSI INQUIRY identity strings and the READ_10
// chunking memory-budget divisor, using the yaml/env config-struct
// convention and creasty/defaults for the non-cleanenv construction path
// (e.g. a test or library caller building a StorageConfig directly rather
// than through config.Load).
type StorageConfig struct {
	Vendor        string `yaml:"vendor" env:"MSC_VENDOR" default:"MPython "`
	Product       string `yaml:"product" env:"MSC_PRODUCT" default:"MicroPython MSC "`
	Revision      string `yaml:"revision" env:"MSC_REVISION" default:"0000"`
	LUN           uint8  `yaml:"lun" env:"MSC_LUN" env-default:"0"`
	BudgetDivisor uint32 `yaml:"budget_divisor" env:"MSC_BUDGET_DIVISOR" env-default:"10" default:"10"`
}

// byteImage wraps a flat byte slice as a BlockBackend: a byte-addressable
// image whose byte length divided by block_size=512 yields its capacity.
// Grounded on StorageDevice.handle_read10 indexing self.filesystem
// directly.
type byteImage struct {
	data []byte
}

func (b *byteImage) BlockCount() uint32 { return uint32(len(b.data)) / BlockSize }
func (b *byteImage) BlockSize() uint32  { return BlockSize }
func (b *byteImage) ReadBlocks(lba uint32, buf []byte) error {
	start := uint64(lba) * BlockSize
	end := start + uint64(len(buf))
	if end > uint64(len(b.data)) {
		return fmt.Errorf("msc: read past end of image (lba=%d len=%d)", lba, len(buf))
	}
	copy(buf, b.data[start:end])
	return nil
}

// Storage is the dispatcher's backing-store handle: either a byteImage or
// a caller-supplied BlockBackend, a tagged variant chosen once at
// construction rather than by reflection-based capability probing.
type Storage struct {
	backend BlockBackend
	present bool
}

// NewStorage wraps a flat byte image as the backing store.
func NewStorage(image []byte) *Storage {
	return &Storage{backend: &byteImage{data: image}, present: true}
}

// NewStorageFromBackend wraps a block-oriented backend as the backing
// store.
func NewStorageFromBackend(b BlockBackend) *Storage {
	return &Storage{backend: b, present: b != nil}
}

// NewEmptyStorage represents "no filesystem" (StorageDevice.filesystem is
// None in the original): TEST_UNIT_READY, READ_CAPACITY_10 and
// READ_FORMAT_CAPACITY all report medium-not-present against it.
func NewEmptyStorage() *Storage {
	return &Storage{present: false}
}

func (s *Storage) Present() bool { return s.present }

func (s *Storage) BlockCount() uint32 {
	if !s.present {
		return 0
	}
	return s.backend.BlockCount()
}

func (s *Storage) BlockSize() uint32 {
	if !s.present {
		return BlockSize
	}
	return s.backend.BlockSize()
}

func (s *Storage) ReadBlocks(lba uint32, buf []byte) error {
	if !s.present {
		return fmt.Errorf("msc: no backing store")
	}
	return s.backend.ReadBlocks(lba, buf)
}

// MaxBlocks applies the long-operation budget formula
// (max(1, free_bytes/block_size/divisor)) to derive how many blocks a
// single ReadContinuation.Next call may pull. Go has no cheap per-call
// "current free heap bytes" read, so callers compute freeBytes once (a
// fixed budget constant, or a startup-time runtime.MemStats sample) rather
// than re-querying it on every chunk.
func (cfg StorageConfig) MaxBlocks(freeBytes uint64, blockSize uint32) uint32 {
	divisor := uint64(cfg.BudgetDivisor)
	if divisor == 0 {
		divisor = 1
	}
	if blockSize == 0 {
		blockSize = BlockSize
	}
	n := freeBytes / uint64(blockSize) / divisor
	if n < 1 {
		n = 1
	}
	return uint32(n)
}
