package msc

import "encoding/binary"

// CswLen is the fixed wire length of a Command Status Wrapper (13 bytes,
// the original's "<LLLB" ustruct layout).
const CswLen = 13

// CswSignature is the required dCSWSignature value.
const CswSignature uint32 = 0x53425355

// CSWStatus is the bCSWStatus field's enumerated value.
type CSWStatus uint8

const (
	StatusPassed     CSWStatus = 0
	StatusFailed     CSWStatus = 1
	StatusPhaseError CSWStatus = 2
)

// CSW is the Command Status Wrapper, grounded on
// original_source/micropython/usbd/msc.py's CSW class.
type CSW struct {
	Signature   uint32
	Tag         uint32
	DataResidue uint32
	Status      CSWStatus
}

// Bytes packs c into its 13-byte wire representation.
func (c *CSW) Bytes() []byte {
	buf := make([]byte, CswLen)
	binary.LittleEndian.PutUint32(buf[0:4], c.Signature)
	binary.LittleEndian.PutUint32(buf[4:8], c.Tag)
	binary.LittleEndian.PutUint32(buf[8:12], c.DataResidue)
	buf[12] = uint8(c.Status)
	return buf
}

// ParseCSW unpacks a 13-byte wire buffer into a CSW. Used by tests to
// assert the round-trip property against Bytes.
func ParseCSW(buf []byte) (*CSW, error) {
	if len(buf) != CswLen {
		return nil, &BadCbwError{Reason: "csw length"}
	}
	return &CSW{
		Signature:   binary.LittleEndian.Uint32(buf[0:4]),
		Tag:         binary.LittleEndian.Uint32(buf[4:8]),
		DataResidue: binary.LittleEndian.Uint32(buf[8:12]),
		Status:      CSWStatus(buf[12]),
	}, nil
}
