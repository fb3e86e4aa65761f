package msc

import "encoding/binary"

// CbwLen is the fixed wire length of a Command Block Wrapper, per the
// original's "<LLLBBB16s" ustruct layout (31 bytes).
const CbwLen = 31

// CbwSignature is the required dCBWSignature value.
const CbwSignature uint32 = 0x43425355

// CBW is the Command Block Wrapper, grounded on
// original_source/micropython/usbd/msc.py's CBW class, translated from its
// ustruct "<LLLBBB16s" pack/unpack pair into explicit little-endian byte
// slicing.
type CBW struct {
	Signature          uint32
	Tag                uint32
	DataTransferLength uint32
	Flags              uint8
	LUN                uint8
	CBLength           uint8
	CB                 [16]byte
}

// DirectionIn reports whether the host expects data from the device
// (bit 7 of Flags), or false if no data phase is expected at all.
func (c *CBW) DirectionIn() (isIn bool, hasData bool) {
	if c.DataTransferLength == 0 {
		return false, false
	}
	return c.Flags&0x80 != 0, true
}

// Bytes packs c into its 31-byte wire representation.
func (c *CBW) Bytes() []byte {
	buf := make([]byte, CbwLen)
	binary.LittleEndian.PutUint32(buf[0:4], c.Signature)
	binary.LittleEndian.PutUint32(buf[4:8], c.Tag)
	binary.LittleEndian.PutUint32(buf[8:12], c.DataTransferLength)
	buf[12] = c.Flags
	buf[13] = c.LUN
	buf[14] = c.CBLength
	copy(buf[15:31], c.CB[:])
	return buf
}

// ParseCBW unpacks a 31-byte wire buffer into a CBW, rejecting a wrong
// length or signature as *BadCbwError. Meaningfulness checks (LUN range, CB
// length range, LUN match) are the caller's responsibility, so that failure
// keeps its own distinct outcome instead of collapsing into BadCbwError.
func ParseCBW(buf []byte) (*CBW, error) {
	if len(buf) != CbwLen {
		return nil, &BadCbwError{Reason: "length"}
	}
	c := &CBW{
		Signature:          binary.LittleEndian.Uint32(buf[0:4]),
		Tag:                binary.LittleEndian.Uint32(buf[4:8]),
		DataTransferLength: binary.LittleEndian.Uint32(buf[8:12]),
		Flags:              buf[12],
		LUN:                buf[13],
		CBLength:           buf[14],
	}
	copy(c.CB[:], buf[15:31])
	if c.Signature != CbwSignature {
		return nil, &BadCbwError{Reason: "signature"}
	}
	return c, nil
}
