package msc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransport(storage *Storage) *Transport {
	d := NewDispatcher(storage, StorageConfig{Vendor: "MPython ", Product: "MicroPython MSC ", Revision: "0000"})
	return NewTransport(d, 0, 1)
}

func read10CBW(tag uint32, lba uint32, lengthBlocks uint16, dataLen uint32) *CBW {
	cbw := &CBW{
		Signature:          CbwSignature,
		Tag:                tag,
		DataTransferLength: dataLen,
		Flags:              0x80,
		LUN:                0,
		CBLength:           10,
	}
	cb := []byte{opRead10, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	cb[2] = byte(lba >> 24)
	cb[3] = byte(lba >> 16)
	cb[4] = byte(lba >> 8)
	cb[5] = byte(lba)
	cb[7] = byte(lengthBlocks >> 8)
	cb[8] = byte(lengthBlocks)
	copy(cbw.CB[:], cb)
	return cbw
}

func TestHandleCBWBadSignatureEntersNeedReset(t *testing.T) {
	tp := newTestTransport(NewEmptyStorage())
	cbw := &CBW{Signature: 0xDEADBEEF, CBLength: 6}
	emits, err := tp.HandleCBW(cbw.Bytes())
	require.Error(t, err)
	assert.Equal(t, StateNeedReset, tp.State())
	require.Len(t, emits, 2)
	assert.Equal(t, EmitStallIn, emits[0].Kind)
	assert.Equal(t, EmitStallOut, emits[1].Kind)
}

func TestHandleCBWBadLengthEntersNeedReset(t *testing.T) {
	tp := newTestTransport(NewEmptyStorage())
	_, err := tp.HandleCBW(make([]byte, 30))
	require.Error(t, err)
	assert.Equal(t, StateNeedReset, tp.State())
}

func TestHandleCBWWrongLUNFailsWithoutStall(t *testing.T) {
	tp := newTestTransport(NewStorage(make([]byte, BlockSize)))
	cbw := read10CBW(1, 0, 1, BlockSize)
	cbw.LUN = 3
	emits, err := tp.HandleCBW(cbw.Bytes())
	require.NoError(t, err)
	assert.Equal(t, StateStatus, tp.State())

	// The host declared a BlockSize-byte transfer but nothing was actually
	// moved, so send_csw's padding branch applies: a zero-filled IN chunk
	// goes out before the CSW.
	require.Len(t, emits, 2)
	assert.Equal(t, EmitData, emits[0].Kind)
	assert.Len(t, emits[0].Data, BlockSize)
	assert.Equal(t, EmitCSW, emits[1].Kind)

	csw, err := ParseCSW(emits[1].Data)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, csw.Status)
	assert.Equal(t, uint32(BlockSize), csw.DataResidue)
}

func TestHandleCBWRead10WithinBudget(t *testing.T) {
	img := make([]byte, 1024)
	for i := range img {
		img[i] = byte(i)
	}
	storage := NewStorage(img)
	d := NewDispatcher(storage, StorageConfig{})
	tp := NewTransport(d, 0, 4)

	cbw := read10CBW(0xAABBCCDD, 0, 1, BlockSize)
	emits, err := tp.HandleCBW(cbw.Bytes())
	require.NoError(t, err)
	require.Len(t, emits, 1)
	assert.Equal(t, EmitData, emits[0].Kind)
	assert.Len(t, emits[0].Data, BlockSize)
	assert.Equal(t, img[0:BlockSize], emits[0].Data)
	assert.Equal(t, StateData, tp.State())

	cswEmits, err := tp.ContinueData()
	require.NoError(t, err)
	require.Len(t, cswEmits, 1)
	assert.Equal(t, EmitCSW, cswEmits[0].Kind)

	csw, err := ParseCSW(cswEmits[0].Data)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xAABBCCDD), csw.Tag)
	assert.Equal(t, uint32(0), csw.DataResidue)
	assert.Equal(t, StatusPassed, csw.Status)

	tp.CSWSent()
	assert.Equal(t, StateCmd, tp.State())
}

func TestHandleCBWRead10ChunkedContinuation(t *testing.T) {
	img := make([]byte, 10*BlockSize)
	storage := NewStorage(img)
	d := NewDispatcher(storage, StorageConfig{})
	tp := NewTransport(d, 0, 4)

	cbw := read10CBW(1, 0, 10, 10*BlockSize)
	emits, err := tp.HandleCBW(cbw.Bytes())
	require.NoError(t, err)
	require.Len(t, emits, 1)
	assert.Len(t, emits[0].Data, 4*BlockSize)
	assert.Equal(t, StateData, tp.State())

	mid, err := tp.ContinueData()
	require.NoError(t, err)
	require.Len(t, mid, 1)
	assert.Equal(t, EmitData, mid[0].Kind)
	assert.Equal(t, StateData, tp.State())

	last, err := tp.ContinueData()
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, EmitData, last[0].Kind)
	assert.Equal(t, EmitCSW, last[1].Kind)
	assert.Equal(t, StateStatus, tp.State())
}

func inquiryCBW(tag uint32, dataLen uint32) *CBW {
	cbw := &CBW{
		Signature:          CbwSignature,
		Tag:                tag,
		DataTransferLength: dataLen,
		Flags:              0x80,
		LUN:                0,
		CBLength:           6,
	}
	copy(cbw.CB[:], []byte{opInquiry, 0, 0, 0, 0, 0})
	return cbw
}

func TestHandleCBWOverLengthResponseCapsDataAndFails(t *testing.T) {
	tp := newTestTransport(NewEmptyStorage())
	cbw := inquiryCBW(7, 10)
	emits, err := tp.HandleCBW(cbw.Bytes())
	require.NoError(t, err)
	assert.Equal(t, StateStatus, tp.State())

	require.Len(t, emits, 2)
	assert.Equal(t, EmitData, emits[0].Kind)
	assert.Len(t, emits[0].Data, 10, "emitted data must be capped to dCBWDataTransferLength")

	csw, err := ParseCSW(emits[1].Data)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, csw.Status)
	assert.Equal(t, uint32(0), csw.DataResidue, "all 10 declared bytes were sent, just truncated")
}

func TestHandleCBWZeroResponseWithResiduePadsBeforeCSW(t *testing.T) {
	tp := newTestTransport(NewStorage(make([]byte, BlockSize)))
	cbw := &CBW{
		Signature:          CbwSignature,
		Tag:                9,
		DataTransferLength: 64,
		Flags:              0x80,
		LUN:                0,
		CBLength:           6,
	}
	copy(cbw.CB[:], []byte{opTestUnitReady, 0, 0, 0, 0, 0})

	emits, err := tp.HandleCBW(cbw.Bytes())
	require.NoError(t, err)
	assert.Equal(t, StateStatus, tp.State())

	require.Len(t, emits, 2)
	assert.Equal(t, EmitData, emits[0].Kind)
	assert.Equal(t, make([]byte, 64), emits[0].Data)
	assert.Equal(t, EmitCSW, emits[1].Kind)

	csw, err := ParseCSW(emits[1].Data)
	require.NoError(t, err)
	assert.Equal(t, StatusPassed, csw.Status)
	assert.Equal(t, uint32(64), csw.DataResidue)
}

func TestPhaseErrorOnOutOfOrderCBW(t *testing.T) {
	tp := newTestTransport(NewStorage(make([]byte, BlockSize)))
	tp.state = StateData
	emits, err := tp.HandleCBW(read10CBW(1, 0, 1, BlockSize).Bytes())
	require.Error(t, err)
	var phaseErr *PhaseError
	require.ErrorAs(t, err, &phaseErr)
	assert.Equal(t, StateStatus, tp.State())

	require.Len(t, emits, 1)
	assert.Equal(t, EmitCSW, emits[0].Kind)
	csw, err := ParseCSW(emits[0].Data)
	require.NoError(t, err)
	assert.Equal(t, StatusPhaseError, csw.Status)
	assert.Equal(t, uint32(1), csw.Tag)
}

func TestResetRecoversFromNeedReset(t *testing.T) {
	tp := newTestTransport(NewEmptyStorage())
	tp.state = StateNeedReset
	tp.Reset()
	assert.Equal(t, StateCmd, tp.State())
}

func TestGetMaxLUNIsZero(t *testing.T) {
	tp := newTestTransport(NewEmptyStorage())
	assert.Equal(t, uint8(0), tp.GetMaxLUN())
}
