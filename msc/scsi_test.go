package msc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestUnitReadyNoFilesystemSetsSense(t *testing.T) {
	d := NewDispatcher(NewEmptyStorage(), StorageConfig{})
	_, _, err := d.Dispatch([]byte{opTestUnitReady}, 0)
	require.Error(t, err)

	sense := d.handleRequestSense()
	assert.Equal(t, uint8(0x70), sense[0])
	assert.Equal(t, uint8(0x02), sense[2])
	assert.Equal(t, uint8(0x3A), sense[12])
}

func TestReadCapacity10AgainstByteImage(t *testing.T) {
	storage := NewStorage(make([]byte, 2048*BlockSize))
	d := NewDispatcher(storage, StorageConfig{})

	resp, cont, err := d.Dispatch([]byte{opReadCapacity10, 0, 0, 0, 0, 0, 0, 0, 0, 0}, 0)
	require.NoError(t, err)
	assert.Nil(t, cont)
	require.Len(t, resp, 8)
	assert.Equal(t, []byte{0x00, 0x00, 0x07, 0xFF}, resp[0:4])
	assert.Equal(t, []byte{0x00, 0x00, 0x02, 0x00}, resp[4:8])
}

func TestInquiryStandardResponse(t *testing.T) {
	cfg := StorageConfig{Vendor: "MPython ", Product: "MicroPython MSC ", Revision: "0000"}
	d := NewDispatcher(NewEmptyStorage(), cfg)

	resp, _, err := d.Dispatch([]byte{opInquiry, 0, 0, 0, 36, 0}, 0)
	require.NoError(t, err)
	require.Len(t, resp, 36)
	assert.Equal(t, "MPython ", string(resp[8:16]))
	assert.Equal(t, "MicroPython MSC ", string(resp[16:32]))
	assert.Equal(t, "0000", string(resp[32:36]))
}

func TestInquiryEvpdSerialPage(t *testing.T) {
	d := NewDispatcher(NewEmptyStorage(), StorageConfig{})
	resp, _, err := d.Dispatch([]byte{opInquiry, 0x01, 0x80, 0, 10, 0}, 0)
	require.NoError(t, err)
	require.Len(t, resp, 14)
	assert.Equal(t, uint8(0x80), resp[1])
}

func TestValidateRejectsUnknownOpcode(t *testing.T) {
	d := NewDispatcher(NewEmptyStorage(), StorageConfig{})
	assert.False(t, d.Validate([]byte{0xFF}))
	assert.Equal(t, InvalidCommand, d.sense)
}

func TestRead10SplitsIntoContinuationUnderBudget(t *testing.T) {
	img := make([]byte, 10*BlockSize)
	for i := range img {
		img[i] = byte(i)
	}
	d := NewDispatcher(NewStorage(img), StorageConfig{})

	cmd := []byte{opRead10, 0, 0, 0, 0, 0, 0, 0, 10, 0}
	first, cont, err := d.Dispatch(cmd, 4)
	require.NoError(t, err)
	require.NotNil(t, cont)
	assert.Len(t, first, 4*BlockSize)
	assert.Equal(t, uint32(6), cont.RemainingBlocks)

	second, err := cont.Next(4)
	require.NoError(t, err)
	assert.Len(t, second, 4*BlockSize)
	assert.Equal(t, uint32(2), cont.RemainingBlocks)

	third, err := cont.Next(4)
	require.NoError(t, err)
	assert.Len(t, third, 2*BlockSize)
	assert.True(t, cont.Done())
}

func TestRead10WithinBudgetHasNoContinuation(t *testing.T) {
	img := make([]byte, 1*BlockSize)
	d := NewDispatcher(NewStorage(img), StorageConfig{})

	cmd := []byte{opRead10, 0, 0, 0, 0, 0, 0, 0, 1, 0}
	resp, cont, err := d.Dispatch(cmd, 0)
	require.NoError(t, err)
	assert.Nil(t, cont)
	assert.Len(t, resp, BlockSize)
}
