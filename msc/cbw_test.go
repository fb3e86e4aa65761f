package msc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCBWRoundTrip(t *testing.T) {
	cbw := &CBW{
		Signature:          CbwSignature,
		Tag:                0xDEADBEEF,
		DataTransferLength: 512,
		Flags:              0x80,
		LUN:                0,
		CBLength:           10,
	}
	copy(cbw.CB[:], []byte{0x28, 0, 0, 0, 0, 0, 0, 1, 0, 0})

	parsed, err := ParseCBW(cbw.Bytes())
	require.NoError(t, err)
	assert.Equal(t, cbw, parsed)
}

func TestParseCBWRejectsWrongLength(t *testing.T) {
	_, err := ParseCBW(make([]byte, 30))
	require.Error(t, err)
	var badCbw *BadCbwError
	require.ErrorAs(t, err, &badCbw)
}

func TestParseCBWRejectsWrongSignature(t *testing.T) {
	cbw := &CBW{Signature: 0xDEADBEEF, CBLength: 6}
	_, err := ParseCBW(cbw.Bytes())
	require.Error(t, err)
}

func TestCBWDirectionIn(t *testing.T) {
	noData := &CBW{DataTransferLength: 0}
	isIn, hasData := noData.DirectionIn()
	assert.False(t, hasData)
	assert.False(t, isIn)

	in := &CBW{DataTransferLength: 512, Flags: 0x80}
	isIn, hasData = in.DirectionIn()
	assert.True(t, hasData)
	assert.True(t, isIn)

	out := &CBW{DataTransferLength: 512, Flags: 0x00}
	isIn, hasData = out.DirectionIn()
	assert.True(t, hasData)
	assert.False(t, isIn)
}
