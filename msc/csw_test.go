package msc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSWRoundTrip(t *testing.T) {
	csw := &CSW{Signature: CswSignature, Tag: 0x12345678, DataResidue: 0, Status: StatusPassed}
	parsed, err := ParseCSW(csw.Bytes())
	require.NoError(t, err)
	assert.Equal(t, csw, parsed)
}

func TestCSWBytesLength(t *testing.T) {
	csw := &CSW{}
	assert.Len(t, csw.Bytes(), CswLen)
}
