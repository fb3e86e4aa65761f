package msc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageFromImage(t *testing.T) {
	img := make([]byte, 4*BlockSize)
	for i := range img {
		img[i] = byte(i)
	}
	s := NewStorage(img)
	assert.True(t, s.Present())
	assert.Equal(t, uint32(4), s.BlockCount())
	assert.Equal(t, uint32(BlockSize), s.BlockSize())

	buf := make([]byte, BlockSize)
	require.NoError(t, s.ReadBlocks(1, buf))
	assert.Equal(t, img[BlockSize:2*BlockSize], buf)
}

func TestStorageReadPastEndErrors(t *testing.T) {
	s := NewStorage(make([]byte, BlockSize))
	buf := make([]byte, 2*BlockSize)
	err := s.ReadBlocks(0, buf)
	require.Error(t, err)
}

func TestEmptyStorageReportsAbsent(t *testing.T) {
	s := NewEmptyStorage()
	assert.False(t, s.Present())
	assert.Equal(t, uint32(0), s.BlockCount())
	assert.Equal(t, uint32(BlockSize), s.BlockSize())

	err := s.ReadBlocks(0, make([]byte, BlockSize))
	require.Error(t, err)
}

type fakeBackend struct {
	blocks uint32
}

func (f *fakeBackend) BlockCount() uint32 { return f.blocks }
func (f *fakeBackend) BlockSize() uint32  { return BlockSize }
func (f *fakeBackend) ReadBlocks(lba uint32, buf []byte) error {
	for i := range buf {
		buf[i] = byte(lba)
	}
	return nil
}

func TestStorageFromBackend(t *testing.T) {
	s := NewStorageFromBackend(&fakeBackend{blocks: 2048})
	assert.True(t, s.Present())
	assert.Equal(t, uint32(2048), s.BlockCount())
}

func TestMaxBlocksAppliesBudgetDivisor(t *testing.T) {
	cfg := StorageConfig{BudgetDivisor: 10}
	got := cfg.MaxBlocks(50*1024, BlockSize)
	assert.Equal(t, uint32(10), got)
}

func TestMaxBlocksNeverBelowOne(t *testing.T) {
	cfg := StorageConfig{BudgetDivisor: 10}
	got := cfg.MaxBlocks(100, BlockSize)
	assert.Equal(t, uint32(1), got)
}

func TestMaxBlocksZeroDivisorTreatedAsOne(t *testing.T) {
	cfg := StorageConfig{BudgetDivisor: 0}
	got := cfg.MaxBlocks(4*BlockSize, BlockSize)
	assert.Equal(t, uint32(4), got)
}
