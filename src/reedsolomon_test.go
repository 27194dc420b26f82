package qrtone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestReedSolomonEncodeDecodeNoErrors(t *testing.T) {
	rs := NewReedSolomon(0x13, 16, 1)
	data := []int32{1, 2, 3, 4, 5, 6, 7, 8}
	block := make([]int32, len(data)+4)
	copy(block, data)
	require.NoError(t, rs.Encode(block, 4))

	fixed := 0
	require.NoError(t, Decode(rs.Field(), block, 4, &fixed))
	assert.Equal(t, 0, fixed)
	assert.Equal(t, data, block[:len(data)])
}

func TestReedSolomonCorrectsSingleSymbolError(t *testing.T) {
	rs := NewReedSolomon(0x13, 16, 1)
	data := []int32{1, 2, 3, 4, 5, 6, 7, 8}
	block := make([]int32, len(data)+4)
	copy(block, data)
	require.NoError(t, rs.Encode(block, 4))

	corrupted := append([]int32(nil), block...)
	corrupted[2] ^= 0x0F

	fixed := 0
	require.NoError(t, Decode(rs.Field(), corrupted, 4, &fixed))
	assert.Equal(t, 1, fixed)
	assert.Equal(t, block, corrupted)
}

func TestReedSolomonUncorrectableReturnsError(t *testing.T) {
	rs := NewReedSolomon(0x13, 16, 1)
	data := []int32{1, 2, 3, 4, 5, 6, 7, 8}
	block := make([]int32, len(data)+4)
	copy(block, data)
	require.NoError(t, rs.Encode(block, 4))

	for i := range block {
		block[i] ^= 0x0F
	}

	fixed := 0
	err := Decode(rs.Field(), block, 4, &fixed)
	assert.Error(t, err)
}

func TestReedSolomonEncodeRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		rs := NewReedSolomon(0x13, 16, 1)
		dataLen := rapid.IntRange(1, 12).Draw(rt, "dataLen")
		ecLen := rapid.IntRange(2, 6).Draw(rt, "ecLen")
		data := make([]int32, dataLen)
		for i := range data {
			data[i] = int32(rapid.IntRange(0, 15).Draw(rt, "symbol"))
		}
		block := make([]int32, dataLen+ecLen)
		copy(block, data)
		require.NoError(rt, rs.Encode(block, ecLen))

		fixed := 0
		require.NoError(rt, Decode(rs.Field(), block, ecLen, &fixed))
		assert.Equal(rt, 0, fixed)
		assert.Equal(rt, data, block[:dataLen])
	})
}
