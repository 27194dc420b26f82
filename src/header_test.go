package qrtone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderEncodeDecodeRoundTrip(t *testing.T) {
	h := NewHeader(42, eccSymbols[ECCQuality][0], eccSymbols[ECCQuality][1], true, ECCQuality)
	data := h.Encode()

	decoded, ok := DecodeHeader(data[:])
	require.True(t, ok)
	assert.Equal(t, uint8(42), decoded.Length)
	assert.Equal(t, ECCQuality, decoded.ECCLevel)
	assert.True(t, decoded.CRC)
}

func TestHeaderDecodeRejectsFlippedCRC(t *testing.T) {
	h := NewHeader(10, eccSymbols[ECCLow][0], eccSymbols[ECCLow][1], false, ECCLow)
	data := h.Encode()
	data[0] ^= 0x01

	_, ok := DecodeHeader(data[:])
	assert.False(t, ok)
}

func TestHeaderGeometryMatchesFormula(t *testing.T) {
	h := NewHeader(20, 12, 6, true, ECCQuality)
	assert.Equal(t, 6, h.PayloadSymbolSize)
	assert.Equal(t, 3, h.PayloadByteSize)
	assert.Equal(t, ceilDiv((20+2)*2, 6), h.NumberOfBlocks)
	assert.Equal(t, h.NumberOfBlocks*6+(20+2)*2, h.NumberOfSymbols)
}
