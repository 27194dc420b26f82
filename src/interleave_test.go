package qrtone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestInterleaveFixedExample(t *testing.T) {
	symbols := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8}
	original := append([]byte(nil), symbols...)
	interleaveSymbols(symbols, 3)
	assert.Equal(t, []byte{0, 3, 6, 1, 4, 7, 2, 5, 8}, symbols)
	deinterleaveSymbols(symbols, 3)
	assert.Equal(t, original, symbols)
}

func TestInterleaveDeinterleaveIsInverseProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		blockSize := rapid.IntRange(1, 16).Draw(rt, "blockSize")
		length := rapid.IntRange(blockSize, blockSize*8).Draw(rt, "length")
		symbols := rapid.SliceOfN(rapid.Byte(), length, length).Draw(rt, "symbols")
		original := append([]byte(nil), symbols...)

		interleaveSymbols(symbols, blockSize)
		deinterleaveSymbols(symbols, blockSize)

		assert.Equal(rt, original, symbols)
	})
}
