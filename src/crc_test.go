package qrtone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRC8FixedVector(t *testing.T) {
	var crc CRC8
	crc.AddArray([]byte{0x0A, 0x0F, 0x08, 0x01, 0x05, 0x0B, 0x03})
	assert.Equal(t, uint8(0xEA), crc.Get())
}

func TestCRC16FixedVector(t *testing.T) {
	var crc CRC16
	crc.AddArray([]byte("ABCDEFGHIJ"))
	assert.Equal(t, int32(0x0C9E), crc.Get())
}

func TestCRC8EmptyIsZero(t *testing.T) {
	var crc CRC8
	assert.Equal(t, uint8(0), crc.Get())
}

func TestCRC16EmptyIsZero(t *testing.T) {
	var crc CRC16
	assert.Equal(t, int32(0), crc.Get())
}
