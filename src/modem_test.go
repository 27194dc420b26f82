package qrtone

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const testSampleRate = 44100.0

func dbfsToLinear(db float64) float32 {
	return float32(math.Pow(10, db/20))
}

// decodeChunked feeds buf into dec in pieces bounded by GetMaximumLength,
// the contract every caller of PushSamples must respect, using a
// deterministic chunk-size sequence derived from seed.
func decodeChunked(dec *Modem, buf []float32, seed int64) bool {
	rng := rand.New(rand.NewSource(seed))
	offset := 0
	for offset < len(buf) {
		maxLen := dec.GetMaximumLength()
		if maxLen <= 0 {
			maxLen = 1
		}
		chunk := 1 + rng.Intn(maxLen)
		if offset+chunk > len(buf) {
			chunk = len(buf) - offset
		}
		if dec.PushSamples(buf[offset : offset+chunk]) {
			return true
		}
		offset += chunk
	}
	return false
}

func TestModemCleanRoundTrip(t *testing.T) {
	payload := []byte{0x00, 0x04, 'n', 'i', 'c', 'o', 0x01, 0x05, 'h', 'e', 'l', 'l', 'o'}

	enc := NewModem(testSampleRate)
	total := enc.SetPayloadExt(payload, ECCQuality, true)
	require.Greater(t, total, 0)

	buf := make([]float32, total)
	enc.GetSamples(buf, 0, dbfsToLinear(-16))

	dec := NewModem(testSampleRate)
	ok := decodeChunked(dec, buf, 1)
	require.True(t, ok)
	assert.Equal(t, payload, dec.GetPayload())
	assert.Equal(t, 0, dec.GetFixedErrors())
}

func TestModemHeaderCRCFlipRejectsFrame(t *testing.T) {
	payload := []byte{0x00, 0x04, 'n', 'i', 'c', 'o', 0x01, 0x05, 'h', 'e', 'l', 'l', 'o'}

	enc := NewModem(testSampleRate)
	total := enc.SetPayloadExt(payload, ECCQuality, true)
	require.Greater(t, total, 0)
	// Corrupt two header symbols, more than the header's two Reed-Solomon
	// parity symbols can repair, so the header is rejected.
	enc.symbolsToDeliver[0] ^= 0x01
	enc.symbolsToDeliver[1] ^= 0x01

	buf := make([]float32, total)
	enc.GetSamples(buf, 0, dbfsToLinear(-16))

	dec := NewModem(testSampleRate)
	ok := decodeChunked(dec, buf, 2)
	assert.False(t, ok)
}

func TestModemNoisyPayloadRecovered(t *testing.T) {
	payload := []byte("bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi")[:34]

	enc := NewModem(testSampleRate)
	total := enc.SetPayloadExt(payload, ECCQuality, true)
	require.Greater(t, total, 0)

	silence := int(0.35 * testSampleRate)
	full := make([]float32, silence+total+silence)

	noiseAmplitude := dbfsToLinear(-50)
	for i := range full {
		full[i] += noiseAmplitude * float32(math.Sin(2*math.Pi*125*float64(i)/testSampleRate))
	}
	enc.GetSamples(full[silence:silence+total], 0, dbfsToLinear(-16))

	dec := NewModem(testSampleRate)
	ok := decodeChunked(dec, full, 3)
	require.True(t, ok)
	assert.Equal(t, payload, dec.GetPayload())
}

func TestModemEncodeDecodeRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		length := rapid.IntRange(0, 48).Draw(rt, "length")
		payload := rapid.SliceOfN(rapid.Byte(), length, length).Draw(rt, "payload")
		eccLevel := ECCLevel(rapid.IntRange(0, 3).Draw(rt, "ecc"))
		addCRC := rapid.Bool().Draw(rt, "crc")

		enc := NewModem(testSampleRate)
		total := enc.SetPayloadExt(payload, eccLevel, addCRC)
		if total == 0 {
			return
		}
		buf := make([]float32, total)
		enc.GetSamples(buf, 0, dbfsToLinear(-12))

		dec := NewModem(testSampleRate)
		ok := decodeChunked(dec, buf, 7)
		require.True(rt, ok)
		assert.Equal(rt, payload, dec.GetPayload())
		assert.Equal(rt, 0, dec.GetFixedErrors())
	})
}

func TestModemGetSamplesIsAdditive(t *testing.T) {
	enc := NewModem(testSampleRate)
	total := enc.SetPayloadExt([]byte("hi"), ECCLow, false)
	require.Greater(t, total, 0)

	buf := make([]float32, total)
	for i := range buf {
		buf[i] = 0.01
	}
	before := append([]float32(nil), buf...)
	enc.GetSamples(buf, 0, dbfsToLinear(-16))

	changed := false
	for i := range buf {
		if buf[i] != before[i] {
			changed = true
			break
		}
	}
	assert.True(t, changed)
}
