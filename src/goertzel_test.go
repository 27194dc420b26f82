package qrtone

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGoertzelRMSOfPureSine(t *testing.T) {
	const sampleRate = 44100.0
	const frequency = 1720.0
	const amplitude = 0.5
	windowSize := int(10 * sampleRate / frequency) // >= 10 periods

	g := NewGoertzel(sampleRate, frequency, windowSize, false)
	samples := make([]float32, windowSize)
	for i := range samples {
		samples[i] = amplitude * float32(math.Sqrt(2)) * float32(math.Sin(2*math.Pi*frequency*float64(i)/sampleRate))
	}
	g.ProcessSamples(samples)
	rms := g.ComputeRMS()
	assert.InEpsilon(t, amplitude, rms, 0.01)
}

func TestGoertzelAcceptsPartialFeeds(t *testing.T) {
	const sampleRate = 44100.0
	const frequency = 1720.0
	windowSize := int(10 * sampleRate / frequency)

	whole := NewGoertzel(sampleRate, frequency, windowSize, false)
	split := NewGoertzel(sampleRate, frequency, windowSize, false)

	samples := make([]float32, windowSize)
	for i := range samples {
		samples[i] = float32(math.Sin(2 * math.Pi * frequency * float64(i) / sampleRate))
	}
	whole.ProcessSamples(samples)

	mid := windowSize / 3
	split.ProcessSamples(samples[:mid])
	split.ProcessSamples(samples[mid:])

	assert.InDelta(t, whole.ComputeRMS(), split.ComputeRMS(), 1e-4)
}
