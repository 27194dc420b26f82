package qrtone

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuadraticInterpolationPeakAtCenter(t *testing.T) {
	location, height, halfCurvature := quadraticInterpolation(1, 2, 1)
	assert.InDelta(t, 0, location, 1e-6)
	assert.InDelta(t, 2, height, 1e-6)
	assert.Less(t, halfCurvature, float32(0))
}

func TestComputeFrequenciesIsMonotonicAndSpansGrid(t *testing.T) {
	frequencies := make([]float32, numFrequencies)
	computeFrequencies(frequencies, 0)

	assert.InDelta(t, audibleFirstFrequency, frequencies[0], 1e-3)
	for i := 1; i < len(frequencies); i++ {
		assert.Greater(t, frequencies[i], frequencies[i-1])
	}
}

func TestIterativeToneMatchesDirectSine(t *testing.T) {
	const sampleRate = 44100.0
	const frequency = 1720.0

	tone := newIterativeTone(frequency, sampleRate)
	for i := 0; i < 200; i++ {
		got := tone.next()
		want := math.Sin(2 * math.Pi * frequency * float64(i) / sampleRate)
		assert.InDelta(t, want, got, 1e-3)
	}
}

func TestIterativeHannMatchesDirectWindow(t *testing.T) {
	const windowSize = 128

	hann := newIterativeHann(windowSize)
	for i := 0; i < windowSize; i++ {
		got := hann.next()
		want := 0.5 - 0.5*math.Cos(twoPi*float64(i)/float64(windowSize-1))
		assert.InDelta(t, want, got, 1e-2)
	}
}

func TestApplyHannWindowZerosTheEdges(t *testing.T) {
	const windowLength = 64
	signal := make([]float32, windowLength)
	for i := range signal {
		signal[i] = 1
	}
	applyHannWindow(signal, windowLength, windowLength, 0)

	assert.InDelta(t, 0, signal[0], 1e-6)
	assert.InDelta(t, 0, signal[windowLength-1], 1e-6)
	assert.Greater(t, signal[windowLength/2], float32(0.9))
}

func TestComputeMinimumWindowSizeNeverBelowFiveCycles(t *testing.T) {
	const sampleRate = 44100.0
	const frequency = 1720.0

	windowSize := computeMinimumWindowSize(sampleRate, frequency, frequency*1.05)
	minCycles := int(math.Ceil(sampleRate * 5.0 / frequency))
	assert.GreaterOrEqual(t, windowSize, minCycles)
}
