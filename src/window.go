package qrtone

import "math"

const (
	twoPi = 6.283185307179586
	pi    = 3.14159265358979323846
)

// applyHannWindow multiplies signal in place by a Hann window of the given
// total windowLength, starting at offset — used both to pre-window whole
// buffers and to window a chunk that only covers part of the window.
func applyHannWindow(signal []float32, signalLength, windowLength, offset int) {
	for i := 0; i < signalLength && offset+i < windowLength; i++ {
		signal[i] = signal[i] * (0.5 - 0.5*float32(math.Cos(twoPi*float64(i+offset)/float64(windowLength-1))))
	}
}

// applyTukeyWindow multiplies signal in place by a Tukey (tapered cosine)
// window: flat in the middle, cosine-tapered for alpha*(windowLength-1)/2
// samples at each end.
func applyTukeyWindow(signal []float32, alpha float32, signalLength, windowLength, offset int) {
	indexBeginFlat := int(math.Floor(float64(alpha) * float64(windowLength-1) / 2.0))
	indexEndFlat := windowLength - indexBeginFlat

	for i := offset; i < indexBeginFlat+1 && i-offset < signalLength; i++ {
		w := 0.5 * (1.0 + math.Cos(pi*(-1.0+2.0*float64(i)/float64(alpha)/float64(windowLength-1))))
		signal[i-offset] *= float32(w)
	}

	start := offset
	if indexEndFlat-1 > start {
		start = indexEndFlat - 1
	}
	for i := start; i < windowLength && i-offset < signalLength; i++ {
		w := 0.5 * (1.0 + math.Cos(pi*(-2.0/float64(alpha)+1.0+2.0*float64(i)/float64(alpha)/float64(windowLength-1))))
		signal[i-offset] *= float32(w)
	}
}

// quadraticInterpolation fits a parabola through three equally-spaced
// samples with p1 at the peak, returning the sub-sample location (relative
// to p1, in units of sample spacing), height, and half-curvature of the
// fit. See https://www.dsprelated.com/freebooks/sasp/Sinusoidal_Peak_Interpolation.html
func quadraticInterpolation(p0, p1, p2 float32) (location, height, halfCurvature float32) {
	location = (p2 - p0) / (2.0 * (2.0*p1 - p2 - p0))
	height = p1 - 0.25*(p0-p2)*location
	halfCurvature = 0.5 * (p0 - 2.0*p1 + p2)
	return location, height, halfCurvature
}

// findPeakLocation evaluates the peak sample index of a gaussian fit
// through three points spaced windowLength samples apart, p1 located at
// p1Location.
func findPeakLocation(p0, p1, p2 float32, p1Location int64, windowLength int) int64 {
	location, _, _ := quadraticInterpolation(p0, p1, p2)
	return p1Location + int64(location*float32(windowLength))
}

// iterativeTone generates a pure sine tone sample-by-sample using a
// second-order recursive oscillator instead of calling sin() per sample.
type iterativeTone struct {
	k1         float32
	originalK2 float32
	k2         float32
	k3         float32
	index      int
}

func newIterativeTone(frequency, sampleRate float32) *iterativeTone {
	t := &iterativeTone{}
	ffs := frequency / sampleRate
	t.k1 = 2 * float32(math.Cos(twoPi*float64(ffs)))
	t.originalK2 = float32(math.Sin(twoPi * float64(ffs)))
	t.reset()
	return t
}

func (t *iterativeTone) reset() {
	t.index = 0
	t.k2 = t.originalK2
	t.k3 = 0
}

func (t *iterativeTone) next() float32 {
	switch {
	case t.index >= 2:
		tmp := t.k2
		t.k2 = t.k1*t.k2 - t.k3
		t.k3 = tmp
		return t.k2
	case t.index == 1:
		t.index++
		return t.k2
	default:
		t.index++
		return 0
	}
}

// iterativeHann generates Hann window coefficients sample-by-sample with
// the same recursive-oscillator trick as iterativeTone.
type iterativeHann struct {
	k1, k2, k3 float32
	index      int
}

func newIterativeHann(windowSize int) *iterativeHann {
	h := &iterativeHann{}
	h.k1 = 2.0 * float32(math.Cos(twoPi/float64(windowSize-1)))
	h.reset()
	return h
}

func (h *iterativeHann) reset() {
	h.index = 0
	h.k2 = h.k1 / 2.0
	h.k3 = 1.0
}

func (h *iterativeHann) next() float32 {
	switch {
	case h.index >= 2:
		tmp := h.k2
		h.k2 = h.k1*h.k2 - h.k3
		h.k3 = tmp
		return 0.5 - 0.5*h.k2
	case h.index == 1:
		h.index++
		return 0.5 - 0.5*h.k2
	default:
		h.index++
		return 0
	}
}

// computeFrequencies fills the 32-tone DTMF-like grid, spaced in equal
// semitones above audibleFirstFrequency, optionally shifted by a
// fractional-semitone offset (used to probe neighboring bins for the
// minimum leak-free analysis window).
func computeFrequencies(frequencies []float32, offset float32) {
	for i := range frequencies {
		frequencies[i] = audibleFirstFrequency * float32(math.Pow(float64(multSemitone), float64(i)+float64(offset)))
	}
}

// computeMinimumWindowSize returns the smallest Goertzel window that can
// resolve targetFrequency from its nearest neighbor on the tone grid
// without spectral leakage, never shorter than 5 cycles of the target tone.
func computeMinimumWindowSize(sampleRate, targetFrequency, closestFrequency float32) int {
	maxBinSize := float32(math.Abs(float64(closestFrequency-targetFrequency))) / 2.0
	windowSize := int(math.Ceil(float64(sampleRate / maxBinSize)))
	minCycles := int(math.Ceil(float64(sampleRate) * (5.0 * (1.0 / float64(targetFrequency)))))
	if windowSize > minCycles {
		return windowSize
	}
	return minCycles
}
