package qrtone

import "math"

// Goertzel is an incremental single-frequency DFT magnitude estimator. It
// is fed samples across any number of ProcessSamples calls and only
// computes its RMS value once window_size samples have been seen, which is
// what lets the modem stream audio in small chunks instead of buffering a
// whole analysis window.
type Goertzel struct {
	s0, s1, s2     float32
	cosPikTerm2    float32
	pikTerm        float32
	lastSample     float32
	sampleRate     float32
	windowSize     int
	processed      int
	hannWindow     bool
	windowCache    []float32
}

// NewGoertzel builds an analyzer for one frequency bin over windowSize
// samples at sampleRate, optionally applying a Hann window to incoming
// samples (used for tone/header demodulation, not for the trigger gates).
func NewGoertzel(sampleRate, frequency float32, windowSize int, hann bool) *Goertzel {
	g := &Goertzel{
		sampleRate: sampleRate,
		windowSize: windowSize,
		hannWindow: hann,
	}
	if hann {
		g.windowCache = make([]float32, windowSize/2+1)
		for i := range g.windowCache {
			g.windowCache[i] = 1.0
		}
		applyHannWindow(g.windowCache, len(g.windowCache), windowSize, 0)
	}
	samplingRateFactor := float32(windowSize) / sampleRate
	g.pikTerm = twoPi * (frequency * samplingRateFactor) / float32(windowSize)
	g.cosPikTerm2 = float32(math.Cos(float64(g.pikTerm))) * 2.0
	g.Reset()
	return g
}

// Reset clears accumulated state without rebuilding the window cache.
func (g *Goertzel) Reset() {
	g.s0, g.s1, g.s2 = 0, 0, 0
	g.processed = 0
	g.lastSample = 0
}

// WindowSize returns the number of samples this analyzer integrates over.
func (g *Goertzel) WindowSize() int { return g.windowSize }

// ProcessedSamples returns how many samples of the current window have
// been consumed so far.
func (g *Goertzel) ProcessedSamples() int { return g.processed }

// ProcessSamples feeds samples into the recursive filter. A call whose
// samples would run past the window boundary is ignored entirely (none of
// its samples are processed), matching the reference analyzer's
// all-or-nothing window discipline.
func (g *Goertzel) ProcessSamples(samples []float32) {
	samplesLen := len(samples)
	if g.processed+samplesLen > g.windowSize {
		return
	}
	size := samplesLen
	if g.processed+samplesLen == g.windowSize {
		size = samplesLen - 1
		if !g.hannWindow {
			g.lastSample = samples[size]
		} else {
			g.lastSample = 0
		}
	}
	for i := 0; i < size; i++ {
		var sample float32
		if g.hannWindow {
			var hann float32
			if i+g.processed < len(g.windowCache) {
				hann = g.windowCache[i+g.processed]
			} else {
				hann = g.windowCache[(g.windowSize-1)-(i+g.processed)]
			}
			sample = samples[i] * hann
		} else {
			sample = samples[i]
		}
		s0 := sample + g.cosPikTerm2*g.s1 - g.s2
		g.s2 = g.s1
		g.s1 = s0
	}
	g.processed += samplesLen
}

// ComputeRMS finalizes the current window and returns its RMS magnitude,
// resetting the analyzer for the next window. The final iteration and a
// phase correction for non-integer bin frequencies are folded in via a
// small complex-exponential substitution rather than one extra recursive
// step, following the reference analyzer.
func (g *Goertzel) ComputeRMS() float32 {
	g.s0 = g.lastSample + g.cosPikTerm2*g.s1 - g.s2

	ccR, ccI := cxExpF(g.pikTerm)
	// parta = (s0, 0) - (s1, 0)*cc
	mulR, mulI := cxMulF(g.s1, 0, ccR, ccI)
	partaR, partaI := g.s0-mulR, -mulI
	partbR, partbI := cxExpF(g.pikTerm * (float32(g.windowSize) - 1.0))
	yR, yI := cxMulF(partaR, partaI, partbR, partbI)

	g.Reset()
	return float32(math.Sqrt(float64(yR*yR+yI*yI)*2.0)) / float32(g.windowSize)
}

// cxExpF returns e^(i*theta) for a real angle theta, float32 precision,
// matching the reference CX_EXP helper used to correct Goertzel's phase.
func cxExpF(theta float32) (r, i float32) {
	return float32(math.Cos(float64(theta))), float32(-math.Sin(float64(theta)))
}

func cxMulF(ar, ai, br, bi float32) (float32, float32) {
	return ar*br - ai*bi, ar*bi + ai*br
}
