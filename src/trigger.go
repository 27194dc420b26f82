package qrtone

import "math"

// LevelCallback receives one (timeLocation, gate1Level, gate2Level,
// triggered) observation per trigger-analysis window, in dB SPL relative
// to full scale. It is purely diagnostic — see Modem.SetLevelCallback.
type LevelCallback func(timeLocation int64, gate1Level, gate2Level float32, triggered bool)

// triggerAnalyzer runs two overlapping (50%) Goertzel pipelines per gate
// frequency to detect the two-tone chirp that precedes a frame, locking
// onto the first tone's exact sample index once the SNR and ordering
// conditions are met.
type triggerAnalyzer struct {
	processedWindowAlpha int
	processedWindowBeta  int
	windowOffset         int
	gateLength           int
	freqAnalyzersAlpha   [2]*Goertzel
	freqAnalyzersBeta    [2]*Goertzel
	backgroundNoise      *Percentile
	splHistory           [2]*FloatRing
	peakFinder           *PeakFinder
	windowAnalyze        int
	frequencies          [2]float32
	sampleRate           float32
	windowCache          []float32
	triggerSNR           float32
	firstToneLocation    int64
	levelCallback        LevelCallback
}

func newTriggerAnalyzer(sampleRate float32, gateLength, windowAnalyze int, gateFrequencies [2]float32, triggerSNR float32) *triggerAnalyzer {
	t := &triggerAnalyzer{
		firstToneLocation: -1,
		windowAnalyze:     windowAnalyze,
		sampleRate:        sampleRate,
		triggerSNR:        triggerSNR,
		gateLength:        gateLength,
		frequencies:       gateFrequencies,
	}
	t.windowOffset = t.windowAnalyze / 2
	t.backgroundNoise = NewPercentile(percentileBackground)
	for i := 0; i < 2; i++ {
		t.freqAnalyzersAlpha[i] = NewGoertzel(sampleRate, gateFrequencies[i], windowAnalyze, false)
		t.freqAnalyzersBeta[i] = NewGoertzel(sampleRate, gateFrequencies[i], windowAnalyze, false)
		t.splHistory[i] = NewFloatRing((gateLength * 3) / t.windowOffset)
	}
	slopeWindows := 1
	if v := (gateLength / 2) / t.windowOffset; v > slopeWindows {
		slopeWindows = v
	}
	t.peakFinder = NewPeakFinder(-1, slopeWindows)

	windowCacheLength := t.windowAnalyze/2 + 1
	t.windowCache = make([]float32, windowCacheLength)
	for i := range t.windowCache {
		t.windowCache[i] = 1.0
	}
	applyHannWindow(t.windowCache, len(t.windowCache), t.windowAnalyze, 0)
	return t
}

func (t *triggerAnalyzer) reset() {
	t.firstToneLocation = -1
	t.peakFinder = NewPeakFinder(t.peakFinder.minIncreaseCount, t.peakFinder.minDecreaseCount)
	t.processedWindowAlpha = 0
	t.processedWindowBeta = 0
	for i := 0; i < 2; i++ {
		t.freqAnalyzersAlpha[i].Reset()
		t.freqAnalyzersBeta[i].Reset()
		t.splHistory[i].Clear()
	}
}

func (t *triggerAnalyzer) maximumWindowLength() int {
	a := t.windowAnalyze - t.processedWindowAlpha
	b := t.windowAnalyze - t.processedWindowBeta
	if a < b {
		return a
	}
	return b
}

// process feeds samples through one of the two overlapping pipelines
// (selected by windowProcessed/analyzers), stopping early once a trigger
// location has been located.
func (t *triggerAnalyzer) process(totalProcessed int64, samples []float32, windowProcessed *int, analyzers [2]*Goertzel) {
	processed := 0
	samplesLength := len(samples)
	for t.firstToneLocation == -1 && processed < samplesLength {
		toProcess := samplesLength - processed
		if v := t.windowAnalyze - *windowProcessed; v < toProcess {
			toProcess = v
		}
		for i := 0; i < toProcess; i++ {
			var hann float32
			if i+*windowProcessed < len(t.windowCache) {
				hann = t.windowCache[i+*windowProcessed]
			} else {
				hann = t.windowCache[(t.windowAnalyze-1)-(i+*windowProcessed)]
			}
			samples[i+processed] *= hann
		}
		for idFreq := 0; idFreq < 2; idFreq++ {
			analyzers[idFreq].ProcessSamples(samples[processed : processed+toProcess])
		}
		processed += toProcess
		*windowProcessed += toProcess
		if *windowProcessed == t.windowAnalyze {
			*windowProcessed = 0
			var splLevels [2]float32
			for idFreq := 0; idFreq < 2; idFreq++ {
				splLevel := 20.0 * float32(math.Log10(float64(analyzers[idFreq].ComputeRMS())))
				splLevels[idFreq] = splLevel
				t.splHistory[idFreq].Add(splLevel)
			}
			t.backgroundNoise.Add(splLevels[1])
			location := totalProcessed + int64(processed) - int64(t.windowAnalyze)
			triggered := false
			if t.peakFinder.Add(location, splLevels[1]) {
				elementIndex := t.peakFinder.LastPeakIndex()
				elementValue := t.peakFinder.LastPeakValue()
				backgroundNoiseSecondPeak := t.backgroundNoise.Result()
				if elementValue > backgroundNoiseSecondPeak+t.triggerSNR {
					peakIndex := t.splHistory[1].Size() - 1 - int(location/int64(t.windowOffset)-elementIndex/int64(t.windowOffset))
					if peakIndex >= 0 && peakIndex < t.splHistory[0].Size() && t.splHistory[0].Get(peakIndex) < elementValue-t.triggerSNR {
						firstPeakIndex := peakIndex - t.gateLength/t.windowOffset
						triggered = firstPeakIndex >= 0 && firstPeakIndex < t.splHistory[0].Size() &&
							t.splHistory[0].Get(firstPeakIndex) > elementValue-t.triggerSNR
						if firstPeakIndex >= 0 && firstPeakIndex < t.splHistory[0].Size() &&
							t.splHistory[0].Get(firstPeakIndex) > elementValue-t.triggerSNR &&
							t.splHistory[1].Get(firstPeakIndex) < elementValue-t.triggerSNR {
							peakLocation := findPeakLocation(
								t.splHistory[1].Get(peakIndex-1),
								t.splHistory[1].Get(peakIndex),
								t.splHistory[1].Get(peakIndex+1),
								elementIndex, t.windowOffset)
							t.firstToneLocation = peakLocation + int64(t.gateLength/2) + int64(t.windowOffset)
						}
					}
				}
			}
			if t.levelCallback != nil {
				t.levelCallback(totalProcessed+int64(processed)-int64(t.windowAnalyze), splLevels[0], splLevels[1], triggered)
			}
		}
	}
}

// processSamples feeds one chunk of audio into both overlapping pipelines.
// The beta pipeline starts window_offset samples later than alpha, which
// is why it needs special-cased startup handling for the first couple of
// chunks.
func (t *triggerAnalyzer) processSamples(totalProcessed int64, samples []float32) {
	samplesAlpha := append([]float32(nil), samples...)
	t.process(totalProcessed, samplesAlpha, &t.processedWindowAlpha, t.freqAnalyzersAlpha)
	if totalProcessed > int64(t.windowOffset) {
		samplesBeta := append([]float32(nil), samples...)
		t.process(totalProcessed, samplesBeta, &t.processedWindowBeta, t.freqAnalyzersBeta)
	} else if int64(t.windowOffset)-totalProcessed < int64(len(samples)) {
		from := int(int64(t.windowOffset) - totalProcessed)
		samplesBeta := append([]float32(nil), samples[from:]...)
		t.process(totalProcessed+int64(from), samplesBeta, &t.processedWindowBeta, t.freqAnalyzersBeta)
	}
}
