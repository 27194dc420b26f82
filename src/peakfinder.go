package qrtone

// PeakFinder detects local maxima in a stream of (index, value) samples by
// tracking increase/decrease run lengths: a peak fires once the signal has
// increased for at least minIncreaseCount samples and then decreased for
// at least minDecreaseCount samples (a negative minDecreaseCount disables
// the decrease requirement and a peak fires as soon as the increase run
// ends).
type PeakFinder struct {
	increase         bool
	oldVal           float32
	oldIndex         int64
	added            bool
	lastPeakValue    float32
	lastPeakIndex    int64
	increaseCount    int
	decreaseCount    int
	minIncreaseCount int
	minDecreaseCount int
}

// NewPeakFinder builds a peak finder with the given run-length thresholds.
func NewPeakFinder(minIncreaseCount, minDecreaseCount int) *PeakFinder {
	return &PeakFinder{
		increase:         true,
		oldVal:           -99999999999999999.0,
		minIncreaseCount: minIncreaseCount,
		minDecreaseCount: minDecreaseCount,
	}
}

// Add folds in a new sample, returning true if a peak was just confirmed.
func (p *PeakFinder) Add(index int64, value float32) bool {
	ret := false
	diff := value - p.oldVal
	if diff <= 0 && p.increase {
		if p.increaseCount >= p.minIncreaseCount {
			p.lastPeakIndex = p.oldIndex
			p.lastPeakValue = p.oldVal
			p.added = true
			if p.minDecreaseCount <= 1 {
				ret = true
			}
		}
	} else if diff > 0 && !p.increase {
		if p.added && p.minDecreaseCount != -1 && p.decreaseCount < p.minDecreaseCount {
			p.lastPeakIndex = 0
			p.added = false
		}
	}
	p.increase = diff > 0
	if p.increase {
		p.increaseCount++
		p.decreaseCount = 0
	} else {
		p.decreaseCount++
		if p.decreaseCount >= p.minDecreaseCount && p.added {
			p.added = false
			ret = true
		}
		p.increaseCount = 0
	}
	p.oldVal = value
	p.oldIndex = index
	return ret
}

// LastPeakIndex returns the index of the most recently confirmed peak.
func (p *PeakFinder) LastPeakIndex() int64 {
	return p.lastPeakIndex
}

// LastPeakValue returns the value of the most recently confirmed peak.
func (p *PeakFinder) LastPeakValue() float32 {
	return p.lastPeakValue
}
