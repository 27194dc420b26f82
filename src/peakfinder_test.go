package qrtone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPeakFinderFixedExample(t *testing.T) {
	values := []float32{4, 5, 7, 13, 10, 9, 9, 10, 4, 6, 7, 8, 11, 3, 2, 2}
	pf := NewPeakFinder(3, -1)
	var peaks []int64
	for i, v := range values {
		if pf.Add(int64(i), v) {
			peaks = append(peaks, pf.LastPeakIndex())
		}
	}
	assert.Equal(t, []int64{3, 12}, peaks)
}
