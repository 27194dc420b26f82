package qrtone

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestPercentileMedianConvergesOnUniformStream(t *testing.T) {
	p := NewPercentile(0.5)
	for i := 0; i < 1001; i++ {
		p.Add(float32(i))
	}
	// True median of 0..1000 is 500; P^2 is an approximation so allow slack.
	assert.InDelta(t, 500, p.Result(), 15)
}

func TestPercentileResultWithinObservedRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 200).Draw(rt, "n")
		values := rapid.SliceOfN(rapid.Float32Range(-1000, 1000), n, n).Draw(rt, "values")
		p := NewPercentile(0.5)
		minV, maxV := values[0], values[0]
		for _, v := range values {
			p.Add(v)
			if v < minV {
				minV = v
			}
			if v > maxV {
				maxV = v
			}
		}
		result := p.Result()
		assert.False(rt, math.IsNaN(float64(result)))
		assert.GreaterOrEqual(rt, result, minV)
		assert.LessOrEqual(rt, result, maxV)
	})
}
