package qrtone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloatRingOldestToNewestOrdering(t *testing.T) {
	r := NewFloatRing(4)
	for _, v := range []float32{1, 2, 3} {
		r.Add(v)
	}
	assert.Equal(t, 3, r.Size())
	assert.Equal(t, float32(1), r.Get(0))
	assert.Equal(t, float32(3), r.Get(2))
	assert.Equal(t, float32(3), r.Last())
}

func TestFloatRingOverwritesOldestOnceFull(t *testing.T) {
	r := NewFloatRing(3)
	for _, v := range []float32{1, 2, 3, 4, 5} {
		r.Add(v)
	}
	assert.Equal(t, 3, r.Size())
	assert.Equal(t, float32(3), r.Get(0))
	assert.Equal(t, float32(4), r.Get(1))
	assert.Equal(t, float32(5), r.Get(2))
}

func TestFloatRingClearResetsState(t *testing.T) {
	r := NewFloatRing(3)
	r.Add(1)
	r.Add(2)
	r.Clear()
	assert.Equal(t, 0, r.Size())
	r.Add(9)
	assert.Equal(t, float32(9), r.Last())
}
