package qrtone

import "math"

// Percentile is the P² algorithm (Jain & Chlamtac, "The P-Square Algorithm
// for Dynamic Calculation of Percentiles and Histograms without Storing
// Observations", CACM Oct. 1985) for estimating one quantile of a stream
// without buffering past samples. Ported from Aaron Small's reference
// implementation (https://github.com/absmall/p2, MIT licensed).
type Percentile struct {
	q, dn, np []float32
	n         []int32
	count     int
	quantile  float32
}

// NewPercentile builds an estimator for the given quantile (0..1).
func NewPercentile(quantile float32) *Percentile {
	p := &Percentile{quantile: quantile}
	p.addEndMarkers()
	p.addQuantile(quantile)
	return p
}

func (p *Percentile) addEndMarkers() {
	p.count = 0
	p.q = make([]float32, 2)
	p.dn = make([]float32, 2)
	p.np = make([]float32, 2)
	p.n = make([]int32, 2)
	p.dn[0] = 0.0
	p.dn[1] = 1.0
	p.updateMarkers()
}

func (p *Percentile) updateMarkers() {
	percentileSort(p.dn)
	for i := range p.np {
		p.np[i] = float32(len(p.dn)-1)*p.dn[i] + 1
	}
}

func (p *Percentile) allocateMarkers(count int) int {
	markerCount := len(p.q)
	newQ := append(p.q, make([]float32, count)...)
	newDn := append(p.dn, make([]float32, count)...)
	newNp := append(p.np, make([]float32, count)...)
	newN := append(p.n, make([]int32, count)...)
	p.q, p.dn, p.np, p.n = newQ, newDn, newNp, newN
	return markerCount
}

func (p *Percentile) addQuantile(quant float32) {
	index := p.allocateMarkers(3)
	p.dn[index] = quant / 2.0
	p.dn[index+1] = quant
	p.dn[index+2] = (1.0 + quant) / 2.0
	p.updateMarkers()
}

// percentileSort is insertion sort: efficient for the handful of markers
// this algorithm ever holds.
func percentileSort(q []float32) {
	for j := 1; j < len(q); j++ {
		k := q[j]
		i := j - 1
		for i >= 0 && q[i] > k {
			q[i+1] = q[i]
			i--
		}
		q[i+1] = k
	}
}

func sign(d float32) float32 {
	if d >= 0.0 {
		return 1
	}
	return -1
}

func (p *Percentile) linear(i, d int) float32 {
	return p.q[i] + float32(d)*(p.q[i+d]-p.q[i])/float32(p.n[i+d]-p.n[i])
}

func (p *Percentile) parabolic(i, d int) float32 {
	return p.q[i] + float32(d)/float32(p.n[i+1]-p.n[i-1])*
		(float32(p.n[i]-p.n[i-1]+int32(d))*(p.q[i+1]-p.q[i])/float32(p.n[i+1]-p.n[i])+
			float32(p.n[i+1]-p.n[i]-int32(d))*(p.q[i]-p.q[i-1])/float32(p.n[i]-p.n[i-1]))
}

// Add folds one observation into the running estimate.
func (p *Percentile) Add(data float32) {
	markerCount := len(p.q)
	if p.count >= markerCount {
		p.count++

		k := 0
		if data < p.q[0] {
			p.q[0] = data
			k = 1
		} else if data >= p.q[markerCount-1] {
			p.q[markerCount-1] = data
			k = markerCount - 1
		} else {
			for i := 1; i < markerCount; i++ {
				if data < p.q[i] {
					k = i
					break
				}
			}
		}

		for i := k; i < markerCount; i++ {
			p.n[i]++
			p.np[i] += p.dn[i]
		}
		for i := 0; i < k; i++ {
			p.np[i] += p.dn[i]
		}

		for i := 1; i < markerCount-1; i++ {
			d := p.np[i] - float32(p.n[i])
			if (d >= 1.0 && p.n[i+1]-p.n[i] > 1) || (d <= -1.0 && p.n[i-1]-p.n[i] < -1) {
				s := sign(d)
				newq := p.parabolic(i, int(s))
				if p.q[i-1] < newq && newq < p.q[i+1] {
					p.q[i] = newq
				} else {
					p.q[i] = p.linear(i, int(s))
				}
				p.n[i] += int32(s)
			}
		}
	} else {
		p.q[p.count] = data
		p.count++
		if p.count == markerCount {
			percentileSort(p.q)
			for i := range p.n {
				p.n[i] = int32(i + 1)
			}
		}
	}
}

// resultQuantile returns the estimate for the given quantile, falling back
// to the closest observed sample while the stream is still shorter than
// the marker count.
func (p *Percentile) resultQuantile(quantile float32) float32 {
	if p.count < len(p.q) {
		if p.count <= 1 {
			return p.q[0]
		}
		closest := 1
		percentileSort(p.q[:p.count])
		for i := 2; i < p.count; i++ {
			if float32(math.Abs(float64(float32(i)/float32(p.count)-quantile))) < float32(math.Abs(float64(float32(closest)/float32(len(p.q))-quantile))) {
				closest = i
			}
		}
		return p.q[closest]
	}
	closest := 1
	for i := 2; i < len(p.dn)-1; i++ {
		if float32(math.Abs(float64(p.dn[i]-quantile))) < float32(math.Abs(float64(p.dn[closest]-quantile))) {
			closest = i
		}
	}
	return p.q[closest]
}

// Result returns the estimate for the quantile this Percentile was built
// with.
func (p *Percentile) Result() float32 {
	return p.resultQuantile(p.dn[(len(p.dn)-1)/2])
}
